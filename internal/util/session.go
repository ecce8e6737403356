package util

import (
	"net/http"

	"quiz_app_backend/internal/config"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// 会话中保存的键
const (
	SessionKeyUserID     = "user_id"
	SessionKeyOAuthState = "oauth_state"
)

// SessionOptions 会话 cookie 仅服务端可读
func SessionOptions(cfg *config.SessionConfig) sessions.Options {
	return sessions.Options{
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   int(cfg.MaxAge().Seconds()),
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionUserID 会话未登录时 ok 为 false
func SessionUserID(session sessions.Session) (uint, bool) {
	id, ok := session.Get(SessionKeyUserID).(uint)
	return id, ok && id != 0
}

// LoginSession 先清空会话中已有的数据（包括 OAuth state），再写入登录用户
func LoginSession(c *gin.Context, userID uint) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(SessionKeyUserID, userID)
	return session.Save()
}

// LogoutSession 删除服务端会话并让 cookie 立即过期
func LogoutSession(c *gin.Context, cfg *config.SessionConfig) error {
	session := sessions.Default(c)
	session.Clear()
	opts := SessionOptions(cfg)
	opts.MaxAge = -1
	session.Options(opts)
	return session.Save()
}
