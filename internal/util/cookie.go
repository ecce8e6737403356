package util

import (
	"encoding/hex"
	"net/http"

	"quiz_app_backend/internal/config"

	"github.com/gin-gonic/gin"
)

const (
	csrfTokenBytes   = 32
	csrfCookieMaxAge = 365 * 24 * 60 * 60
)

// SetAuthMarker 前端可读的登录标记
func SetAuthMarker(c *gin.Context, cfg *config.SessionConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthMarkerCookie, "true", int(cfg.MaxAge().Seconds()), "/", cfg.Domain, c.Request.TLS != nil, false)
}

func ClearAuthMarker(c *gin.Context, cfg *config.SessionConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthMarkerCookie, "", -1, "/", cfg.Domain, c.Request.TLS != nil, false)
}

// EnsureCSRFToken 复用请求中合法的 token，否则生成新的；写回 cookie 和响应头
func EnsureCSRFToken(c *gin.Context, cfg *config.Config) (string, error) {
	token, err := c.Cookie(cfg.CSRF.CookieName)
	if err != nil || !validCSRFToken(token) {
		token, err = RandomToken(csrfTokenBytes)
		if err != nil {
			return "", err
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CSRF.CookieName, token, csrfCookieMaxAge, "/", cfg.Session.Domain, cfg.Session.Secure, false)
	c.Header(cfg.CSRF.HeaderName, token)
	return token, nil
}

func validCSRFToken(token string) bool {
	if len(token) != csrfTokenBytes*2 {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}
