package middleware

import (
	"quiz_app_backend/internal/service"
	"quiz_app_backend/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// SessionMiddleware 根据会话中的用户 ID 加载用户，不做拦截；需挂在 sessions.Sessions 之后
func SessionMiddleware(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := util.SessionUserID(sessions.Default(c))
		if !ok {
			c.Next()
			return
		}

		user, err := users.FindActive(c.Request.Context(), userID)
		if err != nil {
			util.LogInternalError(c, err)
			c.Abort()
			return
		}
		// 已删除或禁用的用户按未登录处理
		if user != nil {
			c.Set(util.ContextKeyUser, user)
		}

		c.Next()
	}
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if util.GetUserFromContext(c) == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// StaffMiddleware 仅 staff 或 superuser 可访问
func StaffMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if !user.IsAdmin() {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
