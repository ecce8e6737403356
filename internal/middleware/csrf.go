package middleware

import (
	"net/http"

	"quiz_app_backend/internal/config"
	"quiz_app_backend/internal/util"
	"quiz_app_backend/pkg/logger"
	"quiz_app_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// CSRF 双重提交校验：请求头中的 token 必须与 cookie 一致
func CSRF(cfg *config.CSRFConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if safeMethod(c.Request.Method) {
			c.Next()
			return
		}

		cookie, _ := c.Cookie(cfg.CookieName)
		header := c.GetHeader(cfg.HeaderName)
		if !util.TokensEqual(cookie, header) {
			monitoring.CSRFRejections.Inc()
			logger.Log.Warn("CSRF check failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Bool("cookie_present", cookie != ""),
				zap.Bool("header_present", header != ""),
				zap.String("request_id", c.GetString(util.ContextKeyRequestID)),
			)
			util.Error(c, http.StatusForbidden, "CSRF token missing or incorrect")
			c.Abort()
			return
		}

		c.Next()
	}
}
