package util

import (
	"quiz_app_backend/internal/model"

	"github.com/gin-gonic/gin"
)

func GetUserFromContext(c *gin.Context) *model.User {
	user, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil
	}
	u, ok := user.(*model.User)
	if !ok {
		return nil
	}
	return u
}
