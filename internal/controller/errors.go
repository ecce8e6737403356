package controller

import (
	"errors"
	"net/http"

	"quiz_app_backend/internal/service"
	"quiz_app_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError 把领域错误映射为 HTTP 状态码
func respondError(ctx *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		util.BadRequest(ctx, verr.Error())
	case errors.Is(err, util.ErrQuizNotFound),
		errors.Is(err, util.ErrResultNotFound),
		errors.Is(err, util.ErrUserNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrQuestionIndexOutOfRange),
		errors.Is(err, util.ErrInvalidScore),
		errors.Is(err, util.ErrEmptyQuestions),
		errors.Is(err, util.ErrTitleRequired):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidCredentials),
		errors.Is(err, util.ErrInactiveUser),
		errors.Is(err, util.ErrInvalidOAuthState),
		errors.Is(err, util.ErrOAuthExchange):
		util.Error(ctx, http.StatusUnauthorized, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, ok := util.ParseID(ctx.Param(name))
	if !ok {
		util.BadRequest(ctx, "invalid "+name)
	}
	return id, ok
}
