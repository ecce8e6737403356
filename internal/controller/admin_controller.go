package controller

import (
	"quiz_app_backend/internal/service"
	"quiz_app_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	ResultService *service.QuizResultService
	UserService   *service.UserService
}

func NewAdminController(resultService *service.QuizResultService, userService *service.UserService) *AdminController {
	return &AdminController{
		ResultService: resultService,
		UserService:   userService,
	}
}

// ListResults godoc
// @Summary 所有成绩（管理员）
// @Tags 管理
// @Produce  json
// @Param   user_id query int false "按用户过滤"
// @Success 200 {object} util.Response{data=[]dto.QuizResultDTO} "成功"
// @Failure 400 {object} util.Response "user_id 无效"
// @Failure 403 {object} util.Response "无权限"
// @Router /admin/quiz-results [get]
func (c *AdminController) ListResults(ctx *gin.Context) {
	var userID *uint
	if raw, ok := ctx.GetQuery("user_id"); ok {
		id, valid := util.ParseID(raw)
		if !valid {
			util.BadRequest(ctx, "invalid user_id")
			return
		}
		userID = &id
	}

	results, err := c.ResultService.ListAll(ctx.Request.Context(), userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, results)
}

// GetResult godoc
// @Summary 成绩详情（管理员）
// @Tags 管理
// @Produce  json
// @Param   id path int true "成绩ID"
// @Success 200 {object} util.Response{data=dto.QuizResultDTO} "成功"
// @Failure 404 {object} util.Response "成绩不存在"
// @Router /admin/quiz-results/{id} [get]
func (c *AdminController) GetResult(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	result, err := c.ResultService.Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// ListUsers godoc
// @Summary 用户列表（管理员）
// @Tags 管理
// @Produce  json
// @Success 200 {object} util.Response{data=[]dto.UserBrief} "成功"
// @Router /admin/users [get]
func (c *AdminController) ListUsers(ctx *gin.Context) {
	users, err := c.UserService.ListBrief(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, users)
}
