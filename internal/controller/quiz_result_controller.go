package controller

import (
	"quiz_app_backend/internal/service"
	"quiz_app_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizResultController struct {
	ResultService *service.QuizResultService
}

func NewQuizResultController(resultService *service.QuizResultService) *QuizResultController {
	return &QuizResultController{ResultService: resultService}
}

// SaveResult godoc
// @Summary 保存测验成绩
// @Description 分数完全相同的旧记录会被替换
// @Tags 成绩
// @Accept  json
// @Produce  json
// @Param   X-CSRFToken header string true "CSRF token"
// @Param   body body service.SaveResultReq true "成绩"
// @Success 201 {object} util.Response{data=dto.QuizResultDTO} "保存成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /save-quiz-result [post]
func (c *QuizResultController) SaveResult(ctx *gin.Context) {
	var req service.SaveResultReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}

	user := util.GetUserFromContext(ctx)
	result, err := c.ResultService.Save(ctx.Request.Context(), user.ID, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

// ListMyResults godoc
// @Summary 我的成绩
// @Tags 成绩
// @Produce  json
// @Success 200 {object} util.Response{data=[]dto.QuizResultDTO} "成功"
// @Router /quiz-results [get]
func (c *QuizResultController) ListMyResults(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	results, err := c.ResultService.ListForUser(ctx.Request.Context(), user.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, results)
}

// GetMyResult godoc
// @Summary 成绩详情
// @Tags 成绩
// @Produce  json
// @Param   id path int true "成绩ID"
// @Success 200 {object} util.Response{data=dto.QuizResultDTO} "成功"
// @Failure 404 {object} util.Response "成绩不存在"
// @Router /quiz-results/{id} [get]
func (c *QuizResultController) GetMyResult(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	user := util.GetUserFromContext(ctx)
	result, err := c.ResultService.GetForUser(ctx.Request.Context(), id, user.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
