package controller

import (
	"strconv"

	"quiz_app_backend/internal/service"
	"quiz_app_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// ListQuizzes godoc
// @Summary 测验列表
// @Description 所有测验，按创建时间倒序；mine=true 时只返回自己创建的
// @Tags 测验
// @Produce  json
// @Param   mine query bool false "只看自己的测验"
// @Success 200 {object} util.Response{data=[]dto.QuizListItem} "成功"
// @Failure 401 {object} util.Response "未登录"
// @Router /quizzes [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	var authorID *uint
	if raw := ctx.Query("mine"); raw != "" {
		mine, err := strconv.ParseBool(raw)
		if err != nil {
			util.BadRequest(ctx, "invalid mine")
			return
		}
		if mine {
			authorID = &util.GetUserFromContext(ctx).ID
		}
	}

	items, err := c.QuizService.List(ctx.Request.Context(), authorID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, items)
}

// CreateQuiz godoc
// @Summary 创建测验
// @Description 一次提交测验、题目和选项，作者为当前用户
// @Tags 测验
// @Accept  json
// @Produce  json
// @Param   X-CSRFToken header string true "CSRF token"
// @Param   body body service.QuizCreateReq true "测验内容"
// @Success 201 {object} util.Response{data=dto.QuizDetail} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "未登录"
// @Failure 403 {object} util.Response "CSRF 校验失败"
// @Router /quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	var req service.QuizCreateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}

	user := util.GetUserFromContext(ctx)
	detail, err := c.QuizService.Create(ctx.Request.Context(), user.ID, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, detail)
}

// GetQuiz godoc
// @Summary 获取自己的测验
// @Description 只能访问自己创建的测验，其他用户的测验返回 404
// @Tags 测验
// @Produce  json
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response{data=dto.QuizDetail} "成功"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /quizzes/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	user := util.GetUserFromContext(ctx)
	detail, err := c.QuizService.GetOwned(ctx.Request.Context(), id, user.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// UpdateQuiz godoc
// @Summary 更新测验
// @Description PUT 必须提供 title，PATCH 只更新提供的字段；提供 questions 时整体替换题目
// @Tags 测验
// @Accept  json
// @Produce  json
// @Param   X-CSRFToken header string true "CSRF token"
// @Param   id path int true "测验ID"
// @Param   body body service.QuizUpdateReq true "更新内容"
// @Success 200 {object} util.Response{data=dto.QuizDetail} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /quizzes/{id} [put]
// @Router /quizzes/{id} [patch]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req service.QuizUpdateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}

	user := util.GetUserFromContext(ctx)
	partial := ctx.Request.Method == "PATCH"
	detail, err := c.QuizService.Update(ctx.Request.Context(), id, user.ID, &req, partial)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// DeleteQuiz godoc
// @Summary 删除测验
// @Description 同时删除题目、选项和成绩记录
// @Tags 测验
// @Produce  json
// @Param   X-CSRFToken header string true "CSRF token"
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /quizzes/{id} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	user := util.GetUserFromContext(ctx)
	if err := c.QuizService.Delete(ctx.Request.Context(), id, user.ID); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": id})
}

// GetQuizDetails godoc
// @Summary 测验详情
// @Description 含全部题目和选项，任何登录用户可访问
// @Tags 测验
// @Produce  json
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response{data=dto.QuizDetail} "成功"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /quizzes/{id}/details [get]
func (c *QuizController) GetQuizDetails(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.QuizService.GetDetail(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// GetQuestion godoc
// @Summary 按序号取题
// @Description index 从 0 开始
// @Tags 测验
// @Produce  json
// @Param   id path int true "测验ID"
// @Param   index path int true "题目序号"
// @Success 200 {object} util.Response{data=dto.QuestionPage} "成功"
// @Failure 400 {object} util.Response "序号无效或越界"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /quizzes/{id}/questions/{index} [get]
func (c *QuizController) GetQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		util.BadRequest(ctx, "invalid question index")
		return
	}

	page, err := c.QuizService.GetQuestion(ctx.Request.Context(), id, index)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, page)
}
