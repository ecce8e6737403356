package controller

import (
	"net/http"
	"strings"
	"sync"

	"quiz_app_backend/internal/config"
	"quiz_app_backend/internal/dto"
	"quiz_app_backend/internal/service"
	"quiz_app_backend/internal/util"
	"quiz_app_backend/pkg/logger"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthController struct {
	AuthService  *service.AuthService
	OAuthService *service.OAuthService
	Cfg          *config.Config

	mu               sync.RWMutex
	loginRedirectURL string
}

func NewAuthController(authService *service.AuthService, oauthService *service.OAuthService, cfg *config.Config) *AuthController {
	return &AuthController{
		AuthService:      authService,
		OAuthService:     oauthService,
		Cfg:              cfg,
		loginRedirectURL: cfg.OAuth.LoginRedirectURL,
	}
}

// SetLoginRedirectURL 配置热更新时调用
func (c *AuthController) SetLoginRedirectURL(url string) {
	c.mu.Lock()
	c.loginRedirectURL = url
	c.mu.Unlock()
}

func (c *AuthController) successRedirectURL() string {
	c.mu.RLock()
	target := c.loginRedirectURL
	c.mu.RUnlock()

	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + "auth=success"
}

// CheckAuth godoc
// @Summary 查询登录状态
// @Description 返回当前会话的用户信息，未登录时 authenticated 为 false
// @Tags 认证
// @Produce  json
// @Success 200 {object} util.Response{data=dto.AuthStatus} "成功"
// @Router /auth/check [get]
func (c *AuthController) CheckAuth(ctx *gin.Context) {
	util.Success(ctx, dto.NewAuthStatus(util.GetUserFromContext(ctx), sessions.Default(ctx).ID()))
}

// Login godoc
// @Summary 用户名密码登录
// @Description 校验用户名(或邮箱)和密码，成功后签发新会话
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   X-CSRFToken header string true "CSRF token"
// @Param   body body service.LoginRequest true "登录凭据"
// @Success 200 {object} util.Response{data=dto.AuthStatus} "登录成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "用户名或密码错误"
// @Failure 403 {object} util.Response "CSRF 校验失败"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}

	user, err := c.AuthService.Authenticate(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		logger.Log.Warn("Login failed", zap.String("username", req.Username), zap.Error(err))
		respondError(ctx, err)
		return
	}

	if err := util.LoginSession(ctx, user.ID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	c.AuthService.RecordLogin(ctx.Request.Context(), user, service.LoginMethodPassword)

	util.SetAuthMarker(ctx, &c.Cfg.Session)
	util.Success(ctx, dto.NewAuthStatus(user, sessions.Default(ctx).ID()))
}

// Logout godoc
// @Summary 退出登录
// @Description 销毁服务端会话并清除登录标记 cookie
// @Tags 认证
// @Produce  json
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /auth/logout [get]
func (c *AuthController) Logout(ctx *gin.Context) {
	if err := util.LogoutSession(ctx, &c.Cfg.Session); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if user := util.GetUserFromContext(ctx); user != nil {
		logger.Log.Info("User logged out", zap.Uint("user_id", user.ID))
	}

	util.ClearAuthMarker(ctx, &c.Cfg.Session)
	util.Success(ctx, gin.H{"logged_out": true})
}

// GoogleLogin godoc
// @Summary Google 登录
// @Description 生成 state 并跳转到 Google 授权页
// @Tags 认证
// @Success 307 "跳转到 Google"
// @Router /accounts/google/login [get]
func (c *AuthController) GoogleLogin(ctx *gin.Context) {
	redirectURL, nonce, err := c.OAuthService.Begin(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	session := sessions.Default(ctx)
	session.Set(util.SessionKeyOAuthState, nonce)
	if err := session.Save(); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ctx.Redirect(http.StatusTemporaryRedirect, redirectURL)
}

// GoogleCallback godoc
// @Summary Google 登录回调
// @Description 校验 state，换取用户信息，登录后跳转到前端
// @Tags 认证
// @Param   code query string true "授权码"
// @Param   state query string true "state"
// @Success 302 "跳转到前端"
// @Failure 401 {object} util.Response "state 无效或授权失败"
// @Router /accounts/google/login/callback [get]
func (c *AuthController) GoogleCallback(ctx *gin.Context) {
	if reason := ctx.Query("error"); reason != "" {
		logger.Log.Warn("Google authorization denied", zap.String("error", reason))
		util.Error(ctx, http.StatusUnauthorized, "authorization denied: "+reason)
		return
	}

	nonce, _ := sessions.Default(ctx).Get(util.SessionKeyOAuthState).(string)
	user, err := c.OAuthService.Complete(
		ctx.Request.Context(),
		nonce,
		ctx.Query("code"),
		ctx.Query("state"),
	)
	if err != nil {
		respondError(ctx, err)
		return
	}

	// 登录会清掉会话中的 nonce，state 只能使用一次
	if err := util.LoginSession(ctx, user.ID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	c.AuthService.RecordLogin(ctx.Request.Context(), user, service.LoginMethodGoogle)

	util.SetAuthMarker(ctx, &c.Cfg.Session)
	ctx.Redirect(http.StatusFound, c.successRedirectURL())
}

// CSRFToken godoc
// @Summary 获取 CSRF token
// @Description 写入 csrftoken cookie，并在响应体和 X-CSRFToken 响应头中返回
// @Tags 认证
// @Produce  json
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /csrf [get]
func (c *AuthController) CSRFToken(ctx *gin.Context) {
	token, err := util.EnsureCSRFToken(ctx, c.Cfg)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"csrfToken": token})
}
