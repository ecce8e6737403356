package app

import (
	"quiz_app_backend/docs"
	"quiz_app_backend/internal/middleware"
	"quiz_app_backend/pkg/monitoring"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	api.Use(
		sessions.Sessions(a.Config.Session.CookieName, a.Sessions),
		middleware.SessionMiddleware(a.Services.User),
	)

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(api, c)

	// 2. 需要登录的路由，先校验身份再校验 CSRF
	authGroup := api.Group("")
	authGroup.Use(middleware.AuthMiddleware(), middleware.CSRF(&a.Config.CSRF))
	a.registerQuizRoutes(authGroup, c)

	// 3. 管理员相关接口
	admin := api.Group("/admin")
	admin.Use(middleware.StaffMiddleware(), middleware.CSRF(&a.Config.CSRF))
	a.registerAdminRoutes(admin, c)
}

func (a *App) registerPublicRoutes(api *gin.RouterGroup, c *controllers) {
	api.GET("/health", c.health.HealthCheck)

	api.GET("/csrf", c.auth.CSRFToken)
	api.OPTIONS("/csrf", c.auth.CSRFToken)

	auth := api.Group("/auth")
	{
		auth.GET("/check", c.auth.CheckAuth)
		auth.GET("/logout", c.auth.Logout)
		auth.POST("/login", middleware.CSRF(&a.Config.CSRF), c.auth.Login)
	}

	google := api.Group("/accounts/google")
	{
		google.GET("/login", c.auth.GoogleLogin)
		google.GET("/login/callback", c.auth.GoogleCallback)
	}
}

func (a *App) registerQuizRoutes(rg *gin.RouterGroup, c *controllers) {
	quizzes := rg.Group("/quizzes")
	{
		quizzes.GET("", c.quiz.ListQuizzes)
		quizzes.POST("", c.quiz.CreateQuiz)
		quizzes.GET("/:id", c.quiz.GetQuiz)
		quizzes.PUT("/:id", c.quiz.UpdateQuiz)
		quizzes.PATCH("/:id", c.quiz.UpdateQuiz)
		quizzes.DELETE("/:id", c.quiz.DeleteQuiz)
		quizzes.GET("/:id/details", c.quiz.GetQuizDetails)
		quizzes.GET("/:id/questions/:index", c.quiz.GetQuestion)
	}

	rg.POST("/save-quiz-result", c.result.SaveResult)
	rg.GET("/quiz-results", c.result.ListMyResults)
	rg.GET("/quiz-results/:id", c.result.GetMyResult)
}

func (a *App) registerAdminRoutes(admin *gin.RouterGroup, c *controllers) {
	admin.GET("/quiz-results", c.admin.ListResults)
	admin.GET("/quiz-results/:id", c.admin.GetResult)
	admin.GET("/users", c.admin.ListUsers)
}
