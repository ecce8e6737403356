package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz_app_backend/internal/config"
	"quiz_app_backend/internal/controller"
	"quiz_app_backend/internal/repository"
	"quiz_app_backend/internal/service"
	"quiz_app_backend/internal/util"
	"quiz_app_backend/pkg/configwatcher"
	"quiz_app_backend/pkg/database"
	"quiz_app_backend/pkg/logger"
	"quiz_app_backend/pkg/monitoring"
	"quiz_app_backend/pkg/security"
	"quiz_app_backend/pkg/tracing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Services        *Services
	Sessions        sessions.Store
	origins         *security.OriginList
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)

	// 后台 goroutine（限流清理、会话清理）随 Close 退出
	ctx    context.Context
	cancel context.CancelFunc
}

type repositories struct {
	user    *repository.UserRepository
	quiz    *repository.QuizRepository
	result  *repository.QuizResultRepository
}

// Services 供命令行工具（建超级用户、导入演示数据）复用
type Services struct {
	Auth    *service.AuthService
	OAuth   *service.OAuthService
	Quiz    *service.QuizService
	Result  *service.QuizResultService
	User    *service.UserService
	Seed    *service.SeedService
}

type controllers struct {
	auth   *controller.AuthController
	quiz   *controller.QuizController
	result *controller.QuizResultController
	admin  *controller.AdminController
	health *controller.HealthController
}

type Option func(*options)

type options struct {
	oauthProvider service.OAuthProvider
}

// WithOAuthProvider 替换默认的 Google 实现
func WithOAuthProvider(p service.OAuthProvider) Option {
	return func(o *options) {
		o.oauthProvider = p
	}
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 把新配置分发给已注册的回调
func (a *App) ApplyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:   repository.NewUserRepository(db),
		quiz:   repository.NewQuizRepository(db),
		result: repository.NewQuizResultRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, provider service.OAuthProvider) *Services {
	s := &Services{}

	s.Auth = service.NewAuthService(repos.user)
	s.OAuth = service.NewOAuthService(provider, repos.user, s.Auth, cfg)
	s.Quiz = service.NewQuizService(repos.quiz)
	s.Result = service.NewQuizResultService(repos.result, repos.quiz)
	s.User = service.NewUserService(repos.user)
	s.Seed = service.NewSeedService(repos.user, repos.quiz)

	return s
}

func (a *App) initControllers(s *Services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:   controller.NewAuthController(s.Auth, s.OAuth, a.Config),
		quiz:   controller.NewQuizController(s.Quiz),
		result: controller.NewQuizResultController(s.Result),
		admin:  controller.NewAdminController(s.Result, s.User),
		health: controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(security.RequestID())
	router.Use(logger.GinLogger())
	router.Use(security.CORS(a.origins, time.Duration(cfg.CORS.MaxAgeSeconds)*time.Second))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(a.ctx, cfg.RateLimit.MaxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New 使用已建立的连接组装应用；rdb 可以为 nil
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.oauthProvider == nil {
		o.oauthProvider = service.NewGoogleOAuthProvider(cfg.OAuth)
	}

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	service.RegisterValidators()
	monitoring.Init()

	store, err := newSessionStore(cfg, db)
	if err != nil {
		return nil, fmt.Errorf("init session store: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config:   cfg,
		DB:       db,
		Redis:    rdb,
		Sessions: store,
		origins:  security.NewOriginList(cfg.CORS.AllowedOrigins),
		ctx:      ctx,
		cancel:   cancel,
	}

	repos := app.initRepositories(db)
	app.Services = app.initServices(repos, cfg, o.oauthProvider)
	controllers := app.initControllers(app.Services, db, rdb)

	router := gin.New()
	app.Router = router
	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	// 热更新：CORS 白名单与登录后跳转地址
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.origins.Set(newCfg.CORS.AllowedOrigins)
		controllers.auth.SetLoginRedirectURL(newCfg.OAuth.LoginRedirectURL)
		logger.Log.Info("Runtime config applied",
			zap.Strings("cors_allowed_origins", newCfg.CORS.AllowedOrigins),
			zap.String("login_redirect_url", newCfg.OAuth.LoginRedirectURL),
		)
	})

	return app, nil
}

// NewApp 初始化日志、数据库、Redis 和追踪后组装应用
func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	migrate := cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.Session.Store == util.SessionStoreRedis {
		rdb, err = database.InitRedis(context.Background(), &cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
	}

	app, err := New(cfg, db, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to initialize application", zap.Error(err))
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	return app
}

func (a *App) watchConfig(ctx context.Context) {
	if !a.Config.Server.WatchConfig || a.Config.ConfigFile == "" {
		return
	}
	go func() {
		if err := configwatcher.WatchConfig(ctx, a.Config.ConfigFile, a.ApplyConfig); err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	watchCtx, stopWatch := context.WithCancel(a.ctx)
	defer stopWatch()
	a.watchConfig(watchCtx)
	a.startSessionCleanup()

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	stopWatch()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	a.Close(ctx)
	logger.Log.Info("Server exiting")
}

// Close 停止后台任务，释放追踪、Redis 和数据库连接
func (a *App) Close(ctx context.Context) {
	a.cancel()
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Log.Error("Failed to close redis", zap.Error(err))
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
	_ = logger.Log.Sync()
}
