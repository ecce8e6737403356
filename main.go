// @title Quiz App 后端 API
// @version 1.0
// @description 测验应用的后端服务器，基于 cookie 会话认证。
// @termsOfService http://swagger.io/terms/

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8000
// @BasePath /api

package main

import (
	"context"
	"flag"
	"log"

	"quiz_app_backend/internal/app"
	"quiz_app_backend/internal/config"
	"quiz_app_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件所在目录")
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	seed := flag.Bool("seed", false, "导入演示测验后退出")
	createSuperuser := flag.Bool("create-superuser", false, "创建超级用户后退出")
	username := flag.String("username", "", "超级用户名（配合 -create-superuser）")
	email := flag.String("email", "", "超级用户邮箱（配合 -create-superuser）")
	password := flag.String("password", "", "超级用户密码（配合 -create-superuser）")
	clearSessions := flag.Bool("clear-sessions", false, "清理过期会话后退出")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly || *seed || *createSuperuser
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	ctx := context.Background()

	switch {
	case *migrateOnly:
		logger.Log.Info("数据库迁移完成，退出程序")
	case *createSuperuser:
		user, err := application.Services.Auth.CreateSuperuser(ctx, *username, *email, *password)
		if err != nil {
			logger.Log.Fatal("Failed to create superuser", zap.Error(err))
		}
		logger.Log.Info("超级用户已创建", zap.String("username", user.Username))
	case *seed:
		created, err := application.Services.Seed.SeedDemoQuizzes(ctx)
		if err != nil {
			logger.Log.Fatal("Failed to seed demo quizzes", zap.Error(err))
		}
		logger.Log.Info("演示测验导入完成", zap.Int("created", created))
	case *clearSessions:
		application.ClearExpiredSessions()
	default:
		application.Run()
		return
	}

	application.Close(ctx)
}
