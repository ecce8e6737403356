// 导入演示测验脚本
//
// 以第一个超级用户为作者创建三套演示测验，已存在的会跳过。
// 与主程序的 -seed 参数等价，便于在部署流水线中单独执行。
//
// 用法: go run scripts/seed_quizzes.go

package main

import (
	"context"
	"log"

	"quiz_app_backend/internal/config"
	"quiz_app_backend/internal/repository"
	"quiz_app_backend/internal/service"
	"quiz_app_backend/pkg/database"
	"quiz_app_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, true)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	seed := service.NewSeedService(repository.NewUserRepository(db), repository.NewQuizRepository(db))

	log.Println("开始导入演示测验...")
	created, err := seed.SeedDemoQuizzes(context.Background())
	if err != nil {
		log.Fatalf("导入失败: %v", err)
	}
	log.Printf("完成！新建 %d 套测验", created)
}
