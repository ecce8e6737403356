package app

import (
	"fmt"
	"strconv"
	"time"

	"quiz_app_backend/internal/config"
	"quiz_app_backend/internal/util"
	"quiz_app_backend/pkg/logger"

	"github.com/gin-contrib/sessions"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	redissessions "github.com/gin-contrib/sessions/redis"
	gormstore "github.com/wader/gormstore/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	redisSessionPoolSize   = 10
	sessionCleanupInterval = time.Hour
)

// newSessionStore 按配置选择数据库或 Redis 存储会话，cookie 用 secret_key 签名
func newSessionStore(cfg *config.Config, db *gorm.DB) (sessions.Store, error) {
	secret := []byte(cfg.Server.SecretKey)

	var store sessions.Store
	switch cfg.Session.Store {
	case util.SessionStoreRedis:
		s, err := redissessions.NewStoreWithDB(
			redisSessionPoolSize,
			"tcp",
			fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			cfg.Redis.Password,
			strconv.Itoa(cfg.Redis.DB),
			secret,
		)
		if err != nil {
			return nil, err
		}
		store = s
	default:
		// 过期清理由 startSessionCleanup 负责，便于随应用退出
		store = gormsessions.NewStore(db, false, secret)
	}

	store.Options(util.SessionOptions(&cfg.Session))
	return store, nil
}

func (a *App) usesDatabaseSessions() bool {
	return a.Config.Session.Store != util.SessionStoreRedis
}

// startSessionCleanup 定期删除数据库中的过期会话；Redis 依赖 TTL
func (a *App) startSessionCleanup() {
	if !a.usesDatabaseSessions() {
		return
	}
	cleaner := gormstore.New(a.DB, []byte(a.Config.Server.SecretKey))
	go cleaner.PeriodicCleanup(sessionCleanupInterval, a.ctx.Done())
}

// ClearExpiredSessions 立即删除数据库中的过期会话
func (a *App) ClearExpiredSessions() {
	if !a.usesDatabaseSessions() {
		logger.Log.Info("Redis sessions expire by TTL, nothing to clear")
		return
	}
	gormstore.New(a.DB, []byte(a.Config.Server.SecretKey)).Cleanup()
	logger.Log.Info("Expired sessions cleared", zap.String("store", util.SessionStoreDatabase))
}
