// Package testutil 测试辅助：内存 SQLite、配置与数据构造
package testutil

import (
	"fmt"
	"testing"

	"quiz_app_backend/internal/config"
	"quiz_app_backend/internal/model"
	"quiz_app_backend/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const DefaultPassword = "correct-horse-battery"

// NewDB 每个测试独立的内存库，单连接保证所有查询落在同一个库上
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
	}
	db, err := database.InitDB(cfg, true)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func Config() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "8000", Mode: "test", SecretKey: "test-secret-key-with-enough-length-0123"},
		Session: config.SessionConfig{
			Store:       "database",
			CookieName:  "sessionid",
			MaxAgeHours: 24,
		},
		CSRF: config.CSRFConfig{CookieName: "csrftoken", HeaderName: "X-CSRFToken"},
		OAuth: config.OAuthConfig{
			GoogleClientID:    "client-id",
			GoogleRedirectURL: "http://localhost:8000/api/accounts/google/login/callback",
			LoginRedirectURL:  "http://localhost:3000/quizzes",
			StateTTLMinutes:   10,
		},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}, MaxAgeSeconds: 600},
		RateLimit: config.RateLimitConfig{MaxRequests: 10000, WindowMinutes: 1},
	}
}

type UserOption func(*model.User)

func Staff(u *model.User) { u.IsStaff = true }

func Superuser(u *model.User) { u.IsSuperuser = true }

func Inactive(u *model.User) { u.IsActive = false }

func CreateUser(t *testing.T, db *gorm.DB, username string, opts ...UserOption) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
		IsActive: true,
	}
	for _, opt := range opts {
		opt(user)
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
