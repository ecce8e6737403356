package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/repository"
	"quiz_app_backend/internal/util"
	"quiz_app_backend/pkg/logger"
	"quiz_app_backend/pkg/monitoring"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	LoginMethodPassword = "password"
	LoginMethodGoogle   = "google"
)

// swagger:model LoginRequest
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthService struct {
	UserRepo *repository.UserRepository
}

func NewAuthService(userRepo *repository.UserRepository) *AuthService {
	return &AuthService{UserRepo: userRepo}
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// unusablePassword 以 "!" 开头，不是合法的 bcrypt 哈希，任何密码都无法匹配
func unusablePassword() (string, error) {
	token, err := util.RandomToken(20)
	if err != nil {
		return "", err
	}
	return "!" + token, nil
}

// Authenticate login 可以是用户名或邮箱
func (s *AuthService) Authenticate(ctx context.Context, login, password string) (*model.User, error) {
	login = strings.TrimSpace(login)

	user, err := s.UserRepo.FindByUsername(ctx, login)
	if errors.Is(err, gorm.ErrRecordNotFound) && strings.Contains(login, "@") {
		user, err = s.UserRepo.FindByEmail(ctx, login)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, util.ErrInactiveUser
	}
	return user, nil
}

// RecordLogin 会话写入成功后调用，记录最后登录时间
func (s *AuthService) RecordLogin(ctx context.Context, user *model.User, method string) {
	now := time.Now()
	if err := s.UserRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		logger.Log.Warn("Failed to update last login", zap.Uint("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLogin = &now
	}

	monitoring.Logins.WithLabelValues(method).Inc()
	logger.Log.Info("User logged in",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("method", method),
	)
}

func (s *AuthService) CreateSuperuser(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}

	exists, err := s.UserRepo.UsernameExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrUsernameTaken
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:    username,
		Email:       strings.TrimSpace(email),
		Password:    hashed,
		IsStaff:     true,
		IsSuperuser: true,
		IsActive:    true,
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Log.Info("Superuser created", zap.Uint("user_id", user.ID), zap.String("username", username))
	return user, nil
}
