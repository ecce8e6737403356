package service

import (
	"context"
	"errors"

	"quiz_app_backend/internal/dto"
	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/repository"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

// FindActive 用户不存在或已禁用时返回 nil, nil
func (s *UserService) FindActive(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, nil
	}
	return user, nil
}

func (s *UserService) ListBrief(ctx context.Context) ([]dto.UserBrief, error) {
	users, err := s.UserRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewUserBriefList(users), nil
}
