package repository

import (
	"context"

	"quiz_app_backend/internal/model"

	"gorm.io/gorm"
)

type QuizResultRepository struct {
	DB *gorm.DB
}

func NewQuizResultRepository(db *gorm.DB) *QuizResultRepository {
	return &QuizResultRepository{DB: db}
}

func withResultRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Quiz").Preload("User")
}

// ReplaceIdentical 删除同一用户在同一测验上分数完全相同的旧记录后写入新记录
func (r *QuizResultRepository) ReplaceIdentical(ctx context.Context, result *model.QuizResult) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ? AND user_id = ? AND score = ? AND max_score = ?",
			result.QuizID, result.UserID, result.Score, result.MaxScore).
			Delete(&model.QuizResult{}).Error; err != nil {
			return err
		}
		if err := tx.Create(result).Error; err != nil {
			return err
		}
		return withResultRelations(tx).First(result, result.ID).Error
	})
}

func (r *QuizResultRepository) ListByUser(ctx context.Context, userID uint) ([]model.QuizResult, error) {
	var results []model.QuizResult
	err := withResultRelations(r.DB.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("completed_at desc, id desc").
		Find(&results).Error
	return results, err
}

func (r *QuizResultRepository) FindByIDAndUser(ctx context.Context, id, userID uint) (*model.QuizResult, error) {
	var result model.QuizResult
	err := withResultRelations(r.DB.WithContext(ctx)).
		Where("user_id = ?", userID).
		First(&result, id).Error
	return &result, err
}

// ListAll userID 为 nil 时返回全部记录
func (r *QuizResultRepository) ListAll(ctx context.Context, userID *uint) ([]model.QuizResult, error) {
	var results []model.QuizResult
	query := withResultRelations(r.DB.WithContext(ctx))
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	err := query.Order("completed_at desc, id desc").Find(&results).Error
	return results, err
}

func (r *QuizResultRepository) FindByID(ctx context.Context, id uint) (*model.QuizResult, error) {
	var result model.QuizResult
	err := withResultRelations(r.DB.WithContext(ctx)).First(&result, id).Error
	return &result, err
}
