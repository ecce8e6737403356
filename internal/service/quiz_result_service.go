package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quiz_app_backend/internal/dto"
	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/repository"
	"quiz_app_backend/internal/util"
	"quiz_app_backend/pkg/logger"
	"quiz_app_backend/pkg/monitoring"
	"quiz_app_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// SaveResultReq score/max_score 为指针以允许 0
// swagger:model SaveResultReq
type SaveResultReq struct {
	QuizID      uint            `json:"quiz_id" binding:"required"`
	Score       *int            `json:"score" binding:"required"`
	MaxScore    *int            `json:"max_score" binding:"required"`
	UserAnswers json.RawMessage `json:"user_answers" swaggertype:"object"`
}

type QuizResultService struct {
	ResultRepo *repository.QuizResultRepository
	QuizRepo   *repository.QuizRepository
}

func NewQuizResultService(resultRepo *repository.QuizResultRepository, quizRepo *repository.QuizRepository) *QuizResultService {
	return &QuizResultService{
		ResultRepo: resultRepo,
		QuizRepo:   quizRepo,
	}
}

// Save 同一用户、同一测验、分数完全相同的旧记录会被替换
func (s *QuizResultService) Save(ctx context.Context, userID uint, req *SaveResultReq) (*dto.QuizResultDTO, error) {
	ctx, span := tracing.StartSpan(ctx, "QuizResultService.Save")
	defer span.End()

	if req.Score == nil || req.MaxScore == nil {
		return nil, invalid(util.ErrInvalidScore)
	}
	score, maxScore := *req.Score, *req.MaxScore
	if score < 0 || maxScore < 0 || score > maxScore {
		return nil, invalid(util.ErrInvalidScore)
	}

	if _, err := s.QuizRepo.FindByID(ctx, req.QuizID); err != nil {
		return nil, notFound(err, util.ErrQuizNotFound)
	}

	result := &model.QuizResult{
		QuizID:      req.QuizID,
		UserID:      userID,
		Score:       score,
		MaxScore:    maxScore,
		CompletedAt: time.Now(),
	}
	if len(req.UserAnswers) > 0 && string(req.UserAnswers) != "null" {
		result.UserAnswers = datatypes.JSON(req.UserAnswers)
	}

	if err := s.ResultRepo.ReplaceIdentical(ctx, result); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("save quiz result: %w", err)
	}
	span.SetAttributes(
		attribute.Int("quiz.id", int(req.QuizID)),
		attribute.Int("result.score", score),
	)

	monitoring.ResultsSaved.Inc()
	logger.Log.Info("Quiz result saved",
		zap.Uint("result_id", result.ID),
		zap.Uint("quiz_id", req.QuizID),
		zap.Uint("user_id", userID),
		zap.Int("score", score),
		zap.Int("max_score", maxScore),
	)

	out := dto.NewQuizResultDTO(result)
	return &out, nil
}

func (s *QuizResultService) ListForUser(ctx context.Context, userID uint) ([]dto.QuizResultDTO, error) {
	results, err := s.ResultRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewQuizResultList(results), nil
}

func (s *QuizResultService) GetForUser(ctx context.Context, id, userID uint) (*dto.QuizResultDTO, error) {
	result, err := s.ResultRepo.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, notFound(err, util.ErrResultNotFound)
	}
	out := dto.NewQuizResultDTO(result)
	return &out, nil
}

// ListAll 管理端查询，userID 为 nil 时不过滤
func (s *QuizResultService) ListAll(ctx context.Context, userID *uint) ([]dto.QuizResultDTO, error) {
	results, err := s.ResultRepo.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewQuizResultList(results), nil
}

func (s *QuizResultService) Get(ctx context.Context, id uint) (*dto.QuizResultDTO, error) {
	result, err := s.ResultRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, util.ErrResultNotFound)
	}
	out := dto.NewQuizResultDTO(result)
	return &out, nil
}
