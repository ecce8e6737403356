package dto

import (
	"encoding/json"
	"time"

	"quiz_app_backend/internal/model"
)

// swagger:model QuizResultDTO
type QuizResultDTO struct {
	ID          uint            `json:"id"`
	Quiz        uint            `json:"quiz"`
	QuizTitle   string          `json:"quiz_title"`
	User        uint            `json:"user"`
	Username    string          `json:"username"`
	Score       int             `json:"score"`
	MaxScore    int             `json:"max_score"`
	CompletedAt time.Time       `json:"completed_at"`
	UserAnswers json.RawMessage `json:"user_answers" swaggertype:"object"`
}

func NewQuizResultDTO(result *model.QuizResult) QuizResultDTO {
	out := QuizResultDTO{
		ID:          result.ID,
		Quiz:        result.QuizID,
		User:        result.UserID,
		Score:       result.Score,
		MaxScore:    result.MaxScore,
		CompletedAt: result.CompletedAt,
		UserAnswers: json.RawMessage("null"),
	}
	if result.Quiz != nil {
		out.QuizTitle = result.Quiz.Title
	}
	if result.User != nil {
		out.Username = result.User.Username
	}
	if len(result.UserAnswers) > 0 {
		out.UserAnswers = json.RawMessage(result.UserAnswers)
	}
	return out
}

func NewQuizResultList(results []model.QuizResult) []QuizResultDTO {
	out := make([]QuizResultDTO, 0, len(results))
	for i := range results {
		out = append(out, NewQuizResultDTO(&results[i]))
	}
	return out
}
