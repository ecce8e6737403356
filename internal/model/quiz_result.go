package model

import (
	"time"

	"gorm.io/datatypes"
)

// QuizResult 一次完成的测验记录，创建后不再修改
type QuizResult struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	QuizID      uint           `gorm:"not null;uniqueIndex:idx_quiz_user_completed,priority:1" json:"quiz_id"`
	Quiz        *Quiz          `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"quiz,omitempty"`
	UserID      uint           `gorm:"not null;index;uniqueIndex:idx_quiz_user_completed,priority:2" json:"user_id"`
	User        *User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Score       int            `gorm:"not null" json:"score"`
	MaxScore    int            `gorm:"not null" json:"max_score"`
	CompletedAt time.Time      `gorm:"not null;uniqueIndex:idx_quiz_user_completed,priority:3" json:"completed_at"`
	UserAnswers datatypes.JSON `json:"user_answers,omitempty"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}
