package model

// swagger:model Answer
type Answer struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	QuestionID uint   `gorm:"index;not null" json:"question_id"`
	Text       string `gorm:"size:200;not null" json:"text"`
	IsCorrect  bool   `gorm:"not null" json:"is_correct"`
}

func (Answer) TableName() string {
	return "answers"
}
