package model

// swagger:model Question
type Question struct {
	ID      uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	QuizID  uint     `gorm:"index;not null" json:"quiz_id"`
	Text    string   `gorm:"type:text;not null" json:"text"`
	Answers []Answer `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}
