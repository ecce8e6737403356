package model

// swagger:model Quiz
type Quiz struct {
	BaseModel
	Title       string     `gorm:"size:200;not null" json:"title"`
	AuthorID    uint       `gorm:"index;not null" json:"author_id"`
	Author      *User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	HideAnswers bool       `gorm:"not null" json:"hide_answers"`
	TimeLimit   int        `gorm:"not null" json:"time_limit"` // Minutes, 0 = 不限时
	Questions   []Question `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}
