package dto

import (
	"time"

	"quiz_app_backend/internal/model"
)

// swagger:model QuizListItem
type QuizListItem struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Author         string    `json:"author"`
	AuthorID       uint      `json:"author_id"`
	CreatedAt      time.Time `json:"created_at"`
	QuestionsCount int64     `json:"questions_count"`
	HideAnswers    bool      `json:"hide_answers"`
	TimeLimit      int       `json:"time_limit"`
}

// swagger:model QuizDetail
type QuizDetail struct {
	QuizListItem
	Questions []QuestionDTO `json:"questions"`
}

type QuestionDTO struct {
	ID      uint        `json:"id"`
	Text    string      `json:"text"`
	Answers []AnswerDTO `json:"answers"`
}

type AnswerDTO struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionPage 按序号取题的响应
type QuestionPage struct {
	QuizID         uint        `json:"quiz_id"`
	QuizTitle      string      `json:"quiz_title"`
	CurrentIndex   int         `json:"current_index"`
	TotalQuestions int64       `json:"total_questions"`
	HideAnswers    bool        `json:"hide_answers"`
	TimeLimit      int         `json:"time_limit"`
	Question       QuestionDTO `json:"question"`
}

func authorName(quiz *model.Quiz) string {
	if quiz.Author == nil {
		return ""
	}
	return quiz.Author.Username
}

func NewQuizListItem(quiz *model.Quiz, questionsCount int64) QuizListItem {
	return QuizListItem{
		ID:             quiz.ID,
		Title:          quiz.Title,
		Author:         authorName(quiz),
		AuthorID:       quiz.AuthorID,
		CreatedAt:      quiz.CreatedAt,
		QuestionsCount: questionsCount,
		HideAnswers:    quiz.HideAnswers,
		TimeLimit:      quiz.TimeLimit,
	}
}

// NewQuizDetail 题目数量取自已加载的 Questions
func NewQuizDetail(quiz *model.Quiz) QuizDetail {
	questions := make([]QuestionDTO, 0, len(quiz.Questions))
	for i := range quiz.Questions {
		questions = append(questions, NewQuestionDTO(&quiz.Questions[i]))
	}
	return QuizDetail{
		QuizListItem: NewQuizListItem(quiz, int64(len(quiz.Questions))),
		Questions:    questions,
	}
}

func NewQuestionDTO(question *model.Question) QuestionDTO {
	answers := make([]AnswerDTO, 0, len(question.Answers))
	for _, a := range question.Answers {
		answers = append(answers, AnswerDTO{
			ID:        a.ID,
			Text:      a.Text,
			IsCorrect: a.IsCorrect,
		})
	}
	return QuestionDTO{
		ID:      question.ID,
		Text:    question.Text,
		Answers: answers,
	}
}

func NewQuestionPage(quiz *model.Quiz, question *model.Question, index int, total int64) QuestionPage {
	return QuestionPage{
		QuizID:         quiz.ID,
		QuizTitle:      quiz.Title,
		CurrentIndex:   index,
		TotalQuestions: total,
		HideAnswers:    quiz.HideAnswers,
		TimeLimit:      quiz.TimeLimit,
		Question:       NewQuestionDTO(question),
	}
}
