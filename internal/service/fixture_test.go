package service_test

import (
	"context"
	"testing"

	"quiz_app_backend/internal/config"
	"quiz_app_backend/internal/repository"
	"quiz_app_backend/internal/service"
	"quiz_app_backend/internal/testutil"

	"gorm.io/gorm"
)

type fixture struct {
	ctx     context.Context
	db      *gorm.DB
	cfg     *config.Config
	users   *repository.UserRepository
	quizzes *repository.QuizRepository
	results *repository.QuizResultRepository
	auth    *service.AuthService
	quiz    *service.QuizService
	result  *service.QuizResultService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	cfg := testutil.Config()

	f := &fixture{
		ctx:     context.Background(),
		db:      db,
		cfg:     cfg,
		users:   repository.NewUserRepository(db),
		quizzes: repository.NewQuizRepository(db),
		results: repository.NewQuizResultRepository(db),
	}
	f.auth = service.NewAuthService(f.users)
	f.quiz = service.NewQuizService(f.quizzes)
	f.result = service.NewQuizResultService(f.results, f.quizzes)
	return f
}

func mathQuiz() *service.QuizCreateReq {
	return &service.QuizCreateReq{
		Title:       "Math",
		HideAnswers: true,
		TimeLimit:   10,
		Questions: []service.QuestionReq{
			{
				Text: "2+2?",
				Answers: []service.AnswerReq{
					{Text: "4", IsCorrect: true},
					{Text: "5", IsCorrect: false},
				},
			},
		},
	}
}

func threeQuestionQuiz() *service.QuizCreateReq {
	req := &service.QuizCreateReq{Title: "Capitals"}
	for _, q := range []struct{ text, answer string }{
		{"Capital of France?", "Paris"},
		{"Capital of Japan?", "Tokyo"},
		{"Capital of Peru?", "Lima"},
	} {
		req.Questions = append(req.Questions, service.QuestionReq{
			Text: q.text,
			Answers: []service.AnswerReq{
				{Text: q.answer, IsCorrect: true},
				{Text: "Berlin"},
			},
		})
	}
	return req
}
