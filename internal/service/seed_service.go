package service

import (
	"context"
	"errors"
	"fmt"

	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/repository"
	"quiz_app_backend/internal/util"
	"quiz_app_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type seedAnswer struct {
	text    string
	correct bool
}

type seedQuestion struct {
	text    string
	answers []seedAnswer
}

type seedQuiz struct {
	title     string
	questions []seedQuestion
}

// 演示数据
var demoQuizzes = []seedQuiz{
	{
		title: "Python Programming",
		questions: []seedQuestion{
			{"What is Python?", []seedAnswer{
				{"A programming language", true},
				{"A kind of snake", false},
				{"An operating system", false},
			}},
			{"Which data type stores whole numbers in Python?", []seedAnswer{
				{"int", true},
				{"float", false},
				{"str", false},
				{"bool", false},
			}},
			{"Which function prints to the console?", []seedAnswer{
				{"print()", true},
				{"console.log()", false},
				{"write()", false},
				{"output()", false},
			}},
		},
	},
	{
		title: "JavaScript Basics",
		questions: []seedQuestion{
			{"Which operator compares both value and type?", []seedAnswer{
				{"===", true},
				{"==", false},
				{"=", false},
				{"!=", false},
			}},
			{"Which function prints to the console in JavaScript?", []seedAnswer{
				{"console.log()", true},
				{"print()", false},
				{"System.out.println()", false},
				{"echo", false},
			}},
			{"What is the DOM?", []seedAnswer{
				{"Document Object Model", true},
				{"Data Object Model", false},
				{"Document Orient Model", false},
				{"Digital Object Model", false},
			}},
		},
	},
	{
		title: "Algorithms and Data Structures",
		questions: []seedQuestion{
			{"What is the average lookup complexity of a hash table?", []seedAnswer{
				{"O(1)", true},
				{"O(n)", false},
				{"O(log n)", false},
				{"O(n log n)", false},
			}},
			{"Which sorting algorithm is O(n²) in the worst case?", []seedAnswer{
				{"Bubble sort", true},
				{"Merge sort", false},
				{"Heap sort", false},
				{"Counting sort", false},
			}},
			{"Which data structure is LIFO?", []seedAnswer{
				{"Stack", true},
				{"Queue", false},
				{"Linked list", false},
				{"Graph", false},
			}},
		},
	},
}

type SeedService struct {
	UserRepo *repository.UserRepository
	QuizRepo *repository.QuizRepository
}

func NewSeedService(userRepo *repository.UserRepository, quizRepo *repository.QuizRepository) *SeedService {
	return &SeedService{
		UserRepo: userRepo,
		QuizRepo: quizRepo,
	}
}

// SeedDemoQuizzes 以第一个超级用户为作者创建演示测验，按标题+作者幂等
func (s *SeedService) SeedDemoQuizzes(ctx context.Context) (int, error) {
	owner, err := s.UserRepo.FindFirstSuperuser(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("no superuser found: %w", util.ErrUserNotFound)
		}
		return 0, err
	}

	created := 0
	for _, demo := range demoQuizzes {
		_, err := s.QuizRepo.FindByTitleAndAuthor(ctx, demo.title, owner.ID)
		if err == nil {
			logger.Log.Info("Demo quiz already exists", zap.String("title", demo.title))
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}

		quiz := demo.toModel(owner.ID)
		if err := s.QuizRepo.Create(ctx, quiz); err != nil {
			return created, fmt.Errorf("seed %q: %w", demo.title, err)
		}
		created++
		logger.Log.Info("Demo quiz created", zap.String("title", demo.title), zap.Uint("quiz_id", quiz.ID))
	}
	return created, nil
}

func (q seedQuiz) toModel(authorID uint) *model.Quiz {
	quiz := &model.Quiz{Title: q.title, AuthorID: authorID}
	for _, sq := range q.questions {
		question := model.Question{Text: sq.text}
		for _, sa := range sq.answers {
			question.Answers = append(question.Answers, model.Answer{Text: sa.text, IsCorrect: sa.correct})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz
}
