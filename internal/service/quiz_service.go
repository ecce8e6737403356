package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quiz_app_backend/internal/dto"
	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/repository"
	"quiz_app_backend/internal/util"
	"quiz_app_backend/pkg/logger"
	"quiz_app_backend/pkg/monitoring"
	"quiz_app_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// swagger:model AnswerReq
type AnswerReq struct {
	Text      string `json:"text" binding:"required,max=200"`
	IsCorrect bool   `json:"is_correct"`
}

// swagger:model QuestionReq
type QuestionReq struct {
	Text    string      `json:"text" binding:"required"`
	Answers []AnswerReq `json:"answers" binding:"required,min=1,dive"`
}

func (q QuestionReq) hasCorrectAnswer() bool {
	for _, a := range q.Answers {
		if a.IsCorrect {
			return true
		}
	}
	return false
}

// QuizCreateReq 作者由会话身份决定，请求体中的 author 字段会被忽略
// swagger:model QuizCreateReq
type QuizCreateReq struct {
	Title       string        `json:"title" binding:"required,max=200"`
	HideAnswers bool          `json:"hide_answers"`
	TimeLimit   int           `json:"time_limit" binding:"min=0"`
	Questions   []QuestionReq `json:"questions" binding:"required,min=1,dive"`
}

// QuizUpdateReq questions 非空时整体替换题目
// swagger:model QuizUpdateReq
type QuizUpdateReq struct {
	Title       *string       `json:"title" binding:"omitempty,max=200"`
	HideAnswers *bool         `json:"hide_answers"`
	TimeLimit   *int          `json:"time_limit" binding:"omitempty,min=0"`
	Questions   []QuestionReq `json:"questions" binding:"omitempty,dive"`
}

type QuizService struct {
	QuizRepo *repository.QuizRepository
}

func NewQuizService(quizRepo *repository.QuizRepository) *QuizService {
	return &QuizService{QuizRepo: quizRepo}
}

func buildQuestions(reqs []QuestionReq) []model.Question {
	questions := make([]model.Question, 0, len(reqs))
	for _, q := range reqs {
		answers := make([]model.Answer, 0, len(q.Answers))
		for _, a := range q.Answers {
			answers = append(answers, model.Answer{
				Text:      strings.TrimSpace(a.Text),
				IsCorrect: a.IsCorrect,
			})
		}
		questions = append(questions, model.Question{
			Text:    strings.TrimSpace(q.Text),
			Answers: answers,
		})
	}
	return questions
}

func checkQuestions(reqs []QuestionReq) error {
	if len(reqs) == 0 {
		return util.ErrEmptyQuestions
	}
	for i, q := range reqs {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("questions[%d].text: required", i)
		}
		if len(q.Answers) == 0 {
			return fmt.Errorf("questions[%d].answers: required", i)
		}
		if !q.hasCorrectAnswer() {
			return fmt.Errorf("questions[%d].answers: has_correct", i)
		}
		for j, a := range q.Answers {
			if strings.TrimSpace(a.Text) == "" {
				return fmt.Errorf("questions[%d].answers[%d].text: required", i, j)
			}
		}
	}
	return nil
}

// ValidationError 业务层校验失败，对应 400
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Err: err}
}

// List authorID 非 nil 时只返回该作者的测验
func (s *QuizService) List(ctx context.Context, authorID *uint) ([]dto.QuizListItem, error) {
	quizzes, err := s.QuizRepo.List(ctx, authorID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(quizzes))
	for _, q := range quizzes {
		ids = append(ids, q.ID)
	}
	counts, err := s.QuizRepo.CountQuestions(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]dto.QuizListItem, 0, len(quizzes))
	for i := range quizzes {
		items = append(items, dto.NewQuizListItem(&quizzes[i], counts[quizzes[i].ID]))
	}
	return items, nil
}

// Create 整棵题目树在一个事务中写入
func (s *QuizService) Create(ctx context.Context, authorID uint, req *QuizCreateReq) (*dto.QuizDetail, error) {
	ctx, span := tracing.StartSpan(ctx, "QuizService.Create")
	defer span.End()

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalid(util.ErrTitleRequired)
	}
	if req.TimeLimit < 0 {
		return nil, invalid(errors.New("time_limit: min"))
	}
	if err := checkQuestions(req.Questions); err != nil {
		return nil, invalid(err)
	}

	quiz := &model.Quiz{
		Title:       title,
		AuthorID:    authorID,
		HideAnswers: req.HideAnswers,
		TimeLimit:   req.TimeLimit,
		Questions:   buildQuestions(req.Questions),
	}
	if err := s.QuizRepo.Create(ctx, quiz); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	span.SetAttributes(
		attribute.Int("quiz.id", int(quiz.ID)),
		attribute.Int("quiz.questions", len(quiz.Questions)),
	)

	monitoring.QuizzesCreated.Inc()
	logger.Log.Info("Quiz created",
		zap.Uint("quiz_id", quiz.ID),
		zap.Uint("author_id", authorID),
		zap.Int("questions", len(quiz.Questions)),
	)

	return s.GetDetail(ctx, quiz.ID)
}

// GetOwned 非作者访问时与不存在一样返回 ErrQuizNotFound
func (s *QuizService) GetOwned(ctx context.Context, id, userID uint) (*dto.QuizDetail, error) {
	if _, err := s.findOwned(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.GetDetail(ctx, id)
}

func (s *QuizService) GetDetail(ctx context.Context, id uint) (*dto.QuizDetail, error) {
	quiz, err := s.QuizRepo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, notFound(err, util.ErrQuizNotFound)
	}
	detail := dto.NewQuizDetail(quiz)
	return &detail, nil
}

func (s *QuizService) GetQuestion(ctx context.Context, id uint, index int) (*dto.QuestionPage, error) {
	quiz, err := s.QuizRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, util.ErrQuizNotFound)
	}

	counts, err := s.QuizRepo.CountQuestions(ctx, []uint{id})
	if err != nil {
		return nil, err
	}
	total := counts[id]
	if index < 0 || int64(index) >= total {
		return nil, util.ErrQuestionIndexOutOfRange
	}

	question, err := s.QuizRepo.FindQuestionAt(ctx, id, index)
	if err != nil {
		return nil, notFound(err, util.ErrQuestionIndexOutOfRange)
	}

	page := dto.NewQuestionPage(quiz, question, index, total)
	return &page, nil
}

// Update partial 为 false 时（PUT）必须提供 title
func (s *QuizService) Update(ctx context.Context, id, userID uint, req *QuizUpdateReq, partial bool) (*dto.QuizDetail, error) {
	quiz, err := s.findOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Title == nil && !partial {
		return nil, invalid(util.ErrTitleRequired)
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, invalid(util.ErrTitleRequired)
		}
		quiz.Title = title
	}
	if req.HideAnswers != nil {
		quiz.HideAnswers = *req.HideAnswers
	}
	if req.TimeLimit != nil {
		if *req.TimeLimit < 0 {
			return nil, invalid(errors.New("time_limit: min"))
		}
		quiz.TimeLimit = *req.TimeLimit
	}

	var questions []model.Question
	if req.Questions != nil {
		if err := checkQuestions(req.Questions); err != nil {
			return nil, invalid(err)
		}
		questions = buildQuestions(req.Questions)
	}

	if err := s.QuizRepo.Update(ctx, quiz, questions); err != nil {
		return nil, fmt.Errorf("update quiz %d: %w", id, err)
	}

	logger.Log.Info("Quiz updated",
		zap.Uint("quiz_id", id),
		zap.Bool("questions_replaced", questions != nil),
	)
	return s.GetDetail(ctx, id)
}

func (s *QuizService) Delete(ctx context.Context, id, userID uint) error {
	if _, err := s.findOwned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.QuizRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete quiz %d: %w", id, err)
	}

	logger.Log.Info("Quiz deleted", zap.Uint("quiz_id", id), zap.Uint("author_id", userID))
	return nil
}

func (s *QuizService) findOwned(ctx context.Context, id, userID uint) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByIDAndAuthor(ctx, id, userID)
	if err != nil {
		return nil, notFound(err, util.ErrQuizNotFound)
	}
	return quiz, nil
}

// notFound 把 gorm.ErrRecordNotFound 映射为领域错误
func notFound(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}
