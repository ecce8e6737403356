package repository

import (
	"context"

	"quiz_app_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func orderedAnswers(db *gorm.DB) *gorm.DB {
	return db.Order("answers.id asc")
}

func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("questions.id asc")
}

// Create 在一个事务内写入 Quiz → Questions → Answers
func (r *QuizRepository) Create(ctx context.Context, quiz *model.Quiz) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(quiz).Error
	})
}

// List authorID 为 nil 时返回全部测验
func (r *QuizRepository) List(ctx context.Context, authorID *uint) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	query := r.DB.WithContext(ctx).Preload("Author")
	if authorID != nil {
		query = query.Where("author_id = ?", *authorID)
	}
	err := query.Order("created_at desc, id desc").Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) FindByID(ctx context.Context, id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.WithContext(ctx).Preload("Author").First(&quiz, id).Error
	return &quiz, err
}

// FindByIDAndAuthor 仅在作者本人名下查找
func (r *QuizRepository) FindByIDAndAuthor(ctx context.Context, id, authorID uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.WithContext(ctx).
		Preload("Author").
		Where("author_id = ?", authorID).
		First(&quiz, id).Error
	return &quiz, err
}

func (r *QuizRepository) FindDetailByID(ctx context.Context, id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.WithContext(ctx).
		Preload("Author").
		Preload("Questions", orderedQuestions).
		Preload("Questions.Answers", orderedAnswers).
		First(&quiz, id).Error
	return &quiz, err
}

// CountQuestions 按 quiz_id 统计题目数量
func (r *QuizRepository) CountQuestions(ctx context.Context, quizIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(quizIDs))
	if len(quizIDs) == 0 {
		return counts, nil
	}

	type row struct {
		QuizID uint
		Total  int64
	}
	var rows []row
	err := r.DB.WithContext(ctx).Model(&model.Question{}).
		Select("quiz_id, COUNT(*) AS total").
		Where("quiz_id IN ?", quizIDs).
		Group("quiz_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, rw := range rows {
		counts[rw.QuizID] = rw.Total
	}
	return counts, nil
}

// FindQuestionAt 按插入顺序取第 index 道题（从 0 开始）
func (r *QuizRepository) FindQuestionAt(ctx context.Context, quizID uint, index int) (*model.Question, error) {
	var question model.Question
	err := r.DB.WithContext(ctx).
		Preload("Answers", orderedAnswers).
		Where("quiz_id = ?", quizID).
		Order("id asc").
		Offset(index).
		Limit(1).
		Take(&question).Error
	return &question, err
}

// Update 更新基本字段；questions 非 nil 时整体替换题目树
func (r *QuizRepository) Update(ctx context.Context, quiz *model.Quiz, questions []model.Question) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(quiz).
			Select("title", "hide_answers", "time_limit", "updated_at").
			Updates(quiz).Error; err != nil {
			return err
		}

		if questions == nil {
			return nil
		}

		if err := deleteQuestionTree(tx, quiz.ID); err != nil {
			return err
		}
		for i := range questions {
			questions[i].ID = 0
			questions[i].QuizID = quiz.ID
		}
		if err := tx.Create(&questions).Error; err != nil {
			return err
		}
		quiz.Questions = questions
		return nil
	})
}

// Delete 级联删除题目、选项和成绩
func (r *QuizRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteQuestionTree(tx, id); err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", id).Delete(&model.QuizResult{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Quiz{}, id).Error
	})
}

func (r *QuizRepository) FindByTitleAndAuthor(ctx context.Context, title string, authorID uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.WithContext(ctx).Where("title = ? AND author_id = ?", title, authorID).First(&quiz).Error
	return &quiz, err
}

func deleteQuestionTree(tx *gorm.DB, quizID uint) error {
	questionIDs := tx.Model(&model.Question{}).Select("id").Where("quiz_id = ?", quizID)
	if err := tx.Where("question_id IN (?)", questionIDs).Delete(&model.Answer{}).Error; err != nil {
		return err
	}
	return tx.Where("quiz_id = ?", quizID).Delete(&model.Question{}).Error
}
