package service_test

import (
	"testing"

	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/service"
	"quiz_app_backend/internal/testutil"
	"quiz_app_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDemoQuizzes(t *testing.T) {
	f := newFixture(t)
	seed := service.NewSeedService(f.users, f.quizzes)

	_, err := seed.SeedDemoQuizzes(f.ctx)
	assert.ErrorIs(t, err, util.ErrUserNotFound)

	admin := testutil.CreateUser(t, f.db, "admin", testutil.Staff, testutil.Superuser)

	created, err := seed.SeedDemoQuizzes(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	// 重复执行不会产生重复数据
	created, err = seed.SeedDemoQuizzes(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, created)

	list, err := f.quiz.List(f.ctx, &admin.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for _, item := range list {
		assert.EqualValues(t, 3, item.QuestionsCount)
		assert.Equal(t, "admin", item.Author)
	}

	var answers int64
	f.db.Model(&model.Answer{}).Where("is_correct = ?", true).Count(&answers)
	assert.EqualValues(t, 9, answers)
}
