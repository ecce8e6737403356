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

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.db, "alice")
	testutil.CreateUser(t, f.db, "carol", testutil.Inactive)

	user, err := f.auth.Authenticate(f.ctx, "alice", testutil.DefaultPassword)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)

	user, err = f.auth.Authenticate(f.ctx, "alice@example.com", testutil.DefaultPassword)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)

	_, err = f.auth.Authenticate(f.ctx, "alice", "wrong")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, err = f.auth.Authenticate(f.ctx, "nobody", testutil.DefaultPassword)
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, err = f.auth.Authenticate(f.ctx, "carol", testutil.DefaultPassword)
	assert.ErrorIs(t, err, util.ErrInactiveUser)
}

func TestRecordLogin(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.db, "alice")
	require.Nil(t, alice.LastLogin)

	f.auth.RecordLogin(f.ctx, alice, service.LoginMethodPassword)
	assert.NotNil(t, alice.LastLogin)

	var stored model.User
	require.NoError(t, f.db.First(&stored, alice.ID).Error)
	assert.NotNil(t, stored.LastLogin)
}

func TestFindActiveUser(t *testing.T) {
	f := newFixture(t)
	users := service.NewUserService(f.users)
	alice := testutil.CreateUser(t, f.db, "alice")
	carol := testutil.CreateUser(t, f.db, "carol", testutil.Inactive)

	user, err := users.FindActive(f.ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)

	user, err = users.FindActive(f.ctx, carol.ID)
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = users.FindActive(f.ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, user)

	brief, err := users.ListBrief(f.ctx)
	require.NoError(t, err)
	assert.Len(t, brief, 2)
}

func TestCreateSuperuser(t *testing.T) {
	f := newFixture(t)

	user, err := f.auth.CreateSuperuser(f.ctx, "admin", "admin@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.True(t, user.IsSuperuser)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsActive)

	authed, err := f.auth.Authenticate(f.ctx, "admin", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	_, err = f.auth.CreateSuperuser(f.ctx, "admin", "other@example.com", "x")
	assert.ErrorIs(t, err, util.ErrUsernameTaken)

	_, err = f.auth.CreateSuperuser(f.ctx, "", "", "")
	assert.Error(t, err)
}
