package service_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/service"
	"quiz_app_backend/internal/testutil"
	"quiz_app_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider 按 code 返回预置的账号信息
type fakeProvider struct {
	profiles map[string]*service.OAuthProfile
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) FetchProfile(_ context.Context, code string) (*service.OAuthProfile, error) {
	profile, ok := p.profiles[code]
	if !ok {
		return nil, errors.New("invalid_grant")
	}
	return profile, nil
}

func newOAuthService(f *fixture, profiles map[string]*service.OAuthProfile) *service.OAuthService {
	return service.NewOAuthService(&fakeProvider{profiles: profiles}, f.users, f.auth, f.cfg)
}

func stateFrom(t *testing.T, redirect string) string {
	t.Helper()
	u, err := url.Parse(redirect)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestOAuthCreatesAndReusesUser(t *testing.T) {
	f := newFixture(t)
	svc := newOAuthService(f, map[string]*service.OAuthProfile{
		"code-alice": {ID: "g-100", Email: "alice@gmail.com", VerifiedEmail: true, Name: "Alice"},
	})

	redirect, nonce, err := svc.Begin(f.ctx)
	require.NoError(t, err)
	assert.Len(t, nonce, 32)

	user, err := svc.Complete(f.ctx, nonce, "code-alice", stateFrom(t, redirect))
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@gmail.com", user.Email)
	require.NotNil(t, user.GoogleID)
	assert.Equal(t, "g-100", *user.GoogleID)

	// 生成的账号不能用密码登录
	_, err = f.auth.Authenticate(f.ctx, "alice", "")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	redirect, nonce, err = svc.Begin(f.ctx)
	require.NoError(t, err)
	again, err := svc.Complete(f.ctx, nonce, "code-alice", stateFrom(t, redirect))
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	var count int64
	f.db.Model(&model.User{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestOAuthRejectsForgedState(t *testing.T) {
	f := newFixture(t)
	svc := newOAuthService(f, map[string]*service.OAuthProfile{
		"code": {ID: "g-1", Email: "x@gmail.com", VerifiedEmail: true},
	})

	redirect, _, err := svc.Begin(f.ctx)
	require.NoError(t, err)
	stale := stateFrom(t, redirect)

	// 再次发起后会话中保存的是新 nonce，旧 state 不再匹配
	_, nonce, err := svc.Begin(f.ctx)
	require.NoError(t, err)
	_, err = svc.Complete(f.ctx, nonce, "code", stale)
	assert.ErrorIs(t, err, util.ErrInvalidOAuthState)

	foreign, err := util.GenerateOAuthState(nonce, "some-other-secret", time.Minute)
	require.NoError(t, err)
	_, err = svc.Complete(f.ctx, nonce, "code", foreign)
	assert.ErrorIs(t, err, util.ErrInvalidOAuthState)

	expired, err := util.GenerateOAuthState(nonce, f.cfg.Server.SecretKey, -time.Minute)
	require.NoError(t, err)
	_, err = svc.Complete(f.ctx, nonce, "code", expired)
	assert.ErrorIs(t, err, util.ErrInvalidOAuthState)

	_, err = svc.Complete(f.ctx, nonce, "", stale)
	assert.ErrorIs(t, err, util.ErrInvalidOAuthState)

	// 会话中没有 nonce
	_, err = svc.Complete(f.ctx, "", "code", stale)
	assert.ErrorIs(t, err, util.ErrInvalidOAuthState)
}

func TestOAuthProviderFailure(t *testing.T) {
	f := newFixture(t)
	svc := newOAuthService(f, nil)

	redirect, nonce, err := svc.Begin(f.ctx)
	require.NoError(t, err)
	_, err = svc.Complete(f.ctx, nonce, "unknown-code", stateFrom(t, redirect))
	assert.ErrorIs(t, err, util.ErrOAuthExchange)
}

func TestOAuthLinksVerifiedEmail(t *testing.T) {
	f := newFixture(t)
	bob := testutil.CreateUser(t, f.db, "bob")
	svc := newOAuthService(f, map[string]*service.OAuthProfile{
		"verified":   {ID: "g-200", Email: "bob@example.com", VerifiedEmail: true},
		"unverified": {ID: "g-300", Email: "bob@example.com", VerifiedEmail: false},
	})

	redirect, nonce, err := svc.Begin(f.ctx)
	require.NoError(t, err)
	user, err := svc.Complete(f.ctx, nonce, "verified", stateFrom(t, redirect))
	require.NoError(t, err)
	assert.Equal(t, bob.ID, user.ID)

	linked, err := f.users.FindByGoogleID(f.ctx, "g-200")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, linked.ID)

	// 未验证邮箱不关联，用户名冲突时追加数字
	redirect, nonce, err = svc.Begin(f.ctx)
	require.NoError(t, err)
	other, err := svc.Complete(f.ctx, nonce, "unverified", stateFrom(t, redirect))
	require.NoError(t, err)
	assert.NotEqual(t, bob.ID, other.ID)
	assert.Equal(t, "bob1", other.Username)
}

func TestOAuthInactiveUser(t *testing.T) {
	f := newFixture(t)
	testutil.CreateUser(t, f.db, "carol", testutil.Inactive)
	svc := newOAuthService(f, map[string]*service.OAuthProfile{
		"code": {ID: "g-400", Email: "carol@example.com", VerifiedEmail: true},
	})

	redirect, nonce, err := svc.Begin(f.ctx)
	require.NoError(t, err)
	_, err = svc.Complete(f.ctx, nonce, "code", stateFrom(t, redirect))
	assert.ErrorIs(t, err, util.ErrInactiveUser)
}
