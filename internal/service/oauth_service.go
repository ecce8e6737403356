package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"quiz_app_backend/internal/config"
	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/repository"
	"quiz_app_backend/internal/util"
	"quiz_app_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

// OAuthProfile 第三方账号信息
type OAuthProfile struct {
	ID            string
	Email         string
	VerifiedEmail bool
	Name          string
}

type OAuthProvider interface {
	AuthCodeURL(state string) string
	FetchProfile(ctx context.Context, code string) (*OAuthProfile, error)
}

type GoogleOAuthProvider struct {
	Config *oauth2.Config
}

func NewGoogleOAuthProvider(cfg config.OAuthConfig) *GoogleOAuthProvider {
	return &GoogleOAuthProvider{
		Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				googleoauth2.UserinfoProfileScope,
				googleoauth2.UserinfoEmailScope,
			},
			Endpoint: google.Endpoint,
		},
	}
}

func (p *GoogleOAuthProvider) AuthCodeURL(state string) string {
	return p.Config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *GoogleOAuthProvider) FetchProfile(ctx context.Context, code string) (*OAuthProfile, error) {
	token, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	svc, err := googleoauth2.NewService(ctx, option.WithHTTPClient(p.Config.Client(ctx, token)))
	if err != nil {
		return nil, err
	}
	info, err := svc.Userinfo.V2.Me.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}

	profile := &OAuthProfile{
		ID:    info.Id,
		Email: info.Email,
		Name:  info.Name,
	}
	if info.VerifiedEmail != nil {
		profile.VerifiedEmail = *info.VerifiedEmail
	}
	return profile, nil
}

const oauthNonceBytes = 16

type OAuthService struct {
	Provider OAuthProvider
	UserRepo *repository.UserRepository
	Auth     *AuthService
	Secret   string
	StateTTL time.Duration
}

func NewOAuthService(provider OAuthProvider, userRepo *repository.UserRepository, auth *AuthService, cfg *config.Config) *OAuthService {
	ttl := time.Duration(cfg.OAuth.StateTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &OAuthService{
		Provider: provider,
		UserRepo: userRepo,
		Auth:     auth,
		Secret:   cfg.Server.SecretKey,
		StateTTL: ttl,
	}
}

// Begin 返回授权跳转地址和 nonce，调用方把 nonce 保存到会话中
func (s *OAuthService) Begin(ctx context.Context) (string, string, error) {
	nonce, err := util.RandomToken(oauthNonceBytes)
	if err != nil {
		return "", "", err
	}

	state, err := util.GenerateOAuthState(nonce, s.Secret, s.StateTTL)
	if err != nil {
		return "", "", err
	}
	return s.Provider.AuthCodeURL(state), nonce, nil
}

// Complete 校验 state 与会话中的 nonce，换取用户信息后查找或创建用户
func (s *OAuthService) Complete(ctx context.Context, nonce, code, state string) (*model.User, error) {
	if nonce == "" || code == "" || state == "" {
		return nil, util.ErrInvalidOAuthState
	}

	claims, err := util.ParseOAuthState(state, s.Secret)
	if err != nil {
		return nil, util.ErrInvalidOAuthState
	}
	if !util.TokensEqual(claims.Nonce, nonce) {
		return nil, util.ErrInvalidOAuthState
	}

	profile, err := s.Provider.FetchProfile(ctx, code)
	if err != nil {
		logger.Log.Warn("OAuth exchange failed", zap.Error(err))
		return nil, util.ErrOAuthExchange
	}
	if profile.ID == "" {
		return nil, util.ErrOAuthExchange
	}

	user, err := s.findOrCreateUser(ctx, profile)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, util.ErrInactiveUser
	}
	return user, nil
}

func (s *OAuthService) findOrCreateUser(ctx context.Context, profile *OAuthProfile) (*model.User, error) {
	user, err := s.UserRepo.FindByGoogleID(ctx, profile.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 已验证的邮箱关联到已有账号
	if profile.Email != "" && profile.VerifiedEmail {
		user, err = s.UserRepo.FindByEmail(ctx, profile.Email)
		if err == nil {
			googleID := profile.ID
			user.GoogleID = &googleID
			if err := s.UserRepo.Update(ctx, user); err != nil {
				return nil, err
			}
			logger.Log.Info("Linked google account", zap.Uint("user_id", user.ID))
			return user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	username, err := s.uniqueUsername(ctx, usernameBase(profile))
	if err != nil {
		return nil, err
	}
	password, err := unusablePassword()
	if err != nil {
		return nil, err
	}

	googleID := profile.ID
	user = &model.User{
		Username: username,
		Email:    profile.Email,
		Password: password,
		IsActive: true,
		GoogleID: &googleID,
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Log.Info("User created from google account", zap.Uint("user_id", user.ID), zap.String("username", username))
	return user, nil
}

var usernameInvalidChars = regexp.MustCompile(`[^\w.@+-]`)

const maxUsernameLen = 150

func usernameBase(profile *OAuthProfile) string {
	base := profile.Email
	if i := strings.Index(base, "@"); i >= 0 {
		base = base[:i]
	}
	base = usernameInvalidChars.ReplaceAllString(base, "")
	if base == "" {
		base = "user"
	}
	// 预留数字后缀的长度
	if len(base) > maxUsernameLen-10 {
		base = base[:maxUsernameLen-10]
	}
	return base
}

func (s *OAuthService) uniqueUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		exists, err := s.UserRepo.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(i)
	}
}
