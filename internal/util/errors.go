package util

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInactiveUser            = errors.New("user account is disabled")
	ErrInvalidOAuthState       = errors.New("invalid oauth state")
	ErrQuizNotFound            = errors.New("quiz not found")
	ErrResultNotFound          = errors.New("quiz result not found")
	ErrQuestionIndexOutOfRange = errors.New("question index out of range")
	ErrInvalidScore            = errors.New("score must be between 0 and max_score")
	ErrEmptyQuestions          = errors.New("quiz must contain at least one question")
	ErrTitleRequired           = errors.New("title is required")
	ErrUsernameTaken           = errors.New("username already exists")
	ErrOAuthExchange           = errors.New("oauth provider exchange failed")
)
