package dto

import "quiz_app_backend/internal/model"

// swagger:model UserBrief
type UserBrief struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func NewUserBriefList(users []model.User) []UserBrief {
	out := make([]UserBrief, 0, len(users))
	for _, u := range users {
		out = append(out, UserBrief{ID: u.ID, Username: u.Username, Email: u.Email})
	}
	return out
}

// AuthStatus 登录状态查询结果
type AuthStatus struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	Email         string `json:"email,omitempty"`
	IsStaff       bool   `json:"is_staff"`
	IsSuperuser   bool   `json:"is_superuser"`
	SessionID     string `json:"sessionid,omitempty"`
	SessionExists bool   `json:"session_exists"`
}

// NewAuthStatus sessionID 为空表示还没有服务端会话
func NewAuthStatus(user *model.User, sessionID string) AuthStatus {
	status := AuthStatus{
		SessionID:     sessionID,
		SessionExists: sessionID != "",
	}
	if user != nil {
		status.Authenticated = true
		status.Username = user.Username
		status.Email = user.Email
		status.IsStaff = user.IsStaff
		status.IsSuperuser = user.IsSuperuser
	}
	return status
}
