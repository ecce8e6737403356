package model

import (
	"time"
)

// swagger:model User
type User struct {
	BaseModel
	Username    string     `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email       string     `gorm:"size:254;index" json:"email"`
	Password    string     `gorm:"size:128;not null" json:"-"`
	IsStaff     bool       `gorm:"not null" json:"is_staff"`
	IsSuperuser bool       `gorm:"not null" json:"is_superuser"`
	IsActive    bool       `gorm:"not null" json:"is_active"`
	GoogleID    *string    `gorm:"size:64;uniqueIndex" json:"-"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin 管理端接口权限：staff 或 superuser
func (u *User) IsAdmin() bool {
	return u.IsStaff || u.IsSuperuser
}
