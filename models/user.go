package models

import (
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// ParseRole accepts the lowercase role names stored in the users table.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleEmployee:
		return Role(s), true
	}
	return "", false
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Username     string    `gorm:"uniqueIndex;not null;size:100" json:"username"`
	Name         string    `gorm:"not null;size:200" json:"name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"not null;size:20" json:"role"`
}

func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

func (u *User) Principal() Principal {
	return Principal{UserID: u.ID, Role: u.Role}
}

// Principal is the identity a request acts as. It is only ever built from
// server-side session state.
type Principal struct {
	UserID uint `json:"user_id"`
	Role   Role `json:"role"`
}

func (p Principal) IsManager() bool {
	return p.Role == RoleManager || p.Role == RoleAdmin
}
