package models

import "time"

// User is an authenticated actor. The role is resolved from this row once
// per request; it is never cached in a session.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"size:64;uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	FullName     string     `gorm:"size:255" json:"full_name"`
	Email        string     `gorm:"size:255" json:"email"`
	PhoneNo      string     `gorm:"size:32" json:"phone_no"`
	Role         string     `gorm:"size:16;not null;default:user" json:"role"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
