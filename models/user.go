package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles. Admins are seeded out of band; registration always
// produces a regular user.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered citizen or administrator
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // never expose the hash
	Role         string         `gorm:"not null;default:'user'" json:"role"`
	Phone        string         `json:"phone,omitempty"`
	Address      string         `json:"address,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
