package models

import (
	"strings"
	"time"
)

// Roles. A user's role is fixed at creation.
const (
	RolePatient   = "patient"
	RoleTherapist = "therapist"
)

// User represents an authenticated user in the system.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"` // bcrypt, never exposed in JSON
	Role         string    `gorm:"size:20;not null;index" json:"role"`
	DisplayName  string    `gorm:"size:120;not null" json:"display_name"`
}

func (u *User) IsPatient() bool { return u.Role == RolePatient }

// NormalizeEmail lowercases and trims an email address. Emails are stored
// and compared in this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RolePatient || role == RoleTherapist
}
