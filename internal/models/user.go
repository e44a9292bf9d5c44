// Package models contains data structures for the application's domain models.
package models

import "time"

// Role tags a user with the capabilities they hold platform-wide.
type Role string

const (
	// RoleUser is the default role.
	RoleUser Role = "User"
	// RoleAdmin bypasses ownership and membership checks.
	RoleAdmin Role = "Admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a member of the platform.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"uniqueIndex;not null;size:30" json:"username"`
	Email      string    `gorm:"uniqueIndex;not null" json:"email"`
	Password   string    `gorm:"not null" json:"-"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	University string    `json:"university"`
	Bio        string    `gorm:"type:text" json:"bio"`
	Role       Role      `gorm:"type:varchar(10);not null;default:'User'" json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the Admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Profile is a user together with both sides of their follow graph.
type Profile struct {
	User      *User   `json:"user"`
	Followers []*User `json:"followers"`
	Following []*User `json:"following"`
}
