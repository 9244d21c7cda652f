package entity

import (
	"errors"
	"time"
)

// ErrUserNotFound is returned by repositories when no row matches the given id.
var ErrUserNotFound = errors.New("user not found")

// User is the aggregate root for the user-profile domain.
// Name and Avatar are optional; a nil pointer means the column is NULL.
// UpdatedAt stays nil until the first successful partial update.
type User struct {
	ID          string
	Email       string
	Name        *string
	Role        string
	Status      string
	Avatar      *string
	ReviewCount int
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// CreateUserInput carries sanitized fields for an insert. Role and Status
// are already defaulted by the service when absent.
type CreateUserInput struct {
	Email  string
	Name   *string
	Role   string
	Status string
	Avatar *string
}

// UserPatch describes a partial update. Only non-nil fields are written.
type UserPatch struct {
	Email       *string
	Name        *string
	Role        *string
	Status      *string
	Avatar      *string
	ReviewCount *int
}

// IsEmpty reports whether the patch touches no fields at all.
func (p UserPatch) IsEmpty() bool {
	return p.Email == nil && p.Name == nil && p.Role == nil &&
		p.Status == nil && p.Avatar == nil && p.ReviewCount == nil
}
