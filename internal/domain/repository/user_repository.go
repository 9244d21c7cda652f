package repository

import (
	"context"

	"github.com/dittoaji/user-profile-service/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
// Absence is signaled with entity.ErrUserNotFound; uniqueness violations are
// surfaced as the raw driver error so the service layer can classify them.
type UserRepository interface {
	FindAll(ctx context.Context, q entity.ListQuery) (*entity.ListUsersResult, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	Create(ctx context.Context, in entity.CreateUserInput) (*entity.User, error)
	Update(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error)
	Remove(ctx context.Context, id string) (bool, error)
}
