package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/meetup-api/internal/domain/entity"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

// ConflictError reports a uniqueness violation on Field ("email" or "username").
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return e.Field + " already exists"
}

// UserRepository defines the interface for user-related database operations.
// Implementations must enforce unique email and username themselves.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}
