package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned for lookups by id or email that match no account.
var ErrNotFound = errors.New("user not found")

// Repository stores citizen accounts. Email is unique; Create fails on a
// duplicate and callers pre-check with ExistsByEmail for a cleaner error.
type Repository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
