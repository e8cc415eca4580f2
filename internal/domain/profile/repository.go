package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("profile not found")

type Repository interface {
	Get(ctx context.Context, userID uuid.UUID) (Profile, error)
	// Put is a full overwrite: callers always submit the complete profile.
	Put(ctx context.Context, p Profile) error
}
