package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// StatusChange is one append-only history entry. Actor is the verified
// identity that drove the change: the applicant for apply/withdraw, a
// reviewer for the administrative transitions.
type StatusChange struct {
	Status Status
	Actor  string
	At     time.Time
}

type Application struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	GrantID   string
	Status    Status
	History   []StatusChange
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Percent is the progress figure shown to users. For a withdrawn application
// it is the percentage of the last status before withdrawal.
func (a Application) Percent() int {
	if p, ok := a.Status.Percent(); ok {
		return p
	}
	for i := len(a.History) - 1; i >= 0; i-- {
		if p, ok := a.History[i].Status.Percent(); ok {
			return p
		}
	}
	return 0
}

var (
	ErrNotFound = errors.New("application not found")
	// ErrStatusConflict signals a compare-and-set miss: another request
	// moved the application off the status this update was based on.
	ErrStatusConflict = errors.New("application status changed concurrently")
)

type Repository interface {
	Create(ctx context.Context, a Application) error
	GetByID(ctx context.Context, id uuid.UUID) (Application, error)
	// FindActive returns the user's non-terminal application for a grant,
	// or ErrNotFound.
	FindActive(ctx context.Context, userID uuid.UUID, grantID string) (Application, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Application, error)
	// UpdateStatus appends change to the history and moves the application
	// from its current status, but only if that status still equals `from`;
	// otherwise it returns ErrStatusConflict.
	UpdateStatus(ctx context.Context, id uuid.UUID, from Status, change StatusChange) error
}
