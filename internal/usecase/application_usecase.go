package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"grant-compass/internal/domain/application"
	"grant-compass/internal/domain/grant"
	"grant-compass/internal/domain/matching"
	"grant-compass/internal/domain/profile"

	"github.com/google/uuid"
)

var (
	ErrGrantNotFound       = errors.New("grant not found")
	ErrNotMatched          = errors.New("grant not matched for user")
	ErrAlreadyApplied      = errors.New("active application already exists")
	ErrDeadlinePassed      = errors.New("grant deadline passed")
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrTerminalState       = errors.New("application is in a terminal state")
	ErrConflict            = errors.New("application changed concurrently")
	ErrForbidden           = errors.New("not the application owner")
)

// StatusNotifier is how the tracker announces status changes; the websocket
// hub implements it. A nil notifier is fine.
type StatusNotifier interface {
	NotifyApplicationStatus(userID uuid.UUID, a application.Application)
}

type ApplicationUsecase interface {
	Apply(ctx context.Context, userID uuid.UUID, grantID string) (application.Application, error)
	Transition(ctx context.Context, id uuid.UUID, to application.Status, actor string) (application.Application, error)
	Withdraw(ctx context.Context, userID uuid.UUID, id uuid.UUID) (application.Application, error)
	List(ctx context.Context, userID uuid.UUID) ([]application.Application, error)
}

type Applications struct {
	apps     application.Repository
	profiles profile.Repository
	catalog  grant.Catalog
	notifier StatusNotifier
	logger   *log.Logger
	now      func() time.Time
}

func NewApplicationUsecase(apps application.Repository, profiles profile.Repository, catalog grant.Catalog, notifier StatusNotifier, logger *log.Logger) *Applications {
	if logger == nil {
		logger = log.Default()
	}
	return &Applications{apps: apps, profiles: profiles, catalog: catalog, notifier: notifier, logger: logger, now: time.Now}
}

// Apply creates the user's application for a grant they are currently
// matched to. Matched-ness is recomputed here, never trusted from the
// client: the dashboard the user clicked may be minutes old.
func (u *Applications) Apply(ctx context.Context, userID uuid.UUID, grantID string) (application.Application, error) {
	if userID == uuid.Nil {
		return application.Application{}, ErrUnauthorized
	}

	g, err := u.catalog.GetByID(ctx, grantID)
	if err != nil {
		if errors.Is(err, grant.ErrNotFound) {
			return application.Application{}, ErrGrantNotFound
		}
		return application.Application{}, ErrStoreUnavailable
	}

	now := u.now().UTC()
	if g.Expired(now) {
		return application.Application{}, ErrDeadlinePassed
	}

	p, err := u.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return application.Application{}, ErrNotMatched
		}
		return application.Application{}, ErrStoreUnavailable
	}

	matched, err := matching.Match(p, []grant.Grant{g}, now)
	if err != nil || len(matched) == 0 {
		return application.Application{}, ErrNotMatched
	}

	if _, err := u.apps.FindActive(ctx, userID, grantID); err == nil {
		return application.Application{}, ErrAlreadyApplied
	} else if !errors.Is(err, application.ErrNotFound) {
		return application.Application{}, ErrStoreUnavailable
	}

	a := application.Application{
		ID:        uuid.New(),
		UserID:    userID,
		GrantID:   grantID,
		Status:    application.StatusApplied,
		History:   []application.StatusChange{{Status: application.StatusApplied, Actor: userID.String(), At: now}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := u.apps.Create(ctx, a); err != nil {
		// Unique-violation race: a concurrent apply won. Surface it the
		// same way as a plain duplicate.
		if _, findErr := u.apps.FindActive(ctx, userID, grantID); findErr == nil {
			return application.Application{}, ErrAlreadyApplied
		}
		return application.Application{}, ErrStoreUnavailable
	}

	u.notify(a)
	return a, nil
}

// Transition applies a reviewer-driven status change. The target must be
// reachable from the current status per the lifecycle table, and the write
// is compare-and-set: a concurrent transition surfaces as ErrConflict, never
// as a silently overwritten history.
func (u *Applications) Transition(ctx context.Context, id uuid.UUID, to application.Status, actor string) (application.Application, error) {
	if !to.Valid() {
		return application.Application{}, ErrInvalidTransition
	}

	a, err := u.apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			return application.Application{}, ErrApplicationNotFound
		}
		return application.Application{}, ErrStoreUnavailable
	}

	if a.Status.Terminal() {
		return application.Application{}, ErrTerminalState
	}
	if !a.Status.CanTransition(to) {
		return application.Application{}, ErrInvalidTransition
	}

	change := application.StatusChange{Status: to, Actor: actor, At: u.changeTime(a)}
	if err := u.apps.UpdateStatus(ctx, id, a.Status, change); err != nil {
		switch {
		case errors.Is(err, application.ErrStatusConflict):
			return application.Application{}, ErrConflict
		case errors.Is(err, application.ErrNotFound):
			return application.Application{}, ErrApplicationNotFound
		default:
			return application.Application{}, ErrStoreUnavailable
		}
	}

	updated, err := u.apps.GetByID(ctx, id)
	if err != nil {
		return application.Application{}, ErrStoreUnavailable
	}

	u.notify(updated)
	return updated, nil
}

// Withdraw is the user-initiated exit, allowed from any non-terminal state.
func (u *Applications) Withdraw(ctx context.Context, userID uuid.UUID, id uuid.UUID) (application.Application, error) {
	if userID == uuid.Nil {
		return application.Application{}, ErrUnauthorized
	}

	a, err := u.apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			return application.Application{}, ErrApplicationNotFound
		}
		return application.Application{}, ErrStoreUnavailable
	}
	if a.UserID != userID {
		return application.Application{}, ErrForbidden
	}
	if a.Status.Terminal() {
		return application.Application{}, ErrTerminalState
	}

	change := application.StatusChange{Status: application.StatusWithdrawn, Actor: userID.String(), At: u.changeTime(a)}
	if err := u.apps.UpdateStatus(ctx, id, a.Status, change); err != nil {
		switch {
		case errors.Is(err, application.ErrStatusConflict):
			return application.Application{}, ErrConflict
		case errors.Is(err, application.ErrNotFound):
			return application.Application{}, ErrApplicationNotFound
		default:
			return application.Application{}, ErrStoreUnavailable
		}
	}

	updated, err := u.apps.GetByID(ctx, id)
	if err != nil {
		return application.Application{}, ErrStoreUnavailable
	}

	u.notify(updated)
	return updated, nil
}

func (u *Applications) List(ctx context.Context, userID uuid.UUID) ([]application.Application, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	apps, err := u.apps.ListByUser(ctx, userID)
	if err != nil {
		return nil, ErrStoreUnavailable
	}
	return apps, nil
}

// changeTime keeps history timestamps monotonically non-decreasing even if
// the wall clock stepped backwards between two transitions.
func (u *Applications) changeTime(a application.Application) time.Time {
	now := u.now().UTC()
	if n := len(a.History); n > 0 && a.History[n-1].At.After(now) {
		return a.History[n-1].At
	}
	return now
}

func (u *Applications) notify(a application.Application) {
	if u.notifier == nil {
		return
	}
	u.notifier.NotifyApplicationStatus(a.UserID, a)
}
