package usecase

import (
	"context"
	"errors"

	"grant-compass/internal/domain/profile"

	"github.com/google/uuid"
)

type Landing string

const (
	LandingNeedsProfile Landing = "needs_profile"
	LandingDashboard    Landing = "dashboard"
)

type OnboardingUsecase interface {
	ResolveLanding(ctx context.Context, userID uuid.UUID) (Landing, error)
}

// Onboarding routes every authenticated visit: users without a complete
// profile go to profile completion, everyone else to the dashboard. The
// decision is recomputed from stored state on each call, so a user whose
// profile later becomes incomplete is routed back.
type Onboarding struct {
	profiles profile.Repository
}

func NewOnboardingUsecase(profiles profile.Repository) *Onboarding {
	return &Onboarding{profiles: profiles}
}

func (u *Onboarding) ResolveLanding(ctx context.Context, userID uuid.UUID) (Landing, error) {
	if userID == uuid.Nil {
		return "", ErrUnauthorized
	}

	p, err := u.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return LandingNeedsProfile, nil
		}
		return "", ErrStoreUnavailable
	}

	if !p.Complete() {
		return LandingNeedsProfile, nil
	}
	return LandingDashboard, nil
}
