package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"grant-compass/internal/domain/profile"

	"github.com/google/uuid"
)

var ErrProfileNotFound = errors.New("profile not found")

type SubmitProfileInput struct {
	Occupation   string
	Birthdate    time.Time
	Income       *int64
	Demographic  profile.Demographic
	Organization string
}

type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (profile.Profile, error)
	SubmitProfile(ctx context.Context, userID uuid.UUID, in SubmitProfileInput) (profile.Profile, error)
}

type Profiles struct {
	profiles profile.Repository
	cache    MatchCache
	logger   *log.Logger
	now      func() time.Time
}

func NewProfileUsecase(profiles profile.Repository, cache MatchCache, logger *log.Logger) *Profiles {
	if logger == nil {
		logger = log.Default()
	}
	return &Profiles{profiles: profiles, cache: cache, logger: logger, now: time.Now}
}

func (u *Profiles) GetProfile(ctx context.Context, userID uuid.UUID) (profile.Profile, error) {
	if userID == uuid.Nil {
		return profile.Profile{}, ErrUnauthorized
	}
	p, err := u.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return profile.Profile{}, ErrProfileNotFound
		}
		return profile.Profile{}, ErrStoreUnavailable
	}
	return p, nil
}

// SubmitProfile validates and stores the full profile. Submissions always
// overwrite: there is no partially-saved state visible to matching.
func (u *Profiles) SubmitProfile(ctx context.Context, userID uuid.UUID, in SubmitProfileInput) (profile.Profile, error) {
	if userID == uuid.Nil {
		return profile.Profile{}, ErrUnauthorized
	}

	now := u.now().UTC()
	p := profile.Profile{
		UserID:       userID,
		Occupation:   in.Occupation,
		Birthdate:    in.Birthdate,
		Income:       in.Income,
		Demographic:  in.Demographic,
		Organization: in.Organization,
	}
	if err := p.Validate(now); err != nil {
		return profile.Profile{}, err
	}

	if err := u.profiles.Put(ctx, p); err != nil {
		return profile.Profile{}, ErrStoreUnavailable
	}

	// A changed profile changes eligibility; stale matched lists must go.
	if u.cache != nil {
		if err := u.cache.Delete(ctx, MatchedGrantsCacheKey(userID)); err != nil {
			u.logger.Printf("profile_submit cache_invalidate user=%s err=%v", userID, err)
		}
	}

	stored, err := u.profiles.Get(ctx, userID)
	if err != nil {
		return profile.Profile{}, ErrStoreUnavailable
	}
	return stored, nil
}
