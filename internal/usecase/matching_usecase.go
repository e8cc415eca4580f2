package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"grant-compass/internal/domain/grant"
	"grant-compass/internal/domain/matching"
	"grant-compass/internal/domain/profile"

	"github.com/google/uuid"
)

var ErrIncompleteProfile = errors.New("profile incomplete")

type MatchingUsecase interface {
	MatchedGrants(ctx context.Context, userID uuid.UUID) ([]grant.Grant, error)
	ActiveGrants(ctx context.Context) ([]grant.Grant, error)
}

type Matching struct {
	profiles profile.Repository
	catalog  grant.Catalog
	cache    MatchCache
	logger   *log.Logger
	now      func() time.Time
}

func NewMatchingUsecase(profiles profile.Repository, catalog grant.Catalog, cache MatchCache, logger *log.Logger) *Matching {
	if logger == nil {
		logger = log.Default()
	}
	return &Matching{profiles: profiles, catalog: catalog, cache: cache, logger: logger, now: time.Now}
}

// MatchedGrants recomputes the user's eligible grants from the current
// profile and catalog. The Redis entry is only a short-lived read
// accelerator: profile submissions and crawl runs invalidate it, so edits
// take effect immediately.
func (u *Matching) MatchedGrants(ctx context.Context, userID uuid.UUID) ([]grant.Grant, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	cacheKey := MatchedGrantsCacheKey(userID)
	if u.cache != nil {
		var cached []grant.Grant
		hit, err := u.cache.GetJSON(ctx, cacheKey, &cached)
		if err == nil && hit {
			return cached, nil
		}
	}

	p, err := u.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return nil, ErrIncompleteProfile
		}
		return nil, ErrStoreUnavailable
	}

	asOf := u.now().UTC()
	grants, err := u.catalog.ListActive(ctx, asOf)
	if err != nil {
		return nil, ErrStoreUnavailable
	}

	matched, err := matching.Match(p, grants, asOf)
	if err != nil {
		if errors.Is(err, matching.ErrIncompleteProfile) {
			return nil, ErrIncompleteProfile
		}
		return nil, ErrInternal
	}

	if u.cache != nil {
		if err := u.cache.SetJSON(ctx, cacheKey, matched, matchedGrantsTTL); err != nil {
			u.logger.Printf("matched_grants cache_set user=%s err=%v", userID, err)
		}
	}

	return matched, nil
}

func (u *Matching) ActiveGrants(ctx context.Context) ([]grant.Grant, error) {
	grants, err := u.catalog.ListActive(ctx, u.now().UTC())
	if err != nil {
		return nil, ErrStoreUnavailable
	}
	return grants, nil
}
