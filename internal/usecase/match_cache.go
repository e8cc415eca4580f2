package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MatchCache is the slice of the Redis cache the matching usecases need.
// Implementations bypass (report a miss) rather than fail when the cache
// backend is down.
type MatchCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

const matchedGrantsTTL = 5 * time.Minute

func MatchedGrantsCacheKey(userID uuid.UUID) string {
	return "match:user:" + userID.String()
}
