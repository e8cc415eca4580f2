package grant

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("grant not found")

// Catalog is the read contract the core consumes. Entries are managed
// out-of-band by ingestion and seeding.
type Catalog interface {
	ListActive(ctx context.Context, asOf time.Time) ([]Grant, error)
	GetByID(ctx context.Context, id string) (Grant, error)
}

// Writer is used only by the crawler and seeders.
type Writer interface {
	Upsert(ctx context.Context, g Grant) error
}
