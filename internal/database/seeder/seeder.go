// Package seeder provides the idempotent reference data the service needs
// on a fresh database: the catalog source registry and a handful of demo
// grants. Every seeder must be safe to run on every start.
package seeder

import (
	"context"

	"grant-compass/internal/database"
)

type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}
