package seeder

import (
	"context"
	"errors"
	"fmt"
	"log"

	"grant-compass/internal/database"
)

// Runner executes seeders in order and stops at the first failure, since a
// later seeder may depend on rows a failed one should have written.
type Runner struct {
	Seeders []Seeder
	Logger  *log.Logger
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return errors.New("seeder: nil db")
	}
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		logger.Printf("seed applied name=%s", s.Name())
	}
	return nil
}
