package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"grant-compass/internal/database"

	"github.com/google/uuid"
)

func ensureCatalogSource(ctx context.Context, db database.DB, name, baseURL, kind string) (uuid.UUID, error) {
	if db == nil {
		return uuid.Nil, fmt.Errorf("nil db")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.Nil, fmt.Errorf("empty source name")
	}

	_, _ = db.Exec(ctx,
		`INSERT INTO catalog_sources (id, name, base_url, kind) VALUES (gen_random_uuid(), $1, $2, $3) ON CONFLICT (name) DO NOTHING`,
		name, strings.TrimSpace(baseURL), strings.TrimSpace(kind),
	)

	row := db.QueryRow(ctx, `SELECT id FROM catalog_sources WHERE name = $1 LIMIT 1`, name)
	var id uuid.UUID
	if err := row.Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func createCrawlRun(ctx context.Context, db database.DB, sourceID uuid.UUID) (uuid.UUID, error) {
	if db == nil {
		return uuid.Nil, fmt.Errorf("nil db")
	}
	id := uuid.New()
	_, err := db.Exec(ctx,
		`INSERT INTO crawl_runs (id, source_id, started_at, status) VALUES ($1,$2,$3,$4)`,
		id, sourceID, time.Now().UTC(), "running",
	)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func finishCrawlRun(ctx context.Context, db database.DB, runID uuid.UUID, status string) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	if runID == uuid.Nil {
		return nil
	}
	_, err := db.Exec(ctx,
		`UPDATE crawl_runs SET finished_at = $2, status = $3 WHERE id = $1`,
		runID, time.Now().UTC(), strings.TrimSpace(status),
	)
	return err
}

func logCrawl(ctx context.Context, db database.DB, runID uuid.UUID, level, message string) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	if runID == uuid.Nil {
		return nil
	}
	level = strings.TrimSpace(level)
	if level == "" {
		level = "info"
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}
	_, err := db.Exec(ctx,
		`INSERT INTO crawl_logs (id, crawl_run_id, level, message) VALUES ($1,$2,$3,$4)`,
		uuid.New(), runID, level, message,
	)
	return err
}
