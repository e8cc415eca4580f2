package repository

import (
	"context"
	"time"

	"grant-compass/internal/database"
)

type CatalogSourceSummary struct {
	Source       string
	GrantCount   int
	LastRunAt    *time.Time
	LastRunState string
	Errors       int
}

type CatalogSummary struct {
	TotalGrants   int
	ActiveGrants  int
	ExpiredGrants int
}

type ApplicationFunnelSummary struct {
	Status string
	Count  int
}

type CatalogStatusRepository interface {
	ListSourceSummaries(ctx context.Context) ([]CatalogSourceSummary, error)
	GetCatalogSummary(ctx context.Context, asOf time.Time) (CatalogSummary, error)
	ListApplicationFunnel(ctx context.Context) ([]ApplicationFunnelSummary, error)
}

type PostgresCatalogStatusRepository struct {
	db database.DB
}

func NewPostgresCatalogStatusRepository(db database.DB) *PostgresCatalogStatusRepository {
	return &PostgresCatalogStatusRepository{db: db}
}

func (r *PostgresCatalogStatusRepository) ListSourceSummaries(ctx context.Context) ([]CatalogSourceSummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT s.name,
		        COALESCE(g.cnt, 0),
		        lr.started_at,
		        COALESCE(lr.status, ''),
		        COALESCE(le.cnt, 0)
		 FROM catalog_sources s
		 LEFT JOIN (
			SELECT source, COUNT(1) AS cnt FROM grants GROUP BY source
		 ) g ON g.source = s.name
		 LEFT JOIN LATERAL (
			SELECT id, started_at, status
			FROM crawl_runs
			WHERE source_id = s.id
			ORDER BY started_at DESC
			LIMIT 1
		 ) lr ON true
		 LEFT JOIN LATERAL (
			SELECT COUNT(1) AS cnt
			FROM crawl_logs
			WHERE crawl_run_id = lr.id AND level = 'error'
		 ) le ON true
		 ORDER BY s.name ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CatalogSourceSummary, 0)
	for rows.Next() {
		var it CatalogSourceSummary
		if err := rows.Scan(&it.Source, &it.GrantCount, &it.LastRunAt, &it.LastRunState, &it.Errors); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresCatalogStatusRepository) GetCatalogSummary(ctx context.Context, asOf time.Time) (CatalogSummary, error) {
	var out CatalogSummary
	row := r.db.QueryRow(ctx,
		`SELECT COUNT(1),
		        COALESCE(COUNT(1) FILTER (WHERE deadline >= $1), 0),
		        COALESCE(COUNT(1) FILTER (WHERE deadline < $1), 0)
		 FROM grants`,
		asOf.UTC().Truncate(24*time.Hour),
	)
	if err := row.Scan(&out.TotalGrants, &out.ActiveGrants, &out.ExpiredGrants); err != nil {
		return CatalogSummary{}, err
	}
	return out, nil
}

func (r *PostgresCatalogStatusRepository) ListApplicationFunnel(ctx context.Context) ([]ApplicationFunnelSummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT status, COUNT(1)
		 FROM applications
		 GROUP BY status
		 ORDER BY status ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ApplicationFunnelSummary, 0)
	for rows.Next() {
		var it ApplicationFunnelSummary
		if err := rows.Scan(&it.Status, &it.Count); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
