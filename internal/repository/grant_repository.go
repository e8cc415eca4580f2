package repository

import (
	"context"
	"errors"
	"time"

	"grant-compass/internal/database"
	"grant-compass/internal/domain/grant"
	"grant-compass/internal/domain/profile"

	"github.com/jackc/pgx/v5"
)

type PostgresGrantRepository struct {
	db database.DB
}

func NewPostgresGrantRepository(db database.DB) *PostgresGrantRepository {
	return &PostgresGrantRepository{db: db}
}

const grantColumns = `id, name, deadline, min_income, max_income, demographics, occupation_class, documents, steps, link, source, updated_at`

func (r *PostgresGrantRepository) ListActive(ctx context.Context, asOf time.Time) ([]grant.Grant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+grantColumns+`
		 FROM grants
		 WHERE deadline >= $1
		 ORDER BY deadline ASC, id ASC`,
		asOf.UTC().Truncate(24*time.Hour),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]grant.Grant, 0)
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresGrantRepository) GetByID(ctx context.Context, id string) (grant.Grant, error) {
	row := r.db.QueryRow(ctx, `SELECT `+grantColumns+` FROM grants WHERE id = $1`, id)
	g, err := scanGrant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return grant.Grant{}, grant.ErrNotFound
		}
		return grant.Grant{}, err
	}
	return g, nil
}

func (r *PostgresGrantRepository) Upsert(ctx context.Context, g grant.Grant) error {
	demographics := make([]string, 0, len(g.Criteria.Demographics))
	for _, d := range g.Criteria.Demographics {
		demographics = append(demographics, string(d))
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO grants (id, name, deadline, min_income, max_income, demographics, occupation_class, documents, steps, link, source, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			deadline = EXCLUDED.deadline,
			min_income = EXCLUDED.min_income,
			max_income = EXCLUDED.max_income,
			demographics = EXCLUDED.demographics,
			occupation_class = EXCLUDED.occupation_class,
			documents = EXCLUDED.documents,
			steps = EXCLUDED.steps,
			link = EXCLUDED.link,
			source = EXCLUDED.source,
			updated_at = EXCLUDED.updated_at`,
		g.ID,
		g.Name,
		g.Deadline,
		g.Criteria.MinIncome,
		g.Criteria.MaxIncome,
		demographics,
		g.Criteria.OccupationClass,
		g.Documents,
		g.Steps,
		g.Link,
		g.Source,
		time.Now().UTC(),
	)
	return err
}

func scanGrant(row database.Row) (grant.Grant, error) {
	var g grant.Grant
	var demographics []string
	if err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Deadline,
		&g.Criteria.MinIncome,
		&g.Criteria.MaxIncome,
		&demographics,
		&g.Criteria.OccupationClass,
		&g.Documents,
		&g.Steps,
		&g.Link,
		&g.Source,
		&g.UpdatedAt,
	); err != nil {
		return grant.Grant{}, err
	}
	if len(demographics) > 0 {
		g.Criteria.Demographics = make([]profile.Demographic, 0, len(demographics))
		for _, d := range demographics {
			g.Criteria.Demographics = append(g.Criteria.Demographics, profile.Demographic(d))
		}
	}
	return g, nil
}
