package repository

import (
	"context"
	"errors"
	"time"

	"grant-compass/internal/database"
	"grant-compass/internal/domain/profile"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PostgresProfileRepository struct {
	db database.DB
}

func NewPostgresProfileRepository(db database.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) Get(ctx context.Context, userID uuid.UUID) (profile.Profile, error) {
	row := r.db.QueryRow(ctx,
		`SELECT user_id, occupation, birthdate, income, demographic, organization, created_at, updated_at
		 FROM profiles
		 WHERE user_id = $1`,
		userID,
	)

	var p profile.Profile
	var demographic string
	if err := row.Scan(&p.UserID, &p.Occupation, &p.Birthdate, &p.Income, &demographic, &p.Organization, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, err
	}
	p.Demographic = profile.Demographic(demographic)
	return p, nil
}

func (r *PostgresProfileRepository) Put(ctx context.Context, p profile.Profile) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO profiles (user_id, occupation, birthdate, income, demographic, organization, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
		 ON CONFLICT (user_id) DO UPDATE SET
			occupation = EXCLUDED.occupation,
			birthdate = EXCLUDED.birthdate,
			income = EXCLUDED.income,
			demographic = EXCLUDED.demographic,
			organization = EXCLUDED.organization,
			updated_at = EXCLUDED.updated_at`,
		p.UserID,
		p.Occupation,
		p.Birthdate,
		p.Income,
		string(p.Demographic),
		p.Organization,
		now,
	)
	return err
}
