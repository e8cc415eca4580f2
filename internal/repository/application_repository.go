package repository

import (
	"context"
	"errors"

	"grant-compass/internal/database"
	"grant-compass/internal/domain/application"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PostgresApplicationRepository struct {
	db database.DB
}

func NewPostgresApplicationRepository(db database.DB) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{db: db}
}

func (r *PostgresApplicationRepository) Create(ctx context.Context, a application.Application) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO applications (id, user_id, grant_id, status, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.UserID, a.GrantID, string(a.Status), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return err
	}

	for _, ch := range a.History {
		_, err = tx.Exec(ctx,
			`INSERT INTO application_status_history (application_id, status, actor, changed_at)
			 VALUES ($1,$2,$3,$4)`,
			a.ID, string(ch.Status), ch.Actor, ch.At,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PostgresApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (application.Application, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, user_id, grant_id, status, created_at, updated_at
		 FROM applications
		 WHERE id = $1`,
		id,
	)

	a, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, err
	}

	history, err := r.loadHistory(ctx, []uuid.UUID{a.ID})
	if err != nil {
		return application.Application{}, err
	}
	a.History = history[a.ID]
	return a, nil
}

func (r *PostgresApplicationRepository) FindActive(ctx context.Context, userID uuid.UUID, grantID string) (application.Application, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, user_id, grant_id, status, created_at, updated_at
		 FROM applications
		 WHERE user_id = $1
		   AND grant_id = $2
		   AND status NOT IN ('approved', 'rejected', 'withdrawn')`,
		userID, grantID,
	)

	a, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, err
	}

	history, err := r.loadHistory(ctx, []uuid.UUID{a.ID})
	if err != nil {
		return application.Application{}, err
	}
	a.History = history[a.ID]
	return a, nil
}

func (r *PostgresApplicationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]application.Application, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, grant_id, status, created_at, updated_at
		 FROM applications
		 WHERE user_id = $1
		 ORDER BY updated_at DESC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]application.Application, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(out) == 0 {
		return out, nil
	}

	history, err := r.loadHistory(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].History = history[out[i].ID]
	}
	return out, nil
}

// UpdateStatus applies a compare-and-set on the current status. The UPDATE
// only matches when the row is still in `from`, so two concurrent transitions
// from the same source state cannot both succeed.
func (r *PostgresApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from application.Status, change application.StatusChange) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	affected, err := tx.Exec(ctx,
		`UPDATE applications
		 SET status = $3, updated_at = $4
		 WHERE id = $1 AND status = $2`,
		id, string(from), string(change.Status), change.At,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		row := tx.QueryRow(ctx, `SELECT 1 FROM applications WHERE id = $1`, id)
		var one int
		if scanErr := row.Scan(&one); scanErr != nil {
			if errors.Is(scanErr, pgx.ErrNoRows) {
				return application.ErrNotFound
			}
			return scanErr
		}
		return application.ErrStatusConflict
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO application_status_history (application_id, status, actor, changed_at)
		 VALUES ($1,$2,$3,$4)`,
		id, string(change.Status), change.Actor, change.At,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PostgresApplicationRepository) loadHistory(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]application.StatusChange, error) {
	rows, err := r.db.Query(ctx,
		`SELECT application_id, status, actor, changed_at
		 FROM application_status_history
		 WHERE application_id = ANY($1)
		 ORDER BY changed_at ASC, id ASC`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]application.StatusChange, len(ids))
	for rows.Next() {
		var appID uuid.UUID
		var ch application.StatusChange
		var status string
		if err := rows.Scan(&appID, &status, &ch.Actor, &ch.At); err != nil {
			return nil, err
		}
		ch.Status = application.Status(status)
		out[appID] = append(out[appID], ch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanApplication(row database.Row) (application.Application, error) {
	var a application.Application
	var status string
	if err := row.Scan(&a.ID, &a.UserID, &a.GrantID, &status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return application.Application{}, err
	}
	a.Status = application.Status(status)
	return a, nil
}
