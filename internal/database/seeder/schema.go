package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"grant-compass/internal/database"
)

// EnsureTableColumns fails the seed when the live schema is missing a
// column the seeder is about to write.
func EnsureTableColumns(ctx context.Context, db database.DB, table string, columns ...string) error {
	if db == nil {
		return errors.New("seeder: nil db")
	}
	if strings.TrimSpace(table) == "" {
		return errors.New("seeder: empty table")
	}

	rows, err := db.Query(
		ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_schema='public' AND table_name=$1`,
		table,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	existing := map[string]struct{}{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return err
		}
		existing[c] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(existing) == 0 {
		return fmt.Errorf("seeder: table %s does not exist", table)
	}

	var missing []string
	for _, col := range columns {
		if _, ok := existing[strings.TrimSpace(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("seeder: table %s missing columns %s", table, strings.Join(missing, ", "))
	}
	return nil
}
