package seeder

import (
	"context"
	"fmt"

	"grant-compass/internal/database"
)

type CatalogSourcesSeeder struct{}

func (CatalogSourcesSeeder) Name() string { return "catalog_sources" }

func (CatalogSourcesSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "catalog_sources", "id", "name", "base_url", "kind", "created_at"); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	items := []struct {
		Name    string
		BaseURL string
		Kind    string
	}{
		{Name: "grants.gov", BaseURL: "https://www.grants.gov", Kind: "api"},
		{Name: "benefits.va.gov", BaseURL: "https://www.benefits.va.gov", Kind: "portal"},
		{Name: "childcare.gov", BaseURL: "https://www.childcare.gov", Kind: "portal"},
		{Name: "studentaid.gov", BaseURL: "https://studentaid.gov", Kind: "portal"},
	}

	for _, it := range items {
		_, err := tx.Exec(
			ctx,
			`INSERT INTO catalog_sources (id, name, base_url, kind) VALUES (gen_random_uuid(), $1, $2, $3) ON CONFLICT (name) DO NOTHING`,
			it.Name,
			it.BaseURL,
			it.Kind,
		)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
