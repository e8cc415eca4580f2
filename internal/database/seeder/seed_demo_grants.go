package seeder

import (
	"context"
	"fmt"
	"time"

	"grant-compass/internal/database"
)

// DemoGrantsSeeder loads a small catalog so a fresh environment has
// something to match against before the first crawl.
type DemoGrantsSeeder struct{}

func (DemoGrantsSeeder) Name() string { return "demo_grants" }

func (DemoGrantsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "grants",
		"id", "name", "deadline", "min_income", "max_income", "demographics",
		"occupation_class", "documents", "steps", "link", "source", "updated_at"); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	now := time.Now().UTC()
	deadline := func(days int) time.Time {
		y, m, d := now.AddDate(0, 0, days).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	income := func(v int64) *int64 { return &v }

	items := []struct {
		ID              string
		Name            string
		Deadline        time.Time
		MinIncome       *int64
		MaxIncome       *int64
		Demographics    []string
		OccupationClass string
		Documents       []string
		Steps           []string
	}{
		{
			ID:              "demo-healthcare-support-grant",
			Name:            "Healthcare Support Grant",
			Deadline:        deadline(120),
			MaxIncome:       income(30000),
			Demographics:    []string{"senior", "disabled"},
			OccupationClass: "healthcare",
			Documents:       []string{"ID Proof", "Income Certificate", "Medical Records"},
			Steps:           []string{"Fill out the application form", "Attach required documents", "Submit to the nearest office"},
		},
		{
			ID:              "demo-education-assistance-grant",
			Name:            "Education Assistance Grant",
			Deadline:        deadline(135),
			MaxIncome:       income(40000),
			Demographics:    []string{"student", "unemployed"},
			OccupationClass: "education",
			Documents:       []string{"Proof of Enrollment", "ID Proof", "Income Certificate"},
			Steps:           []string{"Complete the online application", "Attach supporting documents", "Wait for approval"},
		},
		{
			ID:           "demo-housing-assistance-program",
			Name:         "Housing Assistance Program",
			Deadline:     deadline(180),
			MaxIncome:    income(35000),
			Demographics: []string{"low_income", "unemployed"},
			Documents:    []string{"Rental Agreement", "Income Certificate", "ID Proof"},
			Steps:        []string{"Contact your local housing authority", "Submit the application form", "Provide necessary documents"},
		},
		{
			ID:           "demo-childcare-support-grant",
			Name:         "Childcare Support Grant",
			Deadline:     deadline(90),
			MaxIncome:    income(45000),
			Demographics: []string{"low_income"},
			Documents:    []string{"ID Proof", "Income Certificate", "Birth Certificate"},
			Steps:        []string{"Fill out the application form", "Attach required documents", "Submit online"},
		},
	}

	for _, it := range items {
		_, err := tx.Exec(
			ctx,
			`INSERT INTO grants (id, name, deadline, min_income, max_income, demographics, occupation_class, documents, steps, link, source, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			 ON CONFLICT (id) DO NOTHING`,
			it.ID,
			it.Name,
			it.Deadline,
			it.MinIncome,
			it.MaxIncome,
			it.Demographics,
			it.OccupationClass,
			it.Documents,
			it.Steps,
			"",
			"demo",
			now,
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
