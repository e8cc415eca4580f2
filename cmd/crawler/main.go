package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"grant-compass/internal/app"
	"grant-compass/internal/config"
	"grant-compass/internal/crawler"
	"grant-compass/internal/database/migration"
	"grant-compass/internal/repository"
)

type source interface {
	Name() string
	Run(ctx context.Context, pages int) error
}

func main() {
	sourceFlag := flag.String("source", "all", "catalog source to crawl (all, grants.gov, benefits.va.gov, childcare.gov, studentaid.gov)")
	pages := flag.Int("pages", 2, "listing pages per source")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	c, err := app.NewContainer(cfg)
	if err != nil {
		log.Fatalf("failed to init container: %v", err)
	}
	defer func() {
		_ = c.Close()
	}()

	migCtx, migCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	r := migration.Runner{Dir: "migrations"}
	if err := r.Run(migCtx, c.DB.SQLDB()); err != nil {
		migCancel()
		log.Fatalf("migration failed: %v", err)
	}
	migCancel()

	grants := repository.NewPostgresGrantRepository(c.DB)

	sources := []source{
		crawler.NewAPISource(c.DB, grants, "grants.gov", "https://www.grants.gov"),
		crawler.NewPortalSource(c.DB, grants, "benefits.va.gov", "https://www.benefits.va.gov", cfg.Crawler.UserAgent, cfg.Crawler.Workers, cfg.Crawler.RateRPS),
		crawler.NewPortalSource(c.DB, grants, "childcare.gov", "https://www.childcare.gov", cfg.Crawler.UserAgent, cfg.Crawler.Workers, cfg.Crawler.RateRPS),
		crawler.NewPortalSource(c.DB, grants, "studentaid.gov", "https://studentaid.gov", cfg.Crawler.UserAgent, cfg.Crawler.Workers, cfg.Crawler.RateRPS),
	}

	want := strings.TrimSpace(strings.ToLower(*sourceFlag))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	ran := 0
	for _, s := range sources {
		if want != "all" && want != strings.ToLower(s.Name()) {
			continue
		}

		// One crawl per source at a time, across processes.
		locked, err := c.Cache.SetIfNotExists(ctx, "crawl:lock:"+s.Name(), "1", 30*time.Minute)
		if err == nil && !locked {
			log.Printf("crawl source=%s status=skipped reason=lock_held", s.Name())
			continue
		}

		start := time.Now()
		if err := s.Run(ctx, *pages); err != nil {
			log.Printf("crawl source=%s status=error duration=%s err=%v", s.Name(), time.Since(start), err)
		} else {
			log.Printf("crawl source=%s status=finished duration=%s", s.Name(), time.Since(start))
		}
		ran++
	}

	if ran == 0 {
		log.Fatalf("unknown source %q", want)
	}

	// Fresh catalog, stale matches: drop every cached match result.
	if err := c.Cache.InvalidateMatchResults(ctx); err != nil {
		log.Printf("match cache invalidation error: %v", err)
	}
}
