package usecase

import (
	"context"
	"log"
	"sync"
	"time"

	"grant-compass/internal/repository"
)

type CatalogSourceStatus struct {
	Source       string     `json:"source"`
	GrantCount   int        `json:"grant_count"`
	LastRunAt    *time.Time `json:"last_run_at"`
	LastRunState string     `json:"last_run_state"`
	Errors       int        `json:"errors"`
}

type CatalogStatusData struct {
	Sources       []CatalogSourceStatus `json:"sources"`
	TotalGrants   int                   `json:"total_grants"`
	ActiveGrants  int                   `json:"active_grants"`
	ExpiredGrants int                   `json:"expired_grants"`
	Applications  map[string]int        `json:"applications"`
	LastUpdated   time.Time             `json:"last_updated"`
}

type CatalogStatusUsecase interface {
	GetStatus(ctx context.Context) (CatalogStatusData, error)
}

type CatalogStatus struct {
	repo   repository.CatalogStatusRepository
	logger *log.Logger
	now    func() time.Time
}

func NewCatalogStatusUsecase(repo repository.CatalogStatusRepository, logger *log.Logger) *CatalogStatus {
	if logger == nil {
		logger = log.Default()
	}
	return &CatalogStatus{repo: repo, logger: logger, now: time.Now}
}

// GetStatus gathers the ingestion and funnel summaries concurrently. A
// failed summary is logged and left zeroed; the endpoint stays useful when
// one query misbehaves.
func (u *CatalogStatus) GetStatus(ctx context.Context) (CatalogStatusData, error) {
	now := u.now().UTC()

	var (
		sources []repository.CatalogSourceSummary
		catalog repository.CatalogSummary
		funnel  []repository.ApplicationFunnelSummary

		errSources error
		errCatalog error
		errFunnel  error
	)

	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		sources, errSources = u.repo.ListSourceSummaries(ctx)
		if errSources != nil {
			u.logger.Printf("catalog_status step=sources status=error err=%v", errSources)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		catalog, errCatalog = u.repo.GetCatalogSummary(ctx, now)
		if errCatalog != nil {
			u.logger.Printf("catalog_status step=catalog status=error err=%v", errCatalog)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		funnel, errFunnel = u.repo.ListApplicationFunnel(ctx)
		if errFunnel != nil {
			u.logger.Printf("catalog_status step=funnel status=error err=%v", errFunnel)
		}
	}()

	wg.Wait()

	data := CatalogStatusData{
		Sources:       make([]CatalogSourceStatus, 0, len(sources)),
		TotalGrants:   catalog.TotalGrants,
		ActiveGrants:  catalog.ActiveGrants,
		ExpiredGrants: catalog.ExpiredGrants,
		Applications:  make(map[string]int),
		LastUpdated:   now,
	}

	if errSources == nil {
		for _, s := range sources {
			data.Sources = append(data.Sources, CatalogSourceStatus{
				Source:       s.Source,
				GrantCount:   s.GrantCount,
				LastRunAt:    s.LastRunAt,
				LastRunState: s.LastRunState,
				Errors:       s.Errors,
			})
		}
	}
	if errFunnel == nil {
		for _, f := range funnel {
			data.Applications[f.Status] = f.Count
		}
	}

	return data, nil
}
