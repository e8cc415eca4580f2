package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"grant-compass/internal/database"
	"grant-compass/internal/domain/grant"
	"grant-compass/internal/domain/profile"
)

// APISource ingests grants from portals that expose a JSON listing
// (grants.gov-style search APIs).
type APISource struct {
	db      database.DB
	catalog grant.Writer
	client  *http.Client
	name    string
	baseURL string
}

func NewAPISource(db database.DB, catalog grant.Writer, name, baseURL string) *APISource {
	return &APISource{
		db:      db,
		catalog: catalog,
		client:  &http.Client{Timeout: 25 * time.Second},
		name:    strings.TrimSpace(name),
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

type apiGrantItem struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Deadline        string   `json:"close_date"`
	MinIncome       *int64   `json:"min_income"`
	MaxIncome       *int64   `json:"max_income"`
	Demographics    []string `json:"eligible_groups"`
	OccupationClass string   `json:"occupation_class"`
	Documents       string   `json:"documents_needed"`
	Steps           string   `json:"steps_to_apply"`
	Link            string   `json:"apply_url"`
}

type apiListing struct {
	Items []apiGrantItem `json:"items"`
	Total int            `json:"total"`
}

func (s *APISource) Name() string { return s.name }

func (s *APISource) Run(ctx context.Context, pages int) error {
	if s == nil || s.db == nil || s.catalog == nil {
		return fmt.Errorf("nil source/db")
	}
	if pages <= 0 {
		pages = 1
	}

	sourceID, err := ensureCatalogSource(ctx, s.db, s.name, s.baseURL, "api")
	if err != nil {
		return err
	}

	runID, _ := createCrawlRun(ctx, s.db, sourceID)
	status := "finished"
	defer func() {
		_ = finishCrawlRun(context.Background(), s.db, runID, status)
	}()

	for page := 1; page <= pages; page++ {
		listing, err := s.fetchPage(ctx, page)
		if err != nil {
			status = "failed"
			_ = logCrawl(ctx, s.db, runID, "error", fmt.Sprintf("page %d: %v", page, err))
			return err
		}

		for _, it := range listing.Items {
			g, err := s.toGrant(it)
			if err != nil {
				_ = logCrawl(ctx, s.db, runID, "error", fmt.Sprintf("item %s: %v", it.ID, err))
				continue
			}
			if err := s.catalog.Upsert(ctx, g); err != nil {
				_ = logCrawl(ctx, s.db, runID, "error", fmt.Sprintf("upsert %s: %v", g.ID, err))
			}
		}

		if len(listing.Items) == 0 {
			break
		}
	}

	return nil
}

func (s *APISource) fetchPage(ctx context.Context, page int) (apiListing, error) {
	url := fmt.Sprintf("%s/api/grants?page=%d", s.baseURL, page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return apiListing{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return apiListing{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return apiListing{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var listing apiListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return apiListing{}, err
	}
	return listing, nil
}

func (s *APISource) toGrant(it apiGrantItem) (grant.Grant, error) {
	title := strings.TrimSpace(it.Title)
	if title == "" {
		return grant.Grant{}, fmt.Errorf("empty title")
	}

	deadline, err := ParseDeadline(it.Deadline)
	if err != nil {
		return grant.Grant{}, err
	}

	id := strings.TrimSpace(it.ID)
	if id == "" {
		id = SlugID(s.name, title)
	} else {
		id = SlugID(s.name, id)
	}

	demographics := make([]profile.Demographic, 0, len(it.Demographics))
	for _, d := range it.Demographics {
		parsed, err := profile.ParseDemographic(d)
		if err != nil || parsed == profile.DemographicNone {
			continue
		}
		demographics = append(demographics, parsed)
	}

	return grant.Grant{
		ID:       id,
		Name:     title,
		Deadline: deadline,
		Criteria: grant.Eligibility{
			MinIncome:       it.MinIncome,
			MaxIncome:       it.MaxIncome,
			Demographics:    demographics,
			OccupationClass: strings.TrimSpace(it.OccupationClass),
		},
		Documents: SplitItems(it.Documents),
		Steps:     SplitItems(it.Steps),
		Link:      normalizeURL(it.Link),
		Source:    s.name,
	}, nil
}
