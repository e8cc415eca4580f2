package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"grant-compass/internal/database"
	"grant-compass/internal/domain/grant"
	"grant-compass/internal/domain/profile"

	"github.com/gocolly/colly/v2"
)

// PortalSource ingests grants from HTML portals that publish a listing page
// of program links and a detail page per program.
type PortalSource struct {
	db          database.DB
	catalog     grant.Writer
	name        string
	baseURL     string
	allowedHost string
	userAgent   string
	workers     int
	rateRPS     int
}

func NewPortalSource(db database.DB, catalog grant.Writer, name, baseURL, userAgent string, workers, rateRPS int) *PortalSource {
	s := &PortalSource{
		db:        db,
		catalog:   catalog,
		name:      strings.TrimSpace(name),
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		userAgent: strings.TrimSpace(userAgent),
		workers:   workers,
		rateRPS:   rateRPS,
	}
	if s.userAgent == "" {
		s.userAgent = "grant-compass-crawler/1.0"
	}
	if s.workers <= 0 {
		s.workers = 4
	}
	s.allowedHost = hostFromBaseURL(s.baseURL)
	return s
}

func (s *PortalSource) Name() string { return s.name }

func (s *PortalSource) Run(ctx context.Context, pages int) error {
	if s == nil || s.db == nil || s.catalog == nil {
		return fmt.Errorf("nil source/db")
	}
	if pages <= 0 {
		pages = 1
	}

	sourceID, err := ensureCatalogSource(ctx, s.db, s.name, s.baseURL, "portal")
	if err != nil {
		return err
	}

	runID, _ := createCrawlRun(ctx, s.db, sourceID)
	defer func() {
		_ = finishCrawlRun(context.Background(), s.db, runID, "finished")
	}()

	pool := newFetchPool(s.workers, s.rateRPS)
	results := pool.Start(ctx)

	for page := 1; page <= pages; page++ {
		listURL := fmt.Sprintf("%s/programs?page=%d", s.baseURL, page)
		links, err := s.collectProgramLinks(ctx, listURL)
		if err != nil || len(links) == 0 {
			// Some portals render the program list client side.
			headless, herr := s.collectProgramLinksHeadless(ctx, listURL, 50)
			if herr != nil {
				if err == nil {
					err = herr
				}
				_ = logCrawl(ctx, s.db, runID, "error", fmt.Sprintf("%s list page %d: %v", s.name, page, err))
				continue
			}
			links = headless
		}
		for _, link := range links {
			link := link
			pool.Enqueue(link, func(ctx context.Context) error {
				g, err := s.scrapeDetailPage(ctx, link)
				if err != nil {
					return err
				}
				return s.catalog.Upsert(ctx, g)
			})
		}
	}

	pool.Close()

	for res := range results {
		if res.Err != nil {
			_ = logCrawl(ctx, s.db, runID, "error", fmt.Sprintf("%s %s: %v", s.name, res.URL, res.Err))
		}
	}

	return nil
}

func (s *PortalSource) collectProgramLinks(ctx context.Context, listURL string) ([]string, error) {
	c := colly.NewCollector(
		colly.AllowedDomains(s.allowedHost),
		colly.UserAgent(s.userAgent),
	)
	_ = c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 2, RandomDelay: 500 * time.Millisecond, Delay: 300 * time.Millisecond})

	links := make([]string, 0)

	c.OnHTML("a", func(e *colly.HTMLElement) {
		href := strings.TrimSpace(e.Attr("href"))
		if href == "" {
			return
		}
		if !strings.Contains(href, "/programs/") && !strings.Contains(href, "/grants/") && !strings.Contains(href, "/benefits/") {
			return
		}
		abs := e.Request.AbsoluteURL(href)
		if abs == "" {
			return
		}
		links = append(links, abs)
	})

	var reqErr error
	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err := c.Visit(listURL); err != nil {
		return nil, err
	}
	c.Wait()
	if reqErr != nil {
		return nil, reqErr
	}

	dedup := map[string]struct{}{}
	out := make([]string, 0, len(links))
	for _, link := range links {
		u := normalizeURL(link)
		if u == "" {
			continue
		}
		if _, ok := dedup[u]; ok {
			continue
		}
		dedup[u] = struct{}{}
		out = append(out, u)
	}
	return out, nil
}

type portalDetail struct {
	title           string
	deadline        string
	minIncome       string
	maxIncome       string
	demographics    string
	occupationClass string
	documents       string
	steps           string
}

func (s *PortalSource) scrapeDetailPage(ctx context.Context, pageURL string) (grant.Grant, error) {
	c := colly.NewCollector(
		colly.AllowedDomains(s.allowedHost),
		colly.UserAgent(s.userAgent),
	)
	_ = c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 2, RandomDelay: 500 * time.Millisecond, Delay: 300 * time.Millisecond})

	var detail portalDetail
	var reqErr error

	c.OnHTML("h1", func(e *colly.HTMLElement) {
		if detail.title == "" {
			detail.title = strings.TrimSpace(e.Text)
		}
	})

	// Portals publish program facts as labeled definition rows.
	c.OnHTML("[data-field]", func(e *colly.HTMLElement) {
		value := strings.TrimSpace(e.Text)
		switch strings.TrimSpace(e.Attr("data-field")) {
		case "deadline":
			detail.deadline = value
		case "min-income":
			detail.minIncome = value
		case "max-income":
			detail.maxIncome = value
		case "eligible-groups":
			detail.demographics = value
		case "occupation-class":
			detail.occupationClass = value
		case "documents":
			detail.documents = value
		case "steps":
			detail.steps = value
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	if ctx.Err() != nil {
		return grant.Grant{}, ctx.Err()
	}
	if err := c.Visit(pageURL); err != nil {
		return grant.Grant{}, err
	}
	c.Wait()
	if reqErr != nil {
		return grant.Grant{}, reqErr
	}

	return s.toGrant(detail, pageURL)
}

func (s *PortalSource) toGrant(d portalDetail, pageURL string) (grant.Grant, error) {
	if d.title == "" {
		return grant.Grant{}, fmt.Errorf("no title at %s", pageURL)
	}

	deadline, err := ParseDeadline(d.deadline)
	if err != nil {
		return grant.Grant{}, fmt.Errorf("%s: %w", d.title, err)
	}

	demographics := make([]profile.Demographic, 0)
	for _, raw := range SplitItems(d.demographics) {
		parsed, err := profile.ParseDemographic(raw)
		if err != nil || parsed == profile.DemographicNone {
			continue
		}
		demographics = append(demographics, parsed)
	}

	return grant.Grant{
		ID:       SlugID(s.name, d.title),
		Name:     d.title,
		Deadline: deadline,
		Criteria: grant.Eligibility{
			MinIncome:       ParseMoney(d.minIncome),
			MaxIncome:       ParseMoney(d.maxIncome),
			Demographics:    demographics,
			OccupationClass: d.occupationClass,
		},
		Documents: SplitItems(d.documents),
		Steps:     SplitItems(d.steps),
		Link:      normalizeURL(pageURL),
		Source:    s.name,
	}, nil
}
