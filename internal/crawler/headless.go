package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// collectProgramLinksHeadless renders the listing page in headless Chrome
// for portals that build the program list client side.
func (s *PortalSource) collectProgramLinksHeadless(ctx context.Context, listURL string, limit int) ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("nil source")
	}
	if limit <= 0 {
		limit = 50
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(s.userAgent),
		)...,
	)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	reqCtx, reqCancel := context.WithTimeout(browserCtx, 25*time.Second)
	defer reqCancel()

	var hrefs []string
	err := chromedp.Run(reqCtx,
		chromedp.Navigate(listURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.EvaluateAsDevTools(`Array.from(document.querySelectorAll('a[href]'))
			.map(a => a.getAttribute('href'))
			.filter(h => h && (h.includes('/programs/') || h.includes('/grants/') || h.includes('/benefits/')))`, &hrefs),
	)
	if err != nil {
		return nil, err
	}

	base := strings.TrimRight(s.baseURL, "/")
	seen := map[string]struct{}{}
	out := make([]string, 0, limit)

	for _, h := range hrefs {
		if len(out) >= limit {
			break
		}
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if strings.HasPrefix(h, "/") {
			h = base + h
		} else if !strings.HasPrefix(h, "http://") && !strings.HasPrefix(h, "https://") {
			h = base + "/" + h
		}
		u := normalizeURL(h)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no program urls found (headless)")
	}
	return out, nil
}
