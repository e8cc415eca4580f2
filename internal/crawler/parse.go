package crawler

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var deadlineLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
	"2 January 2006",
	time.RFC3339,
}

// ParseDeadline accepts the date formats the portals actually publish.
func ParseDeadline(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty deadline")
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			y, m, d := t.UTC().Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized deadline %q", raw)
}

// SplitItems turns the delimiter-joined lists portals publish ("ID Proof,
// Income Certificate; Medical Records") into an ordered slice. Order is
// preserved; empty fragments are dropped.
func SplitItems(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	split := func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	}

	out := make([]string, 0)
	for _, part := range strings.FieldsFunc(raw, split) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// ParseMoney reads amounts like "$25,000" or "40000" into whole currency
// units. Returns nil when the field is absent or not a number.
func ParseMoney(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.TrimSpace(raw)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// SlugID derives a stable grant identifier from the source name and title.
func SlugID(source, title string) string {
	s := strings.ToLower(strings.TrimSpace(source) + "-" + strings.TrimSpace(title))
	s = nonSlug.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	u.Fragment = ""
	return u.String()
}

// hostFromBaseURL strips any port so the host matches what colly's
// domain filter compares against.
func hostFromBaseURL(base string) string {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return ""
	}
	host := u.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
