package grant

import (
	"strings"
	"time"

	"grant-compass/internal/domain/profile"
)

// Grant is one catalog offering. Documents and Steps are ordered slices;
// the catalog never stores them delimiter-encoded.
type Grant struct {
	ID        string
	Name      string
	Deadline  time.Time
	Criteria  Eligibility
	Documents []string
	Steps     []string
	Link      string
	Source    string
	UpdatedAt time.Time
}

// Eligibility is the structured predicate a profile is evaluated against.
// A nil bound or empty set imposes no constraint.
type Eligibility struct {
	MinIncome       *int64
	MaxIncome       *int64
	Demographics    []profile.Demographic
	OccupationClass string
}

// Expired reports whether the deadline has passed as of the given date.
// A deadline on the same day is still open.
func (g Grant) Expired(asOf time.Time) bool {
	return g.Deadline.Before(truncateToDay(asOf))
}

// Satisfies evaluates the eligibility predicate field by field. Absent
// profile fields get the benefit of the doubt.
func (e Eligibility) Satisfies(p profile.Profile) bool {
	if p.Income != nil {
		if e.MinIncome != nil && *p.Income < *e.MinIncome {
			return false
		}
		if e.MaxIncome != nil && *p.Income > *e.MaxIncome {
			return false
		}
	}

	if len(e.Demographics) > 0 && p.Demographic != profile.DemographicNone {
		member := false
		for _, d := range e.Demographics {
			if d == p.Demographic {
				member = true
				break
			}
		}
		if !member {
			return false
		}
	}

	if cls := strings.TrimSpace(e.OccupationClass); cls != "" {
		occ := strings.ToLower(strings.TrimSpace(p.Occupation))
		if !strings.Contains(occ, strings.ToLower(cls)) {
			return false
		}
	}

	return true
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
