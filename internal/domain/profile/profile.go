package profile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Demographic string

const (
	DemographicNone       Demographic = ""
	DemographicVeteran    Demographic = "veteran"
	DemographicSenior     Demographic = "senior"
	DemographicStudent    Demographic = "student"
	DemographicDisabled   Demographic = "disabled"
	DemographicUnemployed Demographic = "unemployed"
	DemographicLowIncome  Demographic = "low_income"
	DemographicOther      Demographic = "other"
)

var knownDemographics = map[Demographic]struct{}{
	DemographicVeteran:    {},
	DemographicSenior:     {},
	DemographicStudent:    {},
	DemographicDisabled:   {},
	DemographicUnemployed: {},
	DemographicLowIncome:  {},
	DemographicOther:      {},
}

func ParseDemographic(s string) (Demographic, error) {
	d := Demographic(strings.ToLower(strings.TrimSpace(s)))
	if d == DemographicNone {
		return DemographicNone, nil
	}
	if _, ok := knownDemographics[d]; !ok {
		return DemographicNone, fmt.Errorf("%w: unknown demographic %q", ErrInvalid, s)
	}
	return d, nil
}

// Profile is a user's eligibility profile. It is either absent or complete:
// partially filled profiles are rejected before they reach the store.
type Profile struct {
	UserID       uuid.UUID
	Occupation   string
	Birthdate    time.Time
	Income       *int64
	Demographic  Demographic
	Organization string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var ErrInvalid = errors.New("invalid profile")

func (p Profile) Complete() bool {
	return strings.TrimSpace(p.Occupation) != "" && !p.Birthdate.IsZero()
}

// Validate reports every field problem at once so the caller can surface
// them in a single response.
func (p Profile) Validate(asOf time.Time) error {
	var problems []string

	if strings.TrimSpace(p.Occupation) == "" {
		problems = append(problems, "occupation is required")
	}
	if p.Birthdate.IsZero() {
		problems = append(problems, "birthdate is required")
	} else if p.Birthdate.After(asOf) {
		problems = append(problems, "birthdate must not be in the future")
	}
	if p.Income != nil && *p.Income < 0 {
		problems = append(problems, "income must not be negative")
	}
	if p.Demographic != DemographicNone {
		if _, ok := knownDemographics[p.Demographic]; !ok {
			problems = append(problems, fmt.Sprintf("unknown demographic %q", p.Demographic))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
