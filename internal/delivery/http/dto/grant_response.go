package dto

import (
	"grant-compass/internal/domain/grant"
)

type GrantResponse struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Deadline  string              `json:"deadline"`
	Criteria  EligibilityResponse `json:"criteria"`
	Documents []string            `json:"documents"`
	Steps     []string            `json:"steps"`
	Link      string              `json:"link,omitempty"`
	Source    string              `json:"source,omitempty"`
}

type EligibilityResponse struct {
	MinIncome       *int64   `json:"min_income"`
	MaxIncome       *int64   `json:"max_income"`
	Demographics    []string `json:"demographics"`
	OccupationClass string   `json:"occupation_class,omitempty"`
}

func NewGrantResponse(g grant.Grant) GrantResponse {
	demographics := make([]string, 0, len(g.Criteria.Demographics))
	for _, d := range g.Criteria.Demographics {
		demographics = append(demographics, string(d))
	}

	documents := g.Documents
	if documents == nil {
		documents = []string{}
	}
	steps := g.Steps
	if steps == nil {
		steps = []string{}
	}

	return GrantResponse{
		ID:       g.ID,
		Name:     g.Name,
		Deadline: g.Deadline.Format("2006-01-02"),
		Criteria: EligibilityResponse{
			MinIncome:       g.Criteria.MinIncome,
			MaxIncome:       g.Criteria.MaxIncome,
			Demographics:    demographics,
			OccupationClass: g.Criteria.OccupationClass,
		},
		Documents: documents,
		Steps:     steps,
		Link:      g.Link,
		Source:    g.Source,
	}
}

func NewGrantListResponse(grants []grant.Grant) []GrantResponse {
	out := make([]GrantResponse, 0, len(grants))
	for _, g := range grants {
		out = append(out, NewGrantResponse(g))
	}
	return out
}
