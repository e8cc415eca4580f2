package application

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusApplied                Status = "applied"
	StatusUnderReview            Status = "under_review"
	StatusDocumentationRequested Status = "documentation_requested"
	StatusApproved               Status = "approved"
	StatusRejected               Status = "rejected"
	StatusWithdrawn              Status = "withdrawn"
)

// transitions is the full lifecycle table. Withdrawn is reachable from every
// non-terminal status; terminal statuses have no outgoing edges.
var transitions = map[Status][]Status{
	StatusApplied:                {StatusUnderReview, StatusWithdrawn},
	StatusUnderReview:            {StatusDocumentationRequested, StatusApproved, StatusRejected, StatusWithdrawn},
	StatusDocumentationRequested: {StatusUnderReview, StatusWithdrawn},
	StatusApproved:               {},
	StatusRejected:               {},
	StatusWithdrawn:              {},
}

// percentByStatus is the fixed progress mapping shown to users. Withdrawn is
// absent on purpose: a withdrawn application keeps the percentage it had when
// it was withdrawn.
var percentByStatus = map[Status]int{
	StatusApplied:                10,
	StatusUnderReview:            40,
	StatusDocumentationRequested: 70,
	StatusApproved:               100,
	StatusRejected:               100,
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) Terminal() bool {
	edges, ok := transitions[s]
	return ok && len(edges) == 0
}

// CanTransition reports whether the target status is reachable from s in one
// step per the lifecycle table.
func (s Status) CanTransition(to Status) bool {
	for _, t := range transitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Percent maps a status to its progress figure. For Withdrawn the caller must
// fall back to the last status before withdrawal; this function reports 0 and
// false for it.
func (s Status) Percent() (int, bool) {
	p, ok := percentByStatus[s]
	return p, ok
}
