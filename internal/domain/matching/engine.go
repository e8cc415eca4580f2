package matching

import (
	"errors"
	"sort"
	"time"

	"grant-compass/internal/domain/grant"
	"grant-compass/internal/domain/profile"
)

var ErrIncompleteProfile = errors.New("profile incomplete")

// Match evaluates every catalog grant against the profile as of the given
// date and returns the eligible ones. It is a pure function: same inputs,
// same ordered output. Expired grants are excluded; a grant with a deadline
// on asOf itself is still open.
//
// "No matches" is a valid result and returns an empty slice, distinct from
// the ErrIncompleteProfile input failure.
func Match(p profile.Profile, grants []grant.Grant, asOf time.Time) ([]grant.Grant, error) {
	if !p.Complete() {
		return nil, ErrIncompleteProfile
	}

	matched := make([]grant.Grant, 0, len(grants))
	for _, g := range grants {
		if g.Expired(asOf) {
			continue
		}
		if !g.Criteria.Satisfies(p) {
			continue
		}
		matched = append(matched, g)
	}

	// Ascending deadline, then ID, so output is reproducible.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Deadline.Equal(matched[j].Deadline) {
			return matched[i].Deadline.Before(matched[j].Deadline)
		}
		return matched[i].ID < matched[j].ID
	})

	return matched, nil
}
