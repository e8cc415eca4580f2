package matching

import (
	"testing"
	"time"

	"grant-compass/internal/domain/grant"
	"grant-compass/internal/domain/profile"
)

var asOf = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func teacherProfile() profile.Profile {
	income := int64(30000)
	return profile.Profile{
		Occupation: "Teacher",
		Birthdate:  time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Income:     &income,
	}
}

func futureGrant(id string, days int) grant.Grant {
	return grant.Grant{
		ID:       id,
		Name:     id,
		Deadline: asOf.AddDate(0, 0, days),
	}
}

func int64p(v int64) *int64 { return &v }

func TestMatchIncompleteProfile(t *testing.T) {
	cases := []profile.Profile{
		{},
		{Occupation: "Teacher"},
		{Birthdate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Occupation: "   ", Birthdate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for i, p := range cases {
		if _, err := Match(p, []grant.Grant{futureGrant("g1", 30)}, asOf); err != ErrIncompleteProfile {
			t.Fatalf("case %d: expected ErrIncompleteProfile, got %v", i, err)
		}
	}
}

func TestMatchEmptyCatalog(t *testing.T) {
	out, err := Match(teacherProfile(), nil, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", out)
	}
}

func TestMatchExcludesExpired(t *testing.T) {
	expired := futureGrant("expired", -1)
	sameDay := grant.Grant{ID: "today", Deadline: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)}
	open := futureGrant("open", 10)

	out, err := Match(teacherProfile(), []grant.Grant{expired, sameDay, open}, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 grants, got %d", len(out))
	}
	for _, g := range out {
		if g.ID == "expired" {
			t.Fatalf("expired grant leaked into match output")
		}
	}
}

func TestMatchIncomeBounds(t *testing.T) {
	cases := []struct {
		name    string
		income  *int64
		min     *int64
		max     *int64
		matched bool
	}{
		{"within max", int64p(30000), nil, int64p(40000), true},
		{"over max", int64p(50000), nil, int64p(40000), false},
		{"under min", int64p(10000), int64p(20000), nil, false},
		{"within range", int64p(25000), int64p(20000), int64p(40000), true},
		{"absent income passes", nil, int64p(20000), int64p(40000), true},
		{"no bounds", int64p(999999), nil, nil, true},
	}

	for _, tc := range cases {
		p := teacherProfile()
		p.Income = tc.income
		g := futureGrant("g", 10)
		g.Criteria = grant.Eligibility{MinIncome: tc.min, MaxIncome: tc.max}

		out, err := Match(p, []grant.Grant{g}, asOf)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if (len(out) == 1) != tc.matched {
			t.Fatalf("%s: expected matched=%v, got %d grants", tc.name, tc.matched, len(out))
		}
	}
}

func TestMatchDemographics(t *testing.T) {
	cases := []struct {
		name     string
		category profile.Demographic
		required []profile.Demographic
		matched  bool
	}{
		{"member", profile.DemographicVeteran, []profile.Demographic{profile.DemographicVeteran, profile.DemographicSenior}, true},
		{"non-member", profile.DemographicStudent, []profile.Demographic{profile.DemographicVeteran}, false},
		{"absent category passes", profile.DemographicNone, []profile.Demographic{profile.DemographicVeteran}, true},
		{"empty requirement", profile.DemographicStudent, nil, true},
	}

	for _, tc := range cases {
		p := teacherProfile()
		p.Demographic = tc.category
		g := futureGrant("g", 10)
		g.Criteria = grant.Eligibility{Demographics: tc.required}

		out, err := Match(p, []grant.Grant{g}, asOf)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if (len(out) == 1) != tc.matched {
			t.Fatalf("%s: expected matched=%v, got %d grants", tc.name, tc.matched, len(out))
		}
	}
}

func TestMatchOccupationClass(t *testing.T) {
	cases := []struct {
		name       string
		occupation string
		class      string
		matched    bool
	}{
		{"exact", "Teacher", "teacher", true},
		{"substring", "High School Teacher", "teacher", true},
		{"case insensitive", "TEACHER", "Teacher", true},
		{"mismatch", "Nurse", "teacher", false},
		{"empty class", "Anything", "", true},
	}

	for _, tc := range cases {
		p := teacherProfile()
		p.Occupation = tc.occupation
		g := futureGrant("g", 10)
		g.Criteria = grant.Eligibility{OccupationClass: tc.class}

		out, err := Match(p, []grant.Grant{g}, asOf)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if (len(out) == 1) != tc.matched {
			t.Fatalf("%s: expected matched=%v, got %d grants", tc.name, tc.matched, len(out))
		}
	}
}

func TestMatchAllCriteriaMustHold(t *testing.T) {
	p := teacherProfile()
	p.Demographic = profile.DemographicStudent

	g := futureGrant("g", 10)
	g.Criteria = grant.Eligibility{
		MaxIncome:       int64p(40000),
		Demographics:    []profile.Demographic{profile.DemographicVeteran},
		OccupationClass: "teacher",
	}

	out, err := Match(p, []grant.Grant{g}, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("income and occupation pass but demographic fails; expected no match")
	}
}

func TestMatchOrderingAndDeterminism(t *testing.T) {
	g1 := futureGrant("b-grant", 30)
	g2 := futureGrant("a-grant", 30)
	g3 := futureGrant("z-grant", 5)
	in := []grant.Grant{g1, g2, g3}

	out, err := Match(teacherProfile(), in, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantOrder := []string{"z-grant", "a-grant", "b-grant"}
	if len(out) != len(wantOrder) {
		t.Fatalf("expected %d grants, got %d", len(wantOrder), len(out))
	}
	for i, id := range wantOrder {
		if out[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, out[i].ID)
		}
	}

	for run := 0; run < 5; run++ {
		again, err := Match(teacherProfile(), in, asOf)
		if err != nil {
			t.Fatalf("run %d: unexpected error: %v", run, err)
		}
		for i := range again {
			if again[i].ID != out[i].ID {
				t.Fatalf("run %d: output not deterministic at %d", run, i)
			}
		}
	}
}

// A teacher earning 30000 against a grant capped at 40000 with a future
// deadline should match on the income axis alone.
func TestMatchTeacherIncomeCap(t *testing.T) {
	g := futureGrant("education-assistance", 45)
	g.Criteria = grant.Eligibility{MaxIncome: int64p(40000)}

	out, err := Match(teacherProfile(), []grant.Grant{g}, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].ID != "education-assistance" {
		t.Fatalf("expected the grant to match, got %#v", out)
	}
}
