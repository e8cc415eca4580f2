package profile

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var asOf = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func validProfile() Profile {
	return Profile{
		Occupation: "Teacher",
		Birthdate:  time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestValidateOK(t *testing.T) {
	income := int64(30000)
	p := validProfile()
	p.Income = &income
	p.Demographic = DemographicVeteran
	p.Organization = "Teachers Union"

	if err := p.Validate(asOf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Complete() {
		t.Fatalf("expected complete profile")
	}
}

func TestValidateFailures(t *testing.T) {
	negative := int64(-1)

	cases := []struct {
		name    string
		mutate  func(*Profile)
		mention string
	}{
		{"missing occupation", func(p *Profile) { p.Occupation = " " }, "occupation"},
		{"missing birthdate", func(p *Profile) { p.Birthdate = time.Time{} }, "birthdate"},
		{"future birthdate", func(p *Profile) { p.Birthdate = asOf.AddDate(1, 0, 0) }, "future"},
		{"negative income", func(p *Profile) { p.Income = &negative }, "income"},
		{"unknown demographic", func(p *Profile) { p.Demographic = "martian" }, "demographic"},
	}

	for _, tc := range cases {
		p := validProfile()
		tc.mutate(&p)
		err := p.Validate(asOf)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: expected ErrInvalid, got %v", tc.name, err)
		}
		if !strings.Contains(err.Error(), tc.mention) {
			t.Fatalf("%s: error %q does not mention %q", tc.name, err, tc.mention)
		}
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	p := Profile{}
	err := p.Validate(asOf)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "occupation") || !strings.Contains(err.Error(), "birthdate") {
		t.Fatalf("expected both field problems in one error, got %q", err)
	}
}

func TestParseDemographic(t *testing.T) {
	cases := []struct {
		in   string
		want Demographic
		ok   bool
	}{
		{"veteran", DemographicVeteran, true},
		{" Low_Income ", DemographicLowIncome, true},
		{"OTHER", DemographicOther, true},
		{"", DemographicNone, true},
		{"martian", DemographicNone, false},
	}
	for _, tc := range cases {
		got, err := ParseDemographic(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseDemographic(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseDemographic(%q): expected error", tc.in)
		}
	}
}
