package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"grant-compass/internal/domain/application"
	"grant-compass/internal/domain/grant"
	"grant-compass/internal/domain/profile"

	"github.com/google/uuid"
)

type memProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]profile.Profile
	err      error
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{profiles: map[uuid.UUID]profile.Profile{}}
}

func (m *memProfileRepo) Get(ctx context.Context, userID uuid.UUID) (profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return profile.Profile{}, m.err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	return p, nil
}

func (m *memProfileRepo) Put(ctx context.Context, p profile.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	p.UpdatedAt = time.Now().UTC()
	m.profiles[p.UserID] = p
	return nil
}

type memCatalog struct {
	mu     sync.Mutex
	grants map[string]grant.Grant
	err    error
}

func newMemCatalog(grants ...grant.Grant) *memCatalog {
	c := &memCatalog{grants: map[string]grant.Grant{}}
	for _, g := range grants {
		c.grants[g.ID] = g
	}
	return c
}

func (m *memCatalog) ListActive(ctx context.Context, asOf time.Time) ([]grant.Grant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]grant.Grant, 0, len(m.grants))
	for _, g := range m.grants {
		if !g.Expired(asOf) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memCatalog) GetByID(ctx context.Context, id string) (grant.Grant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return grant.Grant{}, m.err
	}
	g, ok := m.grants[id]
	if !ok {
		return grant.Grant{}, grant.ErrNotFound
	}
	return g, nil
}

type memAppRepo struct {
	mu   sync.Mutex
	apps map[uuid.UUID]application.Application
	err  error
	// forcedConflict makes the next UpdateStatus miss its compare-and-set.
	forcedConflict bool
}

func newMemAppRepo() *memAppRepo {
	return &memAppRepo{apps: map[uuid.UUID]application.Application{}}
}

func (m *memAppRepo) Create(ctx context.Context, a application.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.apps {
		if existing.UserID == a.UserID && existing.GrantID == a.GrantID && !existing.Status.Terminal() {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	m.apps[a.ID] = a
	return nil
}

func (m *memAppRepo) GetByID(ctx context.Context, id uuid.UUID) (application.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return application.Application{}, m.err
	}
	a, ok := m.apps[id]
	if !ok {
		return application.Application{}, application.ErrNotFound
	}
	return a, nil
}

func (m *memAppRepo) FindActive(ctx context.Context, userID uuid.UUID, grantID string) (application.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return application.Application{}, m.err
	}
	for _, a := range m.apps {
		if a.UserID == userID && a.GrantID == grantID && !a.Status.Terminal() {
			return a, nil
		}
	}
	return application.Application{}, application.ErrNotFound
}

func (m *memAppRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]application.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]application.Application, 0)
	for _, a := range m.apps {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAppRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from application.Status, change application.StatusChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	a, ok := m.apps[id]
	if !ok {
		return application.ErrNotFound
	}
	if m.forcedConflict || a.Status != from {
		m.forcedConflict = false
		return application.ErrStatusConflict
	}
	a.Status = change.Status
	a.History = append(a.History, change)
	a.UpdatedAt = change.At
	m.apps[id] = a
	return nil
}

type memNotifier struct {
	mu     sync.Mutex
	events []application.Application
}

func (n *memNotifier) NotifyApplicationStatus(userID uuid.UUID, a application.Application) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, a)
}

func (n *memNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func completeProfile(userID uuid.UUID) profile.Profile {
	income := int64(25000)
	return profile.Profile{
		UserID:      userID,
		Occupation:  "Registered Nurse",
		Birthdate:   time.Date(1980, 5, 12, 0, 0, 0, 0, time.UTC),
		Income:      &income,
		Demographic: profile.DemographicSenior,
	}
}

func healthcareGrant(deadline time.Time) grant.Grant {
	maxIncome := int64(30000)
	return grant.Grant{
		ID:       "demo-healthcare-support-grant",
		Name:     "Healthcare Support Grant",
		Deadline: deadline,
		Criteria: grant.Eligibility{
			MaxIncome:       &maxIncome,
			Demographics:    []profile.Demographic{profile.DemographicSenior, profile.DemographicDisabled},
			OccupationClass: "nurse",
		},
	}
}

func newApplicationsFixture(t *testing.T) (*Applications, *memAppRepo, *memProfileRepo, *memCatalog, *memNotifier, uuid.UUID, grant.Grant) {
	t.Helper()

	userID := uuid.New()
	deadline := time.Now().UTC().AddDate(0, 2, 0)
	g := healthcareGrant(deadline)

	apps := newMemAppRepo()
	profiles := newMemProfileRepo()
	profiles.profiles[userID] = completeProfile(userID)
	catalog := newMemCatalog(g)
	notifier := &memNotifier{}

	uc := NewApplicationUsecase(apps, profiles, catalog, notifier, nil)
	return uc, apps, profiles, catalog, notifier, userID, g
}

func TestApplicationsApply_Success(t *testing.T) {
	uc, _, _, _, notifier, userID, g := newApplicationsFixture(t)

	a, err := uc.Apply(context.Background(), userID, g.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if a.Status != application.StatusApplied {
		t.Fatalf("expected applied, got %s", a.Status)
	}
	if a.Percent() != 10 {
		t.Fatalf("expected 10%%, got %d", a.Percent())
	}
	if len(a.History) != 1 || a.History[0].Status != application.StatusApplied {
		t.Fatalf("expected one applied history entry, got %v", a.History)
	}
	if a.History[0].Actor != userID.String() {
		t.Fatalf("expected applicant as actor, got %q", a.History[0].Actor)
	}
	if notifier.count() != 1 {
		t.Fatalf("expected 1 notification, got %d", notifier.count())
	}
}

func TestApplicationsApply_Duplicate(t *testing.T) {
	uc, _, _, _, _, userID, g := newApplicationsFixture(t)

	if _, err := uc.Apply(context.Background(), userID, g.ID); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if _, err := uc.Apply(context.Background(), userID, g.ID); !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("expected ErrAlreadyApplied, got %v", err)
	}
}

func TestApplicationsApply_ReapplyAfterWithdraw(t *testing.T) {
	uc, _, _, _, _, userID, g := newApplicationsFixture(t)

	a, err := uc.Apply(context.Background(), userID, g.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := uc.Withdraw(context.Background(), userID, a.ID); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if _, err := uc.Apply(context.Background(), userID, g.ID); err != nil {
		t.Fatalf("expected reapply to succeed, got %v", err)
	}
}

func TestApplicationsApply_GrantNotFound(t *testing.T) {
	uc, _, _, _, _, userID, _ := newApplicationsFixture(t)

	if _, err := uc.Apply(context.Background(), userID, "no-such-grant"); !errors.Is(err, ErrGrantNotFound) {
		t.Fatalf("expected ErrGrantNotFound, got %v", err)
	}
}

func TestApplicationsApply_DeadlinePassed(t *testing.T) {
	uc, _, _, catalog, _, userID, g := newApplicationsFixture(t)

	g.Deadline = time.Now().UTC().AddDate(0, 0, -1)
	catalog.grants[g.ID] = g

	if _, err := uc.Apply(context.Background(), userID, g.ID); !errors.Is(err, ErrDeadlinePassed) {
		t.Fatalf("expected ErrDeadlinePassed, got %v", err)
	}
}

func TestApplicationsApply_NotMatched(t *testing.T) {
	uc, _, profiles, _, _, userID, g := newApplicationsFixture(t)

	p := profiles.profiles[userID]
	income := int64(90000)
	p.Income = &income
	profiles.profiles[userID] = p

	if _, err := uc.Apply(context.Background(), userID, g.ID); !errors.Is(err, ErrNotMatched) {
		t.Fatalf("expected ErrNotMatched, got %v", err)
	}
}

func TestApplicationsApply_IncompleteProfileNotMatched(t *testing.T) {
	uc, _, profiles, _, _, userID, g := newApplicationsFixture(t)

	p := profiles.profiles[userID]
	p.Occupation = ""
	profiles.profiles[userID] = p

	if _, err := uc.Apply(context.Background(), userID, g.ID); !errors.Is(err, ErrNotMatched) {
		t.Fatalf("expected ErrNotMatched, got %v", err)
	}
}

func TestApplicationsTransition_FullReviewCycle(t *testing.T) {
	uc, _, _, _, notifier, userID, g := newApplicationsFixture(t)

	a, err := uc.Apply(context.Background(), userID, g.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	steps := []struct {
		to      application.Status
		percent int
	}{
		{application.StatusUnderReview, 40},
		{application.StatusDocumentationRequested, 70},
		{application.StatusUnderReview, 40},
		{application.StatusApproved, 100},
	}

	for _, step := range steps {
		updated, err := uc.Transition(context.Background(), a.ID, step.to, "reviewer-1")
		if err != nil {
			t.Fatalf("transition to %s: %v", step.to, err)
		}
		if updated.Status != step.to {
			t.Fatalf("expected %s, got %s", step.to, updated.Status)
		}
		if updated.Percent() != step.percent {
			t.Fatalf("status %s: expected %d%%, got %d", step.to, step.percent, updated.Percent())
		}
	}

	// apply + four transitions
	if notifier.count() != 5 {
		t.Fatalf("expected 5 notifications, got %d", notifier.count())
	}

	if _, err := uc.Transition(context.Background(), a.ID, application.StatusRejected, "reviewer-1"); !errors.Is(err, ErrTerminalState) {
		t.Fatalf("expected ErrTerminalState after approval, got %v", err)
	}
}

func TestApplicationsTransition_SkippingReviewRejected(t *testing.T) {
	uc, _, _, _, _, userID, g := newApplicationsFixture(t)

	a, err := uc.Apply(context.Background(), userID, g.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if _, err := uc.Transition(context.Background(), a.ID, application.StatusApproved, "reviewer-1"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for applied->approved, got %v", err)
	}
}

func TestApplicationsTransition_ConcurrentConflict(t *testing.T) {
	uc, apps, _, _, _, userID, g := newApplicationsFixture(t)

	a, err := uc.Apply(context.Background(), userID, g.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	apps.mu.Lock()
	apps.forcedConflict = true
	apps.mu.Unlock()

	if _, err := uc.Transition(context.Background(), a.ID, application.StatusUnderReview, "reviewer-1"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestApplicationsTransition_NotFound(t *testing.T) {
	uc, _, _, _, _, _, _ := newApplicationsFixture(t)

	if _, err := uc.Transition(context.Background(), uuid.New(), application.StatusUnderReview, "reviewer-1"); !errors.Is(err, ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
}

func TestApplicationsWithdraw_FreezesPercent(t *testing.T) {
	uc, _, _, _, _, userID, g := newApplicationsFixture(t)

	a, err := uc.Apply(context.Background(), userID, g.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := uc.Transition(context.Background(), a.ID, application.StatusUnderReview, "reviewer-1"); err != nil {
		t.Fatalf("transition: %v", err)
	}

	withdrawn, err := uc.Withdraw(context.Background(), userID, a.ID)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if withdrawn.Status != application.StatusWithdrawn {
		t.Fatalf("expected withdrawn, got %s", withdrawn.Status)
	}
	if withdrawn.Percent() != 40 {
		t.Fatalf("expected frozen 40%%, got %d", withdrawn.Percent())
	}
}

func TestApplicationsWithdraw_NotOwner(t *testing.T) {
	uc, _, _, _, _, userID, g := newApplicationsFixture(t)

	a, err := uc.Apply(context.Background(), userID, g.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if _, err := uc.Withdraw(context.Background(), uuid.New(), a.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestApplicationsWithdraw_TerminalRejected(t *testing.T) {
	uc, _, _, _, _, userID, g := newApplicationsFixture(t)

	a, err := uc.Apply(context.Background(), userID, g.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := uc.Withdraw(context.Background(), userID, a.ID); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if _, err := uc.Withdraw(context.Background(), userID, a.ID); !errors.Is(err, ErrTerminalState) {
		t.Fatalf("expected ErrTerminalState, got %v", err)
	}
}

func TestApplicationsList_StoreUnavailable(t *testing.T) {
	uc, apps, _, _, _, userID, _ := newApplicationsFixture(t)

	apps.err = errors.New("connection refused")
	if _, err := uc.List(context.Background(), userID); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
