package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"grant-compass/internal/delivery/http/middleware"
	"grant-compass/internal/domain/application"
	"grant-compass/internal/domain/grant"
	"grant-compass/internal/domain/profile"
	"grant-compass/internal/domain/user"
	"grant-compass/internal/pkg/jwt"
	"grant-compass/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type stubUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]user.User
}

func (m *stubUserRepo) Create(ctx context.Context, u user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return errors.New("duplicate email")
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *stubUserRepo) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (m *stubUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (m *stubUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	if errors.Is(err, user.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

type stubProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]profile.Profile
}

func (m *stubProfileRepo) Get(ctx context.Context, userID uuid.UUID) (profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	return p, nil
}

func (m *stubProfileRepo) Put(ctx context.Context, p profile.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.UpdatedAt = time.Now().UTC()
	m.profiles[p.UserID] = p
	return nil
}

type stubCatalog struct {
	mu     sync.Mutex
	grants map[string]grant.Grant
}

func (m *stubCatalog) ListActive(ctx context.Context, asOf time.Time) ([]grant.Grant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]grant.Grant, 0)
	for _, g := range m.grants {
		if !g.Expired(asOf) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *stubCatalog) GetByID(ctx context.Context, id string) (grant.Grant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.grants[id]
	if !ok {
		return grant.Grant{}, grant.ErrNotFound
	}
	return g, nil
}

type stubAppRepo struct {
	mu   sync.Mutex
	apps map[uuid.UUID]application.Application
}

func (m *stubAppRepo) Create(ctx context.Context, a application.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.apps {
		if existing.UserID == a.UserID && existing.GrantID == a.GrantID && !existing.Status.Terminal() {
			return errors.New("duplicate application")
		}
	}
	m.apps[a.ID] = a
	return nil
}

func (m *stubAppRepo) GetByID(ctx context.Context, id uuid.UUID) (application.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok {
		return application.Application{}, application.ErrNotFound
	}
	return a, nil
}

func (m *stubAppRepo) FindActive(ctx context.Context, userID uuid.UUID, grantID string) (application.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.apps {
		if a.UserID == userID && a.GrantID == grantID && !a.Status.Terminal() {
			return a, nil
		}
	}
	return application.Application{}, application.ErrNotFound
}

func (m *stubAppRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]application.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]application.Application, 0)
	for _, a := range m.apps {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *stubAppRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from application.Status, change application.StatusChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok {
		return application.ErrNotFound
	}
	if a.Status != from {
		return application.ErrStatusConflict
	}
	a.Status = change.Status
	a.History = append(a.History, change)
	a.UpdatedAt = change.At
	m.apps[id] = a
	return nil
}

func newTestApp(t *testing.T) (*fiber.App, jwt.Service, *stubCatalog) {
	t.Helper()

	jwtSvc := jwt.NewHMACService("test-access", "test-refresh", 15*time.Minute, time.Hour)
	authMw := middleware.NewAuthMiddleware(jwtSvc)

	users := &stubUserRepo{users: map[uuid.UUID]user.User{}}
	profiles := &stubProfileRepo{profiles: map[uuid.UUID]profile.Profile{}}

	maxIncome := int64(30000)
	catalog := &stubCatalog{grants: map[string]grant.Grant{
		"demo-healthcare-support-grant": {
			ID:       "demo-healthcare-support-grant",
			Name:     "Healthcare Support Grant",
			Deadline: time.Now().UTC().AddDate(0, 2, 0),
			Criteria: grant.Eligibility{
				MaxIncome:       &maxIncome,
				Demographics:    []profile.Demographic{profile.DemographicSenior, profile.DemographicDisabled},
				OccupationClass: "nurse",
			},
			Documents: []string{"ID Proof", "Income Certificate", "Medical Records"},
			Steps:     []string{"Fill out the application form", "Attach required documents", "Submit to the nearest office"},
		},
	}}
	apps := &stubAppRepo{apps: map[uuid.UUID]application.Application{}}

	authUC := usecase.NewAuthUsecase(users, jwtSvc)
	onboardingUC := usecase.NewOnboardingUsecase(profiles)
	profileUC := usecase.NewProfileUsecase(profiles, nil, nil)
	matchingUC := usecase.NewMatchingUsecase(profiles, catalog, nil, nil)
	applicationUC := usecase.NewApplicationUsecase(apps, profiles, catalog, nil, nil)

	app := fiber.New(fiber.Config{})
	app.Use(middleware.NewErrorMiddleware().Middleware())

	v1 := app.Group("/api/v1")
	NewAuthHandler(authUC).RegisterRoutes(v1.Group("/auth"))

	protected := v1.Group("", authMw.Middleware())
	NewLandingHandler(onboardingUC).RegisterRoutes(protected)
	NewProfileHandler(profileUC).RegisterRoutes(protected)
	NewGrantsHandler(matchingUC).RegisterRoutes(protected)
	NewApplicationsHandler(applicationUC).RegisterRoutes(protected)

	return app, jwtSvc, catalog
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func registerUser(t *testing.T, app *fiber.App) string {
	t.Helper()

	code, env := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":    fmt.Sprintf("citizen-%s@example.gov", uuid.NewString()[:8]),
		"name":     "Pat Citizen",
		"password": "hunter2hunter2",
	})
	if code != http.StatusCreated {
		t.Fatalf("register status %d: %s", code, env.Message)
	}

	var data struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.AccessToken == "" {
		t.Fatalf("no access token in register response")
	}
	return data.AccessToken
}

func TestHTTP_OnboardingGateAndApplicationFlow(t *testing.T) {
	app, _, _ := newTestApp(t)
	token := registerUser(t, app)

	// Fresh account lands on profile completion.
	code, env := doJSON(t, app, http.MethodGet, "/api/v1/landing", token, nil)
	if code != http.StatusOK {
		t.Fatalf("landing status %d", code)
	}
	var landing struct {
		Landing string `json:"landing"`
	}
	_ = json.Unmarshal(env.Data, &landing)
	if landing.Landing != "needs_profile" {
		t.Fatalf("expected needs_profile, got %q", landing.Landing)
	}

	// Matched grants are refused until the profile is complete.
	code, _ = doJSON(t, app, http.MethodGet, "/api/v1/grants/matched", token, nil)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 before profile, got %d", code)
	}

	code, _ = doJSON(t, app, http.MethodPut, "/api/v1/profile", token, map[string]any{
		"occupation":  "Registered Nurse",
		"birthdate":   "1958-05-12",
		"income":      25000,
		"demographic": "senior",
	})
	if code != http.StatusOK {
		t.Fatalf("profile submit status %d", code)
	}

	code, env = doJSON(t, app, http.MethodGet, "/api/v1/landing", token, nil)
	if code != http.StatusOK {
		t.Fatalf("landing status %d", code)
	}
	_ = json.Unmarshal(env.Data, &landing)
	if landing.Landing != "dashboard" {
		t.Fatalf("expected dashboard, got %q", landing.Landing)
	}

	code, env = doJSON(t, app, http.MethodGet, "/api/v1/grants/matched", token, nil)
	if code != http.StatusOK {
		t.Fatalf("matched grants status %d", code)
	}
	var grants []struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(env.Data, &grants)
	if len(grants) != 1 || grants[0].ID != "demo-healthcare-support-grant" {
		t.Fatalf("expected the demo grant, got %v", grants)
	}

	code, env = doJSON(t, app, http.MethodPost, "/api/v1/applications", token, map[string]any{
		"grant_id": "demo-healthcare-support-grant",
	})
	if code != http.StatusCreated {
		t.Fatalf("apply status %d: %s", code, env.Message)
	}
	var created struct {
		ID      uuid.UUID `json:"id"`
		Status  string    `json:"status"`
		Percent int       `json:"percent"`
	}
	_ = json.Unmarshal(env.Data, &created)
	if created.Status != "applied" || created.Percent != 10 {
		t.Fatalf("unexpected application %+v", created)
	}

	// Duplicate application is a conflict.
	code, _ = doJSON(t, app, http.MethodPost, "/api/v1/applications", token, map[string]any{
		"grant_id": "demo-healthcare-support-grant",
	})
	if code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", code)
	}

	// Reviewer moves it along; skipping review is refused.
	code, _ = doJSON(t, app, http.MethodPatch, "/api/v1/applications/"+created.ID.String()+"/status", token, map[string]any{
		"status": "approved",
	})
	if code != http.StatusConflict {
		t.Fatalf("expected 409 for applied->approved, got %d", code)
	}

	code, env = doJSON(t, app, http.MethodPatch, "/api/v1/applications/"+created.ID.String()+"/status", token, map[string]any{
		"status": "under_review", "actor": "reviewer-1",
	})
	if code != http.StatusOK {
		t.Fatalf("transition status %d: %s", code, env.Message)
	}
	var updated struct {
		Status  string `json:"status"`
		Percent int    `json:"percent"`
		History []struct {
			Status string `json:"status"`
		} `json:"history"`
	}
	_ = json.Unmarshal(env.Data, &updated)
	if updated.Status != "under_review" || updated.Percent != 40 {
		t.Fatalf("unexpected transition result %+v", updated)
	}
	if len(updated.History) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(updated.History))
	}

	// Withdraw freezes the percentage.
	code, env = doJSON(t, app, http.MethodPost, "/api/v1/applications/"+created.ID.String()+"/withdraw", token, nil)
	if code != http.StatusOK {
		t.Fatalf("withdraw status %d", code)
	}
	_ = json.Unmarshal(env.Data, &updated)
	if updated.Status != "withdrawn" || updated.Percent != 40 {
		t.Fatalf("expected withdrawn at 40%%, got %+v", updated)
	}
}

func TestHTTP_AuthRequired(t *testing.T) {
	app, _, _ := newTestApp(t)

	code, _ := doJSON(t, app, http.MethodGet, "/api/v1/landing", "", nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", code)
	}

	code, _ = doJSON(t, app, http.MethodGet, "/api/v1/grants/matched", "not-a-token", nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", code)
	}
}

func TestHTTP_ProfileValidation(t *testing.T) {
	app, _, _ := newTestApp(t)
	token := registerUser(t, app)

	code, _ := doJSON(t, app, http.MethodPut, "/api/v1/profile", token, map[string]any{
		"occupation":  "Nurse",
		"birthdate":   "not-a-date",
		"demographic": "senior",
	})
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad birthdate, got %d", code)
	}

	code, _ = doJSON(t, app, http.MethodPut, "/api/v1/profile", token, map[string]any{
		"occupation":  "Nurse",
		"birthdate":   "1958-05-12",
		"demographic": "martian",
	})
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown demographic, got %d", code)
	}

	code, _ = doJSON(t, app, http.MethodPut, "/api/v1/profile", token, map[string]any{
		"occupation": "",
		"birthdate":  "1958-05-12",
		"income":     -5,
	})
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid profile, got %d", code)
	}
}

func TestHTTP_ApplyForUnknownGrant(t *testing.T) {
	app, _, _ := newTestApp(t)
	token := registerUser(t, app)

	code, _ := doJSON(t, app, http.MethodPut, "/api/v1/profile", token, map[string]any{
		"occupation":  "Registered Nurse",
		"birthdate":   "1958-05-12",
		"income":      25000,
		"demographic": "senior",
	})
	if code != http.StatusOK {
		t.Fatalf("profile submit status %d", code)
	}

	code, _ = doJSON(t, app, http.MethodPost, "/api/v1/applications", token, map[string]any{
		"grant_id": "no-such-grant",
	})
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestHTTP_ExpiredGrantNotMatchedAndNotAppliable(t *testing.T) {
	app, _, catalog := newTestApp(t)
	token := registerUser(t, app)

	code, _ := doJSON(t, app, http.MethodPut, "/api/v1/profile", token, map[string]any{
		"occupation":  "Registered Nurse",
		"birthdate":   "1958-05-12",
		"income":      25000,
		"demographic": "senior",
	})
	if code != http.StatusOK {
		t.Fatalf("profile submit status %d", code)
	}

	catalog.mu.Lock()
	g := catalog.grants["demo-healthcare-support-grant"]
	g.Deadline = time.Now().UTC().AddDate(0, 0, -1)
	catalog.grants[g.ID] = g
	catalog.mu.Unlock()

	code, env := doJSON(t, app, http.MethodGet, "/api/v1/grants/matched", token, nil)
	if code != http.StatusOK {
		t.Fatalf("matched status %d", code)
	}
	var grants []struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(env.Data, &grants)
	if len(grants) != 0 {
		t.Fatalf("expected expired grant excluded, got %v", grants)
	}

	code, _ = doJSON(t, app, http.MethodPost, "/api/v1/applications", token, map[string]any{
		"grant_id": "demo-healthcare-support-grant",
	})
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for expired grant, got %d", code)
	}
}
