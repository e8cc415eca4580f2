package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"grant-compass/internal/domain/user"
	"grant-compass/internal/pkg/jwt"
	ucauth "grant-compass/internal/usecase/auth"

	"github.com/google/uuid"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[uuid.UUID]user.User{}}
}

func (m *memUserRepo) Create(ctx context.Context, u user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = u
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (m *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func newAuthFixture() (*Auth, *memUserRepo) {
	users := newMemUserRepo()
	jwtSvc := jwt.NewHMACService("access-secret", "refresh-secret", 15*time.Minute, 720*time.Hour)
	return NewAuthUsecase(users, jwtSvc), users
}

func TestAuthRegisterLoginRefresh(t *testing.T) {
	uc, _ := newAuthFixture()

	usr, access, refresh, err := uc.Register(context.Background(), ucauth.RegisterInput{
		Email:    "Citizen@Example.GOV",
		Name:     "Pat Citizen",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if usr.Email != "citizen@example.gov" {
		t.Fatalf("expected normalized email, got %q", usr.Email)
	}
	if usr.PasswordHash != "" {
		t.Fatalf("expected password hash stripped from response")
	}
	if access == "" || refresh == "" {
		t.Fatalf("expected tokens on register")
	}

	if _, _, _, err := uc.Login(context.Background(), ucauth.LoginInput{Email: "citizen@example.gov", Password: "hunter2hunter2"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, _, _, err := uc.Login(context.Background(), ucauth.LoginInput{Email: "citizen@example.gov", Password: "wrong-password"}); !errors.Is(err, ucauth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	newAccess, newRefresh, err := uc.Refresh(context.Background(), refresh)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if newAccess == "" || newRefresh == "" {
		t.Fatalf("expected fresh token pair")
	}

	// An access token is not a refresh token.
	if _, _, err := uc.Refresh(context.Background(), access); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestAuthRegister_DuplicateEmail(t *testing.T) {
	uc, _ := newAuthFixture()

	in := ucauth.RegisterInput{Email: "citizen@example.gov", Password: "hunter2hunter2"}
	if _, _, _, err := uc.Register(context.Background(), in); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, _, err := uc.Register(context.Background(), in); !errors.Is(err, ucauth.ErrEmailAlreadyRegistered) {
		t.Fatalf("expected ErrEmailAlreadyRegistered, got %v", err)
	}
}

func TestAuthRegister_ShortPassword(t *testing.T) {
	uc, _ := newAuthFixture()

	if _, _, _, err := uc.Register(context.Background(), ucauth.RegisterInput{Email: "a@b.gov", Password: "short"}); !errors.Is(err, ucauth.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
