package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"streamz/internal/domain/account"
)

type stubUserRepo struct {
	byEmail map[string]*account.User
	byID    map[string]*account.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: map[string]*account.User{}, byID: map[string]*account.User{}}
}

func (r *stubUserRepo) CreateUser(_ context.Context, u *account.User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return account.ErrEmailTaken
	}
	clone := *u
	r.byEmail[u.Email] = &clone
	r.byID[u.ID] = &clone
	return nil
}

func (r *stubUserRepo) UserByEmail(_ context.Context, email string) (*account.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (r *stubUserRepo) UserByID(_ context.Context, id string) (*account.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (r *stubUserRepo) ListUsers(_ context.Context) ([]account.User, error) {
	out := make([]account.User, 0, len(r.byID))
	for _, user := range r.byID {
		out = append(out, *user)
	}
	return out, nil
}

func (r *stubUserRepo) SetUserActive(_ context.Context, id string, active bool) error {
	user, ok := r.byID[id]
	if !ok {
		return errors.New("user not found")
	}
	user.Active = active
	return nil
}

func TestRegister_HashesPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewService(repo, time.Hour)

	user, err := svc.Register(context.Background(), "Alex@Example.com", "Alex", "correct horse battery")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Email != "alex@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "correct horse battery" {
		t.Fatalf("password stored unhashed")
	}
	if !user.Active {
		t.Fatalf("new accounts should be active")
	}
}

func TestRegister_RejectsInvalidInput(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewService(repo, time.Hour)

	if _, err := svc.Register(context.Background(), "not-an-email", "Alex", "long enough pw"); !errors.Is(err, account.ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "a@b.co", "Alex", "short"); !errors.Is(err, account.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "a@b.co", "   ", "long enough pw"); !errors.Is(err, account.ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewService(repo, time.Hour)

	if _, err := svc.Register(context.Background(), "a@b.co", "Alex", "long enough pw"); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), "a@b.co", "Sam", "another long pw"); !errors.Is(err, account.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin_IssuesSessionToken(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewService(repo, time.Hour)
	if _, err := svc.Register(context.Background(), "a@b.co", "Alex", "long enough pw"); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "a@b.co", "long enough pw")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" {
		t.Fatalf("expected a session token")
	}

	authed, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("expected authenticated session, got %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("authenticated wrong user")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewService(repo, time.Hour)
	if _, err := svc.Register(context.Background(), "a@b.co", "Alex", "long enough pw"); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "a@b.co", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "unknown@b.co", "long enough pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestLogin_DisabledAccount(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewService(repo, time.Hour)
	user, err := svc.Register(context.Background(), "a@b.co", "Alex", "long enough pw")
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	if err := svc.SetUserActive(context.Background(), user.ID, false); err != nil {
		t.Fatalf("disable failed: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "a@b.co", "long enough pw"); !errors.Is(err, account.ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestAuthenticate_ExpiredSession(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewService(repo, time.Nanosecond)
	if _, err := svc.Register(context.Background(), "a@b.co", "Alex", "long enough pw"); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	token, _, err := svc.Login(context.Background(), "a@b.co", "long enough pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	time.Sleep(time.Millisecond)
	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for expired session, got %v", err)
	}

	svc.mu.RLock()
	_, retained := svc.sessions[token]
	svc.mu.RUnlock()
	if retained {
		t.Fatalf("expired session entry retained after authenticate")
	}
}

func TestLogout_InvalidatesToken(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewService(repo, time.Hour)
	if _, err := svc.Register(context.Background(), "a@b.co", "Alex", "long enough pw"); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	token, _, err := svc.Login(context.Background(), "a@b.co", "long enough pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	svc.Logout(token)
	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}
}
