package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"streamz/internal/domain/account"
)

const (
	bcryptCost     = 12
	sessionIDBytes = 32
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// UserRepository is the metadata-store port for accounts. Reads return a nil
// user with a nil error when no row exists; CreateUser reports duplicate
// emails with account.ErrEmailTaken.
type UserRepository interface {
	CreateUser(ctx context.Context, u *account.User) error
	UserByEmail(ctx context.Context, email string) (*account.User, error)
	UserByID(ctx context.Context, id string) (*account.User, error)
	ListUsers(ctx context.Context) ([]account.User, error)
	SetUserActive(ctx context.Context, id string, active bool) error
}

type session struct {
	userID    string
	expiresAt time.Time
}

// Service manages accounts and active bearer sessions. Users persist in the
// metadata store; sessions live in memory for their TTL.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]session

	users      UserRepository
	sessionTTL time.Duration
}

// NewService creates an auth service backed by the given user repository.
func NewService(users UserRepository, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 72 * time.Hour
	}
	return &Service{
		sessions:   map[string]session{},
		users:      users,
		sessionTTL: sessionTTL,
	}
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, name, password string) (*account.User, error) {
	email = account.NormalizeEmail(email)
	if err := account.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := account.ValidatePassword(password); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, account.ErrNameRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &account.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a bearer session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *account.User, error) {
	user, err := s.users.UserByEmail(ctx, account.NormalizeEmail(email))
	if err != nil {
		return "", nil, fmt.Errorf("read user: %w", err)
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.Active {
		return "", nil, account.ErrAccountDisabled
	}

	token, err := newSessionToken()
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	s.mu.Lock()
	s.purgeExpiredLocked(now)
	s.sessions[token] = session{userID: user.ID, expiresAt: now.Add(s.sessionTTL)}
	s.mu.Unlock()

	return token, user, nil
}

// Authenticate resolves a bearer token to its account.
func (s *Service) Authenticate(ctx context.Context, token string) (*account.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	now := time.Now()
	s.mu.Lock()
	sess, ok := s.sessions[token]
	if ok && now.After(sess.expiresAt) {
		// Drop the stale entry here; a quiet process may never log in
		// again to trigger the login-time purge.
		delete(s.sessions, token)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, ErrUnauthorized
	}

	user, err := s.users.UserByID(ctx, sess.userID)
	if err != nil {
		return nil, fmt.Errorf("read user: %w", err)
	}
	if user == nil || !user.Active {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// Logout discards a session token.
func (s *Service) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Users lists all accounts for the admin surface.
func (s *Service) Users(ctx context.Context) ([]account.User, error) {
	return s.users.ListUsers(ctx)
}

// SetUserActive enables or disables an account.
func (s *Service) SetUserActive(ctx context.Context, id string, active bool) error {
	user, err := s.users.UserByID(ctx, id)
	if err != nil {
		return fmt.Errorf("read user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	return s.users.SetUserActive(ctx, id, active)
}

func (s *Service) purgeExpiredLocked(now time.Time) {
	for token, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, token)
		}
	}
}

func newSessionToken() (string, error) {
	raw := make([]byte, sessionIDBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
