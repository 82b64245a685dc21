package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"streamz/internal/domain/account"
)

const userColumns = `id, email, name, avatar_url, password_hash, is_active, created_at, updated_at`

// CreateUser inserts an account row, reporting a duplicate email as
// account.ErrEmailTaken.
func (s *Store) CreateUser(ctx context.Context, u *account.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, avatar_url, password_hash, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.Name, nullable(u.AvatarURL), u.PasswordHash, u.Active, u.CreatedAt, u.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return account.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UserByEmail reads one account by normalized email, or (nil, nil) when absent.
func (s *Store) UserByEmail(ctx context.Context, email string) (*account.User, error) {
	return s.userBy(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// UserByID reads one account by id, or (nil, nil) when absent.
func (s *Store) UserByID(ctx context.Context, id string) (*account.User, error) {
	return s.userBy(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *Store) userBy(ctx context.Context, query, arg string) (*account.User, error) {
	row := s.db.QueryRowContext(ctx, query, arg)

	var (
		u      account.User
		avatar sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &avatar, &u.PasswordHash, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user: %w", err)
	}
	u.AvatarURL = avatar.String
	return &u, nil
}

// ListUsers returns all accounts, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]account.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]account.User, 0)
	for rows.Next() {
		var (
			u      account.User
			avatar sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &avatar, &u.PasswordHash, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.AvatarURL = avatar.String
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// SetUserActive flips the account's active flag.
func (s *Store) SetUserActive(ctx context.Context, id string, active bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_active = $2, updated_at = $3 WHERE id = $1`,
		id, active, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if affected == 0 {
		return errors.New("user not found")
	}
	return nil
}
