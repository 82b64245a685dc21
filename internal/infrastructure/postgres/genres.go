package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"streamz/internal/domain/video"
)

// CreateGenre inserts a genre row, reporting duplicates as video.ErrGenreExists.
func (s *Store) CreateGenre(ctx context.Context, g *video.Genre) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO genres (id, name, slug, description, created_at) VALUES ($1, $2, $3, $4, $5)`,
		g.ID, g.Name, g.Slug, nullable(g.Description), g.CreatedAt,
	)
	if isUniqueViolation(err) {
		return video.ErrGenreExists
	}
	if err != nil {
		return fmt.Errorf("insert genre: %w", err)
	}
	return nil
}

// GenreByID reads one genre row, or returns (nil, nil) when absent.
func (s *Store) GenreByID(ctx context.Context, id string) (*video.Genre, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, slug, description, created_at FROM genres WHERE id = $1`, id)

	var (
		g           video.Genre
		description sql.NullString
	)
	err := row.Scan(&g.ID, &g.Name, &g.Slug, &description, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read genre: %w", err)
	}
	g.Description = description.String
	return &g, nil
}

// ListGenres returns all genres ordered by name.
func (s *Store) ListGenres(ctx context.Context) ([]video.Genre, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, slug, description, created_at FROM genres ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	defer rows.Close()

	genres := make([]video.Genre, 0)
	for rows.Next() {
		var (
			g           video.Genre
			description sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.Name, &g.Slug, &description, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		g.Description = description.String
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genres: %w", err)
	}
	return genres, nil
}
