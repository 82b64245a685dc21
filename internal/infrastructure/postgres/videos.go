package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"streamz/internal/domain/video"
)

const videoColumns = `id, title, description, file_url, thumbnail_url, mime_type, duration, genre_id, created_at, updated_at`

// CreateVideo inserts a catalog row.
func (s *Store) CreateVideo(ctx context.Context, v *video.Video) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO videos (id, title, description, file_url, thumbnail_url, mime_type, duration, genre_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		v.ID, v.Title, nullable(v.Description), v.Locator, nullable(v.ThumbnailURL),
		v.MimeType, nullableInt(v.Duration), nullable(v.GenreID), v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

// VideoByID reads one catalog row, or returns (nil, nil) when absent.
func (s *Store) VideoByID(ctx context.Context, id string) (*video.Video, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE id = $1`, id)

	record, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read video: %w", err)
	}
	return record, nil
}

// ListVideos returns all catalog rows, newest first.
func (s *Store) ListVideos(ctx context.Context) ([]video.Video, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+videoColumns+` FROM videos ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	videos := make([]video.Video, 0)
	for rows.Next() {
		record, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return videos, nil
}

// UpdateVideoInfo writes the editable metadata fields. The locator and MIME
// type columns are never touched here.
func (s *Store) UpdateVideoInfo(ctx context.Context, v *video.Video) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE videos SET title = $2, description = $3, genre_id = $4, updated_at = $5 WHERE id = $1`,
		v.ID, v.Title, nullable(v.Description), nullable(v.GenreID), v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}
	if affected == 0 {
		return errors.New("video not found")
	}
	return nil
}

// DeleteVideo removes a catalog row; view rows cascade.
func (s *Store) DeleteVideo(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if affected == 0 {
		return errors.New("video not found")
	}
	return nil
}

// CreateView inserts a playback record.
func (s *Store) CreateView(ctx context.Context, view *video.View) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO video_views (id, video_id, user_id, watch_time, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		view.ID, view.VideoID, nullable(view.UserID), view.WatchTime, view.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert view: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (*video.Video, error) {
	var (
		v           video.Video
		description sql.NullString
		thumbnail   sql.NullString
		duration    sql.NullInt64
		genreID     sql.NullString
	)
	err := row.Scan(&v.ID, &v.Title, &description, &v.Locator, &thumbnail,
		&v.MimeType, &duration, &genreID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.Description = description.String
	v.ThumbnailURL = thumbnail.String
	v.Duration = int(duration.Int64)
	v.GenreID = genreID.String
	return &v, nil
}
