package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"streamz/internal/domain/video"
)

const uploadKeyPrefix = "videos/"

var (
	ErrNotFound      = errors.New("video not found")
	ErrGenreNotFound = errors.New("genre not found")
	ErrInvalidInput  = errors.New("invalid input")
)

// Service handles catalog use cases: upload, CRUD, and view recording.
type Service struct {
	videos    VideoRepository
	genres    GenreRepository
	views     ViewRepository
	store     ObjectWriter
	logger    *log.Logger
	publicURL string
	now       func() time.Time
}

// NewService creates a catalog service. publicURL, when non-empty, becomes the
// base of the locator persisted for new uploads; otherwise the bare storage
// key is stored.
func NewService(videos VideoRepository, genres GenreRepository, views ViewRepository, store ObjectWriter, logger *log.Logger, publicURL string) *Service {
	return &Service{
		videos:    videos,
		genres:    genres,
		views:     views,
		store:     store,
		logger:    logger,
		publicURL: publicURL,
		now:       time.Now,
	}
}

// UploadInput carries one multipart video upload.
type UploadInput struct {
	Title       string
	Description string
	GenreID     string
	Filename    string
	ContentType string
	Body        io.Reader
}

// Upload writes the video bytes to object storage and creates the metadata
// row. The storage key is assigned before the row so the locator always names
// exactly one object; a failed row insert removes the orphaned object.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*video.Video, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	filename := sanitizeFilename(in.Filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: missing file name", ErrInvalidInput)
	}
	if in.GenreID != "" {
		genre, err := s.genres.GenreByID(ctx, in.GenreID)
		if err != nil {
			return nil, fmt.Errorf("read genre: %w", err)
		}
		if genre == nil {
			return nil, ErrGenreNotFound
		}
	}

	contentType := strings.TrimSpace(in.ContentType)
	if contentType == "" {
		contentType = "video/mp4"
	}

	id := uuid.NewString()
	key := uploadKeyPrefix + id + "-" + filename

	if err := s.store.Put(ctx, key, contentType, in.Body); err != nil {
		return nil, fmt.Errorf("store video content: %w", err)
	}

	record := &video.Video{
		ID:          id,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Locator:     video.LocatorForKey(s.publicURL, key),
		MimeType:    contentType,
		GenreID:     in.GenreID,
		CreatedAt:   s.now(),
		UpdatedAt:   s.now(),
	}

	if err := s.videos.CreateVideo(ctx, record); err != nil {
		if cleanupErr := s.store.Delete(ctx, key); cleanupErr != nil {
			s.logger.Printf("upload %s: orphaned object %q left in storage: %v", id, key, cleanupErr)
		}
		return nil, fmt.Errorf("save video metadata: %w", err)
	}

	return record, nil
}

// Videos lists all catalog entries.
func (s *Service) Videos(ctx context.Context) ([]video.Video, error) {
	return s.videos.ListVideos(ctx)
}

// VideoByID reads a single catalog entry.
func (s *Service) VideoByID(ctx context.Context, id string) (*video.Video, error) {
	record, err := s.videos.VideoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotFound
	}
	return record, nil
}

// UpdateInput carries a partial metadata edit. Nil fields are left unchanged.
// The locator and MIME type are relay-owned and never editable here.
type UpdateInput struct {
	Title       *string
	Description *string
	GenreID     *string
}

// UpdateVideo applies a metadata edit to an existing entry.
func (s *Service) UpdateVideo(ctx context.Context, id string, in UpdateInput) (*video.Video, error) {
	record, err := s.videos.VideoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotFound
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		record.Title = title
	}
	if in.Description != nil {
		record.Description = strings.TrimSpace(*in.Description)
	}
	if in.GenreID != nil {
		if *in.GenreID != "" {
			genre, err := s.genres.GenreByID(ctx, *in.GenreID)
			if err != nil {
				return nil, fmt.Errorf("read genre: %w", err)
			}
			if genre == nil {
				return nil, ErrGenreNotFound
			}
		}
		record.GenreID = *in.GenreID
	}
	record.UpdatedAt = s.now()

	if err := s.videos.UpdateVideoInfo(ctx, record); err != nil {
		return nil, fmt.Errorf("update video metadata: %w", err)
	}
	return record, nil
}

// DeleteVideo removes the metadata row and then deletes the backing object.
// The storage delete is best-effort: a failure is logged, not surfaced, since
// the row is already gone and the object is unreachable.
func (s *Service) DeleteVideo(ctx context.Context, id string) error {
	record, err := s.videos.VideoByID(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrNotFound
	}

	if err := s.videos.DeleteVideo(ctx, id); err != nil {
		return fmt.Errorf("delete video metadata: %w", err)
	}

	key, err := video.ResolveStorageKey(record.Locator)
	if err != nil {
		s.logger.Printf("delete %s: unparseable locator %q, object not removed", id, record.Locator)
		return nil
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Printf("delete %s: failed to remove object %q: %v", id, key, err)
	}
	return nil
}

// CreateGenre adds a browse category. The slug is derived from the name when
// not supplied.
func (s *Service) CreateGenre(ctx context.Context, name, slug, description string) (*video.Genre, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = Slugify(name)
	}

	genre := &video.Genre{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(description),
		CreatedAt:   s.now(),
	}
	if err := s.genres.CreateGenre(ctx, genre); err != nil {
		return nil, err
	}
	return genre, nil
}

// Genres lists all browse categories.
func (s *Service) Genres(ctx context.Context) ([]video.Genre, error) {
	return s.genres.ListGenres(ctx)
}

// RecordView stores one playback record for analytics. userID may be empty
// for anonymous playback.
func (s *Service) RecordView(ctx context.Context, videoID, userID string, watchTime int) error {
	record, err := s.videos.VideoByID(ctx, videoID)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrNotFound
	}
	if watchTime < 0 {
		watchTime = 0
	}

	return s.views.CreateView(ctx, &video.View{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		UserID:    userID,
		WatchTime: watchTime,
		CreatedAt: s.now(),
	})
}

// Slugify converts a display name into a URL-friendly slug.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func sanitizeFilename(raw string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(raw), "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return strings.ReplaceAll(base, " ", "_")
}
