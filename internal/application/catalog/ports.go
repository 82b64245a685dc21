package catalog

import (
	"context"
	"io"

	"streamz/internal/domain/video"
)

// VideoRepository is the metadata-store port for catalog rows. Reads return a
// nil record with a nil error when no row exists.
type VideoRepository interface {
	CreateVideo(ctx context.Context, v *video.Video) error
	VideoByID(ctx context.Context, id string) (*video.Video, error)
	ListVideos(ctx context.Context) ([]video.Video, error)
	UpdateVideoInfo(ctx context.Context, v *video.Video) error
	DeleteVideo(ctx context.Context, id string) error
}

// GenreRepository stores browse categories. Name and slug are unique; the
// adapter reports a duplicate with video.ErrGenreExists.
type GenreRepository interface {
	CreateGenre(ctx context.Context, g *video.Genre) error
	GenreByID(ctx context.Context, id string) (*video.Genre, error)
	ListGenres(ctx context.Context) ([]video.Genre, error)
}

// ViewRepository records playback analytics rows.
type ViewRepository interface {
	CreateView(ctx context.Context, view *video.View) error
}

// ObjectWriter is the storage port the catalog uses for upload and delete.
// The streaming relay owns the read side.
type ObjectWriter interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
}
