package video

import (
	"errors"
	"time"
)

// ErrGenreExists reports a genre whose name or slug is already taken.
var ErrGenreExists = errors.New("genre already exists")

// Video represents a catalog entry backed by one object in storage.
type Video struct {
	ID           string
	Title        string
	Description  string
	Locator      string
	ThumbnailURL string
	MimeType     string
	Duration     int // seconds, 0 when unknown
	GenreID      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Genre groups videos for browsing.
type Genre struct {
	ID          string
	Name        string
	Slug        string
	Description string
	CreatedAt   time.Time
}

// View is a single playback record used for watch analytics.
type View struct {
	ID        string
	VideoID   string
	UserID    string // empty for anonymous views
	WatchTime int    // seconds watched
	CreatedAt time.Time
}
