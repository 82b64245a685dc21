package streaming

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"streamz/internal/domain/stream"
	"streamz/internal/domain/video"
)

const (
	defaultLookupTimeout = 10 * time.Second
	fallbackContentType  = "video/mp4"
)

var (
	// ErrNotFound means no metadata row exists for the requested id.
	ErrNotFound = errors.New("video not found")
	// ErrObjectMissing means a metadata row exists but storage has no object
	// for its key. This is an integrity mismatch between the two stores and
	// is always logged for operator attention.
	ErrObjectMissing = errors.New("video content missing from storage")
)

// Service resolves a video id to a streamable storage object. It issues only
// reads and holds no mutable state, so one instance serves all requests.
type Service struct {
	videos        VideoReader
	store         ObjectStore
	logger        *log.Logger
	lookupTimeout time.Duration
}

// NewService creates the relay use-case service with injected ports.
func NewService(videos VideoReader, store ObjectStore, logger *log.Logger, lookupTimeout time.Duration) *Service {
	if lookupTimeout <= 0 {
		lookupTimeout = defaultLookupTimeout
	}
	return &Service{
		videos:        videos,
		store:         store,
		logger:        logger,
		lookupTimeout: lookupTimeout,
	}
}

// Source identifies one resolved, probed storage object ready for transfer.
type Source struct {
	VideoID     string
	Key         string
	Size        int64
	ContentType string
}

// Resolve looks up the video record, recovers its storage key, and probes
// storage for the authoritative size and content type. The lookup timeout
// bounds both external reads; the streaming transfer itself is not bounded.
func (s *Service) Resolve(ctx context.Context, id string) (Source, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	record, err := s.videos.VideoByID(lookupCtx, id)
	if err != nil {
		return Source{}, fmt.Errorf("read video metadata: %w", err)
	}
	if record == nil {
		return Source{}, ErrNotFound
	}

	key, err := video.ResolveStorageKey(record.Locator)
	if err != nil {
		s.logger.Printf("stream %s: unparseable locator %q", id, record.Locator)
		return Source{}, err
	}

	size, contentType, err := s.store.Stat(lookupCtx, key)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Printf("stream %s: object %q missing from storage", id, key)
		return Source{}, ErrObjectMissing
	}
	if err != nil {
		return Source{}, fmt.Errorf("probe object %q: %w", key, err)
	}

	return Source{
		VideoID:     id,
		Key:         key,
		Size:        size,
		ContentType: contentTypeFor(contentType, record.MimeType),
	}, nil
}

// Open starts the byte transfer for a resolved source, scoped to byteRange
// when one was negotiated. The body honors ctx cancellation so a client
// disconnect releases the storage read.
func (s *Service) Open(ctx context.Context, src Source, byteRange *stream.ByteRange) (io.ReadCloser, error) {
	body, err := s.store.Open(ctx, src.Key, byteRange)
	if err != nil {
		return nil, fmt.Errorf("open object %q: %w", src.Key, err)
	}
	return body, nil
}

func contentTypeFor(fromStorage, declared string) string {
	if usable(fromStorage) {
		return fromStorage
	}
	if usable(declared) {
		return declared
	}
	return fallbackContentType
}

// S3-compatible stores report a generic type for objects uploaded without
// one; the record's declared MIME type is more specific in that case.
func usable(contentType string) bool {
	switch contentType {
	case "", "application/octet-stream", "binary/octet-stream":
		return false
	}
	return true
}
