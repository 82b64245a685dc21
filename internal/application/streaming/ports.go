package streaming

import (
	"context"
	"io"

	"streamz/internal/domain/stream"
	"streamz/internal/domain/video"
)

// VideoReader is the single metadata-store operation the relay depends on.
// A nil record with a nil error means no row exists for the id.
type VideoReader interface {
	VideoByID(ctx context.Context, id string) (*video.Video, error)
}

// ObjectStore is the byte-level storage port used by the relay. Stat and Open
// report a missing object with an error wrapping os.ErrNotExist. Open returns
// the object body scoped to byteRange when one is given, or the whole object
// otherwise; the caller owns closing the body.
type ObjectStore interface {
	Stat(ctx context.Context, key string) (size int64, contentType string, err error)
	Open(ctx context.Context, key string, byteRange *stream.ByteRange) (io.ReadCloser, error)
}
