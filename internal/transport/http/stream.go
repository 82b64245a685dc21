package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"streamz/internal/application/streaming"
	"streamz/internal/domain/stream"
	"streamz/internal/domain/video"
)

const streamCopyBufferSize = 32 * 1024

type streamUseCases interface {
	Resolve(ctx context.Context, id string) (streaming.Source, error)
	Open(ctx context.Context, src streaming.Source, byteRange *stream.ByteRange) (io.ReadCloser, error)
}

// StreamVideo handles GET /api/stream/{videoId}: resolve the locator, probe
// the object, negotiate the byte range, and relay the bytes. Headers are
// written before any body byte; once the body has started, a transfer error
// can only terminate the connection.
func (h *Handler) StreamVideo(w http.ResponseWriter, r *http.Request) {
	videoID := mux.Vars(r)["videoId"]

	src, err := h.relay.Resolve(r.Context(), videoID)
	switch {
	case errors.Is(err, streaming.ErrNotFound):
		writeError(w, http.StatusNotFound, "video not found", "no video with id "+videoID)
		return
	case errors.Is(err, video.ErrInvalidLocator), errors.Is(err, streaming.ErrObjectMissing):
		// Integrity mismatch between metadata and storage; already logged.
		writeError(w, http.StatusInternalServerError, "storage inconsistency", "video content is unavailable")
		return
	case err != nil:
		h.logger.Printf("stream %s: resolve failed: %v", videoID, err)
		writeError(w, http.StatusInternalServerError, "stream failed", "unable to resolve video")
		return
	}

	negotiation, err := stream.Negotiate(r.Header.Get("Range"), src.Size)
	if errors.Is(err, stream.ErrUnsatisfiable) {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", src.Size))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return
	}

	status := http.StatusOK
	length := src.Size
	var byteRange *stream.ByteRange
	if negotiation.Partial {
		status = http.StatusPartialContent
		length = negotiation.Range.Length()
		byteRange = &negotiation.Range
		w.Header().Set("Content-Range", negotiation.Range.ContentRange(src.Size))
	}

	body, err := h.relay.Open(r.Context(), src, byteRange)
	if err != nil {
		h.logger.Printf("stream %s: open failed: %v", videoID, err)
		w.Header().Del("Content-Range")
		writeError(w, http.StatusInternalServerError, "stream failed", "unable to read video content")
		return
	}
	defer body.Close()

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", src.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	w.WriteHeader(status)

	// Chunked copy keeps memory flat; the write side paces reads from
	// storage, and a client disconnect cancels r.Context(), which fails the
	// storage read and ends the copy.
	buf := make([]byte, streamCopyBufferSize)
	if _, err := io.CopyBuffer(w, body, buf); err != nil {
		if r.Context().Err() == nil {
			h.logger.Printf("stream %s: transfer aborted: %v", videoID, err)
		}
	}
}

// StreamPreflight answers OPTIONS on the stream route without touching the
// metadata store or object storage.
func (h *Handler) StreamPreflight(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = "*"
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Range, Content-Type, Authorization")
	w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range, Content-Type, Accept-Ranges")
	w.Header().Set("Access-Control-Max-Age", "86400")
	w.WriteHeader(http.StatusOK)
}
