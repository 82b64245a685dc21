// Package stream holds the pure byte-range negotiation used by the streaming
// relay. Nothing in this package performs I/O.
package stream

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsatisfiable reports a range that lies outside the object bounds. The
// transport answers it with 416 and "Content-Range: bytes */<size>".
var ErrUnsatisfiable = errors.New("requested range not satisfiable")

// ByteRange is an inclusive byte interval within an object.
type ByteRange struct {
	Start int64
	End   int64
}

// Length returns the number of bytes covered by the interval.
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange renders the interval as a Content-Range header value.
func (r ByteRange) ContentRange(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, size)
}

// Negotiation is the outcome of resolving a Range header against an object of
// known size. When Partial is false the whole object is the serviceable
// interval and the response is a plain 200.
type Negotiation struct {
	Partial bool
	Range   ByteRange
}

// Negotiate resolves a raw Range header value against the object size.
// Only a single fully- or half-bounded range (bytes=a-b, bytes=a-) is
// supported; multi-range and otherwise malformed headers fall back to the
// whole object rather than failing the request. A range with either bound
// beyond the object, or start past end, returns ErrUnsatisfiable.
func Negotiate(header string, size int64) (Negotiation, error) {
	spec, ok := parseRangeSpec(header)
	if !ok {
		return Negotiation{}, nil
	}

	start := spec.start
	end := spec.end
	if !spec.hasEnd {
		end = size - 1
	}

	if start >= size || end >= size || start > end {
		return Negotiation{}, ErrUnsatisfiable
	}

	return Negotiation{Partial: true, Range: ByteRange{Start: start, End: end}}, nil
}

type rangeSpec struct {
	start  int64
	end    int64
	hasEnd bool
}

func parseRangeSpec(header string) (rangeSpec, bool) {
	value := strings.TrimSpace(header)
	if value == "" {
		return rangeSpec{}, false
	}

	rest, ok := strings.CutPrefix(value, "bytes=")
	if !ok || strings.Contains(rest, ",") {
		return rangeSpec{}, false
	}

	startPart, endPart, ok := strings.Cut(rest, "-")
	if !ok {
		return rangeSpec{}, false
	}

	// A suffix range (bytes=-n) has no explicit start and is treated as
	// malformed here, so the whole object is served instead.
	start, err := strconv.ParseInt(strings.TrimSpace(startPart), 10, 64)
	if err != nil || start < 0 {
		return rangeSpec{}, false
	}

	spec := rangeSpec{start: start}
	if trimmed := strings.TrimSpace(endPart); trimmed != "" {
		end, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil || end < 0 {
			return rangeSpec{}, false
		}
		spec.end = end
		spec.hasEnd = true
	}

	return spec, true
}
