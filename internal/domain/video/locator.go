package video

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

// ErrInvalidLocator marks a stored locator that cannot be mapped to a storage key.
var ErrInvalidLocator = errors.New("invalid storage locator")

// ResolveStorageKey maps a persisted locator to the object storage key it names.
// A locator is either a bare storage key, taken verbatim, or a fully-qualified
// URL whose percent-decoded path is the key. Resolution is total and
// deterministic: every well-formed locator yields exactly one key, and the same
// locator always yields the same key.
func ResolveStorageKey(locator string) (string, error) {
	value := strings.TrimSpace(locator)
	if value == "" {
		return "", ErrInvalidLocator
	}

	if strings.Contains(value, "://") {
		u, err := url.Parse(value)
		if err != nil || u.Host == "" {
			return "", ErrInvalidLocator
		}
		decoded, err := url.PathUnescape(u.EscapedPath())
		if err != nil {
			return "", ErrInvalidLocator
		}
		return normalizeKey(decoded)
	}

	// Bare keys are written verbatim at upload, so they are never decoded
	// here. Decoding would reject keys containing a literal '%'.
	return normalizeKey(value)
}

func normalizeKey(raw string) (string, error) {
	decoded := strings.TrimPrefix(raw, "/")
	if decoded == "" {
		return "", ErrInvalidLocator
	}
	for _, segment := range strings.Split(decoded, "/") {
		if segment == ".." {
			return "", ErrInvalidLocator
		}
	}

	cleaned := path.Clean("/" + decoded)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", ErrInvalidLocator
	}

	return cleaned, nil
}

// LocatorForKey builds the canonical locator persisted at upload time. When a
// public base URL is configured the locator is the full URL, otherwise the bare
// key is stored. Both forms round-trip through ResolveStorageKey.
func LocatorForKey(publicBaseURL, key string) string {
	base := strings.TrimSpace(publicBaseURL)
	if base == "" {
		return key
	}
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	return strings.TrimSuffix(base, "/") + "/" + escapeKeyPath(key)
}

func escapeKeyPath(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
