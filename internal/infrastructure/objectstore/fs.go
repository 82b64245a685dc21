package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"streamz/internal/domain/stream"
)

func init() {
	// Not all hosts ship a mime.types table with video entries.
	_ = mime.AddExtensionType(".mp4", "video/mp4")
	_ = mime.AddExtensionType(".webm", "video/webm")
	_ = mime.AddExtensionType(".mkv", "video/x-matroska")
	_ = mime.AddExtensionType(".mov", "video/quicktime")
}

// FSStore keeps objects as plain files under a root directory. It serves the
// same ports as S3Store and exists for local development and tests.
type FSStore struct {
	root string
}

// NewFSStore creates the filesystem adapter and its root directory.
func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &FSStore{root: root}, nil
}

// Stat returns the file size and a content type inferred from the extension.
func (s *FSStore) Stat(_ context.Context, key string) (int64, string, error) {
	full, err := s.resolve(key)
	if err != nil {
		return 0, "", err
	}
	info, err := os.Stat(full)
	if err != nil {
		return 0, "", err
	}
	if info.IsDir() {
		return 0, "", fmt.Errorf("stat %q: %w", key, os.ErrNotExist)
	}
	return info.Size(), mime.TypeByExtension(strings.ToLower(filepath.Ext(full))), nil
}

// Open returns the file body, positioned and limited to byteRange when given.
func (s *FSStore) Open(_ context.Context, key string, byteRange *stream.ByteRange) (io.ReadCloser, error) {
	full, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(full)
	if err != nil {
		return nil, err
	}
	if byteRange == nil {
		return file, nil
	}
	if _, err := file.Seek(byteRange.Start, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek %q: %w", key, err)
	}
	return &sectionReadCloser{
		Reader: io.LimitReader(file, byteRange.Length()),
		closer: file,
	}, nil
}

// Put writes an object file, creating parent directories as needed.
func (s *FSStore) Put(_ context.Context, key, _ string, body io.Reader) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	file, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("create object file: %w", err)
	}
	defer file.Close()
	if _, err := io.Copy(file, body); err != nil {
		return fmt.Errorf("write object file: %w", err)
	}
	return nil
}

// Delete removes an object file. An absent key is not an error.
func (s *FSStore) Delete(_ context.Context, key string) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove object file: %w", err)
	}
	return nil
}

func (s *FSStore) resolve(key string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(key))
	if !isWithinDir(s.root, full) {
		return "", fmt.Errorf("key %q escapes storage root", key)
	}
	return full, nil
}

type sectionReadCloser struct {
	io.Reader
	closer io.Closer
}

func (r *sectionReadCloser) Close() error {
	return r.closer.Close()
}

func isWithinDir(basePath, targetPath string) bool {
	baseAbs, err := filepath.Abs(basePath)
	if err != nil {
		return false
	}
	targetAbs, err := filepath.Abs(targetPath)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(baseAbs, targetAbs)
	if err != nil {
		return false
	}
	sep := string(os.PathSeparator)
	if rel == ".." || strings.HasPrefix(rel, ".."+sep) {
		return false
	}
	return true
}
