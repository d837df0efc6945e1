package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const localObjectPrefix = "jobs"

var objectNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// LocalStore stores blob bytes in a local directory tree, sharded by the
// first two characters of the object name.
type LocalStore struct {
	root string
}

// NewLocalStore creates a local blob store rooted at root.
func NewLocalStore(root string) (*LocalStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("local blob root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, "tmp"), 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{root: abs}, nil
}

// Put streams bytes into a temp file and renames it into place under the
// sharded object path. The content type is accepted for interface parity
// with remote backends; local objects carry no metadata.
func (s *LocalStore) Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("blob store is not configured")
	}
	if r == nil {
		return "", fmt.Errorf("reader is required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !objectNamePattern.MatchString(name) {
		return "", fmt.Errorf("invalid object name")
	}

	tmp, err := os.CreateTemp(filepath.Join(s.root, "tmp"), "put-*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := io.Copy(tmp, r); err != nil {
		cleanup()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", err
	}

	locator := locatorFromName(name)
	dst := filepath.Join(s.root, filepath.FromSlash(locator))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		cleanup()
		return "", err
	}
	if _, err := os.Stat(dst); err == nil {
		cleanup()
		return "", fmt.Errorf("object %s already exists", name)
	} else if !errors.Is(err, os.ErrNotExist) {
		cleanup()
		return "", err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		cleanup()
		return "", err
	}

	return locator, nil
}

// Open returns a reader for the object at locator.
func (s *LocalStore) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	if s == nil {
		return nil, fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.pathFromLocator(locator)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Delete removes an object. Missing files are ignored so that deletes
// stay idempotent across the lazy and reaper cleanup paths.
func (s *LocalStore) Delete(ctx context.Context, locator string) error {
	if s == nil {
		return fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.pathFromLocator(locator)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func locatorFromName(name string) string {
	shard := name
	if len(shard) > 2 {
		shard = shard[:2]
	}
	return fmt.Sprintf("%s/%s/%s", localObjectPrefix, strings.ToLower(shard), name)
}

func (s *LocalStore) pathFromLocator(locator string) (string, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return "", fmt.Errorf("blob locator is required")
	}
	if strings.HasPrefix(locator, "/") {
		return "", fmt.Errorf("blob locator must be relative")
	}
	clean := filepath.Clean(filepath.FromSlash(locator))
	if clean == "." || strings.HasPrefix(clean, "..") || strings.Contains(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid blob locator")
	}
	return filepath.Join(s.root, clean), nil
}
