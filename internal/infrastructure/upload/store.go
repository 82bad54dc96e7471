// Package upload stores user attachments on local disk.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/medalt/backend/internal/domain"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// LocalStore writes uploads into a single directory
type LocalStore struct {
	dir      string
	allowed  map[string]struct{}
	maxBytes int64
}

// NewLocalStore creates dir if needed. Extensions are matched case-insensitively
// without the leading dot; maxBytes <= 0 disables the size limit.
func NewLocalStore(dir string, allowedExtensions []string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	allowed := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}

	return &LocalStore{dir: dir, allowed: allowed, maxBytes: maxBytes}, nil
}

// Allowed reports whether filename carries a permitted extension
func (s *LocalStore) Allowed(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	_, ok := s.allowed[strings.ToLower(filename[i+1:])]
	return ok
}

// Save writes r under a uuid-prefixed sanitized name and returns that name
func (s *LocalStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if !s.Allowed(filename) {
		return "", fmt.Errorf("%w: %q", domain.ErrFileTypeNotAllowed, filename)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := SanitizeFilename(uuid.NewString() + "_" + filename)
	dst := filepath.Join(s.dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		_ = os.Remove(dst)
		return "", fmt.Errorf("write upload: %w", copyErr)
	case closeErr != nil:
		_ = os.Remove(dst)
		return "", fmt.Errorf("write upload: %w", closeErr)
	case s.maxBytes > 0 && n > s.maxBytes:
		_ = os.Remove(dst)
		return "", domain.ErrFileTooLarge
	}

	return name, nil
}

// Path resolves a stored name to its file. Names with directory parts are rejected.
func (s *LocalStore) Path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || filename == "." || filename == ".." {
		return "", os.ErrNotExist
	}

	p := filepath.Join(s.dir, filename)
	info, err := os.Stat(p)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", os.ErrNotExist
	}
	return p, nil
}

// SanitizeFilename keeps ASCII letters, digits, '_', '-' and '.'. Whitespace becomes
// '_' and leading or trailing dots and underscores are dropped.
func SanitizeFilename(name string) string {
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// IsNotFound reports whether err means the stored file does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
