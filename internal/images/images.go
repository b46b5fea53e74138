// Package images stores uploaded pictures and hands out time-limited URLs
// for them.
package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/TechTitans1233/FORUMweb-sub000/internal/auth"
	"github.com/google/uuid"
)

var (
	ErrTooLarge        = errors.New("image too large")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrNotFound        = errors.New("image not found")
	ErrInvalidName     = errors.New("invalid image name")
	ErrInvalidURL      = errors.New("invalid or expired image url")
)

const urlAudience = "images"

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var namePattern = regexp.MustCompile(`^[0-9a-f-]{36}\.(jpg|png|gif|webp)$`)

// Signer issues and checks audience-scoped tokens.
type Signer interface {
	IssueScoped(subject, audience string, ttl time.Duration) (string, time.Time, error)
	VerifyScoped(raw, audience string) (*auth.Claims, error)
}

// Store is the object store behind image uploads.
type Store interface {
	Save(ctx context.Context, r io.Reader) (string, error)
	Put(ctx context.Context, name string, r io.Reader) error
	Open(name string) (*os.File, error)
	SignedURL(name string) (string, error)
	VerifyURLToken(name, token string) error
	MaxBytes() int64
}

// LocalStore keeps objects as files in one directory.
type LocalStore struct {
	dir      string
	signer   Signer
	ttl      time.Duration
	maxBytes int64
}

func NewLocalStore(dir string, signer Signer, ttl time.Duration, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("images: failed to create %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, signer: signer, ttl: ttl, maxBytes: maxBytes}, nil
}

// MaxBytes is the largest accepted upload.
func (s *LocalStore) MaxBytes() int64 { return s.maxBytes }

// Save sniffs the content type of r, picks a fresh object name and stores it.
func (s *LocalStore) Save(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("images: failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}
	ext, ok := allowedTypes[http.DetectContentType(data)]
	if !ok {
		return "", ErrUnsupportedType
	}
	name := uuid.NewString() + ext
	if err := s.Put(ctx, name, bytes.NewReader(data)); err != nil {
		return "", err
	}
	return name, nil
}

// Put writes r under name. The file appears atomically.
func (s *LocalStore) Put(ctx context.Context, name string, r io.Reader) error {
	if !namePattern.MatchString(name) {
		return ErrInvalidName
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("images: failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("images: failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("images: failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("images: failed to store %s: %w", name, err)
	}
	return nil
}

func (s *LocalStore) Open(name string) (*os.File, error) {
	if !namePattern.MatchString(name) {
		return nil, ErrInvalidName
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("images: failed to open %s: %w", name, err)
	}
	return f, nil
}

// SignedURL returns a relative URL for name that stops working after the
// configured TTL.
func (s *LocalStore) SignedURL(name string) (string, error) {
	if !namePattern.MatchString(name) {
		return "", ErrInvalidName
	}
	token, _, err := s.signer.IssueScoped(name, urlAudience, s.ttl)
	if err != nil {
		return "", err
	}
	return "/api/images/" + name + "?token=" + url.QueryEscape(token), nil
}

func (s *LocalStore) VerifyURLToken(name, token string) error {
	claims, err := s.signer.VerifyScoped(token, urlAudience)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if claims.Subject != name {
		return ErrInvalidURL
	}
	return nil
}
