package photo

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/strogholod/catalog/internal/core/port"
)

var _ port.PhotoResolver = (*Resolver)(nil)

var (
	ErrEmptyHandle   = errors.New("empty photo handle")
	ErrPhotoNotFound = errors.New("photo file not found")
	ErrNotImage      = errors.New("photo file is not an image")
	ErrTooLarge      = errors.New("photo file is too large")
)

type Opt func(*resolverOpts) error

type resolverOpts struct {
	baseDir string
	maxSize int64
}

// BaseDirOpt resolves relative handles against dir.
func BaseDirOpt(dir string) Opt {
	return func(opts *resolverOpts) error {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		opts.baseDir = abs
		return nil
	}
}

// MaxSizeOpt limits the photo size in bytes. Zero disables the check.
func MaxSizeOpt(n int64) Opt {
	return func(opts *resolverOpts) error {
		if n < 0 {
			return fmt.Errorf("invalid max size: %d", n)
		}
		opts.maxSize = n
		return nil
	}
}

// Resolver maps a locally selected photo to a readable image file.
// A handle is a file path or a file:// URI.
type Resolver struct {
	baseDir string
	maxSize int64
}

func NewResolver(opts ...Opt) (*Resolver, error) {
	const op = "photo.NewResolver"

	var options resolverOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return &Resolver{baseDir: options.baseDir, maxSize: options.maxSize}, nil
}

func (r *Resolver) Resolve(handle string) (string, error) {
	const op = "Resolver.Resolve"
	log := slog.With("op", op)

	path, err := r.path(handle)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s: %w: %s", op, ErrPhotoNotFound, path)
	}
	if r.maxSize > 0 && info.Size() > r.maxSize {
		return "", fmt.Errorf("%s: %w: %d bytes", op, ErrTooLarge, info.Size())
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%s: %w: %s", op, ErrNotImage, mtype.String())
	}

	log.Debug("photo resolved", "path", path, "mime", mtype.String())
	return path, nil
}

func (r *Resolver) path(handle string) (string, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return "", ErrEmptyHandle
	}

	if strings.HasPrefix(handle, "file:") {
		u, err := url.Parse(handle)
		if err != nil {
			return "", err
		}
		if u.Host != "" && u.Host != "localhost" {
			return "", fmt.Errorf("unsupported file host: %q", u.Host)
		}
		handle = u.Path
	}

	if !filepath.IsAbs(handle) && r.baseDir != "" {
		handle = filepath.Join(r.baseDir, handle)
	}
	return filepath.Clean(handle), nil
}
