// Package storage accepts product images and persists them to a content store
// that hands back a retrievable URL or path.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"stockroom/internal/domain"
)

// DefaultMaxBytes is the upload size limit when none is configured.
const DefaultMaxBytes = 2 << 20

var allowedExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// Store persists one object and returns where it can be fetched from.
type Store interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// Uploader validates incoming files before handing them to a Store.
type Uploader struct {
	Store    Store
	MaxBytes int64
}

func NewUploader(s Store, maxBytes int64) *Uploader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Uploader{Store: s, MaxBytes: maxBytes}
}

// Check rejects files with a non-image content type, oversize payloads and
// unsupported extensions.
func (u *Uploader) Check(fh *multipart.FileHeader) error {
	if fh == nil {
		return domain.Invalid("image", "Product image is required.")
	}
	if !strings.HasPrefix(strings.ToLower(fh.Header.Get("Content-Type")), "image/") {
		return domain.Invalid("image", "Only image files allowed.")
	}
	if fh.Size > u.MaxBytes {
		return domain.Invalid("image", fmt.Sprintf("Image exceeds %d bytes.", u.MaxBytes))
	}
	if !allowedExt[strings.ToLower(filepath.Ext(fh.Filename))] {
		return domain.Invalid("image", "Image must be jpg, jpeg, png or webp.")
	}
	return nil
}

// Save validates fh and stores it under a fresh unique name.
func (u *Uploader) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if err := u.Check(fh); err != nil {
		return "", err
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	loc, err := u.Store.Put(ctx, name, fh.Header.Get("Content-Type"), &maxReader{r: f, max: u.MaxBytes})
	if err != nil {
		return "", err
	}
	return loc, nil
}

// maxReader fails once more than max bytes were read, whatever the header said.
type maxReader struct {
	r    io.Reader
	max  int64
	read int64
}

func (m *maxReader) Read(p []byte) (int, error) {
	n, err := m.r.Read(p)
	m.read += int64(n)
	if m.read > m.max {
		return n, domain.Invalid("image", fmt.Sprintf("Image exceeds %d bytes.", m.max))
	}
	return n, err
}
