package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore writes uploads to a Google Cloud Storage bucket and returns
// absolute public URLs.
type GCSStore struct {
	client  *gcs.Client
	bucket  string
	prefix  string
	baseURL string
}

type GCSConfig struct {
	Bucket        string
	Prefix        string
	Endpoint      string // emulator endpoint; disables authentication
	PublicBaseURL string
}

func NewGCSStore(ctx context.Context, cfg GCSConfig) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs: GCS_BUCKET is required")
	}
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: %w", err)
	}
	return &GCSStore{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.Prefix, "/"),
		baseURL: publicBase(cfg),
	}, nil
}

func publicBase(cfg GCSConfig) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	}
	return "https://storage.googleapis.com/" + cfg.Bucket
}

func (s *GCSStore) objectName(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// ObjectURL is the public URL of object.
func (s *GCSStore) ObjectURL(object string) string {
	u, err := url.JoinPath(s.baseURL, strings.Split(object, "/")...)
	if err != nil {
		return s.baseURL + "/" + object
	}
	return u
}

func (s *GCSStore) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	object := s.objectName(name)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		cancel() // abort the upload instead of finalizing a partial object
		_ = w.Close()
		return "", fmt.Errorf("gcs put %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs put %s: %w", object, err)
	}
	return s.ObjectURL(object), nil
}

func (s *GCSStore) Close() error { return s.client.Close() }
