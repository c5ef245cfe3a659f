package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Storage is the blob backend for message attachments (image, video, file
// and voice message types). Paths are opaque keys chosen by the caller.
type Storage interface {
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)

	// GetURL returns the public URL for a stored object.
	GetURL(ctx context.Context, path string) (string, error)

	// GetSignedURL returns a temporary URL for private objects. Backends
	// without signing fall back to the public URL.
	GetSignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

type Config struct {
	Type      string `yaml:"type"` // local or cloudflare_r2
	BasePath  string `yaml:"base_path"`
	BaseURL   string `yaml:"base_url"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"`
}

func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg)
	case "cloudflare_r2":
		return NewCloudflareR2Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
