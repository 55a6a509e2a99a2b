package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/dorysbakehouse/bakehouse/backend/internal/config"
)

// URLPrefix is where locally stored or proxied uploads are served.
const URLPrefix = "/uploads"

// ObjectInfo is the metadata needed to stream an object back to a client.
type ObjectInfo struct {
	Size        int64
	ContentType string
}

// ObjectReader is implemented by backends whose objects the service serves itself.
type ObjectReader interface {
	Open(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
}

// New builds the uploader selected by UPLOAD_BACKEND, wrapped with metrics and logging.
func New(ctx context.Context, cfg *config.Config) (Uploader, error) {
	var (
		u   Uploader
		err error
	)
	switch cfg.Upload.Backend {
	case config.UploadBackendLocal:
		u, err = NewLocalStorage(cfg.Upload.Dir, URLPrefix)
	case config.UploadBackendCloudinary:
		u, err = NewCloudinaryStorage(cfg.Cloudinary)
	case config.UploadBackendMinIO:
		u, err = NewMinIOStorage(ctx, cfg.MinIO, URLPrefix)
	default:
		return nil, fmt.Errorf("%w: unknown upload backend %q", config.ErrInvalidConfig, cfg.Upload.Backend)
	}
	if err != nil {
		return nil, err
	}
	return Instrumented(u), nil
}

// Unwrap returns the backend behind an instrumented uploader.
func Unwrap(u Uploader) Uploader {
	if i, ok := u.(*instrumented); ok {
		return i.next
	}
	return u
}
