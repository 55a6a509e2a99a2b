package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dorysbakehouse/bakehouse/backend/internal/config"
)

// MinIOStorage keeps uploads in an S3-compatible bucket. Objects are linked
// through publicURL when the bucket is exposed, otherwise through urlPrefix
// and streamed back by the service.
type MinIOStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
	urlPrefix string
}

// NewMinIOStorage creates a new MinIO storage client and ensures the bucket exists.
func NewMinIOStorage(ctx context.Context, cfg config.MinIOConfig, urlPrefix string) (*MinIOStorage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	if urlPrefix == "" {
		urlPrefix = "/uploads"
	}
	s := &MinIOStorage{
		client:    mc,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
	}
	// ensure bucket exists (idempotent)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

func (s *MinIOStorage) Name() string { return "minio" }

// Store uploads the file as <destination>/<uuid><ext>.
func (s *MinIOStorage) Store(ctx context.Context, dest Destination, f File) (Object, error) {
	if !dest.valid() {
		return Object{}, fmt.Errorf("%w: %q", ErrUnknownDest, dest)
	}
	if f.Content == nil {
		return Object{}, ErrNoContent
	}
	key := objectKey(dest, f.Name, uuid.NewString())
	size := f.Size
	if size <= 0 {
		size = -1
	}
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if _, err := s.client.PutObject(ctx, s.bucket, key, f.Content, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return Object{}, fmt.Errorf("minio put %s: %w", key, err)
	}
	return Object{URL: s.objectURL(key), Key: key}, nil
}

func (s *MinIOStorage) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// Open returns a reader for the stored object along with its metadata.
func (s *MinIOStorage) Open(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	// perform a stat to ensure object exists
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ObjectInfo{}, ErrObjectNotFound
		}
		return nil, ObjectInfo{}, err
	}
	return obj, ObjectInfo{Size: st.Size, ContentType: st.ContentType}, nil
}

// Ping checks that the bucket is reachable.
func (s *MinIOStorage) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}
	return nil
}

func (s *MinIOStorage) objectURL(key string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + s.bucket + "/" + key
	}
	return s.urlPrefix + "/" + key
}

func objectKey(dest Destination, name, id string) string {
	ext := strings.ToLower(filepath.Ext(cleanName(name)))
	return path.Join(string(dest), id+ext)
}
