package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/dorysbakehouse/bakehouse/backend/internal/config"
)

// CloudinaryStorage hands uploads to the Cloudinary image CDN. The folder is
// "<prefix><destination>", e.g. "dory-gallery".
type CloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	prefix string
}

func NewCloudinaryStorage(cfg config.CloudinaryConfig) (*CloudinaryStorage, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("cloudinary credentials missing")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary new: %w", err)
	}
	return &CloudinaryStorage{cld: cld, prefix: cfg.FolderPrefix}, nil
}

func (c *CloudinaryStorage) Name() string { return "cloudinary" }

func (c *CloudinaryStorage) Folder(dest Destination) string {
	return c.prefix + string(dest)
}

// Store uploads the image and returns the CDN's secure URL verbatim.
func (c *CloudinaryStorage) Store(ctx context.Context, dest Destination, f File) (Object, error) {
	if !dest.valid() {
		return Object{}, fmt.Errorf("%w: %q", ErrUnknownDest, dest)
	}
	if f.Content == nil {
		return Object{}, ErrNoContent
	}
	resp, err := c.cld.Upload.Upload(ctx, f.Content, uploader.UploadParams{
		Folder:         c.Folder(dest),
		ResourceType:   "image",
		UniqueFilename: api.Bool(true),
	})
	if err != nil {
		return Object{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return Object{}, fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	url := resp.SecureURL
	if url == "" {
		url = resp.URL
	}
	return Object{URL: url, Key: resp.PublicID}, nil
}

func (c *CloudinaryStorage) Remove(ctx context.Context, key string) error {
	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: key, ResourceType: "image"})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", resp.Error.Message)
	}
	return nil
}
