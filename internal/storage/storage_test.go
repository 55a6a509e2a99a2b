package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dorysbakehouse/bakehouse/backend/internal/config"
	"github.com/dorysbakehouse/bakehouse/backend/pkg/metrics"
)

func newLocal(t *testing.T) *LocalStorage {
	t.Helper()
	l, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)
	l.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return l
}

func TestLocalStoreWritesFileAndURL(t *testing.T) {
	l := newLocal(t)
	obj, err := l.Store(context.Background(), Products, File{Name: "cake.jpg", Content: strings.NewReader("jpeg-bytes")})
	require.NoError(t, err)

	assert.Equal(t, "/uploads/products/1700000000000-cake.jpg", obj.URL)
	assert.Equal(t, "products/1700000000000-cake.jpg", obj.Key)

	b, err := os.ReadFile(filepath.Join(l.Root(), "products", "1700000000000-cake.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(b))
}

func TestLocalStoreSameNameSameMillisecond(t *testing.T) {
	l := newLocal(t)
	ctx := context.Background()
	a, err := l.Store(ctx, Gallery, File{Name: "img.png", Content: strings.NewReader("a")})
	require.NoError(t, err)
	b, err := l.Store(ctx, Gallery, File{Name: "img.png", Content: strings.NewReader("b")})
	require.NoError(t, err)

	assert.NotEqual(t, a.URL, b.URL)
	assert.Equal(t, "/uploads/gallery/1700000000000-img-1.png", b.URL)
}

func TestLocalStoreSanitizesName(t *testing.T) {
	l := newLocal(t)
	obj, err := l.Store(context.Background(), Today, File{Name: "../../etc/my bake.jpg", Content: strings.NewReader("x")})
	require.NoError(t, err)
	assert.Equal(t, "today/1700000000000-my_bake.jpg", obj.Key)
	_, err = os.Stat(filepath.Join(l.Root(), "today", "1700000000000-my_bake.jpg"))
	require.NoError(t, err)
}

func TestLocalStoreRejectsBadInput(t *testing.T) {
	l := newLocal(t)
	_, err := l.Store(context.Background(), Destination("elsewhere"), File{Name: "a.jpg", Content: strings.NewReader("x")})
	require.ErrorIs(t, err, ErrUnknownDest)
	_, err = l.Store(context.Background(), Products, File{Name: "a.jpg"})
	require.ErrorIs(t, err, ErrNoContent)
}

func TestLocalRemove(t *testing.T) {
	l := newLocal(t)
	ctx := context.Background()
	obj, err := l.Store(ctx, Gallery, File{Name: "a.jpg", Content: strings.NewReader("x")})
	require.NoError(t, err)

	require.NoError(t, l.Remove(ctx, obj.Key))
	_, err = os.Stat(filepath.Join(l.Root(), filepath.FromSlash(obj.Key)))
	require.True(t, os.IsNotExist(err))

	// removing twice is fine
	require.NoError(t, l.Remove(ctx, obj.Key))
	require.Error(t, l.Remove(ctx, ""))
}

func TestInstrumentedCountsUploads(t *testing.T) {
	u := Instrumented(newLocal(t))
	before := testutil.ToFloat64(metrics.Uploads.WithLabelValues("local", "ok"))
	beforeErr := testutil.ToFloat64(metrics.Uploads.WithLabelValues("local", "error"))

	_, err := u.Store(context.Background(), Products, File{Name: "a.jpg", Content: strings.NewReader("x")})
	require.NoError(t, err)
	_, err = u.Store(context.Background(), Products, File{Name: "a.jpg"})
	require.Error(t, err)

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.Uploads.WithLabelValues("local", "ok")))
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(metrics.Uploads.WithLabelValues("local", "error")))
	assert.Equal(t, "local", u.Name())
	_, ok := Unwrap(u).(*LocalStorage)
	assert.True(t, ok)
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := &config.Config{Upload: config.UploadConfig{Backend: config.UploadBackendLocal, Dir: t.TempDir()}}
	u, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "local", u.Name())

	cfg = &config.Config{Upload: config.UploadConfig{Backend: config.UploadBackendCloudinary}}
	_, err = New(context.Background(), cfg)
	require.Error(t, err)

	cfg = &config.Config{Upload: config.UploadConfig{Backend: "ftp"}}
	_, err = New(context.Background(), cfg)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestCloudinaryFolder(t *testing.T) {
	c, err := NewCloudinaryStorage(config.CloudinaryConfig{CloudName: "demo", APIKey: "k", APISecret: "s", FolderPrefix: "dory-"})
	require.NoError(t, err)
	assert.Equal(t, "dory-products", c.Folder(Products))
	assert.Equal(t, "dory-gallery", c.Folder(Gallery))
	assert.Equal(t, "dory-today", c.Folder(Today))
	assert.Equal(t, "cloudinary", c.Name())
}

func TestMinIOObjectKeyAndURL(t *testing.T) {
	assert.Equal(t, "gallery/abc.jpg", objectKey(Gallery, "Photo.JPG", "abc"))
	assert.Equal(t, "products/abc", objectKey(Products, "noext", "abc"))

	s := &MinIOStorage{bucket: "bakehouse", urlPrefix: "/uploads"}
	assert.Equal(t, "/uploads/gallery/abc.jpg", s.objectURL("gallery/abc.jpg"))
	s.publicURL = "https://cdn.example.com"
	assert.Equal(t, "https://cdn.example.com/bakehouse/gallery/abc.jpg", s.objectURL("gallery/abc.jpg"))
}
