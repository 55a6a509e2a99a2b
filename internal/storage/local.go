package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage writes uploads below root/<destination>/ and exposes them
// under urlPrefix, which the HTTP layer serves statically.
type LocalStorage struct {
	root      string
	urlPrefix string
	now       func() time.Time
}

// NewLocalStorage creates root and one sub-directory per destination.
func NewLocalStorage(root, urlPrefix string) (*LocalStorage, error) {
	for _, d := range []Destination{Products, Gallery, Today} {
		if err := os.MkdirAll(filepath.Join(root, string(d)), 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
	}
	if urlPrefix == "" {
		urlPrefix = "/uploads"
	}
	return &LocalStorage{root: root, urlPrefix: strings.TrimRight(urlPrefix, "/"), now: time.Now}, nil
}

func (l *LocalStorage) Name() string { return "local" }

func (l *LocalStorage) Root() string { return l.root }

// Store names the file "<unix millis>-<original name>"; a numeric suffix is
// added when two uploads of the same name land in the same millisecond.
func (l *LocalStorage) Store(_ context.Context, dest Destination, f File) (Object, error) {
	if !dest.valid() {
		return Object{}, fmt.Errorf("%w: %q", ErrUnknownDest, dest)
	}
	if f.Content == nil {
		return Object{}, ErrNoContent
	}

	base := fmt.Sprintf("%d-%s", l.now().UnixMilli(), cleanName(f.Name))
	dir := filepath.Join(l.root, string(dest))

	var (
		out  *os.File
		name string
		err  error
	)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 0; i < 100; i++ {
		name = base
		if i > 0 {
			name = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		out, err = os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil || !errors.Is(err, fs.ErrExist) {
			break
		}
	}
	if err != nil {
		return Object{}, fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(out, f.Content); err != nil {
		out.Close()
		os.Remove(out.Name())
		return Object{}, fmt.Errorf("write upload file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return Object{}, fmt.Errorf("close upload file: %w", err)
	}

	key := path.Join(string(dest), name)
	return Object{URL: l.urlPrefix + "/" + string(dest) + "/" + url.PathEscape(name), Key: key}, nil
}

// Remove deletes a stored file; a missing file is not an error.
func (l *LocalStorage) Remove(_ context.Context, key string) error {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return fmt.Errorf("remove: empty key")
	}
	err := os.Remove(filepath.Join(l.root, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
