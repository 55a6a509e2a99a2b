package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileBackend keeps each document in <dir>/<name>.json, pretty-printed.
type FileBackend struct {
	dir string
}

// NewFileBackend creates the data directory if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) Dir() string { return f.dir }

func (f *FileBackend) path(name string) string {
	return filepath.Join(f.dir, name+".json")
}

func (f *FileBackend) Read(_ context.Context, name string) (json.RawMessage, error) {
	b, err := os.ReadFile(f.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return json.RawMessage(b), nil
}

// Write indents data and replaces the file atomically: temp file, fsync, rename.
func (f *FileBackend) Write(_ context.Context, name string, data json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("indent %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(f.dir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path(name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func (f *FileBackend) Ping(context.Context) error {
	info, err := os.Stat(f.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", f.dir)
	}
	return nil
}
