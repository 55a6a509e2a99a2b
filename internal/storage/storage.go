// Package storage turns uploaded image bytes into URLs the site can embed.
// Three interchangeable backends exist: local disk, Cloudinary and MinIO.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// Destination names the folder an upload belongs to. Each route passes its
// own destination explicitly.
type Destination string

const (
	Products Destination = "products"
	Gallery  Destination = "gallery"
	Today    Destination = "today"
)

var (
	ErrNoContent      = errors.New("upload has no content")
	ErrUnknownDest    = errors.New("unknown upload destination")
	ErrObjectNotFound = errors.New("stored object not found")
)

// File is one uploaded file as received from the client.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Content     io.Reader
}

// Object describes a stored upload. Key identifies it for Remove.
type Object struct {
	URL string
	Key string
}

// Uploader stores uploaded files and returns a retrievable URL.
type Uploader interface {
	Name() string
	Store(ctx context.Context, dest Destination, f File) (Object, error)
	Remove(ctx context.Context, key string) error
}

func (d Destination) valid() bool {
	switch d {
	case Products, Gallery, Today:
		return true
	}
	return false
}

// cleanName reduces a client-supplied filename to a safe base name.
func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r < 0x20, r == '/', r == ':', r == '*', r == '?', r == '"', r == '<', r == '>', r == '|':
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "upload"
	}
	return name
}
