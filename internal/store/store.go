// Package store persists the bakehouse documents: JSON arrays for collections
// (products, gallery, reviews) and JSON values for singletons (about, today).
// Every document is read and written whole; a Backend decides where it lives.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/dorysbakehouse/bakehouse/backend/pkg/metrics"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrNotArray = errors.New("document is not a JSON array")
)

// Backend reads and writes named JSON documents.
type Backend interface {
	// Read returns the stored document or ErrNotFound.
	Read(ctx context.Context, name string) (json.RawMessage, error)
	// Write replaces the whole document.
	Write(ctx context.Context, name string, data json.RawMessage) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// Store wraps a Backend with per-document locking so read-modify-write cycles
// issued by one process never interleave.
type Store struct {
	backend Backend
	locks   sync.Map // map[string]*sync.Mutex
}

func New(b Backend) *Store {
	return &Store{backend: b}
}

func (s *Store) Backend() Backend { return s.backend }

func (s *Store) lock(name string) func() {
	v, _ := s.locks.LoadOrStore(name, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// Ensure writes def when the document does not exist yet.
func (s *Store) Ensure(ctx context.Context, name string, def json.RawMessage) error {
	unlock := s.lock(name)
	defer unlock()
	_, err := s.backend.Read(ctx, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("read %s: %w", name, err)
	}
	return s.write(ctx, name, def)
}

// Records loads a collection document.
func (s *Store) Records(ctx context.Context, name string) ([]json.RawMessage, error) {
	raw, err := s.backend.Read(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return decodeRecords(name, raw)
}

// UpdateRecords loads a collection, applies fn and rewrites the whole
// document, even when fn returned the records unchanged.
func (s *Store) UpdateRecords(ctx context.Context, name string, fn func([]json.RawMessage) ([]json.RawMessage, error)) ([]json.RawMessage, error) {
	unlock := s.lock(name)
	defer unlock()

	raw, err := s.backend.Read(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	records, err := decodeRecords(name, raw)
	if err != nil {
		return nil, err
	}
	records, err = fn(records)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	if err := s.write(ctx, name, data); err != nil {
		return nil, err
	}
	return records, nil
}

// Object loads a singleton document as raw JSON.
func (s *Store) Object(ctx context.Context, name string) (json.RawMessage, error) {
	raw, err := s.backend.Read(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return raw, nil
}

// ReplaceObject overwrites a singleton document.
func (s *Store) ReplaceObject(ctx context.Context, name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	unlock := s.lock(name)
	defer unlock()
	return s.write(ctx, name, data)
}

// UpdateObject is the singleton counterpart of UpdateRecords.
func (s *Store) UpdateObject(ctx context.Context, name string, fn func(json.RawMessage) (interface{}, error)) error {
	unlock := s.lock(name)
	defer unlock()

	raw, err := s.backend.Read(ctx, name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("read %s: %w", name, err)
	}
	v, err := fn(raw)
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.write(ctx, name, data)
}

func (s *Store) write(ctx context.Context, name string, data json.RawMessage) error {
	if err := s.backend.Write(ctx, name, data); err != nil {
		metrics.StoreWrites.WithLabelValues(name, "error").Inc()
		return fmt.Errorf("write %s: %w", name, err)
	}
	metrics.StoreWrites.WithLabelValues(name, "ok").Inc()
	return nil
}

func decodeRecords(name string, raw json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []json.RawMessage{}, nil
	}
	var records []json.RawMessage
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w: %v", name, ErrNotArray, err)
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records, nil
}

// recordID extracts the "id" field of a record; ok is false when absent.
func recordID(rec json.RawMessage) (string, bool) {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(rec, &probe); err != nil || len(probe.ID) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(probe.ID, &s); err == nil {
		return s, true
	}
	return string(bytes.TrimSpace(probe.ID)), true
}

// MatchID reports whether the record's id loosely equals id: textually, or
// numerically when both sides parse as numbers ("01" matches 1).
func MatchID(rec json.RawMessage, id string) bool {
	rid, ok := recordID(rec)
	if !ok {
		return false
	}
	if rid == id {
		return true
	}
	a, errA := strconv.ParseFloat(rid, 64)
	b, errB := strconv.ParseFloat(id, 64)
	return errA == nil && errB == nil && a == b
}

// WithoutID returns the records whose id does not match id.
func WithoutID(records []json.RawMessage, id string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(records))
	for _, rec := range records {
		if !MatchID(rec, id) {
			out = append(out, rec)
		}
	}
	return out
}

// MaxID returns the largest integer id found in records, or 0.
func MaxID(records []json.RawMessage) int64 {
	var max int64
	for _, rec := range records {
		rid, ok := recordID(rec)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(rid, 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(rid, 64)
			if ferr != nil {
				continue
			}
			n = int64(f)
		}
		if n > max {
			max = n
		}
	}
	return max
}
