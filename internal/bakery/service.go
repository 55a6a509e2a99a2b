// Package bakery implements the admin operations of the bakehouse site on top
// of the document store and an upload backend.
package bakery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dorysbakehouse/bakehouse/backend/internal/storage"
	"github.com/dorysbakehouse/bakehouse/backend/internal/store"
	"github.com/dorysbakehouse/bakehouse/backend/pkg/logger"
)

var (
	ErrImageRequired = errors.New("image required")
	ErrNoFiles       = errors.New("no files uploaded")
)

// Service owns every bakery operation. Records are passed through as raw JSON
// so fields written by other tools survive list and delete untouched.
type Service struct {
	store   *store.Store
	uploads storage.Uploader
	seq     store.Sequencer
	log     logger.Component
	now     func() time.Time

	mu        sync.Mutex
	lastStamp int64
}

func NewService(s *store.Store, u storage.Uploader, seq store.Sequencer) *Service {
	return &Service{
		store:   s,
		uploads: u,
		seq:     seq,
		log:     logger.For("bakery"),
		now:     time.Now,
	}
}

// Init creates every missing document with its default value.
func (s *Service) Init(ctx context.Context) error {
	for _, d := range Documents() {
		if err := s.store.Ensure(ctx, d.Name, d.Default); err != nil {
			return fmt.Errorf("init %s: %w", d.Name, err)
		}
	}
	return nil
}

// Ping reports whether the document backend is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Backend().Ping(ctx)
}

// stamp returns a millisecond timestamp that is strictly greater than any
// previous stamp of this process, together with the wall time it came from.
func (s *Service) stamp() (int64, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.now()
	id := t.UnixMilli()
	if id <= s.lastStamp {
		id = s.lastStamp + 1
	}
	s.lastStamp = id
	return id, t
}

// discard removes uploads that never made it into a record.
func (s *Service) discard(ctx context.Context, objs ...storage.Object) {
	ctx = context.WithoutCancel(ctx)
	for _, o := range objs {
		if o.Key == "" {
			continue
		}
		if err := s.uploads.Remove(ctx, o.Key); err != nil {
			s.log.Warnf("orphaned upload %s: %v", o.Key, err)
		}
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]json.RawMessage, error) {
	return s.store.Records(ctx, DocProducts)
}

// CreateProduct uploads the image and appends a product with a fresh id.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput, image *storage.File) (Product, error) {
	if image == nil {
		return Product{}, ErrImageRequired
	}
	obj, err := s.uploads.Store(ctx, storage.Products, *image)
	if err != nil {
		return Product{}, fmt.Errorf("upload product image: %w", err)
	}

	p := Product{Name: in.Name, Price: in.Price, Description: in.Description, ImageURL: obj.URL}
	_, err = s.store.UpdateRecords(ctx, DocProducts, func(records []json.RawMessage) ([]json.RawMessage, error) {
		id, err := s.seq.Reserve(ctx, DocProducts, store.MaxID(records), 1)
		if err != nil {
			return nil, err
		}
		p.ID = id
		rec, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		return append(records, rec), nil
	})
	if err != nil {
		s.discard(ctx, obj)
		return Product{}, err
	}
	s.log.Infof("product %d created (%s)", p.ID, p.Name)
	return p, nil
}

// DeleteProduct removes every product whose id loosely matches id. Deleting an
// unknown id still rewrites the document and succeeds.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.deleteRecord(ctx, DocProducts, id)
}

func (s *Service) ListGallery(ctx context.Context) ([]json.RawMessage, error) {
	return s.store.Records(ctx, DocGallery)
}

// AddGalleryImages uploads every file, then appends one item per file with
// consecutive ids in a single rewrite. The whole updated collection is
// returned. When any step fails the files uploaded so far are removed.
func (s *Service) AddGalleryImages(ctx context.Context, files []storage.File) ([]json.RawMessage, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	objs := make([]storage.Object, 0, len(files))
	for _, f := range files {
		obj, err := s.uploads.Store(ctx, storage.Gallery, f)
		if err != nil {
			s.discard(ctx, objs...)
			return nil, fmt.Errorf("upload gallery image %q: %w", f.Name, err)
		}
		objs = append(objs, obj)
	}

	list, err := s.store.UpdateRecords(ctx, DocGallery, func(records []json.RawMessage) ([]json.RawMessage, error) {
		first, err := s.seq.Reserve(ctx, DocGallery, store.MaxID(records), len(objs))
		if err != nil {
			return nil, err
		}
		for i, o := range objs {
			rec, err := json.Marshal(GalleryItem{ID: first + int64(i), URL: o.URL})
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
		return records, nil
	})
	if err != nil {
		s.discard(ctx, objs...)
		return nil, err
	}
	s.log.Infof("gallery: %d image(s) added", len(objs))
	return list, nil
}

func (s *Service) DeleteGalleryItem(ctx context.Context, id string) error {
	return s.deleteRecord(ctx, DocGallery, id)
}

func (s *Service) ListReviews(ctx context.Context) ([]json.RawMessage, error) {
	return s.store.Records(ctx, DocReviews)
}

// CreateReview fills in defaults for falsy fields and puts the review first.
func (s *Service) CreateReview(ctx context.Context, in ReviewInput) (Review, error) {
	id, t := s.stamp()
	r := Review{
		ID:      id,
		Name:    valueOr(in.Name, defaultReviewName),
		Message: valueOr(in.Message, `""`),
		Rating:  valueOr(in.Rating, defaultReviewRating),
		Date:    t.UTC().Format(reviewDateLayout),
	}

	rec, err := json.Marshal(r)
	if err != nil {
		return Review{}, fmt.Errorf("encode review: %w", err)
	}
	_, err = s.store.UpdateRecords(ctx, DocReviews, func(records []json.RawMessage) ([]json.RawMessage, error) {
		return append([]json.RawMessage{rec}, records...), nil
	})
	if err != nil {
		return Review{}, err
	}
	return r, nil
}

func (s *Service) DeleteReview(ctx context.Context, id string) error {
	return s.deleteRecord(ctx, DocReviews, id)
}

func (s *Service) deleteRecord(ctx context.Context, doc, id string) error {
	var removed int
	_, err := s.store.UpdateRecords(ctx, doc, func(records []json.RawMessage) ([]json.RawMessage, error) {
		kept := store.WithoutID(records, id)
		removed = len(records) - len(kept)
		return kept, nil
	})
	if err != nil {
		return err
	}
	s.log.Debugf("%s: delete id=%s removed %d record(s)", doc, id, removed)
	return nil
}

// About returns the stored about document, or JSON null when it is missing
// or unreadable.
func (s *Service) About(ctx context.Context) (json.RawMessage, error) {
	raw, err := s.singleton(ctx, DocAbout)
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		s.log.Warnf("about document is not valid JSON, serving null")
		return jsonNull(), nil
	}
	return raw, nil
}

// UpdateAbout overwrites the about document with exactly the three fields.
// Values are stored as sent; absent fields become "".
func (s *Service) UpdateAbout(ctx context.Context, in AboutInput) (AboutInput, error) {
	a := AboutInput{
		Title:        presentOr(in.Title, `""`),
		Description:  presentOr(in.Description, `""`),
		Description2: presentOr(in.Description2, `""`),
	}
	if err := s.store.ReplaceObject(ctx, DocAbout, a); err != nil {
		return AboutInput{}, err
	}
	return a, nil
}

// Today returns the current bake of the day or JSON null. Documents written
// as an array hold the bake as their last element.
func (s *Service) Today(ctx context.Context) (json.RawMessage, error) {
	raw, err := s.singleton(ctx, DocToday)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			s.log.Warnf("today document is not valid JSON, serving null")
			return jsonNull(), nil
		}
		if len(list) == 0 {
			return jsonNull(), nil
		}
		return list[len(list)-1], nil
	}
	if !json.Valid(trimmed) {
		s.log.Warnf("today document is not valid JSON, serving null")
		return jsonNull(), nil
	}
	return trimmed, nil
}

// SetToday uploads the image and replaces the bake of the day.
func (s *Service) SetToday(ctx context.Context, in TodayInput, image *storage.File) (TodayBake, error) {
	if image == nil {
		return TodayBake{}, ErrImageRequired
	}
	obj, err := s.uploads.Store(ctx, storage.Today, *image)
	if err != nil {
		return TodayBake{}, fmt.Errorf("upload today image: %w", err)
	}
	id, _ := s.stamp()
	b := TodayBake{
		ID:          id,
		Name:        in.Name,
		Ingredients: in.Ingredients,
		Description: in.Description,
		ImageURL:    obj.URL,
	}
	if err := s.store.ReplaceObject(ctx, DocToday, b); err != nil {
		s.discard(ctx, obj)
		return TodayBake{}, err
	}
	s.log.Infof("today's bake set to %q", b.Name)
	return b, nil
}

// ClearToday stores JSON null.
func (s *Service) ClearToday(ctx context.Context) error {
	return s.store.ReplaceObject(ctx, DocToday, nil)
}

// singleton reads a singleton document; a missing one reads as null.
func (s *Service) singleton(ctx context.Context, name string) (json.RawMessage, error) {
	raw, err := s.store.Object(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return jsonNull(), nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return jsonNull(), nil
	}
	return raw, nil
}

func jsonNull() json.RawMessage { return json.RawMessage("null") }

// truthy reports whether a JSON value counts as set: absent, null, false, 0
// and "" do not.
func truthy(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	switch {
	case len(v) == 0, bytes.Equal(v, []byte("null")), bytes.Equal(v, []byte("false")), bytes.Equal(v, []byte(`""`)):
		return false
	case v[0] == '-' || (v[0] >= '0' && v[0] <= '9'):
		f, err := strconv.ParseFloat(string(v), 64)
		return err != nil || f != 0
	}
	return true
}

// valueOr returns the value when it is truthy, the JSON text def otherwise.
func valueOr(raw json.RawMessage, def string) json.RawMessage {
	if !truthy(raw) {
		return json.RawMessage(def)
	}
	return append(json.RawMessage(nil), bytes.TrimSpace(raw)...)
}

// presentOr returns the value unless it is absent.
func presentOr(raw json.RawMessage, def string) json.RawMessage {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return json.RawMessage(def)
	}
	return append(json.RawMessage(nil), v...)
}
