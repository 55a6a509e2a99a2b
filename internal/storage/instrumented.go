package storage

import (
	"context"

	"github.com/dorysbakehouse/bakehouse/backend/pkg/logger"
	"github.com/dorysbakehouse/bakehouse/backend/pkg/metrics"
)

// Instrumented counts and logs every upload of the wrapped Uploader.
func Instrumented(u Uploader) Uploader {
	return &instrumented{next: u, log: logger.For("storage")}
}

type instrumented struct {
	next Uploader
	log  logger.Component
}

func (i *instrumented) Name() string { return i.next.Name() }

func (i *instrumented) Store(ctx context.Context, dest Destination, f File) (Object, error) {
	obj, err := i.next.Store(ctx, dest, f)
	if err != nil {
		metrics.Uploads.WithLabelValues(i.next.Name(), "error").Inc()
		i.log.Errorf("%s upload of %q to %s failed: %v", i.next.Name(), f.Name, dest, err)
		return Object{}, err
	}
	metrics.Uploads.WithLabelValues(i.next.Name(), "ok").Inc()
	i.log.Debugf("%s stored %q as %s", i.next.Name(), f.Name, obj.Key)
	return obj, nil
}

func (i *instrumented) Remove(ctx context.Context, key string) error {
	if err := i.next.Remove(ctx, key); err != nil {
		i.log.Warnf("%s remove %s failed: %v", i.next.Name(), key, err)
		return err
	}
	return nil
}
