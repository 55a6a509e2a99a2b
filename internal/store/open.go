package store

import (
	"context"
	"fmt"

	"github.com/dorysbakehouse/bakehouse/backend/internal/config"
	"github.com/dorysbakehouse/bakehouse/backend/internal/database"
	"github.com/dorysbakehouse/bakehouse/backend/pkg/logger"
)

// MongoCollection is the collection holding all documents of the mongo backend.
const MongoCollection = "store"

// OpenBackend builds the backend selected by kind ("file" or "mongo").
// The returned close function is never nil.
func OpenBackend(ctx context.Context, kind string, cfg *config.Config) (Backend, func(), error) {
	noop := func() {}
	switch kind {
	case config.DataBackendFile:
		b, err := NewFileBackend(cfg.Data.Dir)
		if err != nil {
			return nil, noop, err
		}
		return b, noop, nil
	case config.DataBackendMongo:
		if cfg.MongoDB.URI == "" {
			return nil, noop, fmt.Errorf("%w: MONGODB_URI is required for the mongo backend", config.ErrInvalidConfig)
		}
		log := logger.For("store")
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, func(attempt int, err error) {
			log.Warnf("attempt %d: failed to connect to MongoDB: %v", attempt, err)
		})
		if err != nil {
			return nil, noop, err
		}
		col := client.Database(cfg.MongoDB.Database).Collection(MongoCollection)
		return NewMongoBackend(col), func() { _ = client.Disconnect(context.Background()) }, nil
	}
	return nil, noop, fmt.Errorf("%w: unknown data backend %q", config.ErrInvalidConfig, kind)
}
