package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo opens a connection and returns the client. Caller should call client.Disconnect(ctx).
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	clientOpts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// ConnectMongoWithRetry retries ConnectMongo with doubling backoff to tolerate
// startup races with the database container.
func ConnectMongoWithRetry(ctx context.Context, uri string, timeout time.Duration, attempts int, onRetry func(attempt int, err error)) (*mongo.Client, error) {
	backoff := time.Second
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		client, err := ConnectMongo(ctx, uri, timeout)
		if err == nil {
			return client, nil
		}
		lastErr = err
		if onRetry != nil {
			onRetry(attempt, err)
		}
		if attempt < attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return nil, fmt.Errorf("mongo unavailable after %d attempts: %w", attempts, lastErr)
}
