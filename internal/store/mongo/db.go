package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Open connects to the document store and verifies the connection with a
// ping. Transient failures during startup are retried a few times, which
// covers managed clusters that are still warming up.
func Open(ctx context.Context, uri, database string) (*mongo.Database, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}

		client, err := mongo.Connect(
			options.Client().
				ApplyURI(uri).
				SetConnectTimeout(10 * time.Second).
				SetRetryWrites(true).
				SetRetryReads(true),
		)
		if err != nil {
			lastErr = err
			continue
		}

		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(ctx)
			lastErr = err
			continue
		}

		return client.Database(database), nil
	}

	return nil, fmt.Errorf("connect mongo: %w", lastErr)
}

// Ping returns a health check function for the readiness endpoint.
func Ping(db *mongo.Database) func(context.Context) error {
	return func(ctx context.Context) error {
		return db.Client().Ping(ctx, nil)
	}
}

// EnsureIndexes creates the indexes every store relies on. It is idempotent
// and called once at startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, step := range []func(context.Context, *mongo.Database) error{
		ensureUserIndexes,
		ensureProjectIndexes,
		ensureGalleryIndexes,
		ensureEnquiryIndexes,
	} {
		if err := step(ctx, db); err != nil {
			return err
		}
	}
	return nil
}
