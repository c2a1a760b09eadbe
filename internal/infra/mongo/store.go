// Package mongo is the operational document store repository. The four gold
// collections are fully replaced on every pipeline run (drop then bulk
// insert), so they always reflect exactly the latest run's output.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/dvloznov/ecommerce-pipeline/internal/config"
)

// Operational collection names served to the API and dashboard.
const (
	CollClientSummary    = "clients_summary"
	CollProductAnalytics = "products_analytics"
	CollMonthlySales     = "monthly_sales"
	CollCountryAnalytics = "country_analytics"
)

// Store wraps a single database handle. It is constructed per run and closed
// by the caller; no process-wide cached client.
type Store struct {
	client *mongodriver.Client
	db     *mongodriver.Database
	log    zerolog.Logger
}

// Connect dials the document store and verifies the connection with a ping.
func Connect(ctx context.Context, cfg config.MongoConfig, log zerolog.Logger) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongodriver.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return &Store{
		client: client,
		db:     client.Database(cfg.Database),
		log:    log,
	}, nil
}

// Close releases the underlying connections.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Replace drops the collection and bulk-inserts docs in its place. Readers
// may observe an empty or partially populated collection during the swap;
// that window is an accepted property of the replace-all load.
//
// A partial bulk failure is not an error: the number of documents that did
// make it in is returned and the discrepancy is the caller's to surface.
func (s *Store) Replace(ctx context.Context, collection string, docs []any) (int64, error) {
	coll := s.db.Collection(collection)

	if err := coll.Drop(ctx); err != nil {
		return 0, fmt.Errorf("mongo: drop %s: %w", collection, err)
	}
	s.log.Debug().Str("collection", collection).Msg("dropped collection")

	if len(docs) == 0 {
		return 0, nil
	}

	res, err := coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		var bwe mongodriver.BulkWriteException
		if errors.As(err, &bwe) {
			inserted := int64(len(docs) - len(bwe.WriteErrors))
			s.log.Warn().
				Str("collection", collection).
				Int64("inserted", inserted).
				Int("rejected", len(bwe.WriteErrors)).
				Msg("bulk insert partially failed")
			return inserted, nil
		}
		return 0, fmt.Errorf("mongo: insert into %s: %w", collection, err)
	}
	return int64(len(res.InsertedIDs)), nil
}

// Count returns the number of documents currently in the collection.
func (s *Store) Count(ctx context.Context, collection string) (int64, error) {
	n, err := s.db.Collection(collection).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("mongo: count %s: %w", collection, err)
	}
	return n, nil
}
