package pipeline

import "context"

// BlobStore is the object-store surface the stages need. Implemented by
// objectstore.Client; tests substitute an in-memory store.
type BlobStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	Put(ctx context.Context, bucket, object string, data []byte, contentType string) error
	Get(ctx context.Context, bucket, object string) ([]byte, error)
	Exists(ctx context.Context, bucket, object string) (bool, error)
}

// DocumentStore is the operational-store surface of the publish stage.
// Implemented by infra/mongo.Store.
type DocumentStore interface {
	// Replace drops the collection and bulk-inserts docs; returns how many
	// documents were actually inserted (may be < len(docs) on a partial
	// bulk failure, which is not an error).
	Replace(ctx context.Context, collection string, docs []any) (int64, error)
	EnsureIndexes(ctx context.Context) error
	Count(ctx context.Context, collection string) (int64, error)
}
