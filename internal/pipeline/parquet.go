package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/parquet-go/parquet-go"
)

// WriteTable serializes rows to parquet and publishes them as
// "<name>.parquet" in the given bucket, creating the bucket on first use.
// The write overwrites by name and is safe to repeat. Returns the stored
// object name.
func WriteTable[T any](ctx context.Context, store BlobStore, bucket, name string, rows []T) (string, error) {
	var buf bytes.Buffer
	if err := parquet.Write(&buf, rows); err != nil {
		return "", fmt.Errorf("encode table %q: %w", name, err)
	}

	if err := store.EnsureBucket(ctx, bucket); err != nil {
		return "", err
	}

	object := name + parquetExt
	if err := store.Put(ctx, bucket, object, buf.Bytes(), "application/octet-stream"); err != nil {
		return "", err
	}
	return object, nil
}

// ReadTable fetches "<name>.parquet" from the bucket and decodes it into
// typed rows.
func ReadTable[T any](ctx context.Context, store BlobStore, bucket, name string) ([]T, error) {
	data, err := store.Get(ctx, bucket, name+parquetExt)
	if err != nil {
		return nil, err
	}

	rows, err := parquet.Read[T](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("decode table %q: %w", name, err)
	}
	return rows, nil
}
