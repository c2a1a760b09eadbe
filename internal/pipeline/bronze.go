package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// IngestSources copies the two raw source CSVs unchanged from a local
// directory into the landing bucket. A missing source file is a
// precondition failure; nothing is uploaded in that case.
func IngestSources(ctx context.Context, store BlobStore, bucket, dir string, log zerolog.Logger) (map[string]int, error) {
	files := make(map[string][]byte, 2)
	for _, name := range []string{ObjectClients, ObjectPurchases} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: source file %s missing in %s", ErrPrecondition, name, dir)
			}
			return nil, fmt.Errorf("read source %s: %w", name, err)
		}
		files[name] = data
	}

	if err := store.EnsureBucket(ctx, bucket); err != nil {
		return nil, err
	}

	sizes := make(map[string]int, len(files))
	for _, name := range []string{ObjectClients, ObjectPurchases} {
		data := files[name]
		if err := store.Put(ctx, bucket, name, data, "text/csv"); err != nil {
			return nil, err
		}
		sizes[name] = len(data)
		log.Info().Str("object", name).Int("bytes", len(data)).Str("bucket", bucket).Msg("ingested source file")
	}
	return sizes, nil
}
