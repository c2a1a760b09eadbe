package main

import (
	"context"
	"flag"
	"time"

	"github.com/dvloznov/ecommerce-pipeline/internal/config"
	"github.com/dvloznov/ecommerce-pipeline/internal/logger"
	"github.com/dvloznov/ecommerce-pipeline/internal/objectstore"
	"github.com/dvloznov/ecommerce-pipeline/internal/pipeline"
)

func main() {
	log := logger.New()

	sourceDir := flag.String("source-dir", "", "directory holding clients.csv and achats.csv (defaults to SOURCE_DATA_DIR)")
	flag.Parse()

	cfg := config.Load()
	dir := cfg.SourceDir
	if *sourceDir != "" {
		dir = *sourceDir
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := objectstore.New(cfg.Minio, log)
	if err != nil {
		log.Fatal().Err(err).Msg("object store connection failed")
	}

	sizes, err := pipeline.IngestSources(ctx, store, cfg.Buckets.Landing, dir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("ingestion failed")
	}
	log.Info().Interface("objects", sizes).Str("bucket", cfg.Buckets.Landing).Msg("ingestion complete")
}
