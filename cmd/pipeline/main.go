package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dvloznov/ecommerce-pipeline/internal/config"
	"github.com/dvloznov/ecommerce-pipeline/internal/infra/mongo"
	"github.com/dvloznov/ecommerce-pipeline/internal/logger"
	"github.com/dvloznov/ecommerce-pipeline/internal/objectstore"
	"github.com/dvloznov/ecommerce-pipeline/internal/pipeline"
)

func main() {
	log := logger.New()

	sourceDir := flag.String("source-dir", "", "ingest raw CSVs from this directory into the landing bucket before running")
	flag.Parse()

	cfg := config.Load()

	// Cancellation requests take effect at stage boundaries.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	store, err := objectstore.New(cfg.Minio, log)
	if err != nil {
		log.Fatal().Err(err).Msg("object store connection failed")
	}

	docs, err := mongo.Connect(ctx, cfg.Mongo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("document store connection failed")
	}
	defer docs.Close(context.Background())

	if *sourceDir != "" {
		if _, err := pipeline.IngestSources(ctx, store, cfg.Buckets.Landing, *sourceDir, log); err != nil {
			log.Fatal().Err(err).Msg("source ingestion failed")
		}
	}

	report := pipeline.New(cfg.Buckets, store, docs, log).Run(ctx)

	out, err := report.JSON()
	if err != nil {
		log.Fatal().Err(err).Msg("report serialization failed")
	}
	fmt.Println(string(out))

	if report.Status == pipeline.StatusFailed {
		os.Exit(1)
	}
}
