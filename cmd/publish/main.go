package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dvloznov/ecommerce-pipeline/internal/config"
	"github.com/dvloznov/ecommerce-pipeline/internal/infra/mongo"
	"github.com/dvloznov/ecommerce-pipeline/internal/logger"
	"github.com/dvloznov/ecommerce-pipeline/internal/objectstore"
	"github.com/dvloznov/ecommerce-pipeline/internal/pipeline"
)

// Re-runs only the derived→operational load, for when the gold tables are
// already in place and the collections need refreshing.
func main() {
	log := logger.New()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store, err := objectstore.New(cfg.Minio, log)
	if err != nil {
		log.Fatal().Err(err).Msg("object store connection failed")
	}

	docs, err := mongo.Connect(ctx, cfg.Mongo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("document store connection failed")
	}
	defer docs.Close(context.Background())

	report, err := pipeline.Publish(ctx, store, cfg.Buckets.Derived, docs, log)
	if err != nil {
		log.Fatal().Err(err).Msg("publish failed")
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("report serialization failed")
	}
	fmt.Println(string(out))
}
