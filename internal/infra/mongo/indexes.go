package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes (re)creates the unique and supporting indexes on the four
// operational collections. Creating an index that already exists with the
// same definition is a no-op, so this is safe to run after every load.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongodriver.IndexModel{
		CollClientSummary: {
			{Keys: bson.D{{Key: "id_client", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "pays", Value: 1}}},
			{Keys: bson.D{{Key: "montant_total", Value: -1}}},
		},
		CollProductAnalytics: {
			{Keys: bson.D{{Key: "produit", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "revenu_total", Value: -1}}},
		},
		CollMonthlySales: {
			{Keys: bson.D{{Key: "annee_mois", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollCountryAnalytics: {
			{Keys: bson.D{{Key: "pays", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "revenu_total", Value: -1}}},
		},
	}

	for collection, models := range specs {
		if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo: create indexes on %s: %w", collection, err)
		}
		s.log.Debug().Str("collection", collection).Int("indexes", len(models)).Msg("ensured indexes")
	}
	return nil
}
