package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"liyu1981.xyz/energy-opdb-service/pkg/common"
	"liyu1981.xyz/energy-opdb-service/pkg/models"
)

func unique(keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
}

func plain(keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys}
}

func asc(fields ...string) bson.D {
	keys := make(bson.D, len(fields))
	for i, f := range fields {
		keys[i] = bson.E{Key: f, Value: 1}
	}
	return keys
}

// IndexPlan lists, per collection, the indexes the integrity rules rely on.
// Uniqueness on external ids and on (ref, timestamp) is what turns racing
// writers into Conflict errors.
func IndexPlan() map[string][]mongo.IndexModel {
	plan := map[string][]mongo.IndexModel{
		models.CollectionMeters: {unique(asc("meter_id"))},
		models.CollectionPODs: {
			unique(asc("pod_id")),
			plain(asc("meter_mongo_id")),
		},
		models.CollectionAssets: {
			unique(asc("asset_id")),
			unique(asc("asset_id", "meter_mongo_id")),
			plain(asc("meter_mongo_id")),
		},
		models.CollectionECMembers: {
			unique(asc("ec_id", "pod_mongo_id")),
			plain(asc("ec_id")),
			plain(asc("pod_mongo_id")),
		},
		models.CollectionRuns: {
			plain(asc("valid_from")),
			plain(asc("status")),
		},
		models.CollectionSchedules: {
			plain(asc("asset_id")),
			plain(asc("optimization_run_id")),
		},
	}
	for _, kind := range models.MeasurementKinds {
		plan[kind.Collection] = []mongo.IndexModel{unique(asc(kind.RefField, "timestamp"))}
	}
	for _, kind := range models.ForecastKinds {
		plan[kind.Collection] = []mongo.IndexModel{
			plain(asc(kind.RefField, "valid_from", "valid_until")),
			plain(asc("metadata.added_at")),
		}
	}
	return plan
}

// EnsureIndexes creates every planned index, one collection per goroutine.
func EnsureIndexes(ctx context.Context, d *DB) error {
	logger := common.GetLoggerWith(common.LoggerNameDb)

	g, gctx := errgroup.WithContext(ctx)
	for collection, indexes := range IndexPlan() {
		g.Go(func() error {
			names, err := d.Collection(collection).Indexes().CreateMany(gctx, indexes)
			if err != nil {
				return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
			}
			logger.Debug("Indexes ensured", zap.String("collection", collection), zap.Strings("indexes", names))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Database indexes ensured")
	return nil
}
