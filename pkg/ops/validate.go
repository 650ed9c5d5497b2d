package ops

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"liyu1981.xyz/energy-opdb-service/pkg/errs"
)

func anyIDs[T any](ids []T) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func insertAll[T any](ctx context.Context, coll *mongo.Collection, docs []T) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := coll.InsertMany(ctx, docs)
	return errs.FromMongo(err)
}

// findAll never returns a nil slice so empty listings render as [].
func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.D, sort bson.D) ([]T, error) {
	if filter == nil {
		filter = bson.D{}
	}
	opts := options.Find()
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errs.FromMongo(err)
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.FromMongo(err)
	}
	return out, nil
}
