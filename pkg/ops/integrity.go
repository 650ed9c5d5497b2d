package ops

import (
	"context"
	"errors"
	"slices"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"liyu1981.xyz/energy-opdb-service/pkg/common"
	"liyu1981.xyz/energy-opdb-service/pkg/errs"
	"liyu1981.xyz/energy-opdb-service/pkg/models"
)

func integrityLogger(ctx context.Context) *zap.Logger {
	return common.LoggerFromContext(ctx, common.GetLoggerWith(
		common.LoggerNameOpsCore,
		zap.String(common.LoggerFieldOpsCategory, common.LoggerCategoryOpsIntegrity),
	))
}

// lookupFilter matches every candidate in one query: external ids on the
// target's external field, surrogate ids on _id.
func lookupFilter(target models.CatalogTarget, refs []models.Reference) bson.D {
	var externals []int
	var surrogates []bson.ObjectID
	for _, r := range refs {
		if r.IsExternal() {
			externals = append(externals, r.External())
		} else {
			surrogates = append(surrogates, r.Surrogate())
		}
	}

	var or bson.A
	if len(externals) > 0 && target.ExternalField != "" {
		or = append(or, bson.D{{Key: target.ExternalField, Value: bson.D{{Key: "$in", Value: externals}}}})
	}
	if len(surrogates) > 0 {
		or = append(or, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: surrogates}}}})
	}

	filter := target.Filter()
	if len(or) == 0 {
		// nothing can match, e.g. external ids against a target without one
		return append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$in", Value: bson.A{}}}})
	}
	return append(filter, bson.E{Key: "$or", Value: or})
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

// resolve maps every distinct candidate that exists to its surrogate id and
// returns the rest, sorted.
func (o *OPS) resolve(ctx context.Context, target models.CatalogTarget, refs []models.Reference) (map[models.Reference]bson.ObjectID, []models.Reference, error) {
	candidates := common.Distinct(refs)
	found := make(map[models.Reference]bson.ObjectID, len(candidates))
	if len(candidates) == 0 {
		return found, nil, nil
	}

	projection := bson.D{{Key: "_id", Value: 1}}
	if target.ExternalField != "" {
		projection = append(projection, bson.E{Key: target.ExternalField, Value: 1})
	}
	cur, err := o.Db.Collection(target.Collection).Find(ctx,
		lookupFilter(target, candidates),
		options.Find().SetProjection(projection))
	if err != nil {
		return nil, nil, errs.FromMongo(err)
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, nil, errs.FromMongo(err)
	}

	for _, d := range docs {
		id, ok := d["_id"].(bson.ObjectID)
		if !ok {
			continue
		}
		found[models.SurrogateRef(id)] = id
		if external, ok := asInt(d[target.ExternalField]); ok {
			found[models.ExternalRef(external)] = id
		}
	}

	var missing []models.Reference
	for _, r := range candidates {
		if _, ok := found[r]; !ok {
			missing = append(missing, r)
		}
	}
	slices.SortFunc(missing, models.CompareReferences)

	resolved := make(map[models.Reference]bson.ObjectID, len(candidates)-len(missing))
	for _, r := range candidates {
		if id, ok := found[r]; ok {
			resolved[r] = id
		}
	}
	return resolved, missing, nil
}

func (o *OPS) missingReferences(ctx context.Context, target models.CatalogTarget, refs []models.Reference) ([]models.Reference, error) {
	_, missing, err := o.resolve(ctx, target, refs)
	return missing, err
}

// resolveReferences fails the whole batch when any candidate is missing.
func (o *OPS) resolveReferences(ctx context.Context, target models.CatalogTarget, refs []models.Reference) (map[models.Reference]bson.ObjectID, error) {
	resolved, missing, err := o.resolve(ctx, target, refs)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		o.metrics().RejectedReferences.WithLabelValues(target.Collection).Add(float64(len(missing)))
		ids := common.Mapper(missing, models.Reference.Value)
		integrityLogger(ctx).Info("Rejected unresolved references",
			zap.String("collection", target.Collection),
			zap.Any("ids", ids))
		return nil, errs.NotFoundReference(string(target.Kind), ids)
	}
	return resolved, nil
}

func (o *OPS) exists(ctx context.Context, collection string, id bson.ObjectID) (bool, error) {
	err := o.Db.Collection(collection).
		FindOne(ctx, bson.D{{Key: "_id", Value: id}}, options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}})).
		Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, errs.FromMongo(err)
	}
	return true, nil
}

type IIntegrityImpl struct {
	ops *OPS
}

func (ii *IIntegrityImpl) MissingReferences(ctx context.Context, target models.CatalogTarget, refs []models.Reference) ([]models.Reference, error) {
	return ii.ops.missingReferences(ctx, target, refs)
}

func (ii *IIntegrityImpl) ResolveReferences(ctx context.Context, target models.CatalogTarget, refs []models.Reference) (map[models.Reference]bson.ObjectID, error) {
	return ii.ops.resolveReferences(ctx, target, refs)
}

func (ii *IIntegrityImpl) Exists(ctx context.Context, collection string, id bson.ObjectID) (bool, error) {
	return ii.ops.exists(ctx, collection, id)
}

func (o *OPS) GetIIntegrity() IIntegrity {
	return &IIntegrityImpl{ops: o}
}
