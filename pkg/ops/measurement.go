package ops

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"liyu1981.xyz/energy-opdb-service/pkg/common"
	"liyu1981.xyz/energy-opdb-service/pkg/errs"
	"liyu1981.xyz/energy-opdb-service/pkg/models"
	"liyu1981.xyz/energy-opdb-service/pkg/tx"
)

func measurementLogger(ctx context.Context) *zap.Logger {
	return common.LoggerFromContext(ctx, common.GetLoggerWith(
		common.LoggerNameOpsCore,
		zap.String(common.LoggerFieldOpsCategory, common.LoggerCategoryOpsMeasurement),
	))
}

func measurementKind(name string) (models.MeasurementKind, error) {
	kind, ok := models.LookupMeasurementKind(name)
	if !ok {
		return models.MeasurementKind{}, errs.Validation("unknown measurement kind %q, expected one of %v", name, models.MeasurementKindNames())
	}
	return kind, nil
}

// measurementDocument keeps the row layout flat: reference, timestamp and
// only the fields that carry a value.
func measurementDocument(kind models.MeasurementKind, ref bson.ObjectID, m models.MeasurementIn) bson.D {
	doc := bson.D{
		{Key: "_id", Value: bson.NewObjectID()},
		{Key: kind.RefField, Value: ref},
		{Key: "timestamp", Value: m.Timestamp.UTC()},
	}
	names := make([]string, 0, len(m.Values))
	for name, v := range m.Values {
		if v != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		doc = append(doc, bson.E{Key: name, Value: *m.Values[name]})
	}
	return doc
}

func (o *OPS) injectMeasurements(ctx context.Context, kindName string, batch []models.MeasurementIn) (int, error) {
	logger := measurementLogger(ctx).With(zap.String("kind", kindName))

	kind, err := measurementKind(kindName)
	if err != nil {
		return 0, err
	}
	if err := validateMeasurements(kind, batch); err != nil {
		return 0, err
	}

	refs := common.Mapper(batch, func(m models.MeasurementIn) models.Reference { return m.Ref })
	n, err := tx.Do(ctx, o.Writer, "inject_"+kind.Name+"_measurements", func(ctx context.Context) (int, error) {
		resolved, err := o.Integrity.ResolveReferences(ctx, kind.Target, refs)
		if err != nil {
			return 0, err
		}
		docs := make([]bson.D, len(batch))
		for i, m := range batch {
			docs[i] = measurementDocument(kind, resolved[m.Ref], m)
		}
		return len(docs), insertAll(ctx, o.Db.Collection(kind.Collection), docs)
	})
	if err != nil {
		return 0, err
	}

	logger.Info("Injected measurements", zap.Int("count", n))
	return n, nil
}

// resolveForRead turns a reference into a surrogate id, reporting a
// missing entity as NotFound rather than as a rejected write.
func (o *OPS) resolveForRead(ctx context.Context, target models.CatalogTarget, ref models.Reference) (bson.ObjectID, error) {
	resolved, missing, err := o.resolve(ctx, target, []models.Reference{ref})
	if err != nil {
		return bson.ObjectID{}, err
	}
	if len(missing) > 0 {
		return bson.ObjectID{}, errs.NotFound(string(target.Kind), ref.Value())
	}
	return resolved[ref], nil
}

func (o *OPS) getMeasurements(ctx context.Context, kindName string, query models.MeasurementQuery) (*models.Series, error) {
	kind, err := measurementKind(kindName)
	if err != nil {
		return nil, err
	}
	if query.Ref.IsZero() {
		return nil, errs.Validation("%s is required", kind.RefField)
	}
	if query.From != nil && query.Until != nil && query.From.After(*query.Until) {
		return nil, errs.Validation("start_date must not be after end_date")
	}

	ref, err := o.resolveForRead(ctx, kind.Target, query.Ref)
	if err != nil {
		return nil, err
	}
	return o.Joins.Pivot(ctx, kind, ref, query.From, query.Until)
}

type IMeasurementImpl struct {
	ops *OPS
}

func (im *IMeasurementImpl) InjectMeasurements(ctx context.Context, kind string, batch []models.MeasurementIn) (int, error) {
	return im.ops.injectMeasurements(ctx, kind, batch)
}

func (im *IMeasurementImpl) GetMeasurements(ctx context.Context, kind string, query models.MeasurementQuery) (*models.Series, error) {
	return im.ops.getMeasurements(ctx, kind, query)
}

func (o *OPS) GetIMeasurement() IMeasurement {
	return &IMeasurementImpl{ops: o}
}
