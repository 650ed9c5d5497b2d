package ops

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"liyu1981.xyz/energy-opdb-service/pkg/common"
	"liyu1981.xyz/energy-opdb-service/pkg/errs"
	"liyu1981.xyz/energy-opdb-service/pkg/models"
	"liyu1981.xyz/energy-opdb-service/pkg/tx"
)

func forecastLogger(ctx context.Context) *zap.Logger {
	return common.LoggerFromContext(ctx, common.GetLoggerWith(
		common.LoggerNameOpsCore,
		zap.String(common.LoggerFieldOpsCategory, common.LoggerCategoryOpsForecast),
	))
}

func forecastKind(name string) (models.ForecastKind, error) {
	kind, ok := models.LookupForecastKind(name)
	if !ok {
		return models.ForecastKind{}, errs.Validation("unknown forecast kind %q, expected one of asset, pod, market", name)
	}
	return kind, nil
}

// forecastRef resolves the reference of kinds backed by a catalog. Kinds
// without one store the given surrogate id as is.
func (o *OPS) forecastRef(ctx context.Context, kind models.ForecastKind, ref models.Reference, read bool) (bson.ObjectID, error) {
	if kind.Target == nil {
		return ref.Surrogate(), nil
	}
	if read {
		return o.resolveForRead(ctx, *kind.Target, ref)
	}
	resolved, err := o.Integrity.ResolveReferences(ctx, *kind.Target, []models.Reference{ref})
	if err != nil {
		return bson.ObjectID{}, err
	}
	return resolved[ref], nil
}

func (o *OPS) injectForecasts(ctx context.Context, kindName string, ref models.Reference, batch []models.ForecastIn) ([]models.Forecast, error) {
	logger := forecastLogger(ctx).With(zap.String("kind", kindName))

	kind, err := forecastKind(kindName)
	if err != nil {
		return nil, err
	}
	if err := validateForecasts(kind, ref, batch); err != nil {
		return nil, err
	}

	forecasts, err := tx.Do(ctx, o.Writer, "inject_"+kind.Name+"_forecasts", func(ctx context.Context) ([]models.Forecast, error) {
		id, err := o.forecastRef(ctx, kind, ref, false)
		if err != nil {
			return nil, err
		}
		now := time.Now().UTC()
		forecasts := make([]models.Forecast, len(batch))
		for i, in := range batch {
			f := models.Forecast{
				ID:             bson.NewObjectID(),
				ForecastType:   in.ForecastType,
				Granularity:    in.Granularity,
				ValidFrom:      in.ValidFrom.UTC(),
				ValidUntil:     in.ValidUntil.UTC(),
				ForecastValues: in.ForecastValues,
				Metadata:       in.Metadata,
			}
			if f.ForecastValues == nil {
				f.ForecastValues = []models.ForecastValue{}
			}
			if f.Metadata.AddedAt.IsZero() {
				f.Metadata.AddedAt = now
			}
			if f.Metadata.SchemaVersion == 0 {
				f.Metadata.SchemaVersion = 1
			}
			if f.Metadata.InputReferences == nil {
				f.Metadata.InputReferences = []models.InputReferences{}
			}
			kind.SetRef(&f, id)
			forecasts[i] = f
		}
		return forecasts, insertAll(ctx, o.Db.Collection(kind.Collection), forecasts)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Injected forecasts", zap.String("ref", ref.String()), zap.Int("count", len(forecasts)))
	return forecasts, nil
}

func (o *OPS) getForecasts(ctx context.Context, kindName string, ref models.Reference, query models.ForecastQuery) ([]models.Forecast, error) {
	kind, err := forecastKind(kindName)
	if err != nil {
		return nil, err
	}
	if ref.IsZero() || (kind.Target == nil && ref.IsExternal()) {
		return nil, errs.Validation("%s must be a valid reference", kind.RefField)
	}

	id, err := o.forecastRef(ctx, kind, ref, true)
	if err != nil {
		return nil, err
	}

	filter := bson.D{{Key: kind.RefField, Value: id}}
	if query.ValidFrom != nil {
		filter = append(filter, bson.E{Key: "valid_from", Value: bson.D{{Key: "$gte", Value: *query.ValidFrom}}})
	}
	if query.ForecastID != nil {
		filter = append(filter, bson.E{Key: "_id", Value: *query.ForecastID})
	}
	return findAll[models.Forecast](ctx, o.Db.Collection(kind.Collection), filter,
		bson.D{{Key: "valid_from", Value: 1}, {Key: "_id", Value: 1}})
}

type IForecastImpl struct {
	ops *OPS
}

func (ifc *IForecastImpl) InjectForecasts(ctx context.Context, kind string, ref models.Reference, batch []models.ForecastIn) ([]models.Forecast, error) {
	return ifc.ops.injectForecasts(ctx, kind, ref, batch)
}

func (ifc *IForecastImpl) GetForecasts(ctx context.Context, kind string, ref models.Reference, query models.ForecastQuery) ([]models.Forecast, error) {
	return ifc.ops.getForecasts(ctx, kind, ref, query)
}

func (o *OPS) GetIForecast() IForecast {
	return &IForecastImpl{ops: o}
}
