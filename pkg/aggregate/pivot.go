package aggregate

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"liyu1981.xyz/energy-opdb-service/pkg/common"
	"liyu1981.xyz/energy-opdb-service/pkg/errs"
	"liyu1981.xyz/energy-opdb-service/pkg/models"
)

const ViewPivot = "pivot"

// PivotFilter matches the rows of one reference inside an optional
// inclusive time window.
func PivotFilter(kind models.MeasurementKind, ref bson.ObjectID, from, until *time.Time) bson.D {
	filter := bson.D{{Key: kind.RefField, Value: ref}}
	if window := TimeWindow(from, until); window != nil {
		filter = append(filter, bson.E{Key: "timestamp", Value: window})
	}
	return filter
}

// PivotPipeline groups the matched rows into parallel arrays and replaces
// a field's array with null when it holds no value at all.
func PivotPipeline(kind models.MeasurementKind, ref bson.ObjectID, from, until *time.Time) mongo.Pipeline {
	group := bson.D{
		{Key: "_id", Value: "$" + kind.RefField},
		{Key: "timestamps", Value: bson.D{{Key: "$push", Value: "$timestamp"}}},
	}
	project := bson.D{
		{Key: "_id", Value: 0},
		{Key: "timestamps", Value: 1},
	}
	for _, f := range kind.FieldNames() {
		group = append(group, bson.E{Key: f, Value: bson.D{
			{Key: "$push", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$" + f, nil}}}},
		}})
		project = append(project, bson.E{Key: f, Value: bson.D{{Key: "$cond", Value: bson.D{
			{Key: "if", Value: bson.D{{Key: "$eq", Value: bson.A{
				bson.D{{Key: "$size", Value: bson.D{{Key: "$filter", Value: bson.D{
					{Key: "input", Value: "$" + f},
					{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", nil}}}},
				}}}}},
				0,
			}}}},
			{Key: "then", Value: nil},
			{Key: "else", Value: "$" + f},
		}}}})
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: PivotFilter(kind, ref, from, until)}},
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: 1}}}},
		{{Key: "$group", Value: group}},
		{{Key: "$project", Value: project}},
	}
}

// PivotRows reshapes row documents, already sorted by timestamp, into a
// series.
func PivotRows(kind models.MeasurementKind, ref bson.ObjectID, rows []bson.M) (*models.Series, error) {
	s := models.NewSeries(kind, ref)
	for _, f := range s.Fields {
		s.Columns[f] = make([]*float64, 0, len(rows))
	}
	for i, row := range rows {
		ts, err := asTime(row["timestamp"])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		s.Timestamps = append(s.Timestamps, ts)
		for _, f := range s.Fields {
			v, err := asFloat(row[f])
			if err != nil {
				return nil, fmt.Errorf("row %d field %s: %w", i, f, err)
			}
			s.Columns[f] = append(s.Columns[f], v)
		}
	}
	s.Collapse()
	return s, nil
}

// seriesFromGroup reads the single document produced by PivotPipeline.
func seriesFromGroup(kind models.MeasurementKind, ref bson.ObjectID, doc bson.M) (*models.Series, error) {
	s := models.NewSeries(kind, ref)
	timestamps, _ := doc["timestamps"].(bson.A)
	for i, raw := range timestamps {
		ts, err := asTime(raw)
		if err != nil {
			return nil, fmt.Errorf("timestamp %d: %w", i, err)
		}
		s.Timestamps = append(s.Timestamps, ts)
	}
	for _, f := range s.Fields {
		values, ok := doc[f].(bson.A)
		if !ok {
			continue
		}
		col := make([]*float64, len(values))
		for i, raw := range values {
			v, err := asFloat(raw)
			if err != nil {
				return nil, fmt.Errorf("field %s value %d: %w", f, i, err)
			}
			col[i] = v
		}
		s.Columns[f] = col
	}
	s.Collapse()
	return s, nil
}

// Pivot returns the column-oriented series of ref. A window matching no
// rows yields an empty timestamp array with every field collapsed.
func (e *Engine) Pivot(ctx context.Context, kind models.MeasurementKind, ref bson.ObjectID, from, until *time.Time) (*models.Series, error) {
	defer e.observe(ViewPivot)
	logger := common.LoggerFromContext(ctx, e.logger)
	logger.Debug("Pivoting measurements",
		zap.String("kind", kind.Name),
		zap.String("ref", ref.Hex()),
		zap.String("strategy", e.Strategy()))

	coll := e.database.Collection(kind.Collection)

	if e.native {
		cur, err := coll.Aggregate(ctx, PivotPipeline(kind, ref, from, until))
		if err != nil {
			return nil, errs.FromMongo(err)
		}
		var docs []bson.M
		if err := cur.All(ctx, &docs); err != nil {
			return nil, errs.FromMongo(err)
		}
		if len(docs) == 0 {
			return models.NewSeries(kind, ref), nil
		}
		return seriesFromGroup(kind, ref, docs[0])
	}

	cur, err := coll.Find(ctx, PivotFilter(kind, ref, from, until),
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, errs.FromMongo(err)
	}
	var rows []bson.M
	if err := cur.All(ctx, &rows); err != nil {
		return nil, errs.FromMongo(err)
	}
	return PivotRows(kind, ref, rows)
}

func asTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case bson.DateTime:
		return t.Time().UTC(), nil
	case time.Time:
		return t.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
	}
}

func asFloat(v any) (*float64, error) {
	var f float64
	switch n := v.(type) {
	case nil:
		return nil, nil
	case float64:
		f = n
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case int:
		f = float64(n)
	default:
		return nil, fmt.Errorf("unexpected numeric type %T", v)
	}
	return &f, nil
}
