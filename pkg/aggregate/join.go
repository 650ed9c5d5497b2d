package aggregate

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

const (
	ViewMeterPods    = "meter_pods"
	ViewRunSchedules = "run_schedules"
)

type meterWithPodsDoc struct {
	models.Meter `bson:",inline"`
	Pods         []models.POD `bson:"pods"`
}

// MeterPodsPipeline correlates PODs to the meter with the given external id.
func MeterPodsPipeline(meterID int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "meter_id", Value: meterID}}}},
		{{Key: "$limit", Value: 1}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: models.CollectionPODs},
			{Key: "let", Value: bson.D{{Key: "meterId", Value: "$_id"}}},
			{Key: "pipeline", Value: mongo.Pipeline{
				{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{
					{Key: "$eq", Value: bson.A{"$meter_mongo_id", "$$meterId"}},
				}}}}},
				{{Key: "$sort", Value: bson.D{{Key: "pod_id", Value: 1}}}},
			}},
			{Key: "as", Value: "pods"},
		}}},
	}
}

// JoinMeterPods is the shared reshaping step of both strategies: PODs
// ordered by external id, never a nil slice.
func JoinMeterPods(meter models.Meter, pods []models.POD) *models.MeterWithPods {
	out := make([]models.POD, len(pods))
	copy(out, pods)
	slices.SortFunc(out, func(a, b models.POD) int { return a.PodID - b.PodID })
	return &models.MeterWithPods{Meter: meter, Pods: out}
}

// MeterWithPods returns the meter with external id meterID and exactly the
// PODs referencing its surrogate id.
func (e *Engine) MeterWithPods(ctx context.Context, meterID int) (*models.MeterWithPods, error) {
	defer e.observe(ViewMeterPods)
	logger := common.LoggerFromContext(ctx, e.logger)
	logger.Debug("Joining meter with pods", zap.Int("meter_id", meterID), zap.String("strategy", e.Strategy()))

	if e.native {
		cur, err := e.database.Collection(models.CollectionMeters).Aggregate(ctx, MeterPodsPipeline(meterID))
		if err != nil {
			return nil, errs.FromMongo(err)
		}
		var docs []meterWithPodsDoc
		if err := cur.All(ctx, &docs); err != nil {
			return nil, errs.FromMongo(err)
		}
		if len(docs) == 0 {
			return nil, errs.NotFound("meter", meterID)
		}
		return JoinMeterPods(docs[0].Meter, docs[0].Pods), nil
	}

	var meter models.Meter
	err := e.database.Collection(models.CollectionMeters).
		FindOne(ctx, bson.D{{Key: "meter_id", Value: meterID}}).
		Decode(&meter)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFound("meter", meterID)
	}
	if err != nil {
		return nil, errs.FromMongo(err)
	}

	cur, err := e.database.Collection(models.CollectionPODs).Find(ctx,
		bson.D{{Key: "meter_mongo_id", Value: meter.ID}},
		options.Find().SetSort(bson.D{{Key: "pod_id", Value: 1}}))
	if err != nil {
		return nil, errs.FromMongo(err)
	}
	var pods []models.POD
	if err := cur.All(ctx, &pods); err != nil {
		return nil, errs.FromMongo(err)
	}
	return JoinMeterPods(meter, pods), nil
}

// SchedulesByRun fetches the schedules of every run in runIDs with one
// query and groups them by run. Runs without schedules map to an empty
// slice.
func (e *Engine) SchedulesByRun(ctx context.Context, runIDs []bson.ObjectID) (map[bson.ObjectID][]models.AssetOptimizationSchedule, error) {
	defer e.metrics.JoinStrategy.WithLabelValues(ViewRunSchedules, StrategyFallback).Inc()

	out := make(map[bson.ObjectID][]models.AssetOptimizationSchedule, len(runIDs))
	for _, id := range runIDs {
		out[id] = []models.AssetOptimizationSchedule{}
	}
	if len(runIDs) == 0 {
		return out, nil
	}

	cur, err := e.database.Collection(models.CollectionSchedules).Find(ctx,
		bson.D{{Key: "optimization_run_id", Value: bson.D{{Key: "$in", Value: runIDs}}}},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errs.FromMongo(err)
	}
	var schedules []models.AssetOptimizationSchedule
	if err := cur.All(ctx, &schedules); err != nil {
		return nil, errs.FromMongo(err)
	}
	for _, s := range schedules {
		out[s.RunRef] = append(out[s.RunRef], s)
	}
	return out, nil
}
