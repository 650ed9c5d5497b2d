package ops

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"liyu1981.xyz/energy-opdb-service/pkg/common"
	"liyu1981.xyz/energy-opdb-service/pkg/errs"
	"liyu1981.xyz/energy-opdb-service/pkg/models"
	"liyu1981.xyz/energy-opdb-service/pkg/tx"
)

func optimizationLogger(ctx context.Context) *zap.Logger {
	return common.LoggerFromContext(ctx, common.GetLoggerWith(
		common.LoggerNameOpsCore,
		zap.String(common.LoggerFieldOpsCategory, common.LoggerCategoryOpsOptimization),
	))
}

func (o *OPS) createRun(ctx context.Context, in models.RunIn) (*models.OptimizationRun, error) {
	logger := optimizationLogger(ctx)

	if err := validateRun(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	run := &models.OptimizationRun{
		ID:         bson.NewObjectID(),
		ValidFrom:  in.ValidFrom.UTC(),
		ValidUntil: in.ValidUntil.UTC(),
		Status:     models.RunStatusRunning,
	}
	if in.Metadata != nil {
		md := *in.Metadata
		if md.AddedAt.IsZero() {
			md.AddedAt = now
		}
		if md.ExecutedAt.IsZero() {
			md.ExecutedAt = now
		}
		if md.SchemaVersion == 0 {
			md.SchemaVersion = 1
		}
		if md.InputReferences == nil {
			md.InputReferences = []models.InputReferences{}
		}
		run.Metadata = &md
	}

	err := o.Writer.Run(ctx, "create_run", func(ctx context.Context) error {
		_, err := o.Db.Collection(models.CollectionRuns).InsertOne(ctx, run)
		return errs.FromMongo(err)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Created optimization run", zap.String("run_id", run.ID.Hex()))
	return run, nil
}

func (o *OPS) attachSchedules(ctx context.Context, runID bson.ObjectID, batch []models.ScheduleIn) ([]models.AssetOptimizationSchedule, error) {
	logger := optimizationLogger(ctx).With(zap.String("run_id", runID.Hex()))

	if err := validateSchedules(batch); err != nil {
		return nil, err
	}

	refs := common.Mapper(batch, func(s models.ScheduleIn) models.Reference { return s.AssetID })
	schedules, err := tx.Do(ctx, o.Writer, "attach_schedules", func(ctx context.Context) ([]models.AssetOptimizationSchedule, error) {
		ok, err := o.Integrity.Exists(ctx, models.CollectionRuns, runID)
		if err != nil {
			return nil, err
		}
		if !ok {
			o.metrics().RejectedReferences.WithLabelValues(models.CollectionRuns).Inc()
			return nil, errs.NotFoundReference(string(models.EntityRun), []any{runID.Hex()})
		}
		assets, err := o.Integrity.ResolveReferences(ctx, models.AssetTarget, refs)
		if err != nil {
			return nil, err
		}

		schedules := make([]models.AssetOptimizationSchedule, len(batch))
		for i, in := range batch {
			timestamps := make([]time.Time, len(in.Timestamp))
			for j, ts := range in.Timestamp {
				timestamps[j] = ts.UTC()
			}
			schedules[i] = models.AssetOptimizationSchedule{
				ID:        bson.NewObjectID(),
				AssetRef:  assets[in.AssetID],
				RunRef:    runID,
				Timestamp: timestamps,
				Results:   in.Results,
			}
		}
		return schedules, insertAll(ctx, o.Db.Collection(models.CollectionSchedules), schedules)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Attached schedules", zap.Int("count", len(schedules)))
	return schedules, nil
}

func (o *OPS) findRun(ctx context.Context, runID bson.ObjectID) (*models.OptimizationRun, error) {
	var run models.OptimizationRun
	err := o.Db.Collection(models.CollectionRuns).FindOne(ctx, bson.D{{Key: "_id", Value: runID}}).Decode(&run)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFound(string(models.EntityRun), runID.Hex())
	}
	if err != nil {
		return nil, errs.FromMongo(err)
	}
	return &run, nil
}

// withSchedules attaches schedules at read time with one extra query for
// all runs.
func (o *OPS) withSchedules(ctx context.Context, runs []models.OptimizationRun) error {
	ids := common.Mapper(runs, func(r models.OptimizationRun) bson.ObjectID { return r.ID })
	byRun, err := o.Joins.SchedulesByRun(ctx, ids)
	if err != nil {
		return err
	}
	for i := range runs {
		runs[i].Schedules = byRun[runs[i].ID]
	}
	return nil
}

func (o *OPS) getRun(ctx context.Context, runID bson.ObjectID, includeSchedules bool) (*models.OptimizationRun, error) {
	run, err := o.findRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if includeSchedules {
		runs := []models.OptimizationRun{*run}
		if err := o.withSchedules(ctx, runs); err != nil {
			return nil, err
		}
		run = &runs[0]
	}
	return run, nil
}

func (o *OPS) runExists(ctx context.Context, runID bson.ObjectID) (bool, error) {
	return o.Integrity.Exists(ctx, models.CollectionRuns, runID)
}

// RunFilter translates a window query: runs starting at or after From and
// ending at or before Until.
func RunFilter(q models.RunQuery) bson.D {
	filter := bson.D{}
	if q.From != nil {
		filter = append(filter, bson.E{Key: "valid_from", Value: bson.D{{Key: "$gte", Value: *q.From}}})
	}
	if q.Until != nil {
		filter = append(filter, bson.E{Key: "valid_until", Value: bson.D{{Key: "$lte", Value: *q.Until}}})
	}
	if q.RunID != nil {
		filter = append(filter, bson.E{Key: "_id", Value: *q.RunID})
	}
	if q.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: q.Status})
	}
	return filter
}

func (o *OPS) getRunsByWindow(ctx context.Context, q models.RunQuery) ([]models.OptimizationRun, error) {
	if q.From != nil && q.Until != nil && q.From.After(*q.Until) {
		return nil, errs.Validation("valid_from must not be after valid_until")
	}
	if q.Status != "" {
		if err := fieldError("status", runStatusSchema.Validate(&q.Status)); err != nil {
			return nil, err
		}
	}

	runs, err := findAll[models.OptimizationRun](ctx, o.Db.Collection(models.CollectionRuns), RunFilter(q),
		bson.D{{Key: "valid_from", Value: 1}, {Key: "_id", Value: 1}})
	if err != nil {
		return nil, err
	}
	if q.IncludeSchedules && len(runs) > 0 {
		if err := o.withSchedules(ctx, runs); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// updateRunStatus moves a RUNNING run to a terminal state. The update only
// matches RUNNING runs, so two executors racing on the same run cannot
// both win.
func (o *OPS) updateRunStatus(ctx context.Context, runID bson.ObjectID, status models.RunStatus) (*models.OptimizationRun, error) {
	logger := optimizationLogger(ctx).With(zap.String("run_id", runID.Hex()))

	if err := fieldError("status", terminalStatusSchema.Validate(&status)); err != nil {
		return nil, err
	}

	run, err := tx.Do(ctx, o.Writer, "update_run_status", func(ctx context.Context) (*models.OptimizationRun, error) {
		now := time.Now().UTC()
		var run models.OptimizationRun
		err := o.Db.Collection(models.CollectionRuns).FindOneAndUpdate(ctx,
			bson.D{{Key: "_id", Value: runID}, {Key: "status", Value: models.RunStatusRunning}},
			bson.D{{Key: "$set", Value: bson.D{
				{Key: "status", Value: status},
				{Key: "status_updated_at", Value: now},
			}}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&run)
		if err == nil {
			return &run, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.FromMongo(err)
		}

		current, err := o.findRun(ctx, runID)
		if err != nil {
			return nil, err
		}
		return nil, errs.Conflict("run "+runID.Hex()+" is already "+string(current.Status), runID.Hex())
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Updated optimization run status", zap.String("status", string(status)))
	return run, nil
}

type IOptimizationImpl struct {
	ops *OPS
}

func (iop *IOptimizationImpl) CreateRun(ctx context.Context, in models.RunIn) (*models.OptimizationRun, error) {
	return iop.ops.createRun(ctx, in)
}

func (iop *IOptimizationImpl) AttachSchedules(ctx context.Context, runID bson.ObjectID, batch []models.ScheduleIn) ([]models.AssetOptimizationSchedule, error) {
	return iop.ops.attachSchedules(ctx, runID, batch)
}

func (iop *IOptimizationImpl) GetRun(ctx context.Context, runID bson.ObjectID, includeSchedules bool) (*models.OptimizationRun, error) {
	return iop.ops.getRun(ctx, runID, includeSchedules)
}

func (iop *IOptimizationImpl) RunExists(ctx context.Context, runID bson.ObjectID) (bool, error) {
	return iop.ops.runExists(ctx, runID)
}

func (iop *IOptimizationImpl) GetRunsByWindow(ctx context.Context, query models.RunQuery) ([]models.OptimizationRun, error) {
	return iop.ops.getRunsByWindow(ctx, query)
}

func (iop *IOptimizationImpl) UpdateRunStatus(ctx context.Context, runID bson.ObjectID, status models.RunStatus) (*models.OptimizationRun, error) {
	return iop.ops.updateRunStatus(ctx, runID, status)
}

func (o *OPS) GetIOptimization() IOptimization {
	return &IOptimizationImpl{ops: o}
}
