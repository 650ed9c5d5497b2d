package ops

import (
	"context"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"liyu1981.xyz/energy-opdb-service/pkg/common"
	"liyu1981.xyz/energy-opdb-service/pkg/errs"
	"liyu1981.xyz/energy-opdb-service/pkg/models"
	"liyu1981.xyz/energy-opdb-service/pkg/tx"
)

func catalogLogger(ctx context.Context) *zap.Logger {
	return common.LoggerFromContext(ctx, common.GetLoggerWith(
		common.LoggerNameOpsCore,
		zap.String(common.LoggerFieldOpsCategory, common.LoggerCategoryOpsCatalog),
	))
}

// registered returns, sorted, the external ids of ids already present in
// target.
func (o *OPS) registered(ctx context.Context, target models.CatalogTarget, ids []int) ([]int, error) {
	resolved, _, err := o.resolve(ctx, target, common.Mapper(ids, models.ExternalRef))
	if err != nil {
		return nil, err
	}
	var out []int
	for ref := range resolved {
		if ref.IsExternal() {
			out = append(out, ref.External())
		}
	}
	slices.Sort(out)
	return out, nil
}

func (o *OPS) rejectRegistered(ctx context.Context, target models.CatalogTarget, ids []int) error {
	existing, err := o.registered(ctx, target, ids)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return errs.Conflict(target.ExternalField+" already registered", anyIDs(existing)...)
	}
	return nil
}

func rejectDuplicates(field string, ids []int) error {
	if dups := common.Duplicates(ids); len(dups) > 0 {
		return errs.Conflict("duplicate "+field+" in batch", anyIDs(dups)...)
	}
	return nil
}

func (o *OPS) resolveExternal(ctx context.Context, target models.CatalogTarget, ids []int) (map[int]bson.ObjectID, error) {
	resolved, err := o.Integrity.ResolveReferences(ctx, target, common.Mapper(ids, models.ExternalRef))
	if err != nil {
		return nil, err
	}
	out := make(map[int]bson.ObjectID, len(resolved))
	for ref, id := range resolved {
		out[ref.External()] = id
	}
	return out, nil
}

func (o *OPS) addMeters(ctx context.Context, batch []models.MeterIn) (*models.MeterAddResult, error) {
	logger := catalogLogger(ctx)

	if err := validateMeters(batch); err != nil {
		return nil, err
	}
	meterIDs := common.Mapper(batch, func(m models.MeterIn) int { return m.MeterID })
	if err := rejectDuplicates("meter_id", meterIDs); err != nil {
		return nil, err
	}
	var podIDs []int
	for _, m := range batch {
		for _, pod := range m.Pods {
			podIDs = append(podIDs, pod.PodID)
		}
	}
	if err := rejectDuplicates("pod_id", podIDs); err != nil {
		return nil, err
	}

	result, err := tx.Do(ctx, o.Writer, "add_meters", func(ctx context.Context) (*models.MeterAddResult, error) {
		if err := o.rejectRegistered(ctx, models.MeterTarget, meterIDs); err != nil {
			return nil, err
		}
		if err := o.rejectRegistered(ctx, models.PODTarget, podIDs); err != nil {
			return nil, err
		}

		out := &models.MeterAddResult{Meters: []models.Meter{}, Pods: []models.POD{}}
		for _, in := range batch {
			meter := models.Meter{
				ID:         bson.NewObjectID(),
				MeterID:    in.MeterID,
				MeterType:  in.MeterType,
				MeterAlias: in.MeterAlias,
			}
			out.Meters = append(out.Meters, meter)
			for _, pod := range in.Pods {
				out.Pods = append(out.Pods, models.POD{
					ID:       bson.NewObjectID(),
					PodID:    pod.PodID,
					PodType:  pod.PodType,
					MeterRef: meter.ID,
				})
			}
		}
		if err := insertAll(ctx, o.Db.Collection(models.CollectionMeters), out.Meters); err != nil {
			return nil, err
		}
		if err := insertAll(ctx, o.Db.Collection(models.CollectionPODs), out.Pods); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Added meters", zap.Ints("meter_ids", meterIDs), zap.Int("pods", len(result.Pods)))
	return result, nil
}

func (o *OPS) addPods(ctx context.Context, batch []models.PodWithMeterIn) ([]models.POD, error) {
	logger := catalogLogger(ctx)

	if err := validatePods(batch); err != nil {
		return nil, err
	}
	podIDs := common.Mapper(batch, func(p models.PodWithMeterIn) int { return p.PodID })
	if err := rejectDuplicates("pod_id", podIDs); err != nil {
		return nil, err
	}

	pods, err := tx.Do(ctx, o.Writer, "add_pods", func(ctx context.Context) ([]models.POD, error) {
		meters, err := o.resolveExternal(ctx, models.MeterTarget,
			common.Mapper(batch, func(p models.PodWithMeterIn) int { return p.MeterID }))
		if err != nil {
			return nil, err
		}
		if err := o.rejectRegistered(ctx, models.PODTarget, podIDs); err != nil {
			return nil, err
		}

		pods := make([]models.POD, len(batch))
		for i, in := range batch {
			pods[i] = models.POD{
				ID:       bson.NewObjectID(),
				PodID:    in.PodID,
				PodType:  in.PodType,
				MeterRef: meters[in.MeterID],
			}
		}
		return pods, insertAll(ctx, o.Db.Collection(models.CollectionPODs), pods)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Added pods", zap.Ints("pod_ids", podIDs))
	return pods, nil
}

func (o *OPS) addAssets(ctx context.Context, batch []models.AssetIn) ([]models.Asset, error) {
	logger := catalogLogger(ctx)

	if err := validateAssets(batch); err != nil {
		return nil, err
	}
	assetIDs := common.Mapper(batch, func(a models.AssetIn) int { return a.AssetID })
	if err := rejectDuplicates("asset_id", assetIDs); err != nil {
		return nil, err
	}

	assets, err := tx.Do(ctx, o.Writer, "add_assets", func(ctx context.Context) ([]models.Asset, error) {
		meters, err := o.resolveExternal(ctx, models.MeterTarget,
			common.Mapper(batch, func(a models.AssetIn) int { return a.MeterID }))
		if err != nil {
			return nil, err
		}
		if err := o.rejectRegistered(ctx, models.AssetTarget, assetIDs); err != nil {
			return nil, err
		}

		assets := make([]models.Asset, len(batch))
		for i, in := range batch {
			assets[i] = models.Asset{
				ID:        bson.NewObjectID(),
				AssetID:   in.AssetID,
				AssetType: in.AssetType,
				MeterRef:  meters[in.MeterID],
			}
		}
		return assets, insertAll(ctx, o.Db.Collection(models.CollectionAssets), assets)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Added assets", zap.Ints("asset_ids", assetIDs))
	return assets, nil
}

func (o *OPS) addECMembers(ctx context.Context, ecID int, batch []models.ECMemberIn) ([]models.ECMember, error) {
	logger := catalogLogger(ctx).With(zap.Int("ec_id", ecID))

	if err := validateECMembers(batch); err != nil {
		return nil, err
	}
	podIDs := common.Mapper(batch, func(m models.ECMemberIn) int { return m.PodID })
	if err := rejectDuplicates("pod_id", podIDs); err != nil {
		return nil, err
	}

	members, err := tx.Do(ctx, o.Writer, "add_ec_members", func(ctx context.Context) ([]models.ECMember, error) {
		pods, err := o.resolveExternal(ctx, models.PODTarget, podIDs)
		if err != nil {
			return nil, err
		}

		podRefs := make([]bson.ObjectID, 0, len(pods))
		for _, id := range pods {
			podRefs = append(podRefs, id)
		}
		existing, err := findAll[models.ECMember](ctx, o.Db.Collection(models.CollectionECMembers),
			bson.D{
				{Key: "ec_id", Value: ecID},
				{Key: "pod_mongo_id", Value: bson.D{{Key: "$in", Value: podRefs}}},
			}, nil)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			var dup []int
			for podID, ref := range pods {
				if slices.ContainsFunc(existing, func(m models.ECMember) bool { return m.PodRef == ref }) {
					dup = append(dup, podID)
				}
			}
			slices.Sort(dup)
			return nil, errs.Conflict("pod already a member of the energy community", anyIDs(dup)...)
		}

		now := time.Now().UTC()
		members := make([]models.ECMember, len(batch))
		for i, in := range batch {
			ts := in.Timestamp
			if ts.IsZero() {
				ts = now
			}
			members[i] = models.ECMember{
				ID:                   bson.NewObjectID(),
				ECID:                 ecID,
				PodRef:               pods[in.PodID],
				PodType:              in.MemberType,
				SharingKeyPriority:   in.Parameters.SharingKeyPriority,
				SharingKeyPercentage: in.Parameters.SharingKeyPercentage,
				DisableProportional:  in.Parameters.DisableProportional,
				UnitSellEuroKwh:      in.Parameters.UnitSellEuroKwh,
				Timestamp:            ts,
			}
		}
		return members, insertAll(ctx, o.Db.Collection(models.CollectionECMembers), members)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Added energy community members", zap.Ints("pod_ids", podIDs))
	return members, nil
}

func (o *OPS) resolveOne(ctx context.Context, target models.CatalogTarget, externalID int) (bson.ObjectID, error) {
	resolved, _, err := o.resolve(ctx, target, []models.Reference{models.ExternalRef(externalID)})
	if err != nil {
		return bson.ObjectID{}, err
	}
	id, ok := resolved[models.ExternalRef(externalID)]
	if !ok {
		return bson.ObjectID{}, errs.NotFound(string(target.Kind), externalID)
	}
	return id, nil
}

func (o *OPS) getMeterWithPods(ctx context.Context, meterID int) (*models.MeterWithPods, error) {
	return o.Joins.MeterWithPods(ctx, meterID)
}

func (o *OPS) listMeters(ctx context.Context) ([]models.Meter, error) {
	return findAll[models.Meter](ctx, o.Db.Collection(models.CollectionMeters), nil, bson.D{{Key: "meter_id", Value: 1}})
}

func (o *OPS) listPods(ctx context.Context) ([]models.POD, error) {
	return findAll[models.POD](ctx, o.Db.Collection(models.CollectionPODs), nil, bson.D{{Key: "pod_id", Value: 1}})
}

func (o *OPS) listAssets(ctx context.Context) ([]models.Asset, error) {
	return findAll[models.Asset](ctx, o.Db.Collection(models.CollectionAssets), nil, bson.D{{Key: "asset_id", Value: 1}})
}

func (o *OPS) listECMembers(ctx context.Context, ecID int) ([]models.ECMember, error) {
	return findAll[models.ECMember](ctx, o.Db.Collection(models.CollectionECMembers),
		bson.D{{Key: "ec_id", Value: ecID}}, bson.D{{Key: "_id", Value: 1}})
}

type ICatalogImpl struct {
	ops *OPS
}

func (ic *ICatalogImpl) AddMeters(ctx context.Context, batch []models.MeterIn) (*models.MeterAddResult, error) {
	return ic.ops.addMeters(ctx, batch)
}

func (ic *ICatalogImpl) AddPods(ctx context.Context, batch []models.PodWithMeterIn) ([]models.POD, error) {
	return ic.ops.addPods(ctx, batch)
}

func (ic *ICatalogImpl) AddAssets(ctx context.Context, batch []models.AssetIn) ([]models.Asset, error) {
	return ic.ops.addAssets(ctx, batch)
}

func (ic *ICatalogImpl) AddECMembers(ctx context.Context, ecID int, batch []models.ECMemberIn) ([]models.ECMember, error) {
	return ic.ops.addECMembers(ctx, ecID, batch)
}

func (ic *ICatalogImpl) Resolve(ctx context.Context, target models.CatalogTarget, externalID int) (bson.ObjectID, error) {
	return ic.ops.resolveOne(ctx, target, externalID)
}

func (ic *ICatalogImpl) GetMeterWithPods(ctx context.Context, meterID int) (*models.MeterWithPods, error) {
	return ic.ops.getMeterWithPods(ctx, meterID)
}

func (ic *ICatalogImpl) ListMeters(ctx context.Context) ([]models.Meter, error) {
	return ic.ops.listMeters(ctx)
}

func (ic *ICatalogImpl) ListPods(ctx context.Context) ([]models.POD, error) {
	return ic.ops.listPods(ctx)
}

func (ic *ICatalogImpl) ListAssets(ctx context.Context) ([]models.Asset, error) {
	return ic.ops.listAssets(ctx)
}

func (ic *ICatalogImpl) ListECMembers(ctx context.Context, ecID int) ([]models.ECMember, error) {
	return ic.ops.listECMembers(ctx, ecID)
}

func (o *OPS) GetICatalog() ICatalog {
	return &ICatalogImpl{ops: o}
}
