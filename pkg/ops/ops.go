// Package ops is the operation layer: catalog registration, reference
// integrity, measurement and forecast ingestion, and optimization runs.
// Every multi-document write runs through a tx.Writer and every error
// leaving the package is an *errs.Error.
package ops

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"liyu1981.xyz/energy-opdb-service/pkg/aggregate"
	"liyu1981.xyz/energy-opdb-service/pkg/db"
	"liyu1981.xyz/energy-opdb-service/pkg/metrics"
	"liyu1981.xyz/energy-opdb-service/pkg/models"
	"liyu1981.xyz/energy-opdb-service/pkg/tx"
)

//go:generate mockgen -source=ops.go -destination=mocks/mocks.go -package=mocks

type ICatalog interface {
	AddMeters(ctx context.Context, batch []models.MeterIn) (*models.MeterAddResult, error)
	AddPods(ctx context.Context, batch []models.PodWithMeterIn) ([]models.POD, error)
	AddAssets(ctx context.Context, batch []models.AssetIn) ([]models.Asset, error)
	AddECMembers(ctx context.Context, ecID int, batch []models.ECMemberIn) ([]models.ECMember, error)
	Resolve(ctx context.Context, target models.CatalogTarget, externalID int) (bson.ObjectID, error)
	GetMeterWithPods(ctx context.Context, meterID int) (*models.MeterWithPods, error)
	ListMeters(ctx context.Context) ([]models.Meter, error)
	ListPods(ctx context.Context) ([]models.POD, error)
	ListAssets(ctx context.Context) ([]models.Asset, error)
	ListECMembers(ctx context.Context, ecID int) ([]models.ECMember, error)
}

type IIntegrity interface {
	MissingReferences(ctx context.Context, target models.CatalogTarget, refs []models.Reference) ([]models.Reference, error)
	ResolveReferences(ctx context.Context, target models.CatalogTarget, refs []models.Reference) (map[models.Reference]bson.ObjectID, error)
	Exists(ctx context.Context, collection string, id bson.ObjectID) (bool, error)
}

type IMeasurement interface {
	InjectMeasurements(ctx context.Context, kind string, batch []models.MeasurementIn) (int, error)
	GetMeasurements(ctx context.Context, kind string, query models.MeasurementQuery) (*models.Series, error)
}

type IForecast interface {
	InjectForecasts(ctx context.Context, kind string, ref models.Reference, batch []models.ForecastIn) ([]models.Forecast, error)
	GetForecasts(ctx context.Context, kind string, ref models.Reference, query models.ForecastQuery) ([]models.Forecast, error)
}

type IOptimization interface {
	CreateRun(ctx context.Context, in models.RunIn) (*models.OptimizationRun, error)
	AttachSchedules(ctx context.Context, runID bson.ObjectID, batch []models.ScheduleIn) ([]models.AssetOptimizationSchedule, error)
	GetRun(ctx context.Context, runID bson.ObjectID, includeSchedules bool) (*models.OptimizationRun, error)
	RunExists(ctx context.Context, runID bson.ObjectID) (bool, error)
	GetRunsByWindow(ctx context.Context, query models.RunQuery) ([]models.OptimizationRun, error)
	UpdateRunStatus(ctx context.Context, runID bson.ObjectID, status models.RunStatus) (*models.OptimizationRun, error)
}

type OPS struct {
	Db      *db.DB
	Writer  tx.Writer
	Joins   *aggregate.Engine
	Metrics *metrics.Metrics

	Catalog      ICatalog
	Integrity    IIntegrity
	Measurement  IMeasurement
	Forecast     IForecast
	Optimization IOptimization
}

type ServiceOpts struct {
	Catalog      ICatalog
	Integrity    IIntegrity
	Measurement  IMeasurement
	Forecast     IForecast
	Optimization IOptimization
}

// New wires the default services over d.
func New(d *db.DB) *OPS {
	m := metrics.Default()
	o := &OPS{
		Db:      d,
		Writer:  tx.NewWriter(d.Client, d.Options.TxMaxAttempts, m),
		Joins:   aggregate.NewEngine(d.Database, d.Capabilities, m),
		Metrics: m,
	}
	return o.WithDefaultServices()
}

func (o *OPS) WithDefaultServices() *OPS {
	return o.WithServices(ServiceOpts{
		Catalog:      o.GetICatalog(),
		Integrity:    o.GetIIntegrity(),
		Measurement:  o.GetIMeasurement(),
		Forecast:     o.GetIForecast(),
		Optimization: o.GetIOptimization(),
	})
}

func (o *OPS) WithServices(opts ServiceOpts) *OPS {
	if opts.Catalog != nil {
		o.Catalog = opts.Catalog
	}
	if opts.Integrity != nil {
		o.Integrity = opts.Integrity
	}
	if opts.Measurement != nil {
		o.Measurement = opts.Measurement
	}
	if opts.Forecast != nil {
		o.Forecast = opts.Forecast
	}
	if opts.Optimization != nil {
		o.Optimization = opts.Optimization
	}
	return o
}

func (o *OPS) metrics() *metrics.Metrics {
	if o.Metrics == nil {
		return metrics.Default()
	}
	return o.Metrics
}
