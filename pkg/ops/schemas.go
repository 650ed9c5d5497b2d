package ops

import (
	"fmt"
	"time"

	z "github.com/Oudwins/zog"

	"liyu1981.xyz/energy-opdb-service/pkg/common"
	"liyu1981.xyz/energy-opdb-service/pkg/errs"
	"liyu1981.xyz/energy-opdb-service/pkg/models"
)

var required = z.Message("is required")

// enum accepts exactly the listed values of a string-backed type.
func enum[T ~string](allowed []string) *z.StringSchema[T] {
	values := common.Mapper(allowed, func(s string) T { return T(s) })
	return (&z.StringSchema[T]{}).
		Required(required).
		OneOf(values, z.Message(fmt.Sprintf("must be one of %v", allowed)))
}

func batchOf(item *z.StructSchema) *z.SliceSchema {
	return z.Slice(item).Required(z.Message("batch can not be empty"))
}

// windowOrdered rejects a window whose start lies after its end. Missing
// bounds are reported by the field schemas.
func windowOrdered(bounds func(any) (from, until time.Time)) z.BoolTFunc[any] {
	return func(val any, _ z.Ctx) bool {
		from, until := bounds(val)
		return from.IsZero() || until.IsZero() || !from.After(until)
	}
}

var windowMessage = z.Message("valid_from must not be after valid_until")

var (
	meterBatchSchema = batchOf(z.Struct(z.Shape{
		"MeterType": enum[models.MeterType](models.MeterTypes),
		"Pods": z.Slice(z.Struct(z.Shape{
			"PodType": enum[models.PODType](models.PODTypes),
		})),
	}))

	podBatchSchema = batchOf(z.Struct(z.Shape{
		"PodType": enum[models.PODType](models.PODTypes),
	}))

	assetBatchSchema = batchOf(z.Struct(z.Shape{
		"AssetType": enum[models.AssetType](models.AssetTypes),
	}))

	ecMemberBatchSchema = batchOf(z.Struct(z.Shape{
		"MemberType": enum[models.PODType](models.PODTypes),
		"Parameters": z.Struct(z.Shape{
			"SharingKeyPercentage": z.Ptr(z.Float64().
				GTE(0, z.Message("must be between 0 and 100")).
				LTE(100, z.Message("must be between 0 and 100"))),
		}),
	}))
)

var inputReferencesSchema = z.Slice(z.Struct(z.Shape{
	"CollectionName": z.String().Required(required),
}))

var forecastBatchSchema = batchOf(z.Struct(z.Shape{
	"ForecastType": enum[string](models.ForecastTypes),
	"Granularity":  enum[string](models.Granularities),
	"ValidFrom":    z.Time().Required(required),
	"ValidUntil":   z.Time().Required(required),
	"Metadata": z.Struct(z.Shape{
		"ExecutedAt":      z.Time().Required(required),
		"InputReferences": inputReferencesSchema,
	}),
}).TestFunc(windowOrdered(func(val any) (time.Time, time.Time) {
	f := val.(*models.ForecastIn)
	return f.ValidFrom, f.ValidUntil
}), windowMessage))

// forecastRefSchema checks the reference a forecast batch is stored under.
// Kinds without a catalog only take surrogate ids.
func forecastRefSchema(kind models.ForecastKind) *z.Custom[models.Reference] {
	return z.CustomFunc(func(ref *models.Reference, _ z.Ctx) bool {
		return !ref.IsZero() && (kind.Target != nil || !ref.IsExternal())
	}, z.MessageFunc(func(e *z.ZogIssue, _ z.Ctx) {
		if ref, ok := e.Value.(*models.Reference); ok && ref.IsZero() {
			e.SetMessage("is required")
			return
		}
		e.SetMessage("must be an ObjectId")
	}))
}

var runSchema = z.Struct(z.Shape{
	"ValidFrom":  z.Time().Required(required),
	"ValidUntil": z.Time().Required(required),
	"Metadata": z.Ptr(z.Struct(z.Shape{
		"ModelName":       z.String().Required(required),
		"ModelVersion":    z.String().Required(required),
		"InputReferences": inputReferencesSchema,
	})),
}).TestFunc(windowOrdered(func(val any) (time.Time, time.Time) {
	r := val.(*models.RunIn)
	return r.ValidFrom, r.ValidUntil
}), windowMessage)

var scheduleBatchSchema = batchOf(z.Struct(z.Shape{
	"AssetID": z.CustomFunc(func(ref *models.Reference, _ z.Ctx) bool {
		return !ref.IsZero()
	}, required),
	"Timestamp": z.Slice(z.Time()).Required(z.Message("can not be empty")),
	"Results": z.Slice(z.Struct(z.Shape{
		"Service": enum[string](models.ScheduleServices),
		"Scope":   enum[string](models.ScheduleScopes),
		"Schedule": z.Slice(z.Struct(z.Shape{
			"ResultsType": enum[string](models.ResultsTypes),
			"Variable":    z.String().Required(required),
		})),
	})).Required(z.Message("can not be empty")),
}).Test(z.Test[any]{Func: checkScheduleSeries}))

// checkScheduleSeries holds the rules spanning fields of one schedule: the
// time axis is strictly ascending and every series has one value per
// timestamp.
func checkScheduleSeries(val any, ctx z.Ctx) {
	s, ok := val.(*models.ScheduleIn)
	if !ok {
		return
	}
	for j := 1; j < len(s.Timestamp); j++ {
		if !s.Timestamp[j].After(s.Timestamp[j-1]) {
			ctx.AddIssue(ctx.Issue().SetMessage(
				fmt.Sprintf("timestamp must be strictly ascending (position %d)", j)))
			break
		}
	}
	for j, r := range s.Results {
		for k, series := range r.Schedule {
			if len(series.Values) != len(s.Timestamp) {
				ctx.AddIssue(ctx.Issue().SetMessage(fmt.Sprintf("results[%d].schedule[%d] has %d values for %d timestamps",
					j, k, len(series.Values), len(s.Timestamp))))
			}
		}
	}
}

var (
	runStatusSchema      = enum[models.RunStatus](models.RunStatuses)
	terminalStatusSchema = enum[models.RunStatus]([]string{
		string(models.RunStatusCompleted), string(models.RunStatusFailed), string(models.RunStatusCancelled),
	})
)

// fieldError reports the issues of a single value under its field name.
func fieldError(field string, issues z.ZogIssueList) error {
	if len(issues) == 0 {
		return nil
	}
	return errs.FromIssues(z.ZogIssueMap{field: issues})
}

func validateMeasurements(kind models.MeasurementKind, batch []models.MeasurementIn) error {
	return errs.FromIssues(batchOf(kind.RowSchema()).Validate(&batch))
}

func validateForecasts(kind models.ForecastKind, ref models.Reference, batch []models.ForecastIn) error {
	issues := forecastBatchSchema.Validate(&batch)
	if refIssues := forecastRefSchema(kind).Validate(&ref); len(refIssues) > 0 {
		if issues == nil {
			issues = z.ZogIssueMap{}
		}
		issues[kind.RefField] = refIssues
	}
	return errs.FromIssues(issues)
}

func validateRun(in models.RunIn) error {
	return errs.FromIssues(runSchema.Validate(&in))
}

func validateSchedules(batch []models.ScheduleIn) error {
	return errs.FromIssues(scheduleBatchSchema.Validate(&batch))
}

func validateMeters(batch []models.MeterIn) error {
	return errs.FromIssues(meterBatchSchema.Validate(&batch))
}

func validatePods(batch []models.PodWithMeterIn) error {
	return errs.FromIssues(podBatchSchema.Validate(&batch))
}

func validateAssets(batch []models.AssetIn) error {
	return errs.FromIssues(assetBatchSchema.Validate(&batch))
}

func validateECMembers(batch []models.ECMemberIn) error {
	return errs.FromIssues(ecMemberBatchSchema.Validate(&batch))
}
