package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	ScheduleServices = []string{"arbitrage", "mfrr", "afrr"}
	ScheduleScopes   = []string{"day-ahead", "intra-day"}
	ResultsTypes     = []string{"setpoints", "reserve", "metrics", "sharing_keys"}
)

type OptimizationMetadata struct {
	ModelName       string            `bson:"o_model_name" json:"o_model_name" zog:"o_model_name"`
	ModelVersion    string            `bson:"o_model_version" json:"o_model_version" zog:"o_model_version"`
	ExecutedAt      time.Time         `bson:"executed_at" json:"executed_at" zog:"executed_at"`
	AddedAt         time.Time         `bson:"added_at" json:"added_at" zog:"added_at"`
	SchemaVersion   int               `bson:"schema_version" json:"schema_version" zog:"schema_version"`
	InputReferences []InputReferences `bson:"input_references" json:"input_references" zog:"input_references"`
	Parameters      map[string]any    `bson:"parameters,omitempty" json:"parameters,omitempty" zog:"parameters"`
}

type OptimizationRun struct {
	ID              bson.ObjectID         `bson:"_id" json:"_id"`
	ValidFrom       time.Time             `bson:"valid_from" json:"valid_from"`
	ValidUntil      time.Time             `bson:"valid_until" json:"valid_until"`
	Status          RunStatus             `bson:"status" json:"status"`
	StatusUpdatedAt *time.Time            `bson:"status_updated_at,omitempty" json:"status_updated_at,omitempty"`
	Metadata        *OptimizationMetadata `bson:"metadata,omitempty" json:"metadata,omitempty"`
	// Schedules is filled at read time when requested, never stored.
	Schedules []AssetOptimizationSchedule `bson:"-" json:"schedules,omitzero"`
}

type ScheduleSeries struct {
	ResultsType string    `bson:"results_type" json:"results_type" zog:"results_type"`
	Variable    string    `bson:"variable" json:"variable" zog:"variable"`
	Unit        string    `bson:"unit" json:"unit" zog:"unit"`
	Values      []float64 `bson:"values" json:"values" zog:"values"`
}

type AssetSchedule struct {
	Service  string           `bson:"service" json:"service" zog:"service"`
	Scope    string           `bson:"scope" json:"scope" zog:"scope"`
	Schedule []ScheduleSeries `bson:"schedule" json:"schedule" zog:"schedule"`
}

type AssetOptimizationSchedule struct {
	ID        bson.ObjectID   `bson:"_id" json:"_id"`
	AssetRef  bson.ObjectID   `bson:"asset_id" json:"asset_id"`
	RunRef    bson.ObjectID   `bson:"optimization_run_id" json:"optimization_run_id"`
	Timestamp []time.Time     `bson:"timestamp" json:"timestamp"`
	Results   []AssetSchedule `bson:"results" json:"results"`
}

type RunIn struct {
	ValidFrom  time.Time             `json:"valid_from" zog:"valid_from"`
	ValidUntil time.Time             `json:"valid_until" zog:"valid_until"`
	Metadata   *OptimizationMetadata `json:"metadata,omitempty" zog:"metadata"`
}

type ScheduleIn struct {
	AssetID   Reference       `json:"asset_id" zog:"asset_id"`
	Timestamp []time.Time     `json:"timestamp" zog:"timestamp"`
	Results   []AssetSchedule `json:"results" zog:"results"`
}

type RunQuery struct {
	From             *time.Time
	Until            *time.Time
	RunID            *bson.ObjectID
	Status           RunStatus
	IncludeSchedules bool
}
