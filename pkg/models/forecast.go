package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	CollectionAssetForecasts  = "asset_forecasts"
	CollectionPODForecasts    = "pod_forecasts"
	CollectionMarketForecasts = "market_forecasts"
)

var (
	ForecastTypes = []string{"demand", "production", "weather", "market"}
	Granularities = []string{"15min", "1h"}
)

// ForecastKind describes one forecast collection. Target is nil for kinds
// whose reference has no catalog to resolve against.
type ForecastKind struct {
	Name       string
	Collection string
	RefField   string
	Target     *CatalogTarget
}

var ForecastKinds = map[string]ForecastKind{
	"asset":  {Name: "asset", Collection: CollectionAssetForecasts, RefField: "asset_id", Target: &AssetTarget},
	"pod":    {Name: "pod", Collection: CollectionPODForecasts, RefField: "pod_id", Target: &PODTarget},
	"market": {Name: "market", Collection: CollectionMarketForecasts, RefField: "market_id"},
}

func LookupForecastKind(name string) (ForecastKind, bool) {
	k, ok := ForecastKinds[name]
	return k, ok
}

type InputReferences struct {
	DatabaseName   *string         `bson:"database_name,omitempty" json:"database_name,omitempty" zog:"database_name"`
	CollectionName string          `bson:"collection_name" json:"collection_name" zog:"collection_name"`
	InputRefs      []bson.ObjectID `bson:"input_refs" json:"input_refs" zog:"input_refs"`
}

type ForecastValue struct {
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Value     float64   `bson:"value" json:"value"`
}

type ForecastMetadata struct {
	AddedAt         time.Time         `bson:"added_at" json:"added_at" zog:"added_at"`
	ExecutedAt      time.Time         `bson:"executed_at" json:"executed_at" zog:"executed_at"`
	SchemaVersion   int               `bson:"schema_version" json:"schema_version" zog:"schema_version"`
	ModelID         int               `bson:"f_model_id" json:"f_model_id" zog:"f_model_id"`
	ModelName       *string           `bson:"f_model_name,omitempty" json:"f_model_name,omitempty" zog:"f_model_name"`
	InputReferences []InputReferences `bson:"input_references" json:"input_references" zog:"input_references"`
	Parameters      map[string]any    `bson:"parameters,omitempty" json:"parameters,omitempty" zog:"parameters"`
}

// Forecast is stored in the collection of its kind. Exactly one of the
// reference fields is set.
type Forecast struct {
	ID             bson.ObjectID    `bson:"_id" json:"_id"`
	AssetRef       *bson.ObjectID   `bson:"asset_id,omitempty" json:"asset_id,omitempty"`
	PodRef         *bson.ObjectID   `bson:"pod_id,omitempty" json:"pod_id,omitempty"`
	MarketRef      *bson.ObjectID   `bson:"market_id,omitempty" json:"market_id,omitempty"`
	ForecastType   string           `bson:"forecast_type" json:"forecast_type"`
	Granularity    string           `bson:"granularity" json:"granularity"`
	ValidFrom      time.Time        `bson:"valid_from" json:"valid_from"`
	ValidUntil     time.Time        `bson:"valid_until" json:"valid_until"`
	ForecastValues []ForecastValue  `bson:"forecast_values" json:"forecast_values"`
	Metadata       ForecastMetadata `bson:"metadata" json:"metadata"`
}

// SetRef stores ref in the field the kind keys its collection by.
func (k ForecastKind) SetRef(f *Forecast, ref bson.ObjectID) {
	switch k.RefField {
	case "asset_id":
		f.AssetRef = &ref
	case "pod_id":
		f.PodRef = &ref
	default:
		f.MarketRef = &ref
	}
}

type ForecastIn struct {
	ForecastType   string           `json:"forecast_type" zog:"forecast_type"`
	Granularity    string           `json:"granularity" zog:"granularity"`
	ValidFrom      time.Time        `json:"valid_from" zog:"valid_from"`
	ValidUntil     time.Time        `json:"valid_until" zog:"valid_until"`
	ForecastValues []ForecastValue  `json:"forecast_values" zog:"forecast_values"`
	Metadata       ForecastMetadata `json:"metadata" zog:"metadata"`
}

type ForecastQuery struct {
	ValidFrom  *time.Time
	ForecastID *bson.ObjectID
}
