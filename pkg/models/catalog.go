package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type EntityKind string

const (
	EntityMeter    EntityKind = "meter"
	EntityPOD      EntityKind = "pod"
	EntityAsset    EntityKind = "asset"
	EntityECMember EntityKind = "ec_member"
	EntityRun      EntityKind = "optimization_run"
	EntitySchedule EntityKind = "asset_optimization_schedule"
)

const (
	CollectionMeters    = "meter_catalog"
	CollectionPODs      = "pod_catalog"
	CollectionAssets    = "assets_catalog"
	CollectionECMembers = "ec_members_catalog"
	CollectionRuns      = "optimization_runs"
	CollectionSchedules = "asset_optimization_schedules"
)

// CatalogTarget tells the registry where an entity kind lives and which
// field holds its external id.
type CatalogTarget struct {
	Kind          EntityKind
	Collection    string
	ExternalField string
	// AssetType narrows asset resolution to one asset type when set.
	AssetType AssetType
}

var (
	MeterTarget = CatalogTarget{Kind: EntityMeter, Collection: CollectionMeters, ExternalField: "meter_id"}
	PODTarget   = CatalogTarget{Kind: EntityPOD, Collection: CollectionPODs, ExternalField: "pod_id"}
	AssetTarget = CatalogTarget{Kind: EntityAsset, Collection: CollectionAssets, ExternalField: "asset_id"}
)

func (t CatalogTarget) WithAssetType(assetType AssetType) CatalogTarget {
	t.AssetType = assetType
	return t
}

// Filter returns the extra predicates a target applies to every lookup.
func (t CatalogTarget) Filter() bson.D {
	if t.AssetType == "" {
		return bson.D{}
	}
	return bson.D{{Key: "asset_type", Value: t.AssetType}}
}

type Meter struct {
	ID         bson.ObjectID `bson:"_id" json:"_id"`
	MeterID    int           `bson:"meter_id" json:"meter_id"`
	MeterType  MeterType     `bson:"meter_type" json:"meter_type"`
	MeterAlias *string       `bson:"meter_alias,omitempty" json:"meter_alias,omitempty"`
}

type POD struct {
	ID       bson.ObjectID `bson:"_id" json:"_id"`
	PodID    int           `bson:"pod_id" json:"pod_id"`
	PodType  PODType       `bson:"pod_type" json:"pod_type"`
	MeterRef bson.ObjectID `bson:"meter_mongo_id" json:"meter_mongo_id"`
}

type Asset struct {
	ID        bson.ObjectID `bson:"_id" json:"_id"`
	AssetID   int           `bson:"asset_id" json:"asset_id"`
	AssetType AssetType     `bson:"asset_type" json:"asset_type"`
	MeterRef  bson.ObjectID `bson:"meter_mongo_id" json:"meter_mongo_id"`
}

type ECMember struct {
	ID                   bson.ObjectID `bson:"_id" json:"_id"`
	ECID                 int           `bson:"ec_id" json:"ec_id"`
	PodRef               bson.ObjectID `bson:"pod_mongo_id" json:"pod_mongo_id"`
	PodType              PODType       `bson:"pod_type" json:"pod_type"`
	SharingKeyPriority   *int          `bson:"sharing_key_priority,omitempty" json:"sharing_key_priority,omitempty"`
	SharingKeyPercentage *float64      `bson:"sharing_key_percentage,omitempty" json:"sharing_key_percentage,omitempty"`
	DisableProportional  *bool         `bson:"disable_proportional,omitempty" json:"disable_proportional,omitempty"`
	UnitSellEuroKwh      *float64      `bson:"unit_sell_euro_kwh,omitempty" json:"unit_sell_euro_kwh,omitempty"`
	Timestamp            time.Time     `bson:"timestamp" json:"timestamp"`
}

// MeterWithPods is the read-time join of a meter and the PODs it owns.
type MeterWithPods struct {
	Meter Meter `json:"meter"`
	Pods  []POD `json:"pods"`
}

type PodIn struct {
	PodID   int     `json:"pod_id" zog:"pod_id"`
	PodType PODType `json:"pod_type" zog:"pod_type"`
}

type MeterIn struct {
	MeterID    int       `json:"meter_id" zog:"meter_id"`
	MeterType  MeterType `json:"meter_type" zog:"meter_type"`
	MeterAlias *string   `json:"meter_alias,omitempty" zog:"meter_alias"`
	Pods       []PodIn   `json:"pods,omitempty" zog:"pods"`
}

type PodWithMeterIn struct {
	PodID   int     `json:"pod_id" zog:"pod_id"`
	PodType PODType `json:"pod_type" zog:"pod_type"`
	MeterID int     `json:"meter_id" zog:"meter_id"`
}

type AssetIn struct {
	AssetID   int       `json:"asset_id" zog:"asset_id"`
	AssetType AssetType `json:"asset_type" zog:"asset_type"`
	MeterID   int       `json:"meter_id" zog:"meter_id"`
}

type ECMemberParameters struct {
	SharingKeyPriority   *int     `json:"sharing_key_priority,omitempty" zog:"sharing_key_priority"`
	SharingKeyPercentage *float64 `json:"sharing_key_percentage,omitempty" zog:"sharing_key_percentage"`
	DisableProportional  *bool    `json:"disable_proportional,omitempty" zog:"disable_proportional"`
	UnitSellEuroKwh      *float64 `json:"unit_sell_euro_kwh,omitempty" zog:"unit_sell_euro_kwh"`
}

type ECMemberIn struct {
	PodID      int                `json:"pod_id" zog:"pod_id"`
	MemberType PODType            `json:"member_type" zog:"member_type"`
	Parameters ECMemberParameters `json:"parameters" zog:"parameters"`
	Timestamp  time.Time          `json:"timestamp" zog:"timestamp"`
}

// MeterAddResult is what addMeters returns: the meters and the PODs that
// were declared inline with them.
type MeterAddResult struct {
	Meters []Meter `json:"meters"`
	Pods   []POD   `json:"pods"`
}
