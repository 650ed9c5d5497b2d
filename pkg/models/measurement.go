package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"time"

	z "github.com/Oudwins/zog"
)

type MeasurementField struct {
	Name     string
	Required bool
}

// MeasurementKind describes one measurement collection: which catalog its
// reference resolves against and which numeric fields a row carries. Every
// kind shares the same ingestion and pivot code.
type MeasurementKind struct {
	Name       string
	Collection string
	RefField   string
	Target     CatalogTarget
	Fields     []MeasurementField
}

func (k MeasurementKind) FieldNames() []string {
	names := make([]string, len(k.Fields))
	for i, f := range k.Fields {
		names[i] = f.Name
	}
	return names
}

func (k MeasurementKind) field(name string) (MeasurementField, bool) {
	for _, f := range k.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return MeasurementField{}, false
}

var exportedPowerOnly = []MeasurementField{{Name: "exported_power", Required: true}}

var MeasurementKinds = map[string]MeasurementKind{
	"storage": {
		Name:       "storage",
		Collection: "bess_measurements",
		RefField:   "asset_id",
		Target:     AssetTarget.WithAssetType(AssetTypeBESS),
		Fields: []MeasurementField{
			{Name: "ch_p_u"},
			{Name: "dis_p_u"},
			{Name: "ch_p_d"},
			{Name: "dis_p_d"},
			{Name: "p_from_vpp"},
			{Name: "p_to_vpp"},
			{Name: "imported_power", Required: true},
			{Name: "exported_power", Required: true},
			{Name: "degradation_cal"},
			{Name: "degradation_cyc"},
			{Name: "soc", Required: true},
		},
	},
	"solar": {
		Name:       "solar",
		Collection: "pvpp_measurements",
		RefField:   "asset_id",
		Target:     AssetTarget.WithAssetType(AssetTypePVPP),
		Fields:     exportedPowerOnly,
	},
	"wind": {
		Name:       "wind",
		Collection: "wpp_measurements",
		RefField:   "asset_id",
		Target:     AssetTarget.WithAssetType(AssetTypeWPP),
		Fields:     exportedPowerOnly,
	},
	"hydro": {
		Name:       "hydro",
		Collection: "hydro_measurements",
		RefField:   "asset_id",
		Target:     AssetTarget.WithAssetType(AssetTypeHydro),
		Fields:     exportedPowerOnly,
	},
	"pod": {
		Name:       "pod",
		Collection: "pod_measurements",
		RefField:   "pod_id",
		Target:     PODTarget,
		Fields: []MeasurementField{
			{Name: "surplus", Required: true},
			{Name: "consumption", Required: true},
		},
	},
}

func MeasurementKindNames() []string {
	names := make([]string, 0, len(MeasurementKinds))
	for name := range MeasurementKinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func LookupMeasurementKind(name string) (MeasurementKind, bool) {
	k, ok := MeasurementKinds[name]
	return k, ok
}

// MeasurementIn is one row of an ingestion batch. The reference is read
// from either "asset_id" or "pod_id"; every other key except "timestamp" is
// a measured value.
type MeasurementIn struct {
	RefKey    string
	Ref       Reference
	Timestamp time.Time `zog:"timestamp"`
	Values    map[string]*float64
}

func (m *MeasurementIn) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("measurement must be an object")
	}

	out := MeasurementIn{Values: map[string]*float64{}}
	for key, value := range raw {
		switch key {
		case "asset_id", "pod_id":
			if out.RefKey != "" {
				return fmt.Errorf("measurement can not carry both asset_id and pod_id")
			}
			out.RefKey = key
			if err := json.Unmarshal(value, &out.Ref); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		case "timestamp":
			if err := json.Unmarshal(value, &out.Timestamp); err != nil {
				return fmt.Errorf("timestamp: %w", err)
			}
		default:
			var v *float64
			if err := json.Unmarshal(value, &v); err != nil {
				return fmt.Errorf("%s must be a number or null", key)
			}
			out.Values[key] = v
		}
	}
	*m = out
	return nil
}

func (m MeasurementIn) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(m.Values)+2)
	for k, v := range m.Values {
		obj[k] = v
	}
	if m.RefKey != "" {
		obj[m.RefKey] = m.Ref
	}
	obj["timestamp"] = m.Timestamp
	return json.Marshal(obj)
}

// RowSchema checks one ingestion row against the kind's field set. Every
// problem of a row is reported, not just the first.
func (k MeasurementKind) RowSchema() *z.StructSchema {
	return z.Struct(z.Shape{
		"Timestamp": z.Time().Required(z.Message("is required")),
	}).Test(z.Test[any]{Func: k.checkRow})
}

func (k MeasurementKind) checkRow(val any, ctx z.Ctx) {
	m, ok := val.(*MeasurementIn)
	if !ok {
		return
	}
	switch {
	case m.RefKey == "":
		ctx.AddIssue(ctx.Issue().SetMessage(k.RefField + " is required"))
	case m.RefKey != k.RefField:
		ctx.AddIssue(ctx.Issue().SetMessage(
			fmt.Sprintf("%s measurements reference %s, got %s", k.Name, k.RefField, m.RefKey)))
	}
	for _, f := range k.Fields {
		if f.Required && m.Values[f.Name] == nil {
			ctx.AddIssue(ctx.Issue().SetMessage(f.Name + " is required"))
		}
	}
	var unknown []string
	for name := range m.Values {
		if _, ok := k.field(name); !ok {
			unknown = append(unknown, name)
		}
	}
	slices.Sort(unknown)
	for _, name := range unknown {
		ctx.AddIssue(ctx.Issue().SetMessage(fmt.Sprintf("unknown field %s for %s measurements", name, k.Name)))
	}
}

type MeasurementQuery struct {
	Ref   Reference
	From  *time.Time
	Until *time.Time
}
