package models

import (
	"bytes"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Series is the column-oriented view of a measurement time series: one
// ascending timestamp array and one array per field, all the same length.
// A field whose values are all absent has a nil column and is rendered as
// a single null.
type Series struct {
	RefField   string
	Ref        bson.ObjectID
	Timestamps []time.Time
	Fields     []string
	Columns    map[string][]*float64
}

// NewSeries returns an empty series with every field collapsed.
func NewSeries(kind MeasurementKind, ref bson.ObjectID) *Series {
	return &Series{
		RefField:   kind.RefField,
		Ref:        ref,
		Timestamps: []time.Time{},
		Fields:     kind.FieldNames(),
		Columns:    map[string][]*float64{},
	}
}

// Column returns the values of a field, nil when the field collapsed.
func (s *Series) Column(field string) []*float64 {
	return s.Columns[field]
}

// Collapse drops every column whose values are all nil.
func (s *Series) Collapse() {
	for _, f := range s.Fields {
		col := s.Columns[f]
		empty := true
		for _, v := range col {
			if v != nil {
				empty = false
				break
			}
		}
		if empty {
			delete(s.Columns, f)
		}
	}
}

// MarshalJSON keeps the key order stable: the reference, the timestamps,
// then the fields in declaration order.
func (s *Series) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeMember(&buf, s.RefField, s.Ref.Hex()); err != nil {
		return nil, err
	}
	buf.WriteByte(',')
	timestamps := s.Timestamps
	if timestamps == nil {
		timestamps = []time.Time{}
	}
	if err := writeMember(&buf, "timestamps", timestamps); err != nil {
		return nil, err
	}
	for _, f := range s.Fields {
		buf.WriteByte(',')
		var value any
		if col, ok := s.Columns[f]; ok && col != nil {
			value = col
		}
		if err := writeMember(&buf, f, value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}
