package errs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	z "github.com/Oudwins/zog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func rawKeyValue(t *testing.T, key string, value any) bson.Raw {
	t.Helper()
	raw, err := bson.Marshal(bson.D{
		{Key: "code", Value: 11000},
		{Key: "keyValue", Value: bson.D{{Key: key, Value: value}}},
	})
	require.NoError(t, err)
	return raw
}

func TestNotFoundReferenceListsIDs(t *testing.T) {
	err := NotFoundReference("assets_catalog", []any{7, 999})

	assert.Equal(t, KindNotFoundReference, KindOf(err))
	assert.Equal(t, []any{7, 999}, IDsOf(err))
	assert.Contains(t, err.Error(), "[7, 999]")
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestKindOfUnclassifiedIsInfrastructure(t *testing.T) {
	assert.Equal(t, KindInfrastructure, KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.False(t, Is(nil, KindConflict))
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		KindNotFoundReference:  http.StatusBadRequest,
		KindValidation:         http.StatusBadRequest,
		KindNotFound:           http.StatusNotFound,
		KindConflict:           http.StatusConflict,
		KindBulkPartialFailure: http.StatusUnprocessableEntity,
		KindInfrastructure:     http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, HTTPStatus(New(kind, "x")), string(kind))
	}
}

func TestWrappedErrorKeepsKind(t *testing.T) {
	err := fmt.Errorf("while attaching: %w", NotFound("optimization run", "abc"))
	assert.True(t, Is(err, KindNotFound))
	assert.Equal(t, []any{"abc"}, IDsOf(err))
}

func TestToBodyHidesInfrastructureDetail(t *testing.T) {
	body := ToBody(Infrastructure(errors.New("connection refused 10.0.0.3:27017")))
	assert.Equal(t, KindInfrastructure, body.Kind)
	assert.NotContains(t, body.Message, "10.0.0.3")

	body = ToBody(errors.New("plain"))
	assert.Equal(t, KindInfrastructure, body.Kind)

	body = ToBody(Conflict("duplicate", 1))
	assert.Equal(t, KindConflict, body.Kind)
	assert.Equal(t, []any{1}, body.IDs)
}

func TestFromMongoPassesClassifiedErrorsThrough(t *testing.T) {
	in := Validation("bad %s", "shape")
	assert.Same(t, in, FromMongo(in))
	assert.NoError(t, FromMongo(nil))
}

func TestFromMongoDuplicateKeyIsConflict(t *testing.T) {
	err := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: operation.meter_catalog index: meter_id_1",
			Raw:     rawKeyValue(t, "meter_id", 1),
		}},
	}

	classified := FromMongo(err)
	assert.Equal(t, KindConflict, KindOf(classified))
	assert.Equal(t, []any{1}, IDsOf(classified))
	assert.True(t, errors.As(classified, new(mongo.WriteException)))
}

func TestFromMongoDuplicateKeyMatchesPreCheckShape(t *testing.T) {
	raced := FromMongo(mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Index: 0, Code: 11000, Message: "dup", Raw: rawKeyValue(t, "meter_id", int64(1))}},
	})
	checked := Conflict("meter_id already registered", 1)
	assert.Equal(t, IDsOf(checked), IDsOf(raced))

	raw, err := bson.Marshal(bson.D{
		{Key: "code", Value: 11000},
		{Key: "keyValue", Value: bson.D{{Key: "asset_id", Value: 7}, {Key: "timestamp", Value: "t0"}}},
	})
	require.NoError(t, err)
	compound := FromMongo(mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Index: 0, Code: 11000, Message: "dup", Raw: raw}},
	})
	assert.Equal(t, []any{"asset_id=7,timestamp=t0"}, IDsOf(compound))
}

func TestFromMongoBulkAllDuplicatesIsConflict(t *testing.T) {
	id := bson.NewObjectID()
	err := mongo.BulkWriteException{
		WriteErrors: []mongo.BulkWriteError{
			{WriteError: mongo.WriteError{Index: 1, Code: 11000, Message: "dup", Raw: rawKeyValue(t, "asset_id", id)}},
			{WriteError: mongo.WriteError{Index: 2, Code: 11000, Message: "dup", Raw: rawKeyValue(t, "asset_id", id)}},
		},
	}

	classified := FromMongo(err)
	assert.Equal(t, KindConflict, KindOf(classified))
	assert.Equal(t, []any{id.Hex(), id.Hex()}, IDsOf(classified))
}

func TestFromMongoBulkMixedIsPartialFailure(t *testing.T) {
	err := mongo.BulkWriteException{
		WriteErrors: []mongo.BulkWriteError{
			{WriteError: mongo.WriteError{Index: 0, Code: 11000, Message: "dup"}},
			{WriteError: mongo.WriteError{Index: 3, Code: 121, Message: "Document failed validation"}},
		},
	}

	classified := FromMongo(err)
	assert.Equal(t, KindBulkPartialFailure, KindOf(classified))
	assert.Equal(t, []any{0, 3}, IDsOf(classified))
	assert.Contains(t, classified.Error(), "item 0: dup")
	assert.Contains(t, classified.Error(), "item 3: document failed validation")
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(classified))
}

func TestFromIssuesListsEveryProblemByPath(t *testing.T) {
	type row struct {
		Name string `zog:"name"`
		Size int    `zog:"size"`
	}
	schema := z.Slice(z.Struct(z.Shape{
		"Name": z.String().Required(z.Message("is required")),
		"Size": z.Int().GTE(1, z.Message("must be positive")),
	})).Required(z.Message("batch can not be empty"))

	assert.NoError(t, FromIssues(nil))

	var empty []row
	err := FromIssues(schema.Validate(&empty))
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "batch can not be empty", ToBody(err).Message)

	rows := []row{{Name: "a", Size: 1}, {Size: -1}}
	err = FromIssues(schema.Validate(&rows))
	assert.Equal(t, "[1].name: is required; [1].size: must be positive", ToBody(err).Message)
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestFromMongoContextErrors(t *testing.T) {
	classified := FromMongo(context.DeadlineExceeded)
	assert.Equal(t, KindInfrastructure, KindOf(classified))
	assert.False(t, IsTransient(classified))
}

func TestFromMongoNetworkErrorIsTransient(t *testing.T) {
	err := mongo.CommandError{Code: 91, Message: "connection reset", Labels: []string{"NetworkError"}}

	classified := FromMongo(err)
	assert.Equal(t, KindInfrastructure, KindOf(classified))
	assert.True(t, IsTransient(classified))
}

func TestFromMongoUnknownIsInfrastructure(t *testing.T) {
	classified := FromMongo(errors.New("server selection error"))
	assert.Equal(t, KindInfrastructure, KindOf(classified))
	assert.False(t, IsTransient(classified))
}
