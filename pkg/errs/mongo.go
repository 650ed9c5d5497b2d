package errs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const (
	codeDuplicateKey         = 11000
	codeDuplicateKeyLegacy   = 11001
	codeDuplicateKeyUpdate   = 12582
	codeDocumentFailedSchema = 121
)

func isDuplicateCode(code int) bool {
	return code == codeDuplicateKey || code == codeDuplicateKeyLegacy || code == codeDuplicateKeyUpdate
}

// FromMongo classifies a driver error into the taxonomy. Errors that are
// already classified pass through untouched so units of work can return
// their own *Error values from inside a transaction.
func FromMongo(err error) error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) && len(bwe.WriteErrors) > 0 {
		writeErrors := make([]mongo.WriteError, len(bwe.WriteErrors))
		for i, we := range bwe.WriteErrors {
			writeErrors[i] = we.WriteError
		}
		return fromWriteErrors(writeErrors, err)
	}

	var we mongo.WriteException
	if errors.As(err, &we) && len(we.WriteErrors) > 0 {
		return fromWriteErrors(we.WriteErrors, err)
	}

	if mongo.IsDuplicateKeyError(err) {
		return &Error{Kind: KindConflict, Message: "duplicate key error", Err: err}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindInfrastructure, Message: "operation cancelled or timed out", Err: err}
	}

	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return &Error{Kind: KindInfrastructure, Message: "storage engine unreachable", Err: err, transient: true}
	}

	return Infrastructure(err)
}

// fromWriteErrors turns per-item engine failures into one error. A batch
// whose failures are all unique-index violations is a Conflict; anything
// else is a BulkPartialFailure enumerating every failing item.
func fromWriteErrors(writeErrors []mongo.WriteError, cause error) *Error {
	allDuplicates := true
	var ids []any
	var details []string
	for _, we := range writeErrors {
		if !isDuplicateCode(we.Code) {
			allDuplicates = false
		}
		if kv, ok := duplicateKeyValue(we); ok {
			ids = append(ids, kv)
		}
		details = append(details, fmt.Sprintf("item %d: %s", we.Index, writeErrorMessage(we)))
	}

	if allDuplicates {
		return &Error{
			Kind:    KindConflict,
			Message: "duplicate key error: " + strings.Join(details, "; "),
			IDs:     ids,
			Err:     cause,
		}
	}

	indexes := make([]any, len(writeErrors))
	for i, we := range writeErrors {
		indexes[i] = we.Index
	}
	return &Error{
		Kind:    KindBulkPartialFailure,
		Message: strings.Join(details, "; "),
		IDs:     indexes,
		Err:     cause,
	}
}

func writeErrorMessage(we mongo.WriteError) string {
	if we.Code == codeDocumentFailedSchema {
		return "document failed validation"
	}
	return we.Message
}

// duplicateKeyValue extracts the offending key from the server's keyValue
// document. A single-field key yields the value itself, typed like the ids
// callers pass in ({meter_id: 1} becomes 1). Compound keys render as
// "field=value" pairs.
func duplicateKeyValue(we mongo.WriteError) (any, bool) {
	if !isDuplicateCode(we.Code) || len(we.Raw) == 0 {
		return nil, false
	}
	val, err := we.Raw.LookupErr("keyValue")
	if err != nil {
		return nil, false
	}
	doc, ok := val.DocumentOK()
	if !ok {
		return nil, false
	}
	elems, err := doc.Elements()
	if err != nil || len(elems) == 0 {
		return nil, false
	}
	if len(elems) == 1 {
		return rawValueID(elems[0].Value()), true
	}
	parts := make([]string, 0, len(elems))
	for _, el := range elems {
		parts = append(parts, el.Key()+"="+rawValueString(el.Value()))
	}
	return strings.Join(parts, ","), true
}

// rawValueID returns integers as int and ObjectIDs as hex, the shapes the
// pre-insert checks report.
func rawValueID(v bson.RawValue) any {
	switch v.Type {
	case bson.TypeInt32:
		return int(v.Int32())
	case bson.TypeInt64:
		return int(v.Int64())
	default:
		return rawValueString(v)
	}
}

func rawValueString(v bson.RawValue) string {
	switch v.Type {
	case bson.TypeString:
		return v.StringValue()
	case bson.TypeObjectID:
		return v.ObjectID().Hex()
	case bson.TypeInt32:
		return fmt.Sprint(v.Int32())
	case bson.TypeInt64:
		return fmt.Sprint(v.Int64())
	case bson.TypeDateTime:
		return v.Time().UTC().Format("2006-01-02T15:04:05.000Z07:00")
	default:
		return v.String()
	}
}
