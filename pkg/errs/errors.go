// Package errs defines the error taxonomy surfaced by the operation layer.
// Storage-engine errors never leave the layer untranslated: they are
// classified by FromMongo into one of the kinds below.
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type Kind string

const (
	KindNotFoundReference  Kind = "NotFoundReference"
	KindConflict           Kind = "Conflict"
	KindBulkPartialFailure Kind = "BulkPartialFailure"
	KindValidation         Kind = "ValidationError"
	KindNotFound           Kind = "NotFound"
	KindInfrastructure     Kind = "InfrastructureError"
)

// Error carries a kind and the identifiers that caused it. IDs hold either
// integers (external ids) or strings (surrogate ids, key values) so they
// serialize as the caller supplied them.
type Error struct {
	Kind    Kind
	Message string
	IDs     []any
	Err     error

	transient bool
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string, ids ...any) *Error {
	return &Error{Kind: kind, Message: message, IDs: ids}
}

// NotFoundReference reports declared references that do not resolve in
// target. ids must already be sorted by the caller.
func NotFoundReference(target string, ids []any) *Error {
	return &Error{
		Kind:    KindNotFoundReference,
		Message: fmt.Sprintf("found non-existing %s references %s", target, formatIDs(ids)),
		IDs:     ids,
	}
}

func Conflict(message string, ids ...any) *Error {
	return &Error{Kind: KindConflict, Message: message, IDs: ids}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(entity string, id any) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s %v not found", entity, id),
		IDs:     []any{id},
	}
}

func Infrastructure(err error) *Error {
	return &Error{Kind: KindInfrastructure, Message: "storage engine error", Err: err}
}

func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInfrastructure
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func IDsOf(err error) []any {
	var e *Error
	if errors.As(err, &e) {
		return e.IDs
	}
	return nil
}

// IsTransient reports infrastructure failures (network, timeouts) that may
// succeed when the whole unit of work is replayed.
func IsTransient(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.transient
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFoundReference, KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindBulkPartialFailure:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Body is the machine readable shape returned to callers.
type Body struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	IDs     []any  `json:"ids,omitempty"`
}

func ToBody(err error) Body {
	var e *Error
	if errors.As(err, &e) {
		msg := e.Message
		if e.Kind == KindInfrastructure {
			msg = "internal storage error"
		}
		return Body{Kind: e.Kind, Message: msg, IDs: e.IDs}
	}
	return Body{Kind: KindInfrastructure, Message: "internal error"}
}

func formatIDs(ids []any) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
