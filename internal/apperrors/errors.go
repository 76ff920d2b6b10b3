package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is a stable machine-readable error category. Callers branch on the
// kind, never on message text.
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindForbidden           Kind = "forbidden"
	KindInvalidTransition   Kind = "invalid_transition"
	KindDuplicateIdentifier Kind = "duplicate_identifier"
	KindValidation          Kind = "validation"
	KindStorageUnavailable  Kind = "storage_unavailable"
)

// Error carries a kind tag plus optional structured detail so clients can
// render what the caller could legally do next.
type Error struct {
	Kind    Kind
	Message string
	// Fields holds field-level messages for validation errors, or the
	// conflicting column names for duplicate identifiers.
	Fields map[string]string
	// Allowed enumerates the legal next statuses for invalid transitions.
	Allowed []string
	// RequiredRole names the role that would have been authorized.
	RequiredRole string
	Err          error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs a plain tagged error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NotFound reports a missing record of the given entity.
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", entity)}
}

// Forbidden reports a denied action, optionally naming the required role.
func Forbidden(message, requiredRole string) *Error {
	return &Error{Kind: KindForbidden, Message: message, RequiredRole: requiredRole}
}

// InvalidTransition reports an illegal status edge together with the legal
// destinations from the current status.
func InvalidTransition(current, desired string, allowed []string) *Error {
	destinations := "none (final state)"
	if len(allowed) > 0 {
		destinations = strings.Join(allowed, ", ")
	}
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %q to %q; valid transitions are: %s", current, desired, destinations),
		Allowed: allowed,
	}
}

// DuplicateIdentifier reports a uniqueness conflict on the named fields.
func DuplicateIdentifier(fields ...string) *Error {
	detail := make(map[string]string, len(fields))
	for _, field := range fields {
		detail[field] = "already in use"
	}
	return &Error{
		Kind:    KindDuplicateIdentifier,
		Message: fmt.Sprintf("duplicate identifier: %s", strings.Join(fields, ", ")),
		Fields:  detail,
	}
}

// Validation reports field-level validation failures.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// StorageUnavailable wraps a connectivity or timeout fault from the store.
func StorageUnavailable(err error) *Error {
	return &Error{Kind: KindStorageUnavailable, Message: "storage unavailable", Err: err}
}

// KindOf extracts the kind tag, or "" for untagged errors.
func KindOf(err error) Kind {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	return ""
}

// As returns the tagged error when present.
func As(err error) (*Error, bool) {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error kind to its HTTP status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return 404
	case KindForbidden:
		return 403
	case KindInvalidTransition, KindValidation:
		return 400
	case KindDuplicateIdentifier:
		return 409
	case KindStorageUnavailable:
		return 503
	default:
		return 500
	}
}
