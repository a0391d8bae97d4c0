package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/psycare/psycare/gate"
	"github.com/psycare/psycare/internal/store"
	"github.com/psycare/psycare/validation"
)

// Kind classifies service errors. Handlers map kinds to HTTP statuses.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindRateLimited    Kind = "rate_limited"
	KindInternal       Kind = "internal"
)

var kindStatus = map[Kind]int{
	KindValidation:     http.StatusBadRequest,
	KindAuthentication: http.StatusUnauthorized,
	KindAuthorization:  http.StatusForbidden,
	KindNotFound:       http.StatusNotFound,
	KindConflict:       http.StatusConflict,
	KindRateLimited:    http.StatusTooManyRequests,
	KindInternal:       http.StatusInternalServerError,
}

// Error is a classified service error.
type Error struct {
	Kind   Kind
	Reason string            // machine code, e.g. "duplicate_email"
	Fields map[string]string // field violations for KindValidation
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) HTTPStatus() int {
	if s, ok := kindStatus[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func (e *Error) Code() string { return e.Reason }

func (e *Error) Details() any {
	if len(e.Fields) == 0 {
		return nil
	}
	return e.Fields
}

func NewValidationError(v validation.Violations) *Error {
	return &Error{Kind: KindValidation, Reason: "validation_failed", Fields: v}
}

func NewAuthenticationError(reason string) *Error {
	return &Error{Kind: KindAuthentication, Reason: reason}
}

func NewAuthorizationError(reason string) *Error {
	return &Error{Kind: KindAuthorization, Reason: reason}
}

func NewNotFoundError(reason string) *Error {
	return &Error{Kind: KindNotFound, Reason: reason}
}

func NewConflictError(reason string) *Error {
	return &Error{Kind: KindConflict, Reason: reason}
}

func NewRateLimitedError(reason string) *Error {
	return &Error{Kind: KindRateLimited, Reason: reason}
}

// KindOf returns the kind of err, KindInternal for unclassified errors and
// "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// IsKind reports whether err has kind k.
func IsKind(err error, k Kind) bool { return KindOf(err) == k }

// fromGate turns a gate denial into a service error. Other errors pass through.
func fromGate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gate.ErrUnauthenticated):
		return NewAuthenticationError(gate.Reason(err))
	case errors.Is(err, gate.ErrWrongRole), errors.Is(err, gate.ErrForbidden):
		return NewAuthorizationError(gate.Reason(err))
	case errors.Is(err, gate.ErrNotFound):
		return NewNotFoundError(gate.Reason(err))
	}
	return err
}

// fromStore turns a missing record into a not found error.
func fromStore(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return NewNotFoundError("not_found")
	}
	return err
}
