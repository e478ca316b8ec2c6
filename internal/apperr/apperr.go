// Package apperr defines the error taxonomy shared by all endpoint
// boundaries. Integration errors never cross a handler boundary raw; they
// are wrapped into one of these kinds first.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for HTTP mapping
type Kind int

const (
	// Validation is bad or missing input (400)
	Validation Kind = iota + 1
	// Authentication is a missing or invalid credential (401)
	Authentication
	// Authorization is a valid identity with insufficient entitlement (403)
	Authorization
	// NotFound is a missing entity or a team mismatch (404)
	NotFound
	// Upstream is an identity/database/telephony provider failure (500)
	Upstream
	// Unavailable is a required integration not configured or unreachable (500)
	Unavailable
)

// Error is a classified application error with an optional user-facing
// detail string and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the error kind to a status code
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case Validation:
		return http.StatusBadRequest
	case Authentication:
		return http.StatusUnauthorized
	case Authorization:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// New creates a classified error with a user-facing message
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error wrapping a cause. The cause is kept for
// logging; only Message and Details are user-visible.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithDetails creates a classified error carrying provider-supplied detail
func WithDetails(kind Kind, message, details string, err error) *Error {
	return &Error{Kind: kind, Message: message, Details: details, Err: err}
}

// As extracts an *Error from an error chain
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
