// Package httperr defines the typed errors handlers return and the
// single process-wide responder that maps them to HTTP responses.
// Handlers never build error JSON themselves; they return an
// *httperr.Error (or a repository sentinel, translated at the call
// site) and the responder registered on the echo instance shapes the
// response.  Unknown errors become a generic 500 so internal details
// never leak to clients.
package httperr

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error carries an HTTP status and a human-readable message.  Wrapped
// causes are kept for logging only and never serialized.
type Error struct {
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Validation reports malformed or missing input (422).
func Validation(msg string) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Message: msg}
}

// BadRequest reports an unparseable request (400).
func BadRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// NotFound reports a missing resource (404).
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

// Forbidden reports a role or ownership mismatch (403).
func Forbidden(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Message: msg}
}

// Conflict reports duplicates, insufficient slots and illegal
// transitions (409).
func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Message: msg}
}

// Internal wraps an unexpected failure (500).  The cause is logged by
// the responder; clients only ever see the generic message.
func Internal(cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "something went wrong", cause: cause}
}

// Handler is the echo HTTPErrorHandler for the whole API.  It maps
// *Error and echo.HTTPError to JSON bodies of the form
// {"error": "..."} and turns anything else into a redacted 500.
func Handler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := "something went wrong"

	var he *Error
	var ee *echo.HTTPError
	switch {
	case errors.As(err, &he):
		status = he.Status
		msg = he.Message
		if he.cause != nil {
			log.Printf("httperr: %d %s: %v", status, msg, he.cause)
		}
	case errors.As(err, &ee):
		status = ee.Code
		if s, ok := ee.Message.(string); ok {
			msg = s
		} else {
			msg = http.StatusText(status)
		}
	default:
		log.Printf("httperr: unhandled error: %v", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, echo.Map{"error": msg})
}
