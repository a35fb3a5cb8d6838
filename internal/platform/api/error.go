package api

import (
	"errors"
	"net/http"
)

// Error is a caller-visible failure: an HTTP status plus a message that
// identifies what went wrong (for validation failures, the offending
// field). Store and pipeline code returns these; handlers write them.
type Error struct {
	Status  int    `json:"statusCode"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func InvalidArgument(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// Internal wraps a store or join failure. The underlying error is kept
// for logs and never serialized to the caller.
func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "internal server error", Err: err}
}

type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// WriteError maps any error to the single structured error object.
// Errors that are not *Error are treated as Internal; partial data is
// never substituted for a failure.
func WriteError(w http.ResponseWriter, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = Internal(err)
	}
	WriteJSON(w, apiErr.Status, errorBody{
		StatusCode: apiErr.Status,
		Message:    apiErr.Message,
		Success:    false,
	})
}
