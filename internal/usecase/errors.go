package usecase

import (
	"fmt"
	"net/http"
)

// Error is what usecases return for failures the caller should see. Code is
// the HTTP status the handler responds with.
type Error struct {
	Code       int
	Message    string
	Fields     map[string]string
	RetryAfter int
	Retryable  bool
	Reconnect  bool
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func badRequest(message string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: message}
}

func validationError(fields map[string]string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: "validation failed", Fields: fields}
}

func notFound(what string) *Error {
	return &Error{Code: http.StatusNotFound, Message: what + " not found"}
}

func forbidden() *Error {
	return &Error{Code: http.StatusForbidden, Message: "you do not have access to this resource"}
}

func internal(message string, err error) *Error {
	return &Error{Code: http.StatusInternalServerError, Message: message, Err: err}
}
