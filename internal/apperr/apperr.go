// Package apperr carries failures from services to the presentation layer,
// which decides how to surface them.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound           = "NOT_FOUND"
	CodeBadRequest         = "BAD_REQUEST"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	CodeStorageCorrupt     = "STORAGE_CORRUPT"
)

type Error struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(resource string, err error) *Error {
	return &Error{Code: CodeNotFound, Message: resource + " not found", Status: http.StatusNotFound, Err: err}
}

func BadRequest(message string, err error) *Error {
	return &Error{Code: CodeBadRequest, Message: message, Status: http.StatusBadRequest, Err: err}
}

func StorageUnavailable(message string, err error) *Error {
	return &Error{Code: CodeStorageUnavailable, Message: message, Status: http.StatusServiceUnavailable, Err: err}
}

func StorageCorrupt(message string, err error) *Error {
	return &Error{Code: CodeStorageCorrupt, Message: message, Status: http.StatusConflict, Err: err}
}

// From returns the *Error in err's chain, wrapping anything else as a 500.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Code: "INTERNAL_ERROR", Message: "something went wrong", Status: http.StatusInternalServerError, Err: err}
}

func Is(err error, code string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
