package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable reason codes surfaced to API callers.
const (
	CodeUnauthorized  = "unauthorized"
	CodeNotFound      = "not_found"
	CodeForbidden     = "forbidden"
	CodeNotRestorable = "not_restorable"
	CodeValidation    = "validation"
	CodeUpstreamIO    = "upstream_io"
	CodeInternal      = "internal_error"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Unauthorized(err error) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, err)
}

func NotFound(err error) *Error {
	return New(http.StatusNotFound, CodeNotFound, err)
}

func Forbidden(err error) *Error {
	return New(http.StatusForbidden, CodeForbidden, err)
}

func NotRestorable(err error) *Error {
	return New(http.StatusConflict, CodeNotRestorable, err)
}

func Validation(err error) *Error {
	return New(http.StatusBadRequest, CodeValidation, err)
}

func UpstreamIO(err error) *Error {
	return New(http.StatusBadGateway, CodeUpstreamIO, err)
}

// From unwraps err into an *Error, or wraps it as an internal error so the
// HTTP layer never leaks raw failure detail of unexpected errors.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return New(http.StatusInternalServerError, CodeInternal, nil)
}

// Is reports whether err carries the given reason code.
func Is(err error, code string) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == code
}
