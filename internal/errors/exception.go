package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindState        Kind = "state"
	KindStorage      Kind = "storage"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
)

type Exception struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

func (e *Exception) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Exception) Unwrap() error {
	return e.Err
}

// Is matches another Exception with the same kind and message, so the
// package-level sentinels work with errors.Is even when a copy is returned.
func (e *Exception) Is(target error) bool {
	t, ok := target.(*Exception)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

func newException(kind Kind, status int, format string, args ...any) *Exception {
	return &Exception{
		Kind:       kind,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: status,
	}
}

func Validation(format string, args ...any) *Exception {
	return newException(KindValidation, http.StatusBadRequest, format, args...)
}

func NotFound(format string, args ...any) *Exception {
	return newException(KindNotFound, http.StatusNotFound, format, args...)
}

func State(format string, args ...any) *Exception {
	return newException(KindState, http.StatusConflict, format, args...)
}

func Forbidden(format string, args ...any) *Exception {
	return newException(KindForbidden, http.StatusForbidden, format, args...)
}

// Storage wraps a persistence failure. Exceptions pass through untouched.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Exception
	if errors.As(err, &appErr) {
		return err
	}
	return &Exception{
		Kind:       KindStorage,
		Message:    "storage failure",
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

func StatusCode(err error) int {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

func KindOf(err error) Kind {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStorage
}

// Message returns the client-facing text. Storage details stay in the logs.
func Message(err error) string {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "storage failure"
}
