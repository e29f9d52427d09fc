package handler

import (
	"maps"
	"net/http"
)

// HTTPError is an error that knows its HTTP status. Key is the stable
// machine-readable code rendered as error.code; Message overrides the
// default status text and Meta is rendered as the response meta object.
type HTTPError struct {
	Code    int
	Key     string
	Message string
	Meta    map[string]any
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	if e.Message != "" {
		return e.Key + ": " + e.Message
	}
	return e.Key
}

// Is matches another HTTPError with the same status and key, so derived
// errors built with WithMessage or WithMeta still satisfy errors.Is.
func (e HTTPError) Is(target error) bool {
	t, ok := target.(HTTPError)
	return ok && t.Code == e.Code && t.Key == e.Key
}

// WithMessage returns a copy of e with a client-facing message.
func (e HTTPError) WithMessage(msg string) HTTPError {
	e.Message = msg
	return e
}

// WithMeta returns a copy of e with meta merged over any existing values.
func (e HTTPError) WithMeta(meta map[string]any) HTTPError {
	merged := make(map[string]any, len(e.Meta)+len(meta))
	maps.Copy(merged, e.Meta)
	maps.Copy(merged, meta)
	e.Meta = merged
	return e
}

// NewHTTPError creates a custom HTTP error with the given status code and key.
//
//	err := handler.NewHTTPError(http.StatusForbidden, "integrity_mismatch")
func NewHTTPError(code int, key string) HTTPError {
	return HTTPError{Code: code, Key: key}
}

var (
	ErrBadRequest            = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrForbidden             = HTTPError{Code: http.StatusForbidden, Key: "forbidden"}
	ErrNotFound              = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrMethodNotAllowed      = HTTPError{Code: http.StatusMethodNotAllowed, Key: "method_not_allowed"}
	ErrRequestEntityTooLarge = HTTPError{Code: http.StatusRequestEntityTooLarge, Key: "request_entity_too_large"}
	ErrUnsupportedMediaType  = HTTPError{Code: http.StatusUnsupportedMediaType, Key: "unsupported_media_type"}
	ErrTooManyRequests       = HTTPError{Code: http.StatusTooManyRequests, Key: "too_many_requests"}
	ErrInternalServerError   = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}
	ErrServiceUnavailable    = HTTPError{Code: http.StatusServiceUnavailable, Key: "service_unavailable"}
	ErrInsufficientStorage   = HTTPError{Code: http.StatusInsufficientStorage, Key: "insufficient_storage"}
)
