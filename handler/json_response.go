package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/rqueue/pkg/binder"
	"github.com/dmitrymomot/rqueue/pkg/validator"
)

// JSONResponse is the standard JSON response structure
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   JSONResponse
	raw    any
}

func (j *jsonResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	if j.raw != nil {
		return json.NewEncoder(w).Encode(j.raw)
	}
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures JSON response
type JSONOption func(*jsonResponse)

// WithJSONStatus sets custom HTTP status code
func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) {
		r.status = status
	}
}

// WithJSONMeta adds metadata to response
func WithJSONMeta(meta map[string]any) JSONOption {
	return func(r *jsonResponse) {
		r.body.Meta = meta
	}
}

// JSON wraps v in the {"data": ...} envelope with status 200.
// A JSONResponse value is rendered as is.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK}

	if val, ok := v.(JSONResponse); ok {
		r.body = val
	} else {
		r.body.Data = v
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// JSONRaw encodes v without the envelope.
func JSONRaw(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK, raw: v}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// JSONError renders err in the {"error": ...} envelope. The status and code
// come from ClassifyError; options may still override them.
func JSONError(err error, opts ...JSONOption) Response {
	status, detail, meta := ClassifyError(err)
	r := &jsonResponse{
		status: status,
		body:   JSONResponse{Error: detail, Meta: meta},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ClassifyError maps an error to its status, client-facing detail and meta.
//
//   - validator.ValidationErrors: 400 validation_error with per-field details
//   - binder content type errors: 415, body size: 413, other binder errors: 400
//   - HTTPError: its own code, key, message and meta
//   - anything else: 500 internal_server_error without the internal message
func ClassifyError(err error) (int, *ErrorDetail, map[string]any) {
	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
		return http.StatusBadRequest, &ErrorDetail{
			Code:    "validation_error",
			Message: "validation failed",
			Details: verrs.Map(),
		}, nil
	}

	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr):
	case errors.Is(err, binder.ErrMissingContentType), errors.Is(err, binder.ErrUnsupportedMediaType):
		httpErr = ErrUnsupportedMediaType.WithMessage(err.Error())
	case errors.Is(err, binder.ErrBodyTooLarge):
		httpErr = ErrRequestEntityTooLarge.WithMessage(err.Error())
	case errors.Is(err, binder.ErrFailedToParseJSON), errors.Is(err, binder.ErrFailedToParseQuery):
		httpErr = ErrBadRequest.WithMessage(err.Error())
	default:
		httpErr = ErrInternalServerError
	}

	msg := httpErr.Message
	if msg == "" {
		msg = http.StatusText(httpErr.Code)
	}
	return httpErr.Code, &ErrorDetail{Code: httpErr.Key, Message: msg}, httpErr.Meta
}
