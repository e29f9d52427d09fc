// Package handler provides typed HTTP handlers that bind requests into Go
// structs and return renderable responses.
//
// A HandlerFunc receives a Context and a bound request value and returns a
// Response. Wrap turns it into an http.HandlerFunc, running the configured
// binders first and routing every failure through an ErrorHandler:
//
//	type retrieveRequest struct {
//		MinPriority *int `query:"min_priority"`
//	}
//
//	r.Get("/", handler.Wrap(retrieve,
//		handler.WithBinder[handler.Context, retrieveRequest](binder.Query()),
//		handler.WithErrorHandler[handler.Context, retrieveRequest](handler.NewErrorHandler(log)),
//	))
//
// # Responses
//
// JSON wraps a value in {"data": ...}; JSONError renders {"error": {...}}
// with the status chosen by ClassifyError; JSONRaw writes a value without
// the envelope for fixed wire formats.
//
// # Errors
//
// HTTPError carries a status code, a stable key, an optional message and
// optional meta. Validation errors from pkg/validator become 400 responses
// with per-field details; binder errors become 400, 413 or 415. Any other
// error is reported as a bare 500 so internal messages never reach clients.
package handler
