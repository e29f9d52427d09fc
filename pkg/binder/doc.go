// Package binder decodes HTTP request data into typed request structs.
//
// Two binders are provided:
//
//   - JSON: strict application/json body decoding with a size limit
//   - Query: URL query parameters via `query` struct tags
//
// Binders share the signature func(*http.Request, any) error and are plugged
// into handlers with handler.WithBinder. Several binders may run against the
// same struct; each only touches the fields it owns:
//
//	type submitRequest struct {
//	    Contents      string `json:"contents" query:"-"`
//	    Priority      *int   `json:"priority" query:"-"`
//	    QueryPriority *int   `json:"-" query:"priority"`
//	}
//
// Failures wrap one of the package errors (ErrMissingContentType,
// ErrUnsupportedMediaType, ErrFailedToParseJSON, ErrBodyTooLarge,
// ErrFailedToParseQuery) so callers map them with errors.Is.
package binder
