package binder

import "net/http"

// Query binds URL query parameters into struct fields tagged `query:"name"`.
// Fields without a matching parameter keep their current value, so Query
// composes with a body binder applied earlier. Use pointer fields to tell
// an absent parameter from a zero one.
//
//	type retrieveRequest struct {
//		MinPriority *int `query:"min_priority"`
//	}
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", r.URL.Query(), ErrFailedToParseQuery)
	}
}
