package queueapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrymomot/rqueue/handler"
	"github.com/dmitrymomot/rqueue/pkg/integrity"
	"github.com/dmitrymomot/rqueue/pkg/memlimit"
	"github.com/dmitrymomot/rqueue/pkg/queue"
)

var (
	ErrIntegrityMissing = handler.NewHTTPError(http.StatusForbidden, "integrity_missing").
		WithMessage("a digest of the contents is required")

	ErrIntegrityMismatch = handler.NewHTTPError(http.StatusForbidden, "integrity_mismatch").
		WithMessage("digest does not match the contents")

	ErrQueueFull = handler.NewHTTPError(http.StatusInsufficientStorage, "queue_full").
		WithMessage("queue memory ceiling reached, retry later")
)

// notFoundBody is the empty-queue and unknown-route response body.
type notFoundBody struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func notFound() handler.Response {
	return handler.JSONRaw(
		notFoundBody{Status: "error", Reason: "Resource was not found."},
		handler.WithJSONStatus(http.StatusNotFound),
	)
}

// storeError maps Store.Insert failures to HTTP errors. Queue-full
// responses carry the accountant's figures so producers can back off.
func storeError(err error) error {
	var rejected *memlimit.RejectedError
	switch {
	case errors.Is(err, integrity.ErrIntegrityMissing):
		return ErrIntegrityMissing
	case errors.Is(err, integrity.ErrIntegrityMismatch):
		return ErrIntegrityMismatch
	case errors.As(err, &rejected):
		return ErrQueueFull.WithMeta(map[string]any{
			"current_bytes":   rejected.Current,
			"ceiling_bytes":   rejected.Ceiling,
			"attempted_bytes": rejected.Attempted,
		})
	case errors.Is(err, queue.ErrEmptyContents):
		return handler.ErrBadRequest.WithMessage(err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return handler.ErrServiceUnavailable
	default:
		return err
	}
}
