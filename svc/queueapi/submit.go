package queueapi

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/rqueue/handler"
	"github.com/dmitrymomot/rqueue/pkg/logger"
	"github.com/dmitrymomot/rqueue/pkg/queue"
	"github.com/dmitrymomot/rqueue/pkg/validator"
)

// submitRequest accepts the priority either in the body or as ?priority=.
// The body value wins when both are present.
type submitRequest struct {
	Contents      string `json:"contents" query:"-"`
	Priority      *int   `json:"priority,omitempty" query:"-"`
	Digest        string `json:"digest,omitempty" query:"-"`
	QueryPriority *int   `json:"-" query:"priority"`
}

type submitResponse struct {
	ID       uuid.UUID `json:"id"`
	Accepted bool      `json:"accepted"`
}

func (s *Service) submit(ctx handler.Context, req submitRequest) handler.Response {
	priority := int(s.defaultPriority)
	switch {
	case req.Priority != nil:
		priority = *req.Priority
	case req.QueryPriority != nil:
		priority = *req.QueryPriority
	}

	if err := validator.Apply(
		validator.NotEmpty("contents", req.Contents),
		validator.InRange("priority", priority, int(queue.PriorityMin), int(queue.PriorityMax)),
	); err != nil {
		s.rejectInvalid()
		return handler.JSONError(err)
	}

	item, err := s.store.Insert(ctx, queue.Submission{
		Contents: req.Contents,
		Priority: queue.Priority(priority),
		Digest:   req.Digest,
	})
	if err != nil {
		return handler.JSONError(storeError(err))
	}

	s.log.DebugContext(ctx, "notification queued",
		logger.Component("queueapi"),
		logger.ItemID(item.ID),
		logger.Priority(int(item.Priority)),
		logger.Bytes(item.ByteSize),
	)

	return handler.JSON(
		submitResponse{ID: item.ID, Accepted: true},
		handler.WithJSONStatus(http.StatusAccepted),
	)
}
