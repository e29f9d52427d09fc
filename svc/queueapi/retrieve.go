package queueapi

import (
	"github.com/google/uuid"

	"github.com/dmitrymomot/rqueue/handler"
	"github.com/dmitrymomot/rqueue/pkg/logger"
	"github.com/dmitrymomot/rqueue/pkg/queue"
	"github.com/dmitrymomot/rqueue/pkg/validator"
)

type retrieveRequest struct {
	MinPriority *int `query:"min_priority"`
}

type retrieveResponse struct {
	ID        uuid.UUID      `json:"id"`
	Contents  string         `json:"contents"`
	Priority  queue.Priority `json:"priority"`
	Digest    string         `json:"digest,omitempty"`
	ElapsedMS int64          `json:"elapsed_ms"`
}

func (s *Service) retrieve(ctx handler.Context, req retrieveRequest) handler.Response {
	var (
		item  queue.Dequeued
		found bool
	)

	if req.MinPriority != nil {
		if err := validator.Apply(
			validator.InRange("min_priority", *req.MinPriority, int(queue.PriorityMin), int(queue.PriorityMax)),
		); err != nil {
			return handler.JSONError(err)
		}
		item, found = s.store.RemoveMaxAtLeast(queue.Priority(*req.MinPriority))
	} else {
		item, found = s.store.RemoveMax()
	}

	s.stats.RecordRetrieve(found)
	if !found {
		return notFound()
	}

	s.log.DebugContext(ctx, "notification retrieved",
		logger.Component("queueapi"),
		logger.ItemID(item.ID),
		logger.Priority(int(item.Priority)),
		logger.Elapsed(item.Elapsed),
	)

	return handler.JSON(retrieveResponse{
		ID:        item.ID,
		Contents:  item.Contents,
		Priority:  item.Priority,
		Digest:    item.Digest,
		ElapsedMS: item.ElapsedMillis(),
	})
}
