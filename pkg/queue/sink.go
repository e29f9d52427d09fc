package queue

import "context"

// Sink delivers a dequeued item to an external consumer.
// A nil error means the consumer accepted the item.
type Sink interface {
	Deliver(ctx context.Context, item Dequeued) error
}

// SinkFunc adapts an ordinary function to the Sink interface.
type SinkFunc func(ctx context.Context, item Dequeued) error

// Deliver calls f(ctx, item).
func (f SinkFunc) Deliver(ctx context.Context, item Dequeued) error {
	return f(ctx, item)
}

// Readiness is implemented by sinks that know up front they cannot accept
// work, such as a webhook sink whose circuit breaker is open. The dispatcher
// leaves items in the store while the primary sink is not ready.
type Readiness interface {
	Ready() bool
}
