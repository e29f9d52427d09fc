package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/rqueue/pkg/logger"
	"github.com/dmitrymomot/rqueue/pkg/queue"
)

// Payload is the JSON body posted for each dispatched item.
type Payload struct {
	ID         string    `json:"id"`
	Contents   string    `json:"contents"`
	Priority   uint8     `json:"priority"`
	Digest     string    `json:"digest,omitempty"`
	ElapsedMs  int64     `json:"elapsed_ms"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewPayload builds the wire body for d.
func NewPayload(d queue.Dequeued) Payload {
	return Payload{
		ID:         d.ID.String(),
		Contents:   d.Contents,
		Priority:   uint8(d.Priority),
		Digest:     d.Digest,
		ElapsedMs:  d.ElapsedMillis(),
		EnqueuedAt: d.EnqueuedAt,
	}
}

// Sink delivers queue items to a single webhook endpoint.
type Sink struct {
	sender  *Sender
	cfg     Config
	breaker *CircuitBreaker
	logger  *slog.Logger
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithSender replaces the default sender.
func WithSender(s *Sender) SinkOption {
	return func(k *Sink) {
		if s != nil {
			k.sender = s
		}
	}
}

// WithSinkLogger sets the logger for the sink.
func WithSinkLogger(l *slog.Logger) SinkOption {
	return func(k *Sink) {
		if l != nil {
			k.logger = l
		}
	}
}

// NewSink creates a sink posting to cfg.URL.
func NewSink(cfg Config, opts ...SinkOption) (*Sink, error) {
	if err := validateURL(cfg.URL); err != nil {
		return nil, err
	}

	k := &Sink{
		sender: NewSender(),
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(k)
	}
	k.logger = k.logger.With(logger.Component("webhook"))

	if cfg.CircuitFailures > 0 {
		log := k.logger
		k.breaker = NewCircuitBreaker(cfg.CircuitFailures, 1, cfg.CircuitRecovery,
			WithStateChange(func(from, to CircuitState) {
				log.Warn("webhook circuit state changed",
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			}))
	}

	return k, nil
}

// Breaker returns the sink's circuit breaker, or nil when disabled.
func (k *Sink) Breaker() *CircuitBreaker {
	return k.breaker
}

// Ready reports false while the circuit breaker is open, so the dispatcher
// keeps items queued instead of failing them without a request.
func (k *Sink) Ready() bool {
	return k.breaker == nil || k.breaker.State() != CircuitOpen
}

// Deliver posts the item and returns nil only on a 2xx response.
func (k *Sink) Deliver(ctx context.Context, item queue.Dequeued) error {
	body, err := json.Marshal(NewPayload(item))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	opts := []SendOption{
		WithTimeout(k.cfg.Timeout),
		WithMaxRetries(k.cfg.MaxRetries),
		WithDeliveryID(item.ID.String()),
		WithOnDelivery(func(r DeliveryResult) {
			k.logger.DebugContext(ctx, "webhook attempt",
				logger.ItemID(item.ID),
				logger.Attempt(r.Attempt),
				slog.Int("status", r.StatusCode),
				logger.Duration(r.Duration),
				logger.Error(r.Error))
		}),
	}
	if k.cfg.Secret != "" {
		opts = append(opts, WithSignature(k.cfg.Secret))
	}
	if k.breaker != nil {
		opts = append(opts, WithCircuitBreaker(k.breaker))
	}

	return k.sender.Send(ctx, k.cfg.URL, body, opts...)
}
