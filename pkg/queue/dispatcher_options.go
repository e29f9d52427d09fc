package queue

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/rqueue/pkg/stats"
)

// MinBusyDelay is the shortest pause between two drain cycles.
const MinBusyDelay = 10 * time.Millisecond

// DispatcherOption is a functional option for configuring a dispatcher
type DispatcherOption func(*dispatcherOptions)

type dispatcherOptions struct {
	fallback        Sink
	idleDelay       time.Duration
	busyDelay       time.Duration
	deliveryTimeout time.Duration
	stats           *stats.Registry
	logger          *slog.Logger
}

// WithFallback sets the sink used when the primary sink fails
func WithFallback(s Sink) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.fallback = s
	}
}

// WithIdleDelay sets how long the dispatcher waits after finding the store empty
func WithIdleDelay(d time.Duration) DispatcherOption {
	return func(o *dispatcherOptions) {
		if d > 0 {
			o.idleDelay = d
		}
	}
}

// WithBusyDelay sets the pause after a delivered item. Values below
// MinBusyDelay are raised to it.
func WithBusyDelay(d time.Duration) DispatcherOption {
	return func(o *dispatcherOptions) {
		if d > 0 {
			o.busyDelay = max(d, MinBusyDelay)
		}
	}
}

// WithDeliveryTimeout bounds each call to a sink
func WithDeliveryTimeout(d time.Duration) DispatcherOption {
	return func(o *dispatcherOptions) {
		if d > 0 {
			o.deliveryTimeout = d
		}
	}
}

// WithDispatcherStats records delivery outcomes in r
func WithDispatcherStats(r *stats.Registry) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.stats = r
	}
}

// WithDispatcherLogger sets the logger for the dispatcher
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(o *dispatcherOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
