package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/rqueue/pkg/logger"
	"github.com/dmitrymomot/rqueue/pkg/stats"
)

// Source is the part of Store the dispatcher consumes.
type Source interface {
	RemoveMax() (Dequeued, bool)
}

// State is the current phase of the dispatch loop.
type State int32

const (
	StateIdle State = iota
	StateDraining
	StateDelivering
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDraining:
		return "draining"
	case StateDelivering:
		return "delivering"
	default:
		return "unknown"
	}
}

// Dispatcher drains a store into a sink, one item at a time.
type Dispatcher struct {
	source   Source
	sink     Sink
	fallback Sink

	// Configuration
	idleDelay       time.Duration
	busyDelay       time.Duration
	deliveryTimeout time.Duration
	stats           *stats.Registry
	logger          *slog.Logger

	// State management
	mu      sync.Mutex
	cycleMu sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	state   atomic.Int32
}

// NewDispatcher creates a dispatcher that delivers items from source to sink
func NewDispatcher(source Source, sink Sink, opts ...DispatcherOption) (*Dispatcher, error) {
	if source == nil {
		return nil, ErrStoreNil
	}
	if sink == nil {
		return nil, ErrSinkNil
	}

	// Default options
	options := &dispatcherOptions{
		idleDelay:       15 * time.Second,
		busyDelay:       100 * time.Millisecond,
		deliveryTimeout: 10 * time.Second,
		logger:          slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		opt(options)
	}

	return &Dispatcher{
		source:          source,
		sink:            sink,
		fallback:        options.fallback,
		idleDelay:       options.idleDelay,
		busyDelay:       options.busyDelay,
		deliveryTimeout: options.deliveryTimeout,
		stats:           options.stats,
		logger:          options.logger.With(logger.Component("dispatcher")),
	}, nil
}

// State reports the current phase of the loop.
func (d *Dispatcher) State() State {
	return State(d.state.Load())
}

// Start begins draining in the background
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		return ErrDispatcherRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})

	go d.run(ctx, d.done)

	d.logger.Info("dispatcher started",
		slog.Duration("idle_delay", d.idleDelay),
		slog.Duration("busy_delay", d.busyDelay),
		slog.Duration("delivery_timeout", d.deliveryTimeout),
		slog.Bool("fallback", d.fallback != nil))

	return nil
}

// Stop ends the loop and waits for an in-flight delivery to finish or time out.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	if d.cancel == nil {
		d.mu.Unlock()
		return ErrDispatcherStopped
	}

	cancel, done := d.cancel, d.done
	d.cancel = nil
	d.mu.Unlock()

	cancel()

	d.logger.Info("dispatcher stopping, waiting for in-flight delivery")
	<-done
	d.logger.Info("dispatcher stopped")

	return nil
}

// Run starts the dispatcher and returns a function suitable for errgroup
func (d *Dispatcher) Run(ctx context.Context) func() error {
	return func() error {
		if err := d.Start(ctx); err != nil {
			return err
		}

		<-ctx.Done()

		return d.Stop()
	}
}

// run is the main loop. The first cycle runs after the busy delay.
func (d *Dispatcher) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(d.busyDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			delay := d.idleDelay
			if d.DrainOnce() {
				delay = d.busyDelay
			}
			timer.Reset(delay)
		}
	}
}

// DrainOnce runs a single cycle: remove the top item and deliver it.
// It reports whether an item was taken. Nothing is taken while the primary
// sink reports it is not ready. Cycles never overlap.
func (d *Dispatcher) DrainOnce() bool {
	d.cycleMu.Lock()
	defer d.cycleMu.Unlock()
	defer d.state.Store(int32(StateIdle))

	if r, ok := d.sink.(Readiness); ok && !r.Ready() {
		d.logger.Debug("sink not ready, items stay queued")
		return false
	}

	d.state.Store(int32(StateDraining))
	item, ok := d.source.RemoveMax()
	if !ok {
		return false
	}

	d.state.Store(int32(StateDelivering))
	d.deliver(item)
	return true
}

// deliver runs the primary sink, then the fallback, and records the outcome.
func (d *Dispatcher) deliver(item Dequeued) stats.Outcome {
	start := time.Now()
	log := d.logger.With(
		logger.ItemID(item.ID),
		logger.Priority(int(item.Priority)),
	)

	err := d.attempt(d.sink, item)
	if err == nil {
		d.stats.RecordDispatch(stats.Delivered)
		log.Info("notification delivered",
			logger.Elapsed(item.Elapsed),
			logger.Duration(time.Since(start)))
		return stats.Delivered
	}

	if d.fallback != nil {
		log.Warn("primary delivery failed, trying fallback", logger.Error(err))

		ferr := d.attempt(d.fallback, item)
		if ferr == nil {
			d.stats.RecordDispatch(stats.DeliveredFallback)
			log.Info("notification delivered via fallback",
				logger.Elapsed(item.Elapsed),
				logger.Duration(time.Since(start)))
			return stats.DeliveredFallback
		}
		err = errors.Join(err, ferr)
	}

	d.stats.RecordDispatch(stats.Dropped)
	log.Error("notification dropped",
		logger.Event("notification_dropped"),
		logger.Bytes(item.ByteSize),
		logger.Elapsed(item.Elapsed),
		logger.Error(err))
	return stats.Dropped
}

// attempt calls s with its own timeout. The context is not tied to the
// dispatcher lifecycle so shutdown lets the call complete.
func (d *Dispatcher) attempt(s Sink, item Dequeued) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrSinkPanic, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.deliveryTimeout)
	defer cancel()

	return s.Deliver(ctx, item)
}
