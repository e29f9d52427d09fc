// Package stats keeps diagnostic counters for the queue service.
//
// Counters are independent atomics: a Snapshot never shows a torn value for
// a single counter but makes no promise of consistency across counters.
package stats

import (
	"sync/atomic"
	"time"
)

// Outcome classifies the result of one dispatch cycle.
type Outcome int

const (
	// Delivered means the primary sink accepted the item.
	Delivered Outcome = iota
	// DeliveredFallback means the primary sink failed and the fallback accepted the item.
	DeliveredFallback
	// Dropped means every sink failed and the item was discarded.
	Dropped
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case DeliveredFallback:
		return "delivered_fallback"
	case Dropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Rejection classifies why a submission was refused.
type Rejection int

const (
	RejectedIntegrity Rejection = iota + 1
	RejectedFull
	RejectedInvalid
)

// Gauges supplies values derived from live queue state.
type Gauges interface {
	Len() int
	Bytes() int64
}

// Registry is the process-wide set of counters. The zero value is not usable;
// create one with NewRegistry.
type Registry struct {
	now   func() time.Time
	start time.Time

	queueRequests     atomic.Uint64
	queued            atomic.Uint64
	queuedBytes       atomic.Uint64
	rejectedIntegrity atomic.Uint64
	rejectedFull      atomic.Uint64
	rejectedInvalid   atomic.Uint64
	proxyRequests     atomic.Uint64
	proxyEmpty        atomic.Uint64
	proxied           atomic.Uint64
	deliveredFallback atomic.Uint64
	dropped           atomic.Uint64

	requests     atomic.Uint64
	requestTotal atomic.Int64
	requestLast  atomic.Int64

	gauges atomic.Pointer[gaugesHolder]
}

type gaugesHolder struct{ g Gauges }

// Option configures a Registry.
type Option func(*Registry)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry creates a Registry and records the start time.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	r.start = r.now()
	return r
}

// AttachGauges sets the source for in_queue and queue_size_bytes.
func (r *Registry) AttachGauges(g Gauges) {
	if g == nil {
		r.gauges.Store(nil)
		return
	}
	r.gauges.Store(&gaugesHolder{g: g})
}

// RecordSubmit counts one submit request and, if accepted, its bytes.
func (r *Registry) RecordSubmit(accepted bool, bytes int64) {
	if r == nil {
		return
	}
	r.queueRequests.Add(1)
	if accepted {
		r.queued.Add(1)
		if bytes > 0 {
			r.queuedBytes.Add(uint64(bytes))
		}
	}
}

// RecordRejection counts a refused submission by reason. Call it in
// addition to RecordSubmit(false, ...).
func (r *Registry) RecordRejection(reason Rejection) {
	if r == nil {
		return
	}
	switch reason {
	case RejectedIntegrity:
		r.rejectedIntegrity.Add(1)
	case RejectedFull:
		r.rejectedFull.Add(1)
	case RejectedInvalid:
		r.rejectedInvalid.Add(1)
	}
}

// RecordRetrieve counts one pull request.
func (r *Registry) RecordRetrieve(found bool) {
	if r == nil {
		return
	}
	r.proxyRequests.Add(1)
	if found {
		r.proxied.Add(1)
	} else {
		r.proxyEmpty.Add(1)
	}
}

// RecordDispatch counts the result of one push delivery.
func (r *Registry) RecordDispatch(o Outcome) {
	if r == nil {
		return
	}
	switch o {
	case Delivered:
		r.proxied.Add(1)
	case DeliveredFallback:
		r.proxied.Add(1)
		r.deliveredFallback.Add(1)
	case Dropped:
		r.dropped.Add(1)
	}
}

// RecordRequest records the processing time of one HTTP request.
func (r *Registry) RecordRequest(d time.Duration) {
	if r == nil {
		return
	}
	r.requests.Add(1)
	r.requestTotal.Add(int64(d))
	r.requestLast.Store(int64(d))
}
