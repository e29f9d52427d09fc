package memlimit

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/pbnjay/memory"
)

// DefaultCeiling is used when no positive ceiling is configured.
const DefaultCeiling int64 = 64 << 20

// Accountant tracks bytes held by queued items. Safe for concurrent use.
type Accountant struct {
	current atomic.Int64
	ceiling int64
}

// Option configures an Accountant.
type Option func(*options)

type options struct {
	clamp  bool
	total  func() uint64
	logger *slog.Logger
}

// WithSystemClamp limits the ceiling to half of the physical memory of the
// host. Hosts that do not report their memory size are left unclamped.
func WithSystemClamp() Option {
	return func(o *options) { o.clamp = true }
}

// WithTotalMemory overrides the physical memory probe used by WithSystemClamp.
func WithTotalMemory(fn func() uint64) Option {
	return func(o *options) {
		if fn != nil {
			o.total = fn
		}
	}
}

// WithLogger reports ceiling adjustments.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates an Accountant with the given ceiling in bytes.
// A non-positive ceiling selects DefaultCeiling.
func New(ceiling int64, opts ...Option) *Accountant {
	o := &options{
		total:  memory.TotalMemory,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}

	if o.clamp {
		if total := o.total(); total > 0 {
			limit := int64(total / 2)
			if limit > 0 && ceiling > limit {
				o.logger.Warn("queue memory ceiling clamped to half of system memory",
					slog.Int64("configured_bytes", ceiling),
					slog.Int64("ceiling_bytes", limit),
					slog.Uint64("system_bytes", total))
				ceiling = limit
			}
		}
	}

	return &Accountant{ceiling: ceiling}
}

// Ticket is proof of a successful admission.
type Ticket struct {
	acct *Accountant
	size int64
	used atomic.Bool
}

// Size returns the number of bytes reserved by the ticket.
func (t *Ticket) Size() int64 {
	return t.size
}

// Release returns the reserved bytes. Only the first call has an effect.
func (t *Ticket) Release() {
	if t.used.CompareAndSwap(false, true) {
		t.acct.Release(t.size)
	}
}

// TryAdmit reserves size bytes if doing so keeps usage within the ceiling.
// On rejection the usage is unchanged and a *RejectedError is returned.
func (a *Accountant) TryAdmit(size int64) (*Ticket, error) {
	if size < 0 {
		panic(fmt.Sprintf("memlimit: negative admission size %d", size))
	}

	for {
		cur := a.current.Load()
		if cur+size > a.ceiling {
			return nil, &RejectedError{Attempted: size, Current: cur, Ceiling: a.ceiling}
		}
		if a.current.CompareAndSwap(cur, cur+size) {
			return &Ticket{acct: a, size: size}, nil
		}
	}
}

// Release returns size bytes to the pool.
// Releasing more than is held is a programming error and panics.
func (a *Accountant) Release(size int64) {
	if size < 0 {
		panic(fmt.Sprintf("memlimit: negative release size %d", size))
	}
	if n := a.current.Add(-size); n < 0 {
		panic(fmt.Sprintf("memlimit: byte accounting went negative (%d)", n))
	}
}

// Current returns the bytes currently held.
func (a *Accountant) Current() int64 {
	return a.current.Load()
}

// Ceiling returns the configured ceiling in bytes.
func (a *Accountant) Ceiling() int64 {
	return a.ceiling
}

// Available returns the bytes that can still be admitted.
func (a *Accountant) Available() int64 {
	return a.ceiling - a.current.Load()
}
