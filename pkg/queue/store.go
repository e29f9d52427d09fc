package queue

import (
	"container/heap"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/rqueue/pkg/integrity"
	"github.com/dmitrymomot/rqueue/pkg/logger"
	"github.com/dmitrymomot/rqueue/pkg/memlimit"
	"github.com/dmitrymomot/rqueue/pkg/stats"
)

// Store is the priority-ordered, memory-bounded set of admitted items.
// Safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	items itemHeap
	seq   uint64
	bytes int64

	acct     *memlimit.Accountant
	verifier *integrity.Verifier
	stats    *stats.Registry
	now      func() time.Time
	logger   *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStats records submissions and retrievals in r and attaches the store
// as its gauge source.
func WithStats(r *stats.Registry) StoreOption {
	return func(s *Store) {
		s.stats = r
	}
}

// WithClock replaces time.Now for admission and elapsed time.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates an empty store. A nil accountant gets memlimit.DefaultCeiling;
// a nil verifier accepts any submission without a digest.
func NewStore(acct *memlimit.Accountant, verifier *integrity.Verifier, opts ...StoreOption) *Store {
	if acct == nil {
		acct = memlimit.New(memlimit.DefaultCeiling)
	}

	s := &Store{
		acct:     acct,
		verifier: verifier,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.stats != nil {
		s.stats.AttachGauges(s)
	}

	return s
}

// Insert admits a submission. The item is visible to RemoveMax as soon as
// Insert returns without error.
func (s *Store) Insert(ctx context.Context, sub Submission) (Item, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, err
	}

	if sub.Contents == "" {
		s.reject(stats.RejectedInvalid)
		return Item{}, ErrEmptyContents
	}

	if err := s.verifier.Verify([]byte(sub.Contents), sub.Digest); err != nil {
		s.reject(stats.RejectedIntegrity)
		s.logger.DebugContext(ctx, "submission failed integrity check",
			logger.Error(err))
		return Item{}, err
	}

	digest := strings.ToLower(strings.TrimSpace(sub.Digest))
	size := SizeOf(sub.Contents, digest)
	id := uuid.New()

	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, err := s.acct.TryAdmit(size)
	if err != nil {
		s.reject(stats.RejectedFull)
		var rej *memlimit.RejectedError
		if errors.As(err, &rej) {
			s.logger.WarnContext(ctx, "queue full, submission rejected",
				slog.Int64("attempted_bytes", rej.Attempted),
				slog.Int64("current_bytes", rej.Current),
				slog.Int64("ceiling_bytes", rej.Ceiling))
		}
		return Item{}, err
	}

	s.seq++
	item := Item{
		ID:         id,
		Contents:   sub.Contents,
		Priority:   sub.Priority,
		Digest:     digest,
		EnqueuedAt: s.now(),
		ByteSize:   size,
		seq:        s.seq,
	}
	heap.Push(&s.items, &entry{item: item, ticket: ticket})
	s.bytes += size
	s.stats.RecordSubmit(true, size)

	return item, nil
}

// RemoveMax removes and returns the highest-priority item, oldest first
// among equals. The second result is false when the store is empty.
func (s *Store) RemoveMax() (Dequeued, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return Dequeued{}, false
	}
	return s.pop(), true
}

// RemoveMaxAtLeast behaves like RemoveMax but only removes the top item when
// its priority is at least floor.
func (s *Store) RemoveMaxAtLeast(floor Priority) (Dequeued, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 || s.items[0].item.Priority < floor {
		return Dequeued{}, false
	}
	return s.pop(), true
}

// pop must be called with s.mu held and a non-empty heap.
func (s *Store) pop() Dequeued {
	e := heap.Pop(&s.items).(*entry)
	e.ticket.Release()
	s.bytes -= e.item.ByteSize

	return Dequeued{
		Item:    e.item,
		Elapsed: s.now().Sub(e.item.EnqueuedAt),
	}
}

// Peek returns the item RemoveMax would return without removing it.
func (s *Store) Peek() (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return Item{}, false
	}
	return s.items[0].item, true
}

// Len returns the number of queued items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Bytes returns the total byte size charged for queued items.
func (s *Store) Bytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bytes
}

// Ceiling returns the memory ceiling enforced on admission.
func (s *Store) Ceiling() int64 {
	return s.acct.Ceiling()
}

func (s *Store) reject(reason stats.Rejection) {
	s.stats.RecordSubmit(false, 0)
	s.stats.RecordRejection(reason)
}
