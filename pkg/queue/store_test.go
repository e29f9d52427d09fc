package queue_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rqueue/pkg/integrity"
	"github.com/dmitrymomot/rqueue/pkg/memlimit"
	"github.com/dmitrymomot/rqueue/pkg/queue"
	"github.com/dmitrymomot/rqueue/pkg/stats"
)

func newStore(t *testing.T, ceiling int64, opts ...queue.StoreOption) *queue.Store {
	t.Helper()
	return queue.NewStore(memlimit.New(ceiling), nil, opts...)
}

func insert(t *testing.T, s *queue.Store, contents string, p queue.Priority) queue.Item {
	t.Helper()
	item, err := s.Insert(context.Background(), queue.Submission{Contents: contents, Priority: p})
	require.NoError(t, err)
	return item
}

func TestStore_Ordering(t *testing.T) {
	t.Parallel()

	s := newStore(t, 1<<20)
	insert(t, s, "a", 5)
	insert(t, s, "b", 200)
	insert(t, s, "c", 5)
	insert(t, s, "d", 10)
	insert(t, s, "e", 200)

	var got []string
	for {
		d, ok := s.RemoveMax()
		if !ok {
			break
		}
		got = append(got, d.Contents)
	}

	assert.Equal(t, []string{"b", "e", "d", "a", "c"}, got)
	assert.Zero(t, s.Len())
	assert.Zero(t, s.Bytes())
}

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := newStore(t, 1<<20, queue.WithClock(clock))

	item := insert(t, s, "hello", 42)
	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.Equal(t, queue.SizeOf("hello", ""), item.ByteSize)
	assert.Equal(t, now, item.EnqueuedAt)

	now = now.Add(1500 * time.Millisecond)

	d, ok := s.RemoveMax()
	require.True(t, ok)
	assert.Equal(t, item.ID, d.ID)
	assert.Equal(t, "hello", d.Contents)
	assert.Equal(t, queue.Priority(42), d.Priority)
	assert.Equal(t, int64(1500), d.ElapsedMillis())

	_, ok = s.RemoveMax()
	assert.False(t, ok)
}

func TestStore_EmptyContents(t *testing.T) {
	t.Parallel()

	s := newStore(t, 1<<20)
	_, err := s.Insert(context.Background(), queue.Submission{Priority: 1})
	require.ErrorIs(t, err, queue.ErrEmptyContents)
	assert.Zero(t, s.Len())
}

func TestStore_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newStore(t, 1<<20)
	_, err := s.Insert(ctx, queue.Submission{Contents: "x"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, s.Len())
}

func TestStore_Ceiling(t *testing.T) {
	t.Parallel()

	// Room for exactly two items of this size.
	size := queue.SizeOf("0123456789", "")
	reg := stats.NewRegistry()
	s := newStore(t, 2*size, queue.WithStats(reg))

	first := insert(t, s, "0123456789", 1)
	insert(t, s, "9876543210", 1)

	_, err := s.Insert(context.Background(), queue.Submission{Contents: "abcdefghij", Priority: 255})
	require.ErrorIs(t, err, memlimit.ErrQueueFull)

	var rej *memlimit.RejectedError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, size, rej.Attempted)
	assert.Equal(t, 2*size, rej.Current)
	assert.Equal(t, 2*size, rej.Ceiling)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 2*size, s.Bytes())

	// Rejected item is not retrievable.
	d, ok := s.RemoveMax()
	require.True(t, ok)
	assert.Equal(t, first.ID, d.ID)

	// Space freed by removal is reusable.
	_, err = s.Insert(context.Background(), queue.Submission{Contents: "abcdefghij", Priority: 255})
	require.NoError(t, err)

	v := reg.Snapshot()
	assert.Equal(t, uint64(3), v.Queued)
	assert.Equal(t, uint64(1), v.RejectedFull)
	assert.Equal(t, 2, v.InQueue)
	assert.Equal(t, 2*size, v.QueueSizeBytes)
}

func TestStore_Integrity(t *testing.T) {
	t.Parallel()

	verifier, err := integrity.New(integrity.Config{Required: true, SharedSecret: "s3cret"})
	require.NoError(t, err)

	reg := stats.NewRegistry()
	s := queue.NewStore(memlimit.New(1<<20), verifier, queue.WithStats(reg))
	ctx := context.Background()

	_, err = s.Insert(ctx, queue.Submission{Contents: "payload"})
	require.ErrorIs(t, err, integrity.ErrIntegrityMissing)

	_, err = s.Insert(ctx, queue.Submission{Contents: "payload", Digest: "deadbeef"})
	require.ErrorIs(t, err, integrity.ErrIntegrityMismatch)

	digest := integrity.Digest([]byte("payload"), "s3cret")
	item, err := s.Insert(ctx, queue.Submission{Contents: "payload", Digest: "  " + digest + " "})
	require.NoError(t, err)
	assert.Equal(t, digest, item.Digest)
	assert.Equal(t, queue.SizeOf("payload", digest), item.ByteSize)

	assert.Equal(t, 1, s.Len())
	v := reg.Snapshot()
	assert.Equal(t, uint64(2), v.RejectedIntegrity)
	assert.Equal(t, uint64(3), v.QueueRequests)
}

func TestStore_RemoveMaxAtLeast(t *testing.T) {
	t.Parallel()

	s := newStore(t, 1<<20)
	insert(t, s, "low", 3)
	insert(t, s, "mid", 50)

	d, ok := s.RemoveMaxAtLeast(40)
	require.True(t, ok)
	assert.Equal(t, "mid", d.Contents)

	_, ok = s.RemoveMaxAtLeast(40)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())

	d, ok = s.RemoveMaxAtLeast(0)
	require.True(t, ok)
	assert.Equal(t, "low", d.Contents)
}

func TestStore_Peek(t *testing.T) {
	t.Parallel()

	s := newStore(t, 1<<20)
	_, ok := s.Peek()
	assert.False(t, ok)

	insert(t, s, "a", 1)
	top := insert(t, s, "b", 9)

	got, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, top.ID, got.ID)
	assert.Equal(t, 2, s.Len())
}

// Producers insert concurrently while consumers drain. Every item must be
// returned exactly once and each consumer's view must respect the ordering
// of items present at removal time, which for a single priority reduces to
// increasing admission sequence.
func TestStore_Concurrent(t *testing.T) {
	t.Parallel()

	const (
		producers = 8
		perProd   = 250
		consumers = 4
	)

	s := newStore(t, 1<<30)
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		seen     = make(map[string]int)
		produced sync.WaitGroup
	)

	produced.Add(producers)
	for p := range producers {
		go func() {
			defer produced.Done()
			for i := range perProd {
				_, err := s.Insert(ctx, queue.Submission{
					Contents: fmt.Sprintf("p%d-%d", p, i),
					Priority: queue.Priority(i % 4),
				})
				assert.NoError(t, err)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		produced.Wait()
		close(done)
	}()

	for range consumers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				d, ok := s.RemoveMax()
				if !ok {
					select {
					case <-done:
						if s.Len() == 0 {
							return
						}
					default:
					}
					continue
				}
				mu.Lock()
				seen[d.Contents]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, producers*perProd)
	for k, n := range seen {
		assert.Equal(t, 1, n, "item %s delivered %d times", k, n)
	}
	assert.Zero(t, s.Bytes())
}

func TestStore_SequenceTieBreak(t *testing.T) {
	t.Parallel()

	s := newStore(t, 1<<20)
	var seqs []uint64
	for i := range 50 {
		seqs = append(seqs, insert(t, s, fmt.Sprint(i), 7).Seq())
	}
	assert.True(t, sort.SliceIsSorted(seqs, func(i, j int) bool { return seqs[i] < seqs[j] }))

	for i := range 50 {
		d, ok := s.RemoveMax()
		require.True(t, ok)
		assert.Equal(t, fmt.Sprint(i), d.Contents)
	}
}
