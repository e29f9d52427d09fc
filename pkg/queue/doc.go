// Package queue implements an in-memory priority queue for notifications with
// a hard memory ceiling, optional integrity verification and a push-mode
// dispatch loop.
//
// The package is organised around two components:
//
//   - Store: holds admitted items ordered by priority, then admission order
//   - Dispatcher: drains the Store into a Sink, falling back to a second Sink on failure
//
// # Ordering
//
// RemoveMax always returns the item with the highest priority. Items of equal
// priority come out in the order they were admitted. Both rules hold under any
// number of concurrent producers and consumers because every insert and removal
// is serialised by a single lock.
//
// # Admission
//
// Insert runs three checks before an item becomes visible:
//
//  1. Contents must be non-empty.
//  2. The digest is verified by the integrity.Verifier, outside the lock.
//  3. The item's byte size is reserved with the memlimit.Accountant, under the lock.
//
// A rejected item leaves no trace in the Store. Removal releases the
// reserved bytes in the same critical section.
//
// # Usage
//
//	acct := memlimit.New(64 << 20)
//	store := queue.NewStore(acct, verifier)
//
//	item, err := store.Insert(ctx, queue.Submission{
//		Contents: `{"title":"Deploy finished"}`,
//		Priority: 20,
//	})
//
//	if d, ok := store.RemoveMax(); ok {
//		fmt.Println(d.ID, d.Priority, d.Elapsed)
//	}
//
// Push mode:
//
//	d := queue.NewDispatcher(store, webhookSink,
//		queue.WithFallback(emailSink),
//		queue.WithIdleDelay(15*time.Second),
//	)
//	g.Go(d.Run(ctx))
//
// # Error Handling
//
// Rejections are reported with sentinel errors that can be checked with
// errors.Is: ErrEmptyContents, integrity.ErrIntegrityMissing,
// integrity.ErrIntegrityMismatch and memlimit.ErrQueueFull. Queue-full
// rejections unwrap to *memlimit.RejectedError with the current usage.
package queue
