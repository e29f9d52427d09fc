// Package memlimit accounts for the aggregate byte size of queued items
// against a fixed ceiling.
//
// Admission is rejection-based: TryAdmit either reserves the requested bytes
// or fails immediately with ErrQueueFull. It never blocks, so producers learn
// about backpressure right away instead of stalling.
//
//	acct := memlimit.New(64 << 20)
//
//	ticket, err := acct.TryAdmit(int64(len(payload)))
//	if err != nil {
//		var rej *memlimit.RejectedError
//		if errors.As(err, &rej) {
//			// rej.Current, rej.Ceiling
//		}
//		return err
//	}
//	// ... later, when the item leaves the queue
//	ticket.Release()
//
// The check-and-increment in TryAdmit is a single compare-and-swap loop, so
// concurrent callers can never push the total above the ceiling.
package memlimit
