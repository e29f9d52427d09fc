package memlimit

import (
	"errors"
	"fmt"
)

// ErrQueueFull is returned when admitting an item would exceed the ceiling.
var ErrQueueFull = errors.New("queue memory ceiling reached")

// RejectedError carries the accounting state at the moment of rejection so
// callers can decide how long to back off.
type RejectedError struct {
	Attempted int64
	Current   int64
	Ceiling   int64
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %d bytes requested, %d of %d in use",
		ErrQueueFull.Error(), e.Attempted, e.Current, e.Ceiling)
}

// Unwrap makes errors.Is(err, ErrQueueFull) work.
func (e *RejectedError) Unwrap() error {
	return ErrQueueFull
}
