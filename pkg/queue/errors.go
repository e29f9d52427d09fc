package queue

import "errors"

var (
	// ErrEmptyContents is returned when a submission has no contents.
	ErrEmptyContents = errors.New("contents cannot be empty")

	// ErrStoreNil is returned when a dispatcher is created without a store.
	ErrStoreNil = errors.New("store cannot be nil")

	// ErrSinkNil is returned when a dispatcher is created without a sink.
	ErrSinkNil = errors.New("sink cannot be nil")

	// ErrDispatcherRunning is returned by Start on a running dispatcher.
	ErrDispatcherRunning = errors.New("dispatcher already started")

	// ErrDispatcherStopped is returned by Stop on a dispatcher that is not running.
	ErrDispatcherStopped = errors.New("dispatcher not started")

	// ErrSinkPanic wraps a recovered panic raised by a sink.
	ErrSinkPanic = errors.New("panic in sink")
)
