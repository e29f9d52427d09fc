package integrity

import "errors"

var (
	// ErrIntegrityMissing is returned when a digest is required but none was supplied.
	ErrIntegrityMissing = errors.New("integrity digest missing")

	// ErrIntegrityMismatch is returned when the supplied digest does not match the contents.
	ErrIntegrityMismatch = errors.New("integrity digest mismatch")

	// ErrUnknownAlgorithm is returned when the configured hash algorithm is not supported.
	ErrUnknownAlgorithm = errors.New("unknown integrity algorithm")
)
