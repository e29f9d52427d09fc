// Package integrity verifies caller-supplied content digests before a
// notification is admitted to the queue.
//
// A producer may attach a hex digest of the notification contents. The digest
// is computed over the contents followed by an optional server-side shared
// secret, so a producer that knows the secret proves both integrity and
// possession of the secret:
//
//	digest = hex(H(contents ++ secret))
//
// H is SHA-256 by default; BLAKE2b-256 is available for deployments that
// prefer it. Comparison is case-insensitive and constant-time.
//
// # Usage
//
//	v, err := integrity.New(integrity.Config{
//		Required:     true,
//		SharedSecret: "s3cret",
//	})
//	if err != nil {
//		// unknown algorithm
//	}
//
//	if err := v.Verify([]byte(contents), digest); err != nil {
//		switch {
//		case errors.Is(err, integrity.ErrIntegrityMissing):
//			// digest required but not supplied
//		case errors.Is(err, integrity.ErrIntegrityMismatch):
//			// digest does not match the contents
//		}
//	}
//
// Verification is a pure function of its inputs and has no side effects, so
// it is safe to call outside of any lock.
package integrity
