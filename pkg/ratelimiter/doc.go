// Package ratelimiter throttles producers with a token bucket per key.
//
// Each key starts with Capacity tokens; RefillRate tokens are added every
// RefillInterval up to Capacity. A request costs one token and is refused
// once the bucket is empty.
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	bucket, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       100,
//		RefillRate:     10,
//		RefillInterval: time.Second,
//	})
//	if err != nil {
//		return err
//	}
//
//	r.With(ratelimiter.Middleware(bucket, clientip.Key)).Post("/", submit)
//
// Middleware sets X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset on every response and Retry-After on refusals.
package ratelimiter
