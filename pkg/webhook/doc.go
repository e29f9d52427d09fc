// Package webhook posts queued notifications to an HTTP endpoint.
//
// Sender performs the HTTP work: one POST per attempt bounded by a timeout,
// optional retries with backoff, optional HMAC-SHA256 signing and an optional
// per-endpoint CircuitBreaker. Sink adapts a Sender to queue.Sink so the
// dispatch loop can push items to a configured URL.
//
// # Delivery semantics
//
// Any non-2xx response, network error or timeout is a failure. The default is
// a single attempt; WithMaxRetries enables retries for transient failures only.
// 4xx responses other than 408, 425 and 429 are permanent and never retried.
//
// # Signing
//
// With a secret configured every request carries:
//
//	X-Rqueue-Signature: hex(HMAC-SHA256(secret, "<timestamp>.<body>"))
//	X-Rqueue-Timestamp: unix seconds
//	X-Rqueue-Delivery:  item id, stable across retries
//
// Receivers verify with:
//
//	sig, err := webhook.ExtractSignatureHeaders(r.Header)
//	if err == nil {
//		err = webhook.VerifySignature(secret, body, sig, 5*time.Minute)
//	}
//
// # Usage
//
//	sink, err := webhook.NewSink(webhook.Config{
//		URL:     "https://notify.internal/hooks/queue",
//		Secret:  os.Getenv("PUSH_WEBHOOK_SECRET"),
//		Timeout: 10 * time.Second,
//	})
//	dispatcher, err := queue.NewDispatcher(store, sink)
package webhook
