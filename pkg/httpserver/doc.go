// Package httpserver wraps net/http with context-driven graceful shutdown
// and the middleware shared by the service's HTTP surface.
//
// Server.Run listens on the configured address and blocks until the context
// is canceled; in-flight requests then get ShutdownTimeout to finish. Signal
// handling belongs to the caller, typically via signal.NotifyContext:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Middleware:
//
//   - RequestID assigns X-Request-ID and exposes it via RequestIDFromContext
//     and RequestIDExtractor for log records.
//   - AccessLog writes one slog record per request with status and duration.
//   - Timing hands each request's duration to a recorder such as the stats
//     registry.
//
// HealthCheckHandler serves liveness and readiness probes.
//
// Listen failures are wrapped with ErrStart and shutdown failures with
// ErrShutdown; use errors.Is to tell them apart.
package httpserver
