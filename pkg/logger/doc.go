// Package logger builds the service's *slog.Logger and defines the attribute
// keys shared by the queue, the dispatcher and the HTTP layer.
//
// New returns a JSON logger at info level on stdout. Options adjust it:
//
//   - WithEnvironment picks a preset from APP_ENV: text at debug level for
//     development, JSON at info level for staging and production. Both tag
//     records with service and env.
//   - WithLevelName applies LOG_LEVEL on top of the preset.
//   - WithContextExtractors adds request-scoped attributes, such as the
//     request id, to every record logged with a request context.
//
// Typical wiring:
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.AppEnv, cfg.ServiceName),
//		logger.WithLevelName(cfg.LogLevel),
//		logger.WithContextExtractors(httpserver.RequestIDExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.ErrorContext(ctx, "notification dropped",
//		logger.Event("notification_dropped"),
//		logger.ItemID(item.ID),
//		logger.Priority(int(item.Priority)),
//		logger.Error(err),
//	)
//
// Error and Errors return an empty attribute for nil errors, so they can be
// passed unconditionally.
package logger
