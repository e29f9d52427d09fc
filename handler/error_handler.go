package handler

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/rqueue/pkg/logger"
)

// NewErrorHandler renders errors with JSONError and logs them against the
// request context: 5xx at ERROR, other statuses at WARN.
func NewErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx Context, err error) {
		status, detail, _ := ClassifyError(err)

		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}

		r := ctx.Request()
		log.LogAttrs(r.Context(), level, "request error",
			logger.Component("http"),
			logger.Error(err),
			slog.Int("status", status),
			slog.String("code", detail.Code),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		if renderErr := JSONError(err).Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.LogAttrs(r.Context(), slog.LevelError, "failed to render error response",
				logger.Component("http"),
				logger.Error(renderErr),
			)
		}
	}
}
