package queueapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/rqueue/handler"
	"github.com/dmitrymomot/rqueue/pkg/binder"
	"github.com/dmitrymomot/rqueue/pkg/clientip"
	"github.com/dmitrymomot/rqueue/pkg/httpserver"
	"github.com/dmitrymomot/rqueue/pkg/logger"
	"github.com/dmitrymomot/rqueue/pkg/queue"
	"github.com/dmitrymomot/rqueue/pkg/ratelimiter"
	"github.com/dmitrymomot/rqueue/pkg/stats"
)

// Service exposes a queue.Store over HTTP.
type Service struct {
	store           *queue.Store
	stats           *stats.Registry
	log             *slog.Logger
	defaultPriority queue.Priority
	maxBodyBytes    int64
	debug           bool
	limiter         *ratelimiter.Bucket
	trustProxy      bool
}

// Option configures a Service.
type Option func(*Service)

// WithStats records retrievals, invalid submissions and request timings.
// The store records its own admissions.
func WithStats(r *stats.Registry) Option {
	return func(s *Service) { s.stats = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithDefaultPriority sets the priority of submissions that carry none.
func WithDefaultPriority(p queue.Priority) Option {
	return func(s *Service) { s.defaultPriority = p }
}

// WithMaxBodyBytes limits submit request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithDebug exposes GET /stats.
func WithDebug(enabled bool) Option {
	return func(s *Service) { s.debug = enabled }
}

// WithSubmitLimit throttles POST / per client IP.
func WithSubmitLimit(b *ratelimiter.Bucket) Option {
	return func(s *Service) { s.limiter = b }
}

// WithTrustProxyHeaders resolves client IPs from reverse proxy headers.
func WithTrustProxyHeaders(trust bool) Option {
	return func(s *Service) { s.trustProxy = trust }
}

// New returns a Service backed by store.
func New(store *queue.Store, opts ...Option) *Service {
	s := &Service{
		store:           store,
		log:             slog.Default(),
		defaultPriority: queue.DefaultPriority,
		maxBodyBytes:    binder.DefaultMaxJSONSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP handler:
//
//	POST /        submit an item
//	GET  /        retrieve the highest-priority item
//	GET  /stats   stats snapshot, debug only
//	GET  /healthz liveness probe
func (s *Service) Router() http.Handler {
	eh := handler.NewErrorHandler(s.log)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		httpserver.RequestID,
		clientip.Middleware(s.trustProxy),
		httpserver.AccessLog(s.log),
		httpserver.Timing(s.stats.RecordRequest),
	)

	var throttle []func(http.Handler) http.Handler
	if s.limiter != nil {
		throttle = append(throttle, ratelimiter.Middleware(s.limiter, clientip.Key,
			ratelimiter.WithDenyHandler(s.throttled),
			ratelimiter.WithStoreErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
				eh(handler.NewContext(w, r), err)
			}),
		))
	}

	r.With(throttle...).Post("/", handler.Wrap(s.submit,
		handler.WithBinders[handler.Context, submitRequest](
			binder.JSON(binder.WithMaxBytes(s.maxBodyBytes)),
			binder.Query(),
		),
		handler.WithErrorHandler[handler.Context, submitRequest](func(ctx handler.Context, err error) {
			if isBindError(err) {
				s.rejectInvalid()
			}
			eh(ctx, err)
		}),
	))

	r.Get("/", handler.Wrap(s.retrieve,
		handler.WithBinder[handler.Context, retrieveRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, retrieveRequest](eh),
	))

	r.Get("/healthz", httpserver.HealthCheckHandler(s.log))

	if s.debug && s.stats != nil {
		r.Get("/stats", handler.Wrap(s.snapshot,
			handler.WithErrorHandler[handler.Context, struct{}](eh),
		))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = notFound().Render(w, r)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = handler.JSONError(handler.ErrMethodNotAllowed).Render(w, r)
	})

	return r
}

func (s *Service) snapshot(_ handler.Context, _ struct{}) handler.Response {
	return handler.JSON(s.stats.Snapshot())
}

// isBindError reports whether err came from decoding the request rather than
// from rendering a response.
func isBindError(err error) bool {
	return errors.Is(err, binder.ErrUnsupportedMediaType) ||
		errors.Is(err, binder.ErrMissingContentType) ||
		errors.Is(err, binder.ErrFailedToParseJSON) ||
		errors.Is(err, binder.ErrBodyTooLarge) ||
		errors.Is(err, binder.ErrFailedToParseQuery)
}

func (s *Service) rejectInvalid() {
	s.stats.RecordSubmit(false, 0)
	s.stats.RecordRejection(stats.RejectedInvalid)
}

func (s *Service) throttled(w http.ResponseWriter, r *http.Request, res ratelimiter.Result) {
	s.log.WarnContext(r.Context(), "submission throttled",
		logger.Component("queueapi"),
		slog.Int("limit", res.Limit),
	)
	_ = handler.JSONError(handler.ErrTooManyRequests.WithMessage("submission rate limit exceeded")).Render(w, r)
}
