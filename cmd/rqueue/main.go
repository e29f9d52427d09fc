// Command rqueue runs the prioritized notification queue service.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/rqueue/pkg/clientip"
	"github.com/dmitrymomot/rqueue/pkg/config"
	"github.com/dmitrymomot/rqueue/pkg/email"
	"github.com/dmitrymomot/rqueue/pkg/httpserver"
	"github.com/dmitrymomot/rqueue/pkg/integrity"
	"github.com/dmitrymomot/rqueue/pkg/logger"
	"github.com/dmitrymomot/rqueue/pkg/memlimit"
	"github.com/dmitrymomot/rqueue/pkg/queue"
	"github.com/dmitrymomot/rqueue/pkg/ratelimiter"
	"github.com/dmitrymomot/rqueue/pkg/stats"
	"github.com/dmitrymomot/rqueue/pkg/webhook"
	"github.com/dmitrymomot/rqueue/svc/queueapi"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("rqueue stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg config.Config
	if err := config.Load(&cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.AppEnv, cfg.ServiceName),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(httpserver.RequestIDExtractor(), clientip.Extractor()),
	)
	logger.SetAsDefault(log)

	verifier, err := integrity.New(cfg.Integrity)
	if err != nil {
		return err
	}

	acctOpts := []memlimit.Option{memlimit.WithLogger(log)}
	if cfg.Queue.ClampToSystem {
		acctOpts = append(acctOpts, memlimit.WithSystemClamp())
	}
	acct := memlimit.New(cfg.Queue.MaxBytes, acctOpts...)

	registry := stats.NewRegistry()
	store := queue.NewStore(acct, verifier,
		queue.WithStats(registry),
		queue.WithLogger(log),
	)

	apiOpts := []queueapi.Option{
		queueapi.WithStats(registry),
		queueapi.WithLogger(log),
		queueapi.WithDefaultPriority(queue.Priority(cfg.Queue.DefaultPriority)),
		queueapi.WithDebug(cfg.Debug),
		queueapi.WithTrustProxyHeaders(cfg.TrustProxyHeaders),
	}
	if cfg.RateLimit.Enabled() {
		limits := ratelimiter.NewMemoryStore()
		defer limits.Close()

		bucket, err := ratelimiter.NewBucket(limits, cfg.RateLimit)
		if err != nil {
			return err
		}
		apiOpts = append(apiOpts, queueapi.WithSubmitLimit(bucket))
	}
	api := queueapi.New(store, apiOpts...)
	server := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))

	log.Info("rqueue starting",
		slog.String("mode", string(cfg.Mode)),
		slog.Int64("ceiling_bytes", acct.Ceiling()),
		slog.Bool("integrity_required", verifier.Required()),
	)

	var dispatcher *queue.Dispatcher
	if cfg.Push() {
		if dispatcher, err = newDispatcher(cfg, store, registry, log); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(ctx, api.Router())
	})
	if dispatcher != nil {
		g.Go(dispatcher.Run(ctx))
	}

	return g.Wait()
}

func newDispatcher(cfg config.Config, store *queue.Store, registry *stats.Registry, log *slog.Logger) (*queue.Dispatcher, error) {
	sink, err := webhook.NewSink(cfg.Webhook, webhook.WithSinkLogger(log))
	if err != nil {
		return nil, err
	}

	opts := append(cfg.Dispatch.Options(),
		queue.WithDispatcherStats(registry),
		queue.WithDispatcherLogger(log),
	)

	if cfg.Dispatch.EnableFallback && cfg.Email.Enabled() {
		fallback, err := email.NewSinkFromConfig(cfg.Email)
		if err != nil {
			return nil, err
		}
		opts = append(opts, queue.WithFallback(fallback))
		log.Info("email fallback enabled", slog.Bool("postmark", cfg.Email.UsePostmark()))
	}

	return queue.NewDispatcher(store, sink, opts...)
}
