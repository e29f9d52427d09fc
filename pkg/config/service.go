package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/dmitrymomot/rqueue/pkg/email"
	"github.com/dmitrymomot/rqueue/pkg/httpserver"
	"github.com/dmitrymomot/rqueue/pkg/integrity"
	"github.com/dmitrymomot/rqueue/pkg/queue"
	"github.com/dmitrymomot/rqueue/pkg/ratelimiter"
	"github.com/dmitrymomot/rqueue/pkg/webhook"
)

// Mode selects how queued items leave the service.
type Mode string

const (
	// ModePull serves items only to explicit retrieval requests.
	ModePull Mode = "pull"
	// ModePush additionally forwards items to the push webhook.
	ModePush Mode = "push"
)

// Config aggregates every setting the service reads at start-up.
type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"rqueue"`
	Debug       bool   `env:"DEBUG" envDefault:"false"`
	Mode        Mode   `env:"QUEUE_MODE" envDefault:"pull"`
	LogLevel    string `env:"LOG_LEVEL"`

	// TrustProxyHeaders resolves client IPs from X-Forwarded-For and friends.
	TrustProxyHeaders bool `env:"HTTP_TRUST_PROXY_HEADERS" envDefault:"false"`

	HTTP      httpserver.Config
	Queue     queue.Config
	Dispatch  queue.DispatchConfig
	Integrity integrity.Config
	Webhook   webhook.Config
	Email     email.Config
	RateLimit ratelimiter.Config
}

// Validate reports configuration combinations the service cannot run with.
func (c Config) Validate() error {
	var errs []error

	switch c.Mode {
	case ModePull:
	case ModePush:
		if c.Webhook.URL == "" {
			errs = append(errs, errors.New("QUEUE_MODE=push requires PUSH_WEBHOOK_URL"))
		} else if u, err := url.Parse(c.Webhook.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("PUSH_WEBHOOK_URL %q is not an absolute http(s) URL", c.Webhook.URL))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown QUEUE_MODE %q, expected pull or push", c.Mode))
	}

	if c.Queue.MaxBytes < 0 {
		errs = append(errs, fmt.Errorf("QUEUE_MAX_BYTES must not be negative, got %d", c.Queue.MaxBytes))
	}
	if c.RateLimit.Enabled() && (c.RateLimit.RefillRate <= 0 || c.RateLimit.RefillInterval <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_REFILL_RATE and RATE_LIMIT_REFILL_INTERVAL must be positive when RATE_LIMIT_CAPACITY is set"))
	}
	if _, err := integrity.New(c.Integrity); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
}

// Push reports whether the dispatch loop should run.
func (c Config) Push() bool {
	return c.Mode == ModePush
}
