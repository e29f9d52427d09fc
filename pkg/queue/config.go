package queue

import "time"

// Config holds the store configuration.
type Config struct {
	MaxBytes        int64 `env:"QUEUE_MAX_BYTES" envDefault:"67108864"`
	DefaultPriority uint8 `env:"QUEUE_DEFAULT_PRIORITY" envDefault:"10"`

	// ClampToSystem caps MaxBytes at half of the host's physical memory.
	ClampToSystem bool `env:"QUEUE_CLAMP_TO_SYSTEM" envDefault:"true"`
}

// DispatchConfig holds the push-mode dispatch loop configuration.
type DispatchConfig struct {
	IdleDelay       time.Duration `env:"DISPATCH_IDLE_DELAY" envDefault:"15s"`
	BusyDelay       time.Duration `env:"DISPATCH_BUSY_DELAY" envDefault:"100ms"`
	DeliveryTimeout time.Duration `env:"DISPATCH_DELIVERY_TIMEOUT" envDefault:"10s"`

	// EnableFallback routes failed deliveries to the email sink when one is configured.
	EnableFallback bool `env:"DISPATCH_ENABLED_FALLBACK" envDefault:"true"`
}

// Options converts the config into dispatcher options.
func (c DispatchConfig) Options() []DispatcherOption {
	return []DispatcherOption{
		WithIdleDelay(c.IdleDelay),
		WithBusyDelay(c.BusyDelay),
		WithDeliveryTimeout(c.DeliveryTimeout),
	}
}
