// Package config loads service configuration from the environment.
//
// Settings are declared as structs with github.com/caarlos0/env/v11 tags.
// Load parses a struct once per type and caches it; the first call also
// reads .env files via github.com/joho/godotenv:
//
//	.env.<APP_ENV>   per-environment overrides, e.g. QUEUE_MAX_BYTES
//	.env             shared defaults
//
// Real environment variables always take precedence over both files.
//
// Config aggregates the settings of every component (HTTP server, queue,
// dispatcher, integrity, webhook, email) and Validate rejects combinations
// the service cannot run with, such as push mode without a webhook URL.
package config
