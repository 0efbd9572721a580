package config

import (
	"time"

	"github.com/papercomputeco/sitesmith/pkg/llm"
	"github.com/papercomputeco/sitesmith/pkg/ratelimit"
)

const (
	defaultListen    = ":3000"
	defaultLogFormat = "text"
	defaultLogLevel  = "info"

	defaultRateLimitStore = "memory"
	defaultStorageDriver  = "sqlite"
	defaultRedisAddr      = "localhost:6379"
	defaultEventsDriver   = "none"
	defaultEventsTopic    = "sitesmith.generations"

	defaultClientTarget = "http://localhost:3000"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Server: ServerConfig{
			Listen:    defaultListen,
			LogFormat: defaultLogFormat,
			LogLevel:  defaultLogLevel,
		},
		Generation: GenerationConfig{
			MaxTokens:   llm.DefaultMaxTokens,
			Temperature: llm.DefaultTemperature,
		},
		RateLimit: RateLimitConfig{
			Store:         defaultRateLimitStore,
			SweepInterval: ratelimit.DefaultSweepInterval.String(),
		},
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
		},
		Redis: RedisConfig{
			Addr: defaultRedisAddr,
		},
		Events: EventsConfig{
			Driver: defaultEventsDriver,
			Topic:  defaultEventsTopic,
		},
		Client: ClientConfig{
			Target: defaultClientTarget,
		},
	}
}

// SweepInterval parses RateLimit.SweepInterval, falling back to the
// limiter default when it is empty or invalid.
func (c *Config) SweepInterval() time.Duration {
	d, err := time.ParseDuration(c.RateLimit.SweepInterval)
	if err != nil || d <= 0 {
		return ratelimit.DefaultSweepInterval
	}
	return d
}
