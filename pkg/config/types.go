package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent sitesmith configuration stored as
// config.toml in the .sitesmith/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version    int              `toml:"version"`
	Server     ServerConfig     `toml:"server"`
	Generation GenerationConfig `toml:"generation"`
	RateLimit  RateLimitConfig  `toml:"rate_limit"`
	Storage    StorageConfig    `toml:"storage"`
	Redis      RedisConfig      `toml:"redis"`
	Events     EventsConfig     `toml:"events"`
	Templates  TemplatesConfig  `toml:"templates"`
	Client     ClientConfig     `toml:"client"`
}

// ServerConfig holds HTTP gateway and logging settings.
type ServerConfig struct {
	Listen    string `toml:"listen,omitempty"`
	StaticDir string `toml:"static_dir,omitempty"`
	LogFile   string `toml:"log_file,omitempty"`
	LogFormat string `toml:"log_format,omitempty"`
	LogLevel  string `toml:"log_level,omitempty"`
}

// GenerationConfig holds the defaults applied when a request sets no
// generation options.
type GenerationConfig struct {
	MaxTokens   int     `toml:"max_tokens,omitempty"`
	Temperature float64 `toml:"temperature,omitempty"`
}

// RateLimitConfig holds the per-client limiter settings.
type RateLimitConfig struct {
	// Limit is requests per client per hour. 0 disables limiting.
	Limit int `toml:"limit"`

	// Store is "memory" or "redis".
	Store string `toml:"store,omitempty"`

	SweepInterval string `toml:"sweep_interval,omitempty"`
}

// StorageConfig selects the conversation store.
type StorageConfig struct {
	// Driver is one of "none", "memory", "sqlite", "postgres", "redis".
	Driver      string `toml:"driver,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
	Workers     uint   `toml:"workers,omitempty"`
}

// RedisConfig is shared by the redis conversation store and the redis
// rate-limit store.
type RedisConfig struct {
	Addr     string `toml:"addr,omitempty"`
	Password string `toml:"password,omitempty"`
	DB       int    `toml:"db,omitempty"`
}

// EventsConfig selects where generation events are published.
type EventsConfig struct {
	// Driver is "none" or "kafka".
	Driver  string `toml:"driver,omitempty"`
	Brokers string `toml:"brokers,omitempty"`
	Topic   string `toml:"topic,omitempty"`
}

// TemplatesConfig points at an on-disk template catalog. Empty uses the
// built-in catalog.
type TemplatesConfig struct {
	Path string `toml:"path,omitempty"`
}

// ClientConfig holds settings for CLI commands that talk to a running
// gateway (e.g. sitesmith ask). Target is a full URL.
type ClientConfig struct {
	Target string `toml:"target,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func intKey(name string, field func(c *Config) *int) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = n
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"server.listen":     stringKey(func(c *Config) *string { return &c.Server.Listen }),
	"server.static_dir": stringKey(func(c *Config) *string { return &c.Server.StaticDir }),
	"server.log_file":   stringKey(func(c *Config) *string { return &c.Server.LogFile }),
	"server.log_format": stringKey(func(c *Config) *string { return &c.Server.LogFormat }),
	"server.log_level":  stringKey(func(c *Config) *string { return &c.Server.LogLevel }),

	"generation.max_tokens": intKey("generation.max_tokens", func(c *Config) *int { return &c.Generation.MaxTokens }),
	"generation.temperature": {
		get: func(c *Config) string { return strconv.FormatFloat(c.Generation.Temperature, 'f', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for generation.temperature: %w", err)
			}
			if f < 0 || f > 2 {
				return fmt.Errorf("invalid value for generation.temperature: %v is outside [0, 2]", f)
			}
			c.Generation.Temperature = f
			return nil
		},
	},

	"rate_limit.limit":          intKey("rate_limit.limit", func(c *Config) *int { return &c.RateLimit.Limit }),
	"rate_limit.store":          stringKey(func(c *Config) *string { return &c.RateLimit.Store }),
	"rate_limit.sweep_interval": stringKey(func(c *Config) *string { return &c.RateLimit.SweepInterval }),

	"storage.driver":       stringKey(func(c *Config) *string { return &c.Storage.Driver }),
	"storage.sqlite_path":  stringKey(func(c *Config) *string { return &c.Storage.SQLitePath }),
	"storage.postgres_dsn": stringKey(func(c *Config) *string { return &c.Storage.PostgresDSN }),
	"storage.workers": {
		get: func(c *Config) string { return strconv.FormatUint(uint64(c.Storage.Workers), 10) },
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return fmt.Errorf("invalid value for storage.workers: %w", err)
			}
			c.Storage.Workers = uint(n)
			return nil
		},
	},

	"redis.addr":     stringKey(func(c *Config) *string { return &c.Redis.Addr }),
	"redis.password": stringKey(func(c *Config) *string { return &c.Redis.Password }),
	"redis.db":       intKey("redis.db", func(c *Config) *int { return &c.Redis.DB }),

	"events.driver":  stringKey(func(c *Config) *string { return &c.Events.Driver }),
	"events.brokers": stringKey(func(c *Config) *string { return &c.Events.Brokers }),
	"events.topic":   stringKey(func(c *Config) *string { return &c.Events.Topic }),

	"templates.path": stringKey(func(c *Config) *string { return &c.Templates.Path }),

	"client.target": stringKey(func(c *Config) *string { return &c.Client.Target }),
}
