package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/sitesmith/pkg/dotdir"
)

// bareEnv lists the unprefixed environment variables recognized alongside
// SITESMITH_<SECTION>_<KEY>. The prefixed form wins when both are set.
var bareEnv = map[string]string{
	"server.listen":          "PORT",
	"generation.max_tokens":  "DEFAULT_MAX_TOKENS",
	"generation.temperature": "DEFAULT_TEMPERATURE",
	"rate_limit.limit":       "IP_RATE_LIMIT",
	"redis.addr":             "REDIS_ADDR",
}

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the SITESMITH_ prefix plus the bare variables in bareEnv.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (SITESMITH_SERVER_LISTEN, PORT, IP_RATE_LIMIT, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables.
	v.SetEnvPrefix("SITESMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range bareEnv {
		prefixed := "SITESMITH_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	return v, nil
}

// FromViper decodes the resolved values into a Config.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Server: ServerConfig{
			Listen:    ListenAddr(v.GetString("server.listen")),
			StaticDir: v.GetString("server.static_dir"),
			LogFile:   v.GetString("server.log_file"),
			LogFormat: v.GetString("server.log_format"),
			LogLevel:  v.GetString("server.log_level"),
		},
		Generation: GenerationConfig{
			MaxTokens:   v.GetInt("generation.max_tokens"),
			Temperature: v.GetFloat64("generation.temperature"),
		},
		RateLimit: RateLimitConfig{
			Limit:         v.GetInt("rate_limit.limit"),
			Store:         v.GetString("rate_limit.store"),
			SweepInterval: v.GetString("rate_limit.sweep_interval"),
		},
		Storage: StorageConfig{
			Driver:      v.GetString("storage.driver"),
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
			Workers:     v.GetUint("storage.workers"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Events: EventsConfig{
			Driver:  v.GetString("events.driver"),
			Brokers: v.GetString("events.brokers"),
			Topic:   v.GetString("events.topic"),
		},
		Templates: TemplatesConfig{
			Path: v.GetString("templates.path"),
		},
		Client: ClientConfig{
			Target: v.GetString("client.target"),
		},
	}
}

// ListenAddr turns a bare port (as PORT supplies it) into a listen address.
func ListenAddr(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, ":") {
		return s
	}
	return ":" + s
}

// Brokers splits a comma-separated broker list.
func Brokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Server
	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.static_dir", d.Server.StaticDir)
	v.SetDefault("server.log_file", d.Server.LogFile)
	v.SetDefault("server.log_format", d.Server.LogFormat)
	v.SetDefault("server.log_level", d.Server.LogLevel)

	// Generation
	v.SetDefault("generation.max_tokens", d.Generation.MaxTokens)
	v.SetDefault("generation.temperature", d.Generation.Temperature)

	// Rate limit
	v.SetDefault("rate_limit.limit", d.RateLimit.Limit)
	v.SetDefault("rate_limit.store", d.RateLimit.Store)
	v.SetDefault("rate_limit.sweep_interval", d.RateLimit.SweepInterval)

	// Storage
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)
	v.SetDefault("storage.workers", d.Storage.Workers)

	// Redis
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)

	// Events
	v.SetDefault("events.driver", d.Events.Driver)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)

	// Templates
	v.SetDefault("templates.path", d.Templates.Path)

	// Client
	v.SetDefault("client.target", d.Client.Target)
}
