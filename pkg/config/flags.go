package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --target
// on both "sitesmith ask" and "sitesmith status").
type Flag struct {
	// Name is the long flag name (e.g. "listen").
	Name string

	// Shorthand is the one-letter short flag (e.g. "l"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "server.listen").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddIntFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagListen        = "listen"
	FlagStaticDir     = "static-dir"
	FlagLogFile       = "log-file"
	FlagLogFormat     = "log-format"
	FlagLogLevel      = "log-level"
	FlagRateLimit     = "rate-limit"
	FlagRateStore     = "rate-limit-store"
	FlagStorage       = "storage"
	FlagSQLite        = "sqlite"
	FlagPostgresDSN   = "postgres-dsn"
	FlagRedisAddr     = "redis-addr"
	FlagEventsDriver  = "events"
	FlagKafkaBrokers  = "kafka-brokers"
	FlagTemplates     = "templates"
	FlagTarget        = "target"
	FlagMaxTokens     = "max-tokens"
	FlagStorageWorker = "workers"
)

// Flags is the registry of every shared flag.
var Flags = FlagSet{
	FlagListen:        {Name: "listen", Shorthand: "l", ViperKey: "server.listen", Description: "Address for the gateway to listen on"},
	FlagStaticDir:     {Name: "static-dir", ViperKey: "server.static_dir", Description: "Directory holding the built editor bundle to serve at /"},
	FlagLogFile:       {Name: "log-file", ViperKey: "server.log_file", Description: "Also write logs to this file"},
	FlagLogFormat:     {Name: "log-format", ViperKey: "server.log_format", Description: "Log format: text, pretty, or json"},
	FlagLogLevel:      {Name: "log-level", ViperKey: "server.log_level", Description: "Log level: debug, info, warn, or error"},
	FlagRateLimit:     {Name: "rate-limit", ViperKey: "rate_limit.limit", Description: "Requests per client per hour (0 disables limiting)"},
	FlagRateStore:     {Name: "rate-limit-store", ViperKey: "rate_limit.store", Description: "Rate limit store: memory or redis"},
	FlagStorage:       {Name: "storage", ViperKey: "storage.driver", Description: "Conversation store: none, memory, sqlite, postgres, or redis"},
	FlagSQLite:        {Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path", Description: "Path to the SQLite database (default: .sitesmith/sitesmith.sqlite)"},
	FlagPostgresDSN:   {Name: "postgres-dsn", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL connection string"},
	FlagRedisAddr:     {Name: "redis-addr", ViperKey: "redis.addr", Description: "Redis address for the redis store and rate limiter"},
	FlagEventsDriver:  {Name: "events", ViperKey: "events.driver", Description: "Generation event publisher: none or kafka"},
	FlagKafkaBrokers:  {Name: "kafka-brokers", ViperKey: "events.brokers", Description: "Comma-separated Kafka broker addresses"},
	FlagTemplates:     {Name: "templates", ViperKey: "templates.path", Description: "Path to a template catalog TOML file"},
	FlagTarget:        {Name: "target", Shorthand: "t", ViperKey: "client.target", Description: "URL of a running sitesmith gateway"},
	FlagMaxTokens:     {Name: "max-tokens", ViperKey: "generation.max_tokens", Description: "Default max output tokens"},
	FlagStorageWorker: {Name: "workers", ViperKey: "storage.workers", Description: "Number of persistence workers"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *int) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultInt returns the default int value for a viper key from NewDefaultConfig.
func defaultInt(viperKey string) int {
	v := viper.New()
	setViperDefaults(v)
	return v.GetInt(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
