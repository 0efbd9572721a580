// Package configcmder provides the config command for managing persistent
// sitesmith configuration stored in the .sitesmith/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent sitesmith configuration.

Configuration is stored as config.toml in the .sitesmith/ directory and provides
default values for command flags. CLI flags and environment variables always
take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  server.listen, server.static_dir, server.log_file, server.log_format, server.log_level,
  generation.max_tokens, generation.temperature,
  rate_limit.limit, rate_limit.store, rate_limit.sweep_interval,
  storage.driver, storage.sqlite_path, storage.postgres_dsn, storage.workers,
  redis.addr, redis.password, redis.db,
  events.driver, events.brokers, events.topic,
  templates.path, client.target

Use subcommands to get, set, or list configuration values:
  sitesmith config set <key> <value>    Set a configuration value
  sitesmith config get <key>            Get a configuration value
  sitesmith config list                 List all configuration values

Examples:
  sitesmith config set rate_limit.limit 20
  sitesmith config set storage.driver postgres
  sitesmith config get server.listen
  sitesmith config list`

const configShortDesc string = "Manage persistent sitesmith configuration"

// redacted keys are never printed in full.
var redacted = map[string]bool{
	"redis.password": true,
}

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func display(key, value string) string {
	if redacted[key] && value != "" {
		return "<redacted>"
	}
	return value
}
