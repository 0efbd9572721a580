// Package initcmder provides the init command for initializing a local
// .sitesmith directory in the current working directory.
package initcmder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/sitesmith/pkg/config"
)

const (
	dirName = ".sitesmith"

	remoteTimeout = 15 * time.Second
)

const initLongDesc string = `Initialize a new .sitesmith/ directory in the current working directory.

Creates a local .sitesmith/ directory that takes precedence over the default
~/.sitesmith/ directory for configuration, credentials, the CLI session,
and the SQLite conversation store.

A config.toml is written with default values, or from a preset:

  local      SQLite conversation store, in-memory rate limiting
  stateless  no conversation store
  cluster    Redis store and rate limiting, Kafka events, JSON logs

--preset also accepts an http(s) URL to a config.toml to download.
An existing config.toml is only replaced when --preset is given.

Examples:
  sitesmith init
  sitesmith init --preset cluster
  sitesmith init --preset https://example.com/sitesmith/config.toml`

const initShortDesc string = "Initialize a local .sitesmith/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runInit(ctx, cmd.OutOrStdout(), preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Config preset ("+strings.Join(config.ValidPresetNames(), ", ")+") or URL to a config.toml")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, preset string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	var cfg *config.Config
	if preset != "" {
		cfg, err = resolvePreset(ctx, preset)
		if err != nil {
			return err
		}
	}

	existed := false
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		existed = true
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating .sitesmith directory: %w", err)
	}

	configPath := filepath.Join(dir, "config.toml")
	if cfg == nil {
		if _, err := os.Stat(configPath); err == nil {
			fmt.Fprintf(out, "Already initialized: %s\n", dir)
			return nil
		}
		cfg = config.NewDefaultConfig()
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("resolving config: %w", err)
	}
	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	if existed {
		fmt.Fprintf(out, "Updated config: %s\n", configPath)
		return nil
	}
	fmt.Fprintf(out, "Initialized .sitesmith directory: %s\n", dir)
	return nil
}

// resolvePreset returns the named preset, or downloads and parses a
// config.toml when preset is an http(s) URL.
func resolvePreset(ctx context.Context, preset string) (*config.Config, error) {
	if !strings.HasPrefix(preset, "http://") && !strings.HasPrefix(preset, "https://") {
		return config.PresetConfig(preset)
	}

	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, preset, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	cfg, err := config.ParseConfigTOML(data)
	if err != nil {
		return nil, fmt.Errorf("parsing remote config: %w", err)
	}
	return cfg, nil
}
