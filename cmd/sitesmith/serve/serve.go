// Package servecmder provides the serve command that runs the gateway.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/sitesmith/api"
	"github.com/papercomputeco/sitesmith/cmd/sitesmith/sqlitepath"
	"github.com/papercomputeco/sitesmith/gateway"
	"github.com/papercomputeco/sitesmith/pkg/config"
	"github.com/papercomputeco/sitesmith/pkg/credentials"
	"github.com/papercomputeco/sitesmith/pkg/eventstream"
	"github.com/papercomputeco/sitesmith/pkg/eventstream/kafka"
	"github.com/papercomputeco/sitesmith/pkg/eventstream/nop"
	"github.com/papercomputeco/sitesmith/pkg/llm/provider"
	"github.com/papercomputeco/sitesmith/pkg/logger"
	"github.com/papercomputeco/sitesmith/pkg/ratelimit"
	"github.com/papercomputeco/sitesmith/pkg/storage"
	"github.com/papercomputeco/sitesmith/pkg/storage/inmemory"
	"github.com/papercomputeco/sitesmith/pkg/storage/postgres"
	redisstorage "github.com/papercomputeco/sitesmith/pkg/storage/redis"
	"github.com/papercomputeco/sitesmith/pkg/storage/sqlite"
	"github.com/papercomputeco/sitesmith/pkg/templates"
)

const (
	rateLimitKeyPrefix = "sitesmith:ratelimit:"
	clientName         = "sitesmith"
)

// ServeCommander holds the resolved configuration and the resources opened
// while starting the gateway.
type ServeCommander struct {
	configDir string
	debug     bool
	cfg       *config.Config
	logger    *slog.Logger

	redis   redis.UniversalClient
	closers []func() error
}

// flagKeys are the registry flags serve exposes.
var flagKeys = []string{
	config.FlagListen,
	config.FlagStaticDir,
	config.FlagLogFile,
	config.FlagLogFormat,
	config.FlagLogLevel,
	config.FlagRateLimit,
	config.FlagRateStore,
	config.FlagStorage,
	config.FlagSQLite,
	config.FlagPostgresDSN,
	config.FlagRedisAddr,
	config.FlagEventsDriver,
	config.FlagKafkaBrokers,
	config.FlagTemplates,
	config.FlagMaxTokens,
	config.FlagStorageWorker,
}

const serveLongDesc string = `Run the sitesmith gateway.

Serves the site-builder API (/api/ask-ai, /api/check-env, /api/templates, ...)
and, when --static-dir is set, the built editor bundle at /.

Provider credentials come from {PROVIDER}_API_KEY environment variables or
from credentials stored with "sitesmith auth". Every flag can also be set in
config.toml or through SITESMITH_<SECTION>_<KEY> environment variables;
PORT, IP_RATE_LIMIT, DEFAULT_MAX_TOKENS, and DEFAULT_TEMPERATURE are honored.

Examples:
  sitesmith serve
  sitesmith serve --listen :8080 --rate-limit 30
  sitesmith serve --storage redis --redis-addr localhost:6379
  sitesmith serve --storage postgres --postgres-dsn postgres://localhost/sitesmith`

const serveShortDesc string = "Run the sitesmith gateway"

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, flagKeys)
			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	// Flag values are read back through viper after binding.
	for _, key := range flagKeys {
		switch key {
		case config.FlagRateLimit, config.FlagMaxTokens:
			config.AddIntFlag(cmd, config.Flags, key, new(int))
		case config.FlagStorageWorker:
			config.AddUintFlag(cmd, config.Flags, key, new(uint))
		default:
			config.AddStringFlag(cmd, config.Flags, key, new(string))
		}
	}

	return cmd
}

func (c *ServeCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log, err := c.createLogger()
	if err != nil {
		return err
	}
	c.logger = log
	defer c.closeAll()

	keys, err := c.createKeySource()
	if err != nil {
		return err
	}

	catalog, err := c.loadCatalog()
	if err != nil {
		return err
	}

	driver, err := c.createDriver(ctx)
	if err != nil {
		return err
	}

	publisher, err := c.createPublisher()
	if err != nil {
		return err
	}

	limiter, err := c.createLimiter(ctx)
	if err != nil {
		return err
	}

	temperature := c.cfg.Generation.Temperature
	gw, err := gateway.New(gateway.Config{
		Registry:    provider.DefaultRegistry(),
		Keys:        keys,
		Driver:      driver,
		Catalog:     catalog,
		Publisher:   publisher,
		MaxTokens:   c.cfg.Generation.MaxTokens,
		Temperature: &temperature,
		Workers:     c.cfg.Storage.Workers,
		Logger:      c.logger.With("component", "gateway"),
	})
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	server, err := api.NewServer(api.Config{
		ListenAddr: c.cfg.Server.Listen,
		StaticDir:  c.cfg.Server.StaticDir,
	}, gw, limiter, catalog, c.logger.With("component", "api"))
	if err != nil {
		gw.Close()
		return fmt.Errorf("creating api server: %w", err)
	}

	c.logConfigured(gw)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	select {
	case err = <-errChan:
	case <-ctx.Done():
		c.logger.Info("received signal, shutting down")
	}

	if shutdownErr := server.Shutdown(); shutdownErr != nil {
		c.logger.Error("api shutdown failed", "error", shutdownErr)
	}
	// Drain persistence only after the server stops accepting requests.
	gw.Close()

	return err
}

func (c *ServeCommander) createLogger() (*slog.Logger, error) {
	opts := []logger.Option{
		logger.WithFormat(c.cfg.Server.LogFormat),
		logger.WithLevel(c.cfg.Server.LogLevel),
		logger.WithWriter(os.Stderr),
	}
	if c.debug {
		opts = append(opts, logger.WithDebug(true))
	}
	base := logger.New(opts...)

	if c.cfg.Server.LogFile == "" {
		return base, nil
	}

	f, err := os.OpenFile(c.cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	c.closers = append(c.closers, f.Close)

	fileLog := logger.New(
		logger.WithJSON(true),
		logger.WithLevel(c.cfg.Server.LogLevel),
		logger.WithDebug(c.debug),
		logger.WithWriter(f),
	)
	return logger.Multi(base, fileLog), nil
}

func (c *ServeCommander) createKeySource() (*credentials.Resolver, error) {
	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	stored, err := mgr.Load()
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	return credentials.NewResolver(credentials.WithStored(stored)), nil
}

func (c *ServeCommander) loadCatalog() (*templates.Catalog, error) {
	if c.cfg.Templates.Path == "" {
		return templates.Default(), nil
	}

	catalog, err := templates.Load(c.cfg.Templates.Path)
	if err != nil {
		return nil, err
	}
	c.logger.Info("loaded template catalog", "path", c.cfg.Templates.Path, "templates", catalog.Len())
	return catalog, nil
}

// createDriver opens the configured conversation store. A nil driver runs
// the gateway stateless.
func (c *ServeCommander) createDriver(ctx context.Context) (storage.Driver, error) {
	var (
		driver storage.Driver
		err    error
	)

	switch c.cfg.Storage.Driver {
	case "none", "":
		c.logger.Info("conversation storage disabled, running stateless")
		return nil, nil

	case "memory":
		driver = inmemory.NewDriver()

	case "sqlite":
		path, pathErr := sqlitepath.ResolveSQLitePath(c.cfg.Storage.SQLitePath, c.configDir)
		if pathErr != nil {
			return nil, pathErr
		}
		driver, err = sqlite.NewDriver(ctx, path)
		if err == nil {
			c.logger.Info("using SQLite storage", "path", path)
		}

	case "postgres":
		if c.cfg.Storage.PostgresDSN == "" {
			return nil, errors.New("storage.postgres_dsn is required for the postgres driver")
		}
		driver, err = postgres.NewDriver(ctx, c.cfg.Storage.PostgresDSN)

	case "redis":
		driver, err = redisstorage.NewDriver(ctx, c.redisClient())

	default:
		return nil, fmt.Errorf("unknown storage driver %q (available: none, memory, sqlite, postgres, redis)", c.cfg.Storage.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", c.cfg.Storage.Driver, err)
	}

	c.logger.Info("conversation storage ready", "driver", c.cfg.Storage.Driver)
	c.closers = append(c.closers, driver.Close)
	return driver, nil
}

func (c *ServeCommander) createPublisher() (eventstream.Publisher, error) {
	switch c.cfg.Events.Driver {
	case "none", "":
		return nop.NewPublisher(), nil

	case "kafka":
		pub, err := kafka.NewPublisher(kafka.Config{
			Brokers:  config.Brokers(c.cfg.Events.Brokers),
			Topic:    c.cfg.Events.Topic,
			ClientID: clientName,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		c.closers = append(c.closers, pub.Close)
		c.logger.Info("publishing generation events to kafka",
			"brokers", c.cfg.Events.Brokers,
			"topic", c.cfg.Events.Topic,
		)
		return pub, nil

	default:
		return nil, fmt.Errorf("unknown events driver %q (available: none, kafka)", c.cfg.Events.Driver)
	}
}

func (c *ServeCommander) createLimiter(ctx context.Context) (*ratelimit.Limiter, error) {
	var store ratelimit.Store

	switch c.cfg.RateLimit.Store {
	case "memory", "":
		store = ratelimit.NewMemoryStore()
	case "redis":
		store = ratelimit.NewFallbackStore(
			ratelimit.NewRedisStore(c.redisClient(), rateLimitKeyPrefix),
			ratelimit.NewMemoryStore(),
			c.logger.With("component", "ratelimit"),
		)
	default:
		return nil, fmt.Errorf("unknown rate limit store %q (available: memory, redis)", c.cfg.RateLimit.Store)
	}

	limiter := ratelimit.New(store, c.cfg.RateLimit.Limit,
		ratelimit.WithLogger(c.logger.With("component", "ratelimit")),
	)
	c.closers = append(c.closers, limiter.Close)

	if limiter.Enabled() {
		limiter.StartSweeper(ctx, c.cfg.SweepInterval())
	}
	return limiter, nil
}

// redisClient lazily creates the client shared by the redis store and the
// redis rate limiter. Only closeAll closes it; neither consumer does.
func (c *ServeCommander) redisClient() redis.UniversalClient {
	if c.redis == nil {
		c.redis = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:      []string{c.cfg.Redis.Addr},
			Password:   c.cfg.Redis.Password,
			DB:         c.cfg.Redis.DB,
			ClientName: clientName,
		})
		c.closers = append(c.closers, c.redis.Close)
	}
	return c.redis
}

func (c *ServeCommander) logConfigured(gw *gateway.Gateway) {
	var configured []string
	for _, st := range gw.Environment() {
		if st.APIKeyConfigured {
			configured = append(configured, st.ID)
		}
	}
	if len(configured) == 0 {
		c.logger.Warn("no AI providers configured; set at least one {PROVIDER}_API_KEY")
	}

	c.logger.Info("starting sitesmith gateway",
		"listen", c.cfg.Server.Listen,
		"providers", configured,
		"rate_limit", c.cfg.RateLimit.Limit,
		"storage", c.cfg.Storage.Driver,
	)
}

// closeAll releases resources in reverse order of creation.
func (c *ServeCommander) closeAll() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.logger.Warn("close failed", "error", err)
		}
	}
}
