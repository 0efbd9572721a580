package gateway

import (
	"log/slog"

	"github.com/papercomputeco/sitesmith/pkg/eventstream"
	"github.com/papercomputeco/sitesmith/pkg/llm/provider"
	"github.com/papercomputeco/sitesmith/pkg/storage"
	"github.com/papercomputeco/sitesmith/pkg/templates"
)

// Config wires the gateway's collaborators.
type Config struct {
	// Registry is the provider catalog. Defaults to provider.DefaultRegistry().
	Registry *provider.Registry

	// Keys resolves credentials and model overrides. Required.
	Keys provider.KeySource

	// NewAdapter builds adapters. Defaults to provider.New.
	NewAdapter provider.Factory

	// Driver is the conversation store. Nil runs the gateway stateless.
	Driver storage.Driver

	// Catalog supplies template prompt fragments. Defaults to templates.Default().
	Catalog *templates.Catalog

	// Publisher receives generation events. Nil disables publishing.
	Publisher eventstream.Publisher

	// MaxTokens is the default max output tokens when a request sets none.
	// Zero means llm.DefaultMaxTokens.
	MaxTokens int

	// Temperature is the default temperature when a request sets none.
	// Nil means llm.DefaultTemperature.
	Temperature *float64

	// Workers and QueueSize size the persistence pool. Zero keeps the pool defaults.
	Workers   uint
	QueueSize uint

	Logger *slog.Logger
}
