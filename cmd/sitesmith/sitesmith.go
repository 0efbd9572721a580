// Package sitesmithcmder
package sitesmithcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/sitesmith/cmd/sitesmith/ask"
	authcmder "github.com/papercomputeco/sitesmith/cmd/sitesmith/auth"
	configcmder "github.com/papercomputeco/sitesmith/cmd/sitesmith/config"
	initcmder "github.com/papercomputeco/sitesmith/cmd/sitesmith/init"
	providerscmder "github.com/papercomputeco/sitesmith/cmd/sitesmith/providers"
	servecmder "github.com/papercomputeco/sitesmith/cmd/sitesmith/serve"
	statuscmder "github.com/papercomputeco/sitesmith/cmd/sitesmith/status"
	templatescmder "github.com/papercomputeco/sitesmith/cmd/sitesmith/templates"
	versioncmder "github.com/papercomputeco/sitesmith/cmd/version"
)

const sitesmithLongDesc string = `sitesmith is the backend gateway for an AI web-site builder.

It routes page generation requests across OpenAI, Gemini, OpenRouter, xAI,
Groq, and Perplexity with ordered fallback, remembers each session's
conversation, and rate limits clients.

Run the gateway:
  sitesmith serve

Talk to a running gateway:
  sitesmith ask "a portfolio for a landscape photographer"
  sitesmith status

Set up providers:
  sitesmith auth <provider>
  sitesmith providers`

const sitesmithShortDesc string = "sitesmith - AI site builder gateway"

func NewSitesmithCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "sitesmith",
		Short:        sitesmithShortDesc,
		Long:         sitesmithLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .sitesmith/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(providerscmder.NewProvidersCmd())
	cmd.AddCommand(templatescmder.NewTemplatesCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
