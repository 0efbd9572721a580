// Package providerscmder provides the providers command, which reports the
// locally resolved provider configuration and can probe a single provider.
package providerscmder

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/sitesmith/gateway"
	"github.com/papercomputeco/sitesmith/pkg/cliui"
	"github.com/papercomputeco/sitesmith/pkg/credentials"
	"github.com/papercomputeco/sitesmith/pkg/llm/provider"
	"github.com/papercomputeco/sitesmith/pkg/logger"
	"github.com/papercomputeco/sitesmith/pkg/utils"
)

type providersCommander struct {
	configDir string
	test      string
	model     string
	debug     bool

	keys       provider.KeySource
	newAdapter provider.Factory
	out        io.Writer
}

const providersLongDesc string = `Show which AI providers are configured on this machine.

Keys and model overrides are resolved the same way "sitesmith serve" resolves
them: environment variables first, then credentials stored with
"sitesmith auth". Providers are listed in fallback order.

Use --test to send a short probe prompt to one provider.

Examples:
  sitesmith providers
  sitesmith providers --test groq
  sitesmith providers --test openai --model gpt-4o-mini`

const providersShortDesc string = "Show configured AI providers"

func NewProvidersCmd() *cobra.Command {
	cmder := &providersCommander{}

	cmd := &cobra.Command{
		Use:   "providers",
		Short: providersShortDesc,
		Long:  providersLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.debug, _ = cmd.Flags().GetBool("debug")

			mgr, err := credentials.NewManager(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading credentials: %w", err)
			}
			creds, err := mgr.Load()
			if err != nil {
				return fmt.Errorf("loading credentials: %w", err)
			}

			cmder.keys = credentials.NewResolver(credentials.WithStored(creds))
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&cmder.test, "test", "", "Provider id to send a probe prompt to")
	cmd.Flags().StringVarP(&cmder.model, "model", "m", "", "Model to use with --test")

	return cmd
}

func (c *providersCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	gw, err := gateway.New(gateway.Config{
		Keys:       c.keys,
		NewAdapter: c.newAdapter,
		Logger:     logger.New(logger.WithDebug(c.debug)),
	})
	if err != nil {
		return err
	}
	defer gw.Close()

	if c.test != "" {
		return c.probe(ctx, gw)
	}

	c.printTable(gw.Environment())
	return nil
}

func (c *providersCommander) printTable(statuses []gateway.ProviderStatus) {
	fmt.Fprintf(c.out, "\n  %s\n\n", cliui.HeaderStyle.Render("Providers"))
	fmt.Fprintf(c.out, "  %-3s %-12s %-5s %-30s %s\n",
		"", cliui.KeyStyle.Render("ID"), cliui.KeyStyle.Render("KEY"),
		cliui.KeyStyle.Render("MODEL"), cliui.KeyStyle.Render("BASE URL"))

	configured := 0
	for i, s := range statuses {
		if s.APIKeyConfigured {
			configured++
		}
		model := s.Model
		if s.ModelConfigured {
			model += " *"
		}
		baseURL := s.BaseURL
		if baseURL == "" {
			baseURL = "(sdk default)"
		}
		fmt.Fprintf(c.out, "  %-3d %-12s %-5s %-30s %s\n",
			i+1,
			cliui.NameStyle.Render(s.ID),
			cliui.Check(s.APIKeyConfigured),
			cliui.ValueStyle.Render(utils.Truncate(model, 30)),
			cliui.DimStyle.Render(baseURL),
		)
	}

	fmt.Fprintln(c.out)
	if configured == 0 {
		fmt.Fprintf(c.out, "  %s no provider has a key; run \"sitesmith auth <provider>\" or set its env var\n\n",
			cliui.WarnStyle.Render("!"))
		return
	}
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render(
		fmt.Sprintf("%d of %d configured; * marks a model override", configured, len(statuses))))
}

func (c *providersCommander) probe(ctx context.Context, gw *gateway.Gateway) error {
	var result *gateway.TestResult
	err := cliui.Step(c.out, "Testing "+c.test, func() error {
		var err error
		result, err = gw.TestConnection(ctx, c.test, c.model)
		return err
	})
	if err != nil {
		return fmt.Errorf("connection test failed for %s: %w", c.test, err)
	}

	fmt.Fprintf(c.out, "  %s %s\n  %s %s\n\n",
		cliui.KeyStyle.Render("model:"), cliui.ValueStyle.Render(result.Model),
		cliui.KeyStyle.Render("reply:"), cliui.ValueStyle.Render(utils.Truncate(strings.TrimSpace(result.Response), 80)),
	)
	return nil
}
