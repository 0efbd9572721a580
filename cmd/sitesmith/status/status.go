// Package statuscmder provides the status command for displaying the CLI
// session and the reachability of the configured gateway.
package statuscmder

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/sitesmith/pkg/client"
	"github.com/papercomputeco/sitesmith/pkg/cliui"
	"github.com/papercomputeco/sitesmith/pkg/config"
	"github.com/papercomputeco/sitesmith/pkg/dotdir"
	"github.com/papercomputeco/sitesmith/pkg/utils"
)

const healthTimeout = 5 * time.Second

const statusLongDesc string = `Show the current sitesmith session and gateway status.

Reads the local .sitesmith/ directory (or ~/.sitesmith/) to display the session
that "sitesmith ask" continues, then checks that the gateway at --target answers
its health endpoint.

If no session exists, the next ask starts a new conversation.

Examples:
  sitesmith status
  sitesmith status --target http://localhost:8080`

const statusShortDesc string = "Show session and gateway status"

type statusCommander struct {
	configDir string
	target    string

	out io.Writer
}

func NewStatusCmd() *cobra.Command {
	cmder := &statusCommander{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			if cmd.Flags().Changed("target") {
				return nil
			}

			cfger, err := config.NewConfiger(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.target = cfg.Client.Target
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return cmder.run(ctx)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagTarget, &cmder.target)

	return cmd
}

func (c *statusCommander) run(ctx context.Context) error {
	manager := dotdir.NewManager()

	state, err := manager.LoadSession(c.configDir)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	fmt.Fprintln(c.out)
	if state == nil {
		fmt.Fprintf(c.out, "  %s No session. Next ask will start a new conversation.\n", cliui.DimStyle.Render("●"))
	} else {
		fmt.Fprintf(c.out, "  %s  %s\n", cliui.KeyStyle.Render("Session: "), cliui.NameStyle.Render(state.SessionID))
		if !state.StartedAt.IsZero() {
			fmt.Fprintf(c.out, "  %s  %s\n", cliui.KeyStyle.Render("Started: "),
				cliui.ValueStyle.Render(state.StartedAt.Local().Format(time.RFC1123)))
		}
		if state.Provider != "" {
			fmt.Fprintf(c.out, "  %s  %s\n", cliui.KeyStyle.Render("Provider:"), cliui.ValueStyle.Render(state.Provider))
		}
		if state.TemplateID != "" {
			fmt.Fprintf(c.out, "  %s  %s\n", cliui.KeyStyle.Render("Template:"), cliui.ValueStyle.Render(state.TemplateID))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	health, err := client.New(c.target).Health(ctx)
	fmt.Fprintf(c.out, "\n  %s  %s ", cliui.KeyStyle.Render("Gateway: "), cliui.ValueStyle.Render(c.target))
	if err != nil {
		fmt.Fprintf(c.out, "%s %s\n\n", cliui.FailMark, cliui.DimStyle.Render(utils.Truncate(err.Error(), 72)))
		return nil
	}
	fmt.Fprintf(c.out, "%s %s\n\n", cliui.SuccessMark, cliui.DimStyle.Render(health.Status))
	return nil
}
