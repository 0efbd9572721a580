// Package askcmder provides the ask command, a one-shot client for the
// generation endpoint of a running sitesmith gateway.
package askcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/sitesmith/pkg/client"
	"github.com/papercomputeco/sitesmith/pkg/cliui"
	"github.com/papercomputeco/sitesmith/pkg/config"
	"github.com/papercomputeco/sitesmith/pkg/dotdir"
)

var metaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

type askCommander struct {
	configDir string
	target    string

	provider    string
	model       string
	template    string
	stack       string
	maxTokens   int
	temperature float64
	newSession  bool
	stateless   bool
	raw         bool

	out io.Writer
	tty bool
}

const askLongDesc string = `Ask a running sitesmith gateway to generate a web page.

The prompt is sent to the gateway's /api/ask-ai endpoint. Unless --stateless is
given, the command keeps a session id in .sitesmith/session.json so follow-up
asks continue the same conversation; use --new to start over.

On a terminal the generated code is rendered as highlighted markdown. When the
output is piped, or with --raw, the response is printed as is.

Examples:
  sitesmith ask "a landing page for a coffee shop"
  sitesmith ask --template portfolio --stack tailwind "make it dark themed"
  sitesmith ask --provider groq --model llama-3.1-8b-instant "add a footer"
  sitesmith ask --new --raw "a pricing table" > pricing.html`

const askShortDesc string = "Generate a page through a running gateway"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <prompt>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
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
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.out = cmd.OutOrStdout()
			if f, ok := cmder.out.(*os.File); ok {
				cmder.tty = term.IsTerminal(int(f.Fd()))
			}

			req := client.AskRequest{
				Prompt:     strings.Join(args, " "),
				Provider:   cmder.provider,
				Model:      cmder.model,
				TemplateID: cmder.template,
				Stack:      cmder.stack,
			}
			if cmd.Flags().Changed("max-tokens") {
				req.MaxTokens = &cmder.maxTokens
			}
			if cmd.Flags().Changed("temperature") {
				req.Temperature = &cmder.temperature
			}

			return cmder.run(cmd.Context(), req)
		},
	}

	defaults := config.NewDefaultConfig()
	config.AddStringFlag(cmd, config.Flags, config.FlagTarget, &cmder.target)
	cmd.Flags().StringVarP(&cmder.provider, "provider", "p", "", "Preferred provider id (tried first)")
	cmd.Flags().StringVarP(&cmder.model, "model", "m", "", "Model to request")
	cmd.Flags().StringVar(&cmder.template, "template", "", "Template id to start from")
	cmd.Flags().StringVar(&cmder.stack, "stack", "", "Target stack hint (e.g. tailwind, react)")
	cmd.Flags().IntVar(&cmder.maxTokens, "max-tokens", defaults.Generation.MaxTokens, "Maximum tokens to generate")
	cmd.Flags().Float64Var(&cmder.temperature, "temperature", defaults.Generation.Temperature, "Sampling temperature (0-2)")
	cmd.Flags().BoolVar(&cmder.newSession, "new", false, "Start a new conversation")
	cmd.Flags().BoolVar(&cmder.stateless, "stateless", false, "Do not send or store a session id")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the response without rendering")

	return cmd
}

func (c *askCommander) run(ctx context.Context, req client.AskRequest) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return errors.New("prompt must not be empty")
	}

	manager := dotdir.NewManager()

	var session *dotdir.SessionState
	if !c.stateless {
		var err error
		session, err = c.session(manager)
		if err != nil {
			return err
		}
		req.SessionID = session.SessionID
	}

	api := client.New(c.target)

	var resp *client.AskResponse
	call := func() error {
		var err error
		resp, err = api.Ask(ctx, req)
		return err
	}

	var err error
	if c.tty {
		err = cliui.Step(os.Stderr, "Generating", call)
	} else {
		err = call()
	}
	if err != nil {
		return describe(err)
	}

	if session != nil {
		session.Provider = resp.ProviderUsed
		if req.TemplateID != "" {
			session.TemplateID = req.TemplateID
		}
		if err := manager.SaveSession(session, c.configDir); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
	}

	return c.print(resp)
}

// session returns the stored session, or a fresh one when none exists or
// --new was given.
func (c *askCommander) session(manager *dotdir.Manager) (*dotdir.SessionState, error) {
	if !c.newSession {
		state, err := manager.LoadSession(c.configDir)
		if err != nil {
			return nil, fmt.Errorf("loading session: %w", err)
		}
		if state != nil && state.SessionID != "" {
			return state, nil
		}
	}

	return &dotdir.SessionState{
		SessionID: uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}, nil
}

func (c *askCommander) print(resp *client.AskResponse) error {
	if !c.tty || c.raw {
		_, err := fmt.Fprintln(c.out, resp.Response)
		return err
	}

	rendered, err := cliui.RenderMarkdown(cliui.Fence(resp.Response, "html"))
	if err != nil {
		rendered = resp.Response
	}

	fmt.Fprint(c.out, rendered)
	fmt.Fprintf(c.out, "  %s\n\n", metaStyle.Render(fmt.Sprintf("%s · %s · %d tokens",
		resp.ProviderUsed, resp.ModelUsed, resp.TokensUsed)))
	return nil
}

// describe turns gateway error envelopes into CLI-friendly errors.
func describe(err error) error {
	var apiErr *client.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch {
	case apiErr.WaitTimeMinutes > 0:
		return fmt.Errorf("rate limited: try again in %d minute(s)", apiErr.WaitTimeMinutes)
	case len(apiErr.ProvidersAttempted) > 0:
		return fmt.Errorf("generation failed after trying %s: %s",
			strings.Join(apiErr.ProvidersAttempted, ", "), apiErr.Message)
	default:
		return fmt.Errorf("gateway error: %w", apiErr)
	}
}
