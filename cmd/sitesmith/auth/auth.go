// Package authcmder provides the auth command for storing API credentials.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/sitesmith/pkg/cliui"
	"github.com/papercomputeco/sitesmith/pkg/credentials"
	"github.com/papercomputeco/sitesmith/pkg/llm/provider"
)

const authLongDesc string = `Store API credentials for LLM providers.

Credentials are stored in credentials.toml in the .sitesmith/ directory and
used by "sitesmith serve" and "sitesmith providers" for any provider whose
environment variable is unset. Environment variables always win.

Use --model to store a model override for a provider instead of a key.

Supported providers: openai, gemini, openrouter, xai, groq, perplexity

Examples:
  sitesmith auth openai                  Prompt for OpenAI API key
  sitesmith auth groq --model llama-3.1-8b-instant
  sitesmith auth --list                  List stored credentials
  sitesmith auth --remove openai         Remove stored OpenAI credentials
  echo $KEY | sitesmith auth gemini      Pipe API key from stdin`

const authShortDesc string = "Store API credentials for LLM providers"

func NewAuthCmd() *cobra.Command {
	var listFlag bool
	var removeFlag string
	var modelFlag string

	registry := provider.DefaultRegistry()

	cmd := &cobra.Command{
		Use:   "auth [provider]",
		Short: authShortDesc,
		Long:  authLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			out := cmd.OutOrStdout()

			switch {
			case listFlag:
				return runList(out, registry, configDir)
			case removeFlag != "":
				return runRemove(out, removeFlag, configDir)
			default:
				if len(args) == 0 {
					return fmt.Errorf("provider argument required\n\nSupported providers: %s",
						strings.Join(registry.IDs(), ", "))
				}

				cfg, err := registry.Lookup(strings.ToLower(strings.TrimSpace(args[0])))
				if err != nil {
					return fmt.Errorf("unsupported provider: %q\n\nSupported providers: %s",
						args[0], strings.Join(registry.IDs(), ", "))
				}

				if modelFlag != "" {
					return runModel(out, cfg, modelFlag, configDir)
				}
				return runAuth(out, cmd.InOrStdin(), cfg, configDir)
			}
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return registry.IDs(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	cmd.Flags().BoolVar(&listFlag, "list", false, "List stored credentials")
	cmd.Flags().StringVar(&removeFlag, "remove", "", "Remove stored credentials for a provider")
	cmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Store a model override instead of an API key")

	return cmd
}

func runAuth(out io.Writer, in io.Reader, cfg provider.Config, configDir string) error {
	apiKey, err := readAPIKey(out, in, cfg)
	if err != nil {
		return err
	}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return errors.New("API key cannot be empty")
	}

	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.SetKey(cfg.ID, apiKey); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n  %s Stored %s credentials %s\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(cfg.ID),
		cliui.DimStyle.Render("(used when "+cfg.KeyEnv+" is unset)"),
	)

	if cfg.ID == provider.OpenAI && strings.HasPrefix(apiKey, "sk-proj-") {
		fmt.Fprintf(out, "\n  %s Project keys (sk-proj-...) can be restricted to specific models.\n",
			cliui.WarnStyle.Render("!"))
		fmt.Fprintf(out, "  %s Run 'sitesmith providers --test openai' to check access.\n",
			cliui.WarnStyle.Render(" "))
	}

	fmt.Fprintln(out)
	return nil
}

func runModel(out io.Writer, cfg provider.Config, model, configDir string) error {
	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.SetModel(cfg.ID, strings.TrimSpace(model)); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n  %s Stored %s model %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(cfg.ID),
		cliui.ValueStyle.Render(model),
	)
	return nil
}

func runList(out io.Writer, registry *provider.Registry, configDir string) error {
	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	creds, err := mgr.Load()
	if err != nil {
		return err
	}

	providers, err := mgr.ListProviders()
	if err != nil {
		return err
	}

	if len(providers) == 0 {
		fmt.Fprintf(out, "\n  %s No stored credentials.\n", cliui.DimStyle.Render("●"))
		fmt.Fprintf(out, "  Use 'sitesmith auth <provider>' to store credentials.\n")
		fmt.Fprintf(out, "  Supported providers: %s\n\n", strings.Join(registry.IDs(), ", "))
		return nil
	}

	fmt.Fprintf(out, "\n  %s\n\n", cliui.HeaderStyle.Render("Stored credentials"))
	for _, p := range providers {
		stored := creds.Providers[p]

		detail := ""
		if cfg, err := registry.Lookup(p); err == nil {
			detail = "→ " + cfg.KeyEnv
		}
		if stored.Model != "" {
			detail += "  model " + stored.Model
		}

		fmt.Fprintf(out, "  %s  %s  %s\n",
			cliui.Check(stored.APIKey != ""),
			cliui.NameStyle.Render(p),
			cliui.DimStyle.Render(strings.TrimSpace(detail)),
		)
	}
	fmt.Fprintln(out)

	return nil
}

func runRemove(out io.Writer, name, configDir string) error {
	name = strings.ToLower(strings.TrimSpace(name))

	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.RemoveKey(name); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n  %s Removed %s credentials.\n\n", cliui.SuccessMark, cliui.NameStyle.Render(name))

	return nil
}

// readAPIKey reads an API key from in. Piped input is read up to the first
// newline; a terminal gets a prompt with hidden input.
func readAPIKey(out io.Writer, in io.Reader, cfg provider.Config) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(out, "Enter API key for %s (%s): ", cfg.Name, cfg.KeyEnv)

		keyBytes, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out) // newline after hidden input
		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}
		return string(keyBytes), nil
	}

	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return "", errors.New("no input received on stdin")
}
