// Package templatescmder provides the templates command for browsing the
// site template catalog.
package templatescmder

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/sitesmith/pkg/cliui"
	"github.com/papercomputeco/sitesmith/pkg/config"
	"github.com/papercomputeco/sitesmith/pkg/templates"
	"github.com/papercomputeco/sitesmith/pkg/utils"
)

type templatesCommander struct {
	configDir string
	path      string
	htmlOnly  bool

	out io.Writer
	tty bool
}

const templatesLongDesc string = `List the site templates, or show one template by id.

Templates come from the built-in catalog unless --templates (or templates.path
in config.toml) points at a catalog file, the same catalog "sitesmith serve"
uses.

Examples:
  sitesmith templates
  sitesmith templates landing-page
  sitesmith templates blog --html > index.html`

const templatesShortDesc string = "List or show site templates"

func NewTemplatesCmd() *cobra.Command {
	cmder := &templatesCommander{}

	cmd := &cobra.Command{
		Use:   "templates [id]",
		Short: templatesShortDesc,
		Long:  templatesLongDesc,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			if cmd.Flags().Changed("templates") {
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

			cmder.path = cfg.Templates.Path
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.out = cmd.OutOrStdout()
			if f, ok := cmder.out.(*os.File); ok {
				cmder.tty = term.IsTerminal(int(f.Fd()))
			}

			catalog, err := templates.Load(cmder.path)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				cmder.list(catalog)
				return nil
			}
			return cmder.show(catalog, args[0])
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagTemplates, &cmder.path)
	cmd.Flags().BoolVar(&cmder.htmlOnly, "html", false, "Print only the template's starter HTML")

	return cmd
}

func (c *templatesCommander) list(catalog *templates.Catalog) {
	fmt.Fprintf(c.out, "\n  %s\n\n", cliui.HeaderStyle.Render("Templates"))
	for _, s := range catalog.List() {
		fmt.Fprintf(c.out, "  %-16s %s\n", cliui.NameStyle.Render(s.ID), cliui.ValueStyle.Render(s.Name))
		if s.Description != "" {
			fmt.Fprintf(c.out, "  %-16s %s\n", "", cliui.DimStyle.Render(utils.Truncate(s.Description, 72)))
		}
	}
	fmt.Fprintln(c.out)
}

func (c *templatesCommander) show(catalog *templates.Catalog, id string) error {
	t, ok := catalog.Get(id)
	if !ok {
		return fmt.Errorf("template %q not found", id)
	}

	if c.htmlOnly {
		if t.HTML == "" {
			return fmt.Errorf("template %q has no starter HTML", id)
		}
		_, err := fmt.Fprint(c.out, t.HTML)
		return err
	}

	fmt.Fprintf(c.out, "\n  %s %s\n", cliui.NameStyle.Render(t.ID), cliui.ValueStyle.Render(t.Name))
	if t.Description != "" {
		fmt.Fprintf(c.out, "  %s\n", cliui.DimStyle.Render(t.Description))
	}

	fmt.Fprintf(c.out, "\n  %s\n", cliui.KeyStyle.Render("Prompt"))
	for _, line := range strings.Split(strings.TrimSpace(t.SystemPrompt), "\n") {
		fmt.Fprintf(c.out, "  %s\n", line)
	}

	if t.HTML == "" {
		fmt.Fprintln(c.out)
		return nil
	}

	fmt.Fprintf(c.out, "\n  %s\n", cliui.KeyStyle.Render("Starter HTML"))
	if !c.tty {
		fmt.Fprintln(c.out, t.HTML)
		return nil
	}

	rendered, err := cliui.RenderMarkdown(cliui.Fence(t.HTML, "html"))
	if err != nil {
		rendered = t.HTML
	}
	fmt.Fprint(c.out, rendered)
	return nil
}
