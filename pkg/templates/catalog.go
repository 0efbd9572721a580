// Package templates holds the site template catalog: named system-prompt
// fragments and starter documents, loaded once at startup.
package templates

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed catalog.toml
var builtinCatalog []byte

// Template is one catalog entry.
type Template struct {
	ID           string `toml:"id" json:"id"`
	Name         string `toml:"name" json:"name"`
	Description  string `toml:"description" json:"description"`
	SystemPrompt string `toml:"system_prompt" json:"systemPrompt"`
	HTML         string `toml:"html" json:"html"`
}

// Summary is the public listing form of a Template.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog is an immutable, ordered set of templates.
type Catalog struct {
	ordered []Template
	byID    map[string]int
}

type catalogFile struct {
	Templates []Template `toml:"templates"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(builtinCatalog)
	if err != nil {
		panic(fmt.Sprintf("built-in template catalog: %v", err))
	}
	return c
}

// Load reads a catalog from a TOML file. An empty path returns Default().
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template catalog: %w", err)
	}

	return Parse(data)
}

// Parse decodes a catalog from TOML.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing template catalog: %w", err)
	}

	c := &Catalog{
		ordered: make([]Template, 0, len(f.Templates)),
		byID:    make(map[string]int, len(f.Templates)),
	}
	for _, t := range f.Templates {
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" {
			return nil, errors.New("template missing id")
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		c.byID[t.ID] = len(c.ordered)
		c.ordered = append(c.ordered, t)
	}

	return c, nil
}

// List returns id, name, and description for every template in declaration
// order. Prompts and starter documents are not included.
func (c *Catalog) List() []Summary {
	out := make([]Summary, len(c.ordered))
	for i, t := range c.ordered {
		out[i] = Summary{ID: t.ID, Name: t.Name, Description: t.Description}
	}
	return out
}

// Get returns the template with the given id.
func (c *Catalog) Get(id string) (Template, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Template{}, false
	}
	return c.ordered[idx], true
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	return len(c.ordered)
}
