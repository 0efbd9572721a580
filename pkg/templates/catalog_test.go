package templates_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sitesmith/pkg/templates"
)

var _ = Describe("Catalog", func() {
	Describe("Default", func() {
		var c *templates.Catalog

		BeforeEach(func() {
			c = templates.Default()
		})

		It("lists the built-in templates in order", func() {
			var ids []string
			for _, s := range c.List() {
				ids = append(ids, s.ID)
			}
			Expect(ids).To(Equal([]string{"blank", "landing-page", "portfolio", "dashboard", "blog"}))
		})

		It("gives every template a name, description, and prompt", func() {
			for _, s := range c.List() {
				t, ok := c.Get(s.ID)
				Expect(ok).To(BeTrue())
				Expect(t.Name).NotTo(BeEmpty(), s.ID)
				Expect(t.Description).NotTo(BeEmpty(), s.ID)
				Expect(t.SystemPrompt).NotTo(BeEmpty(), s.ID)
			}
		})

		It("returns the full record from Get", func() {
			t, ok := c.Get("landing-page")
			Expect(ok).To(BeTrue())
			Expect(t.SystemPrompt).To(ContainSubstring("landing page"))
			Expect(t.HTML).To(ContainSubstring("<!DOCTYPE html>"))
		})

		It("allows a template without a starter document", func() {
			t, ok := c.Get("blog")
			Expect(ok).To(BeTrue())
			Expect(t.HTML).To(BeEmpty())
		})

		It("reports unknown ids as not found", func() {
			_, ok := c.Get("doesnotexist")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Parse", func() {
		It("rejects duplicate ids", func() {
			_, err := templates.Parse([]byte(`
[[templates]]
id = "a"
[[templates]]
id = "a"
`))
			Expect(err).To(MatchError(ContainSubstring("duplicate template id")))
		})

		It("rejects a template without an id", func() {
			_, err := templates.Parse([]byte("[[templates]]\nname = \"x\"\n"))
			Expect(err).To(HaveOccurred())
		})

		It("rejects malformed TOML", func() {
			_, err := templates.Parse([]byte("[[[nope"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Load", func() {
		It("reads a catalog from disk", func() {
			path := filepath.Join(GinkgoT().TempDir(), "catalog.toml")
			Expect(os.WriteFile(path, []byte(`
[[templates]]
id = "docs"
name = "Docs"
description = "Documentation site"
system_prompt = "Build a docs site."
`), 0o600)).To(Succeed())

			c, err := templates.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Len()).To(Equal(1))
			Expect(c.List()[0]).To(Equal(templates.Summary{ID: "docs", Name: "Docs", Description: "Documentation site"}))
		})

		It("falls back to the built-in catalog for an empty path", func() {
			c, err := templates.Load("")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Len()).To(Equal(5))
		})

		It("returns an error for a missing file", func() {
			_, err := templates.Load(filepath.Join(GinkgoT().TempDir(), "missing.toml"))
			Expect(err).To(HaveOccurred())
		})
	})
})
