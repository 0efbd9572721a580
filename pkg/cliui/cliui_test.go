package cliui_test

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sitesmith/pkg/cliui"
)

var _ = Describe("FormatDuration", func() {
	It("uses milliseconds under a second", func() {
		Expect(cliui.FormatDuration(250 * time.Millisecond)).To(Equal("250ms"))
	})

	It("uses tenths of a second above a second", func() {
		Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
	})
})

var _ = Describe("Step", func() {
	It("returns the function's error and prints the failure mark", func() {
		var buf bytes.Buffer
		boom := errors.New("boom")

		err := cliui.Step(&buf, "contacting gateway", func() error { return boom })
		Expect(err).To(MatchError(boom))
		Expect(buf.String()).To(ContainSubstring("contacting gateway"))
		Expect(buf.String()).To(ContainSubstring(cliui.FailMark))
	})
})

var _ = Describe("Fence", func() {
	It("wraps bare code", func() {
		Expect(cliui.Fence("<h1>hi</h1>\n", "html")).To(Equal("```html\n<h1>hi</h1>\n```\n"))
	})

	It("leaves fenced markdown alone", func() {
		md := "Here:\n```html\n<p></p>\n```"
		Expect(cliui.Fence(md, "html")).To(Equal(md))
	})
})

var _ = Describe("RenderMarkdown", func() {
	It("renders text content", func() {
		out, err := cliui.RenderMarkdown("# Title")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Title"))
	})
})
