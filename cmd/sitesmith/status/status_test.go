package statuscmder_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	statuscmder "github.com/papercomputeco/sitesmith/cmd/sitesmith/status"
	"github.com/papercomputeco/sitesmith/pkg/dotdir"
)

var _ = Describe("NewStatusCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := statuscmder.NewStatusCmd()
		Expect(cmd.Use).To(Equal("status"))
	})

	It("accepts zero arguments", func() {
		cmd := statuscmder.NewStatusCmd()
		err := cmd.Args(cmd, []string{})
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects any arguments", func() {
		cmd := statuscmder.NewStatusCmd()
		err := cmd.Args(cmd, []string{"extra"})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Status command execution", func() {
	var (
		tmpDir string
		server *httptest.Server
		out    *bytes.Buffer
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "sitesmith-status-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, tmpDir)

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/health" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write([]byte(`{"ok":true,"status":"healthy","timestamp":"2025-01-01T00:00:00Z"}`))
		}))
		DeferCleanup(server.Close)

		out = &bytes.Buffer{}
	})

	newCmd := func(target string) *cobra.Command {
		cmd := statuscmder.NewStatusCmd()
		cmd.PersistentFlags().String("config-dir", "", "")
		cmd.SetOut(out)
		cmd.SetArgs([]string{"--config-dir", filepath.Join(tmpDir), "--target", target})
		return cmd
	}

	It("reports a missing session and a healthy gateway", func() {
		Expect(newCmd(server.URL).Execute()).To(Succeed())

		Expect(out.String()).To(ContainSubstring("No session"))
		Expect(out.String()).To(ContainSubstring("healthy"))
	})

	It("shows the stored session", func() {
		err := dotdir.NewManager().SaveSession(&dotdir.SessionState{
			SessionID:  "sess-1234",
			Provider:   "groq",
			TemplateID: "portfolio",
			StartedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		}, tmpDir)
		Expect(err).NotTo(HaveOccurred())

		Expect(newCmd(server.URL).Execute()).To(Succeed())

		Expect(out.String()).To(ContainSubstring("sess-1234"))
		Expect(out.String()).To(ContainSubstring("groq"))
		Expect(out.String()).To(ContainSubstring("portfolio"))
	})

	It("does not fail when the gateway is unreachable", func() {
		Expect(newCmd("http://127.0.0.1:1").Execute()).To(Succeed())

		Expect(out.String()).To(ContainSubstring("contacting gateway"))
	})
})
