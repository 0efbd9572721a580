package initcmder_test

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	initcmder "github.com/papercomputeco/sitesmith/cmd/sitesmith/init"
	"github.com/papercomputeco/sitesmith/pkg/config"
)

var _ = Describe("NewInitCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := initcmder.NewInitCmd()
		Expect(cmd.Use).To(Equal("init"))
	})

	It("accepts zero arguments", func() {
		cmd := initcmder.NewInitCmd()
		err := cmd.Args(cmd, []string{})
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects any arguments", func() {
		cmd := initcmder.NewInitCmd()
		err := cmd.Args(cmd, []string{"extra"})
		Expect(err).To(HaveOccurred())
	})

	It("has a --preset flag", func() {
		cmd := initcmder.NewInitCmd()
		f := cmd.Flags().Lookup("preset")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal(""))
	})
})

var _ = Describe("Init command execution", func() {
	var (
		tmpDir  string
		origDir string
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "sitesmith-init-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		err = os.Chdir(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		err := os.Chdir(origDir)
		Expect(err).NotTo(HaveOccurred())
		os.RemoveAll(tmpDir)
	})

	newCmd := func(args ...string) *cobra.Command {
		cmd := initcmder.NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		return cmd
	}

	It("creates a .sitesmith directory in the current directory", func() {
		Expect(newCmd().Execute()).To(Succeed())

		info, err := os.Stat(filepath.Join(tmpDir, ".sitesmith"))
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())
	})

	It("creates a config.toml with default values", func() {
		Expect(newCmd().Execute()).To(Succeed())

		cfg := loadConfig(tmpDir)
		Expect(cfg.Version).To(Equal(config.CurrentV))
		Expect(cfg.Server.Listen).To(Equal(":3000"))
		Expect(cfg.Storage.Driver).To(Equal("sqlite"))
		Expect(cfg.Generation.MaxTokens).To(Equal(8000))
	})

	It("succeeds when .sitesmith directory already exists", func() {
		Expect(os.MkdirAll(filepath.Join(tmpDir, ".sitesmith"), 0o755)).To(Succeed())

		Expect(newCmd().Execute()).To(Succeed())

		info, err := os.Stat(filepath.Join(tmpDir, ".sitesmith"))
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())
	})

	It("does not overwrite existing contents when already initialized", func() {
		dir := filepath.Join(tmpDir, ".sitesmith")
		Expect(os.MkdirAll(dir, 0o755)).To(Succeed())

		sessionFile := filepath.Join(dir, "session.json")
		Expect(os.WriteFile(sessionFile, []byte(`{"session_id":"abc"}`), 0o644)).To(Succeed())
		configFile := filepath.Join(dir, "config.toml")
		Expect(os.WriteFile(configFile, []byte("[server]\nlisten = \":9000\"\n"), 0o644)).To(Succeed())

		Expect(newCmd().Execute()).To(Succeed())

		data, err := os.ReadFile(sessionFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(`{"session_id":"abc"}`))
		Expect(loadConfig(tmpDir).Server.Listen).To(Equal(":9000"))
	})

	Describe("--preset with named presets", func() {
		It("creates config.toml with the local preset", func() {
			Expect(newCmd("--preset", "local").Execute()).To(Succeed())

			cfg := loadConfig(tmpDir)
			Expect(cfg.Storage.Driver).To(Equal("sqlite"))
			Expect(cfg.RateLimit.Store).To(Equal("memory"))
		})

		It("creates config.toml with the stateless preset", func() {
			Expect(newCmd("--preset", "stateless").Execute()).To(Succeed())

			Expect(loadConfig(tmpDir).Storage.Driver).To(Equal("none"))
		})

		It("creates config.toml with the cluster preset", func() {
			Expect(newCmd("--preset", "cluster").Execute()).To(Succeed())

			cfg := loadConfig(tmpDir)
			Expect(cfg.Storage.Driver).To(Equal("redis"))
			Expect(cfg.RateLimit.Store).To(Equal("redis"))
			Expect(cfg.RateLimit.Limit).To(Equal(100))
			Expect(cfg.Events.Driver).To(Equal("kafka"))
			Expect(cfg.Server.LogFormat).To(Equal("json"))
		})

		It("rejects unknown preset names", func() {
			err := newCmd("--preset", "invalid-preset").Execute()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("unknown preset"))

			_, statErr := os.Stat(filepath.Join(tmpDir, ".sitesmith"))
			Expect(os.IsNotExist(statErr)).To(BeTrue())
		})
	})

	Describe("--preset with remote URL", func() {
		It("fetches and writes remote config.toml", func() {
			remoteCfg := `version = 0

[server]
listen = ":9090"

[storage]
driver = "postgres"
postgres_dsn = "postgres://localhost/sitesmith"
`
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				fmt.Fprint(w, remoteCfg)
			}))
			defer server.Close()

			Expect(newCmd("--preset", server.URL).Execute()).To(Succeed())

			cfg := loadConfig(tmpDir)
			Expect(cfg.Server.Listen).To(Equal(":9090"))
			Expect(cfg.Storage.Driver).To(Equal("postgres"))
			Expect(cfg.Storage.PostgresDSN).To(Equal("postgres://localhost/sitesmith"))
		})

		It("returns error for non-200 HTTP response", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			err := newCmd("--preset", server.URL).Execute()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("HTTP 404"))
		})

		It("returns error for invalid TOML from URL", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "this is not valid toml [[[")
			}))
			defer server.Close()

			err := newCmd("--preset", server.URL).Execute()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("parsing"))
		})

		It("returns error for unreachable URL", func() {
			err := newCmd("--preset", "http://127.0.0.1:1").Execute()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("fetching remote config"))
		})
	})

	Describe("--preset overwrites config on re-init", func() {
		It("overwrites existing config.toml when re-running with a different preset", func() {
			Expect(newCmd("--preset", "local").Execute()).To(Succeed())
			Expect(loadConfig(tmpDir).Storage.Driver).To(Equal("sqlite"))

			Expect(newCmd("--preset", "stateless").Execute()).To(Succeed())
			Expect(loadConfig(tmpDir).Storage.Driver).To(Equal("none"))
		})
	})
})

// loadConfig is a test helper that reads and parses the config.toml from the
// .sitesmith directory within the given base directory.
func loadConfig(baseDir string) *config.Config {
	configPath := filepath.Join(baseDir, ".sitesmith", "config.toml")
	data, err := os.ReadFile(configPath)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())

	cfg := &config.Config{}
	err = toml.Unmarshal(data, cfg)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	return cfg
}
