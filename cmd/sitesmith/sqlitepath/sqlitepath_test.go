package sqlitepath

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ResolveSQLitePath", func() {
	var (
		origCwd string
		cwd     string
	)

	BeforeEach(func() {
		var err error
		origCwd, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		cwd = GinkgoT().TempDir()
		Expect(os.Chdir(cwd)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origCwd)).To(Succeed())
	})

	It("prefers the override", func() {
		path, err := ResolveSQLitePath("/tmp/custom.db", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/custom.db"))
	})

	It("uses a database already in the working directory", func() {
		Expect(os.WriteFile("sitesmith.db", nil, 0o600)).To(Succeed())

		path, err := ResolveSQLitePath("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(filepath.Base(path)).To(Equal("sitesmith.db"))
	})

	It("falls back to the config directory", func() {
		configDir := filepath.Join(cwd, "conf")

		path, err := ResolveSQLitePath("", configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(configDir, "sitesmith.sqlite")))
		Expect(configDir).To(BeADirectory())
	})
})
