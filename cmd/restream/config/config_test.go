package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/papercomputeco/restream/cmd/restream/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir string
		out    *bytes.Buffer
	)

	execute := func(args ...string) error {
		cmd := configcmder.NewConfigCmd()
		cmd.SetOut(out)
		cmd.SetErr(out)
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = filepath.EvalSymlinks(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		origDir, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// A local .restream dir is picked up before the home directory.
		Expect(os.MkdirAll(filepath.Join(tmpDir, ".restream"), 0o755)).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())
		DeferCleanup(func() { _ = os.Chdir(origDir) })

		out = &bytes.Buffer{}
	})

	Describe("set subcommand", func() {
		It("writes config.toml", func() {
			Expect(execute("set", "parse.format", "json")).To(Succeed())

			data, err := os.ReadFile(filepath.Join(tmpDir, ".restream", "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`format = "json"`))
			Expect(out.String()).To(ContainSubstring("parse.format"))
		})

		It("rejects unknown keys", func() {
			err := execute("set", "invalid_key", "value")
			Expect(err).To(MatchError(ContainSubstring("unknown config key")))
		})

		It("needs a .restream directory", func() {
			Expect(os.Remove(filepath.Join(tmpDir, ".restream"))).To(Succeed())
			GinkgoT().Setenv("HOME", GinkgoT().TempDir())

			err := execute("set", "parse.format", "json")
			Expect(err).To(MatchError(ContainSubstring("no .restream/ directory found")))
		})

		It("requires exactly two arguments", func() {
			Expect(execute("set", "parse.format")).NotTo(Succeed())
		})

		It("rejects zero arguments", func() {
			Expect(execute("set")).NotTo(Succeed())
		})

		It("rejects invalid uint values", func() {
			Expect(execute("set", "watch.debounce_ms", "not-a-number")).NotTo(Succeed())
		})

		It("rejects invalid bool values", func() {
			Expect(execute("set", "parse.repair", "maybe")).NotTo(Succeed())
		})

		It("rejects unsupported formats", func() {
			Expect(execute("set", "parse.format", "yaml")).NotTo(Succeed())
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			Expect(execute("set", "eventstream.kafka_brokers", "localhost:9092")).To(Succeed())

			out.Reset()
			Expect(execute("get", "eventstream.kafka_brokers")).To(Succeed())
			Expect(out.String()).To(Equal("localhost:9092\n"))
		})

		It("prints an empty line for unset keys", func() {
			Expect(execute("get", "storage.postgres_dsn")).To(Succeed())
			Expect(out.String()).To(Equal("\n"))
		})

		It("falls back to defaults", func() {
			Expect(execute("get", "parse.format")).To(Succeed())
			Expect(out.String()).To(Equal("text\n"))
		})

		It("rejects unknown keys", func() {
			Expect(execute("get", "invalid_key")).NotTo(Succeed())
		})

		It("requires exactly one argument", func() {
			Expect(execute("get")).NotTo(Succeed())
		})
	})

	Describe("list subcommand", func() {
		It("lists every key before anything is set", func() {
			Expect(execute("list")).To(Succeed())
			Expect(out.String()).To(ContainSubstring(filepath.Join(tmpDir, ".restream")))
			Expect(out.String()).To(ContainSubstring("<not set>"))
			Expect(out.String()).To(ContainSubstring("storage.postgres_dsn"))
			Expect(out.String()).To(ContainSubstring("eventstream.kafka_topic"))
		})

		It("shows stored values", func() {
			Expect(execute("set", "api.listen", ":9999")).To(Succeed())

			out.Reset()
			Expect(execute("list")).To(Succeed())
			Expect(out.String()).To(ContainSubstring(`= ":9999"`))
		})

		It("rejects any arguments", func() {
			Expect(execute("list", "extra")).NotTo(Succeed())
		})
	})
})
