package servecmder

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/restream/pkg/eventstream/kafka"
	"github.com/papercomputeco/restream/pkg/eventstream/nop"
)

var _ = Describe("serve", func() {
	It("registers its flags", func() {
		cmd := NewServeCmd()
		for _, name := range []string{"listen", "repair", "sqlite", "postgres", "kafka-brokers", "kafka-topic", "no-mcp", "log-file", "log-json"} {
			Expect(cmd.Flags().Lookup(name)).NotTo(BeNil(), name)
		}
	})

	Describe("newPublisher", func() {
		It("disables publishing without brokers", func() {
			c := &serveCommander{}
			Expect(c.setupLoggerOrFail()).To(Succeed())

			p, err := c.newPublisher()
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(BeAssignableToTypeOf(&nop.Publisher{}))
		})

		It("publishes to kafka when brokers are configured", func() {
			c := &serveCommander{kafkaBrokers: "localhost:9092, localhost:9093", kafkaTopic: "t"}
			Expect(c.setupLoggerOrFail()).To(Succeed())

			p, err := c.newPublisher()
			Expect(err).NotTo(HaveOccurred())
			defer p.Close()
			Expect(p).To(BeAssignableToTypeOf(&kafka.Publisher{}))
		})

		It("requires a topic", func() {
			c := &serveCommander{kafkaBrokers: "localhost:9092"}
			Expect(c.setupLoggerOrFail()).To(Succeed())

			_, err := c.newPublisher()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("setupLogger", func() {
		It("also writes JSON logs to the log file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "serve.log")
			c := &serveCommander{logFile: path, logJSON: true}

			closeLog, err := c.setupLogger()
			Expect(err).NotTo(HaveOccurred())
			c.logger.Info("hello from serve")
			closeLog()

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"msg":"hello from serve"`))
		})
	})

	Describe("run", func() {
		It("shuts down when its context ends", func() {
			c := &serveCommander{listen: "127.0.0.1:0", logJSON: true}

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- c.run(ctx) }()

			time.Sleep(200 * time.Millisecond)
			cancel()

			Eventually(done, 5*time.Second).Should(Receive(BeNil()))
		})
	})
})

// setupLoggerOrFail installs the default logger for tests that only need
// c.logger to be set.
func (c *serveCommander) setupLoggerOrFail() error {
	_, err := c.setupLogger()
	return err
}
