package mcp_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/restream/api/mcp"
	"github.com/papercomputeco/restream/pkg/logger"
	"github.com/papercomputeco/restream/pkg/storage/inmemory"
)

var _ = Describe("MCP Server", func() {
	Describe("NewServer", func() {
		It("returns an error when logger is nil", func() {
			_, err := mcp.NewServer(mcp.Config{})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("logger is required"))
		})

		It("creates a server without storage", func() {
			server, err := mcp.NewServer(mcp.Config{Logger: logger.Nop()})
			Expect(err).NotTo(HaveOccurred())
			Expect(server.Handler()).NotTo(BeNil())
			Expect(server.MCPServer()).NotTo(BeNil())
		})

		It("creates a server with storage", func() {
			server, err := mcp.NewServer(mcp.Config{
				Driver: inmemory.NewDriver(),
				Logger: logger.Nop(),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(server.Handler()).NotTo(BeNil())
		})
	})
})
