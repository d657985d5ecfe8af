// Package mcp provides an MCP (Model Context Protocol) server exposing stream
// reconstruction as a tool.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/restream/api/worker"
	"github.com/papercomputeco/restream/pkg/storage"
	"github.com/papercomputeco/restream/pkg/utils"
)

type Config struct {
	// Driver looks up stored transcripts (optional, enables get_transcript)
	Driver storage.Driver

	// Pool persists reconstructed transcripts in the background (optional)
	Pool *worker.Pool

	// Repair is the default for the reconstruct tool's repair argument
	Repair bool

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the reconstruct tool.
func NewServer(c Config) (*Server, error) {
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "restream",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        reconstructToolName,
		Description: reconstructDescription,
	}, s.handleReconstruct)

	if c.Driver != nil {
		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        getTranscriptToolName,
			Description: getTranscriptDescription,
		}, s.handleGetTranscript)
	}

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// MCPServer returns the underlying MCP server, for serving over other transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}
