// Package api provides the HTTP API server for reconstructing SSE transcripts
// and browsing stored ones.
package api

import "github.com/papercomputeco/restream/api/worker"

// defaultBodyLimit bounds request bodies when Config.BodyLimit is unset.
const defaultBodyLimit = 16 * 1024 * 1024

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// Repair is the default for the reconstruct endpoint's repair option.
	Repair bool

	// BodyLimit is the maximum request body size in bytes.
	BodyLimit int

	// Pool persists reconstructed transcripts in the background. When nil,
	// reconstructions are not stored.
	Pool *worker.Pool

	// MCP enables the MCP endpoint at /mcp.
	MCP bool
}
