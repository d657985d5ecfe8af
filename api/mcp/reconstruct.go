package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/restream/api/worker"
	"github.com/papercomputeco/restream/pkg/reconstruct"
	"github.com/papercomputeco/restream/pkg/storage"
)

const sourceMCP = "mcp"

var (
	reconstructToolName    = "reconstruct_stream"
	reconstructDescription = "Reconstruct the full message from a raw, possibly malformed, LLM server-sent events transcript. Supports OpenAI, Anthropic and Google streams and reports line-addressed parse errors."
)

// ReconstructInput represents the input arguments for the reconstruct tool.
type ReconstructInput struct {
	Transcript string `json:"transcript" jsonschema:"the raw SSE transcript text"`
	Repair     *bool  `json:"repair,omitempty" jsonschema:"attempt JSON repair on malformed chunks before reporting them"`
}

// handleReconstruct runs a reconstruction. Parse problems are part of the
// result and never make the tool call itself fail.
func (s *Server) handleReconstruct(_ context.Context, _ *mcp.CallToolRequest, input ReconstructInput) (*mcp.CallToolResult, reconstruct.Result, error) {
	logger := s.config.Logger

	repair := s.config.Repair
	if input.Repair != nil {
		repair = *input.Repair
	}

	result := reconstruct.Reconstruct(input.Transcript,
		reconstruct.WithRepair(repair),
		reconstruct.WithLogger(logger),
	)

	logger.Debug("MCP reconstruct request",
		"bytes", len(input.Transcript),
		"provider", result.Provider(),
		"errors", len(result.Errors),
	)

	if s.config.Pool != nil && input.Transcript != "" {
		s.config.Pool.Enqueue(worker.Job{
			Transcript: storage.NewTranscript(sourceMCP, input.Transcript, result),
		})
	}

	return textResult(*result)
}

// textResult serializes output into a TextContent block alongside the
// structured output, for clients that only read text.
func textResult[T any](output T) (*mcp.CallToolResult, T, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		var zero T
		return errorResult(fmt.Sprintf("Failed to serialize result: %v", err)), zero, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}
