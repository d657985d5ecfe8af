package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/restream/pkg/reconstruct"
	"github.com/papercomputeco/restream/pkg/storage"
)

var (
	getTranscriptToolName    = "get_transcript"
	getTranscriptDescription = "Fetch a previously stored transcript and its reconstruction by content hash."
)

// GetTranscriptInput represents the input arguments for the get_transcript tool.
type GetTranscriptInput struct {
	Hash string `json:"hash" jsonschema:"the SHA-256 content hash of the transcript"`
}

// TranscriptOutput is a stored transcript as returned by get_transcript.
type TranscriptOutput struct {
	Hash      string             `json:"hash"`
	Source    string             `json:"source"`
	Input     string             `json:"input"`
	CreatedAt string             `json:"createdAt"`
	Result    reconstruct.Result `json:"result"`
}

func (s *Server) handleGetTranscript(ctx context.Context, _ *mcp.CallToolRequest, input GetTranscriptInput) (*mcp.CallToolResult, TranscriptOutput, error) {
	if input.Hash == "" {
		return errorResult("hash is required"), TranscriptOutput{}, nil
	}

	t, err := s.config.Driver.Get(ctx, input.Hash)
	if err != nil {
		var nf storage.NotFoundError
		if errors.As(err, &nf) {
			return errorResult(nf.Error()), TranscriptOutput{}, nil
		}

		s.config.Logger.Error("failed to load transcript", "hash", input.Hash, "error", err)
		return errorResult(fmt.Sprintf("Failed to load transcript: %v", err)), TranscriptOutput{}, nil
	}

	out := TranscriptOutput{
		Hash:      t.Hash,
		Source:    t.Source,
		Input:     t.Input,
		CreatedAt: t.CreatedAt.Format(time.RFC3339Nano),
	}
	if t.Result != nil {
		out.Result = *t.Result
	}

	return textResult(out)
}
