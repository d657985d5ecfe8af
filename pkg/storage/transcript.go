package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/papercomputeco/restream/pkg/reconstruct"
)

// Transcript is a raw SSE transcript together with its reconstruction.
type Transcript struct {
	// Hash is the hex SHA-256 of Input.
	Hash string `json:"hash"`

	// Source names where the transcript came from: a file path, "stdin",
	// "api" or "mcp".
	Source string `json:"source"`

	Input  string              `json:"input"`
	Result *reconstruct.Result `json:"result"`

	// Denormalized from Result for listing without decoding it.
	Provider   string `json:"provider"`
	ChunkCount int    `json:"chunkCount"`
	ErrorCount int    `json:"errorCount"`

	CreatedAt time.Time `json:"createdAt"`
}

// NewTranscript builds a record for input and its reconstruction.
func NewTranscript(source, input string, result *reconstruct.Result) *Transcript {
	t := &Transcript{
		Hash:      HashInput(input),
		Source:    source,
		Input:     input,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}

	if result != nil {
		t.Provider = string(result.Provider())
		t.ChunkCount = result.ChunkCount()
		t.ErrorCount = len(result.Errors)
	}

	return t
}

// HashInput returns the content address of a raw transcript.
func HashInput(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
