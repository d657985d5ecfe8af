// Package provider classifies decoded stream chunks by LLM API format and
// reads content, finish reasons and usage out of them.
package provider

import (
	"github.com/papercomputeco/restream/pkg/llm"
)

// Provider defines the interface for LLM stream chunk detection and reading.
// Each implementation knows one wire format family. Every method is total:
// a chunk of the wrong shape yields the zero value, never an error.
type Provider interface {
	// Kind returns the provider tag reported in stream metadata.
	Kind() llm.Kind

	// CanHandle returns true if the chunk appears to belong to this provider.
	CanHandle(chunk llm.Chunk) bool

	// ExtractContent returns the text fragment the chunk contributes, or "".
	ExtractContent(chunk llm.Chunk) string

	// FinishReason returns the end-of-stream signal carried by the chunk, if any.
	FinishReason(chunk llm.Chunk) (llm.Finish, bool)

	// Usage folds any token counts found in the chunk into usage and reports
	// whether it found any.
	Usage(chunk llm.Chunk, usage *llm.Usage) bool
}
