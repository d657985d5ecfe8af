package reconstruct

import (
	"fmt"

	"github.com/papercomputeco/restream/pkg/llm"
)

// Result is the outcome of one reconstruction.
type Result struct {
	// Content is the concatenation, in input order, of the text every
	// decoded chunk contributed.
	Content string `json:"content"`

	// Metadata is nil if and only if no chunk decoded.
	Metadata *Metadata `json:"metadata"`

	// Errors is nil when nothing went wrong, otherwise ordered by line.
	Errors []ParseError `json:"errors"`
}

// Metadata describes the stream as a whole.
type Metadata struct {
	Provider     llm.Kind   `json:"provider"`
	Model        *string    `json:"model"`
	ID           *string    `json:"id"`
	ChunkCount   int        `json:"chunkCount"`
	FinishReason *string    `json:"finishReason"`
	Usage        *llm.Usage `json:"usage,omitempty"`
}

// ParseError is one problem found in the transcript. Line is nil for
// problems that concern the whole stream.
type ParseError struct {
	Line    *int    `json:"line"`
	Message string  `json:"message"`
	Raw     *string `json:"raw"`
}

func (e ParseError) Error() string {
	if e.Line == nil {
		return e.Message
	}
	return fmt.Sprintf("line %d: %s", *e.Line, e.Message)
}

// HasErrors reports whether the reconstruction recorded any ParseError.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Provider returns the detected provider, or "" when nothing decoded.
func (r *Result) Provider() llm.Kind {
	if r.Metadata == nil {
		return ""
	}
	return r.Metadata.Provider
}

// ChunkCount returns the number of decoded chunks.
func (r *Result) ChunkCount() int {
	if r.Metadata == nil {
		return 0
	}
	return r.Metadata.ChunkCount
}
