// Package google reads Gemini streamGenerateContent chunks, as served by both
// the Gemini API and Vertex AI.
package google

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/papercomputeco/restream/pkg/llm"
)

// provider implements the Provider interface for Gemini.
type provider struct{}

func New() *provider { return &provider{} }

func (p *provider) Kind() llm.Kind {
	return llm.KindGoogle
}

// CanHandle reports whether the chunk carries a "candidates" array.
func (p *provider) CanHandle(chunk llm.Chunk) bool {
	return chunk.IsArray("candidates")
}

// ExtractContent joins the text of every part of the first candidate.
// Parts without text (function calls, inline data) add nothing.
func (p *provider) ExtractContent(chunk llm.Chunk) string {
	parts := chunk.Get("candidates.0.content.parts")
	if !parts.IsArray() {
		return ""
	}

	var sb strings.Builder
	for _, part := range parts.Array() {
		if text := llm.Lookup(part, "text"); text.Type == gjson.String {
			sb.WriteString(text.Str)
		}
	}
	return sb.String()
}

func (p *provider) FinishReason(chunk llm.Chunk) (llm.Finish, bool) {
	reason, ok := chunk.String("candidates.0.finishReason")
	if !ok || reason == "" {
		return llm.Finish{}, false
	}

	return llm.Finish{Reason: reason, Explicit: true}, true
}

// Usage reads "usageMetadata". Gemini repeats running totals on every chunk,
// so later chunks simply overwrite earlier counts.
func (p *provider) Usage(chunk llm.Chunk, usage *llm.Usage) bool {
	meta := chunk.Get("usageMetadata")
	if !meta.IsObject() {
		return false
	}

	usage.PromptTokens = int(llm.Lookup(meta, "promptTokenCount").Int())
	usage.CompletionTokens = int(llm.Lookup(meta, "candidatesTokenCount").Int())
	usage.TotalTokens = int(llm.Lookup(meta, "totalTokenCount").Int())
	usage.CacheReadInputTokens = int(llm.Lookup(meta, "cachedContentTokenCount").Int())
	return true
}
