package besteffort

import (
	"github.com/papercomputeco/restream/pkg/llm"
)

// contentPaths are probed in order by Content. They cover the field names
// common across LLM streaming APIs and OpenAI compatible proxies.
var contentPaths = []string{
	"content",
	"text",
	"chunk",
	"delta.content",
	"delta.text",
	"message.content",
	"choices.0.delta.content",
	"choices.0.text",
}

// provider implements the Provider interface as a fallback for unknown API formats.
// It probes well known field names rather than relying on any one shape.
type provider struct{}

func New() *provider { return &provider{} }

func (b *provider) Kind() llm.Kind {
	return llm.KindUnknown
}

// CanHandle always returns true - this is the fallback provider.
func (b *provider) CanHandle(chunk llm.Chunk) bool {
	return true
}

func (b *provider) ExtractContent(chunk llm.Chunk) string {
	return Content(chunk)
}

// FinishReason never reports a signal. Unrecognized streams have no agreed
// end-of-stream field, so their finish reason stays unset.
func (b *provider) FinishReason(llm.Chunk) (llm.Finish, bool) {
	return llm.Finish{}, false
}

// Usage tries to find usage metrics in various formats.
func (b *provider) Usage(chunk llm.Chunk, usage *llm.Usage) bool {
	found := false

	set := func(path string, dst *int) {
		if v := chunk.Get(path); v.Exists() {
			*dst = int(v.Int())
			found = true
		}
	}

	// OpenAI style
	set("usage.prompt_tokens", &usage.PromptTokens)
	set("usage.completion_tokens", &usage.CompletionTokens)
	set("usage.total_tokens", &usage.TotalTokens)

	// Anthropic style
	set("usage.input_tokens", &usage.PromptTokens)
	set("usage.output_tokens", &usage.CompletionTokens)

	// Ollama style (top-level fields)
	set("prompt_eval_count", &usage.PromptTokens)
	set("eval_count", &usage.CompletionTokens)
	if v := chunk.Get("total_duration"); v.Exists() {
		usage.TotalDurationNs = v.Int()
		found = true
	}

	return found
}

// Content returns the first string found at any of the well known content
// paths, even when that string is empty. Missing keys at any depth are
// skipped, never an error.
func Content(chunk llm.Chunk) string {
	return extractString(chunk, contentPaths...)
}

func extractString(chunk llm.Chunk, paths ...string) string {
	for _, path := range paths {
		if v, ok := chunk.String(path); ok {
			return v
		}
	}
	return ""
}
