// Package openai reads OpenAI Chat Completions stream chunks.
package openai

import (
	"encoding/json"

	"github.com/papercomputeco/restream/pkg/llm"
)

// provider implements the Provider interface for OpenAI's Chat Completions API.
type provider struct{}

func New() *provider { return &provider{} }

func (o *provider) Kind() llm.Kind {
	return llm.KindOpenAI
}

// CanHandle reports whether the chunk carries a "choices" array.
func (o *provider) CanHandle(chunk llm.Chunk) bool {
	return chunk.IsArray("choices")
}

// ExtractContent prefers the streaming delta and falls back to a full
// message body, which some OpenAI compatible servers send instead.
func (o *provider) ExtractContent(chunk llm.Chunk) string {
	if s, ok := chunk.String("choices.0.delta.content"); ok && s != "" {
		return s
	}

	s, _ := chunk.String("choices.0.message.content")
	return s
}

func (o *provider) FinishReason(chunk llm.Chunk) (llm.Finish, bool) {
	reason, ok := chunk.String("choices.0.finish_reason")
	if !ok || reason == "" {
		return llm.Finish{}, false
	}

	return llm.Finish{Reason: reason, Explicit: true}, true
}

// Usage reads the "usage" object OpenAI attaches to the final chunk when
// stream_options.include_usage is set.
func (o *provider) Usage(chunk llm.Chunk, usage *llm.Usage) bool {
	raw := chunk.Get("usage")
	if !raw.IsObject() {
		return false
	}

	var u openaiUsage
	if err := json.Unmarshal([]byte(raw.Raw), &u); err != nil {
		return false
	}

	usage.PromptTokens = u.PromptTokens
	usage.CompletionTokens = u.CompletionTokens
	usage.TotalTokens = u.TotalTokens
	if u.PromptTokensDetails != nil {
		usage.CacheReadInputTokens = u.PromptTokensDetails.CachedTokens
	}

	return true
}
