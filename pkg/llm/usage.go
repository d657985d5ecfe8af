package llm

// Usage contains token counts reported by a provider over the course of a
// stream. Providers spread these across different chunks, so a Usage is
// accumulated rather than read from any single chunk.
type Usage struct {
	// Token counts
	PromptTokens     int `json:"promptTokens,omitempty"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens,omitempty"`

	// Cache token counts (Anthropic prompt caching)
	CacheCreationInputTokens int `json:"cacheCreationInputTokens,omitempty"`
	CacheReadInputTokens     int `json:"cacheReadInputTokens,omitempty"`

	// Timing (Ollama style NDJSON streams report nanoseconds)
	TotalDurationNs int64 `json:"totalDurationNs,omitempty"`
}

// Finalize fills TotalTokens from the prompt and completion counts when the
// provider never reported a total.
func (u *Usage) Finalize() {
	if u.TotalTokens == 0 && (u.PromptTokens > 0 || u.CompletionTokens > 0) {
		u.TotalTokens = u.PromptTokens + u.CompletionTokens
	}
}
