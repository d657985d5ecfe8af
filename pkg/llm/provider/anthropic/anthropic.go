// Package anthropic reads Anthropic Messages API stream events.
//
// A stream is a sequence of typed events: message_start, then for each
// content block a content_block_start, any number of content_block_delta
// events and a content_block_stop, followed by message_delta (carrying the
// stop reason and output usage) and finally message_stop.
package anthropic

import (
	"encoding/json"
	"strings"

	"github.com/papercomputeco/restream/pkg/llm"
)

const (
	eventContentBlockStart = "content_block_start"
	eventContentBlockDelta = "content_block_delta"
	eventMessageStart      = "message_start"
	eventMessageDelta      = "message_delta"
	eventMessageStop       = "message_stop"

	// implicitStopReason is reported for a message_stop event that was not
	// preceded by an explicit stop_reason.
	implicitStopReason = "stop"
)

// provider implements the Provider interface for Anthropic's Messages API.
type provider struct{}

func New() *provider { return &provider{} }

func (p *provider) Kind() llm.Kind {
	return llm.KindAnthropic
}

// CanHandle reports whether the chunk has a string "type" naming a content
// block or message event.
func (p *provider) CanHandle(chunk llm.Chunk) bool {
	t, ok := chunk.String("type")
	if !ok {
		return false
	}
	return strings.Contains(t, "content_block") || strings.Contains(t, "message")
}

func (p *provider) ExtractContent(chunk llm.Chunk) string {
	t, _ := chunk.String("type")

	var s string
	switch t {
	case eventContentBlockDelta:
		s, _ = chunk.String("delta.text")
	case eventContentBlockStart:
		s, _ = chunk.String("content_block.text")
	}
	return s
}

func (p *provider) FinishReason(chunk llm.Chunk) (llm.Finish, bool) {
	if reason, ok := chunk.String("delta.stop_reason"); ok && reason != "" {
		return llm.Finish{Reason: reason, Explicit: true}, true
	}

	if t, _ := chunk.String("type"); t == eventMessageStop {
		return llm.Finish{Reason: implicitStopReason}, true
	}

	return llm.Finish{}, false
}

// Usage reads input usage from message_start and output usage from
// message_delta. Cached prompt tokens are folded into PromptTokens.
func (p *provider) Usage(chunk llm.Chunk, usage *llm.Usage) bool {
	t, _ := chunk.String("type")

	switch t {
	case eventMessageStart:
		u, ok := decodeUsage(chunk, "message.usage")
		if !ok {
			return false
		}

		usage.PromptTokens = u.InputTokens + u.CacheCreationInputTokens + u.CacheReadInputTokens
		usage.CacheCreationInputTokens = u.CacheCreationInputTokens
		usage.CacheReadInputTokens = u.CacheReadInputTokens
		if u.OutputTokens > 0 {
			usage.CompletionTokens = u.OutputTokens
		}
		return true

	case eventMessageDelta:
		u, ok := decodeUsage(chunk, "usage")
		if !ok {
			return false
		}

		usage.CompletionTokens = u.OutputTokens
		return true
	}

	return false
}

func decodeUsage(chunk llm.Chunk, path string) (anthropicUsage, bool) {
	var u anthropicUsage

	raw := chunk.Get(path)
	if !raw.IsObject() {
		return u, false
	}

	if err := json.Unmarshal([]byte(raw.Raw), &u); err != nil {
		return u, false
	}
	return u, true
}
