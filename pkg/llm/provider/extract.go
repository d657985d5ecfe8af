package provider

import (
	"github.com/papercomputeco/restream/pkg/llm"
	"github.com/papercomputeco/restream/pkg/llm/provider/besteffort"
)

// Content returns the fragment a chunk contributes when read as p. When p
// yields nothing, the best-effort probes get a second look so that chunks
// shaped unlike the detected provider still contribute. A panic inside a
// provider degrades to "".
func Content(p Provider, chunk llm.Chunk) (content string) {
	defer func() {
		if recover() != nil {
			content = ""
		}
	}()

	content = p.ExtractContent(chunk)
	if content == "" && p.Kind() != llm.KindUnknown {
		content = besteffort.Content(chunk)
	}
	return content
}

// Finish returns the end-of-stream signal a chunk carries when read as p.
// A panic inside a provider degrades to no signal.
func Finish(p Provider, chunk llm.Chunk) (finish llm.Finish, ok bool) {
	defer func() {
		if recover() != nil {
			finish, ok = llm.Finish{}, false
		}
	}()

	return p.FinishReason(chunk)
}

// Usage folds the chunk's token counts into usage when read as p.
// A panic inside a provider degrades to nothing found.
func Usage(p Provider, chunk llm.Chunk, usage *llm.Usage) (found bool) {
	defer func() {
		if recover() != nil {
			found = false
		}
	}()

	return p.Usage(chunk, usage)
}
