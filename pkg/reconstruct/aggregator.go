package reconstruct

import (
	"github.com/tidwall/gjson"

	"github.com/papercomputeco/restream/pkg/llm"
	"github.com/papercomputeco/restream/pkg/llm/provider"
)

var (
	modelPaths = []string{"model", "message.model", "modelVersion"}
	idPaths    = []string{"id", "message.id", "responseId"}
)

// aggregator derives stream metadata from decoded chunks as they arrive.
// Model and ID are first-write-wins. Finish reasons are last-write-wins,
// except that an implicit reason never replaces an explicit one.
type aggregator struct {
	provider provider.Provider

	model  *string
	id     *string
	chunks int

	finish   *llm.Finish
	usage    llm.Usage
	hasUsage bool
}

func newAggregator(p provider.Provider) *aggregator {
	return &aggregator{provider: p}
}

func (a *aggregator) add(chunk llm.Chunk) {
	a.chunks++

	if a.model == nil {
		a.model = firstScalar(chunk, modelPaths)
	}
	if a.id == nil {
		a.id = firstScalar(chunk, idPaths)
	}

	if f, ok := provider.Finish(a.provider, chunk); ok {
		if f.Explicit || a.finish == nil || !a.finish.Explicit {
			a.finish = &f
		}
	}

	if provider.Usage(a.provider, chunk, &a.usage) {
		a.hasUsage = true
	}
}

func (a *aggregator) metadata() *Metadata {
	m := &Metadata{
		Provider:   a.provider.Kind(),
		Model:      a.model,
		ID:         a.id,
		ChunkCount: a.chunks,
	}

	if a.finish != nil {
		reason := a.finish.Reason
		m.FinishReason = &reason
	}

	if a.hasUsage {
		usage := a.usage
		usage.Finalize()
		m.Usage = &usage
	}

	return m
}

// firstScalar returns the first non-empty string or number found at paths.
// Numeric models and IDs are kept in their JSON text form.
func firstScalar(chunk llm.Chunk, paths []string) *string {
	for _, path := range paths {
		switch v := chunk.Get(path); {
		case v.Type == gjson.String && v.Str != "":
			return &v.Str
		case v.Type == gjson.Number:
			return &v.Raw
		}
	}
	return nil
}
