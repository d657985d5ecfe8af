package provider

import (
	"fmt"

	"github.com/papercomputeco/restream/pkg/llm"
	"github.com/papercomputeco/restream/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/restream/pkg/llm/provider/besteffort"
	"github.com/papercomputeco/restream/pkg/llm/provider/google"
	"github.com/papercomputeco/restream/pkg/llm/provider/openai"
)

// SupportedProviders returns the list of all supported provider kinds.
func SupportedProviders() []string {
	kinds := llm.Kinds()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.String())
	}
	return names
}

// New creates a new Provider instance for the given kind.
// Returns an error if the kind is not recognized.
func New(kind llm.Kind) (Provider, error) {
	switch kind {
	case llm.KindOpenAI:
		return openai.New(), nil
	case llm.KindAnthropic:
		return anthropic.New(), nil
	case llm.KindGoogle:
		return google.New(), nil
	case llm.KindUnknown:
		return besteffort.New(), nil
	default:
		return nil, fmt.Errorf("unknown provider kind: %q (supported: %v)", kind, SupportedProviders())
	}
}
