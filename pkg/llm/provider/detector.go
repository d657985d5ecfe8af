package provider

import (
	"github.com/papercomputeco/restream/pkg/llm"
	"github.com/papercomputeco/restream/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/restream/pkg/llm/provider/besteffort"
	"github.com/papercomputeco/restream/pkg/llm/provider/google"
	"github.com/papercomputeco/restream/pkg/llm/provider/openai"
)

// Detector manages provider detection by checking registered providers in order.
type Detector struct {
	providers []Provider
	fallback  Provider
}

// NewDetector creates a new Detector with the default set of providers.
// Providers are checked in order: OpenAI, Anthropic, Google, then BestEffort as fallback.
func NewDetector() *Detector {
	return &Detector{
		providers: []Provider{
			openai.New(),
			anthropic.New(),
			google.New(),
		},
		fallback: besteffort.New(),
	}
}

// Detect returns the first registered provider that reports it can handle
// the chunk. If no provider matches, BestEffort is returned as the fallback.
func (d *Detector) Detect(chunk llm.Chunk) Provider {
	for _, p := range d.providers {
		if p.CanHandle(chunk) {
			return p
		}
	}
	return d.fallback
}

// Fallback returns the provider used for chunks no other provider claims.
func (d *Detector) Fallback() Provider {
	return d.fallback
}
