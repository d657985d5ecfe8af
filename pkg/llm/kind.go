package llm

// Kind tags the wire format family a stream of chunks belongs to.
// The set is closed: every provider implementation reports exactly one of
// these values.
type Kind string

const (
	KindOpenAI    Kind = "openai"
	KindAnthropic Kind = "anthropic"
	KindGoogle    Kind = "google"

	// KindUnknown marks a stream whose first chunk matched no known shape.
	// Such streams are read with the best-effort probes.
	KindUnknown Kind = "unknown"
)

// Kinds returns every Kind in detection order, with KindUnknown last.
func Kinds() []Kind {
	return []Kind{KindOpenAI, KindAnthropic, KindGoogle, KindUnknown}
}

func (k Kind) String() string {
	return string(k)
}
