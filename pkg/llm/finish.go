package llm

// Finish is an end-of-stream signal observed in a single chunk.
type Finish struct {
	Reason string

	// Explicit is set when the provider named the reason itself. Implicit
	// signals (a bare stop event) never replace an explicit reason.
	Explicit bool
}
