// Package reconstruct rebuilds the complete message carried by a raw LLM
// streaming transcript.
//
// A transcript is the text of an SSE response as it was logged or pasted:
// "data:" lines with one JSON chunk each, mixed with event names, comments,
// keep-alives, sentinels and the occasional corrupted line. Reconstruct reads
// it in a single pass:
//
//	text ─▶ lines ─▶ data segments ─▶ decoded chunks ─┬─▶ content
//	                                                  └─▶ metadata
//
// The provider (OpenAI, Anthropic, Google or unknown) is detected from the
// first chunk that decodes and is then fixed for the rest of the stream.
// Nothing is fatal: a malformed chunk is reported as a ParseError with its
// line number and the pass continues.
package reconstruct
