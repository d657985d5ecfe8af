// Package sse pulls JSON payloads out of raw, possibly malformed, SSE
// (Server-Sent Events) transcripts such as those pasted from browser devtools
// or written to disk by logging proxies.
//
// Transcripts are read line by line. A line may carry zero, one, or several
// "data:" fields; a bare JSON object with no field prefix at all is also
// accepted as a payload.
//
// This package intentionally does NOT provide an SSE client, writer or
// server, and it does not join multi-line events.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse
