package reconstruct

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/papercomputeco/restream/pkg/llm"
	"github.com/papercomputeco/restream/pkg/llm/provider"
	"github.com/papercomputeco/restream/pkg/sse"
	"github.com/papercomputeco/restream/pkg/utils"
)

const (
	messageNoInput     = "No input provided"
	messageNoData      = "No valid SSE data found"
	messageInvalidJSON = "Invalid JSON - "

	// previewLength bounds how much of a bad segment is quoted in its
	// error message. The full segment is always kept in ParseError.Raw.
	previewLength = 40
)

// Reconstruct rebuilds the message carried by a raw SSE transcript.
// It never panics and never fails: every problem is reported in
// Result.Errors. The same input always yields the same result.
func Reconstruct(input string, opts ...Option) *Result {
	if input == "" {
		return noInput()
	}

	p := newPass(opts)
	for _, line := range sse.SplitLines(input) {
		p.line(line)
	}
	return p.result()
}

// ReconstructReader streams a transcript from r through the same pass as
// Reconstruct, without holding the whole text in memory. The only error it
// returns is a failure to read r.
func ReconstructReader(r io.Reader, opts ...Option) (*Result, error) {
	lines := sse.NewLineReader(r)
	p := newPass(opts)

	empty := true
	for {
		line, err := lines.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading transcript: %w", err)
		}

		empty = false
		p.line(line)
	}

	if empty {
		return noInput(), nil
	}
	return p.result(), nil
}

func noInput() *Result {
	return &Result{
		Errors: []ParseError{{Message: messageNoInput}},
	}
}

// pass holds the state of one reconstruction. It is never shared.
type pass struct {
	opts     *options
	decoder  llm.Decoder
	detector *provider.Detector

	// provider and agg are set by the first chunk that decodes.
	provider provider.Provider
	agg      *aggregator

	content strings.Builder
	errors  []ParseError
}

func newPass(opts []Option) *pass {
	o := newOptions(opts)
	return &pass{
		opts:     o,
		decoder:  llm.Decoder{Repair: o.repair},
		detector: provider.NewDetector(),
	}
}

func (p *pass) line(line sse.Line) {
	if strings.TrimSpace(line.Text) == "" {
		return
	}

	for _, segment := range sse.DataSegments(line.Text) {
		payload := strings.TrimSpace(segment)

		chunk, ok := p.decoder.Decode(payload)
		if !ok {
			if strings.HasPrefix(payload, "{") {
				p.invalid(line.Number, payload)
			} else {
				p.opts.logger.Debug("skipping non-JSON segment",
					"line", line.Number,
					"segment", utils.Truncate(payload, previewLength),
				)
			}
			continue
		}

		if chunk.Repaired {
			p.opts.logger.Debug("repaired malformed chunk", "line", line.Number)
		}
		p.accept(chunk)
	}
}

func (p *pass) accept(chunk llm.Chunk) {
	if p.provider == nil {
		p.provider = p.detector.Detect(chunk)
		p.agg = newAggregator(p.provider)
		p.opts.logger.Debug("detected provider", "provider", p.provider.Kind())
	}

	p.content.WriteString(provider.Content(p.provider, chunk))
	p.agg.add(chunk)
}

func (p *pass) invalid(lineNumber int, payload string) {
	n := lineNumber
	raw := payload

	p.errors = append(p.errors, ParseError{
		Line:    &n,
		Message: messageInvalidJSON + utils.Truncate(payload, previewLength),
		Raw:     &raw,
	})

	p.opts.logger.Debug("invalid JSON chunk", "line", lineNumber)
}

func (p *pass) result() *Result {
	if p.agg == nil {
		errs := p.errors
		if len(errs) == 0 {
			errs = []ParseError{{Message: messageNoData}}
		}
		return &Result{Errors: errs}
	}

	r := &Result{
		Content:  p.content.String(),
		Metadata: p.agg.metadata(),
		Errors:   p.errors,
	}

	p.opts.logger.Debug("reconstructed stream",
		"provider", r.Metadata.Provider,
		"chunks", r.Metadata.ChunkCount,
		"errors", len(r.Errors),
	)

	return r
}
