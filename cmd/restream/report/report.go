// Package report prints reconstruction results for the parse and watch
// commands.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/papercomputeco/restream/pkg/cliui"
	"github.com/papercomputeco/restream/pkg/config"
	"github.com/papercomputeco/restream/pkg/reconstruct"
)

// Entry is one reconstructed input.
type Entry struct {
	Source string              `json:"source"`
	Result *reconstruct.Result `json:"result"`
}

// Printer writes entries in the configured format.
type Printer struct {
	Out    io.Writer
	Format string

	// Markdown renders text output content through glamour.
	Markdown bool
}

// Print writes entries in order. A single JSON entry is printed as a bare
// Result so that piping one transcript yields the plain result shape.
func (p *Printer) Print(entries ...Entry) error {
	switch p.Format {
	case config.FormatJSON:
		var v any = entries
		if len(entries) == 1 {
			v = entries[0].Result
		}
		enc := json.NewEncoder(p.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)

	case config.FormatText, "":
		for i, e := range entries {
			if len(entries) > 1 {
				if i > 0 {
					fmt.Fprintln(p.Out)
				}
				fmt.Fprintf(p.Out, "%s\n\n", cliui.HeaderStyle.Render("==> "+e.Source+" <=="))
			}
			if err := p.text(e.Result); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown output format: %q (supported: %v)", p.Format, config.ValidFormats())
	}
}

func (p *Printer) text(r *reconstruct.Result) error {
	content := r.Content
	if p.Markdown && content != "" {
		rendered, err := cliui.RenderMarkdown(content)
		if err == nil {
			content = rendered
		}
	}

	if content != "" {
		fmt.Fprintln(p.Out, strings.TrimRight(content, "\n"))
		fmt.Fprintln(p.Out)
	}

	if m := r.Metadata; m != nil {
		fmt.Fprintf(p.Out, "  %s\n", cliui.KeyValue("Provider", string(m.Provider)))
		fmt.Fprintf(p.Out, "  %s\n", cliui.KeyValue("Model", orNone(m.Model)))
		fmt.Fprintf(p.Out, "  %s\n", cliui.KeyValue("ID", orNone(m.ID)))
		fmt.Fprintf(p.Out, "  %s\n", cliui.KeyValue("Chunks", strconv.Itoa(m.ChunkCount)))
		fmt.Fprintf(p.Out, "  %s\n", cliui.KeyValue("Finish", orNone(m.FinishReason)))
		if u := m.Usage; u != nil {
			fmt.Fprintf(p.Out, "  %s\n", cliui.KeyValue("Tokens",
				fmt.Sprintf("%d prompt / %d completion / %d total", u.PromptTokens, u.CompletionTokens, u.TotalTokens)))
		}
	}

	if len(r.Errors) == 0 {
		return nil
	}

	if r.Metadata != nil {
		fmt.Fprintln(p.Out)
	}

	noun := "errors"
	if len(r.Errors) == 1 {
		noun = "error"
	}
	fmt.Fprintf(p.Out, "  %s %d %s\n", cliui.WarnMark, len(r.Errors), noun)

	for _, e := range r.Errors {
		where := "     "
		if e.Line != nil {
			where = fmt.Sprintf("%5d", *e.Line)
		}
		fmt.Fprintf(p.Out, "    %s  %s\n", cliui.DimStyle.Render("line"+where), cliui.ErrorStyle.Render(e.Message))
	}

	return nil
}

func orNone(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
