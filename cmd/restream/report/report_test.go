package report_test

import (
	"bytes"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/restream/cmd/restream/report"
	"github.com/papercomputeco/restream/pkg/reconstruct"
)

const stream = "data: {\"model\":\"gpt-4o\",\"choices\":[{\"delta\":{\"content\":\"Hello\"},\"finish_reason\":\"stop\"}]}\ndata: {bad\n"

var _ = Describe("Printer", func() {
	var out *bytes.Buffer

	BeforeEach(func() {
		out = &bytes.Buffer{}
	})

	Context("json", func() {
		It("prints a single result bare", func() {
			p := &report.Printer{Out: out, Format: "json"}
			Expect(p.Print(report.Entry{Source: "a", Result: reconstruct.Reconstruct(stream)})).To(Succeed())

			var got reconstruct.Result
			Expect(json.Unmarshal(out.Bytes(), &got)).To(Succeed())
			Expect(got.Content).To(Equal("Hello"))
			Expect(got.Errors).To(HaveLen(1))
		})

		It("prints several results as sourced entries", func() {
			p := &report.Printer{Out: out, Format: "json"}
			Expect(p.Print(
				report.Entry{Source: "a", Result: reconstruct.Reconstruct(stream)},
				report.Entry{Source: "b", Result: reconstruct.Reconstruct("")},
			)).To(Succeed())

			var got []report.Entry
			Expect(json.Unmarshal(out.Bytes(), &got)).To(Succeed())
			Expect(got).To(HaveLen(2))
			Expect(got[0].Source).To(Equal("a"))
			Expect(got[1].Result.Errors[0].Message).To(Equal("No input provided"))
		})
	})

	Context("text", func() {
		It("prints content, metadata and errors", func() {
			p := &report.Printer{Out: out, Format: "text"}
			Expect(p.Print(report.Entry{Source: "a", Result: reconstruct.Reconstruct(stream)})).To(Succeed())

			text := out.String()
			Expect(text).To(HavePrefix("Hello\n"))
			Expect(text).To(ContainSubstring("openai"))
			Expect(text).To(ContainSubstring("gpt-4o"))
			Expect(text).To(ContainSubstring("1 error"))
			Expect(text).To(ContainSubstring("Invalid JSON - {bad"))
		})

		It("labels each source when printing several", func() {
			p := &report.Printer{Out: out}
			Expect(p.Print(
				report.Entry{Source: "first.sse", Result: reconstruct.Reconstruct(stream)},
				report.Entry{Source: "second.sse", Result: reconstruct.Reconstruct("data: [DONE]\n")},
			)).To(Succeed())

			text := out.String()
			Expect(text).To(ContainSubstring("==> first.sse <=="))
			Expect(text).To(ContainSubstring("==> second.sse <=="))
			Expect(text).To(ContainSubstring("No valid SSE data found"))
		})
	})

	It("rejects unknown formats", func() {
		p := &report.Printer{Out: out, Format: "yaml"}
		Expect(p.Print(report.Entry{Result: reconstruct.Reconstruct(stream)})).To(MatchError(ContainSubstring("unknown output format")))
	})
})
