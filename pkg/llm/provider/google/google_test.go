package google_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/restream/pkg/llm"
	"github.com/papercomputeco/restream/pkg/llm/provider"
	"github.com/papercomputeco/restream/pkg/llm/provider/google"
)

func chunk(raw string) llm.Chunk {
	c, ok := llm.Decode(raw)
	Expect(ok).To(BeTrue(), "fixture must be valid JSON: %s", raw)
	return c
}

var _ = Describe("Google Provider", func() {
	var p provider.Provider

	BeforeEach(func() {
		p = google.New()
	})

	Describe("Kind", func() {
		It("returns google", func() {
			Expect(p.Kind()).To(Equal(llm.KindGoogle))
		})
	})

	Describe("CanHandle", func() {
		It("accepts chunks with a candidates array", func() {
			Expect(p.CanHandle(chunk(`{"candidates":[]}`))).To(BeTrue())
		})

		It("rejects everything else", func() {
			Expect(p.CanHandle(chunk(`{"candidates":"none"}`))).To(BeFalse())
			Expect(p.CanHandle(chunk(`{"choices":[]}`))).To(BeFalse())
		})
	})

	Describe("ExtractContent", func() {
		It("joins the text of every part in order", func() {
			c := chunk(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello"},{"text":", "},{"text":"world"}]}}]}`)
			Expect(p.ExtractContent(c)).To(Equal("Hello, world"))
		})

		It("treats parts without text as empty", func() {
			c := chunk(`{"candidates":[{"content":{"parts":[{"functionCall":{"name":"f"}},{"text":"after"},{"text":7}]}}]}`)
			Expect(p.ExtractContent(c)).To(Equal("after"))
		})

		It("only reads the first candidate", func() {
			c := chunk(`{"candidates":[{"content":{"parts":[{"text":"one"}]}},{"content":{"parts":[{"text":"two"}]}}]}`)
			Expect(p.ExtractContent(c)).To(Equal("one"))
		})

		It("returns empty when parts is missing or not an array", func() {
			Expect(p.ExtractContent(chunk(`{"candidates":[{"finishReason":"STOP"}]}`))).To(BeEmpty())
			Expect(p.ExtractContent(chunk(`{"candidates":[{"content":{"parts":{"text":"x"}}}]}`))).To(BeEmpty())
		})
	})

	Describe("FinishReason", func() {
		It("reports the first candidate's finishReason", func() {
			f, ok := p.FinishReason(chunk(`{"candidates":[{"finishReason":"STOP"}]}`))
			Expect(ok).To(BeTrue())
			Expect(f).To(Equal(llm.Finish{Reason: "STOP", Explicit: true}))
		})

		It("reports nothing mid-stream", func() {
			_, ok := p.FinishReason(chunk(`{"candidates":[{"content":{"parts":[{"text":"x"}]}}]}`))
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Usage", func() {
		It("reads usageMetadata", func() {
			var u llm.Usage
			c := chunk(`{"candidates":[],"usageMetadata":{"promptTokenCount":8,"candidatesTokenCount":4,"totalTokenCount":12,"cachedContentTokenCount":2}}`)
			Expect(p.Usage(c, &u)).To(BeTrue())
			Expect(u).To(Equal(llm.Usage{PromptTokens: 8, CompletionTokens: 4, TotalTokens: 12, CacheReadInputTokens: 2}))
		})

		It("reports nothing without usageMetadata", func() {
			var u llm.Usage
			Expect(p.Usage(chunk(`{"candidates":[]}`), &u)).To(BeFalse())
		})
	})
})
