package provider_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/restream/pkg/llm"
	"github.com/papercomputeco/restream/pkg/llm/provider"
)

// panicky is a provider whose every read panics.
type panicky struct{}

func (panicky) Kind() llm.Kind { return llm.KindOpenAI }
func (panicky) CanHandle(llm.Chunk) bool { panic("boom") }
func (panicky) ExtractContent(llm.Chunk) string { panic("boom") }
func (panicky) FinishReason(llm.Chunk) (llm.Finish, bool) { panic("boom") }
func (panicky) Usage(llm.Chunk, *llm.Usage) bool { panic("boom") }

var _ = Describe("Content", func() {
	var openai provider.Provider

	BeforeEach(func() {
		var err error
		openai, err = provider.New(llm.KindOpenAI)
		Expect(err).NotTo(HaveOccurred())
	})

	It("uses the provider's extraction", func() {
		Expect(provider.Content(openai, chunk(`{"choices":[{"delta":{"content":"Hi"}}]}`))).To(Equal("Hi"))
	})

	It("falls back to the best effort probes when the provider yields nothing", func() {
		Expect(provider.Content(openai, chunk(`{"text":"plain"}`))).To(Equal("plain"))
	})

	It("does not apply provider rules of another format", func() {
		google := chunk(`{"candidates":[{"content":{"parts":[{"text":"G"}]}}]}`)
		Expect(provider.Content(openai, google)).To(BeEmpty())
	})

	It("turns a panic into an empty contribution", func() {
		Expect(func() {
			Expect(provider.Content(panicky{}, chunk(`{"text":"x"}`))).To(BeEmpty())
		}).NotTo(Panic())
	})
})

var _ = Describe("Finish", func() {
	It("turns a panic into no signal", func() {
		_, ok := provider.Finish(panicky{}, chunk(`{}`))
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Usage", func() {
	It("turns a panic into nothing found", func() {
		var u llm.Usage
		Expect(provider.Usage(panicky{}, chunk(`{}`), &u)).To(BeFalse())
	})
})
