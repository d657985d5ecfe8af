// Package storagetest holds the behavior every storage.Driver must share,
// expressed as Ginkgo specs that each driver's suite runs against itself.
package storagetest

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/restream/pkg/reconstruct"
	"github.com/papercomputeco/restream/pkg/storage"
)

const (
	OpenAITranscript    = "data: {\"id\":\"chatcmpl-1\",\"model\":\"gpt-4o\",\"choices\":[{\"delta\":{\"content\":\"Hello\"}}]}\ndata: [DONE]\n"
	AnthropicTranscript = "data: {\"type\":\"content_block_delta\",\"delta\":{\"text\":\"Hi\"}}\n"
	BrokenTranscript    = "data: {bad json\n"
)

// Transcript reconstructs input and wraps it in a record created at the
// given offset from a fixed instant, so ordering is deterministic.
func Transcript(source, input string, offset time.Duration) *storage.Transcript {
	t := storage.NewTranscript(source, input, reconstruct.Reconstruct(input))
	t.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC).Add(offset)
	return t
}

// DriverBehavior declares the Ginkgo tests every storage.Driver must pass. The
// driver func is called inside each spec, after the suite's BeforeEach.
func DriverBehavior(driver func() storage.Driver) {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("Put", func() {
		It("reports new inserts", func() {
			isNew, err := driver().Put(ctx, Transcript("a.sse", OpenAITranscript, 0))
			Expect(err).NotTo(HaveOccurred())
			Expect(isNew).To(BeTrue())
		})

		It("deduplicates by content hash", func() {
			_, err := driver().Put(ctx, Transcript("a.sse", OpenAITranscript, 0))
			Expect(err).NotTo(HaveOccurred())

			isNew, err := driver().Put(ctx, Transcript("b.sse", OpenAITranscript, time.Minute))
			Expect(err).NotTo(HaveOccurred())
			Expect(isNew).To(BeFalse())

			got, err := driver().Get(ctx, storage.HashInput(OpenAITranscript))
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Source).To(Equal("a.sse"))
		})

		It("rejects nil", func() {
			_, err := driver().Put(ctx, nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Get", func() {
		It("round-trips the record and its reconstruction", func() {
			in := Transcript("a.sse", OpenAITranscript, 0)
			_, err := driver().Put(ctx, in)
			Expect(err).NotTo(HaveOccurred())

			got, err := driver().Get(ctx, in.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Hash).To(Equal(in.Hash))
			Expect(got.Input).To(Equal(OpenAITranscript))
			Expect(got.Provider).To(Equal("openai"))
			Expect(got.ChunkCount).To(Equal(1))
			Expect(got.ErrorCount).To(BeZero())
			Expect(got.CreatedAt.Equal(in.CreatedAt)).To(BeTrue())
			Expect(got.Result.Content).To(Equal("Hello"))
			Expect(got.Result.Metadata).NotTo(BeNil())
			Expect(*got.Result.Metadata.Model).To(Equal("gpt-4o"))
			Expect(got.Result.Errors).To(BeNil())
		})

		It("keeps parse errors", func() {
			in := Transcript("bad.sse", BrokenTranscript, 0)
			_, err := driver().Put(ctx, in)
			Expect(err).NotTo(HaveOccurred())

			got, err := driver().Get(ctx, in.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ErrorCount).To(Equal(1))
			Expect(got.Result.Metadata).To(BeNil())
			Expect(got.Result.Errors).To(HaveLen(1))
			Expect(*got.Result.Errors[0].Line).To(Equal(1))
		})

		It("returns NotFoundError for unknown hashes", func() {
			_, err := driver().Get(ctx, "deadbeef")

			var nf storage.NotFoundError
			Expect(errors.As(err, &nf)).To(BeTrue())
			Expect(nf.Hash).To(Equal("deadbeef"))
		})
	})

	Describe("Has", func() {
		It("reports presence", func() {
			in := Transcript("a.sse", AnthropicTranscript, 0)

			ok, err := driver().Has(ctx, in.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			_, err = driver().Put(ctx, in)
			Expect(err).NotTo(HaveOccurred())

			ok, err = driver().Has(ctx, in.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			for _, t := range []*storage.Transcript{
				Transcript("1.sse", OpenAITranscript, 0),
				Transcript("2.sse", AnthropicTranscript, time.Minute),
				Transcript("3.sse", BrokenTranscript, 2*time.Minute),
			} {
				_, err := driver().Put(ctx, t)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("returns newest first", func() {
			list, err := driver().List(ctx, storage.ListOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(sources(list)).To(Equal([]string{"3.sse", "2.sse", "1.sse"}))
		})

		It("honors the limit", func() {
			list, err := driver().List(ctx, storage.ListOptions{Limit: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(sources(list)).To(Equal([]string{"3.sse", "2.sse"}))
		})

		It("filters by provider", func() {
			list, err := driver().List(ctx, storage.ListOptions{Provider: "anthropic"})
			Expect(err).NotTo(HaveOccurred())
			Expect(sources(list)).To(Equal([]string{"2.sse"}))
		})
	})
}

func sources(ts []*storage.Transcript) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Source)
	}
	return out
}
