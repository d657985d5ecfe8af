package sse_test

import (
	"errors"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/restream/pkg/sse"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func readAll(r *sse.LineReader) ([]sse.Line, error) {
	var lines []sse.Line
	for {
		line, err := r.Next()
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return lines, err
		}
		lines = append(lines, line)
	}
}

var _ = Describe("LineReader", func() {
	It("numbers lines from one", func() {
		lines, err := readAll(sse.NewLineReader(strings.NewReader("a\nb\n")))
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(Equal([]sse.Line{{Number: 1, Text: "a"}, {Number: 2, Text: "b"}}))
	})

	It("strips CRLF terminators", func() {
		lines, err := readAll(sse.NewLineReader(strings.NewReader("a\r\nb\r\n")))
		Expect(err).NotTo(HaveOccurred())
		Expect(lines[0].Text).To(Equal("a"))
		Expect(lines[1].Text).To(Equal("b"))
	})

	It("returns a final unterminated line", func() {
		lines, err := readAll(sse.NewLineReader(strings.NewReader("a\nlast")))
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(HaveLen(2))
		Expect(lines[1]).To(Equal(sse.Line{Number: 2, Text: "last"}))
	})

	It("counts blank lines", func() {
		lines, err := readAll(sse.NewLineReader(strings.NewReader("\n\nx\n")))
		Expect(err).NotTo(HaveOccurred())
		Expect(lines[2]).To(Equal(sse.Line{Number: 3, Text: "x"}))
	})

	It("reads lines longer than the buffer", func() {
		long := strings.Repeat("x", 200*1024)
		lines, err := readAll(sse.NewLineReader(strings.NewReader(long + "\n")))
		Expect(err).NotTo(HaveOccurred())
		Expect(lines[0].Text).To(HaveLen(200 * 1024))
	})

	It("surfaces read errors", func() {
		_, err := sse.NewLineReader(failingReader{}).Next()
		Expect(err).To(MatchError("disk on fire"))
	})

	It("keeps returning EOF once exhausted", func() {
		r := sse.NewLineReader(strings.NewReader(""))
		_, err := r.Next()
		Expect(err).To(MatchError(io.EOF))
		_, err = r.Next()
		Expect(err).To(MatchError(io.EOF))
	})
})

var _ = Describe("SplitLines", func() {
	It("matches LineReader", func() {
		text := "data: a\r\n\r\ndata: b\nend"
		fromReader, err := readAll(sse.NewLineReader(strings.NewReader(text)))
		Expect(err).NotTo(HaveOccurred())
		Expect(sse.SplitLines(text)).To(Equal(fromReader))
	})
})
