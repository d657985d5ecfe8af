package sse

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Line is one line of a transcript with its 1-based position.
// Text never includes the line terminator.
type Line struct {
	Number int
	Text   string
}

// LineReader reads transcript lines from a source io.Reader.
// Both "\n" and "\r\n" terminators are accepted. Lines have no length limit.
type LineReader struct {
	reader *bufio.Reader
	number int
	done   bool
}

// NewLineReader returns a LineReader over src.
func NewLineReader(src io.Reader) *LineReader {
	return &LineReader{
		reader: bufio.NewReaderSize(src, 64*1024),
	}
}

// Next returns the next line. It returns io.EOF once the source is exhausted;
// a final line without a terminator is still returned before io.EOF.
func (r *LineReader) Next() (Line, error) {
	if r.done {
		return Line{}, io.EOF
	}

	raw, err := r.reader.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return Line{}, err
		}

		r.done = true
		if raw == "" {
			return Line{}, io.EOF
		}
	}

	r.number++
	return Line{Number: r.number, Text: trimTerminator(raw)}, nil
}

// SplitLines splits an in-memory transcript the same way LineReader does.
func SplitLines(text string) []Line {
	var lines []Line
	n := 0
	for raw := range strings.Lines(text) {
		n++
		lines = append(lines, Line{Number: n, Text: trimTerminator(raw)})
	}
	return lines
}

func trimTerminator(raw string) string {
	raw = strings.TrimSuffix(raw, "\n")
	return strings.TrimSuffix(raw, "\r")
}
