package sse

import "strings"

const (
	dataMarker = "data:"

	// DoneSentinel terminates OpenAI style streams. It carries no payload.
	DoneSentinel = "[DONE]"
)

// controlPrefixes are SSE fields that never carry payload.
var controlPrefixes = []string{"event:", "id:", "retry:"}

// DataSegments returns every data payload found on one line, in order.
//
// A "data:" marker only counts at a field boundary: at the start of the line,
// after whitespace, or directly after a complete JSON value. A marker inside a
// JSON string therefore never splits a payload. When the trimmed line starts
// with "{" and has no leading marker, the line itself is the first payload.
//
// Segments are returned verbatim, surrounding whitespace included. Empty
// segments, the [DONE] sentinel and SSE control fields are dropped.
func DataSegments(line string) []string {
	start := -1

	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "{") {
		start = len(line) - len(trimmed)
	} else if i := nextMarker(line, 0, false); i >= 0 {
		start = i + len(dataMarker)
	} else {
		return nil
	}

	var segments []string
	for {
		from, boundary := start, false
		if end, closed := jsonEnd(line, start); end >= 0 {
			from, boundary = end, closed
		}

		next := nextMarker(line, from, boundary)
		if next < 0 {
			return appendSegment(segments, line[start:])
		}

		segments = appendSegment(segments, line[start:next])
		start = next + len(dataMarker)
	}
}

func appendSegment(segments []string, seg string) []string {
	s := strings.TrimSpace(seg)
	if s == "" || s == DoneSentinel {
		return segments
	}

	for _, p := range controlPrefixes {
		if strings.HasPrefix(s, p) {
			return segments
		}
	}

	return append(segments, seg)
}

// nextMarker finds the next "data:" at or after from that sits on a field
// boundary. With afterValue set, a marker exactly at from also counts.
func nextMarker(line string, from int, afterValue bool) int {
	for i := from; i < len(line); {
		j := strings.Index(line[i:], dataMarker)
		if j < 0 {
			return -1
		}

		pos := i + j
		if pos == 0 || (afterValue && pos == from) || isSpace(line[pos-1]) {
			return pos
		}

		i = pos + 1
	}

	return -1
}

// jsonEnd scans the JSON object or array that starts at or after from
// (leading whitespace allowed). When it closes, jsonEnd returns the index just
// past it and true. When it does not, the scan stops at the first
// field-boundary "data:" outside a string, or at the end of the line, and
// returns that index and false. It returns -1 when no object or array starts
// there. Strings and escapes are tracked so brackets and markers inside string
// values are ignored. Bracket kinds are not matched against each other.
//
// Each byte of a line is scanned once, even when every payload is truncated.
func jsonEnd(line string, from int) (int, bool) {
	i := from
	for i < len(line) && isSpace(line[i]) {
		i++
	}

	if i >= len(line) || (line[i] != '{' && line[i] != '[') {
		return -1, false
	}

	depth := 0
	inString := false
	escaped := false

	for ; i < len(line); i++ {
		ch := line[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case 'd':
			if isSpace(line[i-1]) && strings.HasPrefix(line[i:], dataMarker) {
				return i, false
			}
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}

	return len(line), false
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}
