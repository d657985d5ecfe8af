// Package llm holds the provider-agnostic types shared by the stream
// reconstruction pipeline: decoded chunks, provider kinds and usage counters.
package llm

import (
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/gjson"
)

// Chunk is one decoded JSON payload taken from a single SSE data segment.
// Its shape is opaque: callers probe it by path and a missing key at any
// depth simply reads as "not found".
type Chunk struct {
	// Raw is the JSON text the chunk was decoded from. For repaired chunks
	// this is the repaired text, not the original segment.
	Raw string

	// Repaired reports whether the segment only decoded after repair.
	Repaired bool

	value gjson.Result
}

// NewChunk wraps already validated JSON text. Use Decode for untrusted text.
func NewChunk(raw string) Chunk {
	return Chunk{Raw: raw, value: gjson.Parse(raw)}
}

// Get resolves a dotted path ("choices.0.delta.content") against the chunk.
// See Lookup.
func (c Chunk) Get(path string) gjson.Result {
	return Lookup(c.value, path)
}

// Lookup resolves a dotted path under r. Numeric keys index arrays. When an
// object repeats a key the last occurrence wins, matching how a JSON decoder
// builds the object.
func Lookup(r gjson.Result, path string) gjson.Result {
	for _, key := range strings.Split(path, ".") {
		var next gjson.Result

		switch {
		case r.IsObject():
			r.ForEach(func(k, v gjson.Result) bool {
				if k.Str == key {
					next = v
				}
				return true
			})
		case r.IsArray():
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 {
				return gjson.Result{}
			}
			i := 0
			r.ForEach(func(_, v gjson.Result) bool {
				if i == idx {
					next = v
					return false
				}
				i++
				return true
			})
		}

		if !next.Exists() {
			return gjson.Result{}
		}
		r = next
	}
	return r
}

// String returns the value at path when it is a JSON string.
func (c Chunk) String(path string) (string, bool) {
	r := c.Get(path)
	if r.Type != gjson.String {
		return "", false
	}
	return r.Str, true
}

// Has reports whether anything exists at path.
func (c Chunk) Has(path string) bool {
	return c.Get(path).Exists()
}

// IsArray reports whether the value at path is a JSON array.
func (c Chunk) IsArray(path string) bool {
	return c.Get(path).IsArray()
}

// Int returns the numeric value at path, or 0 when it is absent or not a number.
func (c Chunk) Int(path string) int64 {
	r := c.Get(path)
	if r.Type != gjson.Number {
		return 0
	}
	return r.Int()
}

// Decoder turns segment text into Chunks. The zero value decodes strictly.
type Decoder struct {
	// Repair enables a second attempt through jsonrepair for segments that
	// look like objects ("{...") but fail strict validation.
	Repair bool
}

// Decode parses s as strict JSON. It never panics and reports failure
// through ok alone.
func Decode(s string) (Chunk, bool) {
	return Decoder{}.Decode(s)
}

// Decode parses s, optionally repairing object-like text that is not valid
// JSON. Only text starting with "{" is ever repaired so that plain noise
// never turns into a string chunk.
func (d Decoder) Decode(s string) (Chunk, bool) {
	if gjson.Valid(s) {
		return NewChunk(s), true
	}

	if !d.Repair || !strings.HasPrefix(strings.TrimSpace(s), "{") {
		return Chunk{}, false
	}

	repaired, err := jsonrepair.JSONRepair(s)
	if err != nil || !gjson.Valid(repaired) {
		return Chunk{}, false
	}

	c := NewChunk(repaired)
	c.Repaired = true
	return c, true
}
