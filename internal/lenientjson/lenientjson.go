// Package lenientjson extracts structured values embedded in free-form
// model output. Upstream text generators are asked to "return JSON" but do
// not reliably produce it: the value may be wrapped in prose, fenced, or
// truncated. Extraction is best-effort and never fails the caller; on any
// parse failure the caller falls back to an empty container or wraps the
// raw text.
package lenientjson

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Object extracts the first top-level JSON object embedded in text.
// The second return value reports whether a well-formed object was found.
func Object(text string) (map[string]interface{}, bool) {
	idx := strings.IndexByte(text, '{')
	if idx < 0 {
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text[idx:])))
	var obj map[string]interface{}
	if err := dec.Decode(&obj); err != nil {
		return nil, false
	}
	return obj, true
}

// Array extracts the first top-level JSON array embedded in text.
func Array(text string) ([]interface{}, bool) {
	idx := strings.IndexByte(text, '[')
	if idx < 0 {
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text[idx:])))
	var arr []interface{}
	if err := dec.Decode(&arr); err != nil {
		return nil, false
	}
	return arr, true
}

// ObjectOrRaw extracts an object from text, or wraps the raw text under a
// "raw" escape field so the caller can still return a 200 to its client.
func ObjectOrRaw(text string) map[string]interface{} {
	if obj, ok := Object(text); ok {
		return obj
	}
	return map[string]interface{}{"raw": text}
}

// ArrayOrEmpty extracts an array from text, falling back to an empty array
func ArrayOrEmpty(text string) []interface{} {
	if arr, ok := Array(text); ok {
		return arr
	}
	return []interface{}{}
}
