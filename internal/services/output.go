package services

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseOutput extracts the JSON object the model was asked to return. It tries
// a strict parse first, then the first balanced top-level object in the text.
// It never coerces field types.
func ParseOutput(raw string) (map[string]any, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedOutput)
	}

	if obj, ok := decodeObject(text); ok {
		return obj, nil
	}

	if unfenced := stripCodeFence(text); unfenced != text {
		if obj, ok := decodeObject(unfenced); ok {
			return obj, nil
		}
		text = unfenced
	}

	for start := strings.IndexByte(text, '{'); start >= 0; {
		end := matchBrace(text, start)
		if end >= 0 {
			if obj, ok := decodeObject(text[start : end+1]); ok {
				return obj, nil
			}
		} else if opensJSONObject(text[start+1:]) {
			// A truncated object; its nested objects are not top level.
			break
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}

	return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedOutput)
}

// MissingSections lists the required top-level keys absent from obj, in order.
// A key present with a null value counts as missing.
func MissingSections(obj map[string]any, required []string) []string {
	var missing []string
	for _, key := range required {
		if v, ok := obj[key]; !ok || v == nil {
			missing = append(missing, key)
		}
	}
	return missing
}

func decodeObject(text string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// stripCodeFence removes a surrounding markdown code fence such as ```json.
func stripCodeFence(text string) string {
	start := strings.Index(text, "```")
	if start < 0 {
		return text
	}
	body := text[start+3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// opensJSONObject reports whether rest, the text after a '{', starts like a
// JSON object body rather than prose that happens to contain a brace.
func opensJSONObject(rest string) bool {
	rest = strings.TrimLeft(rest, " \t\r\n")
	return rest == "" || rest[0] == '"' || rest[0] == '}'
}

// matchBrace returns the index of the brace closing the object opened at
// text[start], skipping braces inside string literals. It returns -1 when the
// object is never closed.
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
