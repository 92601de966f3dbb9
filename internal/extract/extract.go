// Package extract recovers structured JSON from free-form language-model
// output. Models wrap JSON in code fences, prefix it with prose, or append
// commentary; the functions here locate the payload, parse it, and check that
// its top-level shape is the one the caller asked for.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrEmptyResponse is returned for empty or whitespace-only input.
	ErrEmptyResponse = errors.New("empty response from language model")
	// ErrMalformedJSON is returned when the located payload is not valid JSON.
	ErrMalformedJSON = errors.New("failed to parse JSON content from language model response")
	// ErrUnexpectedShape is returned when the payload parses but has the wrong top-level shape.
	ErrUnexpectedShape = errors.New("unexpected JSON structure")
)

// Shape is the top-level JSON kind a caller expects.
type Shape int

const (
	ShapeArray Shape = iota
	ShapeObject
)

func (s Shape) String() string {
	if s == ShapeObject {
		return "object"
	}
	return "array"
}

func (s Shape) delims() (open, close byte) {
	if s == ShapeObject {
		return '{', '}'
	}
	return '[', ']'
}

func (s Shape) other() Shape {
	if s == ShapeObject {
		return ShapeArray
	}
	return ShapeObject
}

var fencePattern = regexp.MustCompile("(?is)```(?:json)?[ \\t]*\\r?\\n(.*?)```")

// Array extracts a JSON array from text.
func Array(text string) ([]any, error) {
	v, err := extract(text, ShapeArray, nil)
	if err != nil {
		return nil, err
	}
	return v.([]any), nil
}

// Records extracts a JSON array of objects from text. Arrays that hold only
// scalars, such as citation markers like "[1][2]", are skipped in favor of a
// later array. An empty array is accepted.
func Records(text string) ([]any, error) {
	v, err := extract(text, ShapeArray, holdsObjects)
	if err != nil {
		return nil, err
	}
	return v.([]any), nil
}

// Object extracts a JSON object from text.
func Object(text string) (map[string]any, error) {
	v, err := extract(text, ShapeObject, nil)
	if err != nil {
		return nil, err
	}
	return v.(map[string]any), nil
}

// Extract locates, parses and shape-checks the JSON payload in text.
// The returned value is a []any for ShapeArray and a map[string]any for
// ShapeObject.
func Extract(text string, shape Shape) (any, error) {
	return extract(text, shape, nil)
}

// extract tries each opener of shape in order and returns the first span
// that parses, is not nested inside a valid value of the other shape, and
// passes accept. A span that fails to parse is not searched for inner values.
func extract(text string, shape Shape, accept func(any) bool) (any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w while expecting a JSON %s", ErrEmptyResponse, shape)
	}

	body := Unfence(text)
	open, close := shape.delims()
	shapeErr := fmt.Errorf("%w: expected a JSON %s", ErrUnexpectedShape, shape)
	var firstErr error
	keep := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	for from := 0; from < len(body); {
		i := strings.IndexByte(body[from:], open)
		if i < 0 {
			break
		}
		start := from + i
		end := matchDelim(body, start, open, close)
		if end < 0 {
			end = strings.LastIndexByte(body, close)
		}
		if end <= start {
			from = start + 1
			continue
		}
		from = end + 1

		var v any
		if err := json.Unmarshal([]byte(body[start:end+1]), &v); err != nil {
			keep(fmt.Errorf("%w: %v", ErrMalformedJSON, err))
			continue
		}
		if enclosed(body, start, end, shape.other()) || (accept != nil && !accept(v)) {
			keep(shapeErr)
			continue
		}
		return v, nil
	}
	if firstErr != nil {
		return nil, firstErr
	}

	// No opener at all: report whether the text is JSON of the wrong shape.
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return nil, shapeErr
}

func holdsObjects(v any) bool {
	items := v.([]any)
	if len(items) == 0 {
		return true
	}
	for _, item := range items {
		if _, ok := item.(map[string]any); ok {
			return true
		}
	}
	return false
}

// Unfence returns the content of the first fenced code block in text, or
// the trimmed text when there is none.
func Unfence(text string) string {
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

// enclosed reports whether the span [start, end] sits inside a valid JSON
// value of the other shape, meaning the candidate is nested rather than top
// level. Brackets that merely wrap it in prose do not count.
func enclosed(s string, start, end int, other Shape) bool {
	open, close := other.delims()
	for i := 0; i < start; i++ {
		if s[i] != open {
			continue
		}
		j := matchDelim(s, i, open, close)
		if j > end && json.Valid([]byte(s[i:j+1])) {
			return true
		}
	}
	return false
}

// matchDelim returns the index of the delimiter closing the one at start,
// skipping JSON string contents, or -1 when unbalanced.
func matchDelim(s string, start int, open, close byte) int {
	depth := 0
	inString := false
	escape := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escape:
				escape = false
			case ch == '\\':
				escape = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
