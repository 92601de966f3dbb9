package extract

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const solutionsJSON = `[{"name":"SAP S/4HANA","logoUrl":"https://cdn.simpleicons.org/sap"},{"name":"Slack","logoUrl":null}]`

func TestArrayEquivalentAcrossWrappings(t *testing.T) {
	want := []any{
		map[string]any{"name": "SAP S/4HANA", "logoUrl": "https://cdn.simpleicons.org/sap"},
		map[string]any{"name": "Slack", "logoUrl": nil},
	}

	inputs := map[string]string{
		"bare":          solutionsJSON,
		"fenced":        "```json\n" + solutionsJSON + "\n```",
		"fenced no tag": "```\n" + solutionsJSON + "\n```",
		"upper tag":     "```JSON\n" + solutionsJSON + "\n```",
		"prose":         "Here are the platforms Acme likely runs:\n" + solutionsJSON + "\nLet me know if you need more.",
		"fence in prose": "Sure!\n\n```json\n" + solutionsJSON + "\n```\n\nThese are estimates.",
		"object prose":  "Note {not json} then " + solutionsJSON,
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			got, err := Array(in)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Array() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestObjectEquivalentAcrossWrappings(t *testing.T) {
	raw := `{"priorities":["Cut costs","Grow APAC"],"summary":"Lean growth {2025}","nested":{"ok":true}}`
	want := map[string]any{
		"priorities": []any{"Cut costs", "Grow APAC"},
		"summary":    "Lean growth {2025}",
		"nested":     map[string]any{"ok": true},
	}

	for _, in := range []string{
		raw,
		"```json\n" + raw + "\n```",
		"Result:\n" + raw + "\nDone.",
		"Trailing closer after payload " + raw + " see (a}",
		"[Answer: " + raw + "]",
		"See [1] and {braces} first. " + raw,
	} {
		got, err := Object(in)
		require.NoError(t, err, in)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Object(%q) mismatch (-want +got):\n%s", in, diff)
		}
	}
}

func TestObjectInsideBracketedProse(t *testing.T) {
	got, err := Object(`[Answer: {"agentName":"Flow Agent"}]`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"agentName": "Flow Agent"}, got)
}

func TestRecordsSkipsCitationMarkers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []any
	}{
		{"citations first", `Sources [1][2]. Here is the list: [{"name":"SAP"}]`, []any{map[string]any{"name": "SAP"}}},
		{"citation after", `[{"name":"SAP"}] as reported in [3]`, []any{map[string]any{"name": "SAP"}}},
		{"empty list", `Nothing found: []`, []any{}},
		{"mixed elements", `[1, {"name":"Slack"}]`, []any{float64(1), map[string]any{"name": "Slack"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Records(tt.in)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Records() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	_, err := Records(`Sources [1][2] and nothing else`)
	assert.ErrorIs(t, err, ErrUnexpectedShape)

	// Array keeps taking the first well-formed array.
	got, err := Array(`Sources [1][2]. [{"name":"SAP"}]`)
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1)}, got)
}

func TestMalformedSpanNotMined(t *testing.T) {
	_, err := Object(`{"outer": {"inner": 1}, oops}`)
	assert.ErrorIs(t, err, ErrMalformedJSON)
}

func TestEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		_, err := Array(in)
		assert.ErrorIs(t, err, ErrEmptyResponse)
		assert.False(t, errors.Is(err, ErrMalformedJSON))

		_, err = Object(in)
		assert.ErrorIs(t, err, ErrEmptyResponse)
		assert.Contains(t, err.Error(), "JSON object")
	}
}

func TestShapeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		shape Shape
	}{
		{"object mode on top-level array", `[{"a":1}]`, ShapeObject},
		{"object mode on array of numbers", `[1,2,3]`, ShapeObject},
		{"array mode on top-level object", `{"a":1}`, ShapeArray},
		{"array mode on object holding array", `{"items":[1,2]}`, ShapeArray},
		{"object mode on null", `null`, ShapeObject},
		{"array mode on string", `"hello"`, ShapeArray},
		{"fenced wrong shape", "```json\n{\"a\":[1]}\n```", ShapeArray},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.in, tt.shape)
			assert.ErrorIs(t, err, ErrUnexpectedShape)
		})
	}
}

func TestMalformedJSON(t *testing.T) {
	tests := []struct {
		in    string
		shape Shape
	}{
		{`[{"name": "SAP",}]`, ShapeArray},
		{`{"a": 1, "b": }`, ShapeObject},
		{`no json here at all`, ShapeArray},
		{`{"a": [1, 2}`, ShapeObject},
	}
	for _, tt := range tests {
		_, err := Extract(tt.in, tt.shape)
		assert.ErrorIs(t, err, ErrMalformedJSON, tt.in)
	}
}

func TestBracketsInsideStrings(t *testing.T) {
	got, err := Array(`Answer: [{"name":"Weird ] name","note":"has [brackets]"}] trailing ]`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Weird ] name", got[0].(map[string]any)["name"])
}

func TestUnbalancedFallsBackToLastCloser(t *testing.T) {
	// the stray opener before the payload never closes on its own
	got, err := Object(`{ {"a":1}`)
	assert.ErrorIs(t, err, ErrMalformedJSON)
	assert.Nil(t, got)
}

func TestUnicodePayload(t *testing.T) {
	got, err := Array("```json\n[\"Zürich Versicherung\",\"日本語\"]\n```")
	require.NoError(t, err)
	assert.Equal(t, []any{"Zürich Versicherung", "日本語"}, got)
}

func TestUnfence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, Unfence("prefix\n```json\n{\"a\":1}\n```\nsuffix"))
	assert.Equal(t, "plain", Unfence("  plain  "))
}
