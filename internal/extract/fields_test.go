package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringHelpers(t *testing.T) {
	m := map[string]any{"name": "  Workday HCM ", "count": 3.0, "blank": "   "}

	assert.Equal(t, "Workday HCM", String(m, "name"))
	assert.Equal(t, "", String(m, "count"))
	assert.Equal(t, "", String(m, "missing"))
	assert.Equal(t, "fallback", StringOr(m, "blank", "fallback"))
	assert.Equal(t, "Workday HCM", StringOr(m, "name", "fallback"))
}

func TestStringList(t *testing.T) {
	m := map[string]any{"priorities": []any{" one ", "", 2.0, "two", "three", "four"}}

	assert.Equal(t, []string{"one", "two", "three"}, StringList(m, "priorities", 3))
	assert.Equal(t, []string{"one", "two", "three", "four"}, StringList(m, "priorities", 0))
	assert.Empty(t, StringList(m, "missing", 3))
	assert.Empty(t, Strings("not an array", 0))
}

func TestObjects(t *testing.T) {
	got := Objects([]any{map[string]any{"pair": "a + b"}, "skip", nil, map[string]any{}})
	assert.Len(t, got, 2)
	assert.Empty(t, Objects(map[string]any{}))
}

func TestNumber(t *testing.T) {
	m := map[string]any{"f": 72.5, "s": " 85 ", "bad": "high", "nil": nil}

	v, ok := Number(m, "f")
	assert.True(t, ok)
	assert.Equal(t, 72.5, v)

	v, ok = Number(m, "s")
	assert.True(t, ok)
	assert.Equal(t, 85.0, v)

	_, ok = Number(m, "bad")
	assert.False(t, ok)
	_, ok = Number(m, "nil")
	assert.False(t, ok)
	_, ok = Number(map[string]any{"inf": "Inf"}, "inf")
	assert.False(t, ok)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-4, 0, 100))
	assert.Equal(t, 100.0, Clamp(140, 0, 100))
	assert.Equal(t, 42.0, Clamp(42, 0, 100))
}
