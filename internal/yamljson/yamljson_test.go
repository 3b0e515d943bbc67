package yamljson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToJSONKeepsYAML12Keys(t *testing.T) {
	out, err := ToJSON([]byte("joins:\n  - {left: \"a[]\", right: \"b[]\", on: id}\nflags: {yes: 1, no: 2, off: true}\n"))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"joins": [{"left": "a[]", "right": "b[]", "on": "id"}], "flags": {"yes": 1, "no": 2, "off": true}}`,
		string(out))
}

func TestToJSONNonStringKeys(t *testing.T) {
	out, err := ToJSON([]byte("fields:\n  1: {json_path: a}\n  true: {json_path: b}\n"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"fields": {"1": {"json_path": "a"}, "true": {"json_path": "b"}}}`, string(out))
}

func TestDecode(t *testing.T) {
	v, err := Decode([]byte("a: [1, x, null]\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{float64(1), "x", nil}}, v)

	v, err = Decode(nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = Decode([]byte("a: [1"))
	require.Error(t, err)
}
