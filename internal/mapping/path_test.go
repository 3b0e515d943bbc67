package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, path string) FieldPath {
	t.Helper()

	fp, err := ParsePath(path)
	require.NoError(t, err)

	return fp
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		path       string
		segments   []PathSegment
		expansions []int
	}{
		{"policyNumber", []PathSegment{{Name: "policyNumber"}}, nil},
		{"policy.vehicleList[].vin", []PathSegment{
			{Name: "policy"}, {Name: "vehicleList", IsSlice: true}, {Name: "vin"},
		}, []int{1}},
		{"a[].b[]", []PathSegment{{Name: "a", IsSlice: true}, {Name: "b", IsSlice: true}}, []int{0, 1}},
		{"address-line_1", []PathSegment{{Name: "address-line_1"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			fp, err := ParsePath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.segments, fp.Segments)
			assert.Equal(t, tt.expansions, fp.Expansions())
			assert.Equal(t, tt.path, fp.String())
			assert.Equal(t, len(tt.expansions) > 0, fp.HasExpansion())
		})
	}
}

func TestParsePathErrors(t *testing.T) {
	for _, path := range []string{"", "  ", "a..b", ".a", "a.", "[]", "a.[]", "a b", "a[0]", "a[].b]"} {
		_, err := ParsePath(path)
		assert.Error(t, err, "path %q", path)
	}
}

func TestFieldPathHelpers(t *testing.T) {
	fp := mustParse(t, "policy.vehicleList[].vin")

	assert.Equal(t, "vin", fp.Leaf())
	assert.Equal(t, "policy.vehicleList[]", fp.Slice(0, 2).String())
	assert.True(t, fp.Equals(mustParse(t, "policy.vehicleList[].vin")))
	assert.False(t, fp.Equals(mustParse(t, "policy.vehicleList.vin")))
	assert.True(t, FieldPath{}.IsEmpty())
	assert.Equal(t, "", FieldPath{}.Leaf())

}
