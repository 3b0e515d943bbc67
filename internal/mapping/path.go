package mapping

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ParsePath parses a path string into a FieldPath.
// Supports: "key", "nested.key", "list[]", "list[].key".
func ParsePath(path string) (FieldPath, error) {
	if strings.TrimSpace(path) == "" {
		return FieldPath{}, errors.New("empty path")
	}

	var segments []PathSegment

	for part := range strings.SplitSeq(path, ".") {
		if part == "" {
			return FieldPath{}, fmt.Errorf("invalid path %q: empty segment", path)
		}

		isSlice := false
		name := part

		if strings.HasSuffix(part, "[]") {
			isSlice = true
			name = strings.TrimSuffix(part, "[]")

			if name == "" {
				return FieldPath{}, fmt.Errorf("invalid path %q: expansion without key", path)
			}
		}

		if !isValidKey(name) {
			return FieldPath{}, fmt.Errorf("invalid path %q: invalid key %q", path, name)
		}

		segments = append(segments, PathSegment{
			Name:    name,
			IsSlice: isSlice,
		})
	}

	return FieldPath{Segments: segments}, nil
}

// isValidKey accepts any JSON object key that does not collide with the path
// syntax: no brackets, dots, or whitespace.
func isValidKey(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r == '[' || r == ']' || r == '.' || unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}

	return true
}
