package match

import "sort"

// Levenshtein computes the edit distance between two strings using two rolling rows.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	if len(a) > len(b) {
		a, b = b, a
	}

	if len(a) == 0 {
		return len(b)
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j

		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(a)]
}

// Suggest returns the known names closest to name (after normalization), best
// first. Only names within maxDistance edits are returned.
func Suggest(name string, known []string, maxDistance int) []string {
	type scored struct {
		name string
		dist int
	}

	norm := NormalizeIdent(name)

	var hits []scored

	for _, k := range known {
		d := Levenshtein(norm, NormalizeIdent(k))
		if d <= maxDistance {
			hits = append(hits, scored{name: k, dist: d})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}

	return out
}
