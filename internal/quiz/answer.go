package quiz

import "sort"

// NormalizeAnswer returns the distinct option indices in ascending order.
// The result is never nil.
func NormalizeAnswer(indices []int) []int {
	seen := make(map[int]struct{}, len(indices))
	out := make([]int, 0, len(indices))
	for _, idx := range indices {
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// SameAnswer compares two index collections as sets.
func SameAnswer(stored, submitted []int) bool {
	a := NormalizeAnswer(stored)
	b := NormalizeAnswer(submitted)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
