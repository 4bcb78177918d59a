package sliceutil

import "golang.org/x/exp/slices"

// Contains returns whether value is present in s.
func Contains[T comparable](s []T, value T) bool {
	return slices.Contains(s, value)
}

// RemoveDuplicates returns a copy of s with duplicate elements removed,
// preserving the order of first occurrence.
func RemoveDuplicates[T comparable](s []T) []T {
	seen := make(map[T]struct{}, len(s))
	result := make([]T, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
