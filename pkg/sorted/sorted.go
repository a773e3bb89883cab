// Package sorted provides found-or-end lookups over ascending slices.
package sorted

import (
	"cmp"
	"slices"
)

// Find returns the index of the first element of s equal to v, or len(s) when
// v is absent. s must be sorted in ascending order.
func Find[S ~[]E, E cmp.Ordered](s S, v E) int {
	i, found := slices.BinarySearch(s, v)
	if !found {
		return len(s)
	}
	return i
}

// FindFunc is like Find but orders elements with compare, which must return a
// negative number, zero or a positive number as e sorts before, equal to or
// after target.
func FindFunc[S ~[]E, E, T any](s S, target T, compare func(E, T) int) int {
	i, found := slices.BinarySearchFunc(s, target, compare)
	if !found {
		return len(s)
	}
	return i
}

// Contains reports whether v is present in the ascending slice s.
func Contains[S ~[]E, E cmp.Ordered](s S, v E) bool {
	return Find(s, v) != len(s)
}

// IsEnd reports whether i is the not-found marker for s.
func IsEnd[S ~[]E, E any](s S, i int) bool {
	return i == len(s)
}
