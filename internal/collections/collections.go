// Copyright 2026 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package collections holds the small generic helpers the driver needs:
// a membership set and slice transforms for building search paths and
// file lists from command-line arguments.
package collections

// Set tracks membership for comparable values.
type Set[T comparable] map[T]struct{}

// SetOf returns a Set containing the given elements.
func SetOf[T comparable](elems ...T) Set[T] {
	s := make(Set[T], len(elems))
	for _, elem := range elems {
		s.Add(elem)
	}
	return s
}

// Add inserts an element into the Set.
func (s Set[T]) Add(elem T) {
	s[elem] = struct{}{}
}

// Contains reports whether elem is in the Set.
func (s Set[T]) Contains(elem T) bool {
	_, ok := s[elem]
	return ok
}

// MapSlice applies fn to each element of s and returns the results as a
// new slice.
func MapSlice[TSlice ~[]T, T, V any](s TSlice, fn func(T) V) []V {
	out := make([]V, len(s))
	for i, elem := range s {
		out[i] = fn(elem)
	}
	return out
}

// Dedup returns s with later duplicates removed, keeping the first-seen
// order. The input is not modified.
func Dedup[S ~[]T, T comparable](s S) S {
	seen := make(Set[T], len(s))
	out := make(S, 0, len(s))
	for _, elem := range s {
		if !seen.Contains(elem) {
			seen.Add(elem)
			out = append(out, elem)
		}
	}
	return out
}
