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

package collections

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	seen := SetOf("main.c", "util.c")
	assert.True(t, seen.Contains("main.c"))
	assert.False(t, seen.Contains("util.h"))

	seen.Add("util.h")
	assert.True(t, seen.Contains("util.h"))

	empty := SetOf[string]()
	assert.False(t, empty.Contains("main.c"))
}

func TestMapSlice(t *testing.T) {
	dirs := MapSlice([]string{"include", "vendor/include"}, func(dir string) string {
		return "-I" + dir
	})
	assert.Equal(t, []string{"-Iinclude", "-Ivendor/include"}, dirs)

	assert.Empty(t, MapSlice([]string(nil), strings.ToUpper))
}

func TestDedup(t *testing.T) {
	testCases := []struct {
		name     string
		in       []string
		expected []string
	}{
		{
			name:     "repeated include dirs keep first position",
			in:       []string{"include", "src", "include", "src"},
			expected: []string{"include", "src"},
		},
		{
			name:     "no duplicates",
			in:       []string{"a.c", "b.c"},
			expected: []string{"a.c", "b.c"},
		},
		{
			name:     "empty",
			in:       nil,
			expected: []string{},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := append([]string(nil), tc.in...)
			assert.Equal(t, tc.expected, Dedup(in))
			assert.Equal(t, tc.in, in, "input must not be modified")
		})
	}
}
