// Copyright 2025 EngFlow Inc. All rights reserved.
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

// Package source maps opaque 32-bit source locations back to files, offsets
// and line/column pairs, and records the macro instantiation chains created
// during preprocessing. It also owns file loading and buffer caching.
package source

import "fmt"

// Location is an opaque handle identifying one character of the input. The
// zero value is the invalid sentinel. A location either points directly into
// a file buffer (file ID + offset packed into 31 bits) or, when the high bit
// is set, refers to an instantiation record that pairs a spelling location
// with the place a macro was invoked.
type Location uint32

const (
	// LocationInvalid is the reserved "no location" sentinel.
	LocationInvalid Location = 0

	macroBit = Location(1) << 31
)

// Valid reports whether the location refers to something resolvable.
func (l Location) Valid() bool { return l != LocationInvalid }

// IsMacro reports whether the location refers to an instantiation record
// rather than directly into a file buffer.
func (l Location) IsMacro() bool { return l&macroBit != 0 }

// WithOffset returns the location shifted by delta bytes within the same
// file. Must not be used on macro locations.
func (l Location) WithOffset(delta int) Location {
	if !l.Valid() || l.IsMacro() {
		return l
	}
	return Location(int(l) + delta)
}

func (l Location) String() string {
	if !l.Valid() {
		return "<invalid loc>"
	}
	if l.IsMacro() {
		return fmt.Sprintf("<macro loc %d>", uint32(l&^macroBit))
	}
	return fmt.Sprintf("<loc %d>", uint32(l))
}

// Range is an ordered pair of locations. End is the location of the first
// character of the last token in the range, so the range is inclusive.
type Range struct {
	Begin, End Location
}

// NewRange returns the range covering begin through end.
func NewRange(begin, end Location) Range { return Range{Begin: begin, End: end} }

// PointRange is the degenerate range covering a single location.
func PointRange(loc Location) Range { return Range{Begin: loc, End: loc} }

// Valid reports whether both endpoints of the range resolve.
func (r Range) Valid() bool { return r.Begin.Valid() && r.End.Valid() }

// FileID identifies one entered buffer. Buffers are entered once per
// inclusion, so the same file included twice has two FileIDs. The zero value
// is invalid.
type FileID int32

// Valid reports whether the FileID was produced by a SourceManager.
func (f FileID) Valid() bool { return f > 0 }
