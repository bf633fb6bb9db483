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

package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocation(t *testing.T) {
	assert.False(t, LocationInvalid.Valid())
	assert.False(t, LocationInvalid.IsMacro())

	loc := Location(42)
	assert.True(t, loc.Valid())
	assert.False(t, loc.IsMacro())
	assert.Equal(t, Location(45), loc.WithOffset(3))
	assert.Equal(t, LocationInvalid, LocationInvalid.WithOffset(3))

	r := NewRange(loc, loc.WithOffset(4))
	assert.True(t, r.Valid())
	assert.False(t, NewRange(LocationInvalid, loc).Valid())
	assert.Equal(t, loc, PointRange(loc).End)
}

func TestDecomposeRoundTrip(t *testing.T) {
	sm := NewSourceManager()
	a := sm.CreateBufferFileID("a.c", []byte("int x;\n"))
	b := sm.CreateBufferFileID("b.c", []byte("int y;\n"))

	testCases := []struct {
		id     FileID
		offset int
	}{
		{a, 0},
		{a, 4},
		{a, 6}, // one past the last byte is still addressable
		{b, 0},
		{b, 5},
	}
	for _, tc := range testCases {
		loc := sm.LocForOffset(tc.id, tc.offset)
		id, off := sm.Decompose(loc)
		assert.Equal(t, tc.id, id)
		assert.Equal(t, uint32(tc.offset), off)
	}

	assert.Equal(t, "a.c", sm.Name(a))
	assert.Equal(t, []byte("int y;\n"), sm.Buffer(b))
	assert.False(t, sm.IncludeLoc(a).Valid())
	assert.Nil(t, sm.FileEntryFor(a))
}

func TestLineAndColumn(t *testing.T) {
	sm := NewSourceManager()
	id := sm.CreateBufferFileID("t.c", []byte("one\ntwo\n\nfour\n"))

	testCases := []struct {
		offset int
		line   int
		col    int
	}{
		{0, 1, 1},  // 'o' of "one"
		{2, 1, 3},  // 'e' of "one"
		{4, 2, 1},  // 't' of "two"
		{8, 3, 1},  // the empty line
		{9, 4, 1},  // 'f' of "four"
		{12, 4, 4}, // 'r' of "four"
	}
	for _, tc := range testCases {
		loc := sm.LocForOffset(id, tc.offset)
		assert.Equal(t, tc.line, sm.LineNumber(loc), "offset %d line", tc.offset)
		assert.Equal(t, tc.col, sm.ColumnNumber(loc), "offset %d column", tc.offset)
	}
}

func TestInstantiationChain(t *testing.T) {
	sm := NewSourceManager()
	id := sm.CreateBufferFileID("t.c", []byte("#define A B\nA\n"))
	spelling := sm.LocForOffset(id, 10) // the 'B' in the definition
	site := sm.LocForOffset(id, 12)     // the 'A' use

	loc := sm.InstantiationLoc(spelling, site)
	assert.True(t, loc.IsMacro())
	assert.Equal(t, spelling, sm.SpellingLoc(loc))
	assert.Equal(t, site, sm.InstantiationSite(loc))

	// Identical pairs share one record.
	assert.Equal(t, loc, sm.InstantiationLoc(spelling, site))

	// A two-level chain resolves through both hops.
	outer := sm.InstantiationLoc(loc, site)
	assert.Equal(t, spelling, sm.SpellingLoc(outer))
	assert.Equal(t, site, sm.InstantiationSite(outer))
	imm, ok := sm.ImmediateInstantiationSite(outer)
	assert.True(t, ok)
	assert.Equal(t, site, imm)

	_, ok = sm.ImmediateInstantiationSite(spelling)
	assert.False(t, ok)

	// Decompose and line/column work through macro locations.
	lid, off := sm.Decompose(loc)
	assert.Equal(t, id, lid)
	assert.Equal(t, uint32(10), off)
}

func TestPresumedLocWithLineNotes(t *testing.T) {
	sm := NewSourceManager()
	id := sm.CreateBufferFileID("t.c", []byte("a;\nb;\nc;\n"))

	// A #line 100 "other.c" directive takes effect at the start of line 2.
	sm.AddLineNote(id, 3, 100, "other.c")

	name, line, col := sm.PresumedLoc(sm.LocForOffset(id, 0))
	assert.Equal(t, "t.c", name)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)

	name, line, col = sm.PresumedLoc(sm.LocForOffset(id, 3))
	assert.Equal(t, "other.c", name)
	assert.Equal(t, 100, line)
	assert.Equal(t, 1, col)

	name, line, _ = sm.PresumedLoc(sm.LocForOffset(id, 6))
	assert.Equal(t, "other.c", name)
	assert.Equal(t, 101, line)
}

func TestSystemHeaderCharacteristic(t *testing.T) {
	sm := NewSourceManager()
	fm := NewFileManager()
	user := sm.CreateFileID(fm.GetVirtualFile("main.c", []byte("int x;\n")), LocationInvalid, CharacteristicUser)
	sys := sm.CreateFileID(fm.GetVirtualFile("sys.h", []byte("int y;\n")), sm.LocForOffset(user, 0), CharacteristicSystem)

	assert.False(t, sm.IsInSystemHeader(sm.LocForOffset(user, 0)))
	assert.True(t, sm.IsInSystemHeader(sm.LocForOffset(sys, 0)))
	assert.False(t, sm.IsInSystemHeader(LocationInvalid))

	assert.Equal(t, CharacteristicSystem, sm.Characteristic(sys))
	sm.SetCharacteristic(sys, CharacteristicExternCSystem)
	assert.True(t, sm.Characteristic(sys).IsSystem())
	assert.True(t, sm.IncludeLoc(sys).Valid())
}

func TestFileManager(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.c")
	require.NoError(t, os.WriteFile(path, []byte("int main() {}\n"), 0o600))

	fm := NewFileManager()
	entry := fm.GetFile(path)
	require.NotNil(t, entry)
	assert.Equal(t, []byte("int main() {}\n"), entry.Content())
	assert.Equal(t, int64(14), entry.Size)

	// The same path returns the same cached entry.
	assert.Same(t, entry, fm.GetFile(path))

	assert.Nil(t, fm.GetFile(filepath.Join(dir, "missing.c")))

	virt := fm.GetVirtualFile("<stdin>", []byte("x"))
	require.NotNil(t, virt)
	assert.Equal(t, "<stdin>", virt.Name)
}
