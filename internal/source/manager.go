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
	"fmt"
	"sort"
)

// fileInfo is the per-FileID record. Every entered buffer occupies a
// contiguous chunk of the global location space starting at base, so a
// Location decomposes into (FileID, offset) with one binary search.
type fileInfo struct {
	entry          *FileEntry // nil for scratch and virtual buffers
	name           string
	buffer         []byte
	base           uint32
	includeLoc     Location
	characteristic Characteristic

	lineOffsets []uint32 // built lazily: byte offset of the start of each line
	lineNotes   []lineNote
}

// lineNote records the effect of a #line directive: from byte offset on,
// the presumed line number is line and the presumed file name is name (empty
// means unchanged).
type lineNote struct {
	offset uint32
	line   int
	name   string
}

// instantiation pairs the location where a token's characters physically
// live with the location where the token logically appeared (the macro
// invocation site).
type instantiation struct {
	spelling, site Location
}

// SourceManager owns the location space: it hands out FileIDs, decodes
// locations back to (file, offset, line, column), and records macro
// instantiation chains.
type SourceManager struct {
	files      []*fileInfo
	nextBase   uint32
	instances  []instantiation
	instancIdx map[instantiation]Location
}

func NewSourceManager() *SourceManager {
	return &SourceManager{
		nextBase:   1, // keep location 0 invalid
		instancIdx: make(map[instantiation]Location),
	}
}

// CreateFileID enters a file's buffer into the location space. includeLoc is
// the location of the #include that caused the entry (invalid for the main
// file).
func (sm *SourceManager) CreateFileID(entry *FileEntry, includeLoc Location, characteristic Characteristic) FileID {
	return sm.enter(&fileInfo{
		entry:          entry,
		name:           entry.Name,
		buffer:         entry.Content(),
		includeLoc:     includeLoc,
		characteristic: characteristic,
	})
}

// CreateBufferFileID enters an in-memory buffer that has no backing
// FileEntry, such as the preprocessor's scratch space or a test input.
func (sm *SourceManager) CreateBufferFileID(name string, content []byte) FileID {
	return sm.enter(&fileInfo{name: name, buffer: content})
}

func (sm *SourceManager) enter(info *fileInfo) FileID {
	info.base = sm.nextBase
	// The +1 keeps a distinct location for the end-of-buffer position.
	sm.nextBase += uint32(len(info.buffer)) + 1
	if sm.nextBase >= uint32(macroBit) {
		panic(fmt.Errorf("source manager: location space exhausted after %d files", len(sm.files)))
	}
	sm.files = append(sm.files, info)
	return FileID(len(sm.files))
}

func (sm *SourceManager) info(id FileID) *fileInfo {
	if !id.Valid() || int(id) > len(sm.files) {
		panic(fmt.Errorf("source manager: invalid FileID %d", id))
	}
	return sm.files[id-1]
}

// Buffer returns the raw content of the given file.
func (sm *SourceManager) Buffer(id FileID) []byte { return sm.info(id).buffer }

// Name returns the user-facing name of the given file.
func (sm *SourceManager) Name(id FileID) string { return sm.info(id).name }

// IncludeLoc returns the location of the #include that entered id, or the
// invalid location for the main file.
func (sm *SourceManager) IncludeLoc(id FileID) Location { return sm.info(id).includeLoc }

// FileEntryFor returns the FileEntry backing id, or nil for scratch buffers.
func (sm *SourceManager) FileEntryFor(id FileID) *FileEntry { return sm.info(id).entry }

// Characteristic returns the include classification of id.
func (sm *SourceManager) Characteristic(id FileID) Characteristic {
	return sm.info(id).characteristic
}

// SetCharacteristic reclassifies id, as #pragma GCC system_header does.
func (sm *SourceManager) SetCharacteristic(id FileID, c Characteristic) {
	sm.info(id).characteristic = c
}

// LocForOffset returns the location of the byte at offset within id.
func (sm *SourceManager) LocForOffset(id FileID, offset int) Location {
	return Location(sm.info(id).base + uint32(offset))
}

// Decompose resolves a non-macro location to its file and byte offset.
func (sm *SourceManager) Decompose(loc Location) (FileID, uint32) {
	loc = sm.SpellingLoc(loc)
	idx := sort.Search(len(sm.files), func(i int) bool {
		return sm.files[i].base > uint32(loc)
	})
	if idx == 0 {
		panic(fmt.Errorf("source manager: unresolvable location %v", loc))
	}
	info := sm.files[idx-1]
	return FileID(idx), uint32(loc) - info.base
}

// CharacterData returns the buffer contents starting at loc's spelling.
func (sm *SourceManager) CharacterData(loc Location) []byte {
	id, off := sm.Decompose(loc)
	return sm.info(id).buffer[off:]
}

// InstantiationLoc returns a location whose characters live at spelling but
// which logically appears at site. Identical pairs share one record.
func (sm *SourceManager) InstantiationLoc(spelling, site Location) Location {
	key := instantiation{spelling: spelling, site: site}
	if loc, ok := sm.instancIdx[key]; ok {
		return loc
	}
	sm.instances = append(sm.instances, key)
	loc := macroBit | Location(len(sm.instances)-1)
	sm.instancIdx[key] = loc
	return loc
}

func (sm *SourceManager) instance(loc Location) instantiation {
	idx := uint32(loc &^ macroBit)
	if int(idx) >= len(sm.instances) {
		panic(fmt.Errorf("source manager: bad instantiation location %v", loc))
	}
	return sm.instances[idx]
}

// SpellingLoc resolves loc to the file location where its characters
// physically live, walking instantiation chains as needed.
func (sm *SourceManager) SpellingLoc(loc Location) Location {
	for loc.IsMacro() {
		loc = sm.instance(loc).spelling
	}
	return loc
}

// InstantiationSite resolves loc to the file location where it logically
// appears: for macro locations that is the outermost invocation site.
func (sm *SourceManager) InstantiationSite(loc Location) Location {
	for loc.IsMacro() {
		loc = sm.instance(loc).site
	}
	return loc
}

// ImmediateInstantiationSite returns the invocation site one level up the
// chain. Used to render "in expansion of macro" note chains.
func (sm *SourceManager) ImmediateInstantiationSite(loc Location) (Location, bool) {
	if !loc.IsMacro() {
		return LocationInvalid, false
	}
	return sm.instance(loc).site, true
}

// IsInSystemHeader reports whether loc's logical position is inside a buffer
// entered as a system header.
func (sm *SourceManager) IsInSystemHeader(loc Location) bool {
	if !loc.Valid() {
		return false
	}
	id, _ := sm.Decompose(sm.InstantiationSite(loc))
	return sm.info(id).characteristic.IsSystem()
}

func (info *fileInfo) buildLineOffsets() {
	if info.lineOffsets != nil {
		return
	}
	offsets := []uint32{0}
	for i, b := range info.buffer {
		if b == '\n' {
			offsets = append(offsets, uint32(i)+1)
		}
	}
	info.lineOffsets = offsets
}

// LineNumber returns the 1-based physical line of loc's spelling.
func (sm *SourceManager) LineNumber(loc Location) int {
	id, off := sm.Decompose(loc)
	info := sm.info(id)
	info.buildLineOffsets()
	idx := sort.Search(len(info.lineOffsets), func(i int) bool {
		return info.lineOffsets[i] > off
	})
	return idx
}

// ColumnNumber returns the 1-based physical column of loc's spelling.
func (sm *SourceManager) ColumnNumber(loc Location) int {
	id, off := sm.Decompose(loc)
	info := sm.info(id)
	info.buildLineOffsets()
	line := sort.Search(len(info.lineOffsets), func(i int) bool {
		return info.lineOffsets[i] > off
	})
	return int(off-info.lineOffsets[line-1]) + 1
}

// AddLineNote records the effect of a #line directive at the given offset in
// id. An empty name leaves the presumed file name unchanged.
func (sm *SourceManager) AddLineNote(id FileID, offset int, line int, name string) {
	info := sm.info(id)
	info.lineNotes = append(info.lineNotes, lineNote{offset: uint32(offset), line: line, name: name})
}

// PresumedLoc returns the user-visible (name, line, column) for loc,
// honoring #line directives and resolving macro chains to the instantiation
// site.
func (sm *SourceManager) PresumedLoc(loc Location) (string, int, int) {
	loc = sm.InstantiationSite(loc)
	id, off := sm.Decompose(loc)
	info := sm.info(id)
	name := info.name
	line := sm.LineNumber(loc)
	col := sm.ColumnNumber(loc)

	// Apply the most recent #line note preceding the location.
	for i := len(info.lineNotes) - 1; i >= 0; i-- {
		note := info.lineNotes[i]
		if note.offset > off {
			continue
		}
		noteLine := sort.Search(len(info.lineOffsets), func(i int) bool {
			return info.lineOffsets[i] > note.offset
		})
		line = note.line + (line - noteLine)
		if note.name != "" {
			name = note.name
		}
		break
	}
	return name, line, col
}
