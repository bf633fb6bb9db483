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

package pp

import (
	"path/filepath"

	"github.com/EngFlow/ccfront/internal/lexer"
	"github.com/EngFlow/ccfront/internal/source"
)

// DirectoryLookup is one entry on the include search path.
type DirectoryLookup struct {
	Dir            string
	Characteristic source.Characteristic
}

// HeaderFileInfo accumulates per-header knowledge across includes of the
// same file, keyed by FileEntry so hard links and ./ spellings collapse.
type HeaderFileInfo struct {
	// IsImport is set once the file is seen via #import or #pragma once;
	// later includes of it are dropped.
	IsImport    bool
	NumIncludes int
	// DirInfo records the strongest characteristic the file was ever found
	// under, so a header first reached through -isystem stays a system
	// header.
	DirInfo source.Characteristic
	// ControllingMacro is the #ifndef guard detected on a prior full pass
	// through the file, if any.
	ControllingMacro *lexer.Info
}

// HeaderSearch resolves #include filenames against the search path and
// tracks the include-once state of every header seen so far.
type HeaderSearch struct {
	fm *source.FileManager

	// dirs is the merged search list: quoted-only dirs first, then the
	// angled dirs starting at angledDirIdx.
	dirs         []DirectoryLookup
	angledDirIdx int
	// NoCurDirSearch disables the "directory of the including file" step
	// for quoted includes (-I- semantics).
	NoCurDirSearch bool

	fileInfo map[*source.FileEntry]*HeaderFileInfo
}

func NewHeaderSearch(fm *source.FileManager) *HeaderSearch {
	return &HeaderSearch{fm: fm, fileInfo: make(map[*source.FileEntry]*HeaderFileInfo)}
}

// SetSearchPaths installs the merged directory list. Entries before
// angledDirIdx are consulted only for "quoted" includes.
func (hs *HeaderSearch) SetSearchPaths(dirs []DirectoryLookup, angledDirIdx int) {
	hs.dirs = dirs
	hs.angledDirIdx = angledDirIdx
}

func (hs *HeaderSearch) NumDirs() int { return len(hs.dirs) }

// FileInfo returns (creating if needed) the accumulated info for entry.
func (hs *HeaderSearch) FileInfo(entry *source.FileEntry) *HeaderFileInfo {
	fi := hs.fileInfo[entry]
	if fi == nil {
		fi = &HeaderFileInfo{}
		hs.fileInfo[entry] = fi
	}
	return fi
}

// LookupFile resolves filename. isAngled selects <...> search. curFileDir
// is the directory of the including file, used as step one of quoted
// search. fromDir, when >= 0, restarts the scan there (#include_next).
// The returned index identifies the search-path slot the file was found
// in, or -1 when it came from curFileDir or an absolute path.
func (hs *HeaderSearch) LookupFile(filename string, isAngled bool, fromDir int, curFileDir string) (*source.FileEntry, int) {
	if filepath.IsAbs(filename) {
		return hs.noteFound(hs.fm.GetFile(filename), source.CharacteristicUser), -1
	}

	start := hs.angledDirIdx
	if !isAngled {
		start = 0
	}
	if fromDir >= 0 {
		start = fromDir
	} else if !isAngled && !hs.NoCurDirSearch && curFileDir != "" {
		if entry := hs.fm.GetFile(filepath.Join(curFileDir, filename)); entry != nil {
			return hs.noteFound(entry, source.CharacteristicUser), -1
		}
	}

	for i := start; i < len(hs.dirs); i++ {
		dl := &hs.dirs[i]
		if entry := hs.fm.GetFile(filepath.Join(dl.Dir, filename)); entry != nil {
			return hs.noteFound(entry, dl.Characteristic), i
		}
	}
	return nil, -1
}

func (hs *HeaderSearch) noteFound(entry *source.FileEntry, c source.Characteristic) *source.FileEntry {
	if entry == nil {
		return nil
	}
	fi := hs.FileInfo(entry)
	if c > fi.DirInfo {
		fi.DirInfo = c
	}
	return entry
}

// ShouldEnterIncludeFile decides whether to actually lex entry again.
// It returns false for #import'ed or #pragma once files seen before, and
// bumps the include count otherwise. Guard-macro suppression is handled by
// the preprocessor, which knows what is defined.
func (hs *HeaderSearch) ShouldEnterIncludeFile(entry *source.FileEntry, isImport bool) bool {
	fi := hs.FileInfo(entry)
	if isImport {
		if fi.IsImport && fi.NumIncludes > 0 {
			return false
		}
		fi.IsImport = true
	} else if fi.IsImport && fi.NumIncludes > 0 {
		// A plain #include of a previously #import'ed file is also dropped.
		return false
	}
	fi.NumIncludes++
	return true
}

// MarkFileIncludeOnce implements #pragma once.
func (hs *HeaderSearch) MarkFileIncludeOnce(entry *source.FileEntry) {
	hs.FileInfo(entry).IsImport = true
}

// SetFileControllingMacro records a detected #ifndef guard for entry.
func (hs *HeaderSearch) SetFileControllingMacro(entry *source.FileEntry, info *lexer.Info) {
	hs.FileInfo(entry).ControllingMacro = info
}
