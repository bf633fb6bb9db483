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
)

// Characteristic classifies where a buffer came from. System headers get
// their warnings suppressed by default.
type Characteristic int

const (
	CharacteristicUser Characteristic = iota
	CharacteristicSystem
	CharacteristicExternCSystem
)

// IsSystem reports whether the characteristic denotes any system header kind.
func (c Characteristic) IsSystem() bool { return c != CharacteristicUser }

// FileEntry identifies one on-disk file. Identity is the cleaned absolute
// path; hard links or symlinked duplicates under distinct paths are distinct
// entries. #import and #pragma once suppression key on this identity.
type FileEntry struct {
	Name string // path as requested by the user or include directive
	Path string // absolute, cleaned path used as identity
	Size int64

	content []byte
}

// FileManager loads and caches file contents. It is the only component that
// touches the filesystem; everything downstream works on the cached buffers.
type FileManager struct {
	entries map[string]*FileEntry
}

func NewFileManager() *FileManager {
	return &FileManager{entries: make(map[string]*FileEntry)}
}

// GetFile returns the cached entry for name, loading it on first use.
// Returns nil if the file does not exist or cannot be read.
func (fm *FileManager) GetFile(name string) *FileEntry {
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil
	}
	abs = filepath.Clean(abs)
	if entry, ok := fm.entries[abs]; ok {
		return entry
	}

	content, err := os.ReadFile(name)
	if err != nil {
		fm.entries[abs] = nil // negative cache, repeated lookups are common
		return nil
	}
	entry := &FileEntry{Name: name, Path: abs, Size: int64(len(content)), content: content}
	fm.entries[abs] = entry
	return entry
}

// GetVirtualFile registers an in-memory buffer under name without touching
// the filesystem. Used by tests and by the driver for stdin input.
func (fm *FileManager) GetVirtualFile(name string, content []byte) *FileEntry {
	abs, err := filepath.Abs(name)
	if err != nil {
		abs = name
	}
	abs = filepath.Clean(abs)
	entry := &FileEntry{Name: name, Path: abs, Size: int64(len(content)), content: content}
	fm.entries[abs] = entry
	return entry
}

// Content returns the raw bytes of the entry.
func (e *FileEntry) Content() []byte { return e.content }
