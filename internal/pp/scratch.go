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
	"github.com/EngFlow/ccfront/internal/source"
)

const scratchChunkSize = 4096

// scratchBuffer hands out locations for tokens the preprocessor synthesizes:
// stringized arguments, paste results, builtin macro expansions. Each chunk
// is registered with the source manager as a file named <scratch space> so
// the tokens carry real, decomposable locations.
type scratchBuffer struct {
	sm   *source.SourceManager
	buf  []byte
	fid  source.FileID
	used int
}

func newScratchBuffer(sm *source.SourceManager) *scratchBuffer {
	return &scratchBuffer{sm: sm}
}

// GetToken copies text into the scratch space and returns the location of
// its first byte. A newline is placed after every entry so re-lexing one
// entry cannot run into the next.
func (s *scratchBuffer) GetToken(text []byte) source.Location {
	if s.used+len(text)+1 > len(s.buf) {
		size := scratchChunkSize
		if len(text)+1 > size {
			size = len(text) + 1
		}
		s.buf = make([]byte, size)
		s.fid = s.sm.CreateBufferFileID("<scratch space>", s.buf)
		s.used = 0
	}
	start := s.used
	copy(s.buf[start:], text)
	s.buf[start+len(text)] = '\n'
	s.used = start + len(text) + 1
	return s.sm.LocForOffset(s.fid, start)
}
