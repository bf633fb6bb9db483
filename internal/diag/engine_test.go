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

package diag

import (
	"strings"
	"testing"

	"github.com/EngFlow/ccfront/internal/source"
	"github.com/stretchr/testify/assert"
)

func TestLevelMapping(t *testing.T) {
	testCases := []struct {
		name      string
		id        ID
		configure func(e *Engine)
		expected  Level
	}{
		{
			name:     "error class is always an error",
			id:       ErrUnterminatedString,
			expected: LevelError,
		},
		{
			name: "errors survive -w",
			id:   ErrUnterminatedString,
			configure: func(e *Engine) {
				e.IgnoreAllWarnings = true
				e.SetMapping(ErrUnterminatedString, MapIgnore)
			},
			expected: LevelError,
		},
		{
			name:     "warning class defaults to warning",
			id:       WarnNestedBlockComment,
			expected: LevelWarning,
		},
		{
			name:      "warnings drop under -w",
			id:        WarnNestedBlockComment,
			configure: func(e *Engine) { e.IgnoreAllWarnings = true },
			expected:  LevelIgnored,
		},
		{
			name:      "warnings promote under -Werror",
			id:        WarnNestedBlockComment,
			configure: func(e *Engine) { e.WarningsAsErrors = true },
			expected:  LevelError,
		},
		{
			name:      "per-ID ignore wins over -Werror",
			id:        WarnNestedBlockComment,
			configure: func(e *Engine) { e.WarningsAsErrors = true; e.SetMapping(WarnNestedBlockComment, MapIgnore) },
			expected:  LevelIgnored,
		},
		{
			name:      "per-ID error mapping",
			id:        WarnNestedBlockComment,
			configure: func(e *Engine) { e.SetMapping(WarnNestedBlockComment, MapError) },
			expected:  LevelError,
		},
		{
			name:     "extensions are silent by default",
			id:       ExtNoNewlineAtEOF,
			expected: LevelIgnored,
		},
		{
			name:      "extensions warn under -pedantic",
			id:        ExtNoNewlineAtEOF,
			configure: func(e *Engine) { e.WarnOnExtensions = true },
			expected:  LevelWarning,
		},
		{
			name:      "extensions error under -pedantic-errors",
			id:        ExtNoNewlineAtEOF,
			configure: func(e *Engine) { e.WarnOnExtensions = true; e.ErrorOnExtensions = true },
			expected:  LevelError,
		},
		{
			name:      "-pedantic combines with -Werror",
			id:        ExtNoNewlineAtEOF,
			configure: func(e *Engine) { e.WarnOnExtensions = true; e.WarningsAsErrors = true },
			expected:  LevelError,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEngine(nil, &CountingClient{})
			if tc.configure != nil {
				tc.configure(e)
			}
			assert.Equal(t, tc.expected, e.Level(tc.id))
		})
	}
}

func TestCounters(t *testing.T) {
	client := &CountingClient{}
	e := NewEngine(nil, client)

	e.Report(source.LocationInvalid, WarnNestedBlockComment).Emit()
	assert.Equal(t, 1, e.NumDiagnostics())
	assert.Equal(t, 0, e.NumErrors())
	assert.False(t, e.ErrorOccurred())

	e.Report(source.LocationInvalid, ErrUnterminatedString).Emit()
	assert.Equal(t, 2, e.NumDiagnostics())
	assert.Equal(t, 1, e.NumErrors())
	assert.True(t, e.ErrorOccurred())

	e.Report(source.LocationInvalid, ExtNoNewlineAtEOF).Emit()
	assert.Equal(t, 2, e.NumDiagnostics(), "ignored diagnostics do not count")
	assert.Equal(t, 1, client.Ignored)
	assert.Equal(t, 1, client.Warnings)
	assert.Equal(t, 1, client.Errors)
}

func TestFormatting(t *testing.T) {
	client := &CountingClient{}
	e := NewEngine(nil, client)

	e.Report(source.LocationInvalid, ErrInvalidCharacter).AddString("@").Emit()
	e.Report(source.LocationInvalid, ErrExpectedToken).AddString(";").Emit()

	assert.Equal(t, []string{
		"invalid character '@' in input",
		"expected ';'",
	}, client.Delivered)
	assert.Equal(t, []ID{ErrInvalidCharacter, ErrExpectedToken}, client.IDs)
}

func TestSystemHeaderSuppression(t *testing.T) {
	sm := source.NewSourceManager()
	fm := source.NewFileManager()
	user := sm.CreateFileID(fm.GetVirtualFile("main.c", []byte("x\n")), source.LocationInvalid, source.CharacteristicUser)
	sys := sm.CreateFileID(fm.GetVirtualFile("sys.h", []byte("y\n")), sm.LocForOffset(user, 0), source.CharacteristicSystem)

	client := &CountingClient{}
	e := NewEngine(sm, client)

	e.Report(sm.LocForOffset(sys, 0), WarnNestedBlockComment).Emit()
	assert.Equal(t, 0, client.Warnings, "warnings in system headers are suppressed")
	assert.Equal(t, 1, client.Ignored)

	e.Report(sm.LocForOffset(sys, 0), ErrUnterminatedString).Emit()
	assert.Equal(t, 1, client.Errors, "errors in system headers still fire")

	e.SuppressSystemWarnings = false
	e.Report(sm.LocForOffset(sys, 0), WarnNestedBlockComment).Emit()
	assert.Equal(t, 1, client.Warnings)
}

func TestTextClient(t *testing.T) {
	sm := source.NewSourceManager()
	id := sm.CreateBufferFileID("t.c", []byte("int x\nint y\n"))

	var out strings.Builder
	e := NewEngine(sm, NewTextClient(&out, sm))
	e.Report(sm.LocForOffset(id, 6), ErrExpectedToken).AddString(";").Emit()

	assert.Equal(t, "t.c:2:1: error: expected ';'\n", out.String())
}

func TestTextClientMacroChain(t *testing.T) {
	sm := source.NewSourceManager()
	id := sm.CreateBufferFileID("t.c", []byte("#define BAD !\nBAD\n"))
	spelling := sm.LocForOffset(id, 12) // the '!' in the definition
	site := sm.LocForOffset(id, 14)     // the use on line 2
	loc := sm.InstantiationLoc(spelling, site)

	var out strings.Builder
	e := NewEngine(sm, NewTextClient(&out, sm))
	e.Report(loc, ErrExpectedToken).AddString(";").Emit()

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Equal(t, "t.c:2:1: error: expected ';'", lines[0])
	assert.Contains(t, lines[1], "instantiated from macro")
}
