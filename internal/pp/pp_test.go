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
	"testing"

	"github.com/EngFlow/ccfront/internal/diag"
	"github.com/EngFlow/ccfront/internal/lang"
	"github.com/EngFlow/ccfront/internal/lexer"
	"github.com/EngFlow/ccfront/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ppHarness wires a preprocessor over in-memory files. files must contain
// "main.c"; the other entries are resolvable through quoted includes (same
// directory) or through the angled search dirs.
type ppHarness struct {
	files      map[string]string
	angledDirs []string
	opts       *lang.Options
	predefines string
}

func (h *ppHarness) run(t *testing.T) ([]string, *diag.CountingClient, *Preprocessor) {
	t.Helper()
	opts := lang.DefaultOptions(lang.C99)
	if h.opts != nil {
		opts = *h.opts
	}

	sm := source.NewSourceManager()
	fm := source.NewFileManager()
	client := &diag.CountingClient{}
	diags := diag.NewEngine(sm, client)

	var mainEntry *source.FileEntry
	for name, content := range h.files {
		entry := fm.GetVirtualFile(name, []byte(content))
		if name == "main.c" {
			mainEntry = entry
		}
	}
	require.NotNil(t, mainEntry, "harness needs a main.c")

	headers := NewHeaderSearch(fm)
	var dirs []DirectoryLookup
	for _, dir := range h.angledDirs {
		dirs = append(dirs, DirectoryLookup{Dir: dir, Characteristic: source.CharacteristicSystem})
	}
	headers.SetSearchPaths(dirs, 0)

	p := New(sm, fm, headers, diags, opts)
	if h.predefines != "" {
		p.SetPredefines(h.predefines)
	}
	fid := sm.CreateFileID(mainEntry, source.LocationInvalid, source.CharacteristicUser)
	p.EnterMainSourceFile(fid)

	var spellings []string
	for {
		var tok lexer.Token
		p.Lex(&tok)
		if tok.Is(lexer.Kind_EOF) {
			return spellings, client, p
		}
		spellings = append(spellings, p.Spelling(&tok))
	}
}

func preprocess(t *testing.T, src string) ([]string, *diag.CountingClient) {
	t.Helper()
	spellings, client, _ := (&ppHarness{files: map[string]string{"main.c": src}}).run(t)
	return spellings, client
}

func TestObjectMacro(t *testing.T) {
	toks, client := preprocess(t, "#define N 42\nint x = N;\n")
	assert.Equal(t, []string{"int", "x", "=", "42", ";"}, toks)
	assert.Zero(t, client.Errors)
}

func TestFunctionMacro(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		expected []string
	}{
		{
			name:     "arguments substitute",
			src:      "#define ADD(a, b) (a + b)\nADD(1, 2)\n",
			expected: []string{"(", "1", "+", "2", ")"},
		},
		{
			name:     "unparenthesized name does not invoke",
			src:      "#define F(x) x\nF;\n",
			expected: []string{"F", ";"},
		},
		{
			name:     "arguments rescan",
			src:      "#define A 1\n#define ID(x) x\nID(A)\n",
			expected: []string{"1"},
		},
		{
			name:     "nested invocations",
			src:      "#define TWICE(x) x x\n#define P (q)\nTWICE(P)\n",
			expected: []string{"(", "q", ")", "(", "q", ")"},
		},
		{
			name:     "commas in parens stay one argument",
			src:      "#define ONE(x) x\nONE((a, b))\n",
			expected: []string{"(", "a", ",", "b", ")"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			toks, client := preprocess(t, tc.src)
			assert.Equal(t, tc.expected, toks)
			assert.Zero(t, client.Errors)
		})
	}
}

func TestSelfReferentialMacro(t *testing.T) {
	toks, client := preprocess(t, "#define A A\nA\n#define F(x) F(x + 1)\nF(0)\n")
	assert.Equal(t, []string{"A", "F", "(", "0", "+", "1", ")"}, toks)
	assert.Zero(t, client.Errors)
}

func TestStringize(t *testing.T) {
	toks, client := preprocess(t, "#define S(x) #x\nS(a  b)\nS(\"q\")\n")
	assert.Equal(t, []string{`"a b"`, `"\"q\""`}, toks)
	assert.Zero(t, client.Errors)
}

func TestTokenPaste(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		expected []string
	}{
		{
			name:     "identifier paste",
			src:      "#define P(x, y) x##y\nP(x, 1)\n",
			expected: []string{"x1"},
		},
		{
			name:     "empty left operand",
			src:      "#define P(x, y) x##y\nP(, ab)\n",
			expected: []string{"ab"},
		},
		{
			name:     "pasted result is a single token",
			src:      "#define GLUE(a, b) a##b\nGLUE(<, <)\n",
			expected: []string{"<<"},
		},
		{
			name:     "paste does not expand operands",
			src:      "#define A 1\n#define CAT(a, b) a##b\nCAT(A, A)\n",
			expected: []string{"AA"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			toks, client := preprocess(t, tc.src)
			assert.Equal(t, tc.expected, toks)
			assert.Zero(t, client.Errors)
		})
	}
}

func TestVariadicMacro(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		expected []string
	}{
		{
			name:     "varargs forward",
			src:      "#define F(a, ...) f(a, __VA_ARGS__)\nF(1, 2, 3)\n",
			expected: []string{"f", "(", "1", ",", "2", ",", "3", ")"},
		},
		{
			name:     "comma elision with no varargs",
			src:      "#define F(a, ...) f(a, ##__VA_ARGS__)\nF(1)\n",
			expected: []string{"f", "(", "1", ")"},
		},
		{
			name:     "comma kept when varargs present",
			src:      "#define F(a, ...) f(a, ##__VA_ARGS__)\nF(1, x)\n",
			expected: []string{"f", "(", "1", ",", "x", ")"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			toks, client := preprocess(t, tc.src)
			assert.Equal(t, tc.expected, toks)
			assert.Zero(t, client.Errors)
		})
	}
}

func TestUndef(t *testing.T) {
	toks, client := preprocess(t, "#define A 1\n#undef A\nA\n")
	assert.Equal(t, []string{"A"}, toks)
	assert.Zero(t, client.Errors)
}

func TestConditionals(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		expected []string
	}{
		{
			name:     "ifdef taken",
			src:      "#define A\n#ifdef A\nyes\n#else\nno\n#endif\n",
			expected: []string{"yes"},
		},
		{
			name:     "ifndef skipped",
			src:      "#define A\n#ifndef A\nyes\n#else\nno\n#endif\n",
			expected: []string{"no"},
		},
		{
			name:     "if arithmetic",
			src:      "#if 1 + 2 == 3\nyes\n#endif\n",
			expected: []string{"yes"},
		},
		{
			name:     "defined operator",
			src:      "#define A\n#if defined(A) && defined A\nyes\n#endif\n",
			expected: []string{"yes"},
		},
		{
			name:     "elif chain",
			src:      "#define V 2\n#if V == 1\none\n#elif V == 2\ntwo\n#else\nother\n#endif\n",
			expected: []string{"two"},
		},
		{
			name:     "undefined identifiers evaluate to zero",
			src:      "#if UNDEFINED\nyes\n#else\nno\n#endif\n",
			expected: []string{"no"},
		},
		{
			name:     "nested skipped blocks",
			src:      "#if 0\n#if 1\nhidden\n#endif\n#else\nvisible\n#endif\n",
			expected: []string{"visible"},
		},
		{
			name:     "ternary and shifts",
			src:      "#if (1 ? 2 : 3) << 1 == 4\nyes\n#endif\n",
			expected: []string{"yes"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			toks, client := preprocess(t, tc.src)
			assert.Equal(t, tc.expected, toks)
			assert.Zero(t, client.Errors)
		})
	}
}

func TestUnterminatedConditional(t *testing.T) {
	_, client := preprocess(t, "#if 1\nbody\n")
	assert.Equal(t, 1, client.Errors)
}

func TestQuotedInclude(t *testing.T) {
	h := &ppHarness{files: map[string]string{
		"main.c": "#include \"decl.h\"\nafter\n",
		"decl.h": "from_header\n",
	}}
	toks, client, _ := h.run(t)
	assert.Equal(t, []string{"from_header", "after"}, toks)
	assert.Zero(t, client.Errors)
}

func TestAngledInclude(t *testing.T) {
	h := &ppHarness{
		files: map[string]string{
			"main.c":    "#include <sys.h>\nafter\n",
			"sys/sys.h": "sys_decl\n",
		},
		angledDirs: []string{"sys"},
	}
	toks, client, _ := h.run(t)
	assert.Equal(t, []string{"sys_decl", "after"}, toks)
	assert.Zero(t, client.Errors)
}

func TestIncludeNotFound(t *testing.T) {
	h := &ppHarness{files: map[string]string{
		"main.c": "#include \"missing_for_test.h\"\n",
	}}
	_, client, _ := h.run(t)
	assert.Equal(t, 1, client.Errors)
}

func TestIncludeGuard(t *testing.T) {
	h := &ppHarness{files: map[string]string{
		"main.c": "#include \"guard.h\"\n#include \"guard.h\"\ndone\n",
		"guard.h": "#ifndef GUARD_H\n#define GUARD_H\nguarded\n#endif\n",
	}}
	toks, client, _ := h.run(t)
	assert.Equal(t, []string{"guarded", "done"}, toks)
	assert.Zero(t, client.Errors)
}

func TestIncludeGuardDetection(t *testing.T) {
	// A header whose whole body sits under a conditional equivalent to
	// #ifndef gets its controlling macro recorded at EOF, so re-includes
	// are skipped without reopening the file. Negation chains and unary
	// plus keep the candidate alive.
	testCases := []struct {
		name  string
		guard string
	}{
		{name: "ifndef", guard: "#ifndef GUARD_H"},
		{name: "if not defined", guard: "#if !defined(GUARD_H)"},
		{name: "triple negation", guard: "#if !!!defined(GUARD_H)"},
		{name: "negated unary plus", guard: "#if !(+defined(GUARD_H))"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := lang.DefaultOptions(lang.C99)
			sm := source.NewSourceManager()
			fm := source.NewFileManager()
			client := &diag.CountingClient{}
			diags := diag.NewEngine(sm, client)

			mainEntry := fm.GetVirtualFile("main.c", []byte("#include \"guard.h\"\n#include \"guard.h\"\ndone\n"))
			guardEntry := fm.GetVirtualFile("guard.h", []byte(tc.guard+"\n#define GUARD_H\nguarded\n#endif\n"))

			headers := NewHeaderSearch(fm)
			headers.SetSearchPaths(nil, 0)
			p := New(sm, fm, headers, diags, opts)
			p.EnterMainSourceFile(sm.CreateFileID(mainEntry, source.LocationInvalid, source.CharacteristicUser))

			var toks []string
			for {
				var tok lexer.Token
				p.Lex(&tok)
				if tok.Is(lexer.Kind_EOF) {
					break
				}
				toks = append(toks, p.Spelling(&tok))
			}
			assert.Equal(t, []string{"guarded", "done"}, toks)
			assert.Zero(t, client.Errors)

			ctrl := headers.FileInfo(guardEntry).ControllingMacro
			require.NotNil(t, ctrl)
			assert.Equal(t, "GUARD_H", ctrl.Name())
		})
	}
}

func TestPragmaOnce(t *testing.T) {
	h := &ppHarness{files: map[string]string{
		"main.c": "#include \"once.h\"\n#include \"once.h\"\ndone\n",
		"once.h": "#pragma once\nbody\n",
	}}
	toks, client, _ := h.run(t)
	assert.Equal(t, []string{"body", "done"}, toks)
	assert.Zero(t, client.Errors)
}

func TestPredefines(t *testing.T) {
	h := &ppHarness{
		files:      map[string]string{"main.c": "#ifdef FROM_CMDLINE\nenabled\n#endif\nVALUE\n"},
		predefines: "#define FROM_CMDLINE 1\n#define VALUE 7\n",
	}
	toks, client, _ := h.run(t)
	assert.Equal(t, []string{"enabled", "7"}, toks)
	assert.Zero(t, client.Errors)
}

func TestBuiltinMacros(t *testing.T) {
	toks, client := preprocess(t, "__LINE__\n__LINE__\n__FILE__\n__INCLUDE_LEVEL__\n__COUNTER__ __COUNTER__\n")
	assert.Equal(t, []string{"1", "2", `"main.c"`, "0", "0", "1"}, toks)
	assert.Zero(t, client.Errors)
}

func TestLineDirective(t *testing.T) {
	toks, client := preprocess(t, "#line 100 \"other.c\"\n__LINE__ __FILE__\n")
	assert.Equal(t, []string{"100", `"other.c"`}, toks)
	assert.Zero(t, client.Errors)
}

func TestErrorDirective(t *testing.T) {
	_, client := preprocess(t, "#error bad config\n")
	require.Equal(t, 1, client.Errors)
	assert.Contains(t, client.Delivered[0], "bad config")
}

func TestMacroRedefinition(t *testing.T) {
	// An identical redefinition is fine; a different one warns.
	_, client := preprocess(t, "#define A 1\n#define A 1\n")
	assert.Zero(t, client.Warnings)

	_, client = preprocess(t, "#define A 1\n#define A 2\n")
	assert.Equal(t, 1, client.Warnings)
	assert.Zero(t, client.Errors)
}

func TestPragmaOperator(t *testing.T) {
	// _Pragma replays its operand as a #pragma; unknown pragmas are ignored.
	toks, client := preprocess(t, "_Pragma(\"unknown thing\")\nx\n")
	assert.Equal(t, []string{"x"}, toks)
	assert.Zero(t, client.Errors)
}

func TestOpenMPAnnotation(t *testing.T) {
	opts := lang.DefaultOptions(lang.C99)
	opts.OpenMP = true
	h := &ppHarness{
		files: map[string]string{"main.c": "#pragma omp parallel\nx;\n"},
		opts:  &opts,
	}

	sm := source.NewSourceManager()
	fm := source.NewFileManager()
	client := &diag.CountingClient{}
	diags := diag.NewEngine(sm, client)
	entry := fm.GetVirtualFile("main.c", []byte(h.files["main.c"]))
	headers := NewHeaderSearch(fm)
	headers.SetSearchPaths(nil, 0)
	p := New(sm, fm, headers, diags, opts)
	p.EnterMainSourceFile(sm.CreateFileID(entry, source.LocationInvalid, source.CharacteristicUser))

	var tok lexer.Token
	p.Lex(&tok)
	require.True(t, tok.Is(lexer.Kind_AnnotPragmaOpenMP))

	directive := p.NextOpenMPDirective()
	require.Len(t, directive, 1)
	assert.Equal(t, "parallel", p.Spelling(&directive[0]))

	p.Lex(&tok)
	assert.True(t, tok.Is(lexer.Kind_Identifier))
	assert.Equal(t, "x", p.Spelling(&tok))
}
