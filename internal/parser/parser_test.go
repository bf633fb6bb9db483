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

package parser

import (
	"testing"

	"github.com/EngFlow/ccfront/internal/ast"
	"github.com/EngFlow/ccfront/internal/diag"
	"github.com/EngFlow/ccfront/internal/lang"
	"github.com/EngFlow/ccfront/internal/pp"
	"github.com/EngFlow/ccfront/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseSource runs the whole pipeline over src and returns the built tree
// plus the collected diagnostics.
func parseSource(t *testing.T, src string, opts lang.Options) (*BuildAction, *diag.CountingClient) {
	t.Helper()
	sm := source.NewSourceManager()
	fm := source.NewFileManager()
	client := &diag.CountingClient{}
	diags := diag.NewEngine(sm, client)
	headers := pp.NewHeaderSearch(fm)
	headers.SetSearchPaths(nil, 0)

	preproc := pp.New(sm, fm, headers, diags, opts)
	entry := fm.GetVirtualFile("test.c", []byte(src))
	preproc.EnterMainSourceFile(sm.CreateFileID(entry, source.LocationInvalid, source.CharacteristicUser))

	actions := NewBuildAction(preproc)
	p := New(preproc, actions)
	p.ParseTranslationUnit()
	return actions, client
}

func parseC99(t *testing.T, src string) (*BuildAction, *diag.CountingClient) {
	t.Helper()
	return parseSource(t, src, lang.DefaultOptions(lang.C99))
}

// fnBody returns the statement list of the idx-th top-level function.
func fnBody(t *testing.T, a *BuildAction, idx int) []*ast.Node {
	t.Helper()
	require.Greater(t, len(a.TranslationUnit), idx)
	fn := a.TranslationUnit[idx]
	require.Equal(t, ast.Kind_FunctionDecl, fn.Kind)
	require.NotNil(t, fn.Body)
	require.Equal(t, ast.Kind_CompoundStmt, fn.Body.Kind)
	return fn.Body.List
}

// stmtExpr unwraps an expression statement.
func stmtExpr(t *testing.T, n *ast.Node) *ast.Node {
	t.Helper()
	require.Equal(t, ast.Kind_ExprStmt, n.Kind)
	require.NotNil(t, n.Lhs)
	return n.Lhs
}

func TestGlobalDeclarations(t *testing.T) {
	testCases := []struct {
		src      string
		kind     ast.Kind
		name     string
		typeName string
	}{
		{"int x;", ast.Kind_VarDecl, "x", "int"},
		{"unsigned long u;", ast.Kind_VarDecl, "u", "unsigned long"},
		{"typedef unsigned long size_type;", ast.Kind_TypedefDecl, "size_type", "unsigned long"},
		{"char *name;", ast.Kind_VarDecl, "name", "char *"},
		{"int values[10];", ast.Kind_VarDecl, "values", "int []"},
		{"int f(void);", ast.Kind_FunctionDecl, "f", "int ()"},
		{"int (*handler)(void);", ast.Kind_VarDecl, "handler", "int * ()"},
	}
	for _, tc := range testCases {
		a, client := parseC99(t, tc.src+"\n")
		assert.Zero(t, client.Errors, "src %q", tc.src)
		if assert.Len(t, a.TranslationUnit, 1, "src %q", tc.src) {
			n := a.TranslationUnit[0]
			assert.Equal(t, tc.kind, n.Kind, "src %q", tc.src)
			assert.Equal(t, tc.name, n.Name, "src %q", tc.src)
			assert.Equal(t, tc.typeName, n.TypeName, "src %q", tc.src)
		}
	}
}

func TestDeclaratorGroup(t *testing.T) {
	a, client := parseC99(t, "int x = 1, y, *p;\n")
	assert.Zero(t, client.Errors)
	require.Len(t, a.TranslationUnit, 1)

	n := a.TranslationUnit[0]
	assert.Equal(t, ast.Kind_VarDecl, n.Kind)
	assert.Equal(t, "x", n.Name)
	require.NotNil(t, n.Init)
	assert.Equal(t, ast.Kind_IntLiteral, n.Init.Kind)
	assert.Equal(t, uint64(1), n.Init.IntValue)

	require.Len(t, n.List, 2)
	assert.Equal(t, "y", n.List[0].Name)
	assert.Equal(t, "p", n.List[1].Name)
	assert.Equal(t, "int *", n.List[1].TypeName)
}

func TestTypedefDisambiguation(t *testing.T) {
	a, client := parseC99(t, "typedef int T;\nT a;\nT *b;\nint T2;\n")
	assert.Zero(t, client.Errors)
	require.Len(t, a.TranslationUnit, 4)
	assert.Equal(t, ast.Kind_TypedefDecl, a.TranslationUnit[0].Kind)
	assert.Equal(t, ast.Kind_VarDecl, a.TranslationUnit[1].Kind)
	assert.Equal(t, "a", a.TranslationUnit[1].Name)
	assert.Equal(t, "T", a.TranslationUnit[1].TypeName)
	assert.Equal(t, "b", a.TranslationUnit[2].Name)
	assert.Equal(t, "T *", a.TranslationUnit[2].TypeName)
	assert.Equal(t, "T2", a.TranslationUnit[3].Name)
}

func TestTypedefShadowing(t *testing.T) {
	// The inner T is a variable, so `T * x` is a multiplication there.
	a, client := parseC99(t, "typedef int T;\nvoid f(void) { int T; T * x; }\nT *back;\n")
	assert.Zero(t, client.Errors)
	require.Len(t, a.TranslationUnit, 3)

	body := fnBody(t, a, 1)
	require.Len(t, body, 2)
	assert.Equal(t, ast.Kind_DeclStmt, body[0].Kind)
	mul := stmtExpr(t, body[1])
	assert.Equal(t, ast.Kind_Binary, mul.Kind)

	// Outside the function the typedef is visible again.
	assert.Equal(t, ast.Kind_VarDecl, a.TranslationUnit[2].Kind)
	assert.Equal(t, "back", a.TranslationUnit[2].Name)
}

func TestFunctionDefinition(t *testing.T) {
	a, client := parseC99(t, "int add(int a, int b) { return a + b; }\n")
	assert.Zero(t, client.Errors)
	require.Len(t, a.TranslationUnit, 1)

	fn := a.TranslationUnit[0]
	assert.Equal(t, ast.Kind_FunctionDecl, fn.Kind)
	assert.Equal(t, "add", fn.Name)
	require.Len(t, fn.List, 2)
	assert.Equal(t, "a", fn.List[0].Name)
	assert.Equal(t, "int", fn.List[0].TypeName)
	assert.Equal(t, "b", fn.List[1].Name)

	body := fnBody(t, a, 0)
	require.Len(t, body, 1)
	require.Equal(t, ast.Kind_Return, body[0].Kind)
	require.NotNil(t, body[0].Lhs)
	assert.Equal(t, ast.Kind_Binary, body[0].Lhs.Kind)
}

func TestKnRFunctionDefinition(t *testing.T) {
	a, client := parseC99(t, "int add(a, b)\nint a;\nint b;\n{ return a + b; }\n")
	assert.Zero(t, client.Errors)
	require.Len(t, a.TranslationUnit, 1)

	fn := a.TranslationUnit[0]
	assert.Equal(t, "add", fn.Name)
	require.Len(t, fn.List, 2)
	assert.Equal(t, "a", fn.List[0].Name)
	assert.Equal(t, "int", fn.List[0].TypeName)
}

func TestKnRParamErrors(t *testing.T) {
	// c is declared but not in the identifier list.
	_, client := parseC99(t, "int f(a)\nint a;\nint c;\n{ return a; }\n")
	assert.Equal(t, 1, client.Errors)

	// b never gets a declaration and defaults to int.
	a, client := parseC99(t, "int f(a, b)\nint a;\n{ return a; }\n")
	assert.Equal(t, 1, client.Errors)
	require.Len(t, a.TranslationUnit, 1)
	require.Len(t, a.TranslationUnit[0].List, 2)
	assert.Equal(t, "int", a.TranslationUnit[0].List[1].TypeName)
}

func TestTagDeclarations(t *testing.T) {
	src := `
enum Color { RED, GREEN = 5, BLUE };
struct Point { int x, y; };
union Value { int i; float f; };
struct Point origin;
struct Flags { unsigned a : 1; unsigned : 3; unsigned b : 4; };
`
	a, client := parseC99(t, src)
	assert.Zero(t, client.Errors)

	// Only the named object declaration produces a top-level node.
	require.Len(t, a.TranslationUnit, 1)
	assert.Equal(t, "origin", a.TranslationUnit[0].Name)
	assert.Equal(t, "struct Point", a.TranslationUnit[0].TypeName)
}

func TestInitializers(t *testing.T) {
	a, client := parseC99(t, "int a[3] = {1, 2, 3};\nstruct P s = {.x = 1, [2] = 5, 9};\nint b = {0,};\n")
	assert.Zero(t, client.Errors)
	require.Len(t, a.TranslationUnit, 3)

	init := a.TranslationUnit[0].Init
	require.NotNil(t, init)
	require.Equal(t, ast.Kind_InitList, init.Kind)
	require.Len(t, init.List, 3)
	assert.Equal(t, uint64(3), init.List[2].IntValue)

	init = a.TranslationUnit[1].Init
	require.NotNil(t, init)
	assert.Len(t, init.List, 3)
}

func TestRecovery(t *testing.T) {
	testCases := []struct {
		name      string
		src       string
		errors    int
		survivors int
	}{
		{
			name:      "bad initializer",
			src:       "int x = ;\nint y;\n",
			errors:    1,
			survivors: 2,
		},
		{
			name:      "declarator is not an identifier",
			src:       "int 123;\nint y;\n",
			errors:    1,
			survivors: 1,
		},
		{
			name:      "stray closing brace",
			src:       "}\nint y;\n",
			errors:    1,
			survivors: 1,
		},
		{
			name:      "missing semicolon between expressions",
			src:       "void f(void) { 1 1; }\nint y;\n",
			errors:    1,
			survivors: 2,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, client := parseC99(t, tc.src)
			assert.Equal(t, tc.errors, client.Errors)
			assert.Len(t, a.TranslationUnit, tc.survivors)
		})
	}
}

func TestUnmatchedBrace(t *testing.T) {
	_, client := parseC99(t, "void f(void) {\nint a;\n")
	assert.Equal(t, 1, client.Errors)
	assert.Equal(t, 1, client.Notes, "the opening brace gets a note")
}

func TestMissingSemicolon(t *testing.T) {
	_, client := parseC99(t, "int x\nint y;\n")
	assert.Equal(t, 1, client.Errors)
}

func TestAsmLabelAndAttributes(t *testing.T) {
	a, client := parseC99(t, "int counter asm(\"real_counter\") __attribute__((unused));\n")
	assert.Zero(t, client.Errors)
	require.Len(t, a.TranslationUnit, 1)
	assert.Equal(t, "counter", a.TranslationUnit[0].Name)
}

func TestSimpleAsmAtFileScope(t *testing.T) {
	a, client := parseC99(t, "asm(\".section .text\");\n")
	assert.Zero(t, client.Errors)
	require.Len(t, a.TranslationUnit, 1)
	assert.Equal(t, ast.Kind_Asm, a.TranslationUnit[0].Kind)
}

func TestDeclSpecErrors(t *testing.T) {
	testCases := []struct {
		src    string
		errors int
	}{
		{"signed float x;", 1},    // sign applies to char and int only
		{"short double y;", 1},    // bad width/type combination
		{"int typedef z;", 0},     // order is free
		{"long long big;", 0},     // two longs make long long
		{"const const int c;", 1}, // duplicate qualifier
	}
	for _, tc := range testCases {
		_, client := parseC99(t, tc.src+"\n")
		assert.Equal(t, tc.errors, client.Errors, "src %q", tc.src)
	}
}

func TestTemplateDeclarations(t *testing.T) {
	opts := lang.DefaultOptions(lang.CPlusPlus)
	testCases := []struct {
		src    string
		errors int
	}{
		{"template <class T> class vec;", 0},
		{"template <typename T, int N> class arr;", 0},
		{"template <class T = int> class box;", 0},
		{"template <1> class bad;", 1},
	}
	for _, tc := range testCases {
		_, client := parseSource(t, tc.src+"\n", opts)
		assert.Equal(t, tc.errors, client.Errors, "src %q", tc.src)
	}
}

func TestReturnTypeChecks(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		errors   int
		warnings int
	}{
		{"value from void function", "void f(void) { return 1; }", 1, 0},
		{"plain return from void", "void f(void) { return; }", 0, 0},
		{"plain return from int is C90-legal", "int f(void) { return; }", 0, 0},
		{"null constant to pointer", "int *f(void) { return 0; }", 0, 0},
		{"int to pointer", "int *f(void) { return 5; }", 0, 1},
		{"pointer to int", "int f(void) { return (char *)0; }", 0, 1},
		{"incompatible pointers", "char *f(void) { return (int *)0; }", 0, 1},
		{"discarded qualifiers", "char *f(void) { return (const char *)0; }", 0, 1},
		{"pointer to float", "float f(void) { return \"s\"; }", 1, 0},
		{"matching pointer", "char *f(void) { return (char *)0; }", 0, 0},
		{"unclassifiable passes", "int f(int a) { return a; }", 0, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, client := parseC99(t, tc.src+"\n")
			assert.Equal(t, tc.errors, client.Errors)
			assert.Equal(t, tc.warnings, client.Warnings)
		})
	}
}
