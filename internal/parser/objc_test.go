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
	"github.com/EngFlow/ccfront/internal/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseObjC(t *testing.T, src string) (*BuildAction, *diag.CountingClient) {
	t.Helper()
	return parseSource(t, src, lang.DefaultOptions(lang.ObjC1))
}

func TestForwardClassDeclaration(t *testing.T) {
	a, client := parseObjC(t, "@class Widget, Window;\nWidget *w;\n")
	assert.Zero(t, client.Errors)
	// The forward declaration itself produces no node, but the named
	// classes become usable as type names.
	require.Len(t, a.TranslationUnit, 1)
	n := a.TranslationUnit[0]
	assert.Equal(t, ast.Kind_VarDecl, n.Kind)
	assert.Equal(t, "w", n.Name)
	assert.Equal(t, "Widget *", n.TypeName)
}

func TestClassInterface(t *testing.T) {
	_, client := parseObjC(t, `
@interface Widget : View <Drawable, Sizable> {
@private
  int width;
  int height;
@public
  char *title;
}
- (void)draw;
- (int)resizeTo:(int)w height:(int)h;
+ (Widget *)alloc;
@end
Widget *w;
`)
	assert.Zero(t, client.Errors)
}

func TestCategoryInterface(t *testing.T) {
	_, client := parseObjC(t, "@interface Widget (Extras)\n- (void)spin;\n@end\n")
	assert.Zero(t, client.Errors)
}

func TestMissingAtEnd(t *testing.T) {
	_, client := parseObjC(t, "@interface Widget\n- (void)draw;\n")
	assert.Equal(t, 1, client.Errors)
	assert.Contains(t, client.IDs, diag.ErrMissingAtEnd)
}

func TestProtocolDeclarations(t *testing.T) {
	_, client := parseObjC(t, "@protocol Drawable\n- (void)draw;\n@end\n")
	assert.Zero(t, client.Errors)

	// Forward form.
	_, client = parseObjC(t, "@protocol Drawable, Sizable;\n")
	assert.Zero(t, client.Errors)
}

func TestImplementation(t *testing.T) {
	a, client := parseObjC(t, `
@implementation Widget
- (int)area {
  return 0;
}
@end
int x;
`)
	assert.Zero(t, client.Errors)
	require.Len(t, a.TranslationUnit, 1)
	assert.Equal(t, "x", a.TranslationUnit[0].Name)
}

func TestCompatibilityAlias(t *testing.T) {
	a, client := parseObjC(t, "@compatibility_alias Modern Legacy;\nModern *p;\n")
	assert.Zero(t, client.Errors)
	require.Len(t, a.TranslationUnit, 1)
	assert.Equal(t, "Modern *", a.TranslationUnit[0].TypeName)
}

func TestAtOutsideObjC(t *testing.T) {
	_, client := parseC99(t, "@x;\n")
	assert.Equal(t, 1, client.Errors)
	assert.Contains(t, client.IDs, diag.ErrUnexpectedAtInProgram)

	_, client = parseC99(t, "void f(void) { @x; }\n")
	assert.Equal(t, 1, client.Errors)
	assert.Contains(t, client.IDs, diag.ErrUnexpectedAtInProgram)
}

func TestObjCStringLiteral(t *testing.T) {
	a, client := parseObjC(t, "void f(char *s) { s = @\"hi\"; }\n")
	assert.Zero(t, client.Errors)
	body := fnBody(t, a, 0)
	rhs := stmtExpr(t, body[0]).Rhs
	require.Equal(t, ast.Kind_ObjCString, rhs.Kind)
	require.NotNil(t, rhs.Lhs)
	require.Equal(t, ast.Kind_StringLiteral, rhs.Lhs.Kind)
	assert.Equal(t, []byte("hi\x00"), rhs.Lhs.StrValue)
}

func TestObjCEncode(t *testing.T) {
	a, client := parseObjC(t, "void f(char *s) { s = @encode(int); }\n")
	assert.Zero(t, client.Errors)
	body := fnBody(t, a, 0)
	rhs := stmtExpr(t, body[0]).Rhs
	require.Equal(t, ast.Kind_ObjCEncode, rhs.Kind)
	assert.Equal(t, "int", rhs.TypeName)
}

func TestThrowStatement(t *testing.T) {
	a, client := parseObjC(t, "void f(int e) { @throw e; }\n")
	assert.Zero(t, client.Errors)
	body := fnBody(t, a, 0)
	expr := stmtExpr(t, body[0])
	require.Equal(t, ast.Kind_Unary, expr.Kind)
	assert.Equal(t, lexer.Kind_At, expr.Op)
	assert.Equal(t, "e", expr.Lhs.Name)
}

func TestTryCatchFinally(t *testing.T) {
	a, client := parseObjC(t, `
void f(int x) {
  @try {
    x = 1;
  } @catch (int e) {
    x = 2;
  } @catch (...) {
    x = 3;
  } @finally {
    x = 4;
  }
}
`)
	assert.Zero(t, client.Errors)
	body := fnBody(t, a, 0)
	require.Len(t, body, 1)
	assert.Equal(t, ast.Kind_CompoundStmt, body[0].Kind)
}

func TestSynchronized(t *testing.T) {
	a, client := parseObjC(t, "void f(int x) { @synchronized (x) { x = 1; } }\n")
	assert.Zero(t, client.Errors)
	body := fnBody(t, a, 0)
	require.Len(t, body, 1)
	assert.Equal(t, ast.Kind_CompoundStmt, body[0].Kind)
}

func TestBadAtDirective(t *testing.T) {
	_, client := parseObjC(t, "@interface ;\n@end\n")
	assert.GreaterOrEqual(t, client.Errors, 1)

	_, client = parseObjC(t, "@frobnicate x;\n")
	assert.Equal(t, 1, client.Errors)
	assert.Contains(t, client.IDs, diag.ErrExpectedObjCDirective)
}
