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
	"github.com/EngFlow/ccfront/internal/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exprIn parses a single expression statement inside a function body and
// returns its expression node.
func exprIn(t *testing.T, src string) *ast.Node {
	t.Helper()
	a, client := parseC99(t, "void f(int a, int b, int c) {\n"+src+"\n}\n")
	require.Zero(t, client.Errors, "src %q", src)
	body := fnBody(t, a, 0)
	require.Len(t, body, 1)
	return stmtExpr(t, body[0])
}

func TestBinaryPrecedence(t *testing.T) {
	// 1 + 2 * 3 groups as 1 + (2 * 3).
	n := exprIn(t, "a = 1 + 2 * 3;")
	require.Equal(t, ast.Kind_Assign, n.Kind)
	sum := n.Rhs
	require.Equal(t, ast.Kind_Binary, sum.Kind)
	assert.Equal(t, lexer.Kind_Plus, sum.Op)
	assert.Equal(t, ast.Kind_IntLiteral, sum.Lhs.Kind)
	require.Equal(t, ast.Kind_Binary, sum.Rhs.Kind)
	assert.Equal(t, lexer.Kind_Star, sum.Rhs.Op)
}

func TestAssignmentRightAssociative(t *testing.T) {
	// a = b = c groups as a = (b = c).
	n := exprIn(t, "a = b = c;")
	require.Equal(t, ast.Kind_Assign, n.Kind)
	assert.Equal(t, "a", n.Lhs.Name)
	inner := n.Rhs
	require.Equal(t, ast.Kind_Assign, inner.Kind)
	assert.Equal(t, "b", inner.Lhs.Name)
	assert.Equal(t, "c", inner.Rhs.Name)
}

func TestCompoundAssignment(t *testing.T) {
	n := exprIn(t, "a += b;")
	require.Equal(t, ast.Kind_Assign, n.Kind)
	assert.Equal(t, lexer.Kind_PlusEqual, n.Op)
}

func TestConditionalRightAssociative(t *testing.T) {
	// a ? b : c ? b : a nests the second conditional in the else arm.
	n := exprIn(t, "a = a ? b : c ? b : a;")
	require.Equal(t, ast.Kind_Assign, n.Kind)
	cond := n.Rhs
	require.Equal(t, ast.Kind_Conditional, cond.Kind)
	assert.Equal(t, "a", cond.Cond.Name)
	assert.Equal(t, "b", cond.Then.Name)
	require.Equal(t, ast.Kind_Conditional, cond.Else.Kind)
	assert.Equal(t, "c", cond.Else.Cond.Name)
}

func TestGNUEmptyConditional(t *testing.T) {
	// a ? : b omits the middle operand; accepted silently by default.
	a, client := parseC99(t, "void f(int a, int b) { a = a ? : b; }\n")
	assert.Zero(t, client.Errors)
	assert.Zero(t, client.Warnings)
	body := fnBody(t, a, 0)
	cond := stmtExpr(t, body[0]).Rhs
	require.Equal(t, ast.Kind_Conditional, cond.Kind)
	assert.Nil(t, cond.Then)
	assert.Equal(t, "b", cond.Else.Name)
}

func TestCommaOperator(t *testing.T) {
	n := exprIn(t, "(a, b);")
	require.Equal(t, ast.Kind_Paren, n.Kind)
	inner := n.Lhs
	require.Equal(t, ast.Kind_Binary, inner.Kind)
	assert.Equal(t, lexer.Kind_Comma, inner.Op)
	assert.Equal(t, "a", inner.Lhs.Name)
	assert.Equal(t, "b", inner.Rhs.Name)
}

func TestConditionalBindsTighterThanComma(t *testing.T) {
	// 1 ? 2 : 3, 4 groups as (1 ? 2 : 3), 4 whichever side the
	// conditional sits on.
	n := exprIn(t, "1 ? 2 : 3, 4;")
	require.Equal(t, ast.Kind_Binary, n.Kind)
	assert.Equal(t, lexer.Kind_Comma, n.Op)
	cond := n.Lhs
	require.Equal(t, ast.Kind_Conditional, cond.Kind)
	assert.Equal(t, uint64(1), cond.Cond.IntValue)
	assert.Equal(t, uint64(2), cond.Then.IntValue)
	assert.Equal(t, uint64(3), cond.Else.IntValue)
	require.Equal(t, ast.Kind_IntLiteral, n.Rhs.Kind)
	assert.Equal(t, uint64(4), n.Rhs.IntValue)

	n = exprIn(t, "4, 1 ? 2 : 3;")
	require.Equal(t, ast.Kind_Binary, n.Kind)
	assert.Equal(t, lexer.Kind_Comma, n.Op)
	require.Equal(t, ast.Kind_IntLiteral, n.Lhs.Kind)
	assert.Equal(t, uint64(4), n.Lhs.IntValue)
	require.Equal(t, ast.Kind_Conditional, n.Rhs.Kind)
	assert.Equal(t, uint64(1), n.Rhs.Cond.IntValue)
}

func TestUnaryOperators(t *testing.T) {
	testCases := []struct {
		src string
		op  lexer.Kind
	}{
		{"-a;", lexer.Kind_Minus},
		{"!a;", lexer.Kind_Exclaim},
		{"~a;", lexer.Kind_Tilde},
		{"*a;", lexer.Kind_Star},
		{"&a;", lexer.Kind_Amp},
		{"++a;", lexer.Kind_PlusPlus},
		{"--a;", lexer.Kind_MinusMinus},
	}
	for _, tc := range testCases {
		n := exprIn(t, tc.src)
		require.Equal(t, ast.Kind_Unary, n.Kind, "src %q", tc.src)
		assert.Equal(t, tc.op, n.Op, "src %q", tc.src)
		assert.Equal(t, "a", n.Lhs.Name, "src %q", tc.src)
	}
}

func TestPostfixOperators(t *testing.T) {
	n := exprIn(t, "a++;")
	require.Equal(t, ast.Kind_PostfixUnary, n.Kind)
	assert.Equal(t, lexer.Kind_PlusPlus, n.Op)

	n = exprIn(t, "a[1];")
	require.Equal(t, ast.Kind_ArraySubscript, n.Kind)
	assert.Equal(t, "a", n.Lhs.Name)
	assert.Equal(t, ast.Kind_IntLiteral, n.Rhs.Kind)

	n = exprIn(t, "b(a, 1);")
	require.Equal(t, ast.Kind_Call, n.Kind)
	assert.Equal(t, "b", n.Lhs.Name)
	require.Len(t, n.List, 2)
	assert.Equal(t, ast.Kind_DeclRef, n.List[0].Kind)
	assert.Equal(t, ast.Kind_IntLiteral, n.List[1].Kind)

	n = exprIn(t, "a.member;")
	require.Equal(t, ast.Kind_Member, n.Kind)
	assert.Equal(t, "member", n.Name)
	assert.False(t, n.IsArrow)

	n = exprIn(t, "a->next;")
	require.Equal(t, ast.Kind_Member, n.Kind)
	assert.Equal(t, "next", n.Name)
	assert.True(t, n.IsArrow)
}

func TestPostfixChains(t *testing.T) {
	// a[1].next->value stacks member accesses on the subscript.
	n := exprIn(t, "a[1].next->value;")
	require.Equal(t, ast.Kind_Member, n.Kind)
	assert.True(t, n.IsArrow)
	assert.Equal(t, "value", n.Name)
	mid := n.Lhs
	require.Equal(t, ast.Kind_Member, mid.Kind)
	assert.False(t, mid.IsArrow)
	assert.Equal(t, ast.Kind_ArraySubscript, mid.Lhs.Kind)
}

func TestSizeof(t *testing.T) {
	n := exprIn(t, "a = sizeof(int);")
	op := n.Rhs
	require.Equal(t, ast.Kind_SizeOfAlignOf, op.Kind)
	assert.False(t, op.IsAlignOf)
	assert.True(t, op.IsOfType)
	assert.Equal(t, "int", op.TypeName)

	n = exprIn(t, "a = sizeof b;")
	op = n.Rhs
	require.Equal(t, ast.Kind_SizeOfAlignOf, op.Kind)
	assert.False(t, op.IsOfType)
	require.NotNil(t, op.Lhs)
	assert.Equal(t, "b", op.Lhs.Name)

	// Parenthesized expression operand, not a type.
	n = exprIn(t, "a = sizeof(b);")
	op = n.Rhs
	require.Equal(t, ast.Kind_SizeOfAlignOf, op.Kind)
	assert.False(t, op.IsOfType)
}

func TestCasts(t *testing.T) {
	n := exprIn(t, "a = (int)1.5;")
	cast := n.Rhs
	require.Equal(t, ast.Kind_Cast, cast.Kind)
	assert.Equal(t, "int", cast.TypeName)
	assert.Equal(t, ast.Kind_FloatLiteral, cast.Lhs.Kind)

	n = exprIn(t, "a = (char *)0;")
	cast = n.Rhs
	require.Equal(t, ast.Kind_Cast, cast.Kind)
	assert.Equal(t, "char *", cast.TypeName)
}

func TestCompoundLiteral(t *testing.T) {
	n := exprIn(t, "a = (int){ 7 };")
	lit := n.Rhs
	require.Equal(t, ast.Kind_CompoundLiteral, lit.Kind)
	assert.Equal(t, "int", lit.TypeName)
	require.NotNil(t, lit.Init)
	require.Equal(t, ast.Kind_InitList, lit.Init.Kind)
	require.Len(t, lit.Init.List, 1)
}

func TestLiteralExpressions(t *testing.T) {
	n := exprIn(t, "a = 'x';")
	ch := n.Rhs
	require.Equal(t, ast.Kind_CharLiteral, ch.Kind)
	assert.Equal(t, uint64('x'), ch.IntValue)
	assert.False(t, ch.IsWide)

	n = exprIn(t, "a = 42u;")
	lit := n.Rhs
	require.Equal(t, ast.Kind_IntLiteral, lit.Kind)
	assert.Equal(t, uint64(42), lit.IntValue)
	assert.True(t, lit.IsUnsigned)
}

func TestStringConcatenation(t *testing.T) {
	a, client := parseC99(t, "char *s = \"ab\" \"cd\";\n")
	assert.Zero(t, client.Errors)
	require.Len(t, a.TranslationUnit, 1)
	init := a.TranslationUnit[0].Init
	require.NotNil(t, init)
	require.Equal(t, ast.Kind_StringLiteral, init.Kind)
	assert.Equal(t, []byte("abcd\x00"), init.StrValue)
	assert.False(t, init.IsWide)
}

func TestStatementExpression(t *testing.T) {
	a, client := parseC99(t, "void f(int a) { a = ({ 1; }); }\n")
	assert.Zero(t, client.Errors)
	assert.Zero(t, client.Warnings)
	body := fnBody(t, a, 0)
	se := stmtExpr(t, body[0]).Rhs
	require.Equal(t, ast.Kind_StmtExpr, se.Kind)
	require.NotNil(t, se.Body)
	assert.Equal(t, ast.Kind_CompoundStmt, se.Body.Kind)
}

func TestBuiltinVaArg(t *testing.T) {
	// Surfaced as a cast of the va_list expression.
	a, client := parseC99(t, "void f(int a, int ap) { a = __builtin_va_arg(ap, int); }\n")
	assert.Zero(t, client.Errors)
	body := fnBody(t, a, 0)
	cast := stmtExpr(t, body[0]).Rhs
	require.Equal(t, ast.Kind_Cast, cast.Kind)
	assert.Equal(t, "int", cast.TypeName)
	assert.Equal(t, "ap", cast.Lhs.Name)
}

func TestExtensionMarker(t *testing.T) {
	// __extension__ is swallowed; the operand parses normally.
	n := exprIn(t, "a = __extension__ 1;")
	require.Equal(t, ast.Kind_Assign, n.Kind)
	assert.Equal(t, ast.Kind_IntLiteral, n.Rhs.Kind)
}

func TestExpressionErrors(t *testing.T) {
	testCases := []struct {
		src    string
		errors int
	}{
		{"void f(int a) { a = ; }", 1},      // missing rhs
		{"void f(int a) { a[; }", 2},        // bad subscript, then ']' never found
		{"void f(int a) { a = (1 + ; }", 1}, // bad operand inside parens
		{"void f(int a) { a.; }", 1},        // member name missing
		{"void f(int a) { a = b ? 1; }", 1}, // ':' missing
	}
	for _, tc := range testCases {
		_, client := parseC99(t, tc.src+"\n")
		assert.Equal(t, tc.errors, client.Errors, "src %q", tc.src)
	}
}
