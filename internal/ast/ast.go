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

// Package ast defines the parse tree as one kind-tagged node type with the
// per-kind payload inlined. Consumers switch on Kind; there is no visitor
// machinery.
package ast

import (
	"github.com/EngFlow/ccfront/internal/lexer"
	"github.com/EngFlow/ccfront/internal/source"
)

type Kind uint8

const (
	Kind_Invalid Kind = iota

	// Expressions.

	Kind_IntLiteral
	Kind_FloatLiteral
	Kind_CharLiteral
	Kind_StringLiteral
	Kind_DeclRef
	Kind_Paren
	Kind_Unary          // prefix op in Op
	Kind_PostfixUnary   // ++ -- after the operand
	Kind_Binary         // op in Op
	Kind_Assign         // = and compound assignments, op in Op
	Kind_Conditional    // ?:, Cond/Then/Else (Then nil for GNU ?:)
	Kind_Cast           // (type-name) expr
	Kind_CompoundLiteral
	Kind_Call
	Kind_ArraySubscript
	Kind_Member // . or ->, IsArrow distinguishes
	Kind_SizeOfAlignOf
	Kind_InitList   // { ... } initializer, elements in List
	Kind_StmtExpr   // GNU ({ ... })
	Kind_ObjCString // @"..."
	Kind_ObjCEncode // @encode(type-name)

	// Statements.

	Kind_NullStmt
	Kind_CompoundStmt
	Kind_DeclStmt
	Kind_ExprStmt
	Kind_If
	Kind_Switch
	Kind_While
	Kind_Do
	Kind_For
	Kind_Goto
	Kind_Continue
	Kind_Break
	Kind_Return
	Kind_Label
	Kind_Case
	Kind_Default
	Kind_Asm
	Kind_OmpDirective

	// Declarations.

	Kind_VarDecl
	Kind_FunctionDecl
	Kind_TypedefDecl
)

var kindNames = map[Kind]string{
	Kind_Invalid: "invalid", Kind_IntLiteral: "int", Kind_FloatLiteral: "float",
	Kind_CharLiteral: "char", Kind_StringLiteral: "string", Kind_DeclRef: "declref",
	Kind_Paren: "paren", Kind_Unary: "unary", Kind_PostfixUnary: "postfix",
	Kind_Binary: "binary", Kind_Assign: "assign", Kind_Conditional: "conditional",
	Kind_Cast: "cast", Kind_CompoundLiteral: "compound-literal", Kind_Call: "call",
	Kind_ArraySubscript: "subscript", Kind_Member: "member",
	Kind_SizeOfAlignOf: "sizeof", Kind_InitList: "init-list", Kind_StmtExpr: "stmt-expr",
	Kind_ObjCString: "objc-string", Kind_ObjCEncode: "objc-encode",
	Kind_NullStmt: "null-stmt", Kind_CompoundStmt: "compound", Kind_DeclStmt: "decl-stmt",
	Kind_ExprStmt: "expr-stmt", Kind_If: "if", Kind_Switch: "switch",
	Kind_While: "while", Kind_Do: "do", Kind_For: "for", Kind_Goto: "goto",
	Kind_Continue: "continue", Kind_Break: "break", Kind_Return: "return",
	Kind_Label: "label", Kind_Case: "case", Kind_Default: "default",
	Kind_Asm: "asm", Kind_OmpDirective: "omp",
	Kind_VarDecl: "var", Kind_FunctionDecl: "function", Kind_TypedefDecl: "typedef",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Node is one parse-tree node. Which fields are meaningful depends on Kind;
// everything else stays zero.
type Node struct {
	Kind Kind
	Loc  source.Location

	// Op carries the operator token for unary, postfix, binary and
	// assignment nodes, and the member accessor for Kind_Member.
	Op lexer.Kind

	Lhs *Node
	Rhs *Node

	Cond *Node
	Then *Node
	Else *Node
	Init *Node
	Inc  *Node

	// Body is the sub-statement of compounds, loops, labels, switch cases
	// and function definitions.
	Body *Node

	// List holds compound-statement members, call arguments, declaration
	// groups and OpenMP clause tokens rendered as nodes.
	List []*Node

	// Name is the identifier of declrefs, labels, goto targets, members
	// and declarations.
	Name    string
	IsArrow bool // Kind_Member via ->

	// Literal payloads.
	IntValue   uint64
	IsUnsigned bool
	FloatValue float64
	StrValue   []byte
	IsWide     bool

	// Kind_SizeOfAlignOf.
	IsAlignOf bool
	IsOfType  bool // operand was a parenthesized type-name

	// TypeName is the flattened spelling of a type-name operand for casts,
	// compound literals, sizeof and @encode. Full type structure is out of
	// scope for the stub semantic layer.
	TypeName string

	// Kind_Asm.
	AsmString  string
	IsVolatile bool

	// Kind_OmpDirective.
	OmpKind string
}
