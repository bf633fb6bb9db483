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
	"github.com/EngFlow/ccfront/internal/ast"
	"github.com/EngFlow/ccfront/internal/lexer"
	"github.com/EngFlow/ccfront/internal/source"
)

// Result is the outcome of an action callback: a node (possibly nil, when
// the consumer builds nothing) and an invalid bit. The invalid bit is
// propagated, never diagnosed twice.
type Result struct {
	Node    *ast.Node
	Invalid bool
}

func Valid(n *ast.Node) Result { return Result{Node: n} }
func Invalid() Result          { return Result{Invalid: true} }

// Action receives parse events. The parser owns all syntactic decisions;
// the one semantic question it asks back is IsTypeName, which it needs to
// disambiguate declarations from expressions and casts from parens.
type Action interface {
	// IsTypeName reports whether info names a type (typedef name, or an
	// Objective-C class name) visible in scope s.
	IsTypeName(info *lexer.Info, s *Scope) bool

	// ActOnDeclarator is called for each complete declarator in a
	// declaration group. group is the result of the previous declarator
	// in the same group, or an empty Result for the first.
	ActOnDeclarator(s *Scope, d *Declarator, group Result) Result
	// ActOnStartOfFunctionDef is called after the declarator of a
	// function definition, before its body is parsed.
	ActOnStartOfFunctionDef(s *Scope, d *Declarator) Result
	ActOnFinishFunctionBody(fn Result, body Result) Result
	// ActOnPopScope fires before s is destroyed, with its declarations
	// still intact.
	ActOnPopScope(s *Scope)
	ActOnTranslationUnit(decls []Result)

	// Statements.
	ActOnNullStmt(semiLoc source.Location) Result
	ActOnCompoundStmt(lbraceLoc, rbraceLoc source.Location, stmts []Result, isStmtExpr bool) Result
	ActOnDeclStmt(decl Result) Result
	ActOnExprStmt(expr Result) Result
	ActOnIfStmt(ifLoc source.Location, cond, thenStmt, elseStmt Result) Result
	ActOnSwitchStmt(switchLoc source.Location, cond, body Result) Result
	ActOnWhileStmt(whileLoc source.Location, cond, body Result) Result
	ActOnDoStmt(doLoc source.Location, body Result, whileLoc source.Location, cond Result) Result
	ActOnForStmt(forLoc source.Location, init, cond, inc, body Result) Result
	ActOnGotoStmt(gotoLoc source.Location, name string) Result
	ActOnContinueStmt(continueLoc source.Location) Result
	ActOnBreakStmt(breakLoc source.Location) Result
	ActOnReturnStmt(returnLoc source.Location, value Result) Result
	ActOnLabelStmt(identLoc source.Location, name string, sub Result) Result
	ActOnCaseStmt(caseLoc source.Location, lhs, rhs, sub Result) Result
	ActOnDefaultStmt(defaultLoc source.Location, sub Result) Result
	ActOnAsmStmt(asmLoc source.Location, isVolatile bool, asmString string) Result
	ActOnOmpDirective(ompLoc source.Location, kind string, body Result) Result

	// Expressions.
	ActOnNumericConstant(tok lexer.Token, spelling string) Result
	ActOnCharConstant(tok lexer.Token, spelling string) Result
	// ActOnStringLiteral receives the whole run of adjacent string
	// literal tokens that concatenate into one literal.
	ActOnStringLiteral(toks []lexer.Token, spellings []string) Result
	ActOnIdentifierExpr(loc source.Location, info *lexer.Info, s *Scope) Result
	ActOnParenExpr(lparenLoc, rparenLoc source.Location, expr Result) Result
	ActOnUnaryOp(opLoc source.Location, op lexer.Kind, input Result) Result
	ActOnPostfixUnaryOp(opLoc source.Location, op lexer.Kind, input Result) Result
	ActOnArraySubscriptExpr(base Result, lbracketLoc source.Location, index Result, rbracketLoc source.Location) Result
	ActOnCallExpr(fn Result, lparenLoc source.Location, args []Result, rparenLoc source.Location) Result
	ActOnMemberReferenceExpr(base Result, opLoc source.Location, op lexer.Kind, member string) Result
	ActOnBinOp(opLoc source.Location, op lexer.Kind, lhs, rhs Result) Result
	ActOnConditionalOp(questionLoc, colonLoc source.Location, cond, lhs, rhs Result) Result
	ActOnCastExpr(lparenLoc source.Location, typeName string, rparenLoc source.Location, operand Result) Result
	ActOnCompoundLiteral(lparenLoc source.Location, typeName string, rparenLoc source.Location, init Result) Result
	ActOnInitList(lbraceLoc, rbraceLoc source.Location, inits []Result) Result
	ActOnSizeOfAlignOf(opLoc source.Location, isSizeof, isOfType bool, typeName string, operand Result) Result
	ActOnStmtExpr(lparenLoc source.Location, substmt Result, rparenLoc source.Location) Result
	ActOnObjCStringLiteral(atLoc source.Location, str Result) Result
	ActOnObjCEncodeExpr(atLoc source.Location, typeName string) Result

	// Objective-C declarations. Class and protocol bodies are parsed
	// syntactically; the action only learns the names.
	ActOnForwardClassDeclaration(atLoc source.Location, names []*lexer.Info) Result
	ActOnStartClassInterface(atLoc source.Location, name *lexer.Info, superName *lexer.Info) Result
	ActOnStartCategory(atLoc source.Location, className, categoryName *lexer.Info) Result
	ActOnStartProtocol(atLoc source.Location, name *lexer.Info) Result
	ActOnStartImplementation(atLoc source.Location, name *lexer.Info) Result
	ActOnAtEnd(atLoc source.Location) Result
	ActOnMethodDeclaration(loc source.Location, isInstance bool, selector string) Result
	ActOnCompatibilityAlias(atLoc source.Location, alias, class *lexer.Info) Result
}

// BaseAction is a no-op Action. Concrete actions embed it so the parser
// can gain callbacks without breaking every consumer.
type BaseAction struct{}

var _ Action = (*BaseAction)(nil)

func (BaseAction) IsTypeName(info *lexer.Info, s *Scope) bool { return false }

func (BaseAction) ActOnDeclarator(s *Scope, d *Declarator, group Result) Result { return Result{} }
func (BaseAction) ActOnStartOfFunctionDef(s *Scope, d *Declarator) Result { return Result{} }
func (BaseAction) ActOnFinishFunctionBody(fn Result, body Result) Result { return fn }
func (BaseAction) ActOnPopScope(s *Scope)                {}
func (BaseAction) ActOnTranslationUnit(decls []Result)   {}

func (BaseAction) ActOnNullStmt(semiLoc source.Location) Result { return Result{} }
func (BaseAction) ActOnCompoundStmt(lbraceLoc, rbraceLoc source.Location, stmts []Result, isStmtExpr bool) Result {
	return Result{}
}
func (BaseAction) ActOnDeclStmt(decl Result) Result { return Result{} }
func (BaseAction) ActOnExprStmt(expr Result) Result { return Result{} }
func (BaseAction) ActOnIfStmt(ifLoc source.Location, cond, thenStmt, elseStmt Result) Result {
	return Result{}
}
func (BaseAction) ActOnSwitchStmt(switchLoc source.Location, cond, body Result) Result {
	return Result{}
}
func (BaseAction) ActOnWhileStmt(whileLoc source.Location, cond, body Result) Result {
	return Result{}
}
func (BaseAction) ActOnDoStmt(doLoc source.Location, body Result, whileLoc source.Location, cond Result) Result {
	return Result{}
}
func (BaseAction) ActOnForStmt(forLoc source.Location, init, cond, inc, body Result) Result {
	return Result{}
}
func (BaseAction) ActOnGotoStmt(gotoLoc source.Location, name string) Result  { return Result{} }
func (BaseAction) ActOnContinueStmt(continueLoc source.Location) Result       { return Result{} }
func (BaseAction) ActOnBreakStmt(breakLoc source.Location) Result             { return Result{} }
func (BaseAction) ActOnReturnStmt(returnLoc source.Location, value Result) Result {
	return Result{}
}
func (BaseAction) ActOnLabelStmt(identLoc source.Location, name string, sub Result) Result {
	return Result{}
}
func (BaseAction) ActOnCaseStmt(caseLoc source.Location, lhs, rhs, sub Result) Result {
	return Result{}
}
func (BaseAction) ActOnDefaultStmt(defaultLoc source.Location, sub Result) Result { return Result{} }
func (BaseAction) ActOnAsmStmt(asmLoc source.Location, isVolatile bool, asmString string) Result {
	return Result{}
}
func (BaseAction) ActOnOmpDirective(ompLoc source.Location, kind string, body Result) Result {
	return Result{}
}

func (BaseAction) ActOnNumericConstant(tok lexer.Token, spelling string) Result { return Result{} }
func (BaseAction) ActOnCharConstant(tok lexer.Token, spelling string) Result    { return Result{} }
func (BaseAction) ActOnStringLiteral(toks []lexer.Token, spellings []string) Result {
	return Result{}
}
func (BaseAction) ActOnIdentifierExpr(loc source.Location, info *lexer.Info, s *Scope) Result {
	return Result{}
}
func (BaseAction) ActOnParenExpr(lparenLoc, rparenLoc source.Location, expr Result) Result {
	return expr
}
func (BaseAction) ActOnUnaryOp(opLoc source.Location, op lexer.Kind, input Result) Result {
	return Result{}
}
func (BaseAction) ActOnPostfixUnaryOp(opLoc source.Location, op lexer.Kind, input Result) Result {
	return Result{}
}
func (BaseAction) ActOnArraySubscriptExpr(base Result, lbracketLoc source.Location, index Result, rbracketLoc source.Location) Result {
	return Result{}
}
func (BaseAction) ActOnCallExpr(fn Result, lparenLoc source.Location, args []Result, rparenLoc source.Location) Result {
	return Result{}
}
func (BaseAction) ActOnMemberReferenceExpr(base Result, opLoc source.Location, op lexer.Kind, member string) Result {
	return Result{}
}
func (BaseAction) ActOnBinOp(opLoc source.Location, op lexer.Kind, lhs, rhs Result) Result {
	return Result{}
}
func (BaseAction) ActOnConditionalOp(questionLoc, colonLoc source.Location, cond, lhs, rhs Result) Result {
	return Result{}
}
func (BaseAction) ActOnCastExpr(lparenLoc source.Location, typeName string, rparenLoc source.Location, operand Result) Result {
	return Result{}
}
func (BaseAction) ActOnCompoundLiteral(lparenLoc source.Location, typeName string, rparenLoc source.Location, init Result) Result {
	return Result{}
}
func (BaseAction) ActOnInitList(lbraceLoc, rbraceLoc source.Location, inits []Result) Result {
	return Result{}
}
func (BaseAction) ActOnSizeOfAlignOf(opLoc source.Location, isSizeof, isOfType bool, typeName string, operand Result) Result {
	return Result{}
}
func (BaseAction) ActOnStmtExpr(lparenLoc source.Location, substmt Result, rparenLoc source.Location) Result {
	return Result{}
}
func (BaseAction) ActOnObjCStringLiteral(atLoc source.Location, str Result) Result { return Result{} }
func (BaseAction) ActOnObjCEncodeExpr(atLoc source.Location, typeName string) Result {
	return Result{}
}

func (BaseAction) ActOnForwardClassDeclaration(atLoc source.Location, names []*lexer.Info) Result {
	return Result{}
}
func (BaseAction) ActOnStartClassInterface(atLoc source.Location, name *lexer.Info, superName *lexer.Info) Result {
	return Result{}
}
func (BaseAction) ActOnStartCategory(atLoc source.Location, className, categoryName *lexer.Info) Result {
	return Result{}
}
func (BaseAction) ActOnStartProtocol(atLoc source.Location, name *lexer.Info) Result {
	return Result{}
}
func (BaseAction) ActOnStartImplementation(atLoc source.Location, name *lexer.Info) Result {
	return Result{}
}
func (BaseAction) ActOnAtEnd(atLoc source.Location) Result { return Result{} }
func (BaseAction) ActOnMethodDeclaration(loc source.Location, isInstance bool, selector string) Result {
	return Result{}
}
func (BaseAction) ActOnCompatibilityAlias(atLoc source.Location, alias, class *lexer.Info) Result {
	return Result{}
}
