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
	"strings"

	"github.com/EngFlow/ccfront/internal/ast"
	"github.com/EngFlow/ccfront/internal/diag"
	"github.com/EngFlow/ccfront/internal/lang"
	"github.com/EngFlow/ccfront/internal/lexer"
	"github.com/EngFlow/ccfront/internal/literal"
	"github.com/EngFlow/ccfront/internal/pp"
	"github.com/EngFlow/ccfront/internal/source"
)

// typeClass is the coarse classification the semantic stubs reason in.
// Real type checking belongs to a later stage; the return-compatibility
// family only needs to tell pointers, integers, floats and void apart.
type typeClass uint8

const (
	tcUnknown typeClass = iota
	tcVoid
	tcInt
	tcFloat
	tcPointer
)

// BuildAction builds an ast.Node tree from the parse events. It extends
// MinimalAction, so typedef names resolve the same way during the parse.
type BuildAction struct {
	MinimalAction

	sm    *source.SourceManager
	diags *diag.Engine
	opts  lang.Options

	// TranslationUnit collects the surviving top-level results.
	TranslationUnit []*ast.Node

	// Current function return info for the return-statement checks.
	fnRetClass    typeClass
	fnRetSpelling string
}

func NewBuildAction(preproc *pp.Preprocessor) *BuildAction {
	return &BuildAction{
		sm:    preproc.SourceManager(),
		diags: preproc.Diags(),
		opts:  preproc.Options(),
	}
}

func (a *BuildAction) ActOnTranslationUnit(decls []Result) {
	for _, d := range decls {
		if d.Node != nil {
			a.TranslationUnit = append(a.TranslationUnit, d.Node)
		}
	}
}

// Declarations.

func (a *BuildAction) ActOnDeclarator(s *Scope, d *Declarator, group Result) Result {
	a.MinimalAction.ActOnDeclarator(s, d, Result{})

	kind := ast.Kind_VarDecl
	switch {
	case d.DeclSpec.StorageClass == SCS_Typedef:
		kind = ast.Kind_TypedefDecl
	case d.IsFunctionDeclarator():
		kind = ast.Kind_FunctionDecl
	}
	n := &ast.Node{Kind: kind, Loc: d.IdentLoc, TypeName: d.TypeSpelling()}
	if d.Ident != nil {
		n.Name = d.Ident.Name()
	}
	n.Init = d.Init.Node

	// Declarator groups chain through List on the first declaration.
	if group.Node != nil {
		group.Node.List = append(group.Node.List, n)
		return group
	}
	return Valid(n)
}

func (a *BuildAction) ActOnStartOfFunctionDef(s *Scope, d *Declarator) Result {
	a.MinimalAction.ActOnStartOfFunctionDef(s, d)
	a.fnRetClass, a.fnRetSpelling = returnTypeOf(d)

	n := &ast.Node{Kind: ast.Kind_FunctionDecl, Loc: d.IdentLoc, TypeName: d.TypeSpelling()}
	if d.Ident != nil {
		n.Name = d.Ident.Name()
	}
	if len(d.Chunks) > 0 && d.Chunks[0].Kind == chunkFunction {
		for _, param := range d.Chunks[0].Params {
			pn := &ast.Node{Kind: ast.Kind_VarDecl, Loc: param.IdentLoc,
				TypeName: param.TypeSpelling}
			if param.Ident != nil {
				pn.Name = param.Ident.Name()
			}
			n.List = append(n.List, pn)
		}
	}
	return Valid(n)
}

func (a *BuildAction) ActOnFinishFunctionBody(fn Result, body Result) Result {
	a.fnRetClass, a.fnRetSpelling = tcUnknown, ""
	if fn.Node == nil {
		return fn
	}
	fn.Node.Body = body.Node
	fn.Invalid = fn.Invalid || body.Invalid
	return fn
}

// returnTypeOf strips the function chunk off a definition's declarator
// and classifies what is left.
func returnTypeOf(d *Declarator) (typeClass, string) {
	outer := d.Chunks
	if len(outer) > 0 && outer[0].Kind == chunkFunction {
		outer = outer[1:]
	}
	spelling := d.DeclSpec.Spelling()
	if len(outer) > 0 {
		k := outer[len(outer)-1].Kind
		if k == chunkPointer || k == chunkArray {
			return tcPointer, spelling + " *"
		}
	}
	switch d.DeclSpec.TypeSpec {
	case TST_Void:
		return tcVoid, "void"
	case TST_Float, TST_Double:
		return tcFloat, spelling
	case TST_Char, TST_Int, TST_Bool, TST_WChar, TST_Unspecified, TST_Enum:
		return tcInt, spelling
	}
	return tcUnknown, spelling
}

// Statements.

func (a *BuildAction) ActOnNullStmt(semiLoc source.Location) Result {
	return Valid(&ast.Node{Kind: ast.Kind_NullStmt, Loc: semiLoc})
}

func (a *BuildAction) ActOnCompoundStmt(lbraceLoc, rbraceLoc source.Location, stmts []Result, isStmtExpr bool) Result {
	n := &ast.Node{Kind: ast.Kind_CompoundStmt, Loc: lbraceLoc}
	for _, s := range stmts {
		if s.Node != nil {
			n.List = append(n.List, s.Node)
		}
	}
	return Valid(n)
}

func (a *BuildAction) ActOnDeclStmt(decl Result) Result {
	if decl.Node == nil {
		return decl
	}
	return Valid(&ast.Node{Kind: ast.Kind_DeclStmt, Loc: decl.Node.Loc, Lhs: decl.Node})
}

func (a *BuildAction) ActOnExprStmt(expr Result) Result {
	if expr.Node == nil {
		return expr
	}
	return Valid(&ast.Node{Kind: ast.Kind_ExprStmt, Loc: expr.Node.Loc, Lhs: expr.Node})
}

func (a *BuildAction) ActOnIfStmt(ifLoc source.Location, cond, thenStmt, elseStmt Result) Result {
	return Valid(&ast.Node{Kind: ast.Kind_If, Loc: ifLoc,
		Cond: cond.Node, Then: thenStmt.Node, Else: elseStmt.Node})
}

func (a *BuildAction) ActOnSwitchStmt(switchLoc source.Location, cond, body Result) Result {
	return Valid(&ast.Node{Kind: ast.Kind_Switch, Loc: switchLoc,
		Cond: cond.Node, Body: body.Node})
}

func (a *BuildAction) ActOnWhileStmt(whileLoc source.Location, cond, body Result) Result {
	return Valid(&ast.Node{Kind: ast.Kind_While, Loc: whileLoc,
		Cond: cond.Node, Body: body.Node})
}

func (a *BuildAction) ActOnDoStmt(doLoc source.Location, body Result, whileLoc source.Location, cond Result) Result {
	return Valid(&ast.Node{Kind: ast.Kind_Do, Loc: doLoc,
		Cond: cond.Node, Body: body.Node})
}

func (a *BuildAction) ActOnForStmt(forLoc source.Location, init, cond, inc, body Result) Result {
	return Valid(&ast.Node{Kind: ast.Kind_For, Loc: forLoc,
		Init: init.Node, Cond: cond.Node, Inc: inc.Node, Body: body.Node})
}

func (a *BuildAction) ActOnGotoStmt(gotoLoc source.Location, name string) Result {
	return Valid(&ast.Node{Kind: ast.Kind_Goto, Loc: gotoLoc, Name: name})
}

func (a *BuildAction) ActOnContinueStmt(continueLoc source.Location) Result {
	return Valid(&ast.Node{Kind: ast.Kind_Continue, Loc: continueLoc})
}

func (a *BuildAction) ActOnBreakStmt(breakLoc source.Location) Result {
	return Valid(&ast.Node{Kind: ast.Kind_Break, Loc: breakLoc})
}

func (a *BuildAction) ActOnReturnStmt(returnLoc source.Location, value Result) Result {
	a.checkReturnValue(returnLoc, value.Node)
	return Valid(&ast.Node{Kind: ast.Kind_Return, Loc: returnLoc, Lhs: value.Node})
}

func (a *BuildAction) ActOnLabelStmt(identLoc source.Location, name string, sub Result) Result {
	return Valid(&ast.Node{Kind: ast.Kind_Label, Loc: identLoc, Name: name, Body: sub.Node})
}

func (a *BuildAction) ActOnCaseStmt(caseLoc source.Location, lhs, rhs, sub Result) Result {
	return Valid(&ast.Node{Kind: ast.Kind_Case, Loc: caseLoc,
		Lhs: lhs.Node, Rhs: rhs.Node, Body: sub.Node})
}

func (a *BuildAction) ActOnDefaultStmt(defaultLoc source.Location, sub Result) Result {
	return Valid(&ast.Node{Kind: ast.Kind_Default, Loc: defaultLoc, Body: sub.Node})
}

func (a *BuildAction) ActOnAsmStmt(asmLoc source.Location, isVolatile bool, asmString string) Result {
	return Valid(&ast.Node{Kind: ast.Kind_Asm, Loc: asmLoc,
		AsmString: asmString, IsVolatile: isVolatile})
}

func (a *BuildAction) ActOnOmpDirective(ompLoc source.Location, kind string, body Result) Result {
	return Valid(&ast.Node{Kind: ast.Kind_OmpDirective, Loc: ompLoc,
		OmpKind: kind, Body: body.Node})
}

// Expressions.

func (a *BuildAction) ActOnNumericConstant(tok lexer.Token, spelling string) Result {
	np := literal.ParseNumeric(spelling, tok.Loc, a.diags, a.opts)
	if np.HadError {
		return Invalid()
	}
	if np.IsFloating {
		v, _ := np.GetFloatValue()
		return Valid(&ast.Node{Kind: ast.Kind_FloatLiteral, Loc: tok.Loc, FloatValue: v})
	}
	v, overflow := np.GetIntegerValue(64)
	if overflow {
		a.diags.Report(tok.Loc, diag.WarnIntegerTooLarge).Emit()
	}
	return Valid(&ast.Node{Kind: ast.Kind_IntLiteral, Loc: tok.Loc,
		IntValue: v, IsUnsigned: np.IsUnsigned})
}

func (a *BuildAction) ActOnCharConstant(tok lexer.Token, spelling string) Result {
	cp := literal.ParseChar(spelling, tok.Loc, a.diags, a.opts)
	if cp.HadError {
		return Invalid()
	}
	return Valid(&ast.Node{Kind: ast.Kind_CharLiteral, Loc: tok.Loc,
		IntValue: uint64(cp.Value), IsWide: cp.IsWide})
}

func (a *BuildAction) ActOnStringLiteral(toks []lexer.Token, spellings []string) Result {
	sp := literal.ParseString(toks, a.sm, a.diags, a.opts)
	if sp.HadError {
		return Invalid()
	}
	return Valid(&ast.Node{Kind: ast.Kind_StringLiteral, Loc: toks[0].Loc,
		StrValue: sp.Value, IsWide: sp.IsWide})
}

func (a *BuildAction) ActOnIdentifierExpr(loc source.Location, info *lexer.Info, s *Scope) Result {
	return Valid(&ast.Node{Kind: ast.Kind_DeclRef, Loc: loc, Name: info.Name()})
}

func (a *BuildAction) ActOnParenExpr(lparenLoc, rparenLoc source.Location, expr Result) Result {
	return Valid(&ast.Node{Kind: ast.Kind_Paren, Loc: lparenLoc, Lhs: expr.Node})
}

func (a *BuildAction) ActOnUnaryOp(opLoc source.Location, op lexer.Kind, input Result) Result {
	return Valid(&ast.Node{Kind: ast.Kind_Unary, Loc: opLoc, Op: op, Lhs: input.Node})
}

func (a *BuildAction) ActOnPostfixUnaryOp(opLoc source.Location, op lexer.Kind, input Result) Result {
	return Valid(&ast.Node{Kind: ast.Kind_PostfixUnary, Loc: opLoc, Op: op, Lhs: input.Node})
}

func (a *BuildAction) ActOnArraySubscriptExpr(base Result, lbracketLoc source.Location, index Result, rbracketLoc source.Location) Result {
	return Valid(&ast.Node{Kind: ast.Kind_ArraySubscript, Loc: lbracketLoc,
		Lhs: base.Node, Rhs: index.Node})
}

func (a *BuildAction) ActOnCallExpr(fn Result, lparenLoc source.Location, args []Result, rparenLoc source.Location) Result {
	n := &ast.Node{Kind: ast.Kind_Call, Loc: lparenLoc, Lhs: fn.Node}
	for _, arg := range args {
		n.List = append(n.List, arg.Node)
	}
	return Valid(n)
}

func (a *BuildAction) ActOnMemberReferenceExpr(base Result, opLoc source.Location, op lexer.Kind, member string) Result {
	return Valid(&ast.Node{Kind: ast.Kind_Member, Loc: opLoc, Lhs: base.Node,
		Name: member, IsArrow: op == lexer.Kind_Arrow})
}

func (a *BuildAction) ActOnBinOp(opLoc source.Location, op lexer.Kind, lhs, rhs Result) Result {
	kind := ast.Kind_Binary
	if binOpPrec(op) == precAssignment {
		kind = ast.Kind_Assign
	}
	return Valid(&ast.Node{Kind: kind, Loc: opLoc, Op: op, Lhs: lhs.Node, Rhs: rhs.Node})
}

func (a *BuildAction) ActOnConditionalOp(questionLoc, colonLoc source.Location, cond, lhs, rhs Result) Result {
	return Valid(&ast.Node{Kind: ast.Kind_Conditional, Loc: questionLoc,
		Cond: cond.Node, Then: lhs.Node, Else: rhs.Node})
}

func (a *BuildAction) ActOnCastExpr(lparenLoc source.Location, typeName string, rparenLoc source.Location, operand Result) Result {
	return Valid(&ast.Node{Kind: ast.Kind_Cast, Loc: lparenLoc,
		TypeName: typeName, Lhs: operand.Node})
}

func (a *BuildAction) ActOnCompoundLiteral(lparenLoc source.Location, typeName string, rparenLoc source.Location, init Result) Result {
	return Valid(&ast.Node{Kind: ast.Kind_CompoundLiteral, Loc: lparenLoc,
		TypeName: typeName, Init: init.Node})
}

func (a *BuildAction) ActOnInitList(lbraceLoc, rbraceLoc source.Location, inits []Result) Result {
	n := &ast.Node{Kind: ast.Kind_InitList, Loc: lbraceLoc}
	for _, init := range inits {
		n.List = append(n.List, init.Node)
	}
	return Valid(n)
}

func (a *BuildAction) ActOnSizeOfAlignOf(opLoc source.Location, isSizeof, isOfType bool, typeName string, operand Result) Result {
	return Valid(&ast.Node{Kind: ast.Kind_SizeOfAlignOf, Loc: opLoc,
		IsAlignOf: !isSizeof, IsOfType: isOfType, TypeName: typeName,
		Lhs: operand.Node})
}

func (a *BuildAction) ActOnStmtExpr(lparenLoc source.Location, substmt Result, rparenLoc source.Location) Result {
	return Valid(&ast.Node{Kind: ast.Kind_StmtExpr, Loc: lparenLoc, Body: substmt.Node})
}

func (a *BuildAction) ActOnObjCStringLiteral(atLoc source.Location, str Result) Result {
	return Valid(&ast.Node{Kind: ast.Kind_ObjCString, Loc: atLoc, Lhs: str.Node})
}

func (a *BuildAction) ActOnObjCEncodeExpr(atLoc source.Location, typeName string) Result {
	return Valid(&ast.Node{Kind: ast.Kind_ObjCEncode, Loc: atLoc, TypeName: typeName})
}

// checkReturnValue applies the return-compatibility family. It works on
// the coarse typeClass lattice: anything it cannot classify passes.
func (a *BuildAction) checkReturnValue(returnLoc source.Location, value *ast.Node) {
	switch a.fnRetClass {
	case tcUnknown:
		return
	case tcVoid:
		if value != nil {
			a.diags.Report(returnLoc, diag.ErrReturnTypeIncompatible).
				AddString(exprTypeSpelling(value)).AddString("void").Emit()
		}
		return
	}
	if value == nil {
		return // plain `return;` from a value-returning function is C90-legal
	}
	vc := classifyExpr(value)
	switch {
	case vc == tcUnknown || vc == a.fnRetClass && a.fnRetClass != tcPointer:
		return
	case a.fnRetClass == tcPointer && vc == tcInt:
		if isNullConstant(value) {
			return
		}
		a.diags.Report(returnLoc, diag.WarnReturnPointerFromInt).
			AddString(a.fnRetSpelling).Emit()
	case a.fnRetClass == tcInt && vc == tcPointer:
		a.diags.Report(returnLoc, diag.WarnReturnIntFromPointer).
			AddString(a.fnRetSpelling).Emit()
	case a.fnRetClass == tcPointer && vc == tcPointer:
		got := exprTypeSpelling(value)
		switch {
		case got == a.fnRetSpelling || got == "":
			return
		case strings.TrimPrefix(got, "const ") == a.fnRetSpelling:
			a.diags.Report(returnLoc, diag.WarnReturnDiscardsQualifiers).
				AddString(got).AddString(a.fnRetSpelling).Emit()
		default:
			a.diags.Report(returnLoc, diag.WarnReturnIncompatiblePointer).
				AddString(got).AddString(a.fnRetSpelling).Emit()
		}
	case a.fnRetClass == tcFloat && vc == tcPointer:
		a.diags.Report(returnLoc, diag.ErrReturnTypeIncompatible).
			AddString(exprTypeSpelling(value)).AddString(a.fnRetSpelling).Emit()
	}
}

// isNullConstant reports whether n is the integer constant 0, a valid
// null pointer constant in any pointer context.
func isNullConstant(n *ast.Node) bool {
	for n != nil && n.Kind == ast.Kind_Paren {
		n = n.Lhs
	}
	return n != nil && n.Kind == ast.Kind_IntLiteral && n.IntValue == 0
}

// classifyExpr assigns a coarse class to an expression node, peeling
// parens. Unknown means "do not second-guess".
func classifyExpr(n *ast.Node) typeClass {
	for n != nil && n.Kind == ast.Kind_Paren {
		n = n.Lhs
	}
	if n == nil {
		return tcUnknown
	}
	switch n.Kind {
	case ast.Kind_IntLiteral, ast.Kind_CharLiteral, ast.Kind_SizeOfAlignOf:
		return tcInt
	case ast.Kind_FloatLiteral:
		return tcFloat
	case ast.Kind_StringLiteral, ast.Kind_ObjCString, ast.Kind_ObjCEncode:
		return tcPointer
	case ast.Kind_Unary:
		if n.Op == lexer.Kind_Amp {
			return tcPointer
		}
		if n.Op == lexer.Kind_Exclaim {
			return tcInt
		}
		return classifyExpr(n.Lhs)
	case ast.Kind_Cast, ast.Kind_CompoundLiteral:
		if strings.Contains(n.TypeName, "*") {
			return tcPointer
		}
		return classifyFromSpelling(n.TypeName)
	case ast.Kind_Binary:
		switch n.Op {
		case lexer.Kind_EqualEqual, lexer.Kind_ExclaimEqual, lexer.Kind_Less,
			lexer.Kind_Greater, lexer.Kind_LessEqual, lexer.Kind_GreaterEqual,
			lexer.Kind_AmpAmp, lexer.Kind_PipePipe:
			return tcInt
		}
	}
	return tcUnknown
}

func classifyFromSpelling(spelling string) typeClass {
	switch {
	case spelling == "void":
		return tcVoid
	case strings.Contains(spelling, "float"), strings.Contains(spelling, "double"):
		return tcFloat
	case strings.Contains(spelling, "int"), strings.Contains(spelling, "char"),
		strings.Contains(spelling, "short"), strings.Contains(spelling, "long"):
		return tcInt
	}
	return tcUnknown
}

// exprTypeSpelling renders the best available type description of an
// expression for a diagnostic.
func exprTypeSpelling(n *ast.Node) string {
	for n != nil && n.Kind == ast.Kind_Paren {
		n = n.Lhs
	}
	if n == nil {
		return ""
	}
	switch n.Kind {
	case ast.Kind_IntLiteral:
		return "int"
	case ast.Kind_FloatLiteral:
		return "double"
	case ast.Kind_CharLiteral:
		return "char"
	case ast.Kind_StringLiteral:
		if n.IsWide {
			return "wchar_t *"
		}
		return "char *"
	case ast.Kind_Cast, ast.Kind_CompoundLiteral:
		return n.TypeName
	}
	return ""
}
