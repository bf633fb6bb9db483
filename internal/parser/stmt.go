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

	"github.com/EngFlow/ccfront/internal/diag"
	"github.com/EngFlow/ccfront/internal/lexer"
	"github.com/EngFlow/ccfront/internal/source"
)

// blockScopeFlags adds DeclScope to control-structure scopes in dialects
// where the structure opens a declaration scope of its own. C90 keeps the
// enclosing scope so name visibility matches the standard.
func (p *Parser) blockScopeFlags(flags ScopeFlags) ScopeFlags {
	if p.opts.C99 || p.opts.CPlusPlus {
		return flags | DeclScope
	}
	return flags
}

// ParseStatement dispatches on the lookahead token. Every path leaves the
// parser at the token after the statement.
func (p *Parser) ParseStatement() Result {
	switch p.tok.Kind {
	case lexer.Kind_Identifier:
		if p.NextToken().Kind == lexer.Kind_Colon {
			return p.ParseLabeledStatement()
		}
		if p.isDeclarationSpecifier() {
			return p.parseDeclStmt()
		}
		return p.parseExprStatement()
	case lexer.Kind_LBrace:
		return p.ParseCompoundStatement(false)
	case lexer.Kind_Semi:
		return p.actions.ActOnNullStmt(p.ConsumeToken())
	case lexer.Kind_KwCase:
		return p.ParseCaseStatement()
	case lexer.Kind_KwDefault:
		return p.ParseDefaultStatement()
	case lexer.Kind_KwIf:
		return p.ParseIfStatement()
	case lexer.Kind_KwSwitch:
		return p.ParseSwitchStatement()
	case lexer.Kind_KwWhile:
		return p.ParseWhileStatement()
	case lexer.Kind_KwDo:
		return p.ParseDoStatement()
	case lexer.Kind_KwFor:
		return p.ParseForStatement()
	case lexer.Kind_KwGoto:
		return p.ParseGotoStatement()
	case lexer.Kind_KwContinue:
		return p.ParseContinueStatement()
	case lexer.Kind_KwBreak:
		return p.ParseBreakStatement()
	case lexer.Kind_KwReturn:
		return p.ParseReturnStatement()
	case lexer.Kind_KwAsm:
		r := p.ParseAsmStatement()
		p.expectSemiAfterStmt()
		return r
	case lexer.Kind_KwMSAsm:
		return p.ParseMicrosoftAsmStatement()
	case lexer.Kind_AnnotPragmaOpenMP:
		return p.ParseOpenMPDirective(ompContextStatement)
	case lexer.Kind_At:
		return p.ParseObjCAtStatement()
	default:
		if p.isDeclarationSpecifier() {
			return p.parseDeclStmt()
		}
		return p.parseExprStatement()
	}
}

func (p *Parser) parseDeclStmt() Result {
	decl := p.ParseDeclarationOrFunctionDefinition()
	return p.actions.ActOnDeclStmt(decl)
}

func (p *Parser) parseExprStatement() Result {
	expr := p.ParseExpression()
	if expr.Invalid {
		// The expression already diagnosed; resync to the statement
		// boundary and swallow the ';' if it is what stopped us.
		p.SkipUntil(StopAtSemi|DontConsume, lexer.Kind_Semi)
		if p.tok.Kind == lexer.Kind_Semi {
			p.ConsumeToken()
		}
		return Invalid()
	}
	if p.ExpectAndConsume(lexer.Kind_Semi, diag.ErrExpectedSemiAfterExpr, source.LocationInvalid) {
		p.SkipUntil(0, lexer.Kind_Semi)
	}
	return p.actions.ActOnExprStmt(expr)
}

func (p *Parser) expectSemiAfterStmt() {
	if p.ExpectAndConsume(lexer.Kind_Semi, diag.ErrExpectedSemi, source.LocationInvalid) {
		p.SkipUntil(0, lexer.Kind_Semi)
	}
}

// ParseCompoundStatement parses `{ stmts }` in its own declaration scope.
func (p *Parser) ParseCompoundStatement(isStmtExpr bool) Result {
	p.EnterScope(DeclScope)
	r := p.ParseCompoundStatementBody(isStmtExpr)
	p.ExitScope()
	return r
}

// ParseCompoundStatementBody parses the braces and contents without
// touching scopes; function bodies share the function scope.
func (p *Parser) ParseCompoundStatementBody(isStmtExpr bool) Result {
	lbraceLoc := p.ConsumeToken() // '{'
	var stmts []Result
	for p.tok.Kind != lexer.Kind_RBrace && p.tok.Kind != lexer.Kind_EOF {
		s := p.ParseStatement()
		if s.Node != nil || s.Invalid {
			stmts = append(stmts, s)
		}
	}
	rbraceLoc := p.tok.Loc
	if p.ExpectAndConsume(lexer.Kind_RBrace, diag.ErrExpectedRBrace, lbraceLoc) {
		return Invalid()
	}
	return p.actions.ActOnCompoundStmt(lbraceLoc, rbraceLoc, stmts, isStmtExpr)
}

func (p *Parser) ParseLabeledStatement() Result {
	name := p.tok.Info.Name()
	identLoc := p.ConsumeToken()
	p.ConsumeToken() // ':'
	sub := p.ParseStatement()
	return p.actions.ActOnLabelStmt(identLoc, name, sub)
}

func (p *Parser) ParseCaseStatement() Result {
	caseLoc := p.ConsumeToken()
	if p.switchDepth == 0 {
		p.diags.Report(caseLoc, diag.ErrCaseNotInSwitch).Emit()
	}
	lhs := p.ParseConstantExpression()
	rhs := Result{}
	// GNU case ranges: case 1 ... 5:
	if p.tok.Kind == lexer.Kind_Ellipsis {
		p.ConsumeToken()
		rhs = p.ParseConstantExpression()
	}
	if p.tok.Kind != lexer.Kind_Colon {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedColonAfterCaseLabel).Emit()
		p.SkipUntil(StopAtSemi|DontConsume, lexer.Kind_Colon)
		if p.tok.Kind != lexer.Kind_Colon {
			return Invalid()
		}
	}
	p.ConsumeToken()
	sub := p.ParseStatement()
	return p.actions.ActOnCaseStmt(caseLoc, lhs, rhs, sub)
}

func (p *Parser) ParseDefaultStatement() Result {
	defaultLoc := p.ConsumeToken()
	if p.switchDepth == 0 {
		p.diags.Report(defaultLoc, diag.ErrDefaultNotInSwitch).Emit()
	}
	if p.tok.Kind != lexer.Kind_Colon {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedColonAfterCaseLabel).Emit()
		return Invalid()
	}
	p.ConsumeToken()
	sub := p.ParseStatement()
	return p.actions.ActOnDefaultStmt(defaultLoc, sub)
}

// parseParenCondition parses the `( expr )` of if/switch/while.
func (p *Parser) parseParenCondition() Result {
	if p.tok.Kind != lexer.Kind_LParen {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedLParen).Emit()
		return Invalid()
	}
	lparenLoc := p.ConsumeToken()
	cond := p.ParseExpression()
	if cond.Invalid {
		p.SkipUntil(StopAtSemi|DontConsume, lexer.Kind_RParen)
	}
	if p.tok.Kind == lexer.Kind_RParen {
		p.ConsumeToken()
	} else {
		p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc)
	}
	return cond
}

func (p *Parser) ParseIfStatement() Result {
	ifLoc := p.ConsumeToken()
	cond := p.parseParenCondition()

	if p.opts.C99 || p.opts.CPlusPlus {
		p.EnterScope(DeclScope)
	}
	thenStmt := p.ParseStatement()
	elseStmt := Result{}
	if p.tok.Kind == lexer.Kind_KwElse {
		p.ConsumeToken()
		elseStmt = p.ParseStatement()
	}
	if p.opts.C99 || p.opts.CPlusPlus {
		p.ExitScope()
	}
	return p.actions.ActOnIfStmt(ifLoc, cond, thenStmt, elseStmt)
}

func (p *Parser) ParseSwitchStatement() Result {
	switchLoc := p.ConsumeToken()
	cond := p.parseParenCondition()

	p.EnterScope(p.blockScopeFlags(BreakScope))
	p.switchDepth++
	body := p.ParseStatement()
	p.switchDepth--
	p.ExitScope()
	return p.actions.ActOnSwitchStmt(switchLoc, cond, body)
}

func (p *Parser) ParseWhileStatement() Result {
	whileLoc := p.ConsumeToken()
	cond := p.parseParenCondition()

	p.EnterScope(p.blockScopeFlags(BreakScope | ContinueScope))
	body := p.ParseStatement()
	p.ExitScope()
	return p.actions.ActOnWhileStmt(whileLoc, cond, body)
}

func (p *Parser) ParseDoStatement() Result {
	doLoc := p.ConsumeToken()

	p.EnterScope(p.blockScopeFlags(BreakScope | ContinueScope))
	body := p.ParseStatement()
	p.ExitScope()

	if p.tok.Kind != lexer.Kind_KwWhile {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedWhileInDoStmt).Emit()
		p.SkipUntil(0, lexer.Kind_Semi)
		return Invalid()
	}
	whileLoc := p.ConsumeToken()
	cond := p.parseParenCondition()
	p.expectSemiAfterStmt()
	return p.actions.ActOnDoStmt(doLoc, body, whileLoc, cond)
}

func (p *Parser) ParseForStatement() Result {
	forLoc := p.ConsumeToken()
	if p.tok.Kind != lexer.Kind_LParen {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedLParen).Emit()
		return Invalid()
	}
	lparenLoc := p.ConsumeToken()

	p.EnterScope(p.blockScopeFlags(BreakScope | ContinueScope))

	init := Result{}
	switch {
	case p.tok.Kind == lexer.Kind_Semi:
		p.ConsumeToken()
	case p.isDeclarationSpecifier():
		// The declaration's parse consumes its own ';'.
		init = p.parseDeclStmt()
	default:
		init = p.ParseExpression()
		if p.ExpectAndConsume(lexer.Kind_Semi, diag.ErrExpectedSemi, source.LocationInvalid) {
			p.SkipUntil(0, lexer.Kind_Semi)
		}
	}

	cond := Result{}
	if p.tok.Kind != lexer.Kind_Semi {
		cond = p.ParseExpression()
	}
	if p.ExpectAndConsume(lexer.Kind_Semi, diag.ErrExpectedSemi, source.LocationInvalid) {
		p.SkipUntil(DontConsume, lexer.Kind_Semi, lexer.Kind_RParen)
		if p.tok.Kind == lexer.Kind_Semi {
			p.ConsumeToken()
		}
	}

	inc := Result{}
	if p.tok.Kind != lexer.Kind_RParen {
		inc = p.ParseExpression()
	}
	p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc)

	body := p.ParseStatement()
	p.ExitScope()
	return p.actions.ActOnForStmt(forLoc, init, cond, inc, body)
}

func (p *Parser) ParseGotoStatement() Result {
	gotoLoc := p.ConsumeToken()
	if p.tok.Kind != lexer.Kind_Identifier {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedIdentAfterGoto).Emit()
		p.SkipUntil(0, lexer.Kind_Semi)
		return Invalid()
	}
	name := p.tok.Info.Name()
	p.ConsumeToken()
	p.expectSemiAfterStmt()
	return p.actions.ActOnGotoStmt(gotoLoc, name)
}

func (p *Parser) ParseContinueStatement() Result {
	continueLoc := p.ConsumeToken()
	p.expectSemiAfterStmt()
	if p.curScope.ContinueParent() == nil {
		p.diags.Report(continueLoc, diag.ErrContinueNotInContinueScope).Emit()
		return Invalid()
	}
	return p.actions.ActOnContinueStmt(continueLoc)
}

func (p *Parser) ParseBreakStatement() Result {
	breakLoc := p.ConsumeToken()
	p.expectSemiAfterStmt()
	if p.curScope.BreakParent() == nil {
		p.diags.Report(breakLoc, diag.ErrBreakNotInBreakScope).Emit()
		return Invalid()
	}
	return p.actions.ActOnBreakStmt(breakLoc)
}

func (p *Parser) ParseReturnStatement() Result {
	returnLoc := p.ConsumeToken()
	value := Result{}
	if p.tok.Kind != lexer.Kind_Semi {
		value = p.ParseExpression()
		if value.Invalid {
			p.SkipUntil(0, lexer.Kind_Semi)
			return Invalid()
		}
	}
	p.expectSemiAfterStmt()
	return p.actions.ActOnReturnStmt(returnLoc, value)
}

// ParseAsmStatement parses GCC extended asm:
// asm [volatile] ( string : outputs : inputs : clobbers ).
// The simple file-scope form shares the first half.
func (p *Parser) ParseAsmStatement() Result {
	asmLoc := p.ConsumeToken()
	isVolatile := false
	switch p.tok.Kind {
	case lexer.Kind_KwVolatile:
		isVolatile = true
		p.ConsumeToken()
	case lexer.Kind_Identifier:
		p.diags.Report(p.tok.Loc, diag.ErrUnknownAsmQualifier).
			AddIdent(p.tok.Info.Name()).Emit()
		p.ConsumeToken()
	}
	if p.tok.Kind != lexer.Kind_LParen {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedLParen).Emit()
		p.SkipUntil(0, lexer.Kind_Semi)
		return Invalid()
	}
	lparenLoc := p.ConsumeToken()
	if p.tok.Kind != lexer.Kind_StringLiteral {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedStringLiteralAsm).Emit()
		p.SkipUntil(StopAtSemi, lexer.Kind_RParen)
		return Invalid()
	}
	asmString := p.spelling(&p.tok)
	p.ConsumeToken()

	// Up to three colon-separated operand sections.
	for section := 0; section < 3 && p.tok.Kind == lexer.Kind_Colon; section++ {
		p.ConsumeToken()
		if section < 2 {
			p.parseAsmOperands()
		} else {
			p.parseAsmClobbers()
		}
	}
	if p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc) {
		p.SkipUntil(StopAtSemi, lexer.Kind_RParen)
		return Invalid()
	}
	return p.actions.ActOnAsmStmt(asmLoc, isVolatile, asmString)
}

// parseAsmOperands parses `[name] "constraint" ( expr )` lists.
func (p *Parser) parseAsmOperands() {
	if p.tok.Kind == lexer.Kind_Colon || p.tok.Kind == lexer.Kind_RParen {
		return // empty section
	}
	for {
		if p.tok.Kind == lexer.Kind_LSquare {
			lsquareLoc := p.ConsumeToken()
			if p.tok.Kind != lexer.Kind_Identifier {
				p.diags.Report(p.tok.Loc, diag.ErrExpectedIdentifier).Emit()
			} else {
				p.ConsumeToken()
			}
			p.ExpectAndConsume(lexer.Kind_RSquare, diag.ErrExpectedRSquare, lsquareLoc)
		}
		if p.tok.Kind != lexer.Kind_StringLiteral {
			p.diags.Report(p.tok.Loc, diag.ErrExpectedStringLiteralAsm).Emit()
			p.SkipUntil(StopAtSemi|DontConsume, lexer.Kind_RParen, lexer.Kind_Colon)
			return
		}
		p.ConsumeToken()
		if p.tok.Kind == lexer.Kind_LParen {
			lparenLoc := p.ConsumeToken()
			p.ParseExpression()
			p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc)
		}
		if p.tok.Kind != lexer.Kind_Comma {
			return
		}
		p.ConsumeToken()
	}
}

func (p *Parser) parseAsmClobbers() {
	for p.tok.Kind == lexer.Kind_StringLiteral {
		p.ConsumeToken()
		if p.tok.Kind != lexer.Kind_Comma {
			return
		}
		p.ConsumeToken()
	}
}

// ParseMicrosoftAsmStatement parses `__asm { ... }` or the single-line
// form, which runs to the next token that starts a line. The body is not
// interpreted; identifiers in it are resolved against the current scope
// through the regular identifier callback so a consumer can bind them.
func (p *Parser) ParseMicrosoftAsmStatement() Result {
	asmLoc := p.ConsumeToken()
	var body strings.Builder
	appendTok := func() {
		if body.Len() > 0 {
			body.WriteByte(' ')
		}
		body.WriteString(p.spelling(&p.tok))
	}
	if p.tok.Kind == lexer.Kind_LBrace {
		p.ConsumeToken()
		depth := 1
		for depth > 0 && p.tok.Kind != lexer.Kind_EOF {
			switch p.tok.Kind {
			case lexer.Kind_LBrace:
				depth++
			case lexer.Kind_RBrace:
				depth--
				if depth == 0 {
					p.ConsumeToken()
					return p.actions.ActOnAsmStmt(asmLoc, false, body.String())
				}
			case lexer.Kind_Identifier:
				p.actions.ActOnIdentifierExpr(p.tok.Loc, p.tok.Info, p.curScope)
			}
			appendTok()
			p.ConsumeToken()
		}
		p.diags.Report(p.tok.Loc, diag.ErrExpectedRBrace).Emit()
		return Invalid()
	}
	// Single-line form: tokens until end of line or ';'.
	for p.tok.Kind != lexer.Kind_EOF && p.tok.Kind != lexer.Kind_Semi &&
		!p.tok.StartOfLine() {
		if p.tok.Kind == lexer.Kind_Identifier {
			p.actions.ActOnIdentifierExpr(p.tok.Loc, p.tok.Info, p.curScope)
		}
		appendTok()
		p.ConsumeToken()
	}
	if p.tok.Kind == lexer.Kind_Semi {
		p.ConsumeToken()
	}
	return p.actions.ActOnAsmStmt(asmLoc, false, body.String())
}
