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

func (p *Parser) objcKeyword() lexer.ObjCKeyword {
	if p.tok.Kind == lexer.Kind_Identifier && p.tok.Info != nil {
		return p.tok.Info.ObjCKw
	}
	return lexer.ObjCKw_NotKeyword
}

// ParseObjCAtDirective parses an '@' construct in declaration position.
func (p *Parser) ParseObjCAtDirective() Result {
	atLoc := p.tok.Loc
	if !p.opts.ObjC1 {
		p.diags.Report(atLoc, diag.ErrUnexpectedAtInProgram).Emit()
		p.ConsumeToken()
		p.SkipUntil(0, lexer.Kind_Semi)
		return Invalid()
	}
	p.ConsumeToken() // '@'

	switch p.objcKeyword() {
	case lexer.ObjCKw_Class:
		return p.parseObjCClassDirective(atLoc)
	case lexer.ObjCKw_Interface:
		return p.parseObjCInterface(atLoc)
	case lexer.ObjCKw_Protocol:
		return p.parseObjCProtocol(atLoc)
	case lexer.ObjCKw_Implementation:
		return p.parseObjCImplementation(atLoc)
	case lexer.ObjCKw_End:
		// A stray @end; the container parsers consume their own.
		p.ConsumeToken()
		return p.actions.ActOnAtEnd(atLoc)
	case lexer.ObjCKw_CompatibilityAlias:
		return p.parseObjCCompatibilityAlias(atLoc)
	default:
		p.diags.Report(p.tok.Loc, diag.ErrExpectedObjCDirective).Emit()
		p.SkipUntil(0, lexer.Kind_Semi)
		return Invalid()
	}
}

// parseObjCClassDirective parses `@class A, B, C;`.
func (p *Parser) parseObjCClassDirective(atLoc source.Location) Result {
	p.ConsumeToken() // class
	var names []*lexer.Info
	for {
		if p.tok.Kind != lexer.Kind_Identifier {
			p.diags.Report(p.tok.Loc, diag.ErrExpectedClassName).Emit()
			p.SkipUntil(0, lexer.Kind_Semi)
			return Invalid()
		}
		names = append(names, p.tok.Info)
		p.ConsumeToken()
		if p.tok.Kind != lexer.Kind_Comma {
			break
		}
		p.ConsumeToken()
	}
	p.ExpectAndConsume(lexer.Kind_Semi, diag.ErrExpectedSemiDecl, source.LocationInvalid)
	return p.actions.ActOnForwardClassDeclaration(atLoc, names)
}

// parseObjCInterface parses `@interface Name [: Super | ( Category )]
// [<protocols>] [{ ivars }] decls @end`.
func (p *Parser) parseObjCInterface(atLoc source.Location) Result {
	p.ConsumeToken() // interface
	if p.tok.Kind != lexer.Kind_Identifier {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedClassName).Emit()
		p.SkipUntil(0, lexer.Kind_Semi)
		return Invalid()
	}
	name := p.tok.Info
	p.ConsumeToken()

	var res Result
	if p.tok.Kind == lexer.Kind_LParen {
		lparenLoc := p.ConsumeToken()
		var category *lexer.Info
		if p.tok.Kind == lexer.Kind_Identifier {
			category = p.tok.Info
			p.ConsumeToken()
		} else {
			p.diags.Report(p.tok.Loc, diag.ErrExpectedIdentifier).Emit()
		}
		p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc)
		res = p.actions.ActOnStartCategory(atLoc, name, category)
	} else {
		var superName *lexer.Info
		if p.tok.Kind == lexer.Kind_Colon {
			p.ConsumeToken()
			if p.tok.Kind != lexer.Kind_Identifier {
				p.diags.Report(p.tok.Loc, diag.ErrExpectedClassName).Emit()
			} else {
				superName = p.tok.Info
				p.ConsumeToken()
			}
		}
		res = p.actions.ActOnStartClassInterface(atLoc, name, superName)
	}

	p.parseObjCProtocolRefs()
	if p.tok.Kind == lexer.Kind_LBrace {
		p.parseObjCIvarBlock()
	}
	p.parseObjCInterfaceDeclList(false)
	return res
}

// parseObjCProtocolRefs consumes an optional `< A, B >` reference list.
func (p *Parser) parseObjCProtocolRefs() {
	if p.tok.Kind != lexer.Kind_Less {
		return
	}
	p.ConsumeToken()
	for {
		if p.tok.Kind != lexer.Kind_Identifier {
			p.diags.Report(p.tok.Loc, diag.ErrExpectedProtocolName).Emit()
			p.SkipUntil(StopAtSemi, lexer.Kind_Greater)
			return
		}
		p.ConsumeToken()
		if p.tok.Kind != lexer.Kind_Comma {
			break
		}
		p.ConsumeToken()
	}
	p.ExpectAndConsume(lexer.Kind_Greater, diag.ErrExpectedToken, source.LocationInvalid)
}

// parseObjCIvarBlock parses `{ [@public|@protected|@private] members }`.
func (p *Parser) parseObjCIvarBlock() {
	lbraceLoc := p.ConsumeToken()
	p.EnterScope(DeclScope)
	for p.tok.Kind != lexer.Kind_RBrace && p.tok.Kind != lexer.Kind_EOF {
		if p.tok.Kind == lexer.Kind_At {
			p.ConsumeToken()
			switch p.objcKeyword() {
			case lexer.ObjCKw_Public, lexer.ObjCKw_Protected, lexer.ObjCKw_Private:
				p.ConsumeToken()
			default:
				p.diags.Report(p.tok.Loc, diag.ErrExpectedObjCDirective).Emit()
				p.SkipUntil(0, lexer.Kind_Semi)
			}
			continue
		}
		if p.tok.Kind == lexer.Kind_Semi {
			p.ConsumeToken()
			continue
		}
		ds := &DeclSpec{}
		p.ParseDeclarationSpecifiers(ds)
		for {
			d := &Declarator{DeclSpec: ds, Context: MemberContext}
			p.ParseDeclarator(d)
			if p.tok.Kind == lexer.Kind_Colon {
				p.ConsumeToken()
				d.BitWidth = p.ParseConstantExpression()
			}
			p.actions.ActOnDeclarator(p.curScope, d, Result{})
			if p.tok.Kind != lexer.Kind_Comma {
				break
			}
			p.ConsumeToken()
		}
		if p.ExpectAndConsume(lexer.Kind_Semi, diag.ErrExpectedSemiDecl, source.LocationInvalid) {
			p.SkipUntil(0, lexer.Kind_Semi, lexer.Kind_RBrace)
		}
	}
	p.ExitScope()
	p.ExpectAndConsume(lexer.Kind_RBrace, diag.ErrExpectedRBrace, lbraceLoc)
}

// parseObjCInterfaceDeclList parses method declarations and ordinary
// declarations up to @end. In an implementation, methods carry bodies.
func (p *Parser) parseObjCInterfaceDeclList(isImplementation bool) {
	for {
		switch p.tok.Kind {
		case lexer.Kind_EOF:
			p.diags.Report(p.tok.Loc, diag.ErrMissingAtEnd).Emit()
			return
		case lexer.Kind_At:
			if p.NextToken().Kind == lexer.Kind_Identifier &&
				p.NextToken().Info.ObjCKw == lexer.ObjCKw_End {
				atLoc := p.ConsumeToken()
				p.ConsumeToken() // end
				p.actions.ActOnAtEnd(atLoc)
				return
			}
			p.ParseObjCAtDirective()
		case lexer.Kind_Minus:
			p.parseObjCMethod(false, isImplementation)
		case lexer.Kind_Plus:
			p.parseObjCMethod(true, isImplementation)
		case lexer.Kind_Semi:
			p.ConsumeToken()
		default:
			p.ParseDeclarationOrFunctionDefinition()
		}
	}
}

// parseObjCMethod parses `- (type)sel:(type)a with:(type)b` followed by
// ';' in interfaces or a compound body in implementations.
func (p *Parser) parseObjCMethod(isClassMethod, hasBody bool) {
	loc := p.ConsumeToken() // '-' or '+'
	if p.tok.Kind == lexer.Kind_LParen {
		lparenLoc := p.ConsumeToken()
		if _, ok := p.ParseTypeName(); !ok {
			p.diags.Report(p.tok.Loc, diag.ErrExpectedMethodType).Emit()
		}
		p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc)
	}

	if p.tok.Kind != lexer.Kind_Identifier {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedSelector).Emit()
		p.SkipUntil(0, lexer.Kind_Semi)
		return
	}
	var sel strings.Builder
	sel.WriteString(p.tok.Info.Name())
	p.ConsumeToken()

	if p.tok.Kind == lexer.Kind_Colon {
		// Keyword selector: each piece is `name: (type)? param`.
		for {
			sel.WriteByte(':')
			p.ConsumeToken() // ':'
			if p.tok.Kind == lexer.Kind_LParen {
				lparenLoc := p.ConsumeToken()
				if _, ok := p.ParseTypeName(); !ok {
					p.diags.Report(p.tok.Loc, diag.ErrExpectedMethodType).Emit()
				}
				p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc)
			}
			if p.tok.Kind != lexer.Kind_Identifier {
				p.diags.Report(p.tok.Loc, diag.ErrExpectedIdentifier).Emit()
				break
			}
			param := p.tok.Info
			p.ConsumeToken()
			if p.tok.Kind == lexer.Kind_Identifier && p.NextToken().Kind == lexer.Kind_Colon {
				sel.WriteString(p.tok.Info.Name())
				p.ConsumeToken()
				continue
			}
			_ = param
			if p.tok.Kind == lexer.Kind_Colon {
				// `param:` means the previous identifier was a selector
				// piece, not a parameter name.
				sel.WriteString(param.Name())
				continue
			}
			break
		}
	}

	p.actions.ActOnMethodDeclaration(loc, !isClassMethod, sel.String())

	if hasBody && p.tok.Kind == lexer.Kind_LBrace {
		p.EnterScope(FnScope | DeclScope)
		p.ParseCompoundStatementBody(false)
		p.ExitScope()
		return
	}
	p.ExpectAndConsume(lexer.Kind_Semi, diag.ErrExpectedSemiDecl, source.LocationInvalid)
}

// parseObjCProtocol parses `@protocol Name ... @end` or the forward form
// `@protocol A, B;`.
func (p *Parser) parseObjCProtocol(atLoc source.Location) Result {
	p.ConsumeToken() // protocol
	if p.tok.Kind != lexer.Kind_Identifier {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedProtocolName).Emit()
		p.SkipUntil(0, lexer.Kind_Semi)
		return Invalid()
	}
	name := p.tok.Info
	p.ConsumeToken()

	if p.tok.Kind == lexer.Kind_Semi || p.tok.Kind == lexer.Kind_Comma {
		for p.tok.Kind == lexer.Kind_Comma {
			p.ConsumeToken()
			if p.tok.Kind != lexer.Kind_Identifier {
				p.diags.Report(p.tok.Loc, diag.ErrExpectedProtocolName).Emit()
				break
			}
			p.ConsumeToken()
		}
		p.ExpectAndConsume(lexer.Kind_Semi, diag.ErrExpectedSemiDecl, source.LocationInvalid)
		return p.actions.ActOnStartProtocol(atLoc, name)
	}

	res := p.actions.ActOnStartProtocol(atLoc, name)
	p.parseObjCProtocolRefs()
	p.parseObjCInterfaceDeclList(false)
	return res
}

// parseObjCImplementation parses `@implementation Name [( Category )]
// defs @end`.
func (p *Parser) parseObjCImplementation(atLoc source.Location) Result {
	p.ConsumeToken() // implementation
	if p.tok.Kind != lexer.Kind_Identifier {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedClassName).Emit()
		p.SkipUntil(0, lexer.Kind_Semi)
		return Invalid()
	}
	name := p.tok.Info
	p.ConsumeToken()
	if p.tok.Kind == lexer.Kind_LParen {
		lparenLoc := p.ConsumeToken()
		if p.tok.Kind == lexer.Kind_Identifier {
			p.ConsumeToken()
		} else {
			p.diags.Report(p.tok.Loc, diag.ErrExpectedIdentifier).Emit()
		}
		p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc)
	}
	if p.tok.Kind == lexer.Kind_LBrace {
		p.parseObjCIvarBlock()
	}
	res := p.actions.ActOnStartImplementation(atLoc, name)
	p.parseObjCInterfaceDeclList(true)
	return res
}

// parseObjCCompatibilityAlias parses `@compatibility_alias New Old;`.
func (p *Parser) parseObjCCompatibilityAlias(atLoc source.Location) Result {
	p.ConsumeToken() // compatibility_alias
	if p.tok.Kind != lexer.Kind_Identifier {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedIdentifier).Emit()
		p.SkipUntil(0, lexer.Kind_Semi)
		return Invalid()
	}
	alias := p.tok.Info
	p.ConsumeToken()
	if p.tok.Kind != lexer.Kind_Identifier {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedClassName).Emit()
		p.SkipUntil(0, lexer.Kind_Semi)
		return Invalid()
	}
	class := p.tok.Info
	p.ConsumeToken()
	p.ExpectAndConsume(lexer.Kind_Semi, diag.ErrExpectedSemiDecl, source.LocationInvalid)
	return p.actions.ActOnCompatibilityAlias(atLoc, alias, class)
}

// ParseObjCAtStatement handles '@' in statement position: @throw, @try,
// @synchronized, or an at-expression statement.
func (p *Parser) ParseObjCAtStatement() Result {
	if !p.opts.ObjC1 {
		p.diags.Report(p.tok.Loc, diag.ErrUnexpectedAtInProgram).Emit()
		p.ConsumeToken()
		p.SkipUntil(0, lexer.Kind_Semi)
		return Invalid()
	}
	if p.NextToken().Kind == lexer.Kind_Identifier {
		switch p.NextToken().Info.ObjCKw {
		case lexer.ObjCKw_Throw:
			p.ConsumeToken() // '@'
			throwLoc := p.ConsumeToken()
			value := Result{}
			if p.tok.Kind != lexer.Kind_Semi {
				value = p.ParseExpression()
			}
			p.expectSemiAfterStmt()
			// Modeled as a unary statement-expression.
			return p.actions.ActOnExprStmt(p.actions.ActOnUnaryOp(throwLoc, lexer.Kind_At, value))
		case lexer.ObjCKw_Try:
			return p.parseObjCTryStatement()
		case lexer.ObjCKw_Synchronized:
			p.ConsumeToken() // '@'
			p.ConsumeToken() // synchronized
			if p.tok.Kind == lexer.Kind_LParen {
				lparenLoc := p.ConsumeToken()
				p.ParseExpression()
				p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc)
			}
			if p.tok.Kind != lexer.Kind_LBrace {
				p.diags.Report(p.tok.Loc, diag.ErrExpectedLBrace).Emit()
				return Invalid()
			}
			return p.ParseCompoundStatement(false)
		}
	}
	return p.parseExprStatement()
}

// parseObjCTryStatement parses @try { } @catch (...) { } @finally { }.
func (p *Parser) parseObjCTryStatement() Result {
	p.ConsumeToken() // '@'
	p.ConsumeToken() // try
	if p.tok.Kind != lexer.Kind_LBrace {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedLBrace).Emit()
		return Invalid()
	}
	body := p.ParseCompoundStatement(false)
	for p.tok.Kind == lexer.Kind_At && p.NextToken().Kind == lexer.Kind_Identifier {
		kw := p.NextToken().Info.ObjCKw
		if kw != lexer.ObjCKw_Catch && kw != lexer.ObjCKw_Finally {
			break
		}
		p.ConsumeToken() // '@'
		p.ConsumeToken() // catch / finally
		if kw == lexer.ObjCKw_Catch && p.tok.Kind == lexer.Kind_LParen {
			lparenLoc := p.ConsumeToken()
			if p.tok.Kind == lexer.Kind_Ellipsis {
				p.ConsumeToken()
			} else if p.isTypeSpecifierStart() {
				ds := &DeclSpec{}
				p.ParseDeclarationSpecifiers(ds)
				d := &Declarator{DeclSpec: ds, Context: PrototypeContext}
				p.ParseDeclarator(d)
			}
			p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc)
		}
		if p.tok.Kind != lexer.Kind_LBrace {
			p.diags.Report(p.tok.Loc, diag.ErrExpectedLBrace).Emit()
			return Invalid()
		}
		p.ParseCompoundStatement(false)
	}
	return body
}

// ParseObjCExpression parses '@' expressions: @"string" and @encode(type).
func (p *Parser) ParseObjCExpression() Result {
	atLoc := p.ConsumeToken() // '@'
	switch {
	case p.tok.Kind == lexer.Kind_StringLiteral:
		str := p.ParseStringLiteralExpression()
		if str.Invalid {
			return Invalid()
		}
		return p.actions.ActOnObjCStringLiteral(atLoc, str)
	case p.objcKeyword() == lexer.ObjCKw_Encode:
		p.ConsumeToken()
		if p.tok.Kind != lexer.Kind_LParen {
			p.diags.Report(p.tok.Loc, diag.ErrExpectedLParen).Emit()
			return Invalid()
		}
		lparenLoc := p.ConsumeToken()
		typeName, ok := p.ParseTypeName()
		if p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc) || !ok {
			return Invalid()
		}
		return p.actions.ActOnObjCEncodeExpr(atLoc, typeName)
	default:
		p.diags.Report(p.tok.Loc, diag.ErrExpectedObjCDirective).Emit()
		return Invalid()
	}
}
