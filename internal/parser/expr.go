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
	"github.com/EngFlow/ccfront/internal/diag"
	"github.com/EngFlow/ccfront/internal/lexer"
	"github.com/EngFlow/ccfront/internal/source"
)

// Binary operator precedences. Comma is lowest so ParseExpression can use
// a single climb over the whole table; assignment and conditional are
// right-associative and recurse at their own level.
const (
	precComma          = 1
	precAssignment     = 2
	precConditional    = 3
	precLogicalOr      = 5
	precLogicalAnd     = 6
	precInclusiveOr    = 7
	precExclusiveOr    = 8
	precAnd            = 9
	precEquality       = 10
	precRelational     = 11
	precShift          = 12
	precAdditive       = 13
	precMultiplicative = 14
)

func binOpPrec(k lexer.Kind) int {
	switch k {
	case lexer.Kind_Comma:
		return precComma
	case lexer.Kind_Equal, lexer.Kind_PlusEqual, lexer.Kind_MinusEqual,
		lexer.Kind_StarEqual, lexer.Kind_SlashEqual, lexer.Kind_PercentEqual,
		lexer.Kind_LessLessEqual, lexer.Kind_GreaterGreaterEqual,
		lexer.Kind_AmpEqual, lexer.Kind_CaretEqual, lexer.Kind_PipeEqual:
		return precAssignment
	case lexer.Kind_Question:
		return precConditional
	case lexer.Kind_PipePipe:
		return precLogicalOr
	case lexer.Kind_AmpAmp:
		return precLogicalAnd
	case lexer.Kind_Pipe:
		return precInclusiveOr
	case lexer.Kind_Caret:
		return precExclusiveOr
	case lexer.Kind_Amp:
		return precAnd
	case lexer.Kind_EqualEqual, lexer.Kind_ExclaimEqual:
		return precEquality
	case lexer.Kind_Less, lexer.Kind_Greater, lexer.Kind_LessEqual,
		lexer.Kind_GreaterEqual:
		return precRelational
	case lexer.Kind_LessLess, lexer.Kind_GreaterGreater:
		return precShift
	case lexer.Kind_Plus, lexer.Kind_Minus:
		return precAdditive
	case lexer.Kind_Star, lexer.Kind_Slash, lexer.Kind_Percent:
		return precMultiplicative
	}
	return 0
}

// ParseExpression parses a full expression, comma operator included.
func (p *Parser) ParseExpression() Result {
	lhs := p.ParseCastExpression()
	return p.ParseRHSOfBinaryExpression(lhs, precComma)
}

// ParseAssignmentExpression parses without crossing a top-level comma.
func (p *Parser) ParseAssignmentExpression() Result {
	lhs := p.ParseCastExpression()
	return p.ParseRHSOfBinaryExpression(lhs, precAssignment)
}

// ParseConstantExpression parses a conditional-expression, which excludes
// assignment and comma.
func (p *Parser) ParseConstantExpression() Result {
	lhs := p.ParseCastExpression()
	return p.ParseRHSOfBinaryExpression(lhs, precConditional)
}

// ParseRHSOfBinaryExpression is classical precedence climbing. Operators
// below minPrec are left for the caller.
func (p *Parser) ParseRHSOfBinaryExpression(lhs Result, minPrec int) Result {
	for {
		prec := binOpPrec(p.tok.Kind)
		if prec < minPrec || prec == 0 {
			return lhs
		}
		op := p.tok.Kind
		opLoc := p.ConsumeToken()

		if op == lexer.Kind_Question {
			lhs = p.parseConditionalTail(opLoc, lhs)
			continue
		}

		rhs := p.ParseCastExpression()
		// Assignment is right-associative: recurse at its own level so
		// a = b = c groups rightward. Everything else climbs past prec.
		nextPrec := prec + 1
		if prec == precAssignment {
			nextPrec = prec
		}
		rhs = p.ParseRHSOfBinaryExpression(rhs, nextPrec)

		if lhs.Invalid || rhs.Invalid {
			lhs = Invalid()
			continue
		}
		lhs = p.actions.ActOnBinOp(opLoc, op, lhs, rhs)
	}
}

// parseConditionalTail finishes `? middle : rhs` after the '?'. The middle
// operand is a full expression; GNU allows omitting it.
func (p *Parser) parseConditionalTail(questionLoc source.Location, cond Result) Result {
	middle := Result{}
	if p.tok.Kind == lexer.Kind_Colon {
		p.diags.Report(p.tok.Loc, diag.ExtGNUEmptyConditional).Emit()
	} else {
		middle = p.ParseExpression()
	}
	if p.tok.Kind != lexer.Kind_Colon {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedColon).Emit()
		return Invalid()
	}
	colonLoc := p.ConsumeToken()

	// Right-associative: the else arm reaches down to assignment level
	// and recurses at the conditional's own precedence.
	rhs := p.ParseCastExpression()
	rhs = p.ParseRHSOfBinaryExpression(rhs, precConditional)

	if cond.Invalid || middle.Invalid || rhs.Invalid {
		return Invalid()
	}
	return p.actions.ActOnConditionalOp(questionLoc, colonLoc, cond, middle, rhs)
}

// ParseCastExpression parses unary-expression | ( type-name )
// cast-expression, then peels postfix operators off non-cast results.
func (p *Parser) ParseCastExpression() Result {
	var lhs Result
	switch p.tok.Kind {
	case lexer.Kind_NumericConstant:
		spelled := p.spelling(&p.tok)
		tok := p.tok
		p.ConsumeToken()
		lhs = p.actions.ActOnNumericConstant(tok, spelled)
	case lexer.Kind_CharConstant:
		spelled := p.spelling(&p.tok)
		tok := p.tok
		p.ConsumeToken()
		lhs = p.actions.ActOnCharConstant(tok, spelled)
	case lexer.Kind_StringLiteral:
		lhs = p.ParseStringLiteralExpression()
	case lexer.Kind_Identifier:
		info := p.tok.Info
		loc := p.ConsumeToken()
		lhs = p.actions.ActOnIdentifierExpr(loc, info, p.curScope)
	case lexer.Kind_LParen:
		var isCast bool
		lhs, isCast = p.parseParenExpression()
		if isCast {
			return lhs
		}
	case lexer.Kind_PlusPlus, lexer.Kind_MinusMinus, lexer.Kind_Amp,
		lexer.Kind_Star, lexer.Kind_Plus, lexer.Kind_Minus,
		lexer.Kind_Tilde, lexer.Kind_Exclaim:
		op := p.tok.Kind
		opLoc := p.ConsumeToken()
		input := p.ParseCastExpression()
		if input.Invalid {
			return Invalid()
		}
		return p.actions.ActOnUnaryOp(opLoc, op, input)
	case lexer.Kind_KwSizeof:
		return p.parseSizeofAlignof(true)
	case lexer.Kind_KwAlignof:
		return p.parseSizeofAlignof(false)
	case lexer.Kind_KwExtension:
		p.ConsumeToken()
		return p.ParseCastExpression()
	case lexer.Kind_KwBuiltinVaArg:
		return p.parseBuiltinVaArg()
	case lexer.Kind_At:
		lhs = p.ParseObjCExpression()
	default:
		p.diags.Report(p.tok.Loc, diag.ErrExpectedExpression).Emit()
		return Invalid()
	}
	return p.ParsePostfixExpressionSuffix(lhs)
}

// parseParenExpression resolves the four-way ambiguity after '(': cast,
// compound literal, statement expression, or plain grouping. isCast is
// true when the result is a finished cast-expression that must not have
// postfix operators peeled.
func (p *Parser) parseParenExpression() (Result, bool) {
	lparenLoc := p.ConsumeToken()

	if p.tok.Kind == lexer.Kind_LBrace {
		p.diags.Report(p.tok.Loc, diag.ExtGNUStatementExpr).Emit()
		body := p.ParseCompoundStatement(true)
		rparenLoc := p.tok.Loc
		if p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc) {
			return Invalid(), false
		}
		return p.actions.ActOnStmtExpr(lparenLoc, body, rparenLoc), false
	}

	if p.isTypeSpecifierStart() {
		typeName, ok := p.ParseTypeName()
		rparenLoc := p.tok.Loc
		if p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc) || !ok {
			p.SkipUntil(StopAtSemi, lexer.Kind_RParen)
			return Invalid(), true
		}
		if p.tok.Kind == lexer.Kind_LBrace {
			// (type){...} compound literal is a postfix expression.
			init := p.ParseInitializer()
			if init.Invalid {
				return Invalid(), false
			}
			lit := p.actions.ActOnCompoundLiteral(lparenLoc, typeName, rparenLoc, init)
			return lit, false
		}
		operand := p.ParseCastExpression()
		if operand.Invalid {
			return Invalid(), true
		}
		return p.actions.ActOnCastExpr(lparenLoc, typeName, rparenLoc, operand), true
	}

	expr := p.ParseExpression()
	rparenLoc := p.tok.Loc
	if expr.Invalid {
		p.SkipUntil(StopAtSemi|DontConsume, lexer.Kind_RParen)
		if p.tok.Kind == lexer.Kind_RParen {
			p.ConsumeToken()
		}
		return Invalid(), false
	}
	if p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc) {
		return Invalid(), false
	}
	return p.actions.ActOnParenExpr(lparenLoc, rparenLoc, expr), false
}

// ParseStringLiteralExpression consumes a run of adjacent string literal
// tokens, which concatenate into a single literal.
func (p *Parser) ParseStringLiteralExpression() Result {
	var toks []lexer.Token
	var spellings []string
	for p.tok.Kind == lexer.Kind_StringLiteral {
		toks = append(toks, p.tok)
		spellings = append(spellings, p.spelling(&p.tok))
		p.ConsumeToken()
	}
	return p.actions.ActOnStringLiteral(toks, spellings)
}

func (p *Parser) parseSizeofAlignof(isSizeof bool) Result {
	opLoc := p.ConsumeToken()

	if p.tok.Kind == lexer.Kind_LParen {
		lparenLoc := p.ConsumeToken()
		if p.isTypeSpecifierStart() {
			typeName, ok := p.ParseTypeName()
			if p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc) || !ok {
				return Invalid()
			}
			return p.actions.ActOnSizeOfAlignOf(opLoc, isSizeof, true, typeName, Result{})
		}
		expr := p.ParseExpression()
		if p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc) {
			return Invalid()
		}
		if expr.Invalid {
			return Invalid()
		}
		// The parenthesized operand is still a postfix anchor:
		// sizeof (x)->field applies to the member access.
		expr = p.ParsePostfixExpressionSuffix(expr)
		return p.actions.ActOnSizeOfAlignOf(opLoc, isSizeof, false, "", expr)
	}

	operand := p.ParseCastExpression()
	if operand.Invalid {
		return Invalid()
	}
	return p.actions.ActOnSizeOfAlignOf(opLoc, isSizeof, false, "", operand)
}

// parseBuiltinVaArg parses __builtin_va_arg ( expr , type-name ). It is
// surfaced as a value-producing cast of the va_list expression.
func (p *Parser) parseBuiltinVaArg() Result {
	p.ConsumeToken()
	if p.tok.Kind != lexer.Kind_LParen {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedLParen).Emit()
		return Invalid()
	}
	lparenLoc := p.ConsumeToken()
	expr := p.ParseAssignmentExpression()
	if p.ExpectAndConsume(lexer.Kind_Comma, diag.ErrExpectedToken, source.LocationInvalid) {
		p.SkipUntil(StopAtSemi, lexer.Kind_RParen)
		return Invalid()
	}
	typeName, ok := p.ParseTypeName()
	rparenLoc := p.tok.Loc
	if p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc) || !ok || expr.Invalid {
		return Invalid()
	}
	return p.actions.ActOnCastExpr(lparenLoc, typeName, rparenLoc, expr)
}

// ParsePostfixExpressionSuffix peels []. () . -> ++ -- off lhs.
func (p *Parser) ParsePostfixExpressionSuffix(lhs Result) Result {
	for {
		switch p.tok.Kind {
		case lexer.Kind_LSquare:
			lsquareLoc := p.ConsumeToken()
			index := p.ParseExpression()
			rsquareLoc := p.tok.Loc
			if p.ExpectAndConsume(lexer.Kind_RSquare, diag.ErrExpectedRSquare, lsquareLoc) {
				return Invalid()
			}
			if lhs.Invalid || index.Invalid {
				lhs = Invalid()
				continue
			}
			lhs = p.actions.ActOnArraySubscriptExpr(lhs, lsquareLoc, index, rsquareLoc)
		case lexer.Kind_LParen:
			lparenLoc := p.ConsumeToken()
			var args []Result
			bad := false
			if p.tok.Kind != lexer.Kind_RParen {
				for {
					arg := p.ParseAssignmentExpression()
					bad = bad || arg.Invalid
					args = append(args, arg)
					if p.tok.Kind != lexer.Kind_Comma {
						break
					}
					p.ConsumeToken()
				}
			}
			rparenLoc := p.tok.Loc
			if p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc) {
				p.SkipUntil(StopAtSemi, lexer.Kind_RParen)
				return Invalid()
			}
			if lhs.Invalid || bad {
				lhs = Invalid()
				continue
			}
			lhs = p.actions.ActOnCallExpr(lhs, lparenLoc, args, rparenLoc)
		case lexer.Kind_Period, lexer.Kind_Arrow:
			op := p.tok.Kind
			opLoc := p.ConsumeToken()
			if p.tok.Kind != lexer.Kind_Identifier {
				p.diags.Report(p.tok.Loc, diag.ErrExpectedIdentifier).Emit()
				return Invalid()
			}
			member := p.tok.Info.Name()
			p.ConsumeToken()
			if lhs.Invalid {
				continue
			}
			lhs = p.actions.ActOnMemberReferenceExpr(lhs, opLoc, op, member)
		case lexer.Kind_PlusPlus, lexer.Kind_MinusMinus:
			op := p.tok.Kind
			opLoc := p.ConsumeToken()
			if lhs.Invalid {
				continue
			}
			lhs = p.actions.ActOnPostfixUnaryOp(opLoc, op, lhs)
		default:
			return lhs
		}
	}
}
