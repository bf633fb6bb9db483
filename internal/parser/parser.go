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

// Package parser turns the preprocessed token stream into parse events.
// It owns all syntax; semantic interpretation is delegated to an Action.
// Recovery is local: each production diagnoses, skips to a sync token,
// and returns an invalid Result rather than unwinding.
package parser

import (
	"github.com/EngFlow/ccfront/internal/diag"
	"github.com/EngFlow/ccfront/internal/lang"
	"github.com/EngFlow/ccfront/internal/lexer"
	"github.com/EngFlow/ccfront/internal/pp"
	"github.com/EngFlow/ccfront/internal/source"
)

type Parser struct {
	pp      *pp.Preprocessor
	actions Action
	diags   *diag.Engine
	opts    lang.Options

	// tok is the one token of lookahead. Every parse method runs with
	// tok holding the next unconsumed token.
	tok lexer.Token

	// peekTok holds a second token of lookahead when a dispatch decision
	// needed it (identifier ':' labels, mostly).
	peekTok lexer.Token
	hasPeek bool

	curScope *Scope

	// switchDepth counts enclosing switch statements for case/default
	// placement checks.
	switchDepth int

	// ompStack is the region kinds of the enclosing OpenMP directives.
	ompStack []string

	// Remembers the still-open delimiter for the matching-note on a
	// missing close.
	parenCount, bracketCount, braceCount int
}

func New(preproc *pp.Preprocessor, actions Action) *Parser {
	return &Parser{
		pp:      preproc,
		actions: actions,
		diags:   preproc.Diags(),
		opts:    preproc.Options(),
	}
}

func (p *Parser) Actions() Action { return p.actions }
func (p *Parser) CurScope() *Scope { return p.curScope }

func (p *Parser) spelling(tok *lexer.Token) string { return p.pp.Spelling(tok) }

// ConsumeToken advances over any token kind and returns its location.
// Bracket bookkeeping stays balanced so SkipUntil can respect nesting.
func (p *Parser) ConsumeToken() source.Location {
	switch p.tok.Kind {
	case lexer.Kind_LParen:
		p.parenCount++
	case lexer.Kind_RParen:
		if p.parenCount > 0 {
			p.parenCount--
		}
	case lexer.Kind_LSquare:
		p.bracketCount++
	case lexer.Kind_RSquare:
		if p.bracketCount > 0 {
			p.bracketCount--
		}
	case lexer.Kind_LBrace:
		p.braceCount++
	case lexer.Kind_RBrace:
		if p.braceCount > 0 {
			p.braceCount--
		}
	}
	loc := p.tok.Loc
	if p.hasPeek {
		p.tok = p.peekTok
		p.hasPeek = false
	} else {
		p.pp.Lex(&p.tok)
	}
	return loc
}

// NextToken returns the token after the current one without consuming
// anything.
func (p *Parser) NextToken() *lexer.Token {
	if !p.hasPeek {
		p.pp.Lex(&p.peekTok)
		p.hasPeek = true
	}
	return &p.peekTok
}

// ExpectAndConsume consumes the expected kind, or diagnoses id and reports
// true. When matchLoc is valid a note points at the unmatched opener.
func (p *Parser) ExpectAndConsume(expected lexer.Kind, id diag.ID, matchLoc source.Location) bool {
	if p.tok.Kind == expected {
		p.ConsumeToken()
		return false
	}
	b := p.diags.Report(p.tok.Loc, id)
	if id == diag.ErrExpectedToken {
		b.AddString(expected.Spelling())
	}
	b.Emit()
	if matchLoc.Valid() {
		p.diags.Report(matchLoc, diag.ErrMatchingDelimiterNote).
			AddString(matchingOpener(expected)).Emit()
	}
	return true
}

func matchingOpener(closer lexer.Kind) string {
	switch closer {
	case lexer.Kind_RParen:
		return "("
	case lexer.Kind_RSquare:
		return "["
	case lexer.Kind_RBrace:
		return "{"
	case lexer.Kind_Greater:
		return "<"
	}
	return closer.Spelling()
}

// SkipUntil flags.
const (
	// StopAtSemi stops at (without consuming) a ';' even when it is not
	// in kinds, so statement boundaries survive recovery.
	StopAtSemi = 1 << iota
	// DontConsume leaves the matched token for the caller.
	DontConsume
)

// SkipUntil discards tokens until one of kinds is found at the current
// nesting level. Bracketed subexpressions are skipped whole, so a ';' or
// ',' inside f(a, b) never terminates a skip that started outside the
// call. Reports whether a requested kind was found; EOF always stops.
func (p *Parser) SkipUntil(flags int, kinds ...lexer.Kind) bool {
	for {
		for _, k := range kinds {
			if p.tok.Kind == k {
				if flags&DontConsume == 0 {
					p.ConsumeToken()
				}
				return true
			}
		}
		switch p.tok.Kind {
		case lexer.Kind_EOF:
			return false
		case lexer.Kind_LParen:
			p.ConsumeToken()
			p.SkipUntil(0, lexer.Kind_RParen)
			continue
		case lexer.Kind_LSquare:
			p.ConsumeToken()
			p.SkipUntil(0, lexer.Kind_RSquare)
			continue
		case lexer.Kind_LBrace:
			p.ConsumeToken()
			p.SkipUntil(0, lexer.Kind_RBrace)
			continue
		case lexer.Kind_RParen, lexer.Kind_RSquare, lexer.Kind_RBrace:
			// An unbalanced closer belongs to an enclosing construct;
			// do not eat it unless the caller asked for it.
			return false
		case lexer.Kind_Semi:
			if flags&StopAtSemi != 0 {
				return false
			}
		}
		p.ConsumeToken()
	}
}

func (p *Parser) EnterScope(flags ScopeFlags) {
	p.curScope = NewScope(p.curScope, flags)
}

func (p *Parser) ExitScope() {
	p.actions.ActOnPopScope(p.curScope)
	p.curScope = p.curScope.Parent()
}

// ParseTranslationUnit drives the whole parse: primes the lookahead,
// parses external declarations until EOF, and fires ActOnTranslationUnit.
func (p *Parser) ParseTranslationUnit() {
	p.EnterScope(DeclScope)
	p.pp.Lex(&p.tok)

	var decls []Result
	for p.tok.Kind != lexer.Kind_EOF {
		if r := p.ParseExternalDeclaration(); r.Node != nil || r.Invalid {
			decls = append(decls, r)
		}
	}
	p.actions.ActOnTranslationUnit(decls)
	p.ExitScope()
}

// ParseExternalDeclaration handles one top-level construct.
func (p *Parser) ParseExternalDeclaration() Result {
	switch p.tok.Kind {
	case lexer.Kind_Semi:
		// A stray top-level ';' is tolerated, as GCC does.
		loc := p.ConsumeToken()
		return p.actions.ActOnNullStmt(loc)
	case lexer.Kind_At:
		return p.ParseObjCAtDirective()
	case lexer.Kind_AnnotPragmaOpenMP:
		return p.ParseOpenMPDirective(ompContextTopLevel)
	case lexer.Kind_KwAsm:
		r := p.ParseSimpleAsm()
		p.ExpectAndConsume(lexer.Kind_Semi, diag.ErrExpectedSemiDecl, source.LocationInvalid)
		return r
	case lexer.Kind_KwTemplate:
		return p.ParseTemplateDeclaration()
	case lexer.Kind_KwTypedef, lexer.Kind_KwExtern, lexer.Kind_KwStatic:
		return p.ParseDeclarationOrFunctionDefinition()
	default:
		return p.ParseDeclarationOrFunctionDefinition()
	}
}
