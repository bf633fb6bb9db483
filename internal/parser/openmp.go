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
)

type ompContext uint8

const (
	ompContextTopLevel ompContext = iota
	ompContextStatement
)

type ompDirectiveInfo struct {
	// hasBody directives are followed by a structured block (one
	// statement); the rest stand alone.
	hasBody bool
	// worksharing directives may not nest directly inside another
	// worksharing or simd region.
	worksharing bool
	declarative bool // legal at file scope
}

var ompDirectives = map[string]ompDirectiveInfo{
	"parallel":          {hasBody: true},
	"parallel for":      {hasBody: true, worksharing: true},
	"parallel sections": {hasBody: true, worksharing: true},
	"for":               {hasBody: true, worksharing: true},
	"sections":          {hasBody: true, worksharing: true},
	"section":           {hasBody: true},
	"single":            {hasBody: true, worksharing: true},
	"simd":              {hasBody: true},
	"master":            {hasBody: true},
	"critical":          {hasBody: true},
	"ordered":           {hasBody: true},
	"atomic":            {hasBody: true},
	"task":              {hasBody: true},
	"barrier":           {},
	"taskwait":          {},
	"taskyield":         {},
	"flush":             {},
	"threadprivate":     {declarative: true},
}

// ParseOpenMPDirective consumes one pragma-annotation token and the
// directive body the preprocessor queued for it, validates the nesting,
// and parses the associated statement when the directive takes one.
func (p *Parser) ParseOpenMPDirective(ctx ompContext) Result {
	ompLoc := p.ConsumeToken() // annotation token
	body := p.pp.NextOpenMPDirective()

	// Directive words lex with the keyword table applied, so "for" in
	// "parallel for" arrives as a keyword token. Any token that carries
	// identifier info names a directive word.
	if len(body) == 0 || body[0].Info == nil {
		p.diags.Report(ompLoc, diag.ErrOmpUnknownDirective).AddString("").Emit()
		return Invalid()
	}

	// Directive kinds can span two words: "parallel for".
	kind := body[0].Info.Name()
	if len(body) > 1 && body[1].Info != nil {
		if combined := kind + " " + body[1].Info.Name(); ompDirectives[combined].hasBody {
			kind = combined
		}
	}
	info, known := ompDirectives[kind]
	if !known {
		p.diags.Report(body[0].Loc, diag.ErrOmpUnknownDirective).AddString(kind).Emit()
		return Invalid()
	}

	if ctx == ompContextTopLevel && !info.declarative {
		p.diags.Report(body[0].Loc, diag.ErrOmpDirectiveAtFileScope).AddString(kind).Emit()
		return Invalid()
	}

	if !p.checkOmpNesting(kind, info, body[0]) {
		return Invalid()
	}

	if !info.hasBody {
		return p.actions.ActOnOmpDirective(ompLoc, kind, Result{})
	}

	p.ompStack = append(p.ompStack, kind)
	stmt := p.ParseStatement()
	p.ompStack = p.ompStack[:len(p.ompStack)-1]
	if stmt.Invalid {
		return Invalid()
	}
	return p.actions.ActOnOmpDirective(ompLoc, kind, stmt)
}

// checkOmpNesting enforces the closely-nested rules: section only inside
// sections, and no worksharing region directly inside another worksharing
// or simd region. Declarative directives are exempt.
func (p *Parser) checkOmpNesting(kind string, info ompDirectiveInfo, tok lexer.Token) bool {
	var enclosing string
	if len(p.ompStack) > 0 {
		enclosing = p.ompStack[len(p.ompStack)-1]
	}

	if kind == "section" {
		if enclosing != "sections" && enclosing != "parallel sections" {
			p.diags.Report(tok.Loc, diag.ErrOmpOrphanedSection).Emit()
			return false
		}
		return true
	}

	if info.worksharing {
		switch enclosing {
		case "simd":
			p.diags.Report(tok.Loc, diag.ErrOmpUnexpectedDirective).
				AddString(enclosing).
				AddString("; only simd-composable constructs may appear here").Emit()
			return false
		case "for", "sections", "single", "parallel for", "parallel sections":
			p.diags.Report(tok.Loc, diag.ErrOmpUnexpectedDirective).
				AddString(enclosing).
				AddString("; close the worksharing region or nest a parallel region first").Emit()
			return false
		}
	}
	return true
}
