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

package pp

import (
	"github.com/EngFlow/ccfront/internal/diag"
	"github.com/EngFlow/ccfront/internal/lexer"
	"github.com/EngFlow/ccfront/internal/source"
)

// handlePragmaDirective dispatches on the token after #pragma. Unknown
// pragmas are silently discarded, as the standard requires.
func (p *Preprocessor) handlePragmaDirective() {
	var tok lexer.Token
	p.LexUnexpandedToken(&tok)
	if tok.Is(lexer.Kind_EOM) {
		return
	}
	if tok.Info == nil {
		p.DiscardUntilEndOfDirective()
		return
	}
	switch tok.Info.Name() {
	case "once":
		p.handlePragmaOnce(&tok)
	case "GCC":
		p.handlePragmaGCC()
	case "omp":
		if p.opts.OpenMP {
			p.handlePragmaOMP(&tok)
			return
		}
		p.DiscardUntilEndOfDirective()
	default:
		p.DiscardUntilEndOfDirective()
	}
}

func (p *Preprocessor) handlePragmaOnce(tok *lexer.Token) {
	p.CheckEndOfDirective("pragma once")
	l := p.curFileLexer()
	if l == nil {
		return
	}
	if !p.sm.IncludeLoc(l.FileID()).Valid() {
		p.diags.Report(tok.Loc, diag.ErrPragmaOnceInMainFile).Emit()
		return
	}
	if entry := p.sm.FileEntryFor(l.FileID()); entry != nil {
		p.headers.MarkFileIncludeOnce(entry)
	}
}

func (p *Preprocessor) handlePragmaGCC() {
	var tok lexer.Token
	p.LexUnexpandedToken(&tok)
	if tok.Info == nil {
		p.DiscardUntilEndOfDirective()
		return
	}
	switch tok.Info.Name() {
	case "poison":
		p.handlePragmaPoison()
	case "system_header":
		p.handlePragmaSystemHeader(&tok)
	default:
		p.DiscardUntilEndOfDirective()
	}
}

// handlePragmaPoison marks each listed identifier so any later use outside
// a directive is an error.
func (p *Preprocessor) handlePragmaPoison() {
	var tok lexer.Token
	for {
		p.LexUnexpandedToken(&tok)
		if tok.Is(lexer.Kind_EOM) || tok.Is(lexer.Kind_EOF) {
			return
		}
		if tok.Info == nil {
			p.diags.Report(tok.Loc, diag.ErrMacroNameMissing).Emit()
			p.DiscardUntilEndOfDirective()
			return
		}
		if tok.Info.HasMacro {
			p.diags.Report(tok.Loc, diag.WarnPragmaPoisonExistingMacro).Emit()
		}
		tok.Info.IsPoisoned = true
	}
}

func (p *Preprocessor) handlePragmaSystemHeader(tok *lexer.Token) {
	p.CheckEndOfDirective("pragma system_header")
	l := p.curFileLexer()
	if l == nil {
		return
	}
	if !p.sm.IncludeLoc(l.FileID()).Valid() {
		p.diags.Report(tok.Loc, diag.WarnPragmaSystemHeaderOutsideHeader).Emit()
		return
	}
	p.sm.SetCharacteristic(l.FileID(), source.CharacteristicSystem)
}

// handlePragmaOMP queues the directive's tokens for the parser and plants
// an annotation token in the output stream.
func (p *Preprocessor) handlePragmaOMP(ompTok *lexer.Token) {
	var body []lexer.Token
	var tok lexer.Token
	for {
		p.LexUnexpandedToken(&tok)
		if tok.Is(lexer.Kind_EOM) || tok.Is(lexer.Kind_EOF) {
			break
		}
		body = append(body, tok)
	}
	p.pendingOMP = append(p.pendingOMP, body)

	annot := lexer.Token{Kind: lexer.Kind_AnnotPragmaOpenMP, Loc: ompTok.Loc}
	annot.SetFlag(lexer.FlagStartOfLine)
	p.pushbackToken(annot)
}
