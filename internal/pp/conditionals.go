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

func (p *Preprocessor) handleIfDirective(hashLoc source.Location) {
	value, ifndefMacro := p.EvaluateDirectiveExpression()

	l := p.curLexer
	if l.ConditionalDepth() == 0 {
		// A first-directive #if !defined(X) counts as a guard candidate,
		// same as #ifndef X.
		if ifndefMacro != nil {
			if l.MIOpt.ExpectControllingMacro() {
				l.MIOpt.SetControllingMacro(ifndefMacro)
			}
		} else {
			l.MIOpt.EnterTopLevelConditional()
		}
	}

	if value {
		l.PushConditionalLevel(lexer.PPConditionalInfo{IfLoc: hashLoc, FoundNonSkip: true})
	} else {
		p.SkipExcludedConditionalBlock(hashLoc, false, false)
	}
}

func (p *Preprocessor) handleIfdefDirective(hashLoc source.Location, isIfndef bool) {
	var nameTok lexer.Token
	p.readMacroName(&nameTok)
	if nameTok.Is(lexer.Kind_Unknown) {
		// Enter the block anyway so the matching #endif balances.
		p.curLexer.PushConditionalLevel(lexer.PPConditionalInfo{IfLoc: hashLoc, FoundNonSkip: true})
		return
	}
	if isIfndef {
		p.CheckEndOfDirective("ifndef")
	} else {
		p.CheckEndOfDirective("ifdef")
	}

	info := nameTok.Info
	mi := p.MacroFor(info)
	if mi != nil {
		mi.IsUsed = true
	}

	l := p.curLexer
	if l.ConditionalDepth() == 0 {
		if isIfndef {
			if l.MIOpt.ExpectControllingMacro() {
				l.MIOpt.SetControllingMacro(info)
			}
		} else {
			l.MIOpt.EnterTopLevelConditional()
		}
	}

	if (mi != nil) != isIfndef {
		l.PushConditionalLevel(lexer.PPConditionalInfo{IfLoc: hashLoc, FoundNonSkip: true})
	} else {
		p.SkipExcludedConditionalBlock(hashLoc, false, false)
	}
}

// handleElifDirective runs when the preceding branch was being processed,
// so the #elif region is always skipped; its expression is not evaluated.
func (p *Preprocessor) handleElifDirective(hashLoc source.Location, tok *lexer.Token) {
	l := p.curLexer
	ci, ok := l.PopConditionalLevel()
	if !ok {
		p.diags.Report(tok.Loc, diag.ErrElifWithoutIf).Emit()
		p.DiscardUntilEndOfDirective()
		return
	}
	if ci.FoundElse {
		p.diags.Report(tok.Loc, diag.ErrElifAfterElse).Emit()
	}
	p.DiscardUntilEndOfDirective()
	if l.ConditionalDepth() == 0 {
		l.MIOpt.FoundTopLevelElse()
	}
	p.SkipExcludedConditionalBlock(ci.IfLoc, true, ci.FoundElse)
}

func (p *Preprocessor) handleElseDirective(hashLoc source.Location, tok *lexer.Token) {
	l := p.curLexer
	ci, ok := l.PopConditionalLevel()
	if !ok {
		p.diags.Report(tok.Loc, diag.ErrElseWithoutIf).Emit()
		p.DiscardUntilEndOfDirective()
		return
	}
	p.CheckEndOfDirective("else")
	if ci.FoundElse {
		p.diags.Report(tok.Loc, diag.ErrElseAfterElse).Emit()
	}
	if l.ConditionalDepth() == 0 {
		l.MIOpt.FoundTopLevelElse()
	}
	// The taken branch already ran, so the #else region is skipped.
	p.SkipExcludedConditionalBlock(ci.IfLoc, true, true)
}

func (p *Preprocessor) handleEndifDirective(tok *lexer.Token) {
	l := p.curLexer
	_, ok := l.PopConditionalLevel()
	if !ok {
		p.diags.Report(tok.Loc, diag.ErrEndifWithoutIf).Emit()
		p.DiscardUntilEndOfDirective()
		return
	}
	p.CheckEndOfDirective("endif")
	if l.ConditionalDepth() == 0 {
		l.MIOpt.ExitTopLevelConditional()
	}
}

// SkipExcludedConditionalBlock lexes forward in raw mode from just after a
// false conditional (or after a taken branch, at its #elif/#else) until the
// branch to enter or the terminating #endif is found. Raw mode means no
// identifier lookup, no diagnostics and no macro bookkeeping: the skipped
// text only has to tokenize.
func (p *Preprocessor) SkipExcludedConditionalBlock(ifLoc source.Location, foundNonSkipPortion, foundElse bool) {
	l := p.curLexer
	l.PushConditionalLevel(lexer.PPConditionalInfo{
		IfLoc:        ifLoc,
		FoundNonSkip: foundNonSkipPortion,
		FoundElse:    foundElse,
	})

	l.RawMode = true
	defer func() { l.RawMode = false }()

	var tok lexer.Token
	for {
		l.Lex(&tok)

		if tok.Is(lexer.Kind_EOF) {
			// Unterminated conditional; the end-of-file handler reports it.
			return
		}
		if tok.IsNot(lexer.Kind_Hash) || !tok.StartOfLine() {
			continue
		}

		l.ParsingPreprocessorDirective = true
		l.Lex(&tok)
		if tok.Is(lexer.Kind_EOM) {
			continue
		}
		if tok.IsNot(lexer.Kind_Identifier) {
			p.discardSkippedDirective(l)
			continue
		}

		switch lexer.Spelling(p.sm, p.opts, &tok) {
		case "if", "ifdef", "ifndef":
			l.PushConditionalLevel(lexer.PPConditionalInfo{IfLoc: tok.Loc, WasSkipping: true})
			p.discardSkippedDirective(l)

		case "endif":
			ci, ok := l.PopConditionalLevel()
			p.discardSkippedDirective(l)
			if ok && !ci.WasSkipping {
				if l.ConditionalDepth() == 0 {
					l.MIOpt.ExitTopLevelConditional()
				}
				return
			}

		case "else":
			p.discardSkippedDirective(l)
			ci, ok := l.PeekConditionalLevel()
			if !ok {
				continue
			}
			if ci.WasSkipping {
				ci.FoundElse = true
				continue
			}
			if ci.FoundElse {
				p.diags.Report(tok.Loc, diag.ErrElseAfterElse).Emit()
			}
			wasTaken := ci.FoundNonSkip
			ci.FoundElse = true
			if !wasTaken {
				ci.FoundNonSkip = true
				if l.ConditionalDepth() == 1 {
					l.MIOpt.FoundTopLevelElse()
				}
				return
			}

		case "elif":
			ci, ok := l.PeekConditionalLevel()
			if !ok || ci.WasSkipping {
				p.discardSkippedDirective(l)
				continue
			}
			if ci.FoundElse {
				p.diags.Report(tok.Loc, diag.ErrElifAfterElse).Emit()
			}
			if ci.FoundNonSkip {
				p.discardSkippedDirective(l)
				continue
			}
			// This is the first live #elif: its expression counts.
			l.RawMode = false
			value, _ := p.EvaluateDirectiveExpression()
			if value {
				ci.FoundNonSkip = true
				if l.ConditionalDepth() == 1 {
					l.MIOpt.FoundTopLevelElse()
				}
				return
			}
			l.RawMode = true

		default:
			p.discardSkippedDirective(l)
		}
	}
}

// discardSkippedDirective consumes the rest of a directive line in raw mode.
func (p *Preprocessor) discardSkippedDirective(l *lexer.Lexer) {
	var tok lexer.Token
	for l.ParsingPreprocessorDirective {
		l.Lex(&tok)
		if tok.Is(lexer.Kind_EOM) || tok.Is(lexer.Kind_EOF) {
			return
		}
	}
}
