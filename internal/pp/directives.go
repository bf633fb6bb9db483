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
	"strconv"
	"strings"

	"github.com/EngFlow/ccfront/internal/diag"
	"github.com/EngFlow/ccfront/internal/lexer"
	"github.com/EngFlow/ccfront/internal/source"
)

// HandleDirective executes the directive whose introducing '#' is hashTok.
// On return the end-of-directive marker has been consumed and the lexer is
// back in normal mode.
func (p *Preprocessor) HandleDirective(hashTok *lexer.Token) {
	p.curLexer.ParsingPreprocessorDirective = true

	var tok lexer.Token
	p.LexUnexpandedToken(&tok)

	switch {
	case tok.Is(lexer.Kind_EOM):
		return // null directive
	case tok.Is(lexer.Kind_NumericConstant):
		// GNU line marker: # 42 "file" [flags]
		p.handleDigitDirective(&tok)
		return
	}

	if tok.Info == nil || tok.Info.PPKeyword == lexer.PPKw_NotKeyword {
		p.diags.Report(tok.Loc, diag.ErrInvalidDirective).AddString(p.Spelling(&tok)).Emit()
		p.DiscardUntilEndOfDirective()
		return
	}

	switch tok.Info.PPKeyword {
	case lexer.PPKw_If:
		p.handleIfDirective(hashTok.Loc)
	case lexer.PPKw_Ifdef:
		p.handleIfdefDirective(hashTok.Loc, false)
	case lexer.PPKw_Ifndef:
		p.handleIfdefDirective(hashTok.Loc, true)
	case lexer.PPKw_Elif:
		p.handleElifDirective(hashTok.Loc, &tok)
	case lexer.PPKw_Else:
		p.handleElseDirective(hashTok.Loc, &tok)
	case lexer.PPKw_Endif:
		p.handleEndifDirective(&tok)
	case lexer.PPKw_Define:
		p.handleDefineDirective()
	case lexer.PPKw_Undef:
		p.handleUndefDirective()
	case lexer.PPKw_Include:
		p.handleIncludeDirective(&tok, includePlain)
	case lexer.PPKw_IncludeNext:
		p.handleIncludeDirective(&tok, includeNext)
	case lexer.PPKw_Import:
		p.handleIncludeDirective(&tok, includeImport)
	case lexer.PPKw_Line:
		p.handleLineDirective()
	case lexer.PPKw_Pragma:
		p.handlePragmaDirective()
	case lexer.PPKw_Error:
		p.handleUserDiagnosticDirective(&tok, false)
	case lexer.PPKw_Warning:
		p.handleUserDiagnosticDirective(&tok, true)
	case lexer.PPKw_Ident, lexer.PPKw_Sccs:
		p.handleIdentSCCSDirective(&tok)
	case lexer.PPKw_Assert, lexer.PPKw_Unassert:
		// GNU assertions are obsolete; parse and drop.
		p.DiscardUntilEndOfDirective()
	default:
		p.diags.Report(tok.Loc, diag.ErrInvalidDirective).AddString(p.Spelling(&tok)).Emit()
		p.DiscardUntilEndOfDirective()
	}
}

// DiscardUntilEndOfDirective consumes to the end-of-directive marker. The
// marker's location is returned for use in notes.
func (p *Preprocessor) DiscardUntilEndOfDirective() source.Location {
	var tok lexer.Token
	for {
		p.LexUnexpandedToken(&tok)
		if tok.Is(lexer.Kind_EOM) || tok.Is(lexer.Kind_EOF) {
			return tok.Loc
		}
	}
}

// CheckEndOfDirective verifies the line is over; stray tokens get one
// extension diagnostic and are discarded.
func (p *Preprocessor) CheckEndOfDirective(directive string) {
	var tok lexer.Token
	p.LexUnexpandedToken(&tok)
	if tok.Is(lexer.Kind_EOM) || tok.Is(lexer.Kind_EOF) {
		return
	}
	p.diags.Report(tok.Loc, diag.ExtExtraTokensAtEOL).AddString(directive).Emit()
	p.DiscardUntilEndOfDirective()
}

// readMacroName lexes the identifier naming a macro in #define/#undef/
// #ifdef. A zero Kind result means the name was missing or invalid and the
// line was discarded.
func (p *Preprocessor) readMacroName(tok *lexer.Token) {
	p.LexUnexpandedToken(tok)
	if tok.Is(lexer.Kind_EOM) {
		p.diags.Report(tok.Loc, diag.ErrMacroNameMissing).Emit()
		tok.Kind = lexer.Kind_Unknown
		return
	}
	if tok.Info == nil {
		p.diags.Report(tok.Loc, diag.ErrMacroNameMissing).Emit()
		p.DiscardUntilEndOfDirective()
		tok.Kind = lexer.Kind_Unknown
		return
	}
	if tok.Info == p.identDefined {
		p.diags.Report(tok.Loc, diag.ErrDefinedMacroName).Emit()
		p.DiscardUntilEndOfDirective()
		tok.Kind = lexer.Kind_Unknown
	}
}

func (p *Preprocessor) handleDefineDirective() {
	var nameTok lexer.Token
	p.readMacroName(&nameTok)
	if nameTok.Is(lexer.Kind_Unknown) {
		return
	}
	info := nameTok.Info

	mi := NewMacroInfo(nameTok.Loc)

	var tok lexer.Token
	p.LexUnexpandedToken(&tok)

	if tok.Is(lexer.Kind_LParen) && !tok.LeadingSpace() {
		// Function-like: the '(' hugs the name.
		mi.SetFunctionLike()
		if !p.readMacroParamList(mi) {
			return
		}
		p.LexUnexpandedToken(&tok)
	} else if tok.IsNot(lexer.Kind_EOM) && !tok.LeadingSpace() {
		// C99 6.10.3p3 requires whitespace between the name and an
		// object-like body.
		p.diags.Report(tok.Loc, diag.ExtMissingWhitespaceAfterMacroName).Emit()
	}

	// Record the body tokens.
	for tok.IsNot(lexer.Kind_EOM) && tok.IsNot(lexer.Kind_EOF) {
		mi.AddToken(tok)
		p.LexUnexpandedToken(&tok)
	}

	if err := p.checkMacroBody(mi); err != 0 {
		return
	}

	if prev := p.MacroFor(info); prev != nil {
		if prev.IsBuiltin {
			p.diags.Report(nameTok.Loc, diag.WarnRedefOfBuiltin).AddIdent(info.Name()).Emit()
		} else if !prev.IsIdenticalTo(mi, p) {
			p.diags.Report(nameTok.Loc, diag.WarnMacroRedefined).AddIdent(info.Name()).Emit()
		}
	}
	p.setMacro(info, mi)
}

// readMacroParamList parses everything between the parentheses of a
// function-like #define. Returns false after discarding the line on error.
func (p *Preprocessor) readMacroParamList(mi *MacroInfo) bool {
	var params []*lexer.Info
	var tok lexer.Token
	for {
		p.LexUnexpandedToken(&tok)
		switch tok.Kind {
		case lexer.Kind_RParen:
			if len(params) == 0 {
				mi.SetParams(nil)
				return true
			}
			p.diags.Report(tok.Loc, diag.ErrParamNameMissing).Emit()
			p.DiscardUntilEndOfDirective()
			return false
		case lexer.Kind_Ellipsis:
			mi.SetC99Varargs()
			if !p.opts.C99 && !p.opts.CPlusPlus {
				p.diags.Report(tok.Loc, diag.ExtVariadicMacro).Emit()
			}
			params = append(params, p.identVAARGS)
			p.LexUnexpandedToken(&tok)
			if tok.IsNot(lexer.Kind_RParen) {
				p.diags.Report(tok.Loc, diag.ErrMissingRParenInParamList).Emit()
				p.DiscardUntilEndOfDirective()
				return false
			}
			mi.SetParams(params)
			return true
		case lexer.Kind_EOM, lexer.Kind_EOF:
			p.diags.Report(tok.Loc, diag.ErrMissingRParenInParamList).Emit()
			return false
		default:
			if tok.Info == nil {
				p.diags.Report(tok.Loc, diag.ErrParamNameMissing).Emit()
				p.DiscardUntilEndOfDirective()
				return false
			}
			for _, prev := range params {
				if prev == tok.Info {
					p.diags.Report(tok.Loc, diag.ErrDuplicateMacroParam).AddIdent(tok.Info.Name()).Emit()
					p.DiscardUntilEndOfDirective()
					return false
				}
			}
			params = append(params, tok.Info)

			p.LexUnexpandedToken(&tok)
			switch tok.Kind {
			case lexer.Kind_Comma:
				// next parameter
			case lexer.Kind_RParen:
				mi.SetParams(params)
				return true
			case lexer.Kind_Ellipsis:
				// GNU named variadic: #define M(args...)
				mi.SetGNUVarargs()
				p.diags.Report(tok.Loc, diag.ExtNamedVariadic).Emit()
				p.LexUnexpandedToken(&tok)
				if tok.IsNot(lexer.Kind_RParen) {
					p.diags.Report(tok.Loc, diag.ErrMissingRParenInParamList).Emit()
					p.DiscardUntilEndOfDirective()
					return false
				}
				mi.SetParams(params)
				return true
			default:
				p.diags.Report(tok.Loc, diag.ErrExpectedCommaInParamList).Emit()
				p.DiscardUntilEndOfDirective()
				return false
			}
		}
	}
}

// checkMacroBody enforces the placement rules for # and ## in the
// replacement list. Nonzero return means the definition was rejected.
func (p *Preprocessor) checkMacroBody(mi *MacroInfo) diag.ID {
	toks := mi.ReplacementToks
	if len(toks) == 0 {
		return 0
	}
	if toks[0].Is(lexer.Kind_HashHash) {
		p.diags.Report(toks[0].Loc, diag.ErrPasteAtStart).Emit()
		return diag.ErrPasteAtStart
	}
	last := &toks[len(toks)-1]
	if last.Is(lexer.Kind_HashHash) {
		p.diags.Report(last.Loc, diag.ErrPasteAtEnd).Emit()
		return diag.ErrPasteAtEnd
	}
	if !mi.IsFunctionLike() {
		return 0
	}
	for i := 0; i < len(toks); i++ {
		t := &toks[i]
		if t.IsNot(lexer.Kind_Hash) && t.IsNot(lexer.Kind_HashAt) {
			continue
		}
		if i+1 >= len(toks) || toks[i+1].Info == nil || mi.ParamIndex(toks[i+1].Info) < 0 {
			p.diags.Report(t.Loc, diag.ErrHashNotFollowedByParam).Emit()
			return diag.ErrHashNotFollowedByParam
		}
		i++ // the parameter is known good
	}
	return 0
}

func (p *Preprocessor) handleUndefDirective() {
	var nameTok lexer.Token
	p.readMacroName(&nameTok)
	if nameTok.Is(lexer.Kind_Unknown) {
		return
	}
	p.CheckEndOfDirective("undef")

	mi := p.MacroFor(nameTok.Info)
	if mi == nil {
		return
	}
	if mi.IsBuiltin {
		p.diags.Report(nameTok.Loc, diag.WarnUndefOfBuiltin).AddIdent(nameTok.Info.Name()).Emit()
	}
	p.removeMacro(nameTok.Info)
}

// handleLineDirective processes #line, whose operands are macro-expanded.
func (p *Preprocessor) handleLineDirective() {
	var tok lexer.Token
	p.Lex(&tok)
	if tok.IsNot(lexer.Kind_NumericConstant) {
		p.diags.Report(tok.Loc, diag.ErrLineExpectsInteger).Emit()
		if tok.IsNot(lexer.Kind_EOM) {
			p.DiscardUntilEndOfDirective()
		}
		return
	}
	line, ok := p.parseLineNumber(&tok)
	if !ok {
		p.DiscardUntilEndOfDirective()
		return
	}

	name := ""
	haveName := false
	p.Lex(&tok)
	if tok.Is(lexer.Kind_StringLiteral) {
		var perr bool
		name, perr = p.dequoteFilename(&tok)
		if perr {
			p.DiscardUntilEndOfDirective()
			return
		}
		haveName = true
		p.Lex(&tok)
	}
	if tok.IsNot(lexer.Kind_EOM) && tok.IsNot(lexer.Kind_EOF) {
		p.diags.Report(tok.Loc, diag.ErrLineExpectsFilename).Emit()
		p.DiscardUntilEndOfDirective()
		return
	}

	p.applyLineNote(tok.Loc, line, name, haveName)
}

// handleDigitDirective processes the GNU "# 42 file flags" marker emitted
// by preprocessed output. Flags are accepted and ignored.
func (p *Preprocessor) handleDigitDirective(numTok *lexer.Token) {
	line, ok := p.parseLineNumber(numTok)
	if !ok {
		p.DiscardUntilEndOfDirective()
		return
	}
	var tok lexer.Token
	name := ""
	haveName := false
	p.LexUnexpandedToken(&tok)
	if tok.Is(lexer.Kind_StringLiteral) {
		var perr bool
		name, perr = p.dequoteFilename(&tok)
		if perr {
			p.DiscardUntilEndOfDirective()
			return
		}
		haveName = true
		// Swallow the enter/leave/system flags.
		for {
			p.LexUnexpandedToken(&tok)
			if tok.Is(lexer.Kind_EOM) || tok.Is(lexer.Kind_EOF) {
				break
			}
			if tok.IsNot(lexer.Kind_NumericConstant) {
				p.diags.Report(tok.Loc, diag.ErrLineExpectsFilename).Emit()
				p.DiscardUntilEndOfDirective()
				return
			}
		}
	} else if tok.IsNot(lexer.Kind_EOM) && tok.IsNot(lexer.Kind_EOF) {
		p.diags.Report(tok.Loc, diag.ErrLineExpectsFilename).Emit()
		p.DiscardUntilEndOfDirective()
		return
	}
	p.applyLineNote(tok.Loc, line, name, haveName)
}

func (p *Preprocessor) parseLineNumber(tok *lexer.Token) (int, bool) {
	spelling := p.Spelling(tok)
	val, err := strconv.ParseUint(spelling, 10, 64)
	if err != nil {
		p.diags.Report(tok.Loc, diag.ErrLineExpectsInteger).Emit()
		return 0, false
	}
	// C99 6.10.4p3: the line number may not be zero or exceed 2147483647.
	if val == 0 || val > 2147483647 {
		p.diags.Report(tok.Loc, diag.ErrLineValueOutOfRange).Emit()
		return 0, false
	}
	return int(val), true
}

func (p *Preprocessor) dequoteFilename(tok *lexer.Token) (string, bool) {
	s := p.Spelling(tok)
	if len(s) < 2 || s[0] != '"' {
		p.diags.Report(tok.Loc, diag.ErrLineExpectsFilename).Emit()
		return "", true
	}
	return s[1 : len(s)-1], false
}

// applyLineNote records the presumed-location override starting after the
// directive. eomLoc is still on the directive's own line, so the stored
// line is off by one from the requested value.
func (p *Preprocessor) applyLineNote(eomLoc source.Location, line int, name string, haveName bool) {
	fid, offset := p.sm.Decompose(eomLoc)
	if !fid.Valid() {
		return
	}
	if !haveName {
		name = ""
	}
	p.sm.AddLineNote(fid, int(offset), line-1, name)
}

// handleUserDiagnosticDirective implements #error and #warning: the rest
// of the line, unexpanded, becomes the message.
func (p *Preprocessor) handleUserDiagnosticDirective(tok *lexer.Token, isWarning bool) {
	loc := tok.Loc
	var sb strings.Builder
	var t lexer.Token
	for {
		p.LexUnexpandedToken(&t)
		if t.Is(lexer.Kind_EOM) || t.Is(lexer.Kind_EOF) {
			break
		}
		if sb.Len() > 0 && t.LeadingSpace() {
			sb.WriteByte(' ')
		}
		sb.WriteString(p.Spelling(&t))
	}
	if isWarning {
		p.diags.Report(loc, diag.ExtPPWarningDirective).AddString(sb.String()).Emit()
	} else {
		p.diags.Report(loc, diag.ErrPPErrorDirective).AddString(sb.String()).Emit()
	}
}

// handleIdentSCCSDirective checks #ident/#sccs shape and otherwise ignores
// them.
func (p *Preprocessor) handleIdentSCCSDirective(tok *lexer.Token) {
	var t lexer.Token
	p.Lex(&t)
	if t.IsNot(lexer.Kind_StringLiteral) {
		p.diags.Report(t.Loc, diag.ErrIdentExpectsString).Emit()
		if t.IsNot(lexer.Kind_EOM) {
			p.DiscardUntilEndOfDirective()
		}
		return
	}
	p.CheckEndOfDirective("ident")
}
