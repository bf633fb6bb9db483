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

	"github.com/EngFlow/ccfront/internal/diag"
	"github.com/EngFlow/ccfront/internal/lexer"
	"github.com/EngFlow/ccfront/internal/source"
)

// registerBuiltinMacros binds the magic macros. Their expansions are
// synthesized in ExpandBuiltinMacro rather than substituted from a body.
func (p *Preprocessor) registerBuiltinMacros() {
	builtin := func(name string) *lexer.Info {
		info := p.idents.Get(name)
		mi := NewMacroInfo(source.Location(0))
		mi.IsBuiltin = true
		p.setMacro(info, mi)
		return info
	}
	p.identLINE = builtin("__LINE__")
	p.identFILE = builtin("__FILE__")
	p.identDATE = builtin("__DATE__")
	p.identTIME = builtin("__TIME__")
	p.identTimestamp = builtin("__TIMESTAMP__")
	p.identBaseFile = builtin("__BASE_FILE__")
	p.identInclLevel = builtin("__INCLUDE_LEVEL__")
	p.identCounter = builtin("__COUNTER__")
	p.identPragmaOp = builtin("_Pragma")
}

// expandBuiltinMacro rewrites tok in place with the builtin's value, or
// begins _Pragma processing. It reports whether tok holds a token to
// deliver.
func (p *Preprocessor) expandBuiltinMacro(tok *lexer.Token) bool {
	info := tok.Info
	if info == p.identPragmaOp {
		p.handlePragmaOperator(tok)
		return false
	}

	// Builtins report the place the name was written, after any #line.
	loc := p.sm.InstantiationSite(tok.Loc)

	var text string
	isString := false
	switch info {
	case p.identLINE:
		_, line, _ := p.sm.PresumedLoc(loc)
		text = strconv.Itoa(line)
	case p.identFILE:
		name, _, _ := p.sm.PresumedLoc(loc)
		text = strconv.Quote(name)
		isString = true
	case p.identBaseFile:
		fid, _ := p.sm.Decompose(loc)
		for fid.Valid() {
			incLoc := p.sm.IncludeLoc(fid)
			if !incLoc.Valid() {
				break
			}
			fid, _ = p.sm.Decompose(incLoc)
		}
		text = strconv.Quote(p.sm.Name(fid))
		isString = true
	case p.identDATE:
		if p.dateStr == "" {
			now := p.Now()
			p.dateStr = now.Format("Jan _2 2006")
			p.timeStr = now.Format("15:04:05")
		}
		text = strconv.Quote(p.dateStr)
		isString = true
	case p.identTIME:
		if p.timeStr == "" {
			now := p.Now()
			p.dateStr = now.Format("Jan _2 2006")
			p.timeStr = now.Format("15:04:05")
		}
		text = strconv.Quote(p.timeStr)
		isString = true
	case p.identTimestamp:
		text = strconv.Quote(p.Now().Format("Mon Jan  2 15:04:05 2006"))
		isString = true
	case p.identInclLevel:
		text = strconv.Itoa(p.includeDepth())
	case p.identCounter:
		text = strconv.Itoa(p.counter)
		p.counter++
	default:
		return true
	}

	p.synthesizeToken(tok, text, isString)
	return true
}

// synthesizeToken replaces tok with one spelled in the scratch space, its
// location chained to the original token.
func (p *Preprocessor) synthesizeToken(tok *lexer.Token, text string, isString bool) {
	spellLoc := p.scratch.GetToken([]byte(text))
	kind := lexer.Kind_NumericConstant
	if isString {
		kind = lexer.Kind_StringLiteral
	}
	flags := tok.Flags & (lexer.FlagStartOfLine | lexer.FlagLeadingSpace)
	*tok = lexer.Token{
		Kind:   kind,
		Loc:    p.sm.InstantiationLoc(spellLoc, tok.Loc),
		Length: uint32(len(text)),
		Flags:  flags,
	}
}

// handlePragmaOperator implements the C99 _Pragma operator: the string
// operand is de-escaped and replayed as a #pragma directive.
func (p *Preprocessor) handlePragmaOperator(nameTok *lexer.Token) {
	var tok lexer.Token
	p.Lex(&tok)
	if tok.IsNot(lexer.Kind_LParen) {
		p.diags.Report(tok.Loc, diag.ErrPragmaOperatorExpectsString).Emit()
		p.pushbackToken(tok)
		return
	}
	var strTok lexer.Token
	p.Lex(&strTok)
	if strTok.IsNot(lexer.Kind_StringLiteral) {
		p.diags.Report(strTok.Loc, diag.ErrPragmaOperatorExpectsString).Emit()
		p.pushbackToken(strTok)
		return
	}
	p.Lex(&tok)
	if tok.IsNot(lexer.Kind_RParen) {
		p.diags.Report(tok.Loc, diag.ErrExpectedRParen).Emit()
		p.pushbackToken(tok)
		return
	}

	contents := pragmaStringContents(p.Spelling(&strTok))

	// Replay as a one-line pragma directive body through a dedicated lexer.
	fid := p.sm.CreateBufferFileID("<_Pragma>", []byte(contents+"\n"))
	p.enterSourceFile(fid, -1)
	p.curLexer.IsPragmaLexer = true
	p.curLexer.ParsingPreprocessorDirective = true
	p.handlePragmaDirective()
}

// pragmaStringContents strips the quotes (and L prefix) and undoes the two
// escapes C99 6.10.9 defines for the _Pragma operand.
func pragmaStringContents(s string) string {
	if len(s) > 0 && s[0] == 'L' {
		s = s[1:]
	}
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
			i++
		}
		out = append(out, s[i])
	}
	return string(out)
}
