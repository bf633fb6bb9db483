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

// TokenLexer replays a pre-recorded token sequence: a macro body after
// argument substitution, or a plain token stream. The preprocessor keeps a
// stack of these interleaved with file lexers.
type TokenLexer struct {
	pp         *Preprocessor
	macro      *MacroInfo // nil for plain streams
	actualArgs *MacroArgs

	tokens []lexer.Token
	cur    int

	// instantiationLoc is where the macro name was written; every emitted
	// token's location is chained through it.
	instantiationLoc source.Location
	atStartOfLine    bool
	hasLeadingSpace  bool
}

// newMacroExpander builds the replay sequence for one invocation of mi.
func newMacroExpander(p *Preprocessor, mi *MacroInfo, nameTok lexer.Token, args *MacroArgs) *TokenLexer {
	tl := &TokenLexer{
		pp:               p,
		macro:            mi,
		actualArgs:       args,
		tokens:           mi.ReplacementToks,
		instantiationLoc: nameTok.Loc,
		atStartOfLine:    nameTok.StartOfLine(),
		hasLeadingSpace:  nameTok.LeadingSpace(),
	}
	if mi.IsFunctionLike() && args != nil {
		tl.expandFunctionArguments()
	}
	return tl
}

func newTokenStream(p *Preprocessor, toks []lexer.Token) *TokenLexer {
	return &TokenLexer{pp: p, tokens: toks}
}

// expandFunctionArguments rewrites the replacement list with the actual
// arguments substituted: parameters next to # become string literals,
// parameters next to ## are copied unexpanded, all others are substituted
// fully expanded. Empty arguments behave as placemarkers.
func (tl *TokenLexer) expandFunctionArguments() {
	mi, args := tl.macro, tl.actualArgs
	body := mi.ReplacementToks
	var result []lexer.Token
	nextTokGetsSpace := false

	appendTok := func(t lexer.Token) {
		if nextTokGetsSpace {
			t.SetFlag(lexer.FlagLeadingSpace)
			nextTokGetsSpace = false
		}
		result = append(result, t)
	}

	for i := 0; i < len(body); i++ {
		t := body[i]

		// # param and #@ param were validated at definition time.
		if (t.Is(lexer.Kind_Hash) || t.Is(lexer.Kind_HashAt)) &&
			i+1 < len(body) && body[i+1].Info != nil && mi.ParamIndex(body[i+1].Info) >= 0 {
			argIdx := mi.ParamIndex(body[i+1].Info)
			var res lexer.Token
			if t.Is(lexer.Kind_HashAt) {
				res = args.CharifiedArgument(argIdx, tl.pp, t.Loc)
			} else {
				res = args.StringifiedArgument(argIdx, tl.pp, t.Loc)
			}
			res.Flags = t.Flags & (lexer.FlagStartOfLine | lexer.FlagLeadingSpace)
			appendTok(res)
			i++
			continue
		}

		argIdx := -1
		if t.Info != nil {
			argIdx = mi.ParamIndex(t.Info)
		}
		if argIdx < 0 {
			appendTok(t)
			continue
		}

		pasteBefore := len(result) > 0 && result[len(result)-1].Is(lexer.Kind_HashHash)
		pasteAfter := i+1 < len(body) && body[i+1].Is(lexer.Kind_HashHash)

		if !pasteBefore && !pasteAfter {
			expanded := args.PreExpArgument(argIdx, tl.pp)
			if len(expanded) == 0 {
				// Placemarker: the argument vanished, its whitespace moves
				// to the next real token.
				if t.LeadingSpace() {
					nextTokGetsSpace = true
				}
				continue
			}
			first := len(result)
			for _, at := range expanded {
				appendTok(at)
			}
			result[first].Flags = (result[first].Flags &^
				(lexer.FlagStartOfLine | lexer.FlagLeadingSpace)) |
				(t.Flags & (lexer.FlagStartOfLine | lexer.FlagLeadingSpace))
			continue
		}

		// Paste operand: the argument is used unexpanded.
		unexp := args.UnexpArgument(argIdx)
		if len(unexp) > 0 {
			first := len(result)
			for _, at := range unexp {
				appendTok(at)
			}
			result[first].Flags = (result[first].Flags &^
				(lexer.FlagStartOfLine | lexer.FlagLeadingSpace)) |
				(t.Flags & (lexer.FlagStartOfLine | lexer.FlagLeadingSpace))
			continue
		}

		// Empty paste operand: placemarker rules.
		switch {
		case pasteBefore && pasteAfter:
			// X ## <empty> ## Y collapses to X ## Y: drop one operator.
			i++
		case pasteBefore:
			result = result[:len(result)-1] // drop the ##
			// GNU , ## __VA_ARGS__ with no varargs also eats the comma.
			if mi.IsVariadic() && argIdx == mi.NumParams()-1 &&
				len(result) > 0 && result[len(result)-1].Is(lexer.Kind_Comma) {
				result = result[:len(result)-1]
				tl.pp.diags.Report(t.Loc, diag.ExtPasteComma).Emit()
			}
		default: // pasteAfter only
			// <empty> ## Y is just Y: swallow the operator.
			i++
		}
	}

	tl.tokens = result
}

// Lex produces the next replayed token. It returns false when the sequence
// is exhausted; the preprocessor then re-enables the macro and pops.
func (tl *TokenLexer) Lex(tok *lexer.Token) bool {
	if tl.cur >= len(tl.tokens) {
		return false
	}
	isFirst := tl.cur == 0
	*tok = tl.tokens[tl.cur]
	tl.cur++

	if tl.macro != nil &&
		tl.cur < len(tl.tokens) && tl.tokens[tl.cur].Is(lexer.Kind_HashHash) {
		tl.pasteTokens(tok)
	}

	if tl.macro != nil && tok.Loc.Valid() {
		tok.Loc = tl.pp.sm.InstantiationLoc(tok.Loc, tl.instantiationLoc)
	}

	if isFirst {
		if tl.atStartOfLine {
			tok.SetFlag(lexer.FlagStartOfLine)
		} else {
			tok.ClearFlag(lexer.FlagStartOfLine)
		}
		if tl.hasLeadingSpace {
			tok.SetFlag(lexer.FlagLeadingSpace)
		}
	} else {
		// A macro expansion is one logical line.
		tok.ClearFlag(lexer.FlagStartOfLine)
	}
	return true
}

// pasteTokens folds every following "## rhs" pair into tok by spelling
// both sides into a scratch buffer and re-lexing the concatenation.
func (tl *TokenLexer) pasteTokens(tok *lexer.Token) {
	p := tl.pp
	for tl.cur < len(tl.tokens) && tl.tokens[tl.cur].Is(lexer.Kind_HashHash) {
		hashLoc := tl.tokens[tl.cur].Loc
		tl.cur++
		rhs := tl.tokens[tl.cur]
		tl.cur++

		// Microsoft /##/ pastes into a comment, swallowing the rest of the
		// expansion.
		if p.opts.Microsoft && tok.Is(lexer.Kind_Slash) && rhs.Is(lexer.Kind_Slash) {
			p.diags.Report(hashLoc, diag.ExtTokenPasteComment).Emit()
			tl.cur = len(tl.tokens)
			return
		}

		text := p.Spelling(tok) + p.Spelling(&rhs)
		buf := make([]byte, len(text)+1)
		copy(buf, text)
		buf[len(text)] = '\n'
		fid := p.sm.CreateBufferFileID("<scratch space>", buf)

		rl := lexer.New(p.sm, p.diags, p.opts, nil, fid)
		rl.RawMode = true
		var pasted lexer.Token
		rl.Lex(&pasted)

		if pasted.Is(lexer.Kind_Unknown) || pasted.Is(lexer.Kind_EOF) ||
			int(pasted.Length) != len(text) {
			p.diags.Report(hashLoc, diag.ErrInvalidPasteResult).AddString(text).Emit()
			// Keep both operands as separate tokens.
			tl.cur--
			return
		}

		flags := tok.Flags & (lexer.FlagStartOfLine | lexer.FlagLeadingSpace)
		*tok = pasted
		tok.Flags = flags
		if tok.Is(lexer.Kind_Identifier) {
			info := p.idents.Get(text)
			tok.Info = info
			tok.Kind = info.TokenKind
		}
	}
}
