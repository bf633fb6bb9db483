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
	"strings"

	"github.com/EngFlow/ccfront/internal/diag"
	"github.com/EngFlow/ccfront/internal/lexer"
	"github.com/EngFlow/ccfront/internal/source"
)

// handleMacroExpandedIdentifier begins expansion of mi, named by tok. For a
// function-like macro the '(' has already been peeked into the pushback.
// It reports whether tok now holds a token to deliver; false means a token
// lexer was pushed and lexing should continue.
func (p *Preprocessor) handleMacroExpandedIdentifier(tok *lexer.Token, mi *MacroInfo) bool {
	if mi.IsBuiltin {
		mi.IsUsed = true
		return p.expandBuiltinMacro(tok)
	}

	var args *MacroArgs
	if mi.IsFunctionLike() {
		args = p.readMacroCallArgumentList(tok, mi)
		if args == nil {
			// Malformed invocation: the name is returned as a plain
			// identifier.
			return true
		}
	}
	mi.IsUsed = true

	if len(mi.ReplacementToks) == 0 {
		// The macro vanishes; its whitespace sticks to whatever follows.
		startOfLine := tok.StartOfLine()
		leadingSpace := tok.LeadingSpace()
		p.Lex(tok)
		if startOfLine {
			tok.SetFlag(lexer.FlagStartOfLine)
		}
		if leadingSpace {
			tok.SetFlag(lexer.FlagLeadingSpace)
		}
		return true
	}

	if mi.IsObjectLike() && len(mi.ReplacementToks) == 1 {
		body := &mi.ReplacementToks[0]
		if body.Info == nil || !body.Info.HasMacro {
			// Single non-macro token: substitute in place, no token lexer.
			nameLoc := tok.Loc
			flags := tok.Flags & (lexer.FlagStartOfLine | lexer.FlagLeadingSpace)
			*tok = *body
			tok.Loc = p.sm.InstantiationLoc(body.Loc, nameLoc)
			tok.Flags = (body.Flags &^ (lexer.FlagStartOfLine | lexer.FlagLeadingSpace)) | flags
			return true
		}
	}

	p.EnterMacro(*tok, mi, args)
	return false
}

// readMacroCallArgumentList collects the parenthesized actual arguments of
// a function-like invocation. The opening '(' sits in the pushback. It
// returns nil after diagnosing a malformed call.
func (p *Preprocessor) readMacroCallArgumentList(nameTok *lexer.Token, mi *MacroInfo) *MacroArgs {
	var tok lexer.Token
	p.Lex(&tok) // the '('

	numParams := mi.NumParams()
	var flat []lexer.Token
	numActuals := 0
	parenDepth := 0
	tooManyReported := false
	lastArgStart := 0

	p.inMacroArgs = true
	defer func() { p.inMacroArgs = false }()

collect:
	for {
		p.LexUnexpandedToken(&tok)
		switch {
		case tok.Is(lexer.Kind_EOF):
			p.diags.Report(nameTok.Loc, diag.ErrUnterminatedMacroInvocation).
				AddIdent(nameTok.Info.Name()).Emit()
			p.pushbackToken(tok)
			return nil

		case tok.Is(lexer.Kind_Hash) && tok.StartOfLine():
			p.diags.Report(tok.Loc, diag.ErrEmbeddedDirectiveInMacroArg).Emit()
			return nil

		case tok.Is(lexer.Kind_RParen):
			if parenDepth == 0 {
				break collect
			}
			parenDepth--
			flat = append(flat, tok)

		case tok.Is(lexer.Kind_LParen):
			parenDepth++
			flat = append(flat, tok)

		case tok.Is(lexer.Kind_Comma) && parenDepth == 0:
			// A comma inside the variadic slot is part of the argument.
			if mi.IsVariadic() && numActuals >= numParams-1 {
				flat = append(flat, tok)
				continue
			}
			if !mi.IsVariadic() && numActuals+1 >= numParams {
				if !tooManyReported {
					p.diags.Report(tok.Loc, diag.ErrTooManyMacroArgs).
						AddIdent(nameTok.Info.Name()).Emit()
					tooManyReported = true
				}
				flat = append(flat, tok)
				continue
			}
			flat = append(flat, argSeparator(&tok))
			numActuals++
			lastArgStart = len(flat)

		default:
			flat = append(flat, tok)
		}
	}

	// Close the final argument.
	flat = append(flat, argSeparator(&tok))
	numActuals++

	if numParams == 0 && numActuals == 1 && lastArgStart == 0 && len(flat) == 1 {
		// M() for a zero-parameter macro: the lone empty actual is no
		// argument at all.
		return newMacroArgs(nil, 0, false)
	}

	varargsElided := false
	if numActuals < numParams {
		if mi.IsVariadic() && numActuals+1 == numParams {
			// The variadic slot may be omitted entirely: M(a) for M(a,...).
			flat = append(flat, argSeparator(&tok))
			numActuals++
			varargsElided = true
		} else {
			p.diags.Report(tok.Loc, diag.ErrTooFewMacroArgs).
				AddIdent(nameTok.Info.Name()).Emit()
			return nil
		}
	}
	return newMacroArgs(flat, numActuals, varargsElided)
}

func argSeparator(at *lexer.Token) lexer.Token {
	return lexer.Token{Kind: lexer.Kind_EOF, Loc: at.Loc}
}

// expandTokenStream runs toks through the preprocessor in isolation and
// returns the fully expanded result. Used for argument pre-expansion.
func (p *Preprocessor) expandTokenStream(toks []lexer.Token) []lexer.Token {
	stream := make([]lexer.Token, len(toks), len(toks)+1)
	copy(stream, toks)
	stream = append(stream, lexer.Token{Kind: lexer.Kind_EOF})

	depth := len(p.stack)
	p.EnterTokenStream(stream)

	var result []lexer.Token
	var tok lexer.Token
	for {
		p.Lex(&tok)
		if tok.Is(lexer.Kind_EOF) {
			break
		}
		result = append(result, tok)
	}
	for len(p.stack) > depth {
		p.handleEndOfMacro()
	}
	return result
}

// stringifyArgument renders toks as a string-constant token per the #
// operator rules, or as a character constant for the #@ extension: one
// space between tokens that were whitespace-separated, quotes and
// backslashes inside literals re-escaped.
func (p *Preprocessor) stringifyArgument(toks []lexer.Token, hashLoc source.Location, charify bool) lexer.Token {
	var sb strings.Builder
	for i := range toks {
		t := &toks[i]
		if i != 0 && (t.LeadingSpace() || t.StartOfLine()) {
			sb.WriteByte(' ')
		}
		s := p.Spelling(t)
		if t.Is(lexer.Kind_StringLiteral) || t.Is(lexer.Kind_CharConstant) {
			s = escapeForStringize(s)
		}
		sb.WriteString(s)
	}
	body := sb.String()

	// A trailing backslash would glue onto the closing quote.
	if strings.HasSuffix(body, "\\") {
		p.diags.Report(hashLoc, diag.ErrStrayBackslashInStringize).Emit()
		body = body[:len(body)-1]
	}

	var text string
	kind := lexer.Kind_StringLiteral
	if charify {
		kind = lexer.Kind_CharConstant
		if len(body) != 1 {
			p.diags.Report(hashLoc, diag.ErrCharifyNotOneChar).Emit()
			if body == "" {
				body = " "
			}
		}
		if body == "'" || body == "\\" {
			body = "\\" + body
		}
		text = "'" + body + "'"
	} else {
		text = "\"" + body + "\""
	}

	spellLoc := p.scratch.GetToken([]byte(text))
	return lexer.Token{
		Kind:   kind,
		Loc:    p.sm.InstantiationLoc(spellLoc, hashLoc),
		Length: uint32(len(text)),
	}
}

func escapeForStringize(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
