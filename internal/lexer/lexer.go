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

// Package lexer turns a source buffer into C-family tokens, one per call.
// Trigraphs and escaped newlines are decoded lazily; tokens whose source
// bytes disagree with their cleaned form carry FlagNeedsCleaning and are
// fixed up only when their spelling is requested. The package also owns the
// interned identifier table and the per-lexer conditional (#if) stack the
// preprocessor maintains.
package lexer

import (
	"strings"

	"github.com/EngFlow/ccfront/internal/diag"
	"github.com/EngFlow/ccfront/internal/lang"
	"github.com/EngFlow/ccfront/internal/source"
)

// PPConditionalInfo records one live #if/#ifdef/#ifndef region in a file.
type PPConditionalInfo struct {
	IfLoc        source.Location // location of the directive that opened it
	WasSkipping  bool            // the region was entered while already skipping
	FoundNonSkip bool            // some branch of this conditional was taken
	FoundElse    bool            // an #else was seen; a second one is an error
}

// Lexer scans one buffer. The preprocessor owns a stack of these plus token
// lexers; only the stack top is active at a time.
type Lexer struct {
	sm     *source.SourceManager
	diags  *diag.Engine
	opts   lang.Options
	idents *Table

	fid     source.FileID
	buf     []byte
	cur     int
	fileLoc source.Location // location of buf[0]

	// Mode bits, toggled by the preprocessor.

	// ParsingPreprocessorDirective makes an unescaped newline produce EOM.
	ParsingPreprocessorDirective bool
	// ParsingFilename treats <...> as a single header-name token.
	ParsingFilename bool
	// RawMode suppresses identifier lookup, diagnostics and all
	// macro-related bookkeeping. Used while skipping #if regions and for
	// ## re-lexing.
	RawMode bool
	// IsPragmaLexer marks the lexer created for a _Pragma operand.
	IsPragmaLexer bool

	atLineStart  bool
	leadingSpace bool

	conditionals []PPConditionalInfo

	// MIOpt watches the file's shape for the #ifndef guard idiom.
	MIOpt MultipleIncludeOpt
}

// New returns a lexer over the given file. idents may be nil for raw-only
// lexers.
func New(sm *source.SourceManager, diags *diag.Engine, opts lang.Options, idents *Table, fid source.FileID) *Lexer {
	return &Lexer{
		sm:          sm,
		diags:       diags,
		opts:        opts,
		idents:      idents,
		fid:         fid,
		buf:         sm.Buffer(fid),
		fileLoc:     sm.LocForOffset(fid, 0),
		atLineStart: true,
	}
}

// FileID returns the buffer this lexer scans.
func (l *Lexer) FileID() source.FileID { return l.fid }

// LocForOffset returns the location of buf[offset].
func (l *Lexer) LocForOffset(offset int) source.Location {
	return l.fileLoc.WithOffset(offset)
}

func (l *Lexer) diag(offset int, id diag.ID) *diag.Builder {
	return l.diags.Report(l.LocForOffset(offset), id)
}

// Conditional stack, owned by the preprocessor.

func (l *Lexer) PushConditionalLevel(info PPConditionalInfo) {
	l.conditionals = append(l.conditionals, info)
}

// PopConditionalLevel removes the innermost conditional; false if none.
func (l *Lexer) PopConditionalLevel() (PPConditionalInfo, bool) {
	if len(l.conditionals) == 0 {
		return PPConditionalInfo{}, false
	}
	info := l.conditionals[len(l.conditionals)-1]
	l.conditionals = l.conditionals[:len(l.conditionals)-1]
	return info, true
}

// PeekConditionalLevel returns a pointer to the innermost live conditional.
func (l *Lexer) PeekConditionalLevel() (*PPConditionalInfo, bool) {
	if len(l.conditionals) == 0 {
		return nil, false
	}
	return &l.conditionals[len(l.conditionals)-1], true
}

func (l *Lexer) ConditionalDepth() int { return len(l.conditionals) }

// charAndSize decodes the character at pos, resolving trigraphs and escaped
// newlines. size is the number of source bytes the character occupies; it is
// greater than one exactly when cleaning happened.
func charAndSize(buf []byte, pos int, trigraphs bool) (byte, int) {
	if pos >= len(buf) {
		return 0, 0
	}
	c := buf[pos]
	if c == '\\' {
		if n := spliceLength(buf, pos); n > 0 {
			c2, sz := charAndSize(buf, pos+n, trigraphs)
			return c2, n + sz
		}
		return c, 1
	}
	if c == '?' && trigraphs && pos+2 < len(buf) && buf[pos+1] == '?' {
		if t := trigraphChar(buf[pos+2]); t != 0 {
			if t == '\\' {
				if n := spliceLength(buf, pos+2); n > 0 {
					// Trigraph backslash followed by a newline splices too.
					c2, sz := charAndSize(buf, pos+2+n, trigraphs)
					return c2, 2 + n + sz
				}
			}
			return t, 3
		}
	}
	return c, 1
}

// spliceLength returns the byte length of the escaped-newline sequence at
// pos (a backslash, optional horizontal whitespace, then a newline), or 0 if
// pos does not begin one. pos points at the backslash itself.
func spliceLength(buf []byte, pos int) int {
	i := pos + 1
	for i < len(buf) && isHorizontalWhitespace(buf[i]) {
		i++
	}
	if i >= len(buf) {
		return 0
	}
	switch buf[i] {
	case '\n':
		if i+1 < len(buf) && buf[i+1] == '\r' {
			return i + 2 - pos
		}
		return i + 1 - pos
	case '\r':
		if i+1 < len(buf) && buf[i+1] == '\n' {
			return i + 2 - pos
		}
		return i + 1 - pos
	}
	return 0
}

func trigraphChar(c byte) byte {
	switch c {
	case '=':
		return '#'
	case ')':
		return ']'
	case '(':
		return '['
	case '!':
		return '|'
	case '\'':
		return '^'
	case '>':
		return '}'
	case '/':
		return '\\'
	case '<':
		return '{'
	case '-':
		return '~'
	}
	return 0
}

// getCharAndSize is charAndSize plus the trigraph diagnostics that only fire
// outside raw mode.
func (l *Lexer) getCharAndSize(pos int) (byte, int) {
	if pos < len(l.buf) && l.buf[pos] == '?' && pos+2 < len(l.buf) && l.buf[pos+1] == '?' {
		if t := trigraphChar(l.buf[pos+2]); t != 0 && !l.RawMode {
			if l.opts.Trigraphs {
				l.diag(pos, diag.WarnTrigraphConverted).AddString(string(t)).Emit()
			} else {
				l.diag(pos, diag.WarnTrigraphIgnored).Emit()
			}
		}
	}
	return charAndSize(l.buf, pos, l.opts.Trigraphs)
}

// consume advances past the character at l.cur, marking tok as needing
// cleaning when the character occupied more than one byte.
func (l *Lexer) consume(tok *Token) byte {
	c, sz := l.getCharAndSize(l.cur)
	l.cur += sz
	if sz > 1 && tok != nil {
		tok.SetFlag(FlagNeedsCleaning)
	}
	return c
}

func (l *Lexer) formToken(tok *Token, start int, kind Kind) {
	tok.Kind = kind
	tok.Loc = l.LocForOffset(start)
	tok.Length = uint32(l.cur - start)
	tok.Info = nil
	if l.atLineStart {
		tok.SetFlag(FlagStartOfLine)
	}
	if l.leadingSpace {
		tok.SetFlag(FlagLeadingSpace)
	}
	l.atLineStart = false
	l.leadingSpace = false
	if kind != Kind_EOF && kind != Kind_EOM && !l.RawMode {
		l.MIOpt.ReadToken()
	}
}

// Lex scans the next token into tok. It never fails: problems are reported
// through the diagnostic engine and a best-effort token is produced.
func (l *Lexer) Lex(tok *Token) {
	tok.Flags = 0
	tok.Info = nil

	for {
		start := l.cur
		if l.cur >= len(l.buf) {
			l.lexEndOfBuffer(tok, start)
			return
		}

		c := l.buf[l.cur]
		switch {
		case c == '\n' || c == '\r':
			if l.ParsingPreprocessorDirective {
				// The newline stays unconsumed so the caller sees a fresh
				// line; clear directive mode for the next token.
				l.ParsingPreprocessorDirective = false
				l.formToken(tok, start, Kind_EOM)
				l.cur++
				l.atLineStart = true
				l.leadingSpace = false
				return
			}
			l.cur++
			l.atLineStart = true
			l.leadingSpace = false
			continue

		case isHorizontalWhitespace(c):
			for l.cur < len(l.buf) && isHorizontalWhitespace(l.buf[l.cur]) {
				l.cur++
			}
			l.leadingSpace = true
			continue

		case c == '/':
			c2, sz2 := l.getCharAndSize(l.cur + 1)
			if c2 == '/' {
				if !l.opts.BCPLComment && !l.RawMode {
					l.diag(start, diag.ExtLineComment).Emit()
				}
				l.cur++
				l.skipLineComment(1 + sz2)
				l.leadingSpace = true
				continue
			}
			if c2 == '*' {
				l.cur++
				if l.skipBlockComment(1 + sz2) {
					l.leadingSpace = true
					continue
				}
				// Unterminated comment: give up on the rest of the buffer.
				l.lexEndOfBuffer(tok, l.cur)
				return
			}
			l.lexPunctuator(tok, start)
			return

		case isDigit(c):
			l.lexNumericConstant(tok, start)
			return

		case c == 'L':
			// Maybe a wide character or string literal; otherwise an
			// ordinary identifier.
			c2, sz2 := l.getCharAndSize(l.cur + 1)
			if c2 == '\'' {
				l.cur += 1 + sz2
				l.lexCharConstant(tok, start)
				return
			}
			if c2 == '"' {
				l.cur += 1 + sz2
				l.lexStringLiteral(tok, start, '"')
				return
			}
			l.lexIdentifier(tok, start)
			return

		case isIdentifierStart(c) || (c == '$' && l.opts.DollarIdents):
			if c == '$' && !l.RawMode {
				l.diag(start, diag.ExtDollarInIdentifier).Emit()
			}
			l.lexIdentifier(tok, start)
			return

		case c == '\'':
			l.cur++
			l.lexCharConstant(tok, start)
			return

		case c == '"':
			l.cur++
			l.lexStringLiteral(tok, start, '"')
			return

		case c == '<' && l.ParsingFilename:
			l.cur++
			l.lexAngledStringLiteral(tok, start)
			return

		case c == '?' || c == '\\':
			// Needs cleaning before it can be classified.
			cc, sz := l.getCharAndSize(l.cur)
			if sz == 1 && cc == c {
				l.lexPunctuator(tok, start)
				return
			}
			if cc == 0 && l.cur+sz >= len(l.buf) {
				// Escaped newline at end of buffer.
				l.cur += sz
				continue
			}
			l.lexCleanedToken(tok, start, cc, sz)
			return

		default:
			l.lexPunctuator(tok, start)
			return
		}
	}
}

// lexCleanedToken re-dispatches on a character that needed cleaning.
func (l *Lexer) lexCleanedToken(tok *Token, start int, c byte, size int) {
	tok.SetFlag(FlagNeedsCleaning)
	l.cur += size
	switch {
	case isIdentifierStart(c):
		l.lexIdentifierSlow(tok, start)
	case isDigit(c):
		l.lexNumericConstant(tok, start)
	case c == '\'':
		l.lexCharConstant(tok, start)
	case c == '"':
		l.lexStringLiteral(tok, start, '"')
	default:
		// A cleaned punctuator: rare. Re-lex it one char at a time.
		l.formToken(tok, start, punctuatorKind(c))
	}
}

func (l *Lexer) lexEndOfBuffer(tok *Token, start int) {
	if l.ParsingPreprocessorDirective {
		l.ParsingPreprocessorDirective = false
		l.formToken(tok, start, Kind_EOM)
		return
	}
	if !l.RawMode && len(l.buf) > 0 && !isVerticalWhitespace(l.buf[len(l.buf)-1]) {
		l.diag(start, diag.ExtNoNewlineAtEOF).Emit()
	}
	l.formToken(tok, start, Kind_EOF)
}

// lexIdentifier scans an identifier, taking the unrolled no-cleaning fast
// path when possible.
func (l *Lexer) lexIdentifier(tok *Token, start int) {
	l.cur++
	for l.cur < len(l.buf) && isIdentifierBody(l.buf[l.cur]) {
		l.cur++
	}
	if l.cur < len(l.buf) {
		c := l.buf[l.cur]
		if c == '\\' || c == '?' || (c == '$' && l.opts.DollarIdents) {
			cc, sz := l.getCharAndSize(l.cur)
			if isIdentifierBody(cc) || (cc == '$' && l.opts.DollarIdents) {
				tok.SetFlag(FlagNeedsCleaning)
				l.cur += sz
				l.lexIdentifierSlow(tok, start)
				return
			}
		}
	}
	l.finishIdentifier(tok, start, string(l.buf[start:l.cur]))
}

// lexIdentifierSlow continues an identifier through cleaned characters.
func (l *Lexer) lexIdentifierSlow(tok *Token, start int) {
	for {
		c, sz := l.getCharAndSize(l.cur)
		if !isIdentifierBody(c) && !(c == '$' && l.opts.DollarIdents) {
			break
		}
		if sz > 1 {
			tok.SetFlag(FlagNeedsCleaning)
		}
		l.cur += sz
	}
	l.finishIdentifier(tok, start, cleanBytes(l.buf[start:l.cur], l.opts.Trigraphs))
}

func (l *Lexer) finishIdentifier(tok *Token, start int, name string) {
	l.formToken(tok, start, Kind_Identifier)
	if l.RawMode || l.idents == nil {
		return
	}
	info := l.idents.Get(name)
	tok.Info = info
	tok.Kind = info.TokenKind
}

// lexNumericConstant scans a preprocessing number: digits, letters, periods,
// and exponent signs.
func (l *Lexer) lexNumericConstant(tok *Token, start int) {
	prev := byte(0)
	for {
		c, sz := l.getCharAndSize(l.cur)
		if !isNumberBody(c) {
			// A sign continues the number only after an exponent letter
			// (and p/P only when hex floats exist for the dialect).
			if (c != '+' && c != '-') || (prev != 'e' && prev != 'E' && prev != 'p' && prev != 'P') {
				break
			}
		}
		if sz > 1 {
			tok.SetFlag(FlagNeedsCleaning)
		}
		l.cur += sz
		prev = c
	}
	l.formToken(tok, start, Kind_NumericConstant)
}

// lexCharConstant scans a character constant; the opening quote (and any L
// prefix) is already consumed.
func (l *Lexer) lexCharConstant(tok *Token, start int) {
	first := true
	for {
		c, sz := l.getCharAndSize(l.cur)
		if c == '\'' && first {
			if !l.RawMode {
				l.diag(start, diag.ErrEmptyCharConstant).Emit()
			}
			l.cur += sz
			l.formToken(tok, start, Kind_Unknown)
			return
		}
		first = false
		switch {
		case c == '\'':
			l.cur += sz
			if sz > 1 {
				tok.SetFlag(FlagNeedsCleaning)
			}
			l.formToken(tok, start, Kind_CharConstant)
			return
		case c == '\\':
			if sz > 1 {
				tok.SetFlag(FlagNeedsCleaning)
			}
			l.cur += sz
			// The escaped character itself; consume blindly.
			_, esz := l.getCharAndSize(l.cur)
			if esz > 1 {
				tok.SetFlag(FlagNeedsCleaning)
			}
			l.cur += esz
		case c == '\n' || c == '\r' || (c == 0 && l.cur >= len(l.buf)):
			if !l.RawMode {
				l.diag(start, diag.ErrUnterminatedChar).Emit()
			}
			l.formToken(tok, start, Kind_Unknown)
			return
		default:
			if sz > 1 {
				tok.SetFlag(FlagNeedsCleaning)
			}
			l.cur += sz
		}
	}
}

// lexStringLiteral scans a string literal; the opening quote is consumed.
func (l *Lexer) lexStringLiteral(tok *Token, start int, terminator byte) {
	for {
		c, sz := l.getCharAndSize(l.cur)
		switch {
		case c == terminator:
			l.cur += sz
			if sz > 1 {
				tok.SetFlag(FlagNeedsCleaning)
			}
			l.formToken(tok, start, Kind_StringLiteral)
			return
		case c == '\\':
			if sz > 1 {
				tok.SetFlag(FlagNeedsCleaning)
			}
			l.cur += sz
			_, esz := l.getCharAndSize(l.cur)
			if esz > 1 {
				tok.SetFlag(FlagNeedsCleaning)
			}
			l.cur += esz
		case c == '\n' || c == '\r' || (c == 0 && l.cur >= len(l.buf)):
			if !l.RawMode {
				l.diag(start, diag.ErrUnterminatedString).Emit()
			}
			l.formToken(tok, start, Kind_Unknown)
			return
		default:
			if sz > 1 {
				tok.SetFlag(FlagNeedsCleaning)
			}
			l.cur += sz
		}
	}
}

// lexAngledStringLiteral scans <...> as one token in filename mode.
func (l *Lexer) lexAngledStringLiteral(tok *Token, start int) {
	for {
		c, sz := l.getCharAndSize(l.cur)
		switch {
		case c == '>':
			l.cur += sz
			l.formToken(tok, start, Kind_AngleString)
			return
		case c == '\n' || c == '\r' || (c == 0 && l.cur >= len(l.buf)):
			if !l.RawMode {
				l.diag(start, diag.ErrExpectedHeaderName).Emit()
			}
			l.formToken(tok, start, Kind_Unknown)
			return
		default:
			if sz > 1 {
				tok.SetFlag(FlagNeedsCleaning)
			}
			l.cur += sz
		}
	}
}

// skipLineComment consumes a // comment. Escaped newlines continue the
// comment, which deserves a warning since it routinely surprises.
func (l *Lexer) skipLineComment(prefixSize int) {
	l.cur += prefixSize
	for l.cur < len(l.buf) {
		c, sz := l.getCharAndSize(l.cur)
		if c == '\n' || c == '\r' {
			if sz > 1 && !l.RawMode {
				l.diag(l.cur, diag.WarnMultiLineLineComment).Emit()
				l.cur += sz
				continue
			}
			return
		}
		l.cur += sz
	}
}

// skipBlockComment consumes a slash-star comment. Returns false when the
// comment runs off the end of the buffer.
func (l *Lexer) skipBlockComment(prefixSize int) bool {
	commentStart := l.cur - 1
	l.cur += prefixSize
	var prev byte
	for l.cur < len(l.buf) {
		c, sz := l.getCharAndSize(l.cur)
		l.cur += sz
		if prev == '*' && c == '/' {
			return true
		}
		if prev == '/' && c == '*' && !l.RawMode {
			l.diag(l.cur-sz, diag.WarnNestedBlockComment).Emit()
		}
		prev = c
	}
	if !l.RawMode {
		l.diag(commentStart, diag.ErrUnterminatedBlockComment).Emit()
	}
	return false
}

func punctuatorKind(c byte) Kind {
	switch c {
	case '(':
		return Kind_LParen
	case ')':
		return Kind_RParen
	case '[':
		return Kind_LSquare
	case ']':
		return Kind_RSquare
	case '{':
		return Kind_LBrace
	case '}':
		return Kind_RBrace
	case ';':
		return Kind_Semi
	case ',':
		return Kind_Comma
	case '~':
		return Kind_Tilde
	case '?':
		return Kind_Question
	case '@':
		return Kind_At
	case '#':
		return Kind_Hash
	case '<':
		return Kind_Less
	case '>':
		return Kind_Greater
	case '|':
		return Kind_Pipe
	case '^':
		return Kind_Caret
	case '\\':
		return Kind_Unknown
	}
	return Kind_Unknown
}

// lexPunctuator scans operators and separators, preferring maximal munch.
func (l *Lexer) lexPunctuator(tok *Token, start int) {
	c := l.consume(tok)
	var kind Kind
	switch c {
	case '(', ')', '[', ']', '{', '}', ';', ',', '~', '@':
		kind = punctuatorKind(c)
	case '?':
		kind = Kind_Question
	case '.':
		c2, sz2 := l.getCharAndSize(l.cur)
		if isDigit(c2) {
			l.lexNumericConstant(tok, start)
			return
		}
		kind = Kind_Period
		if c2 == '.' {
			c3, sz3 := l.getCharAndSize(l.cur + sz2)
			if c3 == '.' {
				l.cur += sz2 + sz3
				kind = Kind_Ellipsis
			}
		}
	case '&':
		kind = l.pick(tok, Kind_Amp, '&', Kind_AmpAmp, '=', Kind_AmpEqual)
	case '*':
		kind = l.pick(tok, Kind_Star, '=', Kind_StarEqual, 0, 0)
	case '+':
		kind = l.pick(tok, Kind_Plus, '+', Kind_PlusPlus, '=', Kind_PlusEqual)
	case '-':
		kind = l.pick(tok, Kind_Minus, '-', Kind_MinusMinus, '=', Kind_MinusEqual)
		if kind == Kind_Minus {
			if c2, sz2 := l.getCharAndSize(l.cur); c2 == '>' {
				l.cur += sz2
				kind = Kind_Arrow
			}
		}
	case '!':
		kind = l.pick(tok, Kind_Exclaim, '=', Kind_ExclaimEqual, 0, 0)
	case '/':
		kind = l.pick(tok, Kind_Slash, '=', Kind_SlashEqual, 0, 0)
	case '%':
		kind = l.pick(tok, Kind_Percent, '=', Kind_PercentEqual, 0, 0)
		if kind == Kind_Percent && l.opts.Digraphs {
			if c2, sz2 := l.getCharAndSize(l.cur); c2 == ':' {
				l.cur += sz2
				kind = Kind_Hash
			} else if c2 == '>' {
				l.cur += sz2
				kind = Kind_RBrace
			}
		}
	case '<':
		c2, sz2 := l.getCharAndSize(l.cur)
		switch c2 {
		case '<':
			l.cur += sz2
			kind = l.pick(tok, Kind_LessLess, '=', Kind_LessLessEqual, 0, 0)
		case '=':
			l.cur += sz2
			kind = Kind_LessEqual
		case '%':
			if l.opts.Digraphs {
				l.cur += sz2
				kind = Kind_LBrace
			} else {
				kind = Kind_Less
			}
		case ':':
			if l.opts.Digraphs {
				l.cur += sz2
				kind = Kind_LSquare
			} else {
				kind = Kind_Less
			}
		default:
			kind = Kind_Less
		}
	case '>':
		c2, sz2 := l.getCharAndSize(l.cur)
		switch c2 {
		case '>':
			l.cur += sz2
			kind = l.pick(tok, Kind_GreaterGreater, '=', Kind_GreaterGreaterEqual, 0, 0)
		case '=':
			l.cur += sz2
			kind = Kind_GreaterEqual
		default:
			kind = Kind_Greater
		}
	case '^':
		kind = l.pick(tok, Kind_Caret, '=', Kind_CaretEqual, 0, 0)
	case '|':
		kind = l.pick(tok, Kind_Pipe, '|', Kind_PipePipe, '=', Kind_PipeEqual)
	case ':':
		kind = Kind_Colon
		c2, sz2 := l.getCharAndSize(l.cur)
		if c2 == ':' && l.opts.CPlusPlus {
			l.cur += sz2
			kind = Kind_ColonColon
		} else if c2 == '>' && l.opts.Digraphs {
			l.cur += sz2
			kind = Kind_RSquare
		}
	case '=':
		kind = l.pick(tok, Kind_Equal, '=', Kind_EqualEqual, 0, 0)
	case '#':
		c2, sz2 := l.getCharAndSize(l.cur)
		switch {
		case c2 == '#':
			l.cur += sz2
			kind = Kind_HashHash
		case c2 == '@' && l.opts.Microsoft:
			l.cur += sz2
			kind = Kind_HashAt
		default:
			kind = Kind_Hash
		}
	default:
		if !l.RawMode {
			l.diag(start, diag.ErrInvalidCharacter).AddString(string(c)).Emit()
		}
		kind = Kind_Unknown
	}
	l.formToken(tok, start, kind)
}

// pick finishes a one-or-two character punctuator: base when neither
// alternative's second character follows.
func (l *Lexer) pick(tok *Token, base Kind, c1 byte, k1 Kind, c2 byte, k2 Kind) Kind {
	c, sz := l.getCharAndSize(l.cur)
	if c1 != 0 && c == c1 {
		l.cur += sz
		return k1
	}
	if c2 != 0 && c == c2 {
		l.cur += sz
		return k2
	}
	return base
}

// cleanBytes removes trigraphs and escaped newlines from raw source bytes.
func cleanBytes(raw []byte, trigraphs bool) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	for pos := 0; pos < len(raw); {
		c, sz := charAndSize(raw, pos, trigraphs)
		if sz == 0 {
			break
		}
		sb.WriteByte(c)
		pos += sz
	}
	return sb.String()
}

// Spelling returns the cleaned text of a token. For interned identifiers
// the name is returned directly; everything else is read back from the
// buffer the token's spelling location points into.
func Spelling(sm *source.SourceManager, opts lang.Options, tok *Token) string {
	if tok.Info != nil {
		return tok.Info.Name()
	}
	if tok.Length == 0 {
		return ""
	}
	raw := sm.CharacterData(tok.Loc)
	if int(tok.Length) > len(raw) {
		raw = raw[:len(raw):len(raw)]
	} else {
		raw = raw[:tok.Length]
	}
	if !tok.NeedsCleaning() {
		return string(raw)
	}
	return cleanBytes(raw, opts.Trigraphs)
}
