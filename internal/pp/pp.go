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

// Package pp implements the C preprocessor: macro definition and expansion,
// conditional compilation, file inclusion and the directive set, layered on
// top of the raw lexer. Its Lex method is the token source the parser sees.
package pp

import (
	"path/filepath"
	"time"

	"github.com/EngFlow/ccfront/internal/diag"
	"github.com/EngFlow/ccfront/internal/lang"
	"github.com/EngFlow/ccfront/internal/lexer"
	"github.com/EngFlow/ccfront/internal/source"
)

// maxIncludeDepth bounds #include nesting to catch cycles.
const maxIncludeDepth = 200

// ppEntry is one level of the include/expansion stack. Exactly one of
// fileLexer and tokenLexer is non-nil.
type ppEntry struct {
	fileLexer  *lexer.Lexer
	tokenLexer *TokenLexer
	dirIdx     int // search-path slot the file was found in, -1 if none
}

// Preprocessor drives lexing of the whole translation unit.
type Preprocessor struct {
	diags   *diag.Engine
	opts    lang.Options
	sm      *source.SourceManager
	fm      *source.FileManager
	headers *HeaderSearch
	idents  *lexer.Table

	// macros binds defined identifiers to their definitions. Info.HasMacro
	// is the fast-path bit; an identifier is in this map iff it is set.
	macros map[*lexer.Info]*MacroInfo

	stack         []ppEntry
	curLexer      *lexer.Lexer // top of stack when it is a file lexer
	curTokenLexer *TokenLexer  // top of stack when it is a token lexer
	curDirIdx     int

	// pushback holds peeked-ahead tokens, returned LIFO before the stack
	// top is consulted.
	pushback []lexer.Token

	// disableMacroExpansion is set while reading directive names, #if
	// operands of defined, and other spots that need raw identifiers.
	disableMacroExpansion bool
	// inMacroArgs is set while collecting a function-like invocation's
	// arguments.
	inMacroArgs bool

	scratch *scratchBuffer

	// pendingOMP queues the token bodies of #pragma omp directives; the
	// parser drains it when it sees the annotation token.
	pendingOMP [][]lexer.Token

	// Now supplies the wall clock for __DATE__ and __TIME__. Tests pin it.
	Now func() time.Time
	dateStr, timeStr string

	counter int // __COUNTER__

	identVAARGS  *lexer.Info
	identDefined *lexer.Info
	identLINE, identFILE, identDATE, identTIME      *lexer.Info
	identTimestamp, identBaseFile, identInclLevel   *lexer.Info
	identCounter, identPragmaOp                     *lexer.Info

	predefines string
}

// New wires up a preprocessor. The identifier table is created here and
// seeded with the dialect's keywords.
func New(sm *source.SourceManager, fm *source.FileManager, headers *HeaderSearch, diags *diag.Engine, opts lang.Options) *Preprocessor {
	p := &Preprocessor{
		diags:   diags,
		opts:    opts,
		sm:      sm,
		fm:      fm,
		headers: headers,
		idents:  lexer.NewTable(),
		macros:  make(map[*lexer.Info]*MacroInfo),
		scratch: newScratchBuffer(sm),
		Now:     time.Now,
	}
	lexer.AddKeywords(p.idents, opts)
	p.identVAARGS = p.idents.Get("__VA_ARGS__")
	p.identDefined = p.idents.Get("defined")
	p.registerBuiltinMacros()
	return p
}

func (p *Preprocessor) Idents() *lexer.Table          { return p.idents }
func (p *Preprocessor) SourceManager() *source.SourceManager { return p.sm }
func (p *Preprocessor) Diags() *diag.Engine           { return p.diags }
func (p *Preprocessor) Options() lang.Options         { return p.opts }
func (p *Preprocessor) HeaderInfo() *HeaderSearch     { return p.headers }

// MacroFor returns the definition bound to info, or nil.
func (p *Preprocessor) MacroFor(info *lexer.Info) *MacroInfo {
	if !info.HasMacro {
		return nil
	}
	return p.macros[info]
}

func (p *Preprocessor) setMacro(info *lexer.Info, mi *MacroInfo) {
	p.macros[info] = mi
	info.HasMacro = true
}

func (p *Preprocessor) removeMacro(info *lexer.Info) {
	delete(p.macros, info)
	info.HasMacro = false
}

// SetPredefines installs the driver-composed prologue of #define lines
// lexed before the main file.
func (p *Preprocessor) SetPredefines(text string) { p.predefines = text }

// EnterMainSourceFile pushes the main file, then the predefines buffer on
// top of it so the prologue is processed first.
func (p *Preprocessor) EnterMainSourceFile(fid source.FileID) {
	p.enterSourceFile(fid, -1)
	if p.predefines != "" {
		pfid := p.sm.CreateBufferFileID("<built-in>", []byte(p.predefines))
		p.enterSourceFile(pfid, -1)
	}
}

func (p *Preprocessor) enterSourceFile(fid source.FileID, dirIdx int) {
	l := lexer.New(p.sm, p.diags, p.opts, p.idents, fid)
	p.stack = append(p.stack, ppEntry{fileLexer: l, dirIdx: dirIdx})
	p.curLexer, p.curTokenLexer, p.curDirIdx = l, nil, dirIdx
}

// EnterMacro pushes a token lexer expanding mi at nameTok's location.
// args is nil for object-like macros.
func (p *Preprocessor) EnterMacro(nameTok lexer.Token, mi *MacroInfo, args *MacroArgs) {
	mi.DisableMacro()
	tl := newMacroExpander(p, mi, nameTok, args)
	p.stack = append(p.stack, ppEntry{tokenLexer: tl, dirIdx: -1})
	p.curLexer, p.curTokenLexer = nil, tl
}

// EnterTokenStream pushes a plain stream of already-lexed tokens.
func (p *Preprocessor) EnterTokenStream(toks []lexer.Token) {
	tl := newTokenStream(p, toks)
	p.stack = append(p.stack, ppEntry{tokenLexer: tl, dirIdx: -1})
	p.curLexer, p.curTokenLexer = nil, tl
}

func (p *Preprocessor) popEntry() {
	p.stack = p.stack[:len(p.stack)-1]
	if len(p.stack) == 0 {
		p.curLexer, p.curTokenLexer = nil, nil
		return
	}
	top := &p.stack[len(p.stack)-1]
	p.curLexer, p.curTokenLexer, p.curDirIdx = top.fileLexer, top.tokenLexer, top.dirIdx
}

// includeDepth counts file lexers below the current one.
func (p *Preprocessor) includeDepth() int {
	n := 0
	for i := range p.stack {
		if p.stack[i].fileLexer != nil {
			n++
		}
	}
	if n > 0 {
		n--
	}
	return n
}

// curFileLexer returns the innermost file lexer, skipping macro expansions.
func (p *Preprocessor) curFileLexer() *lexer.Lexer {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].fileLexer != nil {
			return p.stack[i].fileLexer
		}
	}
	return nil
}

// curFileDir is the directory of the file being lexed, the first stop for
// quoted include search.
func (p *Preprocessor) curFileDir() string {
	if fl := p.curFileLexer(); fl != nil {
		if entry := p.sm.FileEntryFor(fl.FileID()); entry != nil {
			return filepath.Dir(entry.Path)
		}
	}
	return ""
}

func (p *Preprocessor) pushbackToken(tok lexer.Token) {
	p.pushback = append(p.pushback, tok)
}

// Spelling returns the cleaned text of tok.
func (p *Preprocessor) Spelling(tok *lexer.Token) string {
	if tok.Info != nil {
		return tok.Info.Name()
	}
	return lexer.Spelling(p.sm, p.opts, tok)
}

// Lex returns the next fully preprocessed token. Directives are executed,
// macros expanded, and include files spliced inline; the caller only ever
// sees the post-preprocessing token stream.
func (p *Preprocessor) Lex(tok *lexer.Token) {
	for {
		if n := len(p.pushback); n > 0 {
			*tok = p.pushback[n-1]
			p.pushback = p.pushback[:n-1]
		} else if p.curTokenLexer != nil {
			if !p.curTokenLexer.Lex(tok) {
				p.handleEndOfMacro()
				continue
			}
		} else {
			p.curLexer.Lex(tok)
		}

		switch {
		case tok.Is(lexer.Kind_EOF):
			if p.curTokenLexer != nil {
				// Argument-separator marker inside a token stream.
				return
			}
			if p.handleEndOfFile() {
				return
			}
		case tok.Is(lexer.Kind_Hash) && tok.StartOfLine() && !p.inMacroArgs &&
			p.curLexer != nil && !p.curLexer.ParsingPreprocessorDirective:
			p.HandleDirective(tok)
		case tok.Is(lexer.Kind_Identifier) && tok.Info != nil:
			if p.HandleIdentifier(tok) {
				return
			}
		default:
			return
		}
	}
}

// LexUnexpandedToken lexes one token with macro expansion off.
func (p *Preprocessor) LexUnexpandedToken(tok *lexer.Token) {
	old := p.disableMacroExpansion
	p.disableMacroExpansion = true
	p.Lex(tok)
	p.disableMacroExpansion = old
}

// HandleIdentifier post-processes a freshly lexed identifier: poison
// checks and macro expansion. It reports whether tok should be returned to
// the caller; false means expansion began and the loop should continue.
func (p *Preprocessor) HandleIdentifier(tok *lexer.Token) bool {
	info := tok.Info

	if info.IsPoisoned && info != p.identVAARGS {
		p.diags.Report(tok.Loc, diag.ErrPoisonedIdentifier).AddIdent(info.Name()).Emit()
	}

	if info.HasMacro && !p.disableMacroExpansion && !tok.DisableExpand() {
		mi := p.macros[info]
		if mi.IsEnabled() {
			if !mi.IsFunctionLike() || p.isNextPPTokenLParen() {
				return p.handleMacroExpandedIdentifier(tok, mi)
			}
		} else {
			// A disabled macro's own name inside its expansion is painted
			// blue: it can never be expanded again, even when re-examined
			// from an enclosing context.
			tok.SetFlag(lexer.FlagDisableExpand)
		}
	}
	return true
}

// isNextPPTokenLParen peeks past the macro name, with expansion, for the
// '(' that turns a function-like macro name into an invocation.
func (p *Preprocessor) isNextPPTokenLParen() bool {
	var next lexer.Token
	p.Lex(&next)
	p.pushbackToken(next)
	return next.Is(lexer.Kind_LParen)
}

// handleEndOfFile unwinds one file lexer, diagnosing unterminated
// conditionals and harvesting the include guard. It returns true when the
// outermost file is done and the EOF should be delivered.
func (p *Preprocessor) handleEndOfFile() bool {
	l := p.curLexer
	if l != nil {
		for {
			ci, ok := l.PopConditionalLevel()
			if !ok {
				break
			}
			p.diags.Report(ci.IfLoc, diag.ErrUnterminatedConditional).Emit()
		}
		if ctrl := l.MIOpt.ControllingMacroAtEOF(); ctrl != nil {
			if entry := p.sm.FileEntryFor(l.FileID()); entry != nil {
				p.headers.SetFileControllingMacro(entry, ctrl)
			}
		}
	}
	if len(p.stack) > 1 {
		p.popEntry()
		return false
	}
	return true
}

func (p *Preprocessor) handleEndOfMacro() {
	if mi := p.curTokenLexer.macro; mi != nil {
		mi.EnableMacro()
	}
	p.popEntry()
}

// NextOpenMPDirective hands the parser the queued token body of the oldest
// #pragma omp annotation.
func (p *Preprocessor) NextOpenMPDirective() []lexer.Token {
	if len(p.pendingOMP) == 0 {
		return nil
	}
	toks := p.pendingOMP[0]
	p.pendingOMP = p.pendingOMP[1:]
	return toks
}
