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
	"github.com/EngFlow/ccfront/internal/lexer"
	"github.com/EngFlow/ccfront/internal/source"
)

// MacroInfo holds one #define. It is owned by the preprocessor's binding
// for the defining identifier and replaced wholesale on redefinition.
type MacroInfo struct {
	DefinitionLoc source.Location

	// ReplacementToks is the body, recorded as raw unexpanded tokens.
	ReplacementToks []lexer.Token

	params         []*lexer.Info
	isFunctionLike bool
	isC99Varargs   bool // declared with a trailing ...
	isGNUVarargs   bool // named variadic parameter: args...

	// IsBuiltin marks __LINE__ and friends; their expansion is synthesized
	// rather than substituted.
	IsBuiltin bool
	// IsDisabled is the cooperative mutex against self-recursion: set for
	// the whole time the macro's own body is being emitted.
	IsDisabled bool
	IsUsed     bool
	// IsTargetSpecific marks predefines that differ across targets.
	IsTargetSpecific bool
}

func NewMacroInfo(defLoc source.Location) *MacroInfo {
	return &MacroInfo{DefinitionLoc: defLoc}
}

func (mi *MacroInfo) IsFunctionLike() bool { return mi.isFunctionLike }
func (mi *MacroInfo) IsObjectLike() bool   { return !mi.isFunctionLike }
func (mi *MacroInfo) IsVariadic() bool     { return mi.isC99Varargs || mi.isGNUVarargs }
func (mi *MacroInfo) IsC99Varargs() bool   { return mi.isC99Varargs }
func (mi *MacroInfo) IsEnabled() bool      { return !mi.IsDisabled }

func (mi *MacroInfo) SetFunctionLike()                  { mi.isFunctionLike = true }
func (mi *MacroInfo) SetC99Varargs()                    { mi.isC99Varargs = true }
func (mi *MacroInfo) SetGNUVarargs()                    { mi.isGNUVarargs = true }
func (mi *MacroInfo) SetParams(params []*lexer.Info)    { mi.params = params }
func (mi *MacroInfo) AddToken(tok lexer.Token)          { mi.ReplacementToks = append(mi.ReplacementToks, tok) }
func (mi *MacroInfo) Params() []*lexer.Info             { return mi.params }
func (mi *MacroInfo) NumParams() int                    { return len(mi.params) }

// ParamIndex returns the position of info in the parameter list, or -1.
// The variadic parameter (__VA_ARGS__ or the named one) is the last slot.
func (mi *MacroInfo) ParamIndex(info *lexer.Info) int {
	for i, p := range mi.params {
		if p == info {
			return i
		}
	}
	return -1
}

func (mi *MacroInfo) DisableMacro() { mi.IsDisabled = true }
func (mi *MacroInfo) EnableMacro()  { mi.IsDisabled = false }

// IsIdenticalTo implements the C99 6.10.3p2 redefinition check: same
// function-likeness, same parameter names in order, same variadic flag, and
// token-for-token identical bodies including whitespace separation.
func (mi *MacroInfo) IsIdenticalTo(other *MacroInfo, p *Preprocessor) bool {
	if mi.isFunctionLike != other.isFunctionLike ||
		mi.isC99Varargs != other.isC99Varargs ||
		mi.isGNUVarargs != other.isGNUVarargs ||
		len(mi.params) != len(other.params) ||
		len(mi.ReplacementToks) != len(other.ReplacementToks) {
		return false
	}
	for i := range mi.params {
		if mi.params[i] != other.params[i] {
			return false
		}
	}
	for i := range mi.ReplacementToks {
		a, b := &mi.ReplacementToks[i], &other.ReplacementToks[i]
		if a.Kind != b.Kind {
			return false
		}
		// Whitespace separation is significant, token text modulo internal
		// whitespace is what gets compared.
		if i != 0 && a.LeadingSpace() != b.LeadingSpace() {
			return false
		}
		if a.Info != b.Info {
			return false
		}
		if a.Info == nil && p.Spelling(a) != p.Spelling(b) {
			return false
		}
	}
	return true
}

// MacroArgs captures the actual arguments of one function-like invocation:
// a flat buffer of each argument's unexpanded tokens separated by eof
// markers, plus lazily-built pre-expanded and stringified forms.
type MacroArgs struct {
	unexpanded []lexer.Token // arg tokens, each arg terminated by one eof
	numArgs    int

	preExpanded  [][]lexer.Token // built on demand, indexed by arg
	stringified  []lexer.Token   // built on demand, indexed by arg
	charified    []lexer.Token
	VarargsElided bool
}

// newMacroArgs wraps the flattened argument tokens. Every argument,
// including empty ones, is terminated by an eof marker token.
func newMacroArgs(unexpanded []lexer.Token, numArgs int, varargsElided bool) *MacroArgs {
	return &MacroArgs{
		unexpanded:    unexpanded,
		numArgs:       numArgs,
		VarargsElided: varargsElided,
	}
}

func (ma *MacroArgs) NumArgs() int { return ma.numArgs }

// UnexpArgument returns argument i's unexpanded tokens without the
// terminating eof.
func (ma *MacroArgs) UnexpArgument(i int) []lexer.Token {
	idx := 0
	for ; i > 0; i-- {
		for ma.unexpanded[idx].IsNot(lexer.Kind_EOF) {
			idx++
		}
		idx++
	}
	start := idx
	for ma.unexpanded[idx].IsNot(lexer.Kind_EOF) {
		idx++
	}
	return ma.unexpanded[start:idx]
}

// ArgIsEmpty reports whether argument i has no tokens.
func (ma *MacroArgs) ArgIsEmpty(i int) bool { return len(ma.UnexpArgument(i)) == 0 }

// PreExpArgument returns argument i after running it through the
// preprocessor in isolation. Cached per invocation.
func (ma *MacroArgs) PreExpArgument(i int, p *Preprocessor) []lexer.Token {
	if ma.preExpanded == nil {
		ma.preExpanded = make([][]lexer.Token, ma.numArgs)
	}
	if ma.preExpanded[i] == nil {
		expanded := p.expandTokenStream(ma.UnexpArgument(i))
		if expanded == nil {
			expanded = []lexer.Token{} // distinguish "computed, empty" from "not yet"
		}
		ma.preExpanded[i] = expanded
	}
	return ma.preExpanded[i]
}

// StringifiedArgument returns argument i rendered as a string-literal
// token per the # operator rules. Cached per invocation.
func (ma *MacroArgs) StringifiedArgument(i int, p *Preprocessor, hashLoc source.Location) lexer.Token {
	if ma.stringified == nil {
		ma.stringified = make([]lexer.Token, ma.numArgs)
	}
	if ma.stringified[i].Kind == lexer.Kind_Unknown {
		ma.stringified[i] = p.stringifyArgument(ma.UnexpArgument(i), hashLoc, false)
	}
	return ma.stringified[i]
}

// CharifiedArgument is the #@ variant: single quotes, one character.
func (ma *MacroArgs) CharifiedArgument(i int, p *Preprocessor, hashLoc source.Location) lexer.Token {
	if ma.charified == nil {
		ma.charified = make([]lexer.Token, ma.numArgs)
	}
	if ma.charified[i].Kind == lexer.Kind_Unknown {
		ma.charified[i] = p.stringifyArgument(ma.UnexpArgument(i), hashLoc, true)
	}
	return ma.charified[i]
}
