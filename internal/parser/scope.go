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
	"github.com/EngFlow/ccfront/internal/lexer"
)

type ScopeFlags uint8

const (
	// FnScope is the scope of a function body: labels live here.
	FnScope ScopeFlags = 1 << iota
	// BreakScope is a scope break can jump out of.
	BreakScope
	// ContinueScope is a scope continue can jump within.
	ContinueScope
	// DeclScope can hold declarations.
	DeclScope
	// ControlScope is the implicit scope of an if/while/for condition.
	ControlScope
)

// Scope is a lexical scope. Enclosing function, break target and continue
// target are cached at construction so jump statements resolve in O(1).
type Scope struct {
	parent *Scope
	flags  ScopeFlags

	fnParent       *Scope
	breakParent    *Scope
	continueParent *Scope

	// decls are the identifiers declared directly in this scope, replayed
	// to the action when the scope pops.
	decls []*lexer.Info
}

func NewScope(parent *Scope, flags ScopeFlags) *Scope {
	s := &Scope{parent: parent, flags: flags}
	if parent != nil {
		s.fnParent = parent.fnParent
		s.breakParent = parent.breakParent
		s.continueParent = parent.continueParent
	}
	if flags&FnScope != 0 {
		s.fnParent = s
	}
	if flags&BreakScope != 0 {
		s.breakParent = s
	}
	if flags&ContinueScope != 0 {
		s.continueParent = s
	}
	return s
}

func (s *Scope) Parent() *Scope         { return s.parent }
func (s *Scope) Flags() ScopeFlags      { return s.flags }
func (s *Scope) FnParent() *Scope       { return s.fnParent }
func (s *Scope) BreakParent() *Scope    { return s.breakParent }
func (s *Scope) ContinueParent() *Scope { return s.continueParent }

func (s *Scope) AddDecl(info *lexer.Info) { s.decls = append(s.decls, info) }
func (s *Scope) Decls() []*lexer.Info     { return s.decls }
