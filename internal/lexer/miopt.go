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

package lexer

// MultipleIncludeOpt watches one file for the classic include-guard shape:
//
//	#ifndef G
//	...everything...
//	#endif
//
// When the whole file sits inside one top-level #ifndef, the controlling
// macro is recorded and a later include of the same file can be skipped
// entirely once the macro is defined.
type MultipleIncludeOpt struct {
	readAnyTokens    bool  // any token produced outside a directive yet
	immediatelyAfter bool  // next token must be the #ifndef macro name
	controlling      *Info // candidate guard macro
	invalid          bool
}

// Invalidate marks the file as not guard-shaped.
func (m *MultipleIncludeOpt) Invalidate() {
	m.controlling = nil
	m.invalid = true
}

// ReadToken is called for every token produced outside directives. A token
// before the first directive, or after the guard's #endif, breaks the idiom.
func (m *MultipleIncludeOpt) ReadToken() {
	if !m.readAnyTokens {
		m.readAnyTokens = true
		if m.controlling == nil {
			// Token before any #ifndef: not a guarded file.
			m.invalid = true
		}
	}
}

// ExpectControllingMacro arms the detector: the file's first directive was a
// top-level #ifndef and the next interesting event is its macro name.
func (m *MultipleIncludeOpt) ExpectControllingMacro() bool {
	if m.readAnyTokens || m.invalid || m.controlling != nil {
		m.Invalidate()
		return false
	}
	m.immediatelyAfter = true
	return true
}

// SetControllingMacro records the #ifndef's macro name.
func (m *MultipleIncludeOpt) SetControllingMacro(info *Info) {
	if !m.immediatelyAfter {
		m.Invalidate()
		return
	}
	m.immediatelyAfter = false
	m.controlling = info
	// Tokens inside the guard are expected; reset so the post-#endif check
	// in ExitTopLevelConditional can observe trailing tokens.
	m.readAnyTokens = false
}

// EnterTopLevelConditional is called for any other top-level conditional,
// which breaks the single-guard shape unless it is nested inside the guard.
func (m *MultipleIncludeOpt) EnterTopLevelConditional() { m.Invalidate() }

// FoundTopLevelElse: an #else/#elif on the guard conditional means parts of
// the file are outside the guard.
func (m *MultipleIncludeOpt) FoundTopLevelElse() { m.Invalidate() }

// ExitTopLevelConditional is called when the guard's #endif pops; tokens
// seen after it (before EOF) invalidate the idiom via ReadToken.
func (m *MultipleIncludeOpt) ExitTopLevelConditional() {
	if m.controlling == nil {
		m.Invalidate()
		return
	}
	m.readAnyTokens = false
}

// ControllingMacroAtEOF returns the guard macro when the file matched the
// idiom end to end.
func (m *MultipleIncludeOpt) ControllingMacroAtEOF() *Info {
	if m.invalid || m.readAnyTokens {
		return nil
	}
	return m.controlling
}
