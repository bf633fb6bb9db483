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
	"github.com/EngFlow/ccfront/internal/source"
)

// typeNameInfo is one shadowed binding of an identifier, hung off
// lexer.Info.FETokenInfo. Inner scopes push, ActOnPopScope pops, so the
// head of the list is always the innermost visible binding.
type typeNameInfo struct {
	isTypeName bool
	prev       *typeNameInfo
}

// MinimalAction tracks exactly as much semantic state as the parser needs
// to ask IsTypeName: which identifiers are typedef names (or Objective-C
// class names) in the current scope. Everything else is a no-op.
type MinimalAction struct {
	BaseAction
}

func NewMinimalAction() *MinimalAction { return &MinimalAction{} }

func (a *MinimalAction) IsTypeName(info *lexer.Info, s *Scope) bool {
	if ti, ok := info.FETokenInfo.(*typeNameInfo); ok {
		return ti.isTypeName
	}
	return false
}

func (a *MinimalAction) registerDecl(s *Scope, info *lexer.Info, isTypeName bool) {
	prev, _ := info.FETokenInfo.(*typeNameInfo)
	info.FETokenInfo = &typeNameInfo{isTypeName: isTypeName, prev: prev}
	s.AddDecl(info)
}

func (a *MinimalAction) ActOnDeclarator(s *Scope, d *Declarator, group Result) Result {
	if d.Ident != nil {
		a.registerDecl(s, d.Ident, d.DeclSpec.StorageClass == SCS_Typedef)
	}
	return Result{}
}

// ActOnStartOfFunctionDef registers the function name so recursive calls
// in the body do not look like implicit declarations of a type.
func (a *MinimalAction) ActOnStartOfFunctionDef(s *Scope, d *Declarator) Result {
	if d.Ident != nil {
		a.registerDecl(s, d.Ident, false)
	}
	return Result{}
}

// ActOnForwardClassDeclaration makes @class names usable as type names.
func (a *MinimalAction) ActOnForwardClassDeclaration(atLoc source.Location, names []*lexer.Info) Result {
	for _, info := range names {
		prev, _ := info.FETokenInfo.(*typeNameInfo)
		info.FETokenInfo = &typeNameInfo{isTypeName: true, prev: prev}
	}
	return Result{}
}

func (a *MinimalAction) ActOnStartClassInterface(atLoc source.Location, name *lexer.Info, superName *lexer.Info) Result {
	prev, _ := name.FETokenInfo.(*typeNameInfo)
	name.FETokenInfo = &typeNameInfo{isTypeName: true, prev: prev}
	return Result{}
}

func (a *MinimalAction) ActOnCompatibilityAlias(atLoc source.Location, alias, class *lexer.Info) Result {
	prev, _ := alias.FETokenInfo.(*typeNameInfo)
	alias.FETokenInfo = &typeNameInfo{isTypeName: true, prev: prev}
	return Result{}
}

// ActOnPopScope unwinds the bindings made in s, restoring whatever each
// identifier meant in the enclosing scope.
func (a *MinimalAction) ActOnPopScope(s *Scope) {
	for _, info := range s.Decls() {
		if ti, ok := info.FETokenInfo.(*typeNameInfo); ok {
			if ti.prev != nil {
				info.FETokenInfo = ti.prev
			} else {
				info.FETokenInfo = nil
			}
		}
	}
}
