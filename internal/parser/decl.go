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
	"strings"

	"github.com/EngFlow/ccfront/internal/diag"
	"github.com/EngFlow/ccfront/internal/lexer"
	"github.com/EngFlow/ccfront/internal/source"
)

type StorageClass uint8

const (
	SCS_Unspecified StorageClass = iota
	SCS_Typedef
	SCS_Extern
	SCS_Static
	SCS_Auto
	SCS_Register
)

type TypeWidth uint8

const (
	TSW_Unspecified TypeWidth = iota
	TSW_Short
	TSW_Long
	TSW_LongLong
)

type TypeSign uint8

const (
	TSS_Unspecified TypeSign = iota
	TSS_Signed
	TSS_Unsigned
)

type TypeComplexity uint8

const (
	TSC_Unspecified TypeComplexity = iota
	TSC_Complex
	TSC_Imaginary
)

type TypeSpecKind uint8

const (
	TST_Unspecified TypeSpecKind = iota
	TST_Void
	TST_Char
	TST_WChar
	TST_Bool
	TST_Int
	TST_Float
	TST_Double
	TST_Struct
	TST_Union
	TST_Class
	TST_Enum
	TST_TypedefName
	TST_Typeof
)

// Type qualifier bits.
const (
	TQ_Const uint8 = 1 << iota
	TQ_Volatile
	TQ_Restrict
)

// DeclSpec accumulates one declaration-specifier sequence. The fields are
// orthogonal; each setter rejects a conflicting or duplicate respecification
// and remembers what was already written for the diagnostic.
type DeclSpec struct {
	StorageClass    StorageClass
	ThreadSpecified bool
	Width           TypeWidth
	Sign            TypeSign
	Complexity      TypeComplexity
	TypeSpec        TypeSpecKind
	Qualifiers      uint8
	Inline          bool

	// TypedefName is set for TST_TypedefName; TagName for struct/union/
	// enum/class specifiers that carried a tag.
	TypedefName *lexer.Info
	TagName     *lexer.Info

	TypeSpecLoc source.Location

	// words is the specifier sequence as written, for flattened
	// type spellings.
	words []string
}

type specResult uint8

const (
	specOK specResult = iota
	specDuplicate
	specConflict
)

func (ds *DeclSpec) note(word string) { ds.words = append(ds.words, word) }

func (ds *DeclSpec) setStorageClass(sc StorageClass, prev *string) specResult {
	if ds.StorageClass != SCS_Unspecified {
		*prev = storageClassName(ds.StorageClass)
		if ds.StorageClass == sc {
			return specDuplicate
		}
		return specConflict
	}
	ds.StorageClass = sc
	return specOK
}

func (ds *DeclSpec) setWidth(w TypeWidth, prev *string) specResult {
	switch ds.Width {
	case TSW_Unspecified:
		ds.Width = w
		return specOK
	case TSW_Long:
		if w == TSW_Long {
			// "long long" is written as two longs.
			ds.Width = TSW_LongLong
			return specOK
		}
		*prev = "long"
	case TSW_LongLong:
		*prev = "long long"
	case TSW_Short:
		*prev = "short"
		if w == TSW_Short {
			return specDuplicate
		}
	}
	return specConflict
}

func (ds *DeclSpec) setSign(s TypeSign, prev *string) specResult {
	if ds.Sign != TSS_Unspecified {
		if ds.Sign == TSS_Signed {
			*prev = "signed"
		} else {
			*prev = "unsigned"
		}
		if ds.Sign == s {
			return specDuplicate
		}
		return specConflict
	}
	ds.Sign = s
	return specOK
}

func (ds *DeclSpec) setComplexity(c TypeComplexity, prev *string) specResult {
	if ds.Complexity != TSC_Unspecified {
		if ds.Complexity == TSC_Complex {
			*prev = "_Complex"
		} else {
			*prev = "_Imaginary"
		}
		if ds.Complexity == c {
			return specDuplicate
		}
		return specConflict
	}
	ds.Complexity = c
	return specOK
}

func (ds *DeclSpec) setTypeSpec(t TypeSpecKind, loc source.Location, prev *string) specResult {
	if ds.TypeSpec != TST_Unspecified {
		*prev = typeSpecName(ds)
		if ds.TypeSpec == t {
			return specDuplicate
		}
		return specConflict
	}
	ds.TypeSpec = t
	ds.TypeSpecLoc = loc
	return specOK
}

func (ds *DeclSpec) addQualifier(q uint8, prev *string) specResult {
	if ds.Qualifiers&q != 0 {
		switch q {
		case TQ_Const:
			*prev = "const"
		case TQ_Volatile:
			*prev = "volatile"
		default:
			*prev = "restrict"
		}
		return specDuplicate
	}
	ds.Qualifiers |= q
	return specOK
}

func storageClassName(sc StorageClass) string {
	switch sc {
	case SCS_Typedef:
		return "typedef"
	case SCS_Extern:
		return "extern"
	case SCS_Static:
		return "static"
	case SCS_Auto:
		return "auto"
	case SCS_Register:
		return "register"
	}
	return ""
}

func typeSpecName(ds *DeclSpec) string {
	switch ds.TypeSpec {
	case TST_Void:
		return "void"
	case TST_Char:
		return "char"
	case TST_WChar:
		return "wchar_t"
	case TST_Bool:
		return "_Bool"
	case TST_Int:
		return "int"
	case TST_Float:
		return "float"
	case TST_Double:
		return "double"
	case TST_Struct:
		return "struct"
	case TST_Union:
		return "union"
	case TST_Class:
		return "class"
	case TST_Enum:
		return "enum"
	case TST_Typeof:
		return "typeof"
	case TST_TypedefName:
		if ds.TypedefName != nil {
			return ds.TypedefName.Name()
		}
	}
	return "type"
}

// Spelling reconstructs the specifier sequence as written.
func (ds *DeclSpec) Spelling() string {
	if len(ds.words) == 0 {
		return "int"
	}
	return strings.Join(ds.words, " ")
}

type chunkKind uint8

const (
	chunkPointer chunkKind = iota
	chunkArray
	chunkFunction
)

// ParamInfo is one prototype parameter as parsed.
type ParamInfo struct {
	Ident        *lexer.Info
	IdentLoc     source.Location
	TypeSpelling string
}

// DeclaratorChunk is one level of type structure wrapped around the
// declared identifier, ordered innermost first: for `int (*fp)(void)` the
// chunks are [pointer, function].
type DeclaratorChunk struct {
	Kind chunkKind
	Loc  source.Location

	// Pointer.
	Quals uint8

	// Array. NumElts is nil for [].
	NumElts Result

	// Function.
	HasProto   bool
	IsVariadic bool
	Params     []ParamInfo
	KnRNames   []*lexer.Info
}

type DeclaratorContext uint8

const (
	FileContext DeclaratorContext = iota
	BlockContext
	PrototypeContext
	TypeNameContext
	MemberContext
)

// Declarator is one declarator plus the specifiers it was declared with.
type Declarator struct {
	DeclSpec *DeclSpec
	Context  DeclaratorContext

	Ident    *lexer.Info
	IdentLoc source.Location
	Chunks   []DeclaratorChunk

	AsmLabel string
	Init     Result
	BitWidth Result
	Invalid  bool
}

func (d *Declarator) addChunk(c DeclaratorChunk) { d.Chunks = append(d.Chunks, c) }

// IsFunctionDeclarator reports whether the innermost type structure is a
// function, i.e. this declarator can head a function definition.
func (d *Declarator) IsFunctionDeclarator() bool {
	return len(d.Chunks) > 0 && d.Chunks[0].Kind == chunkFunction
}

// TypeSpelling flattens the declared type to a display string.
func (d *Declarator) TypeSpelling() string {
	var b strings.Builder
	b.WriteString(d.DeclSpec.Spelling())
	for _, c := range d.Chunks {
		switch c.Kind {
		case chunkPointer:
			b.WriteString(" *")
		case chunkArray:
			b.WriteString(" []")
		case chunkFunction:
			b.WriteString(" ()")
		}
	}
	return b.String()
}

// IsPointerType reports whether the outermost chunk makes this a pointer
// (or array, which decays). Used for the return-compatibility checks.
func (d *Declarator) IsPointerType() bool {
	if len(d.Chunks) == 0 {
		return false
	}
	k := d.Chunks[len(d.Chunks)-1].Kind
	return k == chunkPointer || k == chunkArray
}

// isDeclarationSpecifier reports whether the current token can begin a
// declaration-specifier sequence. Typedef names count, which is the one
// place the parser consults semantic state.
func (p *Parser) isDeclarationSpecifier() bool {
	switch p.tok.Kind {
	case lexer.Kind_KwTypedef, lexer.Kind_KwExtern, lexer.Kind_KwStatic,
		lexer.Kind_KwAuto, lexer.Kind_KwRegister, lexer.Kind_KwThread,
		lexer.Kind_KwInline,
		lexer.Kind_KwConst, lexer.Kind_KwVolatile, lexer.Kind_KwRestrict,
		lexer.Kind_KwShort, lexer.Kind_KwLong, lexer.Kind_KwSigned,
		lexer.Kind_KwUnsigned, lexer.Kind_KwComplex, lexer.Kind_KwImaginary,
		lexer.Kind_KwVoid, lexer.Kind_KwChar, lexer.Kind_KwInt,
		lexer.Kind_KwFloat, lexer.Kind_KwDouble, lexer.Kind_KwBool,
		lexer.Kind_KwWcharT,
		lexer.Kind_KwStruct, lexer.Kind_KwUnion, lexer.Kind_KwEnum,
		lexer.Kind_KwTypeof, lexer.Kind_KwAttribute, lexer.Kind_KwExtension:
		return true
	case lexer.Kind_KwClass:
		return p.opts.CPlusPlus
	case lexer.Kind_Identifier:
		return p.tok.Info != nil && p.actions.IsTypeName(p.tok.Info, p.curScope)
	}
	return false
}

// isTypeSpecifierStart is isDeclarationSpecifier minus storage classes,
// for type-name positions (casts, sizeof, @encode).
func (p *Parser) isTypeSpecifierStart() bool {
	switch p.tok.Kind {
	case lexer.Kind_KwTypedef, lexer.Kind_KwExtern, lexer.Kind_KwStatic,
		lexer.Kind_KwAuto, lexer.Kind_KwRegister, lexer.Kind_KwThread,
		lexer.Kind_KwInline:
		return false
	}
	return p.isDeclarationSpecifier()
}

func (p *Parser) diagSpecResult(res specResult, prev string) {
	switch res {
	case specDuplicate:
		p.diags.Report(p.tok.Loc, diag.ErrDuplicateDeclSpec).AddString(prev).Emit()
	case specConflict:
		p.diags.Report(p.tok.Loc, diag.ErrInvalidDeclSpecCombination).AddString(prev).Emit()
	}
}

// ParseDeclarationSpecifiers accumulates specifiers into ds until the
// current token cannot continue the sequence.
func (p *Parser) ParseDeclarationSpecifiers(ds *DeclSpec) {
	for {
		var prev string
		res := specOK
		spelled := p.spelling(&p.tok)
		switch p.tok.Kind {
		case lexer.Kind_KwTypedef:
			res = ds.setStorageClass(SCS_Typedef, &prev)
		case lexer.Kind_KwExtern:
			res = ds.setStorageClass(SCS_Extern, &prev)
		case lexer.Kind_KwStatic:
			res = ds.setStorageClass(SCS_Static, &prev)
		case lexer.Kind_KwAuto:
			res = ds.setStorageClass(SCS_Auto, &prev)
		case lexer.Kind_KwRegister:
			res = ds.setStorageClass(SCS_Register, &prev)
		case lexer.Kind_KwThread:
			if ds.ThreadSpecified {
				res, prev = specDuplicate, "__thread"
			}
			ds.ThreadSpecified = true
		case lexer.Kind_KwInline:
			ds.Inline = true
		case lexer.Kind_KwConst:
			res = ds.addQualifier(TQ_Const, &prev)
		case lexer.Kind_KwVolatile:
			res = ds.addQualifier(TQ_Volatile, &prev)
		case lexer.Kind_KwRestrict:
			res = ds.addQualifier(TQ_Restrict, &prev)
		case lexer.Kind_KwShort:
			res = ds.setWidth(TSW_Short, &prev)
		case lexer.Kind_KwLong:
			res = ds.setWidth(TSW_Long, &prev)
		case lexer.Kind_KwSigned:
			res = ds.setSign(TSS_Signed, &prev)
		case lexer.Kind_KwUnsigned:
			res = ds.setSign(TSS_Unsigned, &prev)
		case lexer.Kind_KwComplex:
			res = ds.setComplexity(TSC_Complex, &prev)
		case lexer.Kind_KwImaginary:
			res = ds.setComplexity(TSC_Imaginary, &prev)
		case lexer.Kind_KwVoid:
			res = ds.setTypeSpec(TST_Void, p.tok.Loc, &prev)
		case lexer.Kind_KwChar:
			res = ds.setTypeSpec(TST_Char, p.tok.Loc, &prev)
		case lexer.Kind_KwWcharT:
			res = ds.setTypeSpec(TST_WChar, p.tok.Loc, &prev)
		case lexer.Kind_KwBool:
			res = ds.setTypeSpec(TST_Bool, p.tok.Loc, &prev)
		case lexer.Kind_KwInt:
			res = ds.setTypeSpec(TST_Int, p.tok.Loc, &prev)
		case lexer.Kind_KwFloat:
			res = ds.setTypeSpec(TST_Float, p.tok.Loc, &prev)
		case lexer.Kind_KwDouble:
			res = ds.setTypeSpec(TST_Double, p.tok.Loc, &prev)
		case lexer.Kind_KwStruct, lexer.Kind_KwUnion, lexer.Kind_KwClass:
			p.ParseTagSpecifier(ds)
			continue
		case lexer.Kind_KwEnum:
			p.ParseEnumSpecifier(ds)
			continue
		case lexer.Kind_KwTypeof:
			p.ParseTypeofSpecifier(ds)
			continue
		case lexer.Kind_KwAttribute:
			p.skipAttributes()
			continue
		case lexer.Kind_KwExtension:
			// __extension__ suppresses extension warnings in GCC; here
			// it is accepted and ignored.
			p.ConsumeToken()
			continue
		case lexer.Kind_Identifier:
			if ds.TypeSpec == TST_Unspecified && p.tok.Info != nil &&
				p.actions.IsTypeName(p.tok.Info, p.curScope) {
				res = ds.setTypeSpec(TST_TypedefName, p.tok.Loc, &prev)
				ds.TypedefName = p.tok.Info
				spelled = p.tok.Info.Name()
				break
			}
			p.finishDeclSpec(ds)
			return
		default:
			p.finishDeclSpec(ds)
			return
		}
		if res == specOK {
			ds.note(spelled)
		} else {
			p.diagSpecResult(res, prev)
		}
		p.ConsumeToken()
	}
}

// finishDeclSpec validates the cross-field combinations once the whole
// sequence has been read.
func (p *Parser) finishDeclSpec(ds *DeclSpec) {
	if ds.Sign != TSS_Unspecified {
		switch ds.TypeSpec {
		case TST_Unspecified, TST_Char, TST_Int:
		default:
			p.diags.Report(ds.TypeSpecLoc, diag.ErrInvalidSignSpec).
				AddString(typeSpecName(ds)).Emit()
			ds.Sign = TSS_Unspecified
		}
	}
	if ds.Width != TSW_Unspecified {
		switch ds.TypeSpec {
		case TST_Unspecified, TST_Int:
		case TST_Double:
			// "long double" only.
			if ds.Width == TSW_Long {
				break
			}
			fallthrough
		default:
			p.diags.Report(ds.TypeSpecLoc, diag.ErrInvalidWidthSpec).
				AddString(typeSpecName(ds)).Emit()
			ds.Width = TSW_Unspecified
		}
	}
}

// ParseTagSpecifier parses struct/union (and C++ class) specifiers,
// including an optional member body.
func (p *Parser) ParseTagSpecifier(ds *DeclSpec) {
	kw := p.tok.Kind
	kwSpelled := p.spelling(&p.tok)
	loc := p.ConsumeToken()
	p.skipAttributes()

	var prev string
	tst := TST_Struct
	switch kw {
	case lexer.Kind_KwUnion:
		tst = TST_Union
	case lexer.Kind_KwClass:
		tst = TST_Class
	}
	if res := ds.setTypeSpec(tst, loc, &prev); res != specOK {
		p.diagSpecResult(res, prev)
	} else {
		word := kwSpelled
		if p.tok.Kind == lexer.Kind_Identifier {
			word += " " + p.tok.Info.Name()
		}
		ds.note(word)
	}

	if p.tok.Kind == lexer.Kind_Identifier {
		ds.TagName = p.tok.Info
		p.ConsumeToken()
	} else if p.tok.Kind != lexer.Kind_LBrace {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedIdentifier).Emit()
		return
	}

	if p.tok.Kind == lexer.Kind_LBrace {
		p.ParseTagBody()
	}
}

// ParseTagBody parses a struct/union member list. Members are declared in
// their own scope so typedef shadowing behaves.
func (p *Parser) ParseTagBody() {
	lbraceLoc := p.ConsumeToken()
	p.EnterScope(DeclScope)
	for p.tok.Kind != lexer.Kind_RBrace && p.tok.Kind != lexer.Kind_EOF {
		if p.tok.Kind == lexer.Kind_Semi {
			p.ConsumeToken()
			continue
		}
		ds := &DeclSpec{}
		p.ParseDeclarationSpecifiers(ds)
		for {
			d := &Declarator{DeclSpec: ds, Context: MemberContext}
			if p.tok.Kind != lexer.Kind_Colon {
				p.ParseDeclarator(d)
			}
			if p.tok.Kind == lexer.Kind_Colon {
				p.ConsumeToken()
				d.BitWidth = p.ParseConstantExpression()
			}
			p.actions.ActOnDeclarator(p.curScope, d, Result{})
			if p.tok.Kind != lexer.Kind_Comma {
				break
			}
			p.ConsumeToken()
		}
		if p.ExpectAndConsume(lexer.Kind_Semi, diag.ErrExpectedSemiDecl, source.LocationInvalid) {
			p.SkipUntil(0, lexer.Kind_Semi, lexer.Kind_RBrace)
			if p.tok.Kind == lexer.Kind_RBrace {
				break
			}
		}
	}
	p.ExitScope()
	p.ExpectAndConsume(lexer.Kind_RBrace, diag.ErrExpectedRBrace, lbraceLoc)
	p.skipAttributes()
}

// ParseEnumSpecifier parses enum specifiers with an optional enumerator
// list. Enumerators are announced as plain declarators.
func (p *Parser) ParseEnumSpecifier(ds *DeclSpec) {
	loc := p.ConsumeToken()
	p.skipAttributes()

	var prev string
	if res := ds.setTypeSpec(TST_Enum, loc, &prev); res != specOK {
		p.diagSpecResult(res, prev)
	} else {
		word := "enum"
		if p.tok.Kind == lexer.Kind_Identifier {
			word += " " + p.tok.Info.Name()
		}
		ds.note(word)
	}

	if p.tok.Kind == lexer.Kind_Identifier {
		ds.TagName = p.tok.Info
		p.ConsumeToken()
	} else if p.tok.Kind != lexer.Kind_LBrace {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedIdentifier).Emit()
		return
	}

	if p.tok.Kind != lexer.Kind_LBrace {
		return
	}
	lbraceLoc := p.ConsumeToken()
	for p.tok.Kind == lexer.Kind_Identifier {
		d := &Declarator{DeclSpec: ds, Context: MemberContext,
			Ident: p.tok.Info, IdentLoc: p.tok.Loc}
		p.ConsumeToken()
		if p.tok.Kind == lexer.Kind_Equal {
			p.ConsumeToken()
			d.Init = p.ParseConstantExpression()
		}
		p.actions.ActOnDeclarator(p.curScope, d, Result{})
		if p.tok.Kind != lexer.Kind_Comma {
			break
		}
		p.ConsumeToken() // trailing comma before '}' is a C99-ism, accepted
	}
	p.ExpectAndConsume(lexer.Kind_RBrace, diag.ErrExpectedRBrace, lbraceLoc)
	p.skipAttributes()
}

// ParseTypeofSpecifier parses GNU `typeof ( expr-or-type )`.
func (p *Parser) ParseTypeofSpecifier(ds *DeclSpec) {
	loc := p.ConsumeToken()
	var prev string
	if res := ds.setTypeSpec(TST_Typeof, loc, &prev); res != specOK {
		p.diagSpecResult(res, prev)
	}
	if p.tok.Kind != lexer.Kind_LParen {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedLParen).Emit()
		return
	}
	lparenLoc := p.ConsumeToken()
	if p.isTypeSpecifierStart() {
		name, _ := p.ParseTypeName()
		ds.note("typeof(" + name + ")")
	} else {
		p.ParseExpression()
		ds.note("typeof(...)")
	}
	p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc)
}

// skipAttributes discards any __attribute__((...)) runs.
func (p *Parser) skipAttributes() {
	for p.tok.Kind == lexer.Kind_KwAttribute {
		p.ConsumeToken()
		if p.tok.Kind != lexer.Kind_LParen {
			p.diags.Report(p.tok.Loc, diag.ErrExpectedLParen).Emit()
			return
		}
		p.ConsumeToken()
		p.SkipUntil(0, lexer.Kind_RParen)
	}
}

// ParseDeclarator parses `* quals... direct-declarator`. Pointer chunks
// are recorded after the inner declarator so Chunks stays innermost-first.
func (p *Parser) ParseDeclarator(d *Declarator) {
	if p.tok.Kind != lexer.Kind_Star {
		p.ParseDirectDeclarator(d)
		return
	}
	loc := p.ConsumeToken()
	var quals uint8
	for {
		switch p.tok.Kind {
		case lexer.Kind_KwConst:
			quals |= TQ_Const
		case lexer.Kind_KwVolatile:
			quals |= TQ_Volatile
		case lexer.Kind_KwRestrict:
			quals |= TQ_Restrict
		default:
			p.ParseDeclarator(d)
			d.addChunk(DeclaratorChunk{Kind: chunkPointer, Loc: loc, Quals: quals})
			return
		}
		p.ConsumeToken()
	}
}

// ParseDirectDeclarator parses the identifier or parenthesized declarator
// core plus any array/function suffixes.
func (p *Parser) ParseDirectDeclarator(d *Declarator) {
	switch p.tok.Kind {
	case lexer.Kind_Identifier:
		d.Ident = p.tok.Info
		d.IdentLoc = p.ConsumeToken()
	case lexer.Kind_LParen:
		// '(' is a grouping paren when it encloses a declarator, but a
		// function suffix when this is an abstract declarator like
		// `int (void)`. Peek: a declaration specifier or ')' means suffix.
		lparenLoc := p.ConsumeToken()
		if d.Context == TypeNameContext || d.Context == PrototypeContext {
			if p.tok.Kind == lexer.Kind_RParen || p.isDeclarationSpecifier() {
				p.ParseFunctionDeclarator(d, lparenLoc)
				p.parseDeclaratorSuffixes(d)
				return
			}
		}
		p.ParseDeclarator(d)
		p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc)
	default:
		// Abstract declarators have no identifier; anything else here
		// in a naming context is an error.
		if d.Context != TypeNameContext && d.Context != PrototypeContext {
			p.diags.Report(p.tok.Loc, diag.ErrExpectedDeclarator).Emit()
			d.Invalid = true
			return
		}
	}
	p.parseDeclaratorSuffixes(d)
}

func (p *Parser) parseDeclaratorSuffixes(d *Declarator) {
	for {
		switch p.tok.Kind {
		case lexer.Kind_LSquare:
			p.ParseBracketDeclarator(d)
		case lexer.Kind_LParen:
			lparenLoc := p.ConsumeToken()
			p.ParseFunctionDeclarator(d, lparenLoc)
		default:
			return
		}
	}
}

// ParseBracketDeclarator parses one array suffix.
func (p *Parser) ParseBracketDeclarator(d *Declarator) {
	lsquareLoc := p.ConsumeToken()
	c := DeclaratorChunk{Kind: chunkArray, Loc: lsquareLoc}
	// C99 allows static and qualifiers on parameter arrays; consume them.
	for {
		switch p.tok.Kind {
		case lexer.Kind_KwStatic, lexer.Kind_KwConst, lexer.Kind_KwVolatile,
			lexer.Kind_KwRestrict:
			p.ConsumeToken()
			continue
		}
		break
	}
	if p.tok.Kind != lexer.Kind_RSquare {
		if p.tok.Kind == lexer.Kind_Star {
			// VLA of unspecified size: [*].
			p.ConsumeToken()
		} else {
			c.NumElts = p.ParseAssignmentExpression()
		}
	}
	if p.ExpectAndConsume(lexer.Kind_RSquare, diag.ErrExpectedRSquare, lsquareLoc) {
		d.Invalid = true
		p.SkipUntil(StopAtSemi, lexer.Kind_RSquare)
	}
	d.addChunk(c)
}

// ParseFunctionDeclarator parses a function suffix, after the '('.
// Prototype parameter lists and K&R identifier lists both land here.
func (p *Parser) ParseFunctionDeclarator(d *Declarator, lparenLoc source.Location) {
	c := DeclaratorChunk{Kind: chunkFunction, Loc: lparenLoc}

	switch {
	case p.tok.Kind == lexer.Kind_RParen:
		// "()": unspecified parameters in C, no parameters in C++.
		c.HasProto = p.opts.CPlusPlus
	case p.tok.Kind == lexer.Kind_Ellipsis && p.opts.CPlusPlus:
		c.HasProto, c.IsVariadic = true, true
		p.ConsumeToken()
	case p.isDeclarationSpecifier():
		p.parsePrototypeParams(&c)
	case p.tok.Kind == lexer.Kind_Identifier:
		p.parseKnRIdentifierList(&c)
	default:
		p.diags.Report(p.tok.Loc, diag.ErrExpectedDeclarator).Emit()
		d.Invalid = true
		p.SkipUntil(StopAtSemi|DontConsume, lexer.Kind_RParen)
	}

	if p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc) {
		d.Invalid = true
	}
	d.addChunk(c)
}

func (p *Parser) parsePrototypeParams(c *DeclaratorChunk) {
	c.HasProto = true
	for {
		if p.tok.Kind == lexer.Kind_Ellipsis {
			c.IsVariadic = true
			p.ConsumeToken()
			return
		}
		ds := &DeclSpec{}
		p.ParseDeclarationSpecifiers(ds)
		if ds.StorageClass != SCS_Unspecified && ds.StorageClass != SCS_Register {
			p.diags.Report(p.tok.Loc, diag.ErrIllegalStorageClassOnParam).Emit()
			ds.StorageClass = SCS_Unspecified
		}
		pd := &Declarator{DeclSpec: ds, Context: PrototypeContext}
		p.ParseDeclarator(pd)

		// (void) alone means no parameters.
		if ds.TypeSpec == TST_Void && pd.Ident == nil && len(pd.Chunks) == 0 &&
			len(c.Params) == 0 && p.tok.Kind == lexer.Kind_RParen {
			return
		}
		c.Params = append(c.Params, ParamInfo{
			Ident:        pd.Ident,
			IdentLoc:     pd.IdentLoc,
			TypeSpelling: pd.TypeSpelling(),
		})
		if p.tok.Kind != lexer.Kind_Comma {
			return
		}
		p.ConsumeToken()
	}
}

func (p *Parser) parseKnRIdentifierList(c *DeclaratorChunk) {
	for p.tok.Kind == lexer.Kind_Identifier {
		c.KnRNames = append(c.KnRNames, p.tok.Info)
		p.ConsumeToken()
		if p.tok.Kind != lexer.Kind_Comma {
			return
		}
		p.ConsumeToken()
	}
	p.diags.Report(p.tok.Loc, diag.ErrExpectedIdentifier).Emit()
}

// ParseDeclarationOrFunctionDefinition parses one declaration group or a
// function definition, the fundamental top-level ambiguity.
func (p *Parser) ParseDeclarationOrFunctionDefinition() Result {
	ds := &DeclSpec{}
	p.ParseDeclarationSpecifiers(ds)

	// "struct foo;" and friends: specifiers with no declarator.
	if p.tok.Kind == lexer.Kind_Semi {
		p.ConsumeToken()
		return Result{}
	}

	if ds.TypeSpec == TST_Unspecified && len(ds.words) == 0 && !p.isStartOfDeclarator() {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedDeclarator).Emit()
		// Always make progress, even on a stray closer, but stop as soon
		// as something that can start a declaration comes up.
		p.ConsumeToken()
		if !p.isDeclarationSpecifier() && !p.isStartOfDeclarator() {
			p.SkipUntil(StopAtSemi, lexer.Kind_Semi)
		}
		return Invalid()
	}

	ctx := FileContext
	if p.curScope.FnParent() != nil {
		ctx = BlockContext
	}
	d := &Declarator{DeclSpec: ds, Context: ctx}
	p.ParseDeclarator(d)
	if d.Invalid && d.Ident == nil {
		p.SkipUntil(0, lexer.Kind_Semi)
		return Invalid()
	}
	p.parseDeclaratorTrailer(d)

	if ctx == FileContext && d.IsFunctionDeclarator() {
		switch p.tok.Kind {
		case lexer.Kind_Equal, lexer.Kind_Comma, lexer.Kind_Semi:
			// Variable of function-pointer-ish type, or a plain
			// function declaration; fall through to the group parse.
		default:
			return p.ParseFunctionDefinition(d)
		}
	}
	return p.parseInitDeclaratorGroup(d)
}

func (p *Parser) isStartOfDeclarator() bool {
	switch p.tok.Kind {
	case lexer.Kind_Identifier, lexer.Kind_Star, lexer.Kind_LParen:
		return true
	}
	return false
}

// parseDeclaratorTrailer handles the asm label and attributes that may
// follow a declarator.
func (p *Parser) parseDeclaratorTrailer(d *Declarator) {
	if p.tok.Kind == lexer.Kind_KwAsm {
		p.ConsumeToken()
		if p.tok.Kind != lexer.Kind_LParen {
			p.diags.Report(p.tok.Loc, diag.ErrExpectedLParen).Emit()
			return
		}
		lparenLoc := p.ConsumeToken()
		if p.tok.Kind != lexer.Kind_StringLiteral {
			p.diags.Report(p.tok.Loc, diag.ErrExpectedStringLiteralAsm).Emit()
			p.SkipUntil(StopAtSemi, lexer.Kind_RParen)
			return
		}
		d.AsmLabel = p.spelling(&p.tok)
		p.ConsumeToken()
		p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc)
	}
	p.skipAttributes()
}

// parseInitDeclaratorGroup finishes `declarator [= init] (, declarator
// [= init])* ;` given the already-parsed first declarator.
func (p *Parser) parseInitDeclaratorGroup(d *Declarator) Result {
	group := Result{}
	for {
		if p.tok.Kind == lexer.Kind_Equal {
			p.ConsumeToken()
			d.Init = p.ParseInitializer()
		}
		group = p.actions.ActOnDeclarator(p.curScope, d, group)
		if p.tok.Kind != lexer.Kind_Comma {
			break
		}
		p.ConsumeToken()
		d = &Declarator{DeclSpec: d.DeclSpec, Context: d.Context}
		p.ParseDeclarator(d)
		p.parseDeclaratorTrailer(d)
	}
	if p.ExpectAndConsume(lexer.Kind_Semi, diag.ErrExpectedSemiDecl, source.LocationInvalid) {
		p.SkipUntil(0, lexer.Kind_Semi)
		group.Invalid = true
	}
	return group
}

// ParseInitializer parses an assignment expression or a braced
// initializer list (with C99 designators accepted syntactically).
func (p *Parser) ParseInitializer() Result {
	if p.tok.Kind != lexer.Kind_LBrace {
		return p.ParseAssignmentExpression()
	}
	lbraceLoc := p.ConsumeToken()
	var inits []Result
	for p.tok.Kind != lexer.Kind_RBrace && p.tok.Kind != lexer.Kind_EOF {
		p.parseDesignation()
		inits = append(inits, p.ParseInitializer())
		if p.tok.Kind != lexer.Kind_Comma {
			break
		}
		p.ConsumeToken() // trailing comma before '}' is fine
	}
	rbraceLoc := p.tok.Loc
	if p.ExpectAndConsume(lexer.Kind_RBrace, diag.ErrExpectedRBrace, lbraceLoc) {
		p.SkipUntil(StopAtSemi, lexer.Kind_RBrace)
		return Invalid()
	}
	return p.actions.ActOnInitList(lbraceLoc, rbraceLoc, inits)
}

// parseDesignation consumes `.field` / `[index]` designator runs and the
// '=' that follows, if present.
func (p *Parser) parseDesignation() {
	seen := false
	for {
		switch p.tok.Kind {
		case lexer.Kind_Period:
			p.ConsumeToken()
			if p.tok.Kind != lexer.Kind_Identifier {
				p.diags.Report(p.tok.Loc, diag.ErrExpectedIdentifier).Emit()
				return
			}
			p.ConsumeToken()
			seen = true
		case lexer.Kind_LSquare:
			lsquareLoc := p.ConsumeToken()
			p.ParseConstantExpression()
			p.ExpectAndConsume(lexer.Kind_RSquare, diag.ErrExpectedRSquare, lsquareLoc)
			seen = true
		default:
			if seen {
				p.ExpectAndConsume(lexer.Kind_Equal, diag.ErrExpectedToken, source.LocationInvalid)
			}
			return
		}
	}
}

// ParseFunctionDefinition parses K&R parameter declarations (if any) and
// the body of a function whose declarator is already in hand.
func (p *Parser) ParseFunctionDefinition(d *Declarator) Result {
	fn := &d.Chunks[0]
	if !fn.HasProto && p.isDeclarationSpecifier() {
		p.ParseKnRParamDeclarations(d)
	}

	if p.tok.Kind != lexer.Kind_LBrace {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedFnBody).Emit()
		p.SkipUntil(StopAtSemi|DontConsume, lexer.Kind_LBrace)
		if p.tok.Kind != lexer.Kind_LBrace {
			// No body in sight; recover as a declaration.
			if p.tok.Kind == lexer.Kind_Semi {
				p.ConsumeToken()
			}
			r := p.actions.ActOnDeclarator(p.curScope, d, Result{})
			r.Invalid = true
			return r
		}
	}

	p.EnterScope(FnScope | DeclScope)
	fnRes := p.actions.ActOnStartOfFunctionDef(p.curScope, d)
	body := p.ParseCompoundStatementBody(false)
	p.ExitScope()
	return p.actions.ActOnFinishFunctionBody(fnRes, body)
}

// ParseKnRParamDeclarations parses the declaration list between a K&R
// declarator and its body, checking each name against the identifier list.
func (p *Parser) ParseKnRParamDeclarations(d *Declarator) {
	fn := &d.Chunks[0]
	declared := make(map[*lexer.Info]bool)
	for p.isDeclarationSpecifier() {
		ds := &DeclSpec{}
		p.ParseDeclarationSpecifiers(ds)
		for {
			pd := &Declarator{DeclSpec: ds, Context: PrototypeContext}
			p.ParseDeclarator(pd)
			if pd.Ident != nil {
				if !knrListContains(fn.KnRNames, pd.Ident) {
					p.diags.Report(pd.IdentLoc, diag.ErrKnRParamNotInIdentList).
						AddIdent(pd.Ident.Name()).Emit()
				} else {
					declared[pd.Ident] = true
					fn.Params = append(fn.Params, ParamInfo{
						Ident:        pd.Ident,
						IdentLoc:     pd.IdentLoc,
						TypeSpelling: pd.TypeSpelling(),
					})
				}
			}
			if p.tok.Kind != lexer.Kind_Comma {
				break
			}
			p.ConsumeToken()
		}
		if p.ExpectAndConsume(lexer.Kind_Semi, diag.ErrExpectedSemiDecl, source.LocationInvalid) {
			p.SkipUntil(0, lexer.Kind_Semi)
		}
	}
	// Undeclared identifiers default to int.
	for _, name := range fn.KnRNames {
		if !declared[name] {
			p.diags.Report(p.tok.Loc, diag.ErrKnRMissingParamDecl).
				AddIdent(name.Name()).Emit()
			fn.Params = append(fn.Params, ParamInfo{Ident: name, TypeSpelling: "int"})
		}
	}
}

func knrListContains(names []*lexer.Info, info *lexer.Info) bool {
	for _, n := range names {
		if n == info {
			return true
		}
	}
	return false
}

// ParseTypeName parses specifier-qualifier-list abstract-declarator and
// returns the flattened spelling. ok is false if nothing type-like was
// found.
func (p *Parser) ParseTypeName() (string, bool) {
	if !p.isTypeSpecifierStart() {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedTypeName).Emit()
		return "", false
	}
	ds := &DeclSpec{}
	p.ParseDeclarationSpecifiers(ds)
	d := &Declarator{DeclSpec: ds, Context: TypeNameContext}
	p.ParseDeclarator(d)
	return d.TypeSpelling(), true
}

// ParseSimpleAsm parses GCC `asm [volatile] ( "..." )`, the form legal at
// file scope. The full statement form with operands lives in stmt.go.
func (p *Parser) ParseSimpleAsm() Result {
	asmLoc := p.ConsumeToken()
	isVolatile := false
	if p.tok.Kind == lexer.Kind_KwVolatile {
		isVolatile = true
		p.ConsumeToken()
	}
	if p.tok.Kind != lexer.Kind_LParen {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedLParen).Emit()
		return Invalid()
	}
	lparenLoc := p.ConsumeToken()
	if p.tok.Kind != lexer.Kind_StringLiteral {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedStringLiteralAsm).Emit()
		p.SkipUntil(StopAtSemi, lexer.Kind_RParen)
		return Invalid()
	}
	str := p.spelling(&p.tok)
	p.ConsumeToken()
	if p.ExpectAndConsume(lexer.Kind_RParen, diag.ErrExpectedRParenParse, lparenLoc) {
		p.SkipUntil(StopAtSemi, lexer.Kind_RParen)
		return Invalid()
	}
	return p.actions.ActOnAsmStmt(asmLoc, isVolatile, str)
}

// ParseTemplateDeclaration parses C++ `template < parameter-list >
// declaration`. Parameters are classified but not bound.
func (p *Parser) ParseTemplateDeclaration() Result {
	p.ConsumeToken() // template
	if p.ExpectAndConsume(lexer.Kind_Less, diag.ErrExpectedToken, source.LocationInvalid) {
		p.SkipUntil(StopAtSemi, lexer.Kind_Greater)
		return Invalid()
	}
	for p.tok.Kind != lexer.Kind_Greater && p.tok.Kind != lexer.Kind_EOF {
		p.parseTemplateParameter()
		if p.tok.Kind != lexer.Kind_Comma {
			break
		}
		p.ConsumeToken()
	}
	if p.tok.Kind != lexer.Kind_Greater {
		p.diags.Report(p.tok.Loc, diag.ErrExpectedGreaterInTemplate).Emit()
		p.SkipUntil(StopAtSemi, lexer.Kind_Greater)
		return Invalid()
	}
	p.ConsumeToken()
	return p.ParseDeclarationOrFunctionDefinition()
}

func (p *Parser) parseTemplateParameter() {
	switch p.tok.Kind {
	case lexer.Kind_KwClass, lexer.Kind_KwTypename:
		// Type parameter: class/typename ident? (= type-id)?
		p.ConsumeToken()
		if p.tok.Kind == lexer.Kind_Identifier {
			p.ConsumeToken()
		}
		if p.tok.Kind == lexer.Kind_Equal {
			p.ConsumeToken()
			p.ParseTypeName()
		}
	case lexer.Kind_KwTemplate:
		// Template template parameter: template < ... > class ident?
		p.ConsumeToken()
		if p.ExpectAndConsume(lexer.Kind_Less, diag.ErrExpectedToken, source.LocationInvalid) {
			p.SkipUntil(DontConsume, lexer.Kind_Greater, lexer.Kind_Comma)
			return
		}
		for p.tok.Kind != lexer.Kind_Greater && p.tok.Kind != lexer.Kind_EOF {
			p.parseTemplateParameter()
			if p.tok.Kind != lexer.Kind_Comma {
				break
			}
			p.ConsumeToken()
		}
		if p.tok.Kind != lexer.Kind_Greater {
			p.diags.Report(p.tok.Loc, diag.ErrExpectedGreaterInTemplate).Emit()
			return
		}
		p.ConsumeToken()
		if p.ExpectAndConsume(lexer.Kind_KwClass, diag.ErrExpectedToken, source.LocationInvalid) {
			return
		}
		if p.tok.Kind == lexer.Kind_Identifier {
			p.ConsumeToken()
		}
	default:
		// Non-type parameter: declaration-specifiers declarator.
		if !p.isDeclarationSpecifier() {
			p.diags.Report(p.tok.Loc, diag.ErrExpectedTemplateParam).Emit()
			p.SkipUntil(DontConsume, lexer.Kind_Greater, lexer.Kind_Comma)
			return
		}
		ds := &DeclSpec{}
		p.ParseDeclarationSpecifiers(ds)
		d := &Declarator{DeclSpec: ds, Context: PrototypeContext}
		p.ParseDeclarator(d)
		if p.tok.Kind == lexer.Kind_Equal {
			p.ConsumeToken()
			p.ParseAssignmentExpression()
		}
	}
}
