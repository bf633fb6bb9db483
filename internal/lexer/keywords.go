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

import "github.com/EngFlow/ccfront/internal/lang"

// Availability of a keyword under one dialect: 0 it is a keyword, 1 it is
// an extension keyword, 2 it is a plain identifier. A keyword is bound when
// availability plus the extensions-disabled bit stays below 2, and marked
// as an extension when availability is 1.
const (
	kwEnabled = iota
	kwExtension
	kwDisabled
)

type keywordEntry struct {
	name string
	kind Kind
	// availability per dialect family
	c90, c99, cpp int
}

// every-dialect keyword
func kw(name string, kind Kind) keywordEntry {
	return keywordEntry{name, kind, kwEnabled, kwEnabled, kwEnabled}
}

// C99-only keyword, an extension elsewhere
func kw99(name string, kind Kind) keywordEntry {
	return keywordEntry{name, kind, kwExtension, kwEnabled, kwExtension}
}

// C++-only keyword, unknown to C
func kwCPP(name string, kind Kind) keywordEntry {
	return keywordEntry{name, kind, kwDisabled, kwDisabled, kwEnabled}
}

// GNU extension keyword in every dialect
func kwExt(name string, kind Kind) keywordEntry {
	return keywordEntry{name, kind, kwExtension, kwExtension, kwExtension}
}

var keywords = []keywordEntry{
	kw("auto", Kind_KwAuto),
	kw("break", Kind_KwBreak),
	kw("case", Kind_KwCase),
	kw("char", Kind_KwChar),
	kw("const", Kind_KwConst),
	kw("continue", Kind_KwContinue),
	kw("default", Kind_KwDefault),
	kw("do", Kind_KwDo),
	kw("double", Kind_KwDouble),
	kw("else", Kind_KwElse),
	kw("enum", Kind_KwEnum),
	kw("extern", Kind_KwExtern),
	kw("float", Kind_KwFloat),
	kw("for", Kind_KwFor),
	kw("goto", Kind_KwGoto),
	kw("if", Kind_KwIf),
	kw("int", Kind_KwInt),
	kw("long", Kind_KwLong),
	kw("register", Kind_KwRegister),
	kw("return", Kind_KwReturn),
	kw("short", Kind_KwShort),
	kw("signed", Kind_KwSigned),
	kw("sizeof", Kind_KwSizeof),
	kw("static", Kind_KwStatic),
	kw("struct", Kind_KwStruct),
	kw("switch", Kind_KwSwitch),
	kw("typedef", Kind_KwTypedef),
	kw("union", Kind_KwUnion),
	kw("unsigned", Kind_KwUnsigned),
	kw("void", Kind_KwVoid),
	kw("volatile", Kind_KwVolatile),
	kw("while", Kind_KwWhile),

	kw99("inline", Kind_KwInline),
	kw99("restrict", Kind_KwRestrict),
	kw99("_Bool", Kind_KwBool),
	kw99("_Complex", Kind_KwComplex),
	kw99("_Imaginary", Kind_KwImaginary),

	kwCPP("bool", Kind_KwBool),
	kwCPP("catch", Kind_KwCatch),
	kwCPP("class", Kind_KwClass),
	kwCPP("delete", Kind_KwDelete),
	kwCPP("friend", Kind_KwFriend),
	kwCPP("mutable", Kind_KwMutable),
	kwCPP("namespace", Kind_KwNamespace),
	kwCPP("new", Kind_KwNew),
	kwCPP("operator", Kind_KwOperator),
	kwCPP("private", Kind_KwPrivate),
	kwCPP("protected", Kind_KwProtected),
	kwCPP("public", Kind_KwPublic),
	kwCPP("template", Kind_KwTemplate),
	kwCPP("this", Kind_KwThis),
	kwCPP("throw", Kind_KwThrow),
	kwCPP("try", Kind_KwTry),
	kwCPP("typename", Kind_KwTypename),
	kwCPP("using", Kind_KwUsing),
	kwCPP("virtual", Kind_KwVirtual),
	kwCPP("wchar_t", Kind_KwWcharT),

	{name: "asm", kind: Kind_KwAsm, c90: kwExtension, c99: kwExtension, cpp: kwEnabled},
	kwExt("typeof", Kind_KwTypeof),
	kwExt("__thread", Kind_KwThread),
	kwExt("__alignof", Kind_KwAlignof),
	kwExt("__alignof__", Kind_KwAlignof),
	kwExt("__asm", Kind_KwMSAsm),
	kwExt("__asm__", Kind_KwAsm),
	kwExt("__attribute__", Kind_KwAttribute),
	kwExt("__const", Kind_KwConst),
	kwExt("__extension__", Kind_KwExtension),
	kwExt("__inline", Kind_KwInline),
	kwExt("__inline__", Kind_KwInline),
	kwExt("__restrict", Kind_KwRestrict),
	kwExt("__builtin_va_arg", Kind_KwBuiltinVaArg),
	kwExt("__signed__", Kind_KwSigned),
	kwExt("__volatile__", Kind_KwVolatile),
}

var ppKeywords = map[string]PPKeyword{
	"if": PPKw_If, "ifdef": PPKw_Ifdef, "ifndef": PPKw_Ifndef,
	"elif": PPKw_Elif, "else": PPKw_Else, "endif": PPKw_Endif,
	"define": PPKw_Define, "undef": PPKw_Undef,
	"include": PPKw_Include, "include_next": PPKw_IncludeNext, "import": PPKw_Import,
	"line": PPKw_Line, "pragma": PPKw_Pragma,
	"error": PPKw_Error, "warning": PPKw_Warning,
	"ident": PPKw_Ident, "sccs": PPKw_Sccs,
	"assert": PPKw_Assert, "unassert": PPKw_Unassert,
}

var objcKeywords = map[string]ObjCKeyword{
	"class": ObjCKw_Class, "compatibility_alias": ObjCKw_CompatibilityAlias,
	"defs": ObjCKw_Defs, "encode": ObjCKw_Encode, "end": ObjCKw_End,
	"implementation": ObjCKw_Implementation, "interface": ObjCKw_Interface,
	"private": ObjCKw_Private, "protected": ObjCKw_Protected,
	"protocol": ObjCKw_Protocol, "public": ObjCKw_Public,
	"selector": ObjCKw_Selector, "throw": ObjCKw_Throw, "try": ObjCKw_Try,
	"catch": ObjCKw_Catch, "finally": ObjCKw_Finally,
	"synchronized": ObjCKw_Synchronized,
}

// AddKeywords binds the keyword, preprocessor-keyword and Objective-C
// keyword kinds for the given dialect. A single identifier may carry all
// three bindings at once; they live in separate Info fields.
func AddKeywords(table *Table, opts lang.Options) {
	noExt := 0
	if opts.NoExtensions {
		noExt = 1
	}
	for _, entry := range keywords {
		avail := entry.c90
		switch {
		case opts.CPlusPlus:
			avail = entry.cpp
		case opts.C99:
			avail = entry.c99
		}
		if avail+noExt >= 2 {
			continue
		}
		info := table.Get(entry.name)
		info.TokenKind = entry.kind
		info.IsExtension = avail == kwExtension
	}

	for name, ppk := range ppKeywords {
		table.Get(name).PPKeyword = ppk
	}
	if opts.ObjC1 {
		for name, ok := range objcKeywords {
			table.Get(name).ObjCKw = ok
		}
	}
}
