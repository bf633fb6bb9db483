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

import "github.com/EngFlow/ccfront/internal/source"

// Kind classifies one token. Keywords are classified lazily: the lexer
// always produces Kind_Identifier and the identifier table rebinds the kind
// when the name is a keyword in the active dialect.
type Kind uint16

const (
	Kind_Unknown Kind = iota // not a token
	Kind_EOF                 // end of buffer
	Kind_EOM                 // end of preprocessing directive

	Kind_Identifier      // abcde123
	Kind_NumericConstant // 0x123
	Kind_CharConstant    // 'a' or L'a'
	Kind_StringLiteral   // "foo" or L"foo"
	Kind_AngleString     // <foo.h>, only in filename mode

	// Punctuators.

	Kind_LParen
	Kind_RParen
	Kind_LSquare
	Kind_RSquare
	Kind_LBrace
	Kind_RBrace
	Kind_Period
	Kind_Ellipsis
	Kind_Amp
	Kind_AmpAmp
	Kind_AmpEqual
	Kind_Star
	Kind_StarEqual
	Kind_Plus
	Kind_PlusPlus
	Kind_PlusEqual
	Kind_Minus
	Kind_MinusMinus
	Kind_MinusEqual
	Kind_Arrow
	Kind_Tilde
	Kind_Exclaim
	Kind_ExclaimEqual
	Kind_Slash
	Kind_SlashEqual
	Kind_Percent
	Kind_PercentEqual
	Kind_Less
	Kind_LessLess
	Kind_LessEqual
	Kind_LessLessEqual
	Kind_Greater
	Kind_GreaterGreater
	Kind_GreaterEqual
	Kind_GreaterGreaterEqual
	Kind_Caret
	Kind_CaretEqual
	Kind_Pipe
	Kind_PipePipe
	Kind_PipeEqual
	Kind_Question
	Kind_Colon
	Kind_ColonColon
	Kind_Semi
	Kind_Equal
	Kind_EqualEqual
	Kind_Comma
	Kind_Hash
	Kind_HashHash
	Kind_HashAt
	Kind_At

	// C keywords. Bound to identifiers by the keyword table per dialect.

	Kind_KwAuto
	Kind_KwBreak
	Kind_KwCase
	Kind_KwChar
	Kind_KwConst
	Kind_KwContinue
	Kind_KwDefault
	Kind_KwDo
	Kind_KwDouble
	Kind_KwElse
	Kind_KwEnum
	Kind_KwExtern
	Kind_KwFloat
	Kind_KwFor
	Kind_KwGoto
	Kind_KwIf
	Kind_KwInline
	Kind_KwInt
	Kind_KwLong
	Kind_KwRegister
	Kind_KwRestrict
	Kind_KwReturn
	Kind_KwShort
	Kind_KwSigned
	Kind_KwSizeof
	Kind_KwStatic
	Kind_KwStruct
	Kind_KwSwitch
	Kind_KwTypedef
	Kind_KwUnion
	Kind_KwUnsigned
	Kind_KwVoid
	Kind_KwVolatile
	Kind_KwWhile
	Kind_KwBool
	Kind_KwComplex
	Kind_KwImaginary

	// C++ keywords.

	Kind_KwCatch
	Kind_KwClass
	Kind_KwDelete
	Kind_KwFriend
	Kind_KwMutable
	Kind_KwNamespace
	Kind_KwNew
	Kind_KwOperator
	Kind_KwPrivate
	Kind_KwProtected
	Kind_KwPublic
	Kind_KwTemplate
	Kind_KwThis
	Kind_KwThrow
	Kind_KwTry
	Kind_KwTypename
	Kind_KwUsing
	Kind_KwVirtual
	Kind_KwWcharT

	// Extension keywords.

	Kind_KwAsm
	Kind_KwThread       // __thread
	Kind_KwAlignof      // __alignof
	Kind_KwAttribute    // __attribute__
	Kind_KwTypeof       // typeof
	Kind_KwMSAsm        // __asm (Microsoft)
	Kind_KwExtension    // __extension__
	Kind_KwBuiltinVaArg // __builtin_va_arg

	// Annotation token for a #pragma the preprocessor hands to the parser.
	Kind_AnnotPragmaOpenMP

	NumKinds
)

var kindSpellings = map[Kind]string{
	Kind_EOF: "<eof>", Kind_EOM: "<eom>",
	Kind_Identifier: "identifier", Kind_NumericConstant: "numeric constant",
	Kind_CharConstant: "character constant", Kind_StringLiteral: "string literal",
	Kind_AngleString: "<header name>",
	Kind_LParen:      "(", Kind_RParen: ")", Kind_LSquare: "[", Kind_RSquare: "]",
	Kind_LBrace: "{", Kind_RBrace: "}", Kind_Period: ".", Kind_Ellipsis: "...",
	Kind_Amp: "&", Kind_AmpAmp: "&&", Kind_AmpEqual: "&=",
	Kind_Star: "*", Kind_StarEqual: "*=", Kind_Plus: "+", Kind_PlusPlus: "++",
	Kind_PlusEqual: "+=", Kind_Minus: "-", Kind_MinusMinus: "--", Kind_MinusEqual: "-=",
	Kind_Arrow: "->", Kind_Tilde: "~", Kind_Exclaim: "!", Kind_ExclaimEqual: "!=",
	Kind_Slash: "/", Kind_SlashEqual: "/=", Kind_Percent: "%", Kind_PercentEqual: "%=",
	Kind_Less: "<", Kind_LessLess: "<<", Kind_LessEqual: "<=", Kind_LessLessEqual: "<<=",
	Kind_Greater: ">", Kind_GreaterGreater: ">>", Kind_GreaterEqual: ">=",
	Kind_GreaterGreaterEqual: ">>=", Kind_Caret: "^", Kind_CaretEqual: "^=",
	Kind_Pipe: "|", Kind_PipePipe: "||", Kind_PipeEqual: "|=",
	Kind_Question: "?", Kind_Colon: ":", Kind_ColonColon: "::", Kind_Semi: ";",
	Kind_Equal: "=", Kind_EqualEqual: "==", Kind_Comma: ",",
	Kind_Hash: "#", Kind_HashHash: "##", Kind_HashAt: "#@", Kind_At: "@",
	Kind_KwClass: "class", Kind_KwWhile: "while",
}

// Spelling returns the fixed source text of punctuators, or a description
// for variable-spelling kinds.
func (k Kind) Spelling() string {
	if s, ok := kindSpellings[k]; ok {
		return s
	}
	return "<unknown>"
}

// Flags records per-token lexical facts.
type Flags uint8

const (
	// FlagStartOfLine: the token is the first on its logical line.
	FlagStartOfLine Flags = 1 << iota
	// FlagLeadingSpace: whitespace preceded the token.
	FlagLeadingSpace
	// FlagDisableExpand: the identifier must not be macro expanded again.
	FlagDisableExpand
	// FlagNeedsCleaning: the source bytes contain trigraphs or escaped
	// newlines; spelling requests must clean them first.
	FlagNeedsCleaning
)

// Token is a fixed-size value the lexer hands out one at a time. The Info
// payload, when present, outlives every token that references it (it is
// interned in the identifier table).
type Token struct {
	Kind   Kind
	Loc    source.Location
	Length uint32
	Flags  Flags
	Info   *Info // identifier payload, nil for other kinds
}

func (t *Token) Is(k Kind) bool    { return t.Kind == k }
func (t *Token) IsNot(k Kind) bool { return t.Kind != k }

func (t *Token) StartOfLine() bool   { return t.Flags&FlagStartOfLine != 0 }
func (t *Token) LeadingSpace() bool  { return t.Flags&FlagLeadingSpace != 0 }
func (t *Token) DisableExpand() bool { return t.Flags&FlagDisableExpand != 0 }
func (t *Token) NeedsCleaning() bool { return t.Flags&FlagNeedsCleaning != 0 }

func (t *Token) SetFlag(f Flags)   { t.Flags |= f }
func (t *Token) ClearFlag(f Flags) { t.Flags &^= f }

// Name returns the identifier name, or "" for non-identifiers.
func (t *Token) Name() string {
	if t.Info == nil {
		return ""
	}
	return t.Info.Name()
}
