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

import (
	"testing"

	"github.com/EngFlow/ccfront/internal/diag"
	"github.com/EngFlow/ccfront/internal/lang"
	"github.com/EngFlow/ccfront/internal/source"
	"github.com/stretchr/testify/assert"
)

// lexAll runs the raw lexer over src and returns every token up to EOF,
// plus the diagnostic counts.
func lexAll(src string, opts lang.Options) ([]Token, []string, *diag.CountingClient) {
	sm := source.NewSourceManager()
	fid := sm.CreateBufferFileID("test.c", []byte(src))
	client := &diag.CountingClient{}
	diags := diag.NewEngine(sm, client)
	table := NewTable()
	AddKeywords(table, opts)
	l := New(sm, diags, opts, table, fid)

	var toks []Token
	var spellings []string
	for {
		var tok Token
		l.Lex(&tok)
		if tok.Is(Kind_EOF) {
			return toks, spellings, client
		}
		toks = append(toks, tok)
		spellings = append(spellings, Spelling(sm, opts, &tok))
	}
}

func kindsOf(toks []Token) []Kind {
	kinds := make([]Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	return kinds
}

func TestPunctuators(t *testing.T) {
	testCases := []struct {
		input    string
		expected []Kind
	}{
		{"( ) [ ] { }", []Kind{Kind_LParen, Kind_RParen, Kind_LSquare, Kind_RSquare, Kind_LBrace, Kind_RBrace}},
		{"a->b", []Kind{Kind_Identifier, Kind_Arrow, Kind_Identifier}},
		{"<<= >>= << >>", []Kind{Kind_LessLessEqual, Kind_GreaterGreaterEqual, Kind_LessLess, Kind_GreaterGreater}},
		{"&& & &= ||", []Kind{Kind_AmpAmp, Kind_Amp, Kind_AmpEqual, Kind_PipePipe}},
		{"++ -- += -=", []Kind{Kind_PlusPlus, Kind_MinusMinus, Kind_PlusEqual, Kind_MinusEqual}},
		{"== != <= >=", []Kind{Kind_EqualEqual, Kind_ExclaimEqual, Kind_LessEqual, Kind_GreaterEqual}},
		{"# ## ...", []Kind{Kind_Hash, Kind_HashHash, Kind_Ellipsis}},
		{".5 . ..", []Kind{Kind_NumericConstant, Kind_Period, Kind_Period, Kind_Period}},
		{"? : ; ,", []Kind{Kind_Question, Kind_Colon, Kind_Semi, Kind_Comma}},
	}
	for _, tc := range testCases {
		toks, _, _ := lexAll(tc.input, lang.DefaultOptions(lang.C99))
		assert.Equal(t, tc.expected, kindsOf(toks), "input %q", tc.input)
	}
}

func TestDialectKeywords(t *testing.T) {
	testCases := []struct {
		input    string
		dialect  lang.Dialect
		expected Kind
	}{
		{"int", lang.C90, Kind_KwInt},
		{"restrict", lang.C99, Kind_KwRestrict},
		{"restrict", lang.C90, Kind_Identifier},
		{"inline", lang.C99, Kind_KwInline},
		{"_Bool", lang.C99, Kind_KwBool},
		{"class", lang.CPlusPlus, Kind_KwClass},
		{"class", lang.C99, Kind_Identifier},
		{"bool", lang.CPlusPlus, Kind_KwBool},
		{"bool", lang.C90, Kind_Identifier},
		{"typeof", lang.C99, Kind_KwTypeof},
		{"__attribute__", lang.C90, Kind_KwAttribute},
		{"__builtin_va_arg", lang.C99, Kind_KwBuiltinVaArg},
	}
	for _, tc := range testCases {
		toks, _, _ := lexAll(tc.input, lang.DefaultOptions(tc.dialect))
		if assert.Len(t, toks, 1, "input %q", tc.input) {
			assert.Equal(t, tc.expected, toks[0].Kind, "input %q dialect %v", tc.input, tc.dialect)
		}
	}
}

func TestExtensionKeywordsDisabled(t *testing.T) {
	opts := lang.DefaultOptions(lang.C99)
	opts.NoExtensions = true
	toks, _, _ := lexAll("typeof __attribute__ inline", opts)
	assert.Equal(t, []Kind{Kind_Identifier, Kind_Identifier, Kind_KwInline}, kindsOf(toks))
}

func TestLiterals(t *testing.T) {
	testCases := []struct {
		input    string
		expected []Kind
	}{
		{"42 0x1f 1.5e3 1ULL", []Kind{Kind_NumericConstant, Kind_NumericConstant, Kind_NumericConstant, Kind_NumericConstant}},
		{`'a' L'a'`, []Kind{Kind_CharConstant, Kind_CharConstant}},
		{`"hi" L"wide"`, []Kind{Kind_StringLiteral, Kind_StringLiteral}},
		{`'\''`, []Kind{Kind_CharConstant}},
		{`"esc \" quote"`, []Kind{Kind_StringLiteral}},
	}
	for _, tc := range testCases {
		toks, _, client := lexAll(tc.input, lang.DefaultOptions(lang.C99))
		assert.Equal(t, tc.expected, kindsOf(toks), "input %q", tc.input)
		assert.Zero(t, client.Errors, "input %q", tc.input)
	}
}

func TestUnterminatedLiterals(t *testing.T) {
	testCases := []struct {
		input string
	}{
		{`"abc`},
		{`'a`},
		{"/* never closed"},
	}
	for _, tc := range testCases {
		_, _, client := lexAll(tc.input, lang.DefaultOptions(lang.C99))
		assert.Equal(t, 1, client.Errors, "input %q", tc.input)
	}
}

func TestLineSplice(t *testing.T) {
	toks, spellings, _ := lexAll("ab\\\ncd", lang.DefaultOptions(lang.C99))
	if assert.Len(t, toks, 1) {
		assert.Equal(t, Kind_Identifier, toks[0].Kind)
		assert.Equal(t, "abcd", spellings[0])
		assert.Equal(t, "abcd", toks[0].Info.Name())
	}
}

func TestTrigraphs(t *testing.T) {
	opts := lang.DefaultOptions(lang.C90)
	toks, _, _ := lexAll("??( ??)", opts)
	assert.Equal(t, []Kind{Kind_LSquare, Kind_RSquare}, kindsOf(toks))

	// Without trigraph support the sequence stays three tokens.
	opts.Trigraphs = false
	toks, _, _ = lexAll("??(", opts)
	assert.Equal(t, []Kind{Kind_Question, Kind_Question, Kind_LParen}, kindsOf(toks))
}

func TestDigraphs(t *testing.T) {
	toks, _, _ := lexAll("<% %> <: :> %:", lang.DefaultOptions(lang.C99))
	assert.Equal(t, []Kind{Kind_LBrace, Kind_RBrace, Kind_LSquare, Kind_RSquare, Kind_Hash}, kindsOf(toks))

	toks, _, _ = lexAll("<% <:", lang.DefaultOptions(lang.C90))
	assert.Equal(t, []Kind{Kind_Less, Kind_Percent, Kind_Less, Kind_Colon}, kindsOf(toks))
}

func TestComments(t *testing.T) {
	toks, _, _ := lexAll("a /* comment */ b // tail\nc", lang.DefaultOptions(lang.C99))
	assert.Equal(t, []Kind{Kind_Identifier, Kind_Identifier, Kind_Identifier}, kindsOf(toks))

	// BCPL comments are an extension in C90; the tokens still lex.
	toks, _, _ = lexAll("a // tail\nb", lang.DefaultOptions(lang.C90))
	assert.Equal(t, []Kind{Kind_Identifier, Kind_Identifier}, kindsOf(toks))
}

func TestTokenFlags(t *testing.T) {
	toks, _, _ := lexAll("a b\nc", lang.DefaultOptions(lang.C99))
	if assert.Len(t, toks, 3) {
		assert.True(t, toks[0].StartOfLine())
		assert.False(t, toks[1].StartOfLine())
		assert.True(t, toks[1].LeadingSpace())
		assert.True(t, toks[2].StartOfLine())
	}
}

func TestIdentifierTable(t *testing.T) {
	table := NewTable()
	a := table.Get("alpha")
	assert.Same(t, a, table.Get("alpha"), "identifiers are interned")
	assert.Equal(t, "alpha", a.Name())
	assert.Nil(t, table.Lookup("missing"))
	assert.NotNil(t, table.Lookup("alpha"))

	// Interning survives table growth.
	for i := 0; i < 1000; i++ {
		table.Get(string(rune('a'+i%26)) + string(rune('0'+i%10)) + "_filler" + string(rune('a'+i/26%26)))
	}
	assert.Same(t, a, table.Get("alpha"))
}

func TestKindSpelling(t *testing.T) {
	assert.Equal(t, "<<=", Kind_LessLessEqual.Spelling())
	assert.Equal(t, "{", Kind_LBrace.Spelling())
	assert.Equal(t, "identifier", Kind_Identifier.Spelling())
}
