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

package literal

import (
	"testing"

	"github.com/EngFlow/ccfront/internal/diag"
	"github.com/EngFlow/ccfront/internal/lang"
	"github.com/EngFlow/ccfront/internal/lexer"
	"github.com/EngFlow/ccfront/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine() (*diag.Engine, *diag.CountingClient) {
	client := &diag.CountingClient{}
	return diag.NewEngine(nil, client), client
}

func TestParseNumericInteger(t *testing.T) {
	testCases := []struct {
		spelling   string
		radix      int
		value      uint64
		isUnsigned bool
		isLongLong bool
		overflow   bool
	}{
		{"0", 8, 0, false, false, false},
		{"42", 10, 42, false, false, false},
		{"0755", 8, 0o755, false, false, false},
		{"0x1F", 16, 0x1F, false, false, false},
		{"1U", 10, 1, true, false, false},
		{"1ul", 10, 1, true, false, false},
		{"1LL", 10, 1, false, true, false},
		{"18446744073709551615", 10, 1<<64 - 1, false, false, false},
		{"0xFFFFFFFFFFFFFFFF", 16, 1<<64 - 1, false, false, false},
		{"18446744073709551616", 10, 0, false, false, true},
	}
	opts := lang.DefaultOptions(lang.C99)
	for _, tc := range testCases {
		diags, client := testEngine()
		p := ParseNumeric(tc.spelling, source.LocationInvalid, diags, opts)
		require.False(t, p.HadError, "spelling %q", tc.spelling)
		assert.Zero(t, client.Errors, "spelling %q", tc.spelling)
		assert.Equal(t, tc.radix, p.Radix, "spelling %q", tc.spelling)
		assert.Equal(t, tc.isUnsigned, p.IsUnsigned, "spelling %q", tc.spelling)
		assert.Equal(t, tc.isLongLong, p.IsLongLong, "spelling %q", tc.spelling)
		assert.False(t, p.IsFloating, "spelling %q", tc.spelling)

		value, overflow := p.GetIntegerValue(64)
		assert.Equal(t, tc.overflow, overflow, "spelling %q", tc.spelling)
		if !tc.overflow {
			assert.Equal(t, tc.value, value, "spelling %q", tc.spelling)
		}
	}
}

func TestParseNumericNarrowWidth(t *testing.T) {
	diags, _ := testEngine()
	p := ParseNumeric("256", source.LocationInvalid, diags, lang.DefaultOptions(lang.C99))
	require.False(t, p.HadError)

	value, overflow := p.GetIntegerValue(8)
	assert.True(t, overflow)
	assert.Equal(t, uint64(0), value)

	value, overflow = p.GetIntegerValue(32)
	assert.False(t, overflow)
	assert.Equal(t, uint64(256), value)
}

func TestParseNumericFloat(t *testing.T) {
	testCases := []struct {
		spelling string
		value    float64
		isFloat  bool // "f" suffix
	}{
		{"1.5", 1.5, false},
		{"1e3", 1000, false},
		{"2.5f", 2.5, true},
		{".125", 0.125, false},
		{"0x1.8p1", 3.0, false},
	}
	opts := lang.DefaultOptions(lang.C99)
	for _, tc := range testCases {
		diags, _ := testEngine()
		p := ParseNumeric(tc.spelling, source.LocationInvalid, diags, opts)
		require.False(t, p.HadError, "spelling %q", tc.spelling)
		assert.True(t, p.IsFloating, "spelling %q", tc.spelling)
		assert.Equal(t, tc.isFloat, p.IsFloat, "spelling %q", tc.spelling)

		value, ok := p.GetFloatValue()
		assert.True(t, ok, "spelling %q", tc.spelling)
		assert.Equal(t, tc.value, value, "spelling %q", tc.spelling)
	}
}

func TestParseNumericBadSuffix(t *testing.T) {
	testCases := []string{"1z", "1uu", "1lul", "1.5e", "089"}
	opts := lang.DefaultOptions(lang.C99)
	for _, spelling := range testCases {
		diags, client := testEngine()
		p := ParseNumeric(spelling, source.LocationInvalid, diags, opts)
		assert.True(t, p.HadError, "spelling %q", spelling)
		assert.NotZero(t, client.Errors, "spelling %q", spelling)
	}
}

func TestParseChar(t *testing.T) {
	testCases := []struct {
		spelling string
		value    int64
		isWide   bool
		isMulti  bool
	}{
		{`'a'`, 'a', false, false},
		{`'\n'`, 10, false, false},
		{`'\0'`, 0, false, false},
		{`'\\'`, '\\', false, false},
		{`L'a'`, 'a', true, false},
		// Narrow multi-char constants concatenate bytes.
		{`'ab'`, 24930, false, true},
		// Wide multi-char constants keep the last character.
		{`L'ab'`, 'b', true, true},
		// Out-of-range bytes sign extend when char is signed.
		{`'\xFF'`, -1, false, false},
		{`'\777'`, -1, false, false},
	}
	opts := lang.DefaultOptions(lang.C99)
	for _, tc := range testCases {
		diags, _ := testEngine()
		p := ParseChar(tc.spelling, source.LocationInvalid, diags, opts)
		require.False(t, p.HadError, "spelling %q", tc.spelling)
		assert.Equal(t, tc.value, p.Value, "spelling %q", tc.spelling)
		assert.Equal(t, tc.isWide, p.IsWide, "spelling %q", tc.spelling)
		assert.Equal(t, tc.isMulti, p.IsMulti, "spelling %q", tc.spelling)
	}
}

func TestParseCharUnsigned(t *testing.T) {
	opts := lang.DefaultOptions(lang.C99)
	opts.CharIsSigned = false
	diags, _ := testEngine()
	p := ParseChar(`'\xFF'`, source.LocationInvalid, diags, opts)
	require.False(t, p.HadError)
	assert.Equal(t, int64(255), p.Value)
}

// stringToks lexes src and returns the string literal tokens it contains.
func stringToks(t *testing.T, src string, opts lang.Options) ([]lexer.Token, *source.SourceManager) {
	sm := source.NewSourceManager()
	fid := sm.CreateBufferFileID("test.c", []byte(src))
	diags := diag.NewEngine(sm, &diag.CountingClient{})
	table := lexer.NewTable()
	l := lexer.New(sm, diags, opts, table, fid)

	var toks []lexer.Token
	for {
		var tok lexer.Token
		l.Lex(&tok)
		if tok.Is(lexer.Kind_EOF) {
			return toks, sm
		}
		require.True(t, tok.Is(lexer.Kind_StringLiteral))
		toks = append(toks, tok)
	}
}

func TestParseString(t *testing.T) {
	testCases := []struct {
		src      string
		expected []byte // decoded bytes without the terminator
		isWide   bool
	}{
		{`"abc"`, []byte("abc"), false},
		{`"a\n"`, []byte{'a', 10}, false},
		{`"ab" "cd"`, []byte("abcd"), false},
		// Wideness infects the whole concatenation.
		{`"a" L"b"`, []byte{'a', 0, 0, 0, 'b', 0, 0, 0}, true},
		{`L"a"`, []byte{'a', 0, 0, 0}, true},
		{`"\x41\102"`, []byte{'A', 'B'}, false},
	}
	opts := lang.DefaultOptions(lang.C99)
	for _, tc := range testCases {
		toks, sm := stringToks(t, tc.src, opts)
		diags, _ := testEngine()
		p := ParseString(toks, sm, diags, opts)
		require.False(t, p.HadError, "src %q", tc.src)
		assert.Equal(t, tc.isWide, p.IsWide, "src %q", tc.src)
		assert.Equal(t, len(tc.expected), p.ByteLength(), "src %q", tc.src)
		assert.Equal(t, tc.expected, p.Value[:p.ByteLength()], "src %q", tc.src)
	}
}

func TestParseStringWCharWidth(t *testing.T) {
	// Wide element size follows WCharWidth, terminator included.
	opts := lang.DefaultOptions(lang.C99)
	opts.WCharWidth = 16
	toks, sm := stringToks(t, `L"ab"`, opts)
	diags, _ := testEngine()
	p := ParseString(toks, sm, diags, opts)
	require.False(t, p.HadError)
	assert.True(t, p.IsWide)
	assert.Equal(t, 4, p.ByteLength())
	assert.Equal(t, []byte{'a', 0, 'b', 0}, p.Value[:p.ByteLength()])
	assert.Equal(t, []byte{'a', 0, 'b', 0, 0, 0}, p.Value)
}

func TestParsePascalString(t *testing.T) {
	opts := lang.DefaultOptions(lang.C99)
	opts.PascalStrings = true
	toks, sm := stringToks(t, `"\pabc"`, opts)
	diags, _ := testEngine()
	p := ParseString(toks, sm, diags, opts)
	require.False(t, p.HadError)
	assert.True(t, p.IsPascal)
	assert.Equal(t, []byte{3, 'a', 'b', 'c'}, p.Value[:p.ByteLength()])
}
