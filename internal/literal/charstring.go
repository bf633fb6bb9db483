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
	"encoding/binary"
	"strings"

	"github.com/EngFlow/ccfront/internal/diag"
	"github.com/EngFlow/ccfront/internal/lang"
	"github.com/EngFlow/ccfront/internal/lexer"
	"github.com/EngFlow/ccfront/internal/source"
)

// processEscape decodes one escape sequence (the caller consumed the
// backslash). charWidth bounds numeric escapes; overlong values are masked
// down with a diagnostic.
func processEscape(s string, i int, loc source.Location, diags *diag.Engine, charWidth int) (value uint32, next int, hadError bool) {
	if i >= len(s) {
		return 0, i, true
	}
	c := s[i]
	i++
	switch c {
	case '\\', '\'', '"', '?':
		return uint32(c), i, false
	case 'a':
		return 7, i, false
	case 'b':
		return 8, i, false
	case 'e':
		diags.Report(loc, diag.ExtNonStandardEscape).AddString("e").Emit()
		return 27, i, false
	case 'f':
		return 12, i, false
	case 'n':
		return 10, i, false
	case 'r':
		return 13, i, false
	case 't':
		return 9, i, false
	case 'v':
		return 11, i, false
	case 'x':
		if i >= len(s) || digitValue(s[i]) < 0 || digitValue(s[i]) > 15 {
			diags.Report(loc, diag.ErrHexEscapeNoDigits).Emit()
			return 0, i, true
		}
		var v uint64
		overflowed := false
		for i < len(s) {
			d := digitValue(s[i])
			if d < 0 || d > 15 {
				break
			}
			if v>>60 != 0 {
				overflowed = true
			}
			v = v<<4 | uint64(d)
			i++
		}
		if charWidth < 64 && v >= uint64(1)<<uint(charWidth) {
			overflowed = true
			v &= uint64(1)<<uint(charWidth) - 1
		}
		if overflowed {
			diags.Report(loc, diag.WarnHexEscapeOutOfRange).Emit()
		}
		return uint32(v), i, false
	case '0', '1', '2', '3', '4', '5', '6', '7':
		// Up to 3 octal digits, strictly: '\0123' is '\012' then '3'.
		v := uint32(c - '0')
		for digits := 1; digits < 3 && i < len(s) && s[i] >= '0' && s[i] <= '7'; digits++ {
			v = v<<3 | uint32(s[i]-'0')
			i++
		}
		if charWidth < 32 && v >= uint32(1)<<uint(charWidth) {
			diags.Report(loc, diag.WarnOctalEscapeOutOfRange).Emit()
			v &= uint32(1)<<uint(charWidth) - 1
		}
		return v, i, false
	case '(', '{', '[', '%':
		diags.Report(loc, diag.ExtNonStandardEscape).AddString(string(c)).Emit()
		return uint32(c), i, false
	default:
		diags.Report(loc, diag.ExtUnknownEscape).AddString(string(c)).Emit()
		return uint32(c), i, false
	}
}

// CharParser decodes one character constant.
type CharParser struct {
	Value    int64
	IsWide   bool
	HadError bool
	IsMulti  bool
}

// ParseChar decodes spelling, which includes the quotes and any L prefix.
func ParseChar(spelling string, loc source.Location, diags *diag.Engine, opts lang.Options) *CharParser {
	p := &CharParser{}
	s := spelling
	if strings.HasPrefix(s, "L") {
		p.IsWide = true
		s = s[1:]
	}
	if len(s) < 2 || s[0] != '\'' || s[len(s)-1] != '\'' {
		p.HadError = true
		return p
	}
	s = s[1 : len(s)-1]
	if s == "" {
		p.HadError = true
		return p
	}

	charWidth := opts.CharWidth
	if p.IsWide {
		charWidth = opts.WCharWidth
	}

	var chars []uint32
	for i := 0; i < len(s); {
		if s[i] == '\\' {
			v, next, bad := processEscape(s, i+1, loc, diags, charWidth)
			if bad {
				p.HadError = true
			}
			chars = append(chars, v)
			i = next
		} else {
			chars = append(chars, uint32(s[i]))
			i++
		}
	}

	switch {
	case len(chars) == 1:
		v := int64(chars[0])
		// Narrow constants with the high bit set are sign extended when the
		// target char is signed.
		if !p.IsWide && opts.CharIsSigned && charWidth == 8 && v >= 0x80 {
			v = int64(int8(v))
		}
		p.Value = v
	case p.IsWide:
		// Wide multi-char constants keep only the last character. Inherited
		// gcc-compatible behavior; see the character literal tests.
		diags.Report(loc, diag.WarnExtraneousWideChars).Emit()
		p.IsMulti = true
		p.Value = int64(chars[len(chars)-1])
	default:
		// Narrow multi-char constants concatenate by shift-and-or.
		diags.Report(loc, diag.WarnMultiCharConstant).Emit()
		p.IsMulti = true
		if len(chars) > 4 {
			diags.Report(loc, diag.WarnCharConstTooLarge).Emit()
			chars = chars[len(chars)-4:]
		}
		var v uint32
		for _, c := range chars {
			v = v<<8 | c&0xFF
		}
		p.Value = int64(v)
	}
	return p
}

// StringParser joins a sequence of adjacent string tokens into one literal
// (translation phase 6), processing escapes exactly like character
// constants.
type StringParser struct {
	Value    []byte // decoded bytes, wide elements little-endian
	IsWide   bool
	IsPascal bool
	HadError bool

	// byteWidth is the decoded element size, CharWidth or WCharWidth in
	// bytes depending on wideness.
	byteWidth int
}

// ParseString decodes toks, which must all be string literals.
func ParseString(toks []lexer.Token, sm *source.SourceManager, diags *diag.Engine, opts lang.Options) *StringParser {
	p := &StringParser{}
	// Wideness infects the whole concatenation.
	spellings := make([]string, len(toks))
	for i := range toks {
		spellings[i] = lexer.Spelling(sm, opts, &toks[i])
		if strings.HasPrefix(spellings[i], "L") {
			p.IsWide = true
		}
	}
	charWidth := opts.CharWidth
	if p.IsWide {
		charWidth = opts.WCharWidth
	}
	byteWidth := charWidth / 8
	p.byteWidth = byteWidth

	var out []byte
	writeChar := func(v uint32) {
		switch byteWidth {
		case 1:
			out = append(out, byte(v))
		case 2:
			out = binary.LittleEndian.AppendUint16(out, uint16(v))
		case 4:
			out = binary.LittleEndian.AppendUint32(out, v)
		}
	}

	for ti, spelled := range spellings {
		s := strings.TrimPrefix(spelled, "L")
		if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
			p.HadError = true
			continue
		}
		s = s[1 : len(s)-1]
		i := 0
		// A \p right after the first token's opening quote selects Pascal
		// string form: byte 0 is reserved for the length.
		if ti == 0 && opts.PascalStrings && strings.HasPrefix(s, `\p`) {
			p.IsPascal = true
			writeChar(0)
			i = 2
		}
		loc := toks[ti].Loc
		for i < len(s) {
			if s[i] == '\\' {
				v, next, bad := processEscape(s, i+1, loc, diags, charWidth)
				if bad {
					p.HadError = true
				}
				writeChar(v)
				i = next
			} else {
				writeChar(uint32(s[i]))
				i++
			}
		}
	}

	if p.IsPascal {
		length := len(out)/byteWidth - 1
		if length > 255 {
			diags.Report(toks[0].Loc, diag.ErrPascalStringTooLong).Emit()
			p.HadError = true
		}
		switch byteWidth {
		case 1:
			out[0] = byte(length)
		case 2:
			binary.LittleEndian.PutUint16(out, uint16(length))
		case 4:
			binary.LittleEndian.PutUint32(out, uint32(length))
		}
	}
	// Null terminate with char-width zeros.
	writeChar(0)
	p.Value = out
	return p
}

// ByteLength returns the decoded length in bytes excluding the terminator.
func (p *StringParser) ByteLength() int {
	return len(p.Value) - p.byteWidth
}
