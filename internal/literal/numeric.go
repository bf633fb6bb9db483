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

// Package literal decodes the spellings of numeric, character and string
// literals into values, reporting malformed input through the diagnostic
// engine. Parsers receive the cleaned token spelling; they never touch the
// raw source buffer.
package literal

import (
	"math"
	"math/bits"
	"strconv"
	"strings"

	"github.com/EngFlow/ccfront/internal/diag"
	"github.com/EngFlow/ccfront/internal/lang"
	"github.com/EngFlow/ccfront/internal/source"
)

// NumericParser decodes one numeric constant spelling.
type NumericParser struct {
	spelling string
	loc      source.Location
	diags    *diag.Engine
	opts     lang.Options

	HadError    bool
	IsUnsigned  bool
	IsLong      bool
	IsLongLong  bool
	IsFloat     bool // "f" suffix
	IsImaginary bool
	IsFloating  bool // has a period or exponent
	Radix       int

	digits   string // digit span, prefix stripped
	fullText string // digits plus any fraction/exponent, for float decoding
}

// ParseNumeric classifies and validates a numeric constant. Errors are
// reported immediately; HadError tells the caller the value is unusable.
func ParseNumeric(spelling string, loc source.Location, diags *diag.Engine, opts lang.Options) *NumericParser {
	p := &NumericParser{spelling: spelling, loc: loc, diags: diags, opts: opts, Radix: 10}
	p.parse()
	return p
}

func (p *NumericParser) diag(offset int, id diag.ID) *diag.Builder {
	return p.diags.Report(p.loc.WithOffset(offset), id)
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

func (p *NumericParser) parse() {
	s := p.spelling
	i := 0

	// Radix classification by prefix.
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		p.Radix = 16
		i = 2
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		p.Radix = 2
		i = 2
		p.diag(0, diag.ExtBinaryLiteral).Emit()
	case strings.HasPrefix(s, "0") && len(s) > 1:
		p.Radix = 8
		i = 1
	}

	digitsBegin := i
	maxDigit := 0
	for i < len(s) {
		d := digitValue(s[i])
		if d < 0 {
			break
		}
		if p.Radix == 16 {
			// all hex digits legal
		} else if d > maxDigit {
			maxDigit = d
		}
		if p.Radix != 16 && d >= 10 {
			break // 'e'/'f' etc. end the digit run outside hex
		}
		i++
	}
	p.digits = s[digitsBegin:i]
	floatBegin := i

	// Fraction and exponent switch the literal to floating form. An octal
	// constant with a '.' promotes to a decimal float.
	if i < len(s) && s[i] == '.' {
		p.IsFloating = true
		i++
		for i < len(s) && digitValue(s[i]) >= 0 && (p.Radix == 16 || digitValue(s[i]) < 10) {
			i++
		}
	}
	if i < len(s) {
		c := s[i]
		isExp := (p.Radix != 16 && (c == 'e' || c == 'E')) ||
			(p.Radix == 16 && (c == 'p' || c == 'P') && p.opts.HexFloats)
		if isExp {
			p.IsFloating = true
			i++
			if i < len(s) && (s[i] == '+' || s[i] == '-') {
				i++
			}
			if i >= len(s) || !isDecimalDigit(s[i]) {
				p.diag(i, diag.ErrExponentHasNoDigits).Emit()
				p.HadError = true
				return
			}
			for i < len(s) && isDecimalDigit(s[i]) {
				i++
			}
		}
	}
	if p.IsFloating && p.Radix == 8 {
		p.Radix = 10
	}
	if p.IsFloating && p.Radix == 16 && !strings.ContainsAny(s[floatBegin:], "pP") {
		p.diag(floatBegin, diag.ErrHexFloatRequiresExponent).Emit()
		p.HadError = true
		return
	}
	p.fullText = s[:i]

	if !p.IsFloating {
		// Validate the digit run against the radix now that we know the
		// constant is integral.
		limit := p.Radix
		if p.Radix == 16 {
			limit = 16
		}
		for off, c := range []byte(p.digits) {
			d := digitValue(c)
			if d >= limit {
				id := diag.ErrInvalidDigit
				if p.Radix == 2 {
					id = diag.ErrInvalidBinaryDigit
				}
				p.diag(digitsBegin+off, id).AddString(string(c)).Emit()
				p.HadError = true
				return
			}
		}
	}

	p.parseSuffix(s[i:], i)
}

func isDecimalDigit(c byte) bool { return c >= '0' && c <= '9' }

// parseSuffix accepts u/U, l/L (or ll/LL, same case), f/F (floats only) and
// i/I/j/J in any order, each at most once.
func (p *NumericParser) parseSuffix(suffix string, offset int) {
	for i := 0; i < len(suffix); i++ {
		c := suffix[i]
		switch c {
		case 'u', 'U':
			if p.IsUnsigned || p.IsFloating {
				p.invalidSuffix(suffix, offset)
				return
			}
			p.IsUnsigned = true
		case 'l', 'L':
			if p.IsLong || p.IsLongLong {
				p.invalidSuffix(suffix, offset)
				return
			}
			// Doubled same-case letter means long long.
			if i+1 < len(suffix) && suffix[i+1] == c {
				if p.IsFloating {
					p.invalidSuffix(suffix, offset)
					return
				}
				p.IsLongLong = true
				i++
			} else {
				p.IsLong = true
			}
		case 'f', 'F':
			if !p.IsFloating || p.IsFloat {
				p.invalidSuffix(suffix, offset)
				return
			}
			p.IsFloat = true
		case 'i', 'I', 'j', 'J':
			if p.IsImaginary {
				p.invalidSuffix(suffix, offset)
				return
			}
			p.diag(offset+i, diag.ExtImaginarySuffix).Emit()
			p.IsImaginary = true
		default:
			p.invalidSuffix(suffix, offset)
			return
		}
	}
}

func (p *NumericParser) invalidSuffix(suffix string, offset int) {
	id := diag.ErrInvalidSuffixOnInteger
	if p.IsFloating {
		id = diag.ErrInvalidSuffixOnFloat
	}
	p.diag(offset, id).AddString(suffix).Emit()
	p.HadError = true
}

// GetIntegerValue accumulates the digits into width bits. overflow is true
// iff any intermediate multiply or add lost bits of the target width.
func (p *NumericParser) GetIntegerValue(width int) (value uint64, overflow bool) {
	var mask uint64 = math.MaxUint64
	if width < 64 {
		mask = (uint64(1) << width) - 1
	}
	for i := 0; i < len(p.digits); i++ {
		d := uint64(digitValue(p.digits[i]))
		hi, lo := mulAdd(value, uint64(p.Radix), d)
		if hi != 0 || lo&^mask != 0 {
			overflow = true
		}
		value = lo & mask
	}
	return value, overflow
}

// mulAdd computes v*m + a as a 128-bit result split into high and low words.
func mulAdd(v, m, a uint64) (hi, lo uint64) {
	hi, lo = bits.Mul64(v, m)
	var carry uint64
	lo, carry = bits.Add64(lo, a, 0)
	hi += carry
	return hi, lo
}

// GetFloatValue reconstructs the floating value under round-to-nearest-even.
func (p *NumericParser) GetFloatValue() (float64, bool) {
	text := p.fullText
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		// Out-of-range floats still produce the infinity ParseFloat gives.
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return v, true
		}
		return 0, false
	}
	return v, true
}
