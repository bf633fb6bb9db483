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

const (
	charHorzWS = 1 << iota // ' ', '\t', '\f', '\v'
	charVertWS             // '\r', '\n'
	charLetter             // a-z, A-Z, '_'
	charDigit              // 0-9
	charXDigit             // hex digits
	charPeriod             // '.'
)

var charInfo [256]uint8

func init() {
	for _, c := range []byte{' ', '\t', '\f', '\v'} {
		charInfo[c] |= charHorzWS
	}
	charInfo['\r'] |= charVertWS
	charInfo['\n'] |= charVertWS
	for c := byte('a'); c <= 'z'; c++ {
		charInfo[c] |= charLetter
	}
	for c := byte('A'); c <= 'Z'; c++ {
		charInfo[c] |= charLetter
	}
	charInfo['_'] |= charLetter
	for c := byte('0'); c <= '9'; c++ {
		charInfo[c] |= charDigit | charXDigit
	}
	for c := byte('a'); c <= 'f'; c++ {
		charInfo[c] |= charXDigit
	}
	for c := byte('A'); c <= 'F'; c++ {
		charInfo[c] |= charXDigit
	}
	charInfo['.'] |= charPeriod
}

func isIdentifierBody(c byte) bool { return charInfo[c]&(charLetter|charDigit) != 0 }
func isIdentifierStart(c byte) bool {
	return charInfo[c]&charLetter != 0
}
func isHorizontalWhitespace(c byte) bool { return charInfo[c]&charHorzWS != 0 }
func isVerticalWhitespace(c byte) bool   { return charInfo[c]&charVertWS != 0 }
func isWhitespace(c byte) bool           { return charInfo[c]&(charHorzWS|charVertWS) != 0 }
func isDigit(c byte) bool                { return charInfo[c]&charDigit != 0 }
func isHexDigit(c byte) bool             { return charInfo[c]&charXDigit != 0 }

// isNumberBody reports whether c can continue a preprocessing number. Sign
// characters after an exponent are handled by the scanner itself.
func isNumberBody(c byte) bool {
	return charInfo[c]&(charLetter|charDigit|charPeriod) != 0
}
