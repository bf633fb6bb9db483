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

// Package lang holds the language dialect configuration and the few target
// details (integer widths, char signedness) the frontend consults. The
// values are fixed at frontend construction time from driver flags.
package lang

import "fmt"

// Dialect selects the base language standard.
type Dialect int

const (
	C90 Dialect = iota
	C99
	CPlusPlus
	ObjC1
	ObjC2
)

// ParseDialect maps a -std= argument to a Dialect.
func ParseDialect(std string) (Dialect, error) {
	switch std {
	case "c89", "c90", "iso9899:1990":
		return C90, nil
	case "c99", "iso9899:1999":
		return C99, nil
	case "c++98", "c++":
		return CPlusPlus, nil
	case "objc":
		return ObjC1, nil
	case "objc2":
		return ObjC2, nil
	default:
		return C90, fmt.Errorf("unknown language standard %q", std)
	}
}

// Options is the composed feature set derived from a dialect plus driver
// toggles. Components read individual bits rather than the dialect.
type Options struct {
	Trigraphs     bool // process ??x trigraphs
	BCPLComment   bool // allow // comments
	C99           bool
	CPlusPlus     bool
	ObjC1         bool
	ObjC2         bool
	NoExtensions  bool // -fno-extensions: GNU/MS extension keywords unavailable
	Digraphs      bool
	HexFloats     bool // 0x1.8p3 style literals
	DollarIdents  bool // '$' allowed in identifiers
	Microsoft     bool // -fms-extensions: __asm blocks, /##/ comment paste
	PascalStrings bool
	OpenMP        bool // honor #pragma omp

	// Target details. The full target machinery is an external collaborator;
	// these are the widths the literal parsers and #if evaluation need.
	CharIsSigned bool
	CharWidth    int
	IntWidth     int
	WCharWidth   int
	IntMaxWidth  int // width of intmax_t, used by #if arithmetic
}

// DefaultOptions returns the feature set for a dialect with gcc-compatible
// defaults on an LP64-style target.
func DefaultOptions(dialect Dialect) Options {
	opts := Options{
		Trigraphs:    dialect == C90 || dialect == C99,
		BCPLComment:  dialect != C90,
		C99:          dialect == C99,
		CPlusPlus:    dialect == CPlusPlus,
		ObjC1:        dialect == ObjC1 || dialect == ObjC2,
		ObjC2:        dialect == ObjC2,
		Digraphs:     dialect != C90,
		HexFloats:    dialect == C99,
		CharIsSigned: true,
		CharWidth:    8,
		IntWidth:     32,
		WCharWidth:   32,
		IntMaxWidth:  64,
	}
	return opts
}
