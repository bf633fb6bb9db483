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

package pp

import (
	"strings"

	"github.com/EngFlow/ccfront/internal/diag"
	"github.com/EngFlow/ccfront/internal/lexer"
)

type includeKind int

const (
	includePlain includeKind = iota
	includeNext              // #include_next: resume the path search
	includeImport            // #import: at most once
)

// handleIncludeDirective processes #include, #include_next and #import.
// dirTok is the directive-name token, kept for diagnostics.
func (p *Preprocessor) handleIncludeDirective(dirTok *lexer.Token, kind includeKind) {
	l := p.curLexer
	l.ParsingFilename = true
	var fnTok lexer.Token
	p.Lex(&fnTok)
	l.ParsingFilename = false

	var filename string
	var isAngled bool
	switch fnTok.Kind {
	case lexer.Kind_EOM:
		p.diags.Report(fnTok.Loc, diag.ErrExpectedHeaderName).Emit()
		return
	case lexer.Kind_StringLiteral:
		s := p.Spelling(&fnTok)
		filename = s[1 : len(s)-1]
	case lexer.Kind_AngleString:
		s := p.Spelling(&fnTok)
		filename = s[1 : len(s)-1]
		isAngled = true
	case lexer.Kind_Less:
		// The filename came out of a macro expansion as individual tokens;
		// glue everything up to the closing '>' back together.
		var ok bool
		filename, ok = p.reassembleAngledFilename()
		if !ok {
			return
		}
		isAngled = true
	default:
		p.diags.Report(fnTok.Loc, diag.ErrExpectedHeaderName).Emit()
		p.DiscardUntilEndOfDirective()
		return
	}
	p.CheckEndOfDirective("include")

	if filename == "" {
		p.diags.Report(fnTok.Loc, diag.ErrEmptyFilename).Emit()
		return
	}

	fromDir := -1
	if kind == includeNext {
		if p.curDirIdx < 0 {
			p.diags.Report(dirTok.Loc, diag.ErrIncludeNextAtTopLevel).Emit()
		} else {
			fromDir = p.curDirIdx + 1
		}
	}

	entry, dirIdx := p.headers.LookupFile(filename, isAngled, fromDir, p.curFileDir())
	if entry == nil {
		p.diags.Report(fnTok.Loc, diag.ErrFileNotFound).AddString(filename).Emit()
		return
	}

	// A header whose #ifndef guard is defined need not be entered at all.
	fi := p.headers.FileInfo(entry)
	if fi.ControllingMacro != nil && fi.ControllingMacro.HasMacro {
		return
	}

	if !p.headers.ShouldEnterIncludeFile(entry, kind == includeImport) {
		return
	}

	if p.includeDepth() >= maxIncludeDepth {
		p.diags.Report(fnTok.Loc, diag.ErrIncludeNesting).Emit()
		return
	}

	fid := p.sm.CreateFileID(entry, fnTok.Loc, fi.DirInfo)
	p.enterSourceFile(fid, dirIdx)
}

func (p *Preprocessor) reassembleAngledFilename() (string, bool) {
	var sb strings.Builder
	var tok lexer.Token
	for {
		p.Lex(&tok)
		switch tok.Kind {
		case lexer.Kind_EOM, lexer.Kind_EOF:
			p.diags.Report(tok.Loc, diag.ErrExpectedHeaderName).Emit()
			return "", false
		case lexer.Kind_Greater:
			return sb.String(), true
		}
		sb.WriteString(p.Spelling(&tok))
	}
}
