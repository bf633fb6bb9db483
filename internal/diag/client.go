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

package diag

import (
	"fmt"
	"io"

	"github.com/EngFlow/ccfront/internal/source"
)

// TextClient renders diagnostics as "file:line:col: severity: message" lines,
// followed by the macro expansion chain when the location is a macro
// instantiation.
type TextClient struct {
	Out io.Writer
	SM  *source.SourceManager
}

func NewTextClient(out io.Writer, sm *source.SourceManager) *TextClient {
	return &TextClient{Out: out, SM: sm}
}

func (c *TextClient) HandleDiagnostic(level Level, info *Info) {
	if !info.Loc.Valid() || c.SM == nil {
		fmt.Fprintf(c.Out, "%s: %s\n", level, info.FormatDiagnostic())
		return
	}

	name, line, col := c.SM.PresumedLoc(info.Loc)
	fmt.Fprintf(c.Out, "%s:%d:%d: %s: %s\n", name, line, col, level, info.FormatDiagnostic())

	// Walk the instantiation chain outward so the user can see where each
	// enclosing macro was invoked.
	loc := info.Loc
	for loc.IsMacro() {
		spelling := c.SM.SpellingLoc(loc)
		sname, sline, scol := c.SM.PresumedLoc(spelling)
		fmt.Fprintf(c.Out, "%s:%d:%d: note: instantiated from macro\n", sname, sline, scol)
		site, ok := c.SM.ImmediateInstantiationSite(loc)
		if !ok {
			break
		}
		loc = site
	}
}

func (c *TextClient) IgnoreDiagnostic(*Info) {}

// CountingClient records every delivered diagnostic; used by tests and by
// tools that only need totals.
type CountingClient struct {
	Notes    int
	Warnings int
	Errors   int
	Ignored  int

	// Kept in delivery order for assertions on message content.
	Delivered []string
	IDs       []ID
}

func (c *CountingClient) HandleDiagnostic(level Level, info *Info) {
	switch level {
	case LevelNote:
		c.Notes++
	case LevelWarning:
		c.Warnings++
	case LevelError, LevelFatal:
		c.Errors++
	}
	c.Delivered = append(c.Delivered, info.FormatDiagnostic())
	c.IDs = append(c.IDs, info.ID)
}

func (c *CountingClient) IgnoreDiagnostic(*Info) { c.Ignored++ }
