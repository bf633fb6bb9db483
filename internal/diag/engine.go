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

// Package diag implements the diagnostic engine shared by the lexer,
// preprocessor, parser and semantic actions. A diagnostic is identified by
// an ID, carries substitution arguments and source ranges, has its severity
// computed from the builtin class, per-ID mapping overrides and global
// flags, and is delivered to a single installed Client.
package diag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/EngFlow/ccfront/internal/source"
)

// Level is the final severity of a diagnostic after all mapping is applied.
type Level int

const (
	LevelIgnored Level = iota
	LevelNote
	LevelWarning
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelIgnored:
		return "ignored"
	case LevelNote:
		return "note"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal error"
	default:
		panic(fmt.Errorf("unknown diagnostic level %d", int(l)))
	}
}

// Mapping is a per-ID override of how a remappable diagnostic is reported.
type Mapping int

const (
	MapDefault Mapping = iota
	MapIgnore
	MapWarning
	MapError
)

// argKind tags one argument slot of an in-flight diagnostic.
type argKind int

const (
	argString argKind = iota
	argInt
	argUint
	argIdent
)

type argument struct {
	kind argKind
	str  string
	sInt int64
	uInt uint64
}

const maxArguments = 10

// Info exposes a formed diagnostic to the Client.
type Info struct {
	ID     ID
	Loc    source.Location
	args   []argument
	Ranges []source.Range
}

// FormatDiagnostic renders the diagnostic's format string, substituting
// %0..%9 with the attached arguments.
func (info *Info) FormatDiagnostic() string {
	format := FormatString(info.ID)
	var out strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			out.WriteByte(c)
			continue
		}
		next := format[i+1]
		if next < '0' || next > '9' {
			out.WriteByte(c)
			continue
		}
		i++
		idx := int(next - '0')
		if idx >= len(info.args) {
			panic(fmt.Errorf("diagnostic %d references missing argument %%%d", info.ID, idx))
		}
		arg := info.args[idx]
		switch arg.kind {
		case argString, argIdent:
			out.WriteString(arg.str)
		case argInt:
			out.WriteString(strconv.FormatInt(arg.sInt, 10))
		case argUint:
			out.WriteString(strconv.FormatUint(arg.uInt, 10))
		}
	}
	return out.String()
}

// NumArgs returns the number of attached arguments.
func (info *Info) NumArgs() int { return len(info.args) }

// Client receives formed diagnostics. Implementations render them, collect
// them, or count them.
type Client interface {
	// HandleDiagnostic is invoked once per emitted, non-ignored diagnostic.
	HandleDiagnostic(level Level, info *Info)
	// IgnoreDiagnostic is invoked for diagnostics whose final level is
	// ignored, so clients tracking totals can account for them.
	IgnoreDiagnostic(info *Info)
}

// Engine accepts diagnostic reports, applies severity mapping and delivers
// them to the installed client.
type Engine struct {
	// Global severity flags, applied in a fixed order after per-ID mapping.
	IgnoreAllWarnings      bool
	WarningsAsErrors       bool
	WarnOnExtensions       bool
	ErrorOnExtensions      bool
	SuppressSystemWarnings bool

	client   Client
	sm       *source.SourceManager
	mappings map[ID]Mapping

	numDiagnostics int
	numErrors      int
	errorOccurred  bool
	fatalOccurred  bool

	inFlight bool
}

// NewEngine returns an engine delivering to client. sm may be nil when no
// system-header suppression is wanted (tests).
func NewEngine(sm *source.SourceManager, client Client) *Engine {
	return &Engine{
		SuppressSystemWarnings: true,
		client:                 client,
		sm:                     sm,
		mappings:               make(map[ID]Mapping),
	}
}

// SetClient replaces the installed client.
func (e *Engine) SetClient(client Client) { e.client = client }

// SetMapping overrides the reporting of a remappable diagnostic. Mapping an
// error is rejected: errors stay errors.
func (e *Engine) SetMapping(id ID, mapping Mapping) {
	if !IsBuiltinNoteOrWarning(id) {
		panic(fmt.Errorf("cannot remap diagnostic %d: not a note or warning", id))
	}
	e.mappings[id] = mapping
}

// NumDiagnostics returns the count of emitted (non-ignored) diagnostics.
func (e *Engine) NumDiagnostics() int { return e.numDiagnostics }

// NumErrors returns the count of diagnostics that mapped to Error or Fatal.
func (e *Engine) NumErrors() int { return e.numErrors }

// ErrorOccurred is sticky and is the sole authority on whether the
// compilation succeeded.
func (e *Engine) ErrorOccurred() bool { return e.errorOccurred }

// FatalOccurred reports whether a fatal diagnostic terminated the unit.
func (e *Engine) FatalOccurred() bool { return e.fatalOccurred }

// Level computes the effective severity for id: builtin class, then the
// per-ID map override, then the global flags in a fixed order.
func (e *Engine) Level(id ID) Level {
	class := BuiltinClass(id)
	switch class {
	case ClassError:
		return LevelError
	case ClassFatal:
		return LevelFatal
	case ClassNote:
		return LevelNote
	}

	var level Level
	switch e.mappings[id] {
	case MapIgnore:
		return LevelIgnored
	case MapWarning:
		level = LevelWarning
	case MapError:
		level = LevelError
	default:
		// Extensions are ignored unless -pedantic maps them up.
		if class == ClassExtension {
			switch {
			case e.ErrorOnExtensions:
				level = LevelError
			case e.WarnOnExtensions:
				level = LevelWarning
			default:
				return LevelIgnored
			}
		} else {
			level = LevelWarning
		}
	}

	if level == LevelWarning {
		if e.IgnoreAllWarnings {
			return LevelIgnored
		}
		if e.WarningsAsErrors {
			level = LevelError
		}
	}
	return level
}

// Builder accumulates the arguments and ranges of one in-flight diagnostic.
// At most one builder is live at a time; Emit delivers it exactly once.
type Builder struct {
	engine *Engine
	info   Info
	done   bool
}

// Report starts a diagnostic at loc. The returned builder must be emitted
// before the next Report.
func (e *Engine) Report(loc source.Location, id ID) *Builder {
	if e.inFlight {
		panic(fmt.Errorf("diagnostic %d reported while another is in flight", id))
	}
	e.inFlight = true
	return &Builder{engine: e, info: Info{ID: id, Loc: loc}}
}

func (b *Builder) addArg(arg argument) *Builder {
	if len(b.info.args) >= maxArguments {
		panic(fmt.Errorf("diagnostic %d has too many arguments", b.info.ID))
	}
	b.info.args = append(b.info.args, arg)
	return b
}

// AddString attaches a string substitution argument.
func (b *Builder) AddString(s string) *Builder {
	return b.addArg(argument{kind: argString, str: s})
}

// AddInt attaches a signed integer substitution argument.
func (b *Builder) AddInt(v int64) *Builder {
	return b.addArg(argument{kind: argInt, sInt: v})
}

// AddUint attaches an unsigned integer substitution argument.
func (b *Builder) AddUint(v uint64) *Builder {
	return b.addArg(argument{kind: argUint, uInt: v})
}

// AddIdent attaches an identifier name; rendered by name like a string but
// tagged distinctly for clients that care.
func (b *Builder) AddIdent(name string) *Builder {
	return b.addArg(argument{kind: argIdent, str: name})
}

// AddRange attaches a source range highlighting part of the input.
func (b *Builder) AddRange(r source.Range) *Builder {
	if len(b.info.Ranges) >= maxArguments {
		panic(fmt.Errorf("diagnostic %d has too many ranges", b.info.ID))
	}
	b.info.Ranges = append(b.info.Ranges, r)
	return b
}

// Emit commits the diagnostic: the severity is computed, counters advance,
// and the client is invoked. Emitting twice is a programming error.
func (b *Builder) Emit() {
	if b.done {
		panic(fmt.Errorf("diagnostic %d emitted twice", b.info.ID))
	}
	b.done = true
	b.engine.inFlight = false
	b.engine.process(&b.info)
}

func (e *Engine) process(info *Info) {
	level := e.Level(info.ID)
	if level == LevelIgnored {
		e.client.IgnoreDiagnostic(info)
		return
	}
	if level == LevelWarning && e.SuppressSystemWarnings &&
		e.sm != nil && info.Loc.Valid() && e.sm.IsInSystemHeader(info.Loc) {
		e.client.IgnoreDiagnostic(info)
		return
	}

	e.numDiagnostics++
	if level == LevelError || level == LevelFatal {
		e.numErrors++
		e.errorOccurred = true
	}
	if level == LevelFatal {
		e.fatalOccurred = true
	}
	e.client.HandleDiagnostic(level, info)
}
