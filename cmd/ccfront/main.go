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

// ccfront runs the C-family frontend pipeline over a set of source files:
// preprocess, lex, and parse, printing diagnostics as they are found. It can
// also dump the preprocessed token stream (-E) or the built syntax tree
// (-dump-ast).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/EngFlow/ccfront/internal/collections"
	"github.com/EngFlow/ccfront/internal/diag"
	"github.com/EngFlow/ccfront/internal/lang"
	"github.com/EngFlow/ccfront/internal/lexer"
	"github.com/EngFlow/ccfront/internal/parser"
	"github.com/EngFlow/ccfront/internal/pp"
	"github.com/EngFlow/ccfront/internal/source"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/sanity-io/litter"
)

// stringList collects the values of a repeatable flag in order.
type stringList []string

func (l *stringList) String() string     { return strings.Join(*l, ",") }
func (l *stringList) Set(v string) error { *l = append(*l, v); return nil }

type driverOptions struct {
	std             string
	defines         stringList
	undefines       stringList
	userIncludes    stringList
	systemIncludes  stringList
	preincludes     stringList
	noWarnings      bool
	warningsAsError bool
	pedantic        bool
	pedanticErrors  bool
	noExtensions    bool
	msExtensions    bool
	openmp          bool
	dollarIdents    bool
	preprocessOnly  bool
	syntaxOnly      bool
	dumpAST         bool
}

func main() {
	var opts driverOptions
	flag.StringVar(&opts.std, "std", "c99", "Language standard (c89, c90, c99, c++98, objc, objc2)")
	flag.Var(&opts.defines, "D", "Predefine a macro, name or name=value (repeatable)")
	flag.Var(&opts.undefines, "U", "Undefine a macro after the predefines (repeatable)")
	flag.Var(&opts.userIncludes, "I", "Add a directory to the include search path (repeatable)")
	flag.Var(&opts.systemIncludes, "isystem", "Add a system include directory (repeatable)")
	flag.Var(&opts.preincludes, "include", "Include a file before the main source file (repeatable)")
	flag.BoolVar(&opts.noWarnings, "w", false, "Suppress all warnings")
	flag.BoolVar(&opts.warningsAsError, "Werror", false, "Treat warnings as errors")
	flag.BoolVar(&opts.pedantic, "pedantic", false, "Warn on language extensions")
	flag.BoolVar(&opts.pedanticErrors, "pedantic-errors", false, "Error on language extensions")
	flag.BoolVar(&opts.noExtensions, "fno-extensions", false, "Disable GNU and Microsoft extension keywords")
	flag.BoolVar(&opts.msExtensions, "fms-extensions", false, "Enable Microsoft extensions (__asm blocks)")
	flag.BoolVar(&opts.openmp, "fopenmp", false, "Honor #pragma omp directives")
	flag.BoolVar(&opts.dollarIdents, "fdollars-in-identifiers", false, "Allow '$' in identifiers")
	flag.BoolVar(&opts.preprocessOnly, "E", false, "Preprocess only; print the token stream")
	flag.BoolVar(&opts.syntaxOnly, "fsyntax-only", false, "Parse without building a syntax tree")
	flag.BoolVar(&opts.dumpAST, "dump-ast", false, "Print the syntax tree after parsing")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatalf("no input files")
	}
	files, err := expandArgs(flag.Args())
	if err != nil {
		log.Fatalf("%v", err)
	}

	langOpts, err := languageOptions(&opts)
	if err != nil {
		log.Fatalf("%v", err)
	}

	hadErrors := false
	for _, file := range files {
		if err := runFile(file, &opts, langOpts, &hadErrors); err != nil {
			log.Fatalf("%s: %v", file, err)
		}
	}
	if hadErrors {
		os.Exit(1)
	}
}

// expandArgs resolves glob patterns in the argument list and removes
// duplicates while keeping the first-seen order.
func expandArgs(args []string) ([]string, error) {
	var files []string
	seen := collections.SetOf[string]()
	for _, arg := range args {
		matches := []string{arg}
		if strings.ContainsAny(arg, "*?[{") {
			var err error
			matches, err = doublestar.FilepathGlob(arg)
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %v", arg, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no files match %q", arg)
			}
		}
		for _, m := range matches {
			if !seen.Contains(m) {
				seen.Add(m)
				files = append(files, m)
			}
		}
	}
	return files, nil
}

func languageOptions(opts *driverOptions) (lang.Options, error) {
	dialect, err := lang.ParseDialect(opts.std)
	if err != nil {
		return lang.Options{}, err
	}
	langOpts := lang.DefaultOptions(dialect)
	langOpts.NoExtensions = opts.noExtensions
	langOpts.Microsoft = opts.msExtensions
	langOpts.OpenMP = opts.openmp
	langOpts.DollarIdents = opts.dollarIdents
	return langOpts, nil
}

// runFile pushes one source file through the frontend. Each file gets a
// fresh source manager and preprocessor; only the error flag carries over.
func runFile(path string, opts *driverOptions, langOpts lang.Options, hadErrors *bool) error {
	sm := source.NewSourceManager()
	fm := source.NewFileManager()

	diags := diag.NewEngine(sm, diag.NewTextClient(os.Stderr, sm))
	diags.IgnoreAllWarnings = opts.noWarnings
	diags.WarningsAsErrors = opts.warningsAsError
	diags.WarnOnExtensions = opts.pedantic
	diags.ErrorOnExtensions = opts.pedanticErrors

	headers := pp.NewHeaderSearch(fm)
	headers.SetSearchPaths(searchPath(opts))

	preproc := pp.New(sm, fm, headers, diags, langOpts)
	preproc.SetPredefines(predefines(opts, langOpts))

	entry := fm.GetFile(path)
	if entry == nil {
		return fmt.Errorf("no such file")
	}
	fid := sm.CreateFileID(entry, source.LocationInvalid, source.CharacteristicUser)
	preproc.EnterMainSourceFile(fid)

	switch {
	case opts.preprocessOnly:
		printTokens(preproc, os.Stdout)
	case opts.syntaxOnly:
		p := parser.New(preproc, parser.NewMinimalAction())
		p.ParseTranslationUnit()
	default:
		actions := parser.NewBuildAction(preproc)
		p := parser.New(preproc, actions)
		p.ParseTranslationUnit()
		if opts.dumpAST {
			litter.Dump(actions.TranslationUnit)
		}
	}

	if diags.ErrorOccurred() {
		*hadErrors = true
	}
	return nil
}

// searchPath builds the include search list: -I directories first, then
// -isystem directories, with repeated directories searched only once.
// The returned index marks where angled includes start searching.
func searchPath(opts *driverOptions) ([]pp.DirectoryLookup, int) {
	user := collections.MapSlice(collections.Dedup(opts.userIncludes), func(dir string) pp.DirectoryLookup {
		return pp.DirectoryLookup{Dir: dir, Characteristic: source.CharacteristicUser}
	})
	system := collections.MapSlice(collections.Dedup(opts.systemIncludes), func(dir string) pp.DirectoryLookup {
		return pp.DirectoryLookup{Dir: dir, Characteristic: source.CharacteristicSystem}
	})
	return append(user, system...), len(user)
}

// predefines composes the "<built-in>" buffer: standard macros for the
// selected dialect, then the command-line -D/-U/-include lines in order.
func predefines(opts *driverOptions, langOpts lang.Options) string {
	var sb strings.Builder
	if langOpts.CPlusPlus {
		sb.WriteString("#define __cplusplus 199711L\n")
	} else {
		sb.WriteString("#define __STDC__ 1\n")
		if langOpts.C99 {
			sb.WriteString("#define __STDC_VERSION__ 199901L\n")
		}
	}
	if langOpts.ObjC1 {
		sb.WriteString("#define __OBJC__ 1\n")
	}
	if langOpts.OpenMP {
		sb.WriteString("#define _OPENMP 200805\n")
	}
	if !langOpts.NoExtensions {
		sb.WriteString("#define __GNUC__ 4\n")
	}
	for _, d := range opts.defines {
		name, value, found := strings.Cut(d, "=")
		if !found {
			value = "1"
		}
		fmt.Fprintf(&sb, "#define %s %s\n", name, value)
	}
	for _, u := range opts.undefines {
		fmt.Fprintf(&sb, "#undef %s\n", u)
	}
	for _, inc := range opts.preincludes {
		fmt.Fprintf(&sb, "#include \"%s\"\n", inc)
	}
	return sb.String()
}

// printTokens writes the fully preprocessed token stream, one spelling at a
// time, reconstructing line breaks and spacing from the token flags.
func printTokens(preproc *pp.Preprocessor, out *os.File) {
	first := true
	var tok lexer.Token
	for {
		preproc.Lex(&tok)
		if tok.Is(lexer.Kind_EOF) {
			break
		}
		switch {
		case tok.StartOfLine() && !first:
			fmt.Fprintln(out)
		case tok.LeadingSpace() && !first:
			fmt.Fprint(out, " ")
		}
		fmt.Fprint(out, preproc.Spelling(&tok))
		first = false
	}
	fmt.Fprintln(out)
}
