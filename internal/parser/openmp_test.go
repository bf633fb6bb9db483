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

package parser

import (
	"testing"

	"github.com/EngFlow/ccfront/internal/ast"
	"github.com/EngFlow/ccfront/internal/diag"
	"github.com/EngFlow/ccfront/internal/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOpenMP(t *testing.T, src string) (*BuildAction, *diag.CountingClient) {
	t.Helper()
	opts := lang.DefaultOptions(lang.C99)
	opts.OpenMP = true
	return parseSource(t, src, opts)
}

func TestOmpParallel(t *testing.T) {
	a, client := parseOpenMP(t, `
void f(int x) {
#pragma omp parallel
  {
    x = 1;
  }
}
`)
	assert.Zero(t, client.Errors)
	body := fnBody(t, a, 0)
	require.Len(t, body, 1)

	n := body[0]
	require.Equal(t, ast.Kind_OmpDirective, n.Kind)
	assert.Equal(t, "parallel", n.OmpKind)
	require.NotNil(t, n.Body)
	assert.Equal(t, ast.Kind_CompoundStmt, n.Body.Kind)
}

func TestOmpParallelFor(t *testing.T) {
	a, client := parseOpenMP(t, `
void f(void) {
#pragma omp parallel for
  for (int i = 0; i < 10; i++)
    ;
}
`)
	assert.Zero(t, client.Errors)
	body := fnBody(t, a, 0)
	n := body[0]
	require.Equal(t, ast.Kind_OmpDirective, n.Kind)
	assert.Equal(t, "parallel for", n.OmpKind)
	require.NotNil(t, n.Body)
	assert.Equal(t, ast.Kind_For, n.Body.Kind)
}

func TestOmpStandaloneDirectives(t *testing.T) {
	a, client := parseOpenMP(t, `
void f(void) {
#pragma omp barrier
#pragma omp taskwait
}
`)
	assert.Zero(t, client.Errors)
	body := fnBody(t, a, 0)
	require.Len(t, body, 2)
	assert.Equal(t, "barrier", body[0].OmpKind)
	assert.Nil(t, body[0].Body)
	assert.Equal(t, "taskwait", body[1].OmpKind)
}

func TestOmpSections(t *testing.T) {
	a, client := parseOpenMP(t, `
void f(int x) {
#pragma omp sections
  {
#pragma omp section
    {
      x = 1;
    }
#pragma omp section
    {
      x = 2;
    }
  }
}
`)
	assert.Zero(t, client.Errors)
	body := fnBody(t, a, 0)
	n := body[0]
	require.Equal(t, ast.Kind_OmpDirective, n.Kind)
	assert.Equal(t, "sections", n.OmpKind)
	require.Equal(t, ast.Kind_CompoundStmt, n.Body.Kind)
	require.Len(t, n.Body.List, 2)
	for _, sec := range n.Body.List {
		assert.Equal(t, ast.Kind_OmpDirective, sec.Kind)
		assert.Equal(t, "section", sec.OmpKind)
	}
}

func TestOmpOrphanedSection(t *testing.T) {
	_, client := parseOpenMP(t, `
void f(int x) {
#pragma omp section
  {
    x = 1;
  }
}
`)
	assert.Equal(t, 1, client.Errors)
	assert.Contains(t, client.IDs, diag.ErrOmpOrphanedSection)
}

func TestOmpWorksharingNesting(t *testing.T) {
	// A worksharing region may not be closely nested in another one.
	_, client := parseOpenMP(t, `
void f(int i, int j) {
#pragma omp for
  for (i = 0; i < 10; i++) {
#pragma omp for
    for (j = 0; j < 10; j++)
      ;
  }
}
`)
	assert.Equal(t, 1, client.Errors)
	assert.Contains(t, client.IDs, diag.ErrOmpUnexpectedDirective)
}

func TestOmpNestedParallelAllowed(t *testing.T) {
	// Nesting a fresh parallel region resets the worksharing restriction.
	_, client := parseOpenMP(t, `
void f(int i, int j) {
#pragma omp for
  for (i = 0; i < 10; i++) {
#pragma omp parallel for
    for (j = 0; j < 10; j++)
      ;
  }
}
`)
	assert.Equal(t, 1, client.Errors) // parallel for is itself worksharing

	_, client = parseOpenMP(t, `
void f(int i, int j) {
#pragma omp for
  for (i = 0; i < 10; i++) {
#pragma omp parallel
    {
#pragma omp for
      for (j = 0; j < 10; j++)
        ;
    }
  }
}
`)
	assert.Zero(t, client.Errors)
}

func TestOmpUnknownDirective(t *testing.T) {
	_, client := parseOpenMP(t, `
void f(int x) {
#pragma omp frobnicate
  x = 1;
}
`)
	assert.Equal(t, 1, client.Errors)
	assert.Contains(t, client.IDs, diag.ErrOmpUnknownDirective)
}

func TestOmpThreadprivateAtFileScope(t *testing.T) {
	a, client := parseOpenMP(t, "int counter;\n#pragma omp threadprivate(counter)\nint other;\n")
	assert.Zero(t, client.Errors)
	require.Len(t, a.TranslationUnit, 3)
	assert.Equal(t, ast.Kind_OmpDirective, a.TranslationUnit[1].Kind)
	assert.Equal(t, "threadprivate", a.TranslationUnit[1].OmpKind)
}

func TestOmpExecutableDirectiveAtFileScope(t *testing.T) {
	_, client := parseOpenMP(t, "#pragma omp barrier\nint x;\n")
	assert.Equal(t, 1, client.Errors)
	assert.Contains(t, client.IDs, diag.ErrOmpDirectiveAtFileScope)
}

func TestOmpPragmaIgnoredWhenDisabled(t *testing.T) {
	// Without OpenMP support the pragma is an ordinary unknown pragma.
	a, client := parseC99(t, `
void f(int x) {
#pragma omp parallel
  x = 1;
}
`)
	assert.Zero(t, client.Errors)
	body := fnBody(t, a, 0)
	require.Len(t, body, 1)
	assert.Equal(t, ast.Kind_ExprStmt, body[0].Kind)
}
