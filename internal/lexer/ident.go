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

// PPKeyword classifies identifiers that name preprocessor directives.
type PPKeyword int

const (
	PPKw_NotKeyword PPKeyword = iota
	PPKw_If
	PPKw_Ifdef
	PPKw_Ifndef
	PPKw_Elif
	PPKw_Else
	PPKw_Endif
	PPKw_Define
	PPKw_Undef
	PPKw_Include
	PPKw_IncludeNext
	PPKw_Import
	PPKw_Line
	PPKw_Pragma
	PPKw_Error
	PPKw_Warning
	PPKw_Ident
	PPKw_Sccs
	PPKw_Assert
	PPKw_Unassert
)

// ObjCKeyword classifies identifiers that follow '@' in Objective-C.
type ObjCKeyword int

const (
	ObjCKw_NotKeyword ObjCKeyword = iota
	ObjCKw_Class
	ObjCKw_CompatibilityAlias
	ObjCKw_Defs
	ObjCKw_Encode
	ObjCKw_End
	ObjCKw_Implementation
	ObjCKw_Interface
	ObjCKw_Private
	ObjCKw_Protected
	ObjCKw_Protocol
	ObjCKw_Public
	ObjCKw_Selector
	ObjCKw_Throw
	ObjCKw_Try
	ObjCKw_Catch
	ObjCKw_Finally
	ObjCKw_Synchronized
)

// Info is one interned identifier. It lives for the lifetime of the table
// and is never freed; any two lookups of byte-equal names return the same
// pointer, so pointer equality is name equality.
type Info struct {
	name string

	// TokenKind is Kind_Identifier until the keyword table rebinds it.
	TokenKind Kind
	PPKeyword PPKeyword
	ObjCKw    ObjCKeyword

	// HasMacro is the fast-path bit; the preprocessor owns the actual
	// binding, keyed by this pointer.
	HasMacro           bool
	IsExtension        bool
	IsPoisoned         bool
	IsOtherTargetMacro bool

	// FETokenInfo is the frontend's private per-identifier slot. The core
	// never inspects it.
	FETokenInfo any
}

func (i *Info) Name() string { return i.name }

// bucket caches the full hash so growth never rehashes names and probe
// comparisons skip most string compares.
type bucket struct {
	hash uint32
	info *Info // nil means empty
}

const (
	initialBuckets = 8192 // power of two
	regionStart    = 256  // identifiers per initial arena region
)

// Table interns identifiers. Open addressing over power-of-two bucket
// counts, quadratic probing, growth by doubling past 3/4 load. Info records
// are bump-allocated from a chain of doubling regions so pointers stay
// stable forever.
type Table struct {
	buckets []bucket
	count   int

	regions [][]Info // earlier regions stay live; pointers into them persist
}

func NewTable() *Table {
	return &Table{
		buckets: make([]bucket, initialBuckets),
		regions: [][]Info{make([]Info, 0, regionStart)},
	}
}

// hashName is the classic multiplicative "Perl" hash.
func hashName(name string) uint32 {
	var h uint32
	for i := 0; i < len(name); i++ {
		h = h*33 + uint32(name[i])
	}
	h += h >> 5
	return h
}

// Len returns the number of interned identifiers.
func (t *Table) Len() int { return t.count }

// Get returns the unique Info for name, interning it on first sight with
// all flags at their neutral defaults.
func (t *Table) Get(name string) *Info {
	hash := hashName(name)
	idx := t.probe(hash, name)
	if t.buckets[idx].info != nil {
		return t.buckets[idx].info
	}

	info := t.alloc()
	info.name = name
	info.TokenKind = Kind_Identifier
	t.buckets[idx] = bucket{hash: hash, info: info}
	t.count++
	if t.count*4 > len(t.buckets)*3 {
		t.grow()
	}
	return info
}

// Lookup returns the Info for name if it was interned before, else nil.
func (t *Table) Lookup(name string) *Info {
	return t.buckets[t.probe(hashName(name), name)].info
}

// probe returns the bucket index holding name, or the empty slot where it
// would be inserted. Quadratic probing: the step grows by one each miss.
func (t *Table) probe(hash uint32, name string) uint32 {
	mask := uint32(len(t.buckets) - 1)
	idx := hash & mask
	step := uint32(1)
	for {
		b := t.buckets[idx]
		if b.info == nil || (b.hash == hash && b.info.name == name) {
			return idx
		}
		idx = (idx + step) & mask
		step++
	}
}

func (t *Table) grow() {
	old := t.buckets
	t.buckets = make([]bucket, len(old)*2)
	mask := uint32(len(t.buckets) - 1)
	for _, b := range old {
		if b.info == nil {
			continue
		}
		idx := b.hash & mask
		step := uint32(1)
		for t.buckets[idx].info != nil {
			idx = (idx + step) & mask
			step++
		}
		t.buckets[idx] = b
	}
}

// alloc bump-allocates one Info from the current region, opening a region of
// twice the size when the current one fills. A region is never reallocated,
// so &region[i] stays valid for the table's lifetime.
func (t *Table) alloc() *Info {
	cur := t.regions[len(t.regions)-1]
	if len(cur) == cap(cur) {
		cur = make([]Info, 0, cap(cur)*2)
		t.regions = append(t.regions, cur)
	}
	cur = cur[:len(cur)+1]
	t.regions[len(t.regions)-1] = cur
	return &cur[len(cur)-1]
}
