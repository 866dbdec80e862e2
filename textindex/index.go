// Package textindex provides the indexed text-search facility behind the
// compiler's full-text match sub-queries.
//
// The index maps lower-cased terms to posting bitmaps of entry ids. Match
// evaluates the OR-of-terms queries emitted by the search compiler for tag
// and note predicates; MatchAll gives the intersection callers need for the
// count-equals-terms tag semantics.
package textindex

import (
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// Index is an in-memory inverted text index over entry ids.
type Index struct {
	mu       sync.RWMutex
	inverted map[string]*roaring.Bitmap
	docs     map[uint32][]string
}

// New creates an empty Index.
func New() *Index {
	return &Index{
		inverted: make(map[string]*roaring.Bitmap),
		docs:     make(map[uint32][]string),
	}
}

// Tokenize splits text into the lower-cased terms the index stores. It is
// exported so callers can keep their own preprocessing consistent with the
// index.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Add indexes text under id, replacing whatever was indexed for id before.
func (ix *Index) Add(id uint32, text string) {
	terms := Tokenize(text)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.deleteLocked(id)
	if len(terms) == 0 {
		return
	}

	ix.docs[id] = terms
	for _, t := range terms {
		bm, ok := ix.inverted[t]
		if !ok {
			bm = roaring.New()
			ix.inverted[t] = bm
		}
		bm.Add(id)
	}
}

// Delete removes everything indexed for id.
func (ix *Index) Delete(id uint32) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.deleteLocked(id)
}

func (ix *Index) deleteLocked(id uint32) {
	terms, ok := ix.docs[id]
	if !ok {
		return
	}
	for _, t := range terms {
		bm, ok := ix.inverted[t]
		if !ok {
			continue
		}
		bm.Remove(id)
		if bm.IsEmpty() {
			delete(ix.inverted, t)
		}
	}
	delete(ix.docs, id)
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Match evaluates a match query: union semantics, any term matches. The
// query is the form the compiler emits, e.g. `"foo" OR "bar"`; quotes and OR
// keywords are ignored, terms are lower-cased.
func (ix *Index) Match(query string) *roaring.Bitmap {
	return ix.matchTerms(parseQuery(query), false)
}

// MatchAll evaluates intersection semantics over the query terms: only ids
// indexed under every term are returned.
func (ix *Index) MatchAll(query string) *roaring.Bitmap {
	return ix.matchTerms(parseQuery(query), true)
}

func (ix *Index) matchTerms(terms []string, intersect bool) *roaring.Bitmap {
	result := roaring.New()
	if len(terms) == 0 {
		return result
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	for i, t := range terms {
		bm, ok := ix.inverted[t]
		if !ok {
			if intersect {
				return roaring.New()
			}
			continue
		}
		if intersect {
			if i == 0 {
				result = bm.Clone()
			} else {
				result.And(bm)
			}
		} else {
			result.Or(bm)
		}
	}
	return result
}

// parseQuery splits a match query into bare lower-cased terms, dropping
// quoting and the OR connective.
func parseQuery(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, `"`)
		if f == "" || f == "or" {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}
