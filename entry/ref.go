// Package entry defines the identity of dictionary entries.
//
// An entry is named by a (kind, id) pair. The kind separates independent
// id spaces (e.g. vocabulary entries vs. character entries); the concrete
// kind values are assigned by the embedding application.
package entry

import "fmt"

// Kind separates independent entry id spaces.
type Kind int

// Ref uniquely names an entry.
type Ref struct {
	Kind Kind
	ID   int64
}

// NewRef creates a Ref for the given kind and id.
func NewRef(kind Kind, id int64) Ref {
	return Ref{Kind: kind, ID: id}
}

// String returns a stable textual form of the reference, usable as a map or
// dedup key.
func (r Ref) String() string {
	return fmt.Sprintf("%d:%d", r.Kind, r.ID)
}
