// Package relationships resolves the relationship fields of a registered model
// into bidirectional relations: it pairs mutually-referencing fields, derives
// each relation's cardinality and foreign-key owner, and assigns the shared
// relation name that correlates both sides in the generated schema.
//
// Every decision is a function of the field declarations alone. Declaring the
// same lists in a different order yields the same cardinalities, owners and
// names.
package relationships

import (
	"github.com/conduit-lang/relc/internal/orm/schema"
)

// Side is one declared end of a relationship
type Side struct {
	List  *schema.List
	Field *schema.Field
}

// Path returns the List.field path of the side
func (s *Side) Path() schema.FieldPath {
	return schema.FieldPath{List: s.List.Name, Field: s.Field.Name}
}

// Many reports whether this side is plural
func (s *Side) Many() bool {
	return s.Field.Relationship.Many
}

// RelationName returns the explicit relation name override, if any
func (s *Side) RelationName() string {
	return s.Field.Relationship.RelationName
}

// ForeignKey returns the foreign-key placement hint, if any
func (s *Side) ForeignKey() *schema.ForeignKeyHint {
	return s.Field.Relationship.ForeignKey
}

// Pair is the association between two relationship fields whose refs point at
// each other. An unpaired relationship has a nil Foreign side: it is visible
// only from Local.
type Pair struct {
	Local   *Side
	Foreign *Side
	// Target is the list Local points at. For a paired relationship it is
	// Foreign.List.
	Target *schema.List
}

// Paired reports whether both sides are declared
func (p *Pair) Paired() bool {
	return p.Foreign != nil
}

// Sides returns the declared sides, Local first
func (p *Pair) Sides() []*Side {
	if p.Foreign == nil {
		return []*Side{p.Local}
	}
	return []*Side{p.Local, p.Foreign}
}

// Other returns the counterpart of s, or nil for an unpaired relationship
func (p *Pair) Other(s *Side) *Side {
	switch s {
	case p.Local:
		return p.Foreign
	case p.Foreign:
		return p.Local
	}
	return nil
}

// canonical returns the sides ordered by their List_field key. Every rule that
// must not depend on declaration order looks at the sides in this order.
func (p *Pair) canonical() (*Side, *Side) {
	if p.Foreign == nil {
		return p.Local, nil
	}
	if sortsBefore(p.Foreign.Path(), p.Local.Path()) {
		return p.Foreign, p.Local
	}
	return p.Local, p.Foreign
}

// sortsBefore orders paths by List_field key, breaking ties (A.b_c against
// A_b.c) on the List.field form.
func sortsBefore(x, y schema.FieldPath) bool {
	if x.Key() != y.Key() {
		return x.Key() < y.Key()
	}
	return x.String() < y.String()
}

// pairKey addresses a pair independently of the side it was reached from
type pairKey struct {
	a, b schema.FieldPath
}

func newPairKey(x, y schema.FieldPath) pairKey {
	if y.String() < x.String() {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}
