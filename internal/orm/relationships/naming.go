package relationships

import (
	relerrors "github.com/conduit-lang/relc/internal/compiler/errors"
)

// Provenance records where a relation name came from
type Provenance int

const (
	// Derived names come from the lexicographic List_field rule
	Derived Provenance = iota
	// Explicit names come from a db.relationName override
	Explicit
)

// String returns the provenance name
func (p Provenance) String() string {
	if p == Explicit {
		return "explicit"
	}
	return "derived"
}

// NamingDecision is the resolved relation name of a pair
type NamingDecision struct {
	Name       string
	Provenance Provenance
}

// ResolveName computes the relation name shared by both sides of p. c must be
// the classification of p.
func ResolveName(p *Pair, c Classification) (NamingDecision, error) {
	if !p.Paired() {
		if name := p.Local.RelationName(); name != "" {
			return explicit(name), nil
		}
		return derived(p.Local.Path().Key()), nil
	}

	first, second := p.canonical()
	firstName, secondName := first.RelationName(), second.RelationName()

	switch c.Cardinality {
	case ManyToMany:
		switch {
		case firstName != "" && secondName != "":
			return NamingDecision{}, &relerrors.ConflictingRelationNameError{
				Local:       first.Path().String(),
				Foreign:     second.Path().String(),
				Cardinality: ManyToMany.Phrase(),
				LocalName:   firstName,
				ForeignName: secondName,
			}
		case firstName != "":
			return explicit(firstName), nil
		case secondName != "":
			return explicit(secondName), nil
		}

	case OneToMany, ManyToOne:
		one, many := p.Local, p.Foreign
		if one.Many() {
			one, many = many, one
		}
		if many.RelationName() != "" {
			return NamingDecision{}, &relerrors.RelationNameOnManySideError{
				Field:       many.Path().String(),
				Counterpart: one.Path().String(),
			}
		}
		if name := one.RelationName(); name != "" {
			return explicit(name), nil
		}

	case OneToOne:
		switch {
		case firstName != "" && secondName != "" && firstName != secondName:
			return NamingDecision{}, &relerrors.ConflictingRelationNameError{
				Local:       first.Path().String(),
				Foreign:     second.Path().String(),
				Cardinality: OneToOne.Phrase(),
				LocalName:   firstName,
				ForeignName: secondName,
			}
		case firstName != "":
			return explicit(firstName), nil
		case secondName != "":
			return explicit(secondName), nil
		}
	}

	return derived(first.Path().Key()), nil
}

func explicit(name string) NamingDecision {
	return NamingDecision{Name: name, Provenance: Explicit}
}

func derived(name string) NamingDecision {
	return NamingDecision{Name: name, Provenance: Derived}
}
