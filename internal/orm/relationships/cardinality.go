package relationships

import (
	relerrors "github.com/conduit-lang/relc/internal/compiler/errors"
)

// Cardinality is the relation type of a relationship, seen from one side
type Cardinality int

// Cardinalities.
const (
	Unknown    Cardinality = iota
	OneToOne               // one to one / has one.
	OneToMany              // one to many / has many.
	ManyToOne              // many to one (inverse perspective of OneToMany).
	ManyToMany             // many to many, through a join table.
)

// String returns the cardinality name
func (c Cardinality) String() string {
	s := "unknown"
	switch c {
	case OneToOne:
		s = "one-to-one"
	case OneToMany:
		s = "one-to-many"
	case ManyToOne:
		s = "many-to-one"
	case ManyToMany:
		s = "many-to-many"
	}
	return s
}

// Phrase returns the cardinality as used in error messages, e.g. "many to one"
func (c Cardinality) Phrase() string {
	switch c {
	case OneToOne:
		return "one to one"
	case OneToMany:
		return "one to many"
	case ManyToOne:
		return "many to one"
	case ManyToMany:
		return "many to many"
	}
	return "unknown"
}

// Mirror returns the cardinality seen from the other side
func (c Cardinality) Mirror() Cardinality {
	switch c {
	case OneToMany:
		return ManyToOne
	case ManyToOne:
		return OneToMany
	}
	return c
}

// Classification is the output of the cardinality classifier
type Classification struct {
	// Cardinality seen from the pair's Local side.
	Cardinality Cardinality
	// Owner is the side whose table holds the foreign-key column. It is nil for
	// many to many relations, which use a join table, and for unpaired one to
	// many relations, whose column lives on the target list.
	Owner *Side
}

// OwnerPolicy picks the side that holds the foreign key of a one to one
// relation when no db.foreignKey hint decides it. The sides are passed in
// canonical order (by List_field key), never in declaration order.
type OwnerPolicy func(first, second *Side) *Side

// DefaultOwnerPolicy gives the foreign key to the side whose List_field key
// sorts first.
func DefaultOwnerPolicy(first, second *Side) *Side {
	if sortsBefore(second.Path(), first.Path()) {
		return second
	}
	return first
}

// Classify derives the cardinality and foreign-key owner of a pair
func Classify(p *Pair, policy OwnerPolicy) (Classification, error) {
	if policy == nil {
		policy = DefaultOwnerPolicy
	}

	if !p.Paired() {
		return classifyUnpaired(p)
	}

	local, foreign := p.Local, p.Foreign
	switch {
	case !local.Many() && !foreign.Many():
		return classifyOneToOne(p, policy)
	case !local.Many() && foreign.Many():
		if err := rejectHint(foreign, OneToMany); err != nil {
			return Classification{}, err
		}
		return Classification{Cardinality: ManyToOne, Owner: local}, nil
	case local.Many() && !foreign.Many():
		if err := rejectHint(local, OneToMany); err != nil {
			return Classification{}, err
		}
		return Classification{Cardinality: OneToMany, Owner: foreign}, nil
	default:
		first, second := p.canonical()
		for _, s := range []*Side{first, second} {
			if err := rejectHint(s, ManyToMany); err != nil {
				return Classification{}, err
			}
		}
		return Classification{Cardinality: ManyToMany}, nil
	}
}

func classifyUnpaired(p *Pair) (Classification, error) {
	if !p.Local.Many() {
		return Classification{Cardinality: ManyToOne, Owner: p.Local}, nil
	}
	if err := rejectHint(p.Local, OneToMany); err != nil {
		return Classification{}, err
	}
	return Classification{Cardinality: OneToMany}, nil
}

func classifyOneToOne(p *Pair, policy OwnerPolicy) (Classification, error) {
	first, second := p.canonical()
	firstHint, secondHint := first.ForeignKey() != nil, second.ForeignKey() != nil

	var owner *Side
	switch {
	case firstHint && secondHint:
		return Classification{}, &relerrors.ConflictingForeignKeyError{
			Local:   first.Path().String(),
			Foreign: second.Path().String(),
		}
	case firstHint:
		owner = first
	case secondHint:
		owner = second
	default:
		owner = policy(first, second)
	}
	return Classification{Cardinality: OneToOne, Owner: owner}, nil
}

// rejectHint fails when s carries a db.foreignKey hint although, seen from s,
// the relation is c and s cannot hold the column.
func rejectHint(s *Side, c Cardinality) error {
	if s.ForeignKey() == nil {
		return nil
	}
	return &relerrors.InvalidForeignKeyHintError{Field: s.Path().String(), Cardinality: c.Phrase()}
}
