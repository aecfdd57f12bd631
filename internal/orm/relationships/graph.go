package relationships

import (
	"sort"

	relerrors "github.com/conduit-lang/relc/internal/compiler/errors"
	"github.com/conduit-lang/relc/internal/orm/schema"
)

// BackReferencePrefix prefixes the field synthesized on the target list of an
// unpaired relationship.
const BackReferencePrefix = "from_"

// Relation is a fully resolved relationship
type Relation struct {
	*Pair
	// ID is the position of the relation in Graph.Relations.
	ID          int
	Cardinality Cardinality // seen from Local
	Owner       *Side
	Naming      NamingDecision
}

// Name returns the canonical relation name
func (r *Relation) Name() string {
	return r.Naming.Name
}

// JoinTable returns the join table of a many to many relation, or ""
func (r *Relation) JoinTable() string {
	if r.Cardinality != ManyToMany {
		return ""
	}
	return "_" + r.Naming.Name
}

// CardinalityOf returns the cardinality seen from s
func (r *Relation) CardinalityOf(s *Side) Cardinality {
	if s == r.Local {
		return r.Cardinality
	}
	return r.Cardinality.Mirror()
}

// CanonicalSides returns the declared sides ordered by List_field key, which
// does not depend on the order the lists are declared in.
func (r *Relation) CanonicalSides() []*Side {
	first, second := r.canonical()
	if second == nil {
		return []*Side{first}
	}
	return []*Side{first, second}
}

// OwnsForeignKey reports whether s holds the foreign-key column
func (r *Relation) OwnsForeignKey(s *Side) bool {
	return r.Owner != nil && r.Owner == s
}

// BackReference returns the name of the field synthesized on the target list
// of an unpaired relationship, or "" for a paired one.
func (r *Relation) BackReference() string {
	if r.Paired() {
		return ""
	}
	return BackReferencePrefix + r.Local.Path().Key()
}

// ForeignKeyOnTarget reports whether the foreign-key column lives on the
// target list in the synthesized back-reference, which is the case for an
// unpaired one to many relationship.
func (r *Relation) ForeignKeyOnTarget() bool {
	return !r.Paired() && r.Cardinality == OneToMany
}

// Graph is the resolved relationship graph of a model. It is immutable once
// returned by Resolve.
type Graph struct {
	Registry *schema.Registry
	// Relations in the order their first side is declared.
	Relations []*Relation

	bySide map[schema.FieldPath]*Relation
	// unpaired relations grouped by target list, sorted by relation name
	incoming map[string][]*Relation
}

// Option configures Resolve
type Option func(*options)

type options struct {
	ownerPolicy OwnerPolicy
}

// WithOwnerPolicy replaces DefaultOwnerPolicy for one to one relations
func WithOwnerPolicy(policy OwnerPolicy) Option {
	return func(o *options) {
		o.ownerPolicy = policy
	}
}

// Resolve runs the reference resolver, the cardinality classifier and the
// naming resolver over the registry. It stops at the first error.
func Resolve(registry *schema.Registry, opts ...Option) (*Graph, error) {
	o := &options{ownerPolicy: DefaultOwnerPolicy}
	for _, opt := range opts {
		opt(o)
	}

	pairs, err := ResolvePairs(registry)
	if err != nil {
		return nil, err
	}

	g := &Graph{
		Registry:  registry,
		Relations: make([]*Relation, 0, len(pairs)),
		bySide:    make(map[schema.FieldPath]*Relation),
		incoming:  make(map[string][]*Relation),
	}

	for i, pair := range pairs {
		class, err := Classify(pair, o.ownerPolicy)
		if err != nil {
			return nil, err
		}
		naming, err := ResolveName(pair, class)
		if err != nil {
			return nil, err
		}

		rel := &Relation{
			Pair:        pair,
			ID:          i,
			Cardinality: class.Cardinality,
			Owner:       class.Owner,
			Naming:      naming,
		}
		g.Relations = append(g.Relations, rel)
		for _, side := range pair.Sides() {
			g.bySide[side.Path()] = rel
		}
		if !pair.Paired() {
			g.incoming[pair.Target.Name] = append(g.incoming[pair.Target.Name], rel)
		}
	}

	for _, rels := range g.incoming {
		sortByName(rels)
	}

	if err := g.checkNames(); err != nil {
		return nil, err
	}
	if err := g.checkBackReferences(); err != nil {
		return nil, err
	}

	return g, nil
}

// checkNames rejects two relations sharing one relation name
func (g *Graph) checkNames() error {
	rels := make([]*Relation, len(g.Relations))
	copy(rels, g.Relations)
	sortByName(rels)

	for i := 1; i < len(rels); i++ {
		prev, cur := rels[i-1], rels[i]
		if prev.Name() == cur.Name() {
			return &relerrors.DuplicateRelationNameError{
				Name:   cur.Name(),
				First:  firstPath(prev).String(),
				Second: firstPath(cur).String(),
			}
		}
	}
	return nil
}

// checkBackReferences rejects synthesized fields that collide with declared
// fields of the target list.
func (g *Graph) checkBackReferences() error {
	targets := make([]string, 0, len(g.incoming))
	for name := range g.incoming {
		targets = append(targets, name)
	}
	sort.Strings(targets)

	for _, target := range targets {
		list, _ := g.Registry.List(target)
		seen := make(map[string]bool)
		for _, rel := range g.incoming[target] {
			back := rel.BackReference()
			_, exists := list.Field(back)
			if exists || seen[back] {
				return &relerrors.DuplicateFieldError{
					List:   target,
					Field:  back,
					Reason: "collides with the back-reference synthesized for " + rel.Local.Path().String(),
				}
			}
			seen[back] = true
		}
	}
	return nil
}

// Relation returns the relation a relationship field takes part in
func (g *Graph) Relation(path schema.FieldPath) (*Relation, bool) {
	rel, exists := g.bySide[path]
	return rel, exists
}

// Side returns the relation and the side of a relationship field
func (g *Graph) Side(path schema.FieldPath) (*Relation, *Side, bool) {
	rel, exists := g.bySide[path]
	if !exists {
		return nil, nil, false
	}
	for _, side := range rel.Sides() {
		if side.Path() == path {
			return rel, side, true
		}
	}
	return nil, nil, false
}

// BackReferences returns the unpaired relations pointing at list, sorted by
// relation name.
func (g *Graph) BackReferences(list string) []*Relation {
	return g.incoming[list]
}

// ManyToMany returns the many to many relations sorted by relation name
func (g *Graph) ManyToMany() []*Relation {
	var out []*Relation
	for _, rel := range g.Relations {
		if rel.Cardinality == ManyToMany {
			out = append(out, rel)
		}
	}
	sortByName(out)
	return out
}

// Cardinalities returns the cardinality of every relationship field, seen
// from that field.
func (g *Graph) Cardinalities() map[schema.FieldPath]Cardinality {
	out := make(map[schema.FieldPath]Cardinality, len(g.bySide))
	for path, rel := range g.bySide {
		_, side, _ := g.Side(path)
		out[path] = rel.CardinalityOf(side)
	}
	return out
}

func sortByName(rels []*Relation) {
	sort.SliceStable(rels, func(i, j int) bool {
		if rels[i].Name() != rels[j].Name() {
			return rels[i].Name() < rels[j].Name()
		}
		return sortsBefore(firstPath(rels[i]), firstPath(rels[j]))
	})
}

// firstPath returns the canonical first side of a relation
func firstPath(r *Relation) schema.FieldPath {
	first, _ := r.canonical()
	return first.Path()
}
