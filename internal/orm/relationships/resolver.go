package relationships

import (
	"fmt"

	relerrors "github.com/conduit-lang/relc/internal/compiler/errors"
	"github.com/conduit-lang/relc/internal/orm/schema"
)

// resolver pairs relationship fields. Pairs live in a slice addressed through
// an unordered key so that visiting a pair from either side yields the same
// entry.
type resolver struct {
	registry *schema.Registry
	pairs    []*Pair
	index    map[pairKey]int
}

// ResolvePairs resolves the ref of every relationship field in the registry.
// Pairs are returned in the order their first side is declared.
func ResolvePairs(registry *schema.Registry) ([]*Pair, error) {
	r := &resolver{
		registry: registry,
		index:    make(map[pairKey]int),
	}

	for _, list := range registry.Lists() {
		for _, field := range list.Fields {
			if !field.IsRelationship() {
				continue
			}
			if err := r.resolveField(&Side{List: list, Field: field}); err != nil {
				return nil, err
			}
		}
	}

	return r.pairs, nil
}

func (r *resolver) resolveField(local *Side) error {
	path := local.Path()
	raw := local.Field.Relationship.Ref

	ref, err := schema.ParseRef(raw)
	if err != nil {
		return &relerrors.DanglingReferenceError{Field: path.String(), Ref: raw, Reason: err.Error()}
	}

	target, exists := r.registry.List(ref.List)
	if !exists {
		return &relerrors.DanglingReferenceError{
			Field:  path.String(),
			Ref:    raw,
			Reason: fmt.Sprintf("list %s does not exist", ref.List),
		}
	}

	if !ref.HasField() {
		r.addUnpaired(local, target)
		return nil
	}

	// id is a scalar every list has
	if ref.Field == schema.IDFieldName {
		return &relerrors.WrongFieldKindError{Field: path.String(), Target: ref.Path().String()}
	}

	targetField, exists := r.registry.Field(ref.List, ref.Field)
	if !exists {
		return &relerrors.DanglingReferenceError{
			Field:  path.String(),
			Ref:    raw,
			Reason: fmt.Sprintf("%s has no field %s", ref.List, ref.Field),
		}
	}
	if !targetField.IsRelationship() {
		return &relerrors.WrongFieldKindError{Field: path.String(), Target: ref.Path().String()}
	}

	// A field pointing at itself has no distinct counterpart.
	if ref.Path() == path {
		r.addUnpaired(local, target)
		return nil
	}

	back, err := schema.ParseRef(targetField.Relationship.Ref)
	if err != nil || !back.HasField() || back.Path() != path {
		r.addUnpaired(local, target)
		return nil
	}

	key := newPairKey(path, ref.Path())
	if _, seen := r.index[key]; seen {
		return nil
	}
	r.index[key] = len(r.pairs)
	r.pairs = append(r.pairs, &Pair{
		Local:   local,
		Foreign: &Side{List: target, Field: targetField},
		Target:  target,
	})
	return nil
}

func (r *resolver) addUnpaired(local *Side, target *schema.List) {
	key := newPairKey(local.Path(), local.Path())
	r.index[key] = len(r.pairs)
	r.pairs = append(r.pairs, &Pair{Local: local, Target: target})
}
