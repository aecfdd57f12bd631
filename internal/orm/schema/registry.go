package schema

import (
	"fmt"

	relerrors "github.com/conduit-lang/relc/internal/compiler/errors"
)

// IDFieldName is the name of the field generated for every list
const IDFieldName = "id"

// Registry is the addressable, read-only view of a Model. It is built once
// per compilation and never mutated, so it is safe to share between
// goroutines without locking.
type Registry struct {
	lists  []*List
	byName map[string]*List
	fields map[FieldPath]*Field
}

// NewRegistry indexes the lists of m, preserving declaration order. It fails
// on duplicate list names, duplicate field names within a list, and fields
// whose declaration does not match their kind.
func NewRegistry(m *Model) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]*List),
		fields: make(map[FieldPath]*Field),
	}
	if m == nil {
		return r, nil
	}

	for i, list := range m.Lists {
		switch {
		case list == nil:
			return nil, &relerrors.InvalidListError{Index: i, Reason: "list is nil"}
		case list.Name == "":
			return nil, &relerrors.InvalidListError{Index: i, Reason: "list has no name"}
		}
		if _, exists := r.byName[list.Name]; exists {
			return nil, &relerrors.DuplicateListError{List: list.Name}
		}
		r.byName[list.Name] = list
		r.lists = append(r.lists, list)

		for j, field := range list.Fields {
			if field == nil {
				return nil, &relerrors.InvalidFieldError{
					List:   list.Name,
					Field:  fmt.Sprintf("#%d", j),
					Reason: "field is nil",
				}
			}
			if err := checkShape(list, field); err != nil {
				return nil, err
			}
			if field.Name == IDFieldName {
				return nil, &relerrors.DuplicateFieldError{
					List:   list.Name,
					Field:  field.Name,
					Reason: "id is generated for every list",
				}
			}
			path := FieldPath{List: list.Name, Field: field.Name}
			if _, exists := r.fields[path]; exists {
				return nil, &relerrors.DuplicateFieldError{List: list.Name, Field: field.Name}
			}
			r.fields[path] = field
		}
	}

	return r, nil
}

func checkShape(list *List, f *Field) error {
	invalid := func(reason string) error {
		return &relerrors.InvalidFieldError{List: list.Name, Field: f.Name, Reason: reason}
	}
	switch f.Kind {
	case KindScalar:
		if f.Scalar == nil || f.Relationship != nil {
			return invalid("scalar field must carry scalar attributes only")
		}
		if !f.Scalar.Type.Valid() {
			return invalid("unknown scalar type " + string(f.Scalar.Type))
		}
	case KindRelationship:
		if f.Relationship == nil || f.Scalar != nil {
			return invalid("relationship field must carry relationship attributes only")
		}
		if f.Relationship.Ref == "" {
			return invalid("relationship field is missing ref")
		}
	default:
		return invalid("unknown field kind")
	}
	return nil
}

// Lists returns the lists in declaration order
func (r *Registry) Lists() []*List {
	out := make([]*List, len(r.lists))
	copy(out, r.lists)
	return out
}

// List retrieves a list by name
func (r *Registry) List(name string) (*List, bool) {
	list, exists := r.byName[name]
	return list, exists
}

// Field retrieves a field by list and field name
func (r *Registry) Field(list, field string) (*Field, bool) {
	f, exists := r.fields[FieldPath{List: list, Field: field}]
	return f, exists
}

// Count returns the number of registered lists
func (r *Registry) Count() int {
	return len(r.lists)
}

// FieldCount returns the number of declared fields across all lists
func (r *Registry) FieldCount() int {
	return len(r.fields)
}
