// Package schema provides the declared model of lists and fields that the
// relationship compiler consumes. Fields are a closed variant: a field is
// either a scalar, opaque to relationship resolution, or a relationship that
// references another list by name.
package schema

import (
	"fmt"
	"strings"
)

// FieldKind discriminates the field variants
type FieldKind int

const (
	// KindScalar is a plain column
	KindScalar FieldKind = iota
	// KindRelationship is a field associating its list with another list
	KindRelationship
)

// String returns the string representation of the field kind
func (k FieldKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindRelationship:
		return "relationship"
	default:
		return "unknown"
	}
}

// ScalarType represents the built-in scalar field types
type ScalarType string

const (
	TypeText      ScalarType = "text"
	TypeInteger   ScalarType = "integer"
	TypeBigInt    ScalarType = "bigInt"
	TypeFloat     ScalarType = "float"
	TypeDecimal   ScalarType = "decimal"
	TypeCheckbox  ScalarType = "checkbox"
	TypeTimestamp ScalarType = "timestamp"
	TypeJSON      ScalarType = "json"
)

// Valid reports whether t is a known scalar type
func (t ScalarType) Valid() bool {
	switch t {
	case TypeText, TypeInteger, TypeBigInt, TypeFloat, TypeDecimal,
		TypeCheckbox, TypeTimestamp, TypeJSON:
		return true
	}
	return false
}

// IDKind selects how the implicit id field of a list is generated
type IDKind string

const (
	IDCuid          IDKind = "cuid"
	IDUUID          IDKind = "uuid"
	IDAutoincrement IDKind = "autoincrement"
)

// ParseIDKind converts a string to an IDKind. The empty string means cuid.
func ParseIDKind(s string) (IDKind, error) {
	switch IDKind(s) {
	case "", IDCuid:
		return IDCuid, nil
	case IDUUID:
		return IDUUID, nil
	case IDAutoincrement:
		return IDAutoincrement, nil
	default:
		return "", fmt.Errorf("unknown id kind: %s", s)
	}
}

// Model is the static configuration handed to the compiler: every declared
// list, in declaration order.
type Model struct {
	Lists []*List
}

// List is a declared entity. Field order is significant: it controls emission order.
type List struct {
	Name   string
	ID     IDKind
	Fields []*Field
}

// Field belongs to exactly one List. Exactly one of Scalar and Relationship is
// set, matching Kind.
type Field struct {
	Name         string
	Kind         FieldKind
	Scalar       *Scalar
	Relationship *Relationship
}

// Scalar holds the attributes of a scalar field
type Scalar struct {
	Type     ScalarType
	Optional bool
	Unique   bool
	Index    bool
	Default  string // raw default expression, e.g. `""` or `now()`
	Map      string // column name override
}

// Relationship holds the attributes of a relationship field
type Relationship struct {
	Ref          string // "List.field" or "List"
	Many         bool
	RelationName string
	ForeignKey   *ForeignKeyHint
}

// ForeignKeyHint asks for the foreign-key column to be placed on the side that
// declares it, optionally renaming the column.
type ForeignKeyHint struct {
	Map string
}

// NewList creates a list with a cuid id field
func NewList(name string, fields ...*Field) *List {
	return &List{Name: name, ID: IDCuid, Fields: fields}
}

// NewScalarField creates a scalar field of the given type
func NewScalarField(name string, typ ScalarType) *Field {
	return &Field{
		Name:   name,
		Kind:   KindScalar,
		Scalar: &Scalar{Type: typ},
	}
}

// NewRelationshipField creates a relationship field
func NewRelationshipField(name, ref string, many bool) *Field {
	return &Field{
		Name: name,
		Kind: KindRelationship,
		Relationship: &Relationship{
			Ref:  ref,
			Many: many,
		},
	}
}

// WithRelationName sets an explicit relation name on a relationship field
func (f *Field) WithRelationName(name string) *Field {
	if f.Relationship != nil {
		f.Relationship.RelationName = name
	}
	return f
}

// WithForeignKey sets a foreign-key placement hint on a relationship field
func (f *Field) WithForeignKey(hint ForeignKeyHint) *Field {
	if f.Relationship != nil {
		f.Relationship.ForeignKey = &hint
	}
	return f
}

// IsRelationship reports whether the field is a relationship field
func (f *Field) IsRelationship() bool {
	return f.Kind == KindRelationship && f.Relationship != nil
}

// Field returns the field with the given name
func (l *List) Field(name string) (*Field, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// FieldPath identifies a field across the model
type FieldPath struct {
	List  string
	Field string
}

// String returns the List.field form of the path
func (p FieldPath) String() string {
	return p.List + "." + p.Field
}

// Key returns the List_field form used to derive relation names
func (p FieldPath) Key() string {
	return p.List + "_" + p.Field
}

// Ref is a parsed relationship reference
type Ref struct {
	List  string
	Field string // empty for a list-only reference
}

// HasField reports whether the reference names a field on the other side
func (r Ref) HasField() bool {
	return r.Field != ""
}

// Path returns the referenced field path
func (r Ref) Path() FieldPath {
	return FieldPath{List: r.List, Field: r.Field}
}

// String returns the textual form of the reference
func (r Ref) String() string {
	if r.Field == "" {
		return r.List
	}
	return r.List + "." + r.Field
}

// ParseRef parses "List.field" or "List"
func ParseRef(s string) (Ref, error) {
	if s == "" {
		return Ref{}, fmt.Errorf("ref is empty")
	}
	parts := strings.Split(s, ".")
	switch {
	case len(parts) > 2:
		return Ref{}, fmt.Errorf("ref must be of the form List or List.field")
	case parts[0] == "":
		return Ref{}, fmt.Errorf("ref has an empty list name")
	case len(parts) == 2 && parts[1] == "":
		return Ref{}, fmt.Errorf("ref has an empty field name")
	}
	ref := Ref{List: parts[0]}
	if len(parts) == 2 {
		ref.Field = parts[1]
	}
	return ref, nil
}
