package errors

import "fmt"

// Relationship error codes (REL300-399)
const (
	// ErrDanglingReference indicates a ref naming a list or field that does not exist
	ErrDanglingReference ErrorCode = "REL300"
	// ErrWrongFieldKind indicates a ref pointing at a non-relationship field
	ErrWrongFieldKind ErrorCode = "REL301"
	// ErrConflictingRelationName indicates both sides of a pair fix the relation name
	ErrConflictingRelationName ErrorCode = "REL302"
	// ErrRelationNameOnManySide indicates a relation name set on the many side
	ErrRelationNameOnManySide ErrorCode = "REL303"
	// ErrConflictingForeignKey indicates both sides of a one to one pair claim the foreign key
	ErrConflictingForeignKey ErrorCode = "REL304"
	// ErrInvalidForeignKeyHint indicates a foreign-key hint on a side that cannot hold one
	ErrInvalidForeignKeyHint ErrorCode = "REL305"
	// ErrDuplicateRelationName indicates two relationships resolved to the same name
	ErrDuplicateRelationName ErrorCode = "REL306"
)

// DanglingReferenceError is returned when a relationship ref names a list or
// field that does not exist, or is not of the form List or List.field.
type DanglingReferenceError struct {
	Field  string // List.field declaring the ref
	Ref    string
	Reason string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("%s has ref %q, but %s", e.Field, e.Ref, e.Reason)
}

func (e *DanglingReferenceError) Code() ErrorCode { return ErrDanglingReference }
func (e *DanglingReferenceError) Kind() string { return "DanglingReferenceError" }
func (e *DanglingReferenceError) Category() ErrorCategory { return CategoryRelationship }
func (e *DanglingReferenceError) Fields() []string { return []string{e.Field} }
func (e *DanglingReferenceError) Is(target error) bool { return target == ErrInvalidRelationship }

// WrongFieldKindError is returned when a ref points at a scalar field.
type WrongFieldKindError struct {
	Field  string
	Target string
}

func (e *WrongFieldKindError) Error() string {
	return fmt.Sprintf("%s has ref %q, but %s is not a relationship field", e.Field, e.Target, e.Target)
}

func (e *WrongFieldKindError) Code() ErrorCode { return ErrWrongFieldKind }
func (e *WrongFieldKindError) Kind() string { return "WrongFieldKindError" }
func (e *WrongFieldKindError) Category() ErrorCategory { return CategoryRelationship }
func (e *WrongFieldKindError) Fields() []string { return []string{e.Field, e.Target} }
func (e *WrongFieldKindError) Is(target error) bool { return target == ErrInvalidRelationship }

// ConflictingRelationNameError is returned when both sides of a many to many
// relationship set a relation name, or both sides of a one to one relationship
// set different ones.
type ConflictingRelationNameError struct {
	Local       string
	Foreign     string
	Cardinality string // "many to many" or "one to one"
	LocalName   string
	ForeignName string
}

func (e *ConflictingRelationNameError) Error() string {
	if e.Cardinality == "many to many" {
		return fmt.Sprintf("You can only set db.relationName on one side of a many to many relationship, but db.relationName is set on both %s and %s",
			e.Local, e.Foreign)
	}
	return fmt.Sprintf("db.relationName is set to different values on both sides of the %s relationship between %s (%q) and %s (%q)",
		e.Cardinality, e.Local, e.LocalName, e.Foreign, e.ForeignName)
}

func (e *ConflictingRelationNameError) Code() ErrorCode { return ErrConflictingRelationName }
func (e *ConflictingRelationNameError) Kind() string { return "ConflictingRelationNameError" }
func (e *ConflictingRelationNameError) Category() ErrorCategory { return CategoryRelationship }
func (e *ConflictingRelationNameError) Fields() []string { return []string{e.Local, e.Foreign} }
func (e *ConflictingRelationNameError) Is(target error) bool {
	return target == ErrInvalidRelationship
}

// RelationNameOnManySideError is returned when a relation name is set on the
// many side of a one to many relationship.
type RelationNameOnManySideError struct {
	Field       string // the many side carrying the override
	Counterpart string
}

func (e *RelationNameOnManySideError) Error() string {
	return fmt.Sprintf("You can only set db.relationName on one side of a many to many relationship, but db.relationName is set on %s which is the many side of a many to one relationship with %s",
		e.Field, e.Counterpart)
}

func (e *RelationNameOnManySideError) Code() ErrorCode { return ErrRelationNameOnManySide }
func (e *RelationNameOnManySideError) Kind() string { return "RelationNameOnManySideError" }
func (e *RelationNameOnManySideError) Category() ErrorCategory { return CategoryRelationship }
func (e *RelationNameOnManySideError) Fields() []string { return []string{e.Field, e.Counterpart} }
func (e *RelationNameOnManySideError) Is(target error) bool {
	return target == ErrInvalidRelationship
}

// ConflictingForeignKeyError is returned when both sides of a one to one
// relationship carry a db.foreignKey hint.
type ConflictingForeignKeyError struct {
	Local   string
	Foreign string
}

func (e *ConflictingForeignKeyError) Error() string {
	return fmt.Sprintf("db.foreignKey is set on both %s and %s, but only one side of a one to one relationship can hold the foreign key",
		e.Local, e.Foreign)
}

func (e *ConflictingForeignKeyError) Code() ErrorCode { return ErrConflictingForeignKey }
func (e *ConflictingForeignKeyError) Kind() string { return "ConflictingForeignKeyError" }
func (e *ConflictingForeignKeyError) Category() ErrorCategory { return CategoryRelationship }
func (e *ConflictingForeignKeyError) Fields() []string { return []string{e.Local, e.Foreign} }
func (e *ConflictingForeignKeyError) Is(target error) bool {
	return target == ErrInvalidRelationship
}

// InvalidForeignKeyHintError is returned when db.foreignKey is set on a side
// that never holds the foreign-key column.
type InvalidForeignKeyHintError struct {
	Field       string
	Cardinality string
}

func (e *InvalidForeignKeyHintError) Error() string {
	return fmt.Sprintf("db.foreignKey is set on %s, but that side of a %s relationship cannot hold a foreign key",
		e.Field, e.Cardinality)
}

func (e *InvalidForeignKeyHintError) Code() ErrorCode { return ErrInvalidForeignKeyHint }
func (e *InvalidForeignKeyHintError) Kind() string { return "InvalidForeignKeyHintError" }
func (e *InvalidForeignKeyHintError) Category() ErrorCategory { return CategoryRelationship }
func (e *InvalidForeignKeyHintError) Fields() []string { return []string{e.Field} }
func (e *InvalidForeignKeyHintError) Is(target error) bool {
	return target == ErrInvalidRelationship
}

// DuplicateRelationNameError is returned when two distinct relationships
// resolve to the same relation name.
type DuplicateRelationNameError struct {
	Name   string
	First  string
	Second string
}

func (e *DuplicateRelationNameError) Error() string {
	return fmt.Sprintf("relation name %q is used by both %s and %s", e.Name, e.First, e.Second)
}

func (e *DuplicateRelationNameError) Code() ErrorCode { return ErrDuplicateRelationName }
func (e *DuplicateRelationNameError) Kind() string { return "DuplicateRelationNameError" }
func (e *DuplicateRelationNameError) Category() ErrorCategory { return CategoryRelationship }
func (e *DuplicateRelationNameError) Fields() []string { return []string{e.First, e.Second} }
func (e *DuplicateRelationNameError) Is(target error) bool {
	return target == ErrInvalidRelationship
}
