package errors

import "fmt"

// Registry error codes (REG001-099)
const (
	// ErrDuplicateList indicates two lists share a name
	ErrDuplicateList ErrorCode = "REG001"
	// ErrDuplicateField indicates two fields of one list share a name
	ErrDuplicateField ErrorCode = "REG002"
	// ErrInvalidField indicates a field whose declaration has the wrong shape
	ErrInvalidField ErrorCode = "REG003"
	// ErrInvalidList indicates a list entry that cannot be registered
	ErrInvalidList ErrorCode = "REG004"
)

// DuplicateListError is returned when a list name is declared more than once.
type DuplicateListError struct {
	List string
}

func (e *DuplicateListError) Error() string {
	return fmt.Sprintf("list %s is declared more than once", e.List)
}

func (e *DuplicateListError) Code() ErrorCode { return ErrDuplicateList }
func (e *DuplicateListError) Kind() string { return "DuplicateListError" }
func (e *DuplicateListError) Category() ErrorCategory { return CategoryRegistry }
func (e *DuplicateListError) Fields() []string { return nil }
func (e *DuplicateListError) Is(target error) bool { return target == ErrInvalidModel }

// DuplicateFieldError is returned when a field name is used twice within a list,
// including collisions with the implicit id field and with synthesized
// back-reference fields.
type DuplicateFieldError struct {
	List   string
	Field  string
	Reason string
}

func (e *DuplicateFieldError) Error() string {
	msg := fmt.Sprintf("field %s.%s is declared more than once", e.List, e.Field)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *DuplicateFieldError) Code() ErrorCode { return ErrDuplicateField }
func (e *DuplicateFieldError) Kind() string { return "DuplicateFieldError" }
func (e *DuplicateFieldError) Category() ErrorCategory { return CategoryRegistry }
func (e *DuplicateFieldError) Fields() []string { return []string{e.List + "." + e.Field} }
func (e *DuplicateFieldError) Is(target error) bool { return target == ErrInvalidModel }

// InvalidFieldError is returned when a field declaration does not have the
// shape its kind requires.
type InvalidFieldError struct {
	List   string
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("field %s.%s is invalid: %s", e.List, e.Field, e.Reason)
}

func (e *InvalidFieldError) Code() ErrorCode { return ErrInvalidField }
func (e *InvalidFieldError) Kind() string { return "InvalidFieldError" }
func (e *InvalidFieldError) Category() ErrorCategory { return CategoryRegistry }
func (e *InvalidFieldError) Fields() []string { return []string{e.List + "." + e.Field} }
func (e *InvalidFieldError) Is(target error) bool { return target == ErrInvalidModel }

// InvalidListError is returned when a list entry of the model is missing or
// has no name. Index is its position in declaration order.
type InvalidListError struct {
	Index  int
	Reason string
}

func (e *InvalidListError) Error() string {
	return fmt.Sprintf("list #%d is invalid: %s", e.Index, e.Reason)
}

func (e *InvalidListError) Code() ErrorCode { return ErrInvalidList }
func (e *InvalidListError) Kind() string { return "InvalidListError" }
func (e *InvalidListError) Category() ErrorCategory { return CategoryRegistry }
func (e *InvalidListError) Fields() []string { return nil }
func (e *InvalidListError) Is(target error) bool { return target == ErrInvalidModel }
