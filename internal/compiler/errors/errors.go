// Package errors defines the error taxonomy of the relc compiler.
// Every error is a deterministic function of the declared model: none is
// transient, none is retried, and the first one aborts compilation. Each
// error carries a stable code and the List.field paths it concerns, and can
// be rendered as a JSON diagnostic for tooling.
package errors

import (
	"encoding/json"
	stderrors "errors"
)

// ErrorCode represents a unique error code in the relc compiler
type ErrorCode string

// ErrorCategory represents the category of compiler error
type ErrorCategory string

const (
	// CategoryRegistry represents malformed-model errors (REG001-099)
	CategoryRegistry ErrorCategory = "registry"
	// CategoryRelationship represents relationship errors (REL300-399)
	CategoryRelationship ErrorCategory = "relationship"
)

// Sentinel errors matched by errors.Is.
var (
	// ErrInvalidModel is matched by every registry error.
	ErrInvalidModel = stderrors.New("relc: invalid model")
	// ErrInvalidRelationship is matched by every relationship error.
	ErrInvalidRelationship = stderrors.New("relc: invalid relationship")
)

// CodedError is implemented by every error in this package.
type CodedError interface {
	error
	// Code returns the stable error code.
	Code() ErrorCode
	// Kind returns the machine-readable error type, e.g. "DanglingReferenceError".
	Kind() string
	// Category returns the error category.
	Category() ErrorCategory
	// Fields returns the List.field paths involved, in the order they are named
	// by the message.
	Fields() []string
}

// Diagnostic is the JSON form of a CodedError.
type Diagnostic struct {
	Code     ErrorCode     `json:"code"`
	Kind     string        `json:"kind"`
	Category ErrorCategory `json:"category"`
	Message  string        `json:"message"`
	Fields   []string      `json:"fields,omitempty"`
}

// ToDiagnostic converts err into a Diagnostic. Errors outside the taxonomy are
// reported with an empty code and kind "Error".
func ToDiagnostic(err error) Diagnostic {
	var coded CodedError
	if stderrors.As(err, &coded) {
		return Diagnostic{
			Code:     coded.Code(),
			Kind:     coded.Kind(),
			Category: coded.Category(),
			Message:  coded.Error(),
			Fields:   coded.Fields(),
		}
	}
	return Diagnostic{Kind: "Error", Message: err.Error()}
}

// ToJSON returns the diagnostic as indented JSON
func (d Diagnostic) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CodeOf returns the code of err, or "" when err is not a CodedError.
func CodeOf(err error) ErrorCode {
	var coded CodedError
	if stderrors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}
