package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies catalog failures. Codes map one-to-one to HTTP statuses
// at the transport edge.
type ErrorCode string

const (
	CodeEntityNotFound         ErrorCode = "EntityNotFound"
	CodeValidation             ErrorCode = "ValidationError"
	CodeRelationNotFound       ErrorCode = "RelationNotFound"
	CodeExternalSourceConflict ErrorCode = "ExternalSourceConflict"
	CodeUnsupportedVersion     ErrorCode = "UnsupportedVersion"
	CodeConflict               ErrorCode = "Conflict"
)

// Sentinels for errors.Is. Any *Error matches the sentinel carrying its code.
var (
	ErrEntityNotFound         = &Error{Code: CodeEntityNotFound}
	ErrValidation             = &Error{Code: CodeValidation}
	ErrRelationNotFound       = &Error{Code: CodeRelationNotFound}
	ErrExternalSourceConflict = &Error{Code: CodeExternalSourceConflict}
	ErrUnsupportedVersion     = &Error{Code: CodeUnsupportedVersion}
	ErrConflict               = &Error{Code: CodeConflict}
)

// FieldError points at one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Index   *int   `json:"index,omitempty"`
	Message string `json:"message"`
}

// Error is the structured error returned by every catalog operation.
type Error struct {
	Code    ErrorCode
	Message string

	// Entity and ID are set for lookups that missed.
	Entity EntityKind
	ID     string

	// Field and Index point at the offending input, if any.
	Field string
	Index *int

	// Fields carries every problem when several were collected at once.
	Fields []FieldError
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Field != "" {
		b.WriteString(" (field ")
		b.WriteString(e.Field)
		if e.Index != nil {
			fmt.Fprintf(&b, "[%d]", *e.Index)
		}
		b.WriteString(")")
	}
	for _, f := range e.Fields {
		fmt.Fprintf(&b, "; %s: %s", f.Field, f.Message)
	}
	return b.String()
}

// Is matches on code so that errors.Is(err, ErrValidation) works for any
// validation error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// NotFound reports a missing entity.
func NotFound(kind EntityKind, id string) *Error {
	msg := "entity not found"
	if kind != "" {
		msg = fmt.Sprintf("%s %s not found", kind, id)
	}
	return &Error{Code: CodeEntityNotFound, Message: msg, Entity: kind, ID: id}
}

// Invalid reports a single invalid field.
func Invalid(field, format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvalidAt reports an invalid element of a list field.
func InvalidAt(field string, index int, format string, args ...any) *Error {
	i := index
	return &Error{Code: CodeValidation, Field: field, Index: &i, Message: fmt.Sprintf(format, args...)}
}

// InvalidFields reports several invalid fields at once.
func InvalidFields(fields []FieldError) *Error {
	return &Error{Code: CodeValidation, Message: "invalid input", Fields: fields}
}

// RelationNotFound reports a request whose caller identity could not be tied to
// the data it addresses.
func RelationNotFound(format string, args ...any) *Error {
	return &Error{Code: CodeRelationNotFound, Message: fmt.Sprintf(format, args...)}
}

// SourceConflict reports a source id already mapped to another root.
func SourceConflict(kind EntityKind, sourceID string) *Error {
	return &Error{
		Code:    CodeExternalSourceConflict,
		Message: fmt.Sprintf("source id %q is already used by another %s", sourceID, kind),
		Entity:  kind,
		ID:      sourceID,
		Field:   "sourceId",
	}
}

// UnsupportedVersion reports an API version outside the supported range.
func UnsupportedVersion(kind EntityKind, version, floor, ceiling int) *Error {
	return &Error{
		Code:    CodeUnsupportedVersion,
		Message: fmt.Sprintf("API version %d is not supported for %s (supported: %d-%d)", version, kind, floor, ceiling),
		Entity:  kind,
	}
}

// Conflict reports a write that lost against concurrent or newer state.
func Conflict(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// FieldErrors accumulates validation problems and turns them into one *Error.
type FieldErrors []FieldError

func (f *FieldErrors) Add(field, format string, args ...any) {
	*f = append(*f, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (f *FieldErrors) AddAt(field string, index int, format string, args ...any) {
	i := index
	*f = append(*f, FieldError{Field: field, Index: &i, Message: fmt.Sprintf(format, args...)})
}

// Nest files errors collected for one item of a list under field[index]. The
// item's own path moves into the message.
func (f *FieldErrors) Nest(field string, index int, sub FieldErrors) {
	for _, e := range sub {
		path := e.Field
		if e.Index != nil {
			path = fmt.Sprintf("%s[%d]", path, *e.Index)
		}
		f.AddAt(field, index, "%s: %s", path, e.Message)
	}
}

// Err returns nil when nothing was collected.
func (f FieldErrors) Err() error {
	switch len(f) {
	case 0:
		return nil
	case 1:
		return &Error{Code: CodeValidation, Field: f[0].Field, Index: f[0].Index, Message: f[0].Message}
	default:
		return InvalidFields(f)
	}
}
