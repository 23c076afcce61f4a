package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseType   Phase = "type"   // type model construction
	PhaseLayout Phase = "layout" // offset and bit range assignment
	PhaseCursor Phase = "cursor" // element cursor positioning
	PhaseAccess Phase = "access" // field reads and writes
	PhaseParse  Phase = "parse"  // schema file loading
	PhaseImport Phase = "import" // WIT type import
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupportedWidth         Kind = "unsupported_width"
	KindUnsupportedPackedType    Kind = "unsupported_packed_field_type"
	KindUnsupportedFieldWidth    Kind = "unsupported_field_width"
	KindUnsupportedContainerSize Kind = "unsupported_container_size"
	KindSizeMismatch             Kind = "size_mismatch"
	KindDuplicateName            Kind = "duplicate_name"
	KindUnresolvedReference      Kind = "unresolved_reference"
	KindRecursiveType            Kind = "recursive_type"
	KindIndexOutOfRange          Kind = "index_out_of_range"
	KindStringTooLong            Kind = "string_too_long"
	KindOverflow                 Kind = "overflow"
	KindUnsupported              Kind = "unsupported"
	KindNotFound                 Kind = "not_found"
	KindInvalidInput             Kind = "invalid_input"
	KindInvalidData              Kind = "invalid_data"
)

// Sentinels for errors.Is. Matching compares Phase and Kind only.
var (
	ErrUnsupportedWidth         = &Error{Phase: PhaseType, Kind: KindUnsupportedWidth}
	ErrUnsupportedPackedType    = &Error{Phase: PhaseType, Kind: KindUnsupportedPackedType}
	ErrUnsupportedFieldWidth    = &Error{Phase: PhaseType, Kind: KindUnsupportedFieldWidth}
	ErrDuplicateName            = &Error{Phase: PhaseType, Kind: KindDuplicateName}
	ErrSizeMismatch             = &Error{Phase: PhaseLayout, Kind: KindSizeMismatch}
	ErrUnsupportedContainerSize = &Error{Phase: PhaseLayout, Kind: KindUnsupportedContainerSize}
	ErrIndexOutOfRange          = &Error{Phase: PhaseCursor, Kind: KindIndexOutOfRange}
	ErrStringTooLong            = &Error{Phase: PhaseAccess, Kind: KindStringTooLong}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Type != "" {
		b.WriteString(": type ")
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(segments ...string) *Builder {
	b.err.Path = segments
	return b
}

// Type sets the schema type name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UnsupportedWidth reports a scalar width outside the supported set.
func UnsupportedWidth(path []string, typ string, bits uint32) *Error {
	return &Error{
		Phase:  PhaseType,
		Kind:   KindUnsupportedWidth,
		Path:   path,
		Type:   typ,
		Detail: fmt.Sprintf("width %d bits is not supported", bits),
		Value:  bits,
	}
}

// DuplicateName reports a repeated field or flag name.
func DuplicateName(phase Phase, path []string, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicateName,
		Path:   path,
		Detail: fmt.Sprintf("name %q declared more than once", name),
		Value:  name,
	}
}

// SizeMismatch reports a declared size that disagrees with the computed one.
func SizeMismatch(path []string, typ string, declared, computed uint64, unit string) *Error {
	return &Error{
		Phase:  PhaseLayout,
		Kind:   KindSizeMismatch,
		Path:   path,
		Type:   typ,
		Detail: fmt.Sprintf("declared %d %s, fields occupy %d %s", declared, unit, computed, unit),
		Value:  computed,
	}
}

// IndexOutOfRange creates a cursor bounds error
func IndexOutOfRange(index, length int) *Error {
	return &Error{
		Phase:  PhaseCursor,
		Kind:   KindIndexOutOfRange,
		Detail: fmt.Sprintf("index %d out of range [0, %d)", index, length),
		Value:  index,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: fmt.Sprintf("%s overflows 32-bit octet addressing", what),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
		Value:  name,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: what,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
