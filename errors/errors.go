package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad    Phase = "load"    // foreign library loading
	PhaseBind    Phase = "bind"    // symbol resolution against the library
	PhaseOpen    Phase = "open"    // archive, resource and typed-variant construction
	PhaseAccess  Phase = "access"  // method and property calls on an open handle
	PhaseScript  Phase = "script"  // script structuring
	PhaseResolve Phase = "resolve" // stack and resource resolution
	PhaseEncode  Phase = "encode"  // rendering resource data downstream
	PhaseConfig  Phase = "config"  // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindOpenFailed    Kind = "open_failed"
	KindTypeMismatch  Kind = "type_mismatch"
	KindOutOfBounds   Kind = "out_of_bounds"
	KindNotFound      Kind = "not_found"
	KindMissingSymbol Kind = "missing_symbol"
	KindInvalidInput  Kind = "invalid_input"
	KindInvalidData   Kind = "invalid_data"
	KindUnsupported   Kind = "unsupported"
	KindNilPointer    Kind = "nil_pointer"
)

// Error is the structured error type used throughout moiety
type Error struct {
	Value      any
	Cause      error
	Phase      Phase
	Kind       Kind
	GoType     string
	NativeType string
	Detail     string
	Path       []string
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

	if e.GoType != "" || e.NativeType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.NativeType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", native type ")
			b.WriteString(e.NativeType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("native type ")
			b.WriteString(e.NativeType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.NativeType != "" {
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

// Path sets the accessor path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// NativeType sets the native (C ABI) type name
func (b *Builder) NativeType(t string) *Builder {
	b.err.NativeType = t
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

// OpenFailed creates the uniform "could not open X" error returned when a
// constructor receives a null handle from the foreign layer.
func OpenFailed(phase Phase, what, name string) *Error {
	detail := "could not open " + what
	if name != "" {
		detail += " " + name
	}
	return &Error{
		Phase:  phase,
		Kind:   KindOpenFailed,
		Detail: detail,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, nativeType string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindTypeMismatch,
		Path:       path,
		GoType:     goType,
		NativeType: nativeType,
	}
}

// WrongShape creates a type mismatch error for an accessor invoked on a
// handle it does not apply to.
func WrongShape(phase Phase, path []string, want, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Detail: fmt.Sprintf("accessor applies to %s, handle is %s", want, got),
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// InvalidRecord creates an out of bounds error for a 1-based record index.
func InvalidRecord(phase Phase, path []string, index, records int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("record %d outside 1..%d", index, records),
		Value:  index,
	}
}

// SentinelID creates an out of bounds error for a lookup that returned a
// negative or sentinel id.
func SentinelID(phase Phase, path []string, index int, id int64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("record %d has no valid id (got %d)", index, id),
		Value:  id,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, path []string, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Path:   path,
		GoType: goType,
		Detail: "nil pointer",
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

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
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

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a library loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindOpenFailed,
		Detail: detail,
		Cause:  cause,
	}
}

// MissingSymbol represents a single unresolved foreign symbol
type MissingSymbol struct {
	Class  string // e.g., "archive"
	Symbol string // e.g., "vaht_archive_open"
}

// MissingSymbolsError is returned when binding fails because the loaded
// library does not export every declared function. It means the library and
// the binding tables disagree and no request can be served.
type MissingSymbolsError struct {
	Symbols []MissingSymbol
}

// NewMissingSymbolsError creates an error from a list of "class#symbol" strings
func NewMissingSymbolsError(symbols []string) *MissingSymbolsError {
	result := &MissingSymbolsError{
		Symbols: make([]MissingSymbol, 0, len(symbols)),
	}
	for _, s := range symbols {
		class, sym := parseSymbolKey(s)
		result.Symbols = append(result.Symbols, MissingSymbol{
			Class:  class,
			Symbol: sym,
		})
	}
	return result
}

func parseSymbolKey(key string) (class, symbol string) {
	c, s, found := strings.Cut(key, "#")
	if found {
		return c, s
	}
	return "", key
}

func (e *MissingSymbolsError) Error() string {
	if len(e.Symbols) == 0 {
		return "[bind] missing_symbol: no symbols specified"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "library is missing %d symbol(s):\n", len(e.Symbols))

	// Group by class for cleaner output
	byClass := make(map[string][]string)
	var order []string
	for _, s := range e.Symbols {
		if _, exists := byClass[s.Class]; !exists {
			order = append(order, s.Class)
		}
		byClass[s.Class] = append(byClass[s.Class], s.Symbol)
	}

	for _, class := range order {
		b.WriteString("\n  ")
		if class == "" {
			b.WriteString("(unclassified)")
		} else {
			b.WriteString(class)
		}
		b.WriteString(":\n")
		for _, sym := range byClass[class] {
			b.WriteString("    - ")
			b.WriteString(sym)
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *MissingSymbolsError) Is(target error) bool {
	if _, ok := target.(*MissingSymbolsError); ok {
		return true
	}
	if t, ok := target.(*Error); ok {
		return t.Phase == PhaseBind && t.Kind == KindMissingSymbol
	}
	return false
}

// Predicates

func hasKind(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsOpenFailure reports whether err is an open failure in any phase.
func IsOpenFailure(err error) bool { return hasKind(err, KindOpenFailed) }

// IsTypeMismatch reports whether err is a type mismatch in any phase.
func IsTypeMismatch(err error) bool { return hasKind(err, KindTypeMismatch) }

// IsOutOfBounds reports whether err is an index error in any phase.
func IsOutOfBounds(err error) bool { return hasKind(err, KindOutOfBounds) }

// IsNotFound reports whether err is a not-found error in any phase.
func IsNotFound(err error) bool { return hasKind(err, KindNotFound) }
