// Package errors provides structured error types for the moiety bindings.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the accessor path, the Go and native type names involved,
// and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseAccess, errors.KindTypeMismatch).
//		Path("bmp", "width").
//		GoType("string").
//		NativeType("uint16").
//		Detail("value is not a uint16").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OpenFailed(errors.PhaseOpen, "archive", path)
//	err := errors.OutOfBounds(errors.PhaseAccess, []string{"plst", "rect"}, 7, 5)
//
// The four failure classes callers branch on have predicates: IsOpenFailure,
// IsTypeMismatch, IsOutOfBounds and IsNotFound. They match on Kind alone so
// they work across phases.
package errors
