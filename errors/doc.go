// Package errors provides structured error types for the binding generator.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). Generation-time failures (classify, layout, generate, wire) are
// fatal for the affected function: the generator reports them instead of
// emitting a lossy wrapper. Call-time failures (lower, lift, call) surface to
// the caller of the bound function; neither class is ever retried.
//
// Use the Builder for structured construction:
//
//	err := errors.New(errors.PhaseLower, errors.KindTypeMismatch).
//		Path("concat", "a").
//		GoType("int").
//		WitType("string").
//		Detail("expected text").
//		Build()
//
// Or the convenience constructors for common patterns:
//
//	err := errors.Unsupported(errors.PhaseGenerate, "record", "compound parameter")
//	err := errors.InvalidUTF8(errors.PhaseLift, path, data)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
