// Package abi implements the pure decision layer of the Canonical ABI:
// signature classification, flat representation counting, alignment
// arithmetic, and host value coercion.
//
// # Contents
//
//   - classify.go: scalar fast-path eligibility per function signature
//   - count.go: flattened slot arity for every WIT type
//   - kind.go: the closed element-kind enumeration list marshaling
//     dispatches on
//   - coerce.go: numeric coercion between host values and flat slots
//   - helpers.go: alignment, discriminant sizing, limits, NaN handling
//
// Everything here is stateless and deterministic over the resolved type
// graph; nothing in this package touches linear memory.
package abi
