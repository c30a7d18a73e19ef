// Package layout computes the byte size and alignment of every type in a
// resolved WIT type graph.
//
// Results are memoized per type identity (the graph is a DAG with shared
// subtypes, so the same *wit.TypeDef is reached from many referrers), and
// recomputation is idempotent. The table must be populated before wrapper
// generation consumes it: list lowering reads element size and alignment to
// drive the guest allocator call.
//
// Handle types (own/borrow) have no specified layout and fail with an
// unsupported-type error rather than a guessed representation.
package layout
