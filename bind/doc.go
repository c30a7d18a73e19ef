// Package bind turns function signatures over a resolved WIT type graph
// into host-callable bindings against a module instance.
//
// For every signature the generator first classifies it. All-scalar
// functions take the fast path: a direct binding over the raw export with
// no helper invocation and no allocation. Everything else gets a marshaling
// wrapper that lowers each argument into flattened scalar slots (two slots,
// pointer first, for strings and lists), invokes the export with the slots
// in declaration order, lifts the result back out of linear memory, and
// invokes the per-function release hook when the instance exports one.
//
// Type combinations the engine cannot flatten (compound parameters other
// than string/list-of-scalar, compound or multiple results, handle types)
// fail at generation time with an explicit unsupported-type error; the
// generator never emits a lossy or partial wrapper.
//
// The package also builds the two-level import and export objects that
// bracket instantiation: imports grouped by interface name (with "$root"
// for top-level functions) before, exports re-exposed under host-visible
// lower-camel-case names after.
package bind
