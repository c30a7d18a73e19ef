// Package wasmbindgen generates host bindings for core WebAssembly modules
// that speak the canonical ABI.
//
// Core modules exchange only machine scalars, so anything richer - text,
// lists, records - crosses the boundary through linear memory under the
// canonical ABI's layout rules. This library classifies each function
// signature, binds all-scalar functions directly to their exports, and
// wraps everything else in a generated marshaling closure that lowers
// arguments into guest memory, calls the export, lifts the result back out
// and runs the module's release hook.
//
// # Architecture Overview
//
// The library is organized into packages with distinct responsibilities:
//
//	wasmbindgen/    Root package with the Memory, Allocator and Instance interfaces
//	├── runtime/    High-level API: load a module plus WIT text, call exports
//	├── bind/       Signature classification, wrapper generation, import/export wiring
//	├── engine/     wazero integration: compilation, instantiation, host modules
//	├── marshal/    Runtime helper set: text and list lowering/lifting, allocations
//	├── layout/     Size/alignment computation for WIT types
//	├── abi/        Flattening rules, scalar coercion, canonical constants
//	└── errors/     Structured error types for debugging
//
// # Quick Start
//
// Load a module with its WIT description and call an export:
//
//	rt, err := runtime.New(ctx)
//	defer rt.Close(ctx)
//
//	mod, err := rt.Load(ctx, wasmBytes, `
//	    concat: func(a: string, b: string) -> string;
//	    add: func(a: s32, b: s32) -> s32;
//	`)
//
//	inst, err := mod.Instantiate(ctx)
//	defer inst.Close(ctx)
//
//	result, err := inst.Call(ctx, "concat", "foo", "bar")
//	fmt.Println(result) // "foobar"
//
// # Host Functions
//
// Go functions become guest-callable imports the same way, registered
// before instantiation:
//
//	rt.RegisterFunc("example:host/log", "log: func(msg: string)",
//	    func(ctx context.Context, msg string) {
//	        fmt.Println(msg)
//	    })
//
// Imports declared at the top level of a world live in the "$root"
// namespace; pass an empty namespace to register them.
//
// # Thread Safety
//
// Runtime and Module are safe for concurrent use. Instance is NOT
// thread-safe and should be used by a single goroutine, or access must be
// synchronized externally.
package wasmbindgen
