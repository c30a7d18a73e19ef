// Package engine runs core WebAssembly modules on wazero and adapts them
// to the binding layer's instance contract.
//
// The engine compiles raw module bytes once and instantiates them any
// number of times. At instantiation it materializes the host's import
// object into wazero host modules (lifting flat arguments into Go values
// on the way in, lowering results on the way out), then wraps the running
// module's memory and its exported allocator behind the Memory and
// Allocator interfaces the marshaling helpers operate on.
//
// Allocator discovery prefers the standard cabi_realloc export and falls
// back through the legacy names older toolchains emitted.
package engine
