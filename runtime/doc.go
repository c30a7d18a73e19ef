// Package runtime is the high-level entry point: load a core WASM module
// together with the WIT text describing its functions, register host
// functions, instantiate, and call exports by name.
//
// Core modules carry no type metadata, so the WIT text is the source of
// truth for signatures. The runtime parses it once per module, wires
// registered host functions into the instance's imports, and exposes the
// module's exports under their host-visible lowerCamelCase names.
package runtime
