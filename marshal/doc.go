// Package marshal is the fixed helper library generated wrappers call at
// run time: UTF-8 text encode/decode and scalar list store/load against one
// module instance's linear memory.
//
// A Helpers value captures the instance's memory buffer and allocator
// export once at instantiation time; a generation session targeting several
// instances holds one Helpers per instance, never shared state.
//
// The allocator and memory buffer are shared and mutable within an
// instance, so a marshaled call's allocate-write-call-read-release sequence
// must not interleave with another call into the same instance.
package marshal
