// Package wazero hosts extension packages compiled to WebAssembly.
//
// library("<name>") instantiates <name>.wasm from the configured search
// paths (or a module registered with WithModule) and attaches its exports.
// A call resolves the function name against attached modules, most recently
// attached first, the way an R search path does.
//
// # Value ABI
//
// Arguments are flattened onto the wasm stack:
//
//	Real     f64
//	Integer  i32
//	Logical  i32 (0 or 1)
//	String   i32 ptr, i32 len   (written via the guest's "allocate" export)
//
// Results are read from the function signature:
//
//	()          NULL
//	(f64)       Real
//	(i32)       Integer
//	(f64, i32)  Real plus a status; a non-zero status is an evaluation error
//
// Guests may import rateconv_host.log_message(i64 packed ptr/len) to log a
// JSON {"level","message"} record through the host logger.
package wazero
