// Package format provides allocation-free text primitives used on the crash path.
//
// Everything here writes into caller-owned, fixed-size buffers:
//   - PutHex and its fixed-width wrappers render zero-padded lowercase hex
//   - CopyName copies a name with truncation and NUL termination
//   - Builder appends to a fixed slice and records overflow instead of growing
//
// None of these functions call the allocator, so they can run while the heap
// is in an inconsistent state.
package format
