// Package moduleid derives and encodes the 16-byte module identifiers that
// offline symbol tooling uses to find debug files.
//
// Encode renders an ID in the historical debug-id layout: the first three
// GUID fields byte-swapped, the last eight bytes verbatim and a trailing age
// digit. It is allocation-free and safe to call on the crash path.
//
// FromELF and FromBuildID produce IDs from binaries on disk. They allocate and
// are meant to run before a crash, when the mapping list is built.
package moduleid
