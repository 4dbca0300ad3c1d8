// Package microdump builds and writes Breakpad microdumps: compact text crash
// reports meant for a device log or a captured stderr stream.
//
// A report looks like:
//
//	-----BEGIN BREAKPAD MICRODUMP-----
//	V product:version
//	O L x86_64
//	T 00003039 0000303a
//	R 0000000b 00000001 0000000000000000
//	C 0000000000000000 ...
//	M 0000000000001000 000000000000002a 0000000000001000 33221100554477668899aabbccddeeff0 libfoo.so
//	-----END BREAKPAD MICRODUMP-----
//
// V, R and C lines are omitted when the data is not available. All numbers
// are fixed-width lowercase hex.
//
// Writer owns a fixed buffer sized for MaxModules modules. Create it before a
// crash; Writer.WriteMicrodump does not allocate, take locks or touch global
// state, and issues a single write of the whole report.
package microdump
