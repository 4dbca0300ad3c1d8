//go:build unix

package microdump

import (
	"errors"

	"golang.org/x/sys/unix"
)

// WriteMicrodump writes a microdump for pid to standard error. It allocates a
// Writer on each call; crash handlers should hold a Writer from NewWriter
// instead.
func WriteMicrodump(pid int, ctx *CrashContext, ctxSize uintptr, mappings MappingList) bool {
	return NewWriter(unix.Stderr, Options{}).WriteMicrodump(pid, ctx, ctxSize, mappings)
}

// sysWrite is replaced in tests to inject partial and interrupted writes.
var sysWrite = unix.Write

// writeAll pushes p to fd, retrying on EINTR and continuing after short
// writes. EPIPE and every other error end the write.
func writeAll(fd int, p []byte) bool {
	for len(p) > 0 {
		n, err := sysWrite(fd, p)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil || n <= 0 {
			return false
		}
		p = p[n:]
	}
	return true
}
