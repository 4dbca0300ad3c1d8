//go:build !unix

package microdump

// WriteMicrodump always fails on platforms without raw descriptor writes.
func WriteMicrodump(int, *CrashContext, uintptr, MappingList) bool {
	return false
}

func writeAll(int, []byte) bool {
	return false
}
