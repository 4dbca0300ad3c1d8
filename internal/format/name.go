package format

// CopyName copies at most len(dst)-1 bytes of src into dst and always
// NUL-terminates. Longer names are silently truncated. It returns the number
// of name bytes copied (excluding the terminator).
func CopyName(dst []byte, src string) int {
	if len(dst) == 0 {
		return 0
	}
	n := copy(dst[:len(dst)-1], src)
	dst[n] = 0
	return n
}

// CopyNameBytes is CopyName for a byte slice source.
func CopyNameBytes(dst []byte, src []byte) int {
	if len(dst) == 0 {
		return 0
	}
	n := copy(dst[:len(dst)-1], src)
	dst[n] = 0
	return n
}

// CString returns the prefix of b up to (not including) the first NUL byte.
// If b has no NUL, b is returned whole.
func CString(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}
