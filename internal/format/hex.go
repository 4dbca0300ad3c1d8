package format

const hexDigits = "0123456789abcdef"

// PutHex writes v as exactly width lowercase hex digits into dst, zero padded
// on the left. Digits above width are dropped. It returns the number of bytes
// written, or 0 if dst is shorter than width.
func PutHex(dst []byte, v uint64, width int) int {
	if width <= 0 || len(dst) < width {
		return 0
	}
	for i := width - 1; i >= 0; i-- {
		dst[i] = hexDigits[v&0xf]
		v >>= 4
	}
	return width
}

// PutHex8 writes a byte as 2 hex digits.
func PutHex8(dst []byte, v uint8) int { return PutHex(dst, uint64(v), 2) }

// PutHex16 writes a 16-bit value as 4 hex digits.
func PutHex16(dst []byte, v uint16) int { return PutHex(dst, uint64(v), 4) }

// PutHex32 writes a 32-bit value as 8 hex digits.
func PutHex32(dst []byte, v uint32) int { return PutHex(dst, uint64(v), 8) }

// PutHex64 writes a 64-bit value as 16 hex digits.
func PutHex64(dst []byte, v uint64) int { return PutHex(dst, v, 16) }
