package moduleid

import "github.com/mrzor/microdump/internal/format"

// Size is the length of a module identifier in bytes.
const Size = 16

// DebugIDLen is the length of an encoded debug id: 32 hex digits plus the age digit.
const DebugIDLen = 2*Size + 1

// ID is a module's build/debug identifier.
type ID [Size]byte

// Encode writes the debug id for id into dst and returns DebugIDLen, or 0 if
// dst is too short. The age digit is always 0.
func Encode(dst []byte, id *ID) int {
	if len(dst) < DebugIDLen {
		return 0
	}
	p := dst
	// data1, data2 and data3 are stored little-endian.
	for i := 3; i >= 0; i-- {
		p = p[format.PutHex8(p, id[i]):]
	}
	for i := 5; i >= 4; i-- {
		p = p[format.PutHex8(p, id[i]):]
	}
	for i := 7; i >= 6; i-- {
		p = p[format.PutHex8(p, id[i]):]
	}
	for i := 8; i < Size; i++ {
		p = p[format.PutHex8(p, id[i]):]
	}
	p[0] = '0'
	return DebugIDLen
}

// DebugID returns the encoded debug id as a string.
func (id ID) DebugID() string {
	var buf [DebugIDLen]byte
	Encode(buf[:], &id)
	return string(buf[:])
}

// IsZero reports whether every byte of id is zero.
func (id ID) IsZero() bool {
	return id == ID{}
}
