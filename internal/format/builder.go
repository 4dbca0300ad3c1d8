package format

// Builder appends text into a fixed-capacity slice supplied by the caller.
//
// It never grows the slice. A write that does not fit is dropped whole and
// the builder is marked as overflowed; later writes are still attempted so
// callers only need to check Overflowed once at the end.
type Builder struct {
	buf      []byte
	n        int
	overflow bool
}

// NewBuilder returns a Builder writing into buf.
func NewBuilder(buf []byte) Builder {
	return Builder{buf: buf}
}

// Reset discards the written content and the overflow flag.
func (b *Builder) Reset() {
	b.n = 0
	b.overflow = false
}

// Len returns the number of bytes written so far.
func (b *Builder) Len() int { return b.n }

// Cap returns the fixed capacity of the underlying buffer.
func (b *Builder) Cap() int { return len(b.buf) }

// Overflowed reports whether any write was dropped for lack of space.
func (b *Builder) Overflowed() bool { return b.overflow }

// Bytes returns the written content. The slice aliases the builder's buffer.
func (b *Builder) Bytes() []byte { return b.buf[:b.n] }

func (b *Builder) reserve(n int) []byte {
	if n > len(b.buf)-b.n {
		b.overflow = true
		return nil
	}
	p := b.buf[b.n : b.n+n]
	b.n += n
	return p
}

// WriteByte appends a single byte.
func (b *Builder) WriteByte(c byte) error {
	if p := b.reserve(1); p != nil {
		p[0] = c
	}
	return nil
}

// WriteString appends s.
func (b *Builder) WriteString(s string) {
	if p := b.reserve(len(s)); p != nil {
		copy(p, s)
	}
}

// WriteBytes appends p.
func (b *Builder) WriteBytes(src []byte) {
	if p := b.reserve(len(src)); p != nil {
		copy(p, src)
	}
}

// WriteHex appends v as width zero-padded hex digits.
func (b *Builder) WriteHex(v uint64, width int) {
	if p := b.reserve(width); p != nil {
		PutHex(p, v, width)
	}
}

// WriteHex8 appends a byte as 2 hex digits.
func (b *Builder) WriteHex8(v uint8) { b.WriteHex(uint64(v), 2) }

// WriteHex16 appends a 16-bit value as 4 hex digits.
func (b *Builder) WriteHex16(v uint16) { b.WriteHex(uint64(v), 4) }

// WriteHex32 appends a 32-bit value as 8 hex digits.
func (b *Builder) WriteHex32(v uint32) { b.WriteHex(uint64(v), 8) }

// WriteHex64 appends a 64-bit value as 16 hex digits.
func (b *Builder) WriteHex64(v uint64) { b.WriteHex(v, 16) }

// Reserve hands out the next n bytes of the buffer for the caller to fill,
// or nil (and marks overflow) if they do not fit.
func (b *Builder) Reserve(n int) []byte { return b.reserve(n) }
