package microdump

import "github.com/mrzor/microdump/internal/format"

const (
	beginMarker = "-----BEGIN BREAKPAD MICRODUMP-----\n"
	endMarker   = "-----END BREAKPAD MICRODUMP-----\n"
)

// writeHeader emits the V, O, T, R and C lines. Lines whose data is missing
// are skipped; the header itself never fails the report.
func (w *Writer) writeHeader(b *format.Builder, pid int, ctx *CrashContext) {
	if w.productLen > 0 {
		b.WriteString("V ")
		b.WriteBytes(w.product[:w.productLen])
		_ = b.WriteByte(':')
		if w.versionLen > 0 {
			b.WriteBytes(w.version[:w.versionLen])
		} else {
			b.WriteString("unknown")
		}
		_ = b.WriteByte('\n')
	}

	b.WriteString("O L ")
	b.WriteString(archName)
	_ = b.WriteByte('\n')

	//nolint:gosec // pid and tid are rendered as their 32-bit two's complement
	pid32, tid32 := uint32(pid), uint32(ctx.ThreadID())
	b.WriteString("T ")
	b.WriteHex32(pid32)
	_ = b.WriteByte(' ')
	b.WriteHex32(tid32)
	_ = b.WriteByte('\n')

	if si, ok := ctx.Signal(); ok {
		b.WriteString("R ")
		b.WriteHex32(uint32(si.Signo)) //nolint:gosec // keeps the bit pattern
		_ = b.WriteByte(' ')
		b.WriteHex32(uint32(si.Code)) //nolint:gosec // keeps the bit pattern
		_ = b.WriteByte(' ')
		b.WriteHex64(si.Addr)
		_ = b.WriteByte('\n')
	}

	if regs, ok := ctx.RegisterSnapshot(); ok {
		_ = b.WriteByte('C')
		for i := range regs {
			_ = b.WriteByte(' ')
			b.WriteHex64(regs[i])
		}
		_ = b.WriteByte('\n')
	}
}
