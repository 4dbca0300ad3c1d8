package microdump

import (
	"github.com/mrzor/microdump/internal/format"
	"github.com/mrzor/microdump/internal/moduleid"
)

const (
	// MaxModules is the largest mapping list a Writer can report.
	MaxModules = 1024

	// MaxProductLen bounds the product and version strings of the V line.
	MaxProductLen = 64

	hexFieldLen   = 16
	moduleLineLen = len("M ") + 3*(hexFieldLen+1) + moduleid.DebugIDLen + 1 + (MaxNameLen - 1) + 1
	headerLen     = len("V ") + 2*MaxProductLen + len(":\n") +
		len("O L ") + len(archName) + 1 +
		len("T ") + 8 + 1 + 8 + 1 +
		len("R ") + 8 + 1 + 8 + 1 + hexFieldLen + 1 +
		len("C") + NumRegisters*(hexFieldLen+1) + 1

	// MaxReportSize is the capacity of a Writer's buffer: the worst case of
	// a full header and MaxModules lines with maximum length names.
	MaxReportSize = len(beginMarker) + headerLen + MaxModules*moduleLineLen + len(endMarker)
)

// Options configures optional report content.
type Options struct {
	// Product and Version fill the V line. The line is omitted when Product
	// is empty. Both are truncated to MaxProductLen-1 bytes.
	Product string
	Version string
}

// Writer renders microdumps into a buffer reserved at construction time and
// writes them to a file descriptor. It is not safe for concurrent use.
type Writer struct {
	fd int

	product    [MaxProductLen]byte
	productLen int
	version    [MaxProductLen]byte
	versionLen int

	b   format.Builder
	buf [MaxReportSize]byte
}

// NewWriter reserves a report buffer for writing to fd. Call it before a
// crash happens; WriteMicrodump itself never allocates.
func NewWriter(fd int, opts Options) *Writer {
	w := &Writer{fd: fd}
	w.productLen = format.CopyName(w.product[:], opts.Product)
	w.versionLen = format.CopyName(w.version[:], opts.Version)
	w.b = format.NewBuilder(w.buf[:])
	return w
}

// Render builds the report without writing it. The returned slice aliases the
// Writer's buffer and is valid until the next call. It returns false when ctx
// is nil, ctxSize is not ContextSize, there are more than MaxModules
// mappings, or the report did not fit.
func (w *Writer) Render(pid int, ctx *CrashContext, ctxSize uintptr, mappings MappingList) ([]byte, bool) {
	if ctx == nil || ctxSize != ContextSize || len(mappings) > MaxModules {
		return nil, false
	}

	b := &w.b
	b.Reset()
	b.WriteString(beginMarker)
	w.writeHeader(b, pid, ctx)
	writeModules(b, mappings)
	b.WriteString(endMarker)

	if b.Overflowed() {
		return nil, false
	}
	return b.Bytes(), true
}

// WriteMicrodump renders the report for the crashed process pid and writes it
// to the Writer's descriptor in a single write. Nothing is written when the
// input is invalid. Interrupted writes are retried; any other write error
// returns false.
func (w *Writer) WriteMicrodump(pid int, ctx *CrashContext, ctxSize uintptr, mappings MappingList) bool {
	report, ok := w.Render(pid, ctx, ctxSize, mappings)
	if !ok {
		return false
	}
	return writeAll(w.fd, report)
}
