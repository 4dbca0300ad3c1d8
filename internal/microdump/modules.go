package microdump

import (
	"github.com/mrzor/microdump/internal/format"
	"github.com/mrzor/microdump/internal/moduleid"
)

// writeModules emits one M line per entry, in list order.
func writeModules(b *format.Builder, mappings MappingList) {
	for i := range mappings {
		writeModuleLine(b, &mappings[i])
	}
}

// writeModuleLine emits
//
//	M <start> <offset> <size> <debug id> <name>
func writeModuleLine(b *format.Builder, e *MappingEntry) {
	b.WriteString("M ")
	b.WriteHex64(e.Info.StartAddr)
	_ = b.WriteByte(' ')
	b.WriteHex64(e.Info.Offset)
	_ = b.WriteByte(' ')
	b.WriteHex64(e.Info.Size)
	_ = b.WriteByte(' ')
	if p := b.Reserve(moduleid.DebugIDLen); p != nil {
		moduleid.Encode(p, &e.ID)
	}
	_ = b.WriteByte(' ')
	writeName(b, e.Info.NameBytes())
	_ = b.WriteByte('\n')
}

// writeName copies a module name, replacing control bytes so that a name can
// never start a new report line.
func writeName(b *format.Builder, name []byte) {
	if len(name) > MaxNameLen-1 {
		name = name[:MaxNameLen-1]
	}
	p := b.Reserve(len(name))
	if p == nil {
		return
	}
	for i, c := range name {
		if c < 0x20 || c == 0x7f {
			c = '?'
		}
		p[i] = c
	}
}
