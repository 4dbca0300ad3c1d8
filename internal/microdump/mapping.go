package microdump

import (
	"github.com/mrzor/microdump/internal/format"
	"github.com/mrzor/microdump/internal/moduleid"
)

// MaxNameLen is the size of a MappingInfo name buffer, terminator included.
const MaxNameLen = 256

// MappingInfo describes one mapped module.
type MappingInfo struct {
	Name      [MaxNameLen]byte // NUL-terminated
	StartAddr uint64
	Size      uint64
	Offset    uint64
}

// SetName stores name, truncated to MaxNameLen-1 bytes.
func (m *MappingInfo) SetName(name string) {
	format.CopyName(m.Name[:], name)
}

// NameBytes returns the stored name without its terminator.
func (m *MappingInfo) NameBytes() []byte {
	return format.CString(m.Name[:])
}

// MappingEntry pairs a mapping with its module identifier.
type MappingEntry struct {
	Info MappingInfo
	ID   moduleid.ID
}

// MappingList is the ordered list of modules to report. Order is preserved
// in the output.
type MappingList []MappingEntry

// NewMappingEntry is a convenience constructor for callers building a list
// ahead of time.
func NewMappingEntry(name string, start, size, offset uint64, id moduleid.ID) MappingEntry {
	e := MappingEntry{ID: id}
	e.Info.StartAddr = start
	e.Info.Size = size
	e.Info.Offset = offset
	e.Info.SetName(name)
	return e
}
