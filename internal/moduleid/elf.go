package moduleid

import (
	"debug/elf"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	noteTypeGNUBuildID = 3
	textHashPageSize   = 4096
	// maxNoteSize bounds a note section or segment read from a mapped file.
	maxNoteSize = 64 << 10
)

// ErrNoIdentifier is returned when a binary has neither a build id note nor a
// .text section to hash.
var ErrNoIdentifier = errors.New("no build id or text section")

// FromBuildID converts a raw build id of any length into an ID. Shorter ids
// are zero padded, longer ids are truncated.
func FromBuildID(buildID []byte) ID {
	var id ID
	copy(id[:], buildID)
	return id
}

// FromELF opens the ELF file at path and derives its module identifier from
// the GNU build id note, falling back to a hash of the first page of .text.
func FromELF(path string) (ID, error) {
	f, err := elf.Open(path)
	if err != nil {
		return ID{}, fmt.Errorf("opening ELF %s: %w", path, err)
	}
	defer func() {
		_ = f.Close() //nolint:errcheck // Read-only file, defer cleanup
	}()

	return FromELFFile(f)
}

// FromELFFile is FromELF for an already opened file.
func FromELFFile(f *elf.File) (ID, error) {
	buildID, err := findBuildID(f)
	if err != nil {
		return ID{}, err
	}
	if len(buildID) > 0 {
		return FromBuildID(buildID), nil
	}

	text := f.Section(".text")
	if text == nil || text.Type == elf.SHT_NOBITS {
		return ID{}, ErrNoIdentifier
	}
	return hashText(text.Open())
}

// findBuildID returns the descriptor of the first NT_GNU_BUILD_ID note, or nil
// if the file carries none.
func findBuildID(f *elf.File) ([]byte, error) {
	for _, sect := range f.Sections {
		if sect.Type != elf.SHT_NOTE {
			continue
		}
		if sect.Size > maxNoteSize {
			return nil, fmt.Errorf("note section %s too large: %d bytes", sect.Name, sect.Size)
		}
		data, err := sect.Data()
		if err != nil {
			return nil, fmt.Errorf("reading note section %s: %w", sect.Name, err)
		}
		if id := parseBuildIDNote(data, f.ByteOrder); id != nil {
			return id, nil
		}
	}

	// Stripped section headers: fall back to the program headers.
	for _, prog := range f.Progs {
		if prog.Type != elf.PT_NOTE {
			continue
		}
		if prog.Filesz > maxNoteSize {
			return nil, fmt.Errorf("note segment too large: %d bytes", prog.Filesz)
		}
		data := make([]byte, prog.Filesz)
		if _, err := io.ReadFull(prog.Open(), data); err != nil {
			return nil, fmt.Errorf("reading note segment: %w", err)
		}
		if id := parseBuildIDNote(data, f.ByteOrder); id != nil {
			return id, nil
		}
	}
	return nil, nil
}

// parseBuildIDNote walks a sequence of ELF notes and returns the GNU build id
// descriptor, or nil.
func parseBuildIDNote(data []byte, order binary.ByteOrder) []byte {
	for len(data) >= 12 {
		namesz := int(order.Uint32(data[0:4]))
		descsz := int(order.Uint32(data[4:8]))
		typ := order.Uint32(data[8:12])
		data = data[12:]

		nameEnd := align4(namesz)
		descEnd := nameEnd + align4(descsz)
		if namesz < 0 || descsz < 0 || nameEnd > len(data) || descEnd > len(data) {
			return nil
		}

		name := data[:namesz]
		if typ == noteTypeGNUBuildID && string(name) == "GNU\x00" && descsz > 0 {
			return data[nameEnd : nameEnd+descsz]
		}
		data = data[descEnd:]
	}
	return nil
}

// hashText XORs the first page of r into a 16-byte identifier.
func hashText(r io.Reader) (ID, error) {
	var page [textHashPageSize]byte
	n, err := io.ReadFull(r, page[:])
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return ID{}, fmt.Errorf("reading .text: %w", err)
	}
	if n == 0 {
		return ID{}, ErrNoIdentifier
	}

	var id ID
	for i := 0; i < n; i++ {
		id[i%Size] ^= page[i]
	}
	return id, nil
}

func align4(n int) int {
	return (n + 3) &^ 3
}
