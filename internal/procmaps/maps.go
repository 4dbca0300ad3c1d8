package procmaps

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const deletedSuffix = " (deleted)"

// ErrMalformedLine is returned for maps lines that cannot be parsed.
var ErrMalformedLine = errors.New("malformed maps line")

// Mapping is one line of /proc/<pid>/maps.
type Mapping struct {
	Start   uint64
	End     uint64
	Offset  uint64
	Read    bool
	Write   bool
	Exec    bool
	Private bool
	Dev     string
	Inode   uint64
	Path    string // empty for anonymous mappings
	Deleted bool   // the backing file was unlinked

	// firstEnd is the end of the first region of a merged mapping.
	firstEnd uint64
}

// Size returns the length of the mapping in bytes.
func (m *Mapping) Size() uint64 {
	return m.End - m.Start
}

// RegionEnd returns the end of the first kernel region of the mapping. It
// differs from End only after Merge joined several regions.
func (m *Mapping) RegionEnd() uint64 {
	if m.firstEnd != 0 {
		return m.firstEnd
	}
	return m.End
}

// IsFile reports whether the mapping is backed by a file on disk, as opposed
// to anonymous memory or a pseudo mapping like [stack] or [vdso].
func (m *Mapping) IsFile() bool {
	return strings.HasPrefix(m.Path, "/")
}

// Name returns the base name of the backing file.
func (m *Mapping) Name() string {
	if m.Path == "" {
		return ""
	}
	return filepath.Base(m.Path)
}

// ReadMaps reads and parses /proc/<pid>/maps.
func ReadMaps(pid int) ([]Mapping, error) {
	path := fmt.Sprintf("/proc/%d/maps", pid)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = file.Close() //nolint:errcheck // Read-only file, defer cleanup
	}()

	maps, err := ParseMaps(file)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return maps, nil
}

// ParseMaps parses the content of a maps file. Empty lines are skipped; any
// other line that does not parse is an error.
func ParseMaps(r io.Reader) ([]Mapping, error) {
	var maps []Mapping

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 64*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		m, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		maps = append(maps, m)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return maps, nil
}

// parseLine parses
//
//	00400000-0040b000 r-xp 00000000 08:01 1234          /bin/cat
func parseLine(line string) (Mapping, error) {
	parts := strings.SplitN(line, " ", 6)
	if len(parts) < 5 {
		return Mapping{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}

	var m Mapping

	start, end, ok := strings.Cut(parts[0], "-")
	if !ok {
		return Mapping{}, fmt.Errorf("%w: address range %q", ErrMalformedLine, parts[0])
	}
	var err error
	if m.Start, err = strconv.ParseUint(start, 16, 64); err != nil {
		return Mapping{}, fmt.Errorf("%w: start address: %v", ErrMalformedLine, err)
	}
	if m.End, err = strconv.ParseUint(end, 16, 64); err != nil {
		return Mapping{}, fmt.Errorf("%w: end address: %v", ErrMalformedLine, err)
	}
	if m.End < m.Start {
		return Mapping{}, fmt.Errorf("%w: end %#x before start %#x", ErrMalformedLine, m.End, m.Start)
	}

	perms := parts[1]
	if len(perms) != 4 {
		return Mapping{}, fmt.Errorf("%w: permissions %q", ErrMalformedLine, perms)
	}
	m.Read = perms[0] == 'r'
	m.Write = perms[1] == 'w'
	m.Exec = perms[2] == 'x'
	m.Private = perms[3] == 'p'

	if m.Offset, err = strconv.ParseUint(parts[2], 16, 64); err != nil {
		return Mapping{}, fmt.Errorf("%w: offset: %v", ErrMalformedLine, err)
	}
	m.Dev = parts[3]
	if m.Inode, err = strconv.ParseUint(parts[4], 10, 64); err != nil {
		return Mapping{}, fmt.Errorf("%w: inode: %v", ErrMalformedLine, err)
	}

	if len(parts) == 6 {
		m.Path = strings.TrimSpace(parts[5])
		if strings.HasSuffix(m.Path, deletedSuffix) {
			m.Path = strings.TrimSuffix(m.Path, deletedSuffix)
			m.Deleted = true
		}
	}

	return m, nil
}
