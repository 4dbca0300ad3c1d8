package procmaps

import (
	"fmt"

	"github.com/mrzor/microdump/internal/microdump"
	"github.com/mrzor/microdump/internal/moduleid"
)

// Options configures a Collector.
type Options struct {
	// Filter is an expr-lang expression; empty means DefaultFilter.
	Filter string
	// NoMerge keeps split library segments as separate modules.
	NoMerge bool
	// Cache is shared between collectors; nil creates a private one.
	Cache *IDCache
	// Identify derives the identifier of a mapped file. Nil means
	// moduleid.FromELF.
	Identify func(path string) (moduleid.ID, error)
}

// Collector turns a process's maps into a microdump.MappingList.
type Collector struct {
	filter   *Filter
	merge    bool
	cache    *IDCache
	identify func(string) (moduleid.ID, error)
	procRoot string
}

// NewCollector compiles the filter and prepares a collector.
func NewCollector(opts Options) (*Collector, error) {
	filter, err := NewFilter(opts.Filter)
	if err != nil {
		return nil, err
	}

	c := &Collector{
		filter:   filter,
		merge:    !opts.NoMerge,
		cache:    opts.Cache,
		identify: opts.Identify,
		procRoot: "/proc",
	}
	if c.cache == nil {
		c.cache = NewIDCache()
	}
	if c.identify == nil {
		c.identify = moduleid.FromELF
	}
	return c, nil
}

// Result is the outcome of a collection.
type Result struct {
	Mappings microdump.MappingList
	// Issues are non-fatal problems: unidentifiable modules (reported with a
	// zero identifier), filter errors and dropped modules.
	Issues []string
	// Total is the number of maps lines before merging and filtering.
	Total int
}

// Collect reads /proc/<pid>/maps and builds the mapping list for pid.
func (c *Collector) Collect(pid int) (*Result, error) {
	maps, err := ReadMaps(pid)
	if err != nil {
		return nil, err
	}
	return c.Build(pid, maps), nil
}

// Build turns already parsed maps into a mapping list.
func (c *Collector) Build(pid int, maps []Mapping) *Result {
	res := &Result{Total: len(maps)}

	if c.merge {
		maps = Merge(maps)
	}

	kept, errs := c.filter.Apply(maps)
	for _, err := range errs {
		res.Issues = append(res.Issues, err.Error())
	}

	if len(kept) > microdump.MaxModules {
		res.Issues = append(res.Issues, fmt.Sprintf("%d modules exceed the report limit, dropping the last %d",
			len(kept), len(kept)-microdump.MaxModules))
		kept = kept[:microdump.MaxModules]
	}

	res.Mappings = make(microdump.MappingList, 0, len(kept))
	for i := range kept {
		m := &kept[i]
		id, err := c.moduleID(pid, m)
		if err != nil {
			res.Issues = append(res.Issues, fmt.Sprintf("%s: %v", m.Path, err))
		}
		if len(m.Name()) > microdump.MaxNameLen-1 {
			res.Issues = append(res.Issues, fmt.Sprintf("%s: name truncated", m.Path))
		}
		res.Mappings = append(res.Mappings,
			microdump.NewMappingEntry(m.Name(), m.Start, m.Size(), m.Offset, id))
	}

	return res
}

// moduleID identifies the file behind m. Deleted files are read through
// /proc/<pid>/map_files, which still references the mapped inode. Those
// entries exist per kernel region, so a merged mapping is looked up by its
// first region.
func (c *Collector) moduleID(pid int, m *Mapping) (moduleid.ID, error) {
	if !m.IsFile() {
		return moduleid.ID{}, nil
	}
	if m.Deleted {
		path := fmt.Sprintf("%s/%d/map_files/%x-%x", c.procRoot, pid, m.Start, m.RegionEnd())
		return c.identify(path)
	}
	return c.cache.GetOrCompute(m.Path, c.identify)
}
