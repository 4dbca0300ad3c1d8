package procmaps

// Merge joins runs of adjacent mappings backed by the same file into a single
// module, the way the dynamic linker lays out one library as several
// segments. The merged mapping keeps the first segment's offset and is
// executable if any segment was. RegionEnd still reports where the first
// segment ends. The input is not modified.
func Merge(maps []Mapping) []Mapping {
	merged := make([]Mapping, 0, len(maps))
	for _, m := range maps {
		if n := len(merged); n > 0 {
			prev := &merged[n-1]
			if prev.IsFile() && prev.Path == m.Path && prev.Inode == m.Inode && prev.End == m.Start {
				if prev.firstEnd == 0 {
					prev.firstEnd = prev.End
				}
				prev.End = m.End
				prev.Read = prev.Read || m.Read
				prev.Write = prev.Write || m.Write
				prev.Exec = prev.Exec || m.Exec
				continue
			}
		}
		merged = append(merged, m)
	}
	return merged
}
