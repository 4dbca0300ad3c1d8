// Package procmaps builds microdump mapping lists from /proc/<pid>/maps.
//
// It runs before a crash (or in a helper process that inspects a crashed
// one) and is free to allocate:
//   - ParseMaps / ReadMaps - parse the maps file into Mapping records
//   - Merge - join adjacent segments of the same file into one module
//   - Filter - select modules with an expr-lang expression
//   - IDCache - remember module identifiers per file path
//   - Collector - ties the above together and yields a microdump.MappingList
//
// IDCache is safe for concurrent use; Collector is not.
package procmaps
