// Package output presents a finished microdump run to its consumers.
//
// It does NOT render the report itself; the microdump package owns the
// crash-time text. Output works on a Report summary assembled by the CLI
// after the write:
//   - TextFormatter lists the modules a run would report (dry-run)
//   - OTELFormatter records the run as a "microdump.write" span
//
// Both implement ReportHandler so the CLI can fan a Report out to every
// configured consumer.
package output
