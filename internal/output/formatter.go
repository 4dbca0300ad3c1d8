package output

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mrzor/microdump/internal/microdump"
)

// Report summarizes one microdump run.
type Report struct {
	PID     int
	TID     int
	Signal  int
	Code    int
	Addr    uint64
	Modules microdump.MappingList
	// Issues are non-fatal collection problems.
	Issues []string
	// Bytes is the size of the rendered report, 0 when nothing was rendered.
	Bytes int
	// OK reports whether the report was written (or rendered, in dry-run).
	OK    bool
	Start time.Time
	End   time.Time
}

// ReportHandler consumes a finished Report.
type ReportHandler interface {
	HandleReport(r *Report) error
}

// Handlers fans a report out to several handlers. Every handler runs; their
// errors are joined.
type Handlers []ReportHandler

// HandleReport implements ReportHandler.
func (hs Handlers) HandleReport(r *Report) error {
	var errs []error
	for _, h := range hs {
		if err := h.HandleReport(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// TextFormatter writes a human-readable module listing.
type TextFormatter struct {
	w io.Writer
}

// NewTextFormatter creates a TextFormatter writing to w.
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{w: w}
}

// HandleReport prints one line per module followed by any issues.
func (f *TextFormatter) HandleReport(r *Report) error {
	if _, err := fmt.Fprintf(f.w, "pid %d tid %d: %d modules, %d bytes\n", r.PID, r.TID, len(r.Modules), r.Bytes); err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}

	for i := range r.Modules {
		m := &r.Modules[i]
		_, err := fmt.Fprintf(f.w, "%016x-%016x %016x %s %s\n",
			m.Info.StartAddr, m.Info.StartAddr+m.Info.Size, m.Info.Offset,
			m.ID.DebugID(), m.Info.NameBytes())
		if err != nil {
			return fmt.Errorf("writing listing: %w", err)
		}
	}

	for _, issue := range r.Issues {
		if _, err := fmt.Fprintf(f.w, "warning: %s\n", issue); err != nil {
			return fmt.Errorf("writing listing: %w", err)
		}
	}
	return nil
}
