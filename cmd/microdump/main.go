// microdump writes a Breakpad microdump describing a process to a diagnostic stream.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mrzor/microdump/internal/config"
	"github.com/mrzor/microdump/internal/microdump"
	"github.com/mrzor/microdump/internal/otel"
	"github.com/mrzor/microdump/internal/output"
	"github.com/mrzor/microdump/internal/procmaps"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Version information injected by GoReleaser at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		log.WithError(err).Fatal("microdump failed")
	}
}

// setupLogging applies the configured level. Logs always go to stderr, the
// same stream the report defaults to, so they are emitted before the write.
func setupLogging(levelStr string) {
	log.SetOutput(os.Stderr)
	level, err := log.ParseLevel(levelStr)
	if err != nil {
		log.WithError(err).Warn("Can't parse log level, keeping info")
		return
	}
	log.SetLevel(level)
}

// setupOTEL returns a span handler when an OTLP endpoint is configured, nil
// otherwise, and a cleanup function that flushes the provider.
func setupOTEL(versionInfo string) (output.ReportHandler, func(), error) {
	otelCfg, err := config.ParseOTELConfig()
	if err != nil {
		return nil, nil, err
	}
	if !otelCfg.Enabled() {
		return nil, func() {}, nil
	}

	tp, err := otel.InitProvider(otelCfg, versionInfo)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize OTEL provider: %w", err)
	}

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otel.ShutdownProvider(tp, shutdownCtx); err != nil {
			log.WithError(err).Error("Error shutting down OTEL provider")
		}
	}

	return output.NewOTELFormatter(tp.Tracer("microdump")), cleanup, nil
}

// resolveTarget returns the process and faulting thread to report on. Without
// a pid the tool reports on itself.
func resolveTarget(cfg *config.Config) (pid, tid int) {
	if cfg.PID == 0 {
		return os.Getpid(), unix.Gettid()
	}
	if cfg.TID == 0 {
		return cfg.PID, cfg.PID
	}
	return cfg.PID, cfg.TID
}

// openOutput maps the output setting to a descriptor.
func openOutput(path string) (int, func(), error) {
	switch path {
	case "stderr", "-":
		return unix.Stderr, func() {}, nil
	case "stdout":
		return unix.Stdout, func() {}, nil
	}

	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC|unix.O_CLOEXEC, 0o644)
	if err != nil {
		return -1, nil, fmt.Errorf("opening output %s: %w", path, err)
	}
	closeFn := func() {
		if err := unix.Close(fd); err != nil {
			log.WithError(err).WithField("path", path).Error("Error closing output")
		}
	}
	return fd, closeFn, nil
}

// collect gathers the module list for pid and logs the collection issues.
func collect(cfg *config.Config, pid int) (*procmaps.Result, error) {
	collector, err := procmaps.NewCollector(procmaps.Options{
		Filter:  cfg.Filter,
		NoMerge: !cfg.Merge,
	})
	if err != nil {
		return nil, err
	}

	res, err := collector.Collect(pid)
	if err != nil {
		return nil, err
	}

	for _, issue := range res.Issues {
		log.WithField("pid", pid).Warn(issue)
	}
	log.WithFields(log.Fields{
		"pid":      pid,
		"maps":     res.Total,
		"modules":  len(res.Mappings),
		"filter":   cfg.Filter,
		"merge":    cfg.Merge,
		"warnings": len(res.Issues),
	}).Debug("Collected modules")

	return res, nil
}

func run() error {
	cfg, err := config.ParseArgs(os.Args)
	if errors.Is(err, config.ErrHelp) {
		fmt.Print(config.Usage(filepath.Base(os.Args[0])))
		return nil
	}
	if err != nil {
		return err
	}

	setupLogging(cfg.LogLevel)
	log.WithFields(log.Fields{
		"version": version,
		"commit":  commit,
		"built":   date,
	}).Debug("Starting microdump")

	versionInfo := fmt.Sprintf("%s (%s)", version, commit)
	spanHandler, cleanupOTEL, err := setupOTEL(versionInfo)
	if err != nil {
		return err
	}
	defer cleanupOTEL()

	pid, tid := resolveTarget(cfg)
	start := time.Now()

	res, err := collect(cfg, pid)
	if err != nil {
		return err
	}

	crash := &microdump.CrashContext{
		Tid: int32(tid), //nolint:gosec // thread ids fit in 32 bits
		Siginfo: microdump.SignalInfo{
			Signo: int32(cfg.Signal), //nolint:gosec // validated to 1..64
			Code:  int32(cfg.Code),   //nolint:gosec // parsed with bitSize 32
			Addr:  cfg.Addr,
		},
	}
	opts := microdump.Options{Product: cfg.Product, Version: cfg.Version}

	var handlers output.Handlers
	if spanHandler != nil {
		handlers = append(handlers, spanHandler)
	}

	report := &output.Report{
		PID:     pid,
		TID:     tid,
		Signal:  cfg.Signal,
		Code:    cfg.Code,
		Addr:    cfg.Addr,
		Modules: res.Mappings,
		Issues:  res.Issues,
		Start:   start,
	}

	if cfg.DryRun {
		handlers = append(handlers, output.NewTextFormatter(os.Stdout))

		w := microdump.NewWriter(-1, opts)
		rendered, ok := w.Render(pid, crash, microdump.ContextSize, res.Mappings)
		report.Bytes = len(rendered)
		report.OK = ok
	} else {
		fd, closeOutput, err := openOutput(cfg.Output)
		if err != nil {
			return err
		}
		defer closeOutput()

		w := microdump.NewWriter(fd, opts)
		if rendered, ok := w.Render(pid, crash, microdump.ContextSize, res.Mappings); ok {
			report.Bytes = len(rendered)
		}
		report.OK = w.WriteMicrodump(pid, crash, microdump.ContextSize, res.Mappings)
	}
	report.End = time.Now()

	if err := handlers.HandleReport(report); err != nil {
		log.WithError(err).Error("Error reporting microdump")
	}

	if !report.OK {
		return fmt.Errorf("microdump for pid %d not written (%d modules)", pid, len(res.Mappings))
	}

	log.WithFields(log.Fields{
		"pid":     pid,
		"modules": len(res.Mappings),
		"bytes":   report.Bytes,
		"output":  cfg.Output,
	}).Debug("Microdump written")

	return nil
}
