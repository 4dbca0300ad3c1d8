// Package config parses the microdump command line and environment.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"golang.org/x/sys/unix"
)

// ErrHelp is returned by ParseArgs when usage was requested.
var ErrHelp = errors.New("help requested")

// EnvConfig holds settings read from MICRODUMP_* environment variables.
type EnvConfig struct {
	Product  string `env:"MICRODUMP_PRODUCT"`
	Version  string `env:"MICRODUMP_VERSION"`
	Output   string `env:"MICRODUMP_OUTPUT" envDefault:"stderr"`
	Filter   string `env:"MICRODUMP_FILTER"`
	Merge    bool   `env:"MICRODUMP_MERGE" envDefault:"true"`
	LogLevel string `env:"MICRODUMP_LOG_LEVEL" envDefault:"info"`
}

// ParseEnvConfig reads EnvConfig from the environment.
func ParseEnvConfig() (*EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}

// Config holds the parsed command-line configuration
type Config struct {
	// PID is the process to report on; 0 means the tool itself.
	PID int
	// TID is the faulting thread; 0 means the same as PID.
	TID int
	// Signal, Code and Addr describe the fatal signal, if known.
	Signal int
	Code   int
	Addr   uint64
	// Output is "stderr", "stdout" or a file path.
	Output string
	// Filter is the module filter expression.
	Filter string
	// Merge joins split library segments.
	Merge bool
	// Product and Version fill the report's V line.
	Product string
	Version string
	// DryRun prints the module list instead of writing a report.
	DryRun   bool
	LogLevel string
}

// Usage returns the help text for programName.
func Usage(programName string) string {
	return fmt.Sprintf(`Usage: %s [options]

Writes a Breakpad microdump for a process to a diagnostic stream.

Options:
  -p, --pid PID               process to report on (default: self)
  -t, --tid TID               faulting thread (default: PID)
  -s, --signal SIG            fatal signal, by number or name (SIGSEGV, segv, 11)
      --code N                signal code (si_code)
      --addr HEX              faulting address
  -o, --output PATH           stderr, stdout or a file (env MICRODUMP_OUTPUT)
  -f, --filter EXPR           module filter expression (env MICRODUMP_FILTER)
      --no-merge              keep split library segments as separate modules
      --product NAME          product name for the V line (env MICRODUMP_PRODUCT)
      --product-version VER   product version for the V line (env MICRODUMP_VERSION)
  -n, --dry-run               list the modules that would be reported
  -l, --log-level LEVEL       log level (env MICRODUMP_LOG_LEVEL)
  -h, --help                  show this help
`, programName)
}

// ParseArgs parses command-line arguments on top of the environment. Flags
// given on the command line override their environment counterparts.
func ParseArgs(args []string) (*Config, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no arguments provided")
	}

	envCfg, err := ParseEnvConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Output:   envCfg.Output,
		Filter:   envCfg.Filter,
		Merge:    envCfg.Merge,
		Product:  envCfg.Product,
		Version:  envCfg.Version,
		LogLevel: envCfg.LogLevel,
	}

	for i := 1; i < len(args); i++ {
		arg := args[i]

		// value fetches the flag's argument, supporting --flag=value.
		value := func() (string, error) {
			if _, v, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "--") {
				return v, nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s requires a value", arg)
			}
			i++
			return args[i], nil
		}

		name := arg
		if strings.HasPrefix(arg, "--") {
			name, _, _ = strings.Cut(arg, "=")
		}

		switch name {
		case "-h", "--help":
			return nil, ErrHelp
		case "-p", "--pid":
			v, err := value()
			if err != nil {
				return nil, err
			}
			if cfg.PID, err = parseID(v); err != nil {
				return nil, fmt.Errorf("invalid pid %q: %w", v, err)
			}
		case "-t", "--tid":
			v, err := value()
			if err != nil {
				return nil, err
			}
			if cfg.TID, err = parseID(v); err != nil {
				return nil, fmt.Errorf("invalid tid %q: %w", v, err)
			}
		case "-s", "--signal":
			v, err := value()
			if err != nil {
				return nil, err
			}
			if cfg.Signal, err = ParseSignal(v); err != nil {
				return nil, err
			}
		case "--code":
			v, err := value()
			if err != nil {
				return nil, err
			}
			code, err := strconv.ParseInt(v, 0, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid signal code %q: %w", v, err)
			}
			cfg.Code = int(code)
		case "--addr":
			v, err := value()
			if err != nil {
				return nil, err
			}
			if cfg.Addr, err = strconv.ParseUint(strings.TrimPrefix(strings.ToLower(v), "0x"), 16, 64); err != nil {
				return nil, fmt.Errorf("invalid address %q: %w", v, err)
			}
		case "-o", "--output":
			v, err := value()
			if err != nil {
				return nil, err
			}
			cfg.Output = v
		case "-f", "--filter":
			v, err := value()
			if err != nil {
				return nil, err
			}
			cfg.Filter = v
		case "--no-merge":
			cfg.Merge = false
		case "--product":
			v, err := value()
			if err != nil {
				return nil, err
			}
			cfg.Product = v
		case "--product-version":
			v, err := value()
			if err != nil {
				return nil, err
			}
			cfg.Version = v
		case "-n", "--dry-run":
			cfg.DryRun = true
		case "-l", "--log-level":
			v, err := value()
			if err != nil {
				return nil, err
			}
			cfg.LogLevel = v
		default:
			return nil, fmt.Errorf("unknown argument %q\n%s", arg, Usage(args[0]))
		}
	}

	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
	if cfg.TID != 0 && cfg.PID == 0 {
		return nil, fmt.Errorf("--tid requires --pid")
	}

	return cfg, nil
}

// parseID parses a positive process or thread id.
func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return id, nil
}

// ParseSignal accepts a signal number or a name with or without the SIG
// prefix, in any case.
func ParseSignal(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 || n > 64 {
			return 0, fmt.Errorf("signal number %d out of range", n)
		}
		return n, nil
	}

	name := strings.ToUpper(s)
	if !strings.HasPrefix(name, "SIG") {
		name = "SIG" + name
	}
	sig := unix.SignalNum(name)
	if sig == 0 {
		return 0, fmt.Errorf("unknown signal %q", s)
	}
	return int(sig), nil
}
