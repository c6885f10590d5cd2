package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Defaults carries the env-overridable settings the tools fall back on when
// the matching flag is absent.
type Defaults struct {
	BinWidth float64 `env:"TICKBIN_BIN_WIDTH" envDefault:"1.0"`
	Device   string  `env:"TICKGEN_DEVICE" envDefault:"TEST01"`
	Output   string  `env:"TICKGEN_OUTPUT" envDefault:"generated_data.txt"`
}

// ParseDefaults reads Defaults from the environment.
func ParseDefaults() (*Defaults, error) {
	var d Defaults
	if err := env.Parse(&d); err != nil {
		return nil, fmt.Errorf("parsing environment defaults: %w", err)
	}
	return &d, nil
}

// AnalyzeConfig holds one analyzer invocation.
type AnalyzeConfig struct {
	DataFile string
	BinWidth time.Duration
	Output   string // render target chosen by extension; empty means stdout
	Report   string // JSON run report path; empty disables
}

// ParseAnalyzeArgs parses the analyzer command line.
// Expected format: tickbin [--bin-width <seconds>] [--output <path>] [--report <path>] <data-file>
func ParseAnalyzeArgs(args []string, defs *Defaults) (*AnalyzeConfig, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no arguments provided")
	}
	programName := args[0]

	cfg := &AnalyzeConfig{BinWidth: secondsToDuration(defs.BinWidth)}

	var positionals []string
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "--bin-width":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--bin-width requires a value")
			}
			w, err := strconv.ParseFloat(args[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("--bin-width must be a number, got %q", args[i+1])
			}
			cfg.BinWidth = secondsToDuration(w)
			i++
		case "--output":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--output requires a value")
			}
			cfg.Output = args[i+1]
			i++
		case "--report":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--report requires a value")
			}
			cfg.Report = args[i+1]
			i++
		default:
			if strings.HasPrefix(args[i], "-") {
				return nil, fmt.Errorf("unknown flag %s\n%s", args[i], analyzeUsage(programName))
			}
			positionals = append(positionals, args[i])
		}
	}

	if len(positionals) != 1 {
		return nil, fmt.Errorf("%s", analyzeUsage(programName))
	}
	cfg.DataFile = positionals[0]

	if cfg.BinWidth <= 0 {
		return nil, fmt.Errorf("--bin-width must be positive")
	}

	return cfg, nil
}

func analyzeUsage(programName string) string {
	return fmt.Sprintf("Usage: %s [--bin-width <seconds>] [--output <path>] [--report <path>] <data-file>", programName)
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
