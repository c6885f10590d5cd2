package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tickbin/tickbin/internal/capture"
)

// GenerateConfig holds one generator invocation. Domain validation of the
// wave parameters happens downstream; this layer only parses tokens.
type GenerateConfig struct {
	Start     time.Time
	End       time.Time
	Frequency float64
	RateHigh  float64
	RateLow   float64
	DutyCycle float64
	RateExpr  string
	Scenario  string
	Output    string
	Device    string // empty when no --device flag; caller resolves the default
	Seed      uint64
	Seeded    bool
}

// ParseGenerateArgs parses the generator command line. Three forms:
//
//	tickgen [flags] <t-start> <t-end> <frequency> <rate-high> <rate-low> <duty-cycle>
//	tickgen --rate-expr <expr> [flags] <t-start> <t-end>
//	tickgen --scenario <file> [flags]
//
// Timestamps use the capture file layout (YYYY-MM-DD HH:MM:SS).
func ParseGenerateArgs(args []string, defs *Defaults) (*GenerateConfig, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no arguments provided")
	}
	programName := args[0]

	cfg := &GenerateConfig{}

	var positionals []string
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "--output", "-o":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--output requires a value")
			}
			cfg.Output = args[i+1]
			i++
		case "--device":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--device requires a value")
			}
			cfg.Device = args[i+1]
			i++
		case "--seed":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--seed requires a value")
			}
			seed, err := strconv.ParseUint(args[i+1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("--seed must be a non-negative integer, got %q", args[i+1])
			}
			cfg.Seed = seed
			cfg.Seeded = true
			i++
		case "--rate-expr":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--rate-expr requires a value")
			}
			cfg.RateExpr = args[i+1]
			i++
		case "--scenario":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--scenario requires a value")
			}
			cfg.Scenario = args[i+1]
			i++
		default:
			if strings.HasPrefix(args[i], "-") {
				return nil, fmt.Errorf("unknown flag %s\n%s", args[i], generateUsage(programName))
			}
			positionals = append(positionals, args[i])
		}
	}

	if cfg.Scenario != "" && cfg.RateExpr != "" {
		return nil, fmt.Errorf("--scenario and --rate-expr are mutually exclusive")
	}

	if err := bindGeneratePositionals(cfg, positionals, programName); err != nil {
		return nil, err
	}

	if cfg.Output == "" {
		cfg.Output = defs.Output
	}

	return cfg, nil
}

// bindGeneratePositionals maps the positional arguments onto cfg according
// to the invocation form.
func bindGeneratePositionals(cfg *GenerateConfig, positionals []string, programName string) error {
	var want int
	switch {
	case cfg.Scenario != "":
		want = 0
	case cfg.RateExpr != "":
		want = 2
	default:
		want = 6
	}
	if len(positionals) != want {
		if cfg.Scenario != "" {
			return fmt.Errorf("--scenario supplies the run parameters; unexpected argument %q", positionals[0])
		}
		return fmt.Errorf("%s", generateUsage(programName))
	}
	if cfg.Scenario != "" {
		return nil
	}

	start, err := time.Parse(capture.TimestampLayout, positionals[0])
	if err != nil {
		return fmt.Errorf("invalid t-start %q: want YYYY-MM-DD HH:MM:SS", positionals[0])
	}
	end, err := time.Parse(capture.TimestampLayout, positionals[1])
	if err != nil {
		return fmt.Errorf("invalid t-end %q: want YYYY-MM-DD HH:MM:SS", positionals[1])
	}
	cfg.Start = start
	cfg.End = end

	if cfg.RateExpr != "" {
		return nil
	}

	names := []string{"frequency", "rate-high", "rate-low", "duty-cycle"}
	values := make([]float64, len(names))
	for i, name := range names {
		v, err := strconv.ParseFloat(positionals[2+i], 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: want a number", name, positionals[2+i])
		}
		values[i] = v
	}
	cfg.Frequency = values[0]
	cfg.RateHigh = values[1]
	cfg.RateLow = values[2]
	cfg.DutyCycle = values[3]

	return nil
}

func generateUsage(programName string) string {
	return fmt.Sprintf(`Usage: %[1]s [flags] <t-start> <t-end> <frequency> <rate-high> <rate-low> <duty-cycle>
       %[1]s --rate-expr <expr> [flags] <t-start> <t-end>
       %[1]s --scenario <file> [flags]
Flags: --output/-o <path>  --device <name>  --seed <n>`, programName)
}
