package schedule

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tickbin/tickbin/internal/capture"
)

// Scenario binds a complete generator run: a time range, a device label, an
// optional seed and the rate schedule driving event arrivals.
type Scenario struct {
	Start    time.Time
	End      time.Time
	Device   string
	Seed     uint64
	Seeded   bool
	Schedule Schedule
}

// scenarioDoc is the raw yaml shape before resolution.
type scenarioDoc struct {
	Start    string      `yaml:"start"`
	End      string      `yaml:"end"`
	Device   string      `yaml:"device"`
	Seed     *uint64     `yaml:"seed"`
	Wave     *SquareWave `yaml:"wave"`
	RateExpr string      `yaml:"rate_expr"`
}

// LoadScenario reads and resolves the yaml scenario at path. Every field is
// validated here; a returned Scenario is ready to generate from.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario resolves a yaml scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var doc scenarioDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid scenario yaml: %w", err)
	}

	start, err := parseScenarioTime("start", doc.Start)
	if err != nil {
		return nil, err
	}
	end, err := parseScenarioTime("end", doc.End)
	if err != nil {
		return nil, err
	}
	if !end.After(start) {
		return nil, &ValidationError{Field: "end", Reason: "must be after start"}
	}

	sched, err := resolveSchedule(doc)
	if err != nil {
		return nil, err
	}

	sc := &Scenario{
		Start:    start,
		End:      end,
		Device:   doc.Device,
		Schedule: sched,
	}
	if doc.Seed != nil {
		sc.Seed = *doc.Seed
		sc.Seeded = true
	}
	return sc, nil
}

func parseScenarioTime(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, &ValidationError{Field: field, Reason: "required"}
	}
	ts, err := time.Parse(capture.TimestampLayout, raw)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Reason: fmt.Sprintf("want %q layout, got %q", capture.TimestampLayout, raw)}
	}
	return ts, nil
}

func resolveSchedule(doc scenarioDoc) (Schedule, error) {
	switch {
	case doc.Wave != nil && doc.RateExpr != "":
		return nil, &ValidationError{Field: "wave", Reason: "wave and rate_expr are mutually exclusive"}
	case doc.Wave != nil:
		if err := doc.Wave.Validate(); err != nil {
			return nil, err
		}
		return *doc.Wave, nil
	case doc.RateExpr != "":
		return NewExpr(doc.RateExpr)
	default:
		return nil, &ValidationError{Field: "wave", Reason: "one of wave or rate_expr is required"}
	}
}
