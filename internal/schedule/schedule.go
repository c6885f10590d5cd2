package schedule

import (
	"fmt"
	"math"
)

// Schedule yields the target event rate in events per second at a given
// elapsed time in seconds. Implementations are pure and validated before
// first use; a validated schedule only yields finite rates.
type Schedule interface {
	RateAt(elapsed float64) float64
	Validate() error
}

// ValidationError reports a schedule or scenario field that fails its domain
// constraint. It is always raised before any generation or file output.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SquareWave alternates between two constant rates on a fixed period. Each
// period spends the first DutyCycle fraction at RateHigh and the remainder
// at RateLow.
type SquareWave struct {
	Frequency float64 `yaml:"frequency"`  // wave frequency in Hz
	RateHigh  float64 `yaml:"rate_high"`  // events/sec during the high phase
	RateLow   float64 `yaml:"rate_low"`   // events/sec during the low phase
	DutyCycle float64 `yaml:"duty_cycle"` // high-phase fraction, (0, 1) exclusive
}

// Validate checks every field against its domain constraint, reporting the
// first violation as a ValidationError.
func (w SquareWave) Validate() error {
	if !positiveFinite(w.Frequency) {
		return &ValidationError{Field: "frequency", Reason: "must be positive and finite"}
	}
	if !positiveFinite(w.RateHigh) {
		return &ValidationError{Field: "rate_high", Reason: "must be positive and finite"}
	}
	if !positiveFinite(w.RateLow) {
		return &ValidationError{Field: "rate_low", Reason: "must be positive and finite"}
	}
	// Written negated so a NaN duty cycle fails the range check.
	if !(w.DutyCycle > 0 && w.DutyCycle < 1) {
		return &ValidationError{Field: "duty_cycle", Reason: "must be between 0.0 and 1.0"}
	}
	return nil
}

// positiveFinite reports whether v is a usable rate or frequency. NaN fails
// every ordered comparison, so the threshold alone rejects it; infinity
// needs the explicit check.
func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// RateAt returns RateHigh while the wave phase sits inside the duty window
// and RateLow otherwise.
func (w SquareWave) RateAt(elapsed float64) float64 {
	period := 1.0 / w.Frequency
	phase := math.Mod(elapsed, period)
	if phase < period*w.DutyCycle {
		return w.RateHigh
	}
	return w.RateLow
}
