// Package synth generates synthetic counter streams from a rate schedule,
// approximating an inhomogeneous Poisson process by resampling the rate
// before every arrival.
package synth

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/tickbin/tickbin/internal/capture"
	"github.com/tickbin/tickbin/internal/rollover"
	"github.com/tickbin/tickbin/internal/schedule"
)

const (
	// JitterFrac scales the per-event normal jitter: one standard deviation
	// is this fraction of the schedule's target rate.
	JitterFrac = 0.1

	// MinRate floors the jittered rate in events per second, keeping the
	// next inter-event time finite and positive even when the jitter dips
	// to zero or the rate degenerates to NaN or infinity.
	MinRate = 0.1

	// maxStartCounter bounds the random initial counter value, inclusive.
	maxStartCounter = 1_000_000
)

// Generator produces synthetic counter streams whose arrivals follow a rate
// schedule. All randomness comes from the injected source, so one seed maps
// to exactly one stream.
type Generator struct {
	schedule schedule.Schedule
	rng      *rand.Rand
}

// New creates a Generator drawing from rng.
func New(sched schedule.Schedule, rng *rand.Rand) *Generator {
	return &Generator{schedule: sched, rng: rng}
}

// Generate produces the counter stream for one run. The time range and
// schedule are validated before any sampling; failures surface as
// *schedule.ValidationError with nothing generated.
func (g *Generator) Generate(start, end time.Time, device string) (*capture.Stream, error) {
	if g.schedule == nil {
		return nil, &schedule.ValidationError{Field: "schedule", Reason: "required"}
	}
	if !end.After(start) {
		return nil, &schedule.ValidationError{Field: "end", Reason: "must be after start"}
	}
	if err := g.schedule.Validate(); err != nil {
		return nil, err
	}

	samples, _ := g.sample(end.Sub(start).Seconds())

	return &capture.Stream{Start: start, Device: device, Samples: samples}, nil
}

// sample runs the arrival loop over a span of seconds, returning the counter
// readings and the true inter-event times they were derived from. Counter
// values advance by each interval truncated to whole microseconds; the only
// mutable state is the (elapsed, counter) pair threaded through the loop.
func (g *Generator) sample(duration float64) ([]uint32, []float64) {
	var (
		samples   []uint32
		intervals []float64
	)

	elapsed := 0.0
	counter := uint32(g.rng.IntN(maxStartCounter + 1))

	for {
		target := g.schedule.RateAt(elapsed)

		jittered := target + g.rng.NormFloat64()*target*JitterFrac
		// Written negated so NaN takes the floor; +Inf would zero the
		// exponential draw and never advance elapsed.
		if math.IsInf(jittered, 1) || !(jittered >= MinRate) {
			jittered = MinRate
		}

		interEvent := g.rng.ExpFloat64() / jittered
		elapsed += interEvent
		if elapsed >= duration {
			return samples, intervals
		}

		counter = rollover.Advance(counter, uint32(int64(interEvent*1e6)))
		samples = append(samples, counter)
		intervals = append(intervals, interEvent)
	}
}
