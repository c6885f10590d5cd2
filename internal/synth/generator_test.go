package synth

import (
	"math"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickbin/tickbin/internal/capture"
	"github.com/tickbin/tickbin/internal/histogram"
	"github.com/tickbin/tickbin/internal/rollover"
	"github.com/tickbin/tickbin/internal/schedule"
)

func seededRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

var testWave = schedule.SquareWave{Frequency: 0.1, RateHigh: 50, RateLow: 5, DutyCycle: 0.5}

func TestGenerate_Deterministic(t *testing.T) {
	start := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	end := start.Add(time.Minute)

	first, err := New(testWave, seededRNG(42)).Generate(start, end, "TEST01")
	require.NoError(t, err)
	second, err := New(testWave, seededRNG(42)).Generate(start, end, "TEST01")
	require.NoError(t, err)

	assert.Equal(t, first.Samples, second.Samples, "same seed must reproduce the stream")
	require.NotEmpty(t, first.Samples)

	other, err := New(testWave, seededRNG(43)).Generate(start, end, "TEST01")
	require.NoError(t, err)
	assert.NotEqual(t, first.Samples, other.Samples, "different seeds should diverge")
}

func TestGenerate_StreamMetadata(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Second)

	stream, err := New(testWave, seededRNG(7)).Generate(start, end, "LAB03")
	require.NoError(t, err)

	assert.True(t, stream.Start.Equal(start))
	assert.Equal(t, "LAB03", stream.Device)
}

func TestGenerate_ValidationFailures(t *testing.T) {
	start := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		sched     schedule.Schedule
		start     time.Time
		end       time.Time
		wantField string
	}{
		{
			name:      "duty cycle above one",
			sched:     schedule.SquareWave{Frequency: 0.1, RateHigh: 50, RateLow: 5, DutyCycle: 1.5},
			start:     start,
			end:       start.Add(time.Minute),
			wantField: "duty_cycle",
		},
		{
			name:      "zero rate",
			sched:     schedule.SquareWave{Frequency: 0.1, RateHigh: 0, RateLow: 5, DutyCycle: 0.5},
			start:     start,
			end:       start.Add(time.Minute),
			wantField: "rate_high",
		},
		{
			name:      "end equals start",
			sched:     testWave,
			start:     start,
			end:       start,
			wantField: "end",
		},
		{
			name:      "end before start",
			sched:     testWave,
			start:     start,
			end:       start.Add(-time.Minute),
			wantField: "end",
		},
		{
			name:      "nil schedule",
			sched:     nil,
			start:     start,
			end:       start.Add(time.Minute),
			wantField: "schedule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream, err := New(tt.sched, seededRNG(1)).Generate(tt.start, tt.end, "TEST01")
			require.Error(t, err)
			assert.Nil(t, stream)

			var vErr *schedule.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestSample_RoundTripWithinTruncation(t *testing.T) {
	g := New(testWave, seededRNG(99))

	samples, intervals := g.sample(30.0)
	require.NotEmpty(t, samples)
	require.Len(t, intervals, len(samples))

	deltas := rollover.Resolve(samples)
	require.Len(t, deltas, len(samples)-1)

	// The first interval is absorbed into the unexposed initial counter;
	// every later one must survive the round trip to the microsecond.
	for i, d := range deltas {
		interval := intervals[i+1]
		assert.Equal(t, uint32(int64(interval*1e6)), uint32(d/time.Microsecond), "delta %d", i)
		assert.InDelta(t, interval, d.Seconds(), 1e-6, "delta %d", i)
	}

	// Recovering the initial counter from the first sample confirms the
	// starting value stayed inside its documented range.
	initial := rollover.Delta(uint32(int64(intervals[0]*1e6)), samples[0])
	assert.LessOrEqual(t, initial, uint32(maxStartCounter))
}

func TestGenerate_FileRoundTrip(t *testing.T) {
	// The full loop: generate, save in the capture format, load it back,
	// resolve and bin. The parsed stream must match the generated one
	// exactly and binning must conserve every event.
	start := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	end := start.Add(time.Minute)

	generated, err := New(testWave, seededRNG(21)).Generate(start, end, "TEST01")
	require.NoError(t, err)
	require.Greater(t, len(generated.Samples), 2)

	path := filepath.Join(t.TempDir(), "generated_data.txt")
	require.NoError(t, capture.Save(path, generated))

	loaded, report, err := capture.Load(path)
	require.NoError(t, err)
	assert.True(t, loaded.Start.Equal(generated.Start))
	assert.Equal(t, generated.Device, loaded.Device)
	assert.Equal(t, generated.Samples, loaded.Samples)
	assert.Equal(t, len(generated.Samples), report.Accepted)
	assert.Equal(t, 0, report.Skipped)

	deltas := rollover.Resolve(loaded.Samples)
	series, err := histogram.Build(loaded.Start, deltas, time.Second)
	require.NoError(t, err)
	assert.Equal(t, len(loaded.Samples)-1, series.Total())
}

func TestGenerate_RateModulation(t *testing.T) {
	// 0.05 Hz wave: 20s period, first half high. Rates far enough apart
	// that any high bucket should out-count any typical low bucket.
	wave := schedule.SquareWave{Frequency: 0.05, RateHigh: 50, RateLow: 2, DutyCycle: 0.5}
	start := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	end := start.Add(2 * time.Minute)

	stream, err := New(wave, seededRNG(11)).Generate(start, end, "TEST01")
	require.NoError(t, err)

	deltas := rollover.Resolve(stream.Samples)
	series, err := histogram.Build(start, deltas, time.Second)
	require.NoError(t, err)

	period := 1.0 / wave.Frequency
	var highSum, lowSum, highN, lowN float64

	// The trailing bucket may cover a partial second; leave it out.
	for _, b := range series.Buckets[:len(series.Buckets)-1] {
		offset := b.Start.Sub(start).Seconds()
		if math.Mod(offset, period) < period*wave.DutyCycle {
			highSum += float64(b.Count)
			highN++
		} else {
			lowSum += float64(b.Count)
			lowN++
		}
	}

	require.NotZero(t, highN)
	require.NotZero(t, lowN)

	meanHigh := highSum / highN
	meanLow := lowSum / lowN
	assert.Greater(t, meanHigh, 2*meanLow, "high-phase buckets should dominate (high %.1f, low %.1f)", meanHigh, meanLow)
}

func TestGenerate_EventCountTracksRate(t *testing.T) {
	// Constant 20 Hz for one minute: expect about 1200 events. The bound
	// is loose enough to absorb jitter but tight enough to catch a rate
	// computation that is off by half.
	flat := schedule.SquareWave{Frequency: 1, RateHigh: 20, RateLow: 20, DutyCycle: 0.5}
	start := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	end := start.Add(time.Minute)

	stream, err := New(flat, seededRNG(5)).Generate(start, end, "TEST01")
	require.NoError(t, err)

	n := len(stream.Samples)
	assert.Greater(t, n, 900, "got %d events", n)
	assert.Less(t, n, 1500, "got %d events", n)
}

func TestGenerate_TinySpan(t *testing.T) {
	// A span far shorter than the mean inter-event time yields few or no
	// events but never an error.
	slow := schedule.SquareWave{Frequency: 1, RateHigh: 0.2, RateLow: 0.2, DutyCycle: 0.5}
	start := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	end := start.Add(time.Millisecond)

	stream, err := New(slow, seededRNG(1)).Generate(start, end, "TEST01")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(stream.Samples), 1)
}

func TestGenerate_ExprScheduleWorks(t *testing.T) {
	e, err := schedule.NewExpr("periodic(t, 0.1) < 0.5 ? 30.0 : 5.0")
	require.NoError(t, err)

	start := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	end := start.Add(30 * time.Second)

	stream, err := New(e, seededRNG(3)).Generate(start, end, "TEST01")
	require.NoError(t, err)
	assert.NotEmpty(t, stream.Samples)
}

// constantSchedule hands the sampling loop a fixed rate while always passing
// validation, so degenerate values reach the floor inside the loop.
type constantSchedule struct{ rate float64 }

func (s constantSchedule) RateAt(float64) float64 { return s.rate }

func (constantSchedule) Validate() error { return nil }

func TestGenerate_NonFiniteRateFloored(t *testing.T) {
	start := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	end := start.Add(30 * time.Second)

	tests := []struct {
		name string
		rate float64
	}{
		{name: "NaN rate", rate: math.NaN()},
		{name: "infinite rate", rate: math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream, err := New(constantSchedule{rate: tt.rate}, seededRNG(17)).Generate(start, end, "TEST01")
			require.NoError(t, err)
			// Floored to MinRate, the 30s span averages three events; a
			// runaway count means the floor never engaged.
			assert.Less(t, len(stream.Samples), 60)
		})
	}
}
