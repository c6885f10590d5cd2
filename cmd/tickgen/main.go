// tickgen synthesizes rollover-consistent counter captures from a rate
// schedule, for fixture generation and round-trip testing of the analyzer.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tickbin/tickbin/internal/capture"
	"github.com/tickbin/tickbin/internal/config"
	"github.com/tickbin/tickbin/internal/schedule"
	"github.com/tickbin/tickbin/internal/synth"
	"github.com/tickbin/tickbin/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// runParams is one fully resolved generator run, merged from flags, an
// optional scenario file and environment defaults.
type runParams struct {
	start  time.Time
	end    time.Time
	sched  schedule.Schedule
	device string
	output string
	seed   uint64
}

// resolveRun merges the parsed command line with scenario contents and
// defaults. Flags win over scenario fields, which win over defaults. An
// unseeded run draws a fresh seed so every stream is still attributable to
// exactly one (seed, schedule) pair.
func resolveRun(cfg *config.GenerateConfig, defs *config.Defaults) (*runParams, error) {
	p := &runParams{
		start:  cfg.Start,
		end:    cfg.End,
		device: cfg.Device,
		output: cfg.Output,
	}

	scenarioSeed := uint64(0)
	scenarioSeeded := false

	switch {
	case cfg.Scenario != "":
		sc, err := schedule.LoadScenario(cfg.Scenario)
		if err != nil {
			return nil, err
		}
		p.start = sc.Start
		p.end = sc.End
		p.sched = sc.Schedule
		if p.device == "" {
			p.device = sc.Device
		}
		scenarioSeed = sc.Seed
		scenarioSeeded = sc.Seeded

	case cfg.RateExpr != "":
		e, err := schedule.NewExpr(cfg.RateExpr)
		if err != nil {
			return nil, err
		}
		p.sched = e

	default:
		p.sched = schedule.SquareWave{
			Frequency: cfg.Frequency,
			RateHigh:  cfg.RateHigh,
			RateLow:   cfg.RateLow,
			DutyCycle: cfg.DutyCycle,
		}
	}

	if p.device == "" {
		p.device = defs.Device
	}

	switch {
	case cfg.Seeded:
		p.seed = cfg.Seed
	case scenarioSeeded:
		p.seed = scenarioSeed
	default:
		p.seed = rand.Uint64()
	}

	return p, nil
}

// setupTelemetry initializes the tracer and returns it with a cleanup
// function that flushes pending spans. Without an endpoint configured the
// tracer is a noop and cleanup returns immediately.
func setupTelemetry(ctx context.Context) (trace.Tracer, func(), error) {
	telCfg, err := config.ParseTelemetryConfig()
	if err != nil {
		return nil, nil, err
	}

	tracer, shutdown, err := telemetry.Init(ctx, telCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}

	return tracer, cleanup, nil
}

// generate validates the run and executes the sampling loop. Validation
// failures surface here, before any file is touched.
func generate(ctx context.Context, tracer trace.Tracer, p *runParams) (*capture.Stream, error) {
	_, span := tracer.Start(ctx, "tickgen.sample")
	defer span.End()

	rng := rand.New(rand.NewPCG(p.seed, p.seed))
	stream, err := synth.New(p.sched, rng).Generate(p.start, p.end, p.device)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("generator.device", p.device),
		attribute.Int("generator.samples", len(stream.Samples)),
		attribute.Float64("generator.span_seconds", p.end.Sub(p.start).Seconds()),
	)

	return stream, nil
}

// writeCapture saves the generated stream in the capture file format.
func writeCapture(ctx context.Context, tracer trace.Tracer, path string, stream *capture.Stream) error {
	_, span := tracer.Start(ctx, "tickgen.write")
	defer span.End()

	span.SetAttributes(attribute.String("capture.path", path))

	return capture.Save(path, stream)
}

// describeSchedule returns the user-facing summary lines for the schedule
// that drove a run.
func describeSchedule(sched schedule.Schedule) []string {
	switch s := sched.(type) {
	case schedule.SquareWave:
		return []string{
			fmt.Sprintf("Square wave: %g Hz, %.1f%% duty cycle", s.Frequency, s.DutyCycle*100),
			fmt.Sprintf("Rates: %g Hz (high) / %g Hz (low)", s.RateHigh, s.RateLow),
		}
	case *schedule.Expr:
		return []string{fmt.Sprintf("Rate expression: %s", s.Source())}
	default:
		return nil
	}
}

func run() error {
	defs, err := config.ParseDefaults()
	if err != nil {
		return err
	}

	cfg, err := config.ParseGenerateArgs(os.Args, defs)
	if err != nil {
		return err
	}

	p, err := resolveRun(cfg, defs)
	if err != nil {
		return err
	}

	ctx := context.Background()
	tracer, cleanupTelemetry, err := setupTelemetry(ctx)
	if err != nil {
		return err
	}
	defer cleanupTelemetry()

	ctx, root := tracer.Start(ctx, "tickgen.generate")
	defer root.End()

	root.SetAttributes(attribute.Int64("generator.seed", int64(p.seed)))

	stream, err := generate(ctx, tracer, p)
	if err != nil {
		return err
	}

	if err := writeCapture(ctx, tracer, p.output, stream); err != nil {
		return err
	}

	fmt.Printf("Generated %d data points\n", len(stream.Samples))
	fmt.Printf("Output written to: %s\n", p.output)
	for _, line := range describeSchedule(p.sched) {
		fmt.Println(line)
	}

	return nil
}
