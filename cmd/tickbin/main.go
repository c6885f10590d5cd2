// tickbin reconstructs event arrival times from rollover-prone 32-bit
// microsecond counter captures and bins them into a fixed-width histogram.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tickbin/tickbin/internal/capture"
	"github.com/tickbin/tickbin/internal/config"
	"github.com/tickbin/tickbin/internal/histogram"
	"github.com/tickbin/tickbin/internal/render"
	"github.com/tickbin/tickbin/internal/report"
	"github.com/tickbin/tickbin/internal/rollover"
	"github.com/tickbin/tickbin/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
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

// parseCapture loads one capture file, recording the line tallies on the
// stage span.
func parseCapture(ctx context.Context, tracer trace.Tracer, path string) (*capture.Stream, *capture.ParseReport, error) {
	_, span := tracer.Start(ctx, "tickbin.parse")
	defer span.End()

	stream, parseReport, err := capture.Load(path)
	if err != nil {
		return nil, nil, err
	}

	span.SetAttributes(
		attribute.String("capture.source", path),
		attribute.String("capture.device", stream.Device),
		attribute.Int("capture.lines.accepted", parseReport.Accepted),
		attribute.Int("capture.lines.skipped", parseReport.Skipped),
	)

	return stream, parseReport, nil
}

// resolveDeltas reconstructs inter-event times from the raw counter samples.
func resolveDeltas(ctx context.Context, tracer trace.Tracer, stream *capture.Stream) []time.Duration {
	_, span := tracer.Start(ctx, "tickbin.resolve")
	defer span.End()

	deltas := rollover.Resolve(stream.Samples)

	span.SetAttributes(
		attribute.Int("resolver.samples", len(stream.Samples)),
		attribute.Int("resolver.deltas", len(deltas)),
	)

	return deltas
}

// binDeltas aggregates the deltas into the fixed-width series. A nil series
// with ErrInsufficientData means the stream was too short to bin.
func binDeltas(ctx context.Context, tracer trace.Tracer, start time.Time, deltas []time.Duration, binWidth time.Duration) (*histogram.Series, error) {
	_, span := tracer.Start(ctx, "tickbin.bin")
	defer span.End()

	series, err := histogram.Build(start, deltas, binWidth)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Float64("histogram.bin_width_seconds", binWidth.Seconds()),
		attribute.Int("histogram.buckets", len(series.Buckets)),
		attribute.Int("histogram.events", series.Total()),
	)

	return series, nil
}

// renderSeries writes the histogram to the configured target: a file whose
// extension picks the format, or the terminal table on stdout.
func renderSeries(ctx context.Context, tracer trace.Tracer, cfg *config.AnalyzeConfig, series *histogram.Series) error {
	_, span := tracer.Start(ctx, "tickbin.render")
	defer span.End()

	if cfg.Output == "" {
		span.SetAttributes(attribute.String("render.target", "stdout"))
		return render.Text(os.Stdout, series)
	}

	span.SetAttributes(attribute.String("render.target", cfg.Output))

	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := render.ForPath(cfg.Output)(f, series); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("Histogram saved to %s\n", cfg.Output)
	return nil
}

// writeReport persists the JSON run report and stamps its ID on the root
// span so exported traces and saved reports cross-reference.
func writeReport(cfg *config.AnalyzeConfig, stream *capture.Stream, parseReport *capture.ParseReport, series *histogram.Series, root trace.Span) error {
	run := report.New(cfg.DataFile, stream, parseReport, series)
	if err := run.Save(cfg.Report); err != nil {
		return err
	}

	root.SetAttributes(attribute.String("report.id", run.ID))
	fmt.Printf("Report written to: %s\n", cfg.Report)
	return nil
}

func run() error {
	defs, err := config.ParseDefaults()
	if err != nil {
		return err
	}

	cfg, err := config.ParseAnalyzeArgs(os.Args, defs)
	if err != nil {
		return err
	}

	ctx := context.Background()
	tracer, cleanupTelemetry, err := setupTelemetry(ctx)
	if err != nil {
		return err
	}
	defer cleanupTelemetry()

	ctx, root := tracer.Start(ctx, "tickbin.analyze")
	defer root.End()

	stream, parseReport, err := parseCapture(ctx, tracer, cfg.DataFile)
	if err != nil {
		return err
	}

	fmt.Printf("Device: %s\n", stream.Device)
	fmt.Printf("Start time: %s\n", stream.Start.Format(capture.TimestampLayout))
	fmt.Printf("Number of data points: %d\n", len(stream.Samples))
	if parseReport.Skipped > 0 {
		log.Printf("Skipped %d malformed line(s), first: %q", parseReport.Skipped, parseReport.FirstSkipped)
	}

	deltas := resolveDeltas(ctx, tracer, stream)

	series, err := binDeltas(ctx, tracer, stream.Start, deltas, cfg.BinWidth)
	switch {
	case errors.Is(err, histogram.ErrInsufficientData):
		// A short capture is a normal outcome, not a failure.
		fmt.Println("Not enough data points to create histogram")
	case err != nil:
		return err
	default:
		if err := renderSeries(ctx, tracer, cfg, series); err != nil {
			return err
		}
	}

	if cfg.Report != "" {
		if err := writeReport(cfg, stream, parseReport, series, root); err != nil {
			return err
		}
	}

	return nil
}
