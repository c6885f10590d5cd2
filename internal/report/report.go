// Package report emits one JSON document per analysis run, making parse
// outcomes and binning results observable to downstream tooling.
package report

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/ohler55/ojg/oj"

	"github.com/tickbin/tickbin/internal/capture"
	"github.com/tickbin/tickbin/internal/histogram"
)

// Run records one analysis pass: where the data came from, how parsing went
// and what binning produced. Skipped lines never abort a run, so this
// document is where their loss becomes visible.
type Run struct {
	ID           string  `json:"id"`
	GeneratedAt  string  `json:"generated_at"`
	Source       string  `json:"source"`
	Device       string  `json:"device"`
	Start        string  `json:"start"`
	Samples      int     `json:"samples"`
	Accepted     int     `json:"accepted_lines"`
	Skipped      int     `json:"skipped_lines"`
	FirstSkipped string  `json:"first_skipped,omitempty"`
	Deltas       int     `json:"deltas"`
	BinWidth     float64 `json:"bin_width_seconds,omitempty"`
	Buckets      int     `json:"buckets,omitempty"`
	TotalEvents  int     `json:"total_events,omitempty"`
	Insufficient bool    `json:"insufficient_data,omitempty"`
}

// New assembles the document for one run over source. series may be nil when
// the stream was too short to bin.
func New(source string, stream *capture.Stream, rep *capture.ParseReport, series *histogram.Series) *Run {
	r := &Run{
		ID:           uuid.NewString(),
		GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
		Source:       source,
		Device:       stream.Device,
		Start:        stream.Start.Format(capture.TimestampLayout),
		Samples:      len(stream.Samples),
		Accepted:     rep.Accepted,
		Skipped:      rep.Skipped,
		FirstSkipped: rep.FirstSkipped,
	}
	if len(stream.Samples) > 1 {
		r.Deltas = len(stream.Samples) - 1
	}
	if series != nil {
		r.BinWidth = series.BinWidth.Seconds()
		r.Buckets = len(series.Buckets)
		r.TotalEvents = series.Total()
	} else {
		r.Insufficient = true
	}
	return r
}

// Save writes the document to path as indented JSON.
func (r *Run) Save(path string) error {
	data, err := oj.Marshal(r, 2)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
