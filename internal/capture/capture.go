package capture

import (
	"fmt"
	"time"
)

const (
	// TimestampLayout is the wall-clock format used in capture headers.
	TimestampLayout = "2006-01-02 15:04:05"

	// DefaultDevice labels streams whose header has no Port marker.
	DefaultDevice = "Unknown"
)

// Stream is one parsed capture. Samples keep their file order; values are
// raw counter readings and may wrap, so ordering is by arrival, not value.
type Stream struct {
	Start   time.Time
	Device  string
	Samples []uint32
}

// ParseReport tallies per-line outcomes of a parse pass. Skipped lines are
// dropped from the stream but never lost from the accounting.
type ParseReport struct {
	Accepted     int
	Skipped      int
	FirstSkipped string
}

// FormatError reports a capture whose header cannot be understood. Counter
// lines never produce a FormatError; they are skipped and tallied instead.
type FormatError struct {
	Line   int
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("capture format: line %d: %s", e.Line, e.Reason)
	}
	return "capture format: " + e.Reason
}
