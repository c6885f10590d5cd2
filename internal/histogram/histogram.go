// Package histogram bins reconstructed event arrival times into contiguous
// fixed-width buckets anchored at a stream's start timestamp.
package histogram

import (
	"errors"
	"fmt"
	"time"
)

// ErrInsufficientData reports a stream too short to bin: fewer than two
// samples yield no deltas, so there is nothing to count. Callers treat this
// as a normal outcome, not a failure.
var ErrInsufficientData = errors.New("not enough data points to create histogram")

// Bucket is one fixed-width time interval and the number of events whose
// reconstructed arrival time fell inside it.
type Bucket struct {
	Start time.Time
	Count int
}

// Series is the binned view of one stream: contiguous equal-width buckets
// starting at the capture's start time.
type Series struct {
	BinWidth time.Duration
	Buckets  []Bucket
}

// Total returns the sum of all bucket counts. Binning never drops or
// duplicates events, so a series built from n-1 deltas totals n-1.
func (s *Series) Total() int {
	total := 0
	for _, b := range s.Buckets {
		total += b.Count
	}
	return total
}

// Build bins events into fixed-width buckets anchored at start. Each delta
// advances a cumulative clock and the event lands in the bucket covering its
// cumulative time. Buckets are half-open on the right except the last, which
// also admits an event landing exactly on the span's end.
func Build(start time.Time, deltas []time.Duration, binWidth time.Duration) (*Series, error) {
	if binWidth <= 0 {
		return nil, fmt.Errorf("bin width must be positive, got %v", binWidth)
	}
	if len(deltas) == 0 {
		return nil, ErrInsufficientData
	}

	var total time.Duration
	for _, d := range deltas {
		total += d
	}

	bucketCount := int((total + binWidth - 1) / binWidth)
	if bucketCount == 0 {
		// Every delta is zero. One bucket keeps the events countable.
		bucketCount = 1
	}

	buckets := make([]Bucket, bucketCount)
	for i := range buckets {
		buckets[i].Start = start.Add(time.Duration(i) * binWidth)
	}

	var cum time.Duration
	for _, d := range deltas {
		cum += d
		idx := int(cum / binWidth)
		if idx >= bucketCount {
			idx = bucketCount - 1
		}
		buckets[idx].Count++
	}

	return &Series{BinWidth: binWidth, Buckets: buckets}, nil
}
