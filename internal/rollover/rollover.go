package rollover

import "time"

// MaxInterval is the longest real gap between two consecutive samples that
// the mod-2^32 arithmetic can represent. Gaps at or above this wrap more
// than once and come back as a smaller delta with no error signal.
const MaxInterval = time.Duration(1<<32) * time.Microsecond

// Delta returns the elapsed microseconds between two consecutive counter
// samples as (cur - prev) mod 2^32. Native uint32 subtraction performs the
// modular reduction, so the wrapped case (cur < prev) and the plain case
// (cur >= prev) need no distinction.
func Delta(prev, cur uint32) uint32 {
	return cur - prev
}

// Elapsed returns Delta scaled to a time.Duration with microsecond
// resolution.
func Elapsed(prev, cur uint32) time.Duration {
	return time.Duration(Delta(prev, cur)) * time.Microsecond
}

// Advance moves a counter forward by micros microseconds, wrapping modulo
// 2^32. It is the exact inverse of Delta: Delta(c, Advance(c, m)) == m for
// any m, which is what lets synthetic streams round-trip through the
// resolver.
func Advance(counter uint32, micros uint32) uint32 {
	return counter + micros
}

// Resolve converts an ordered sequence of raw counter samples into the
// sequence of elapsed-time deltas between consecutive pairs. For n samples
// it returns exactly n-1 deltas; for fewer than two samples it returns nil,
// which downstream aggregation reports as insufficient data.
func Resolve(samples []uint32) []time.Duration {
	if len(samples) < 2 {
		return nil
	}

	deltas := make([]time.Duration, 0, len(samples)-1)
	prev := samples[0]
	for _, cur := range samples[1:] {
		deltas = append(deltas, Elapsed(prev, cur))
		prev = cur
	}
	return deltas
}
