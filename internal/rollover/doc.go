// Package rollover reconstructs elapsed time from a free-running 32-bit
// microsecond counter.
//
// The counter wraps from its maximum value back to zero, so consecutive
// samples can appear numerically out of order even though they are in
// temporal order. Taking the difference modulo 2^32 recovers the true
// elapsed microseconds in both the wrapped and the non-wrapped case.
//
// Correctness depends on at most one wrap between consecutive samples:
// the real elapsed time must stay below MaxInterval (about 71 minutes
// 35 seconds). Past that bound the arithmetic silently yields a smaller
// delta; there is no way to detect the condition from the samples alone.
package rollover
