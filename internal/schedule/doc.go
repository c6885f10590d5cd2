// Package schedule models time-varying event rates for the synthetic
// generator.
//
// Three schedule sources:
//   - SquareWave: alternates between a high and a low rate on a fixed period.
//   - Expr: a user rate expression over elapsed time, compiled once and
//     evaluated per event.
//   - Scenario: a yaml document binding a time range, device, seed and one
//     of the above.
//
// Every input is validated up front and reported as a ValidationError;
// generation never starts on a schedule that can fail mid-run.
package schedule
