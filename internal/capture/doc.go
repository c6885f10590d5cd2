// Package capture models on-disk counter captures: a wall-clock start
// timestamp, a device label and the ordered 32-bit microsecond counter
// samples recorded for that device.
//
// The file format is line oriented. The first non-empty line is the header;
// it carries the start timestamp (located anywhere in the line) and an
// optional "Port: <device>" marker. Every following non-empty line holds one
// decimal counter value. Lines that fail to parse are skipped, preserving
// lenient ingestion, but each skip is tallied in a ParseReport so data loss
// stays observable.
//
// Load transparently decompresses gzip, bzip2 and xz captures, detected by
// their leading magic bytes.
package capture
