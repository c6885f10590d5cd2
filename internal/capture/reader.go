package capture

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	timestampPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`)
	devicePattern    = regexp.MustCompile(`Port:\s*(\S+)`)
)

// Parse reads a capture from r. The first non-empty line must be a header
// containing a start timestamp; a missing or unreadable timestamp is fatal.
// Counter lines that fail to parse as decimal 32-bit values are skipped and
// tallied in the returned ParseReport.
func Parse(r io.Reader) (*Stream, *ParseReport, error) {
	scanner := bufio.NewScanner(r)

	stream := &Stream{}
	report := &ParseReport{}
	headerSeen := false
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !headerSeen {
			start, device, err := parseHeader(line, lineNo)
			if err != nil {
				return nil, nil, err
			}
			stream.Start = start
			stream.Device = device
			headerSeen = true
			continue
		}

		counter, err := strconv.ParseUint(line, 10, 32)
		if err != nil {
			report.Skipped++
			if report.Skipped == 1 {
				report.FirstSkipped = line
			}
			continue
		}
		stream.Samples = append(stream.Samples, uint32(counter))
		report.Accepted++
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading capture: %w", err)
	}
	if !headerSeen {
		return nil, nil, &FormatError{Reason: "no header line found"}
	}

	return stream, report, nil
}

// Load reads the capture at path, decompressing it first when the file
// starts with a known compression signature.
func Load(path string) (*Stream, *ParseReport, error) {
	rc, err := openDecompressing(path)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()

	return Parse(rc)
}

// parseHeader extracts the start timestamp and device label from a header
// line. The timestamp may sit anywhere in the line; the device defaults to
// DefaultDevice when no Port marker is present.
func parseHeader(line string, lineNo int) (time.Time, string, error) {
	raw := timestampPattern.FindString(line)
	if raw == "" {
		return time.Time{}, "", &FormatError{Line: lineNo, Reason: "no start timestamp in header"}
	}

	start, err := time.Parse(TimestampLayout, raw)
	if err != nil {
		return time.Time{}, "", &FormatError{Line: lineNo, Reason: fmt.Sprintf("bad start timestamp %q", raw)}
	}

	device := DefaultDevice
	if m := devicePattern.FindStringSubmatch(line); m != nil {
		device = m[1]
	}

	return start, device, nil
}
