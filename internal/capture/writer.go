package capture

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Write emits s in the line-oriented capture format: one header line, then
// one counter per line. Output written here parses back to an equal stream.
func Write(w io.Writer, s *Stream) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "%s - Port: %s\n", s.Start.Format(TimestampLayout), s.Device); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, sample := range s.Samples {
		if _, err := bw.WriteString(strconv.FormatUint(uint64(sample), 10)); err != nil {
			return fmt.Errorf("writing sample: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing sample: %w", err)
		}
	}

	return bw.Flush()
}

// Save writes s to path, replacing any existing file.
func Save(path string, s *Stream) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
