// Package render formats binned series for terminals and downstream tools.
package render

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/oj"

	"github.com/tickbin/tickbin/internal/capture"
	"github.com/tickbin/tickbin/internal/histogram"
)

// Renderer writes one series to w in a fixed format.
type Renderer func(w io.Writer, s *histogram.Series) error

// ForPath picks a renderer from the output path's extension: .csv and .json
// get machine formats, everything else the terminal table.
func ForPath(path string) Renderer {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV
	case ".json":
		return JSON
	default:
		return Text
	}
}

// barWidth is the glyph budget of the largest bucket in the text view.
const barWidth = 40

// Text writes an aligned bucket table with proportional bars, one line per
// bucket.
func Text(w io.Writer, s *histogram.Series) error {
	maxCount := 0
	for _, b := range s.Buckets {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Bin width: %s\n", s.BinWidth)
	for _, b := range s.Buckets {
		bar := ""
		if maxCount > 0 {
			bar = strings.Repeat("#", b.Count*barWidth/maxCount)
		}
		fmt.Fprintf(bw, "%s  %6d  %s\n", b.Start.Format(capture.TimestampLayout), b.Count, bar)
	}
	return bw.Flush()
}

// CSV writes timestamp,count rows with a header line.
func CSV(w io.Writer, s *histogram.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "count"}); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, b := range s.Buckets {
		row := []string{b.Start.Format(capture.TimestampLayout), strconv.Itoa(b.Count)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonBucket struct {
	Timestamp string `json:"timestamp"`
	Count     int    `json:"count"`
}

type jsonSeries struct {
	BinWidthSeconds float64      `json:"bin_width_seconds"`
	Total           int          `json:"total"`
	Buckets         []jsonBucket `json:"buckets"`
}

// JSON writes the series as one indented JSON document.
func JSON(w io.Writer, s *histogram.Series) error {
	doc := jsonSeries{
		BinWidthSeconds: s.BinWidth.Seconds(),
		Total:           s.Total(),
		Buckets:         make([]jsonBucket, 0, len(s.Buckets)),
	}
	for _, b := range s.Buckets {
		doc.Buckets = append(doc.Buckets, jsonBucket{
			Timestamp: b.Start.Format(capture.TimestampLayout),
			Count:     b.Count,
		})
	}

	data, err := oj.Marshal(&doc, 2)
	if err != nil {
		return fmt.Errorf("encoding series: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing series: %w", err)
	}
	return nil
}
