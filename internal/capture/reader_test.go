package capture

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Header(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantStart  time.Time
		wantDevice string
	}{
		{
			name:       "timestamp with port marker",
			input:      "2024-01-01 00:00:00 - Port: DEV1\n",
			wantStart:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			wantDevice: "DEV1",
		},
		{
			name:       "timestamp without port marker",
			input:      "2024-01-01 00:00:00\n",
			wantStart:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			wantDevice: DefaultDevice,
		},
		{
			name:       "timestamp embedded mid-line",
			input:      "capture started 2023-06-15 12:30:45 on Port: usb-7\n",
			wantStart:  time.Date(2023, 6, 15, 12, 30, 45, 0, time.UTC),
			wantDevice: "usb-7",
		},
		{
			name:       "leading blank lines before header",
			input:      "\n\n  \n2024-01-01 00:00:00 - Port: DEV1\n",
			wantStart:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			wantDevice: "DEV1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream, report, err := Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.True(t, stream.Start.Equal(tt.wantStart), "Start = %v, want %v", stream.Start, tt.wantStart)
			assert.Equal(t, tt.wantDevice, stream.Device)
			assert.Empty(t, stream.Samples)
			assert.Equal(t, 0, report.Accepted)
			assert.Equal(t, 0, report.Skipped)
		})
	}
}

func TestParse_HeaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "only blank lines", input: "\n  \n\t\n"},
		{name: "first line has no timestamp", input: "Port: DEV1\n100\n200\n"},
		{name: "timestamp-shaped but invalid", input: "9999-99-99 99:99:99 - Port: DEV1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)

			var formatErr *FormatError
			assert.ErrorAs(t, err, &formatErr)
		})
	}
}

func TestParse_CounterLines(t *testing.T) {
	input := "2024-01-01 00:00:00 - Port: DEV1\n100\n250\n\n4294967295\n0\n"

	stream, report, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []uint32{100, 250, 4294967295, 0}, stream.Samples)
	assert.Equal(t, 4, report.Accepted)
	assert.Equal(t, 0, report.Skipped)
}

func TestParse_SkipsAndTalliesMalformedLines(t *testing.T) {
	lines := []string{
		"2024-01-01 00:00:00 - Port: DEV1",
		"100",
		"garbage",     // not a number
		"12.5",        // not an integer
		"200",
		"-5",          // negative, outside u32
		"4294967296",  // one past u32 max
		"300",
	}
	input := strings.Join(lines, "\n") + "\n"

	stream, report, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []uint32{100, 200, 300}, stream.Samples)
	assert.Equal(t, 3, report.Accepted)
	assert.Equal(t, 4, report.Skipped)
	assert.Equal(t, "garbage", report.FirstSkipped)
}

func TestParse_WhitespacePaddedCounters(t *testing.T) {
	input := "2024-01-01 00:00:00 - Port: DEV1\n  100  \n\t200\n"

	stream, report, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []uint32{100, 200}, stream.Samples)
	assert.Equal(t, 2, report.Accepted)
}

func TestFormatError_Message(t *testing.T) {
	withLine := &FormatError{Line: 3, Reason: "no start timestamp in header"}
	assert.Equal(t, "capture format: line 3: no start timestamp in header", withLine.Error())

	withoutLine := &FormatError{Reason: "no header line found"}
	assert.Equal(t, "capture format: no header line found", withoutLine.Error())
}
