package printer_test

import (
	"testing"
	"time"

	"github.com/slok/dothis/internal/printer"
	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := map[string]struct {
		d        time.Duration
		expected string
	}{
		"Zero":            {d: 0, expected: "0m"},
		"Negative":        {d: -time.Hour, expected: "0m"},
		"Minutes":         {d: 45 * time.Minute, expected: "45m"},
		"Seconds dropped": {d: 59 * time.Second, expected: "0m"},
		"Hours and mins":  {d: 7*time.Hour + 59*time.Minute + 30*time.Second, expected: "7h 59m"},
		"Exact hours":     {d: 8 * time.Hour, expected: "8h 0m"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expected, printer.FormatDuration(test.d))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2026, 1, 30, 10, 30, 45, 0, time.UTC)
	assert.Equal(t, "2026-01-30 10:30", printer.FormatTimestamp(ts, time.UTC))

	berlin := time.FixedZone("CET", 3600)
	assert.Equal(t, "2026-01-30 11:30", printer.FormatTimestamp(ts, berlin))
}

func TestProgressBar(t *testing.T) {
	tests := map[string]struct {
		progress float64
		expected string
	}{
		"Empty":    {progress: 0, expected: "[..........]   0%"},
		"Half":     {progress: 0.5, expected: "[#####.....]  50%"},
		"Full":     {progress: 1, expected: "[##########] 100%"},
		"Overflow": {progress: 1.7, expected: "[##########] 100%"},
		"Negative":        {progress: -1, expected: "[..........]   0%"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expected, printer.ProgressBar(test.progress, 10))
		})
	}
}

func TestShortIDAndTruncate(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("4f1c1d4e", printer.ShortID("4f1c1d4e-8a57-4c2e-9a4b-2b0f1c9d7e11"))
	assert.Equal("abc", printer.ShortID("abc"))

	assert.Equal("hello", printer.Truncate("hello", 5))
	assert.Equal("hel…", printer.Truncate("hello", 4))
	assert.Equal("Grüß…", printer.Truncate("Grüße dich", 5))
	assert.Equal("…", printer.Truncate("hello", 1))
}
