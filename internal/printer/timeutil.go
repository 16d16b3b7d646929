package printer

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration returns a compact duration.
// Examples: "0m", "45m", "7h 59m", "8h 0m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Minute)

	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	if hours == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// FormatTimestamp returns a formatted timestamp in loc, local time by default.
// Format: "2006-01-02 15:04".
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("2006-01-02 15:04")
}

// ProgressBar renders the progress fraction as a bar of width cells.
func ProgressBar(progress float64, width int) string {
	switch {
	case progress < 0:
		progress = 0
	case progress > 1:
		progress = 1
	}

	filled := int(progress * float64(width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]" + fmt.Sprintf(" %3d%%", int(progress*100))
}
