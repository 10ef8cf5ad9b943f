// internal/common/utils/timestamp.go

package utils

import (
	"fmt"
	"time"
)

// FormatTimestamp renders a creation time the way feeds display it:
// "now" under a minute, then minutes/hours/days, then the calendar date.
func FormatTimestamp(t time.Time) string {
	return formatTimestampAt(t, time.Now())
}

func formatTimestampAt(t, now time.Time) string {
	elapsed := now.Sub(t)

	switch {
	case elapsed < time.Minute:
		return "now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh", int(elapsed.Hours()))
	case elapsed < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(elapsed.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
