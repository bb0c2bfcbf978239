// Package types provides shared formatting helpers for the mediasort
// archiver. The byte formatter reproduces the display convention the
// manifest history view has always used (base-1024 units, two-decimal
// rounding with trailing zeros dropped).
package types

import (
	"fmt"
	"math"
	"strconv"
)

// byteUnits are the display units for FormatBytes, in ascending order.
var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatBytes formats a byte count for display.
//
// Examples:
//   - FormatBytes(0) returns "0 Bytes"
//   - FormatBytes(1536) returns "1.5 KB"
//   - FormatBytes(1048576) returns "1 MB"
func FormatBytes(bytes int64) string {
	if bytes == 0 {
		return "0 Bytes"
	}

	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(byteUnits) {
		i = len(byteUnits) - 1
	}

	value := float64(bytes) / math.Pow(1024, float64(i))
	value = math.Round(value*100) / 100

	return strconv.FormatFloat(value, 'f', -1, 64) + " " + byteUnits[i]
}

// FormatDuration formats a duration in seconds as H:MM:SS, or M:SS when
// under an hour. Negative or zero durations render as "Unknown".
func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return "Unknown"
	}

	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
