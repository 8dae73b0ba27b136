// Package format renders sizes and durations for log lines and the live view.
package format

import "strconv"

var byteUnits = []string{"KB", "MB", "GB", "TB"}

// HumanizeBytes converts a byte count into a human-readable string (e.g., "1.5 MB").
// Scene files are the usual input; anything past TB is reported in TB.
func HumanizeBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	v := float64(b) / unit
	exp := 0
	for v >= unit && exp < len(byteUnits)-1 {
		v /= unit
		exp++
	}
	return strconv.FormatFloat(v, 'f', 1, 64) + " " + byteUnits[exp]
}
