package format

import (
	"strconv"
	"time"
)

// Millis renders d as milliseconds with one decimal place (e.g., "1234.5").
func Millis(d time.Duration) string {
	ms := float64(d) / float64(time.Millisecond)
	return strconv.FormatFloat(ms, 'f', 1, 64)
}

// Duration renders d rounded for humans: "850ms", "12.4s", "3m05s".
func Duration(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return strconv.FormatFloat(d.Seconds(), 'f', 1, 64) + "s"
	default:
		d = d.Round(time.Second)
		m := int64(d / time.Minute)
		sec := int64((d % time.Minute) / time.Second)
		return strconv.FormatInt(m, 10) + "m" + pad2(sec) + "s"
	}
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
