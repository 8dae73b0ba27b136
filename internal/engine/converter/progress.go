package converter

import (
	"strconv"
	"strings"
)

const progressPrefix = "PROGRESS"

// ParseProgressLine parses one converter stdout line of the form
// "PROGRESS <percent>[\t<label>]". ok is false for any other line.
func ParseProgressLine(line string) (percent int, label string, ok bool) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, progressPrefix+" ") {
		return 0, "", false
	}
	rest := strings.TrimLeft(line[len(progressPrefix)+1:], " ")
	value, label, _ := strings.Cut(rest, "\t")
	p, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, "", false
	}
	return p, label, true
}
