package mcq

import (
	"regexp"
	"strings"
)

var (
	horizontalRun = regexp.MustCompile(`[ \t]+`)
	newlineRun    = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalises spacing while keeping line structure: carriage returns
// are dropped, runs of spaces/tabs become one space and 3+ newlines become a
// single blank line.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = horizontalRun.ReplaceAllString(s, " ")
	s = newlineRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
