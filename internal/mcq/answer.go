package mcq

import (
	"regexp"
	"strings"
)

var (
	optionRef = regexp.MustCompile(`\(\d+\)`)

	letterKeys = map[string]string{
		"A": "1", "B": "2", "C": "3", "D": "4", "E": "5",
		"a": "1", "b": "2", "c": "3", "d": "4", "e": "5",
	}
)

// NormalizeAnswer turns an answer letter (A-E, any case) into its option
// number "1".."5". Embedded references such as "(2)" are removed first.
// Anything else is returned cleaned but otherwise untouched.
func NormalizeAnswer(s string) string {
	s = strings.TrimSpace(optionRef.ReplaceAllString(s, ""))
	if n, ok := letterKeys[s]; ok {
		return n
	}
	return s
}
