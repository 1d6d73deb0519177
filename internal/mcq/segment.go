package mcq

import (
	"regexp"
	"strings"
)

// questionMarker matches "1. ", "12.\t" ... at the start of a line.
var questionMarker = regexp.MustCompile(`(?m)^\d+\.\s+`)

// SegmentAll splits text at every question marker and returns the markers and
// the raw text that follows each one, unfiltered. Text before the first marker
// is dropped. For every i, markers[i]+blocks[i] concatenated in order rebuilds
// the input from the first marker onwards.
func SegmentAll(text string) (markers, blocks []string) {
	locs := questionMarker.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil, nil
	}
	markers = make([]string, 0, len(locs))
	blocks = make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		markers = append(markers, text[loc[0]:loc[1]])
		blocks = append(blocks, text[loc[1]:end])
	}
	return markers, blocks
}

// Segment returns the question blocks of text in textual order, with the
// numeric labels removed and whitespace-only blocks filtered out.
func Segment(text string) []string {
	_, raw := SegmentAll(text)
	out := raw[:0]
	for _, b := range raw {
		if strings.TrimSpace(b) == "" {
			continue
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
