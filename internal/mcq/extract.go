package mcq

import (
	"regexp"
	"strings"
)

// LineKind is the role a single trimmed line plays inside a question block.
type LineKind int

const (
	LineText LineKind = iota
	LineOption
	LineAnswer
	LineSolution
)

func (k LineKind) String() string {
	switch k {
	case LineOption:
		return "option"
	case LineAnswer:
		return "answer"
	case LineSolution:
		return "solution"
	default:
		return "text"
	}
}

var (
	// A.  A)  (A)  a.  a)  (a)
	optionMarker   = regexp.MustCompile(`^(?:\(?[A-Ea-e]\)|[A-Ea-e][.)])\s*`)
	answerKeyword  = regexp.MustCompile(`(?i)^answer\s*[:\-]?\s*`)
	solutionPrefix = regexp.MustCompile(`(?i)^solution\s*[:\-]?\s*`)
)

// Classify reports what kind of line s is. Checks run in priority order:
// option, answer, solution, then plain text.
func Classify(s string) LineKind {
	switch {
	case optionMarker.MatchString(s):
		return LineOption
	case len(s) >= len("answer") && strings.EqualFold(s[:len("answer")], "answer"):
		return LineAnswer
	case len(s) >= len("solution") && strings.EqualFold(s[:len("solution")], "solution"):
		return LineSolution
	default:
		return LineText
	}
}

// blockState accumulates one block line by line. feed never mutates the
// receiver's slices, so any intermediate state stays valid.
type blockState struct {
	stem         []string
	options      []string
	answer       string
	answerSeen   bool
	solutionMode bool
	solution     []string
}

func (st blockState) feed(line string) blockState {
	switch Classify(line) {
	case LineOption:
		st.options = with(st.options, optionMarker.ReplaceAllString(line, ""))
	case LineAnswer:
		if !st.answerSeen {
			st.answer = NormalizeAnswer(answerKeyword.ReplaceAllString(line, ""))
			st.answerSeen = true
		}
	case LineSolution:
		st.solutionMode = true
		st.solution = with(st.solution, solutionPrefix.ReplaceAllString(line, ""))
	default:
		if st.solutionMode {
			st.solution = with(st.solution, line)
		} else {
			st.stem = with(st.stem, line)
		}
	}
	return st
}

func (st blockState) record(join JoinMode) (Record, bool) {
	stem := CleanText(strings.Join(st.stem, join.sep()))
	if stem == "" {
		return Record{}, false
	}
	opts := make([]string, 0, max(len(st.options), OptionSlots))
	opts = append(opts, st.options...)
	for len(opts) < OptionSlots {
		opts = append(opts, NoOption)
	}
	return Record{
		Stem:          stem,
		Options:       opts,
		Choices:       len(st.options),
		Answer:        st.answer,
		Solution:      CleanText(strings.Join(st.solution, join.sep())),
		PositiveMarks: PositiveMarks,
		NegativeMarks: NegativeMarks,
	}, true
}

func with(s []string, v string) []string {
	return append(s[:len(s):len(s)], v)
}

// Parser turns free-form MCQ text into Records. The zero value joins lines
// with newlines. A Parser holds no mutable state and may be shared.
type Parser struct {
	Join JoinMode
}

func NewParser(join JoinMode) *Parser { return &Parser{Join: join} }

var defaultParser = NewParser(JoinLines)

// Extract parses one question block. ok is false when the block has no
// question text (only options, answer or solution lines).
func (p *Parser) Extract(block string) (rec Record, ok bool) {
	var st blockState
	for _, raw := range strings.Split(block, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		st = st.feed(line)
	}
	return st.record(p.Join)
}

// Parse segments text and extracts a Record from every block that has a stem.
// Output order follows the input.
func (p *Parser) Parse(text string) []Record {
	blocks := Segment(text)
	out := make([]Record, 0, len(blocks))
	for _, b := range blocks {
		if rec, ok := p.Extract(b); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Parse runs the default newline-preserving parser.
func Parse(text string) []Record { return defaultParser.Parse(text) }
