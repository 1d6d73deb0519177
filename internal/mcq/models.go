package mcq

// Record is one parsed multiple-choice question, ready for rendering.
type Record struct {
	Stem          string   `json:"stem"`
	Options       []string `json:"options"` // at least OptionSlots entries, padded with NoOption
	Choices       int      `json:"choices"` // options found in the text; Options[Choices:] is padding
	Answer        string   `json:"answer"`  // "1".."5" when a letter key was recognised, raw text otherwise
	Solution      string   `json:"solution"`
	PositiveMarks string   `json:"positive_marks"`
	NegativeMarks string   `json:"negative_marks"`
}

const (
	// OptionSlots is the number of option rows every record carries.
	OptionSlots = 5
	// NoOption fills option slots the source text did not provide.
	NoOption = "None"

	PositiveMarks = "1"
	NegativeMarks = "0"
)

// JoinMode controls how consecutive stem/solution lines are combined.
type JoinMode string

const (
	JoinLines JoinMode = "lines" // keep line breaks, one paragraph per line downstream
	JoinSpace JoinMode = "space" // fold everything into a single paragraph
)

func (m JoinMode) sep() string {
	if m == JoinSpace {
		return " "
	}
	return "\n"
}

// ParseJoinMode maps a config value to a JoinMode. Unknown values fall back to JoinLines.
func ParseJoinMode(s string) JoinMode {
	switch JoinMode(s) {
	case JoinSpace:
		return JoinSpace
	default:
		return JoinLines
	}
}
