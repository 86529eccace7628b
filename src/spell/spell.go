package spell

import "strings"

// OutputMode selects how a spell's output is delivered.
type OutputMode int

const (
	OutputNone OutputMode = iota
	OutputClipboard
	OutputPreview
	OutputPaste
)

func (m OutputMode) String() string {
	switch m {
	case OutputNone:
		return "none"
	case OutputClipboard:
		return "clipboard"
	case OutputPreview:
		return "preview"
	case OutputPaste:
		return "paste"
	default:
		return "unknown"
	}
}

// ParseOutputMode maps a collection index value to an OutputMode.
// Unknown or empty values fall back to paste, matching the index default.
func ParseOutputMode(s string) OutputMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return OutputNone
	case "clipboard":
		return OutputClipboard
	case "preview":
		return OutputPreview
	default:
		return OutputPaste
	}
}

// Spell is one loaded trigger→command binding. Immutable once loaded;
// the registry replaces whole slices, never individual fields.
type Spell struct {
	Trigger     string
	Description string
	Dir         string // working directory for the entry command (the collection dir)
	Entry       string // shell command string
	OutputMode  OutputMode
	StreamMode  bool
}

// Info is the read-only picker/list projection of a spell.
type Info struct {
	Trigger     string
	Description string
}

// ResultMode tags an invocation outcome.
type ResultMode int

const (
	// ResultDone: output was delivered (or discarded); nothing more to show.
	ResultDone ResultMode = iota
	// ResultPreview: Content holds the full output for in-place display.
	ResultPreview
	// ResultStream: streaming started; chunks arrive out-of-band, followed
	// by exactly one stream-end signal.
	ResultStream
)

// Result is the dispatcher's report for one invocation.
type Result struct {
	Mode    ResultMode
	Content string
}
