package reql

import (
	"fmt"
	"strconv"
	"strings"
)

// Frame kinds understood by the formatter.
const (
	FrameArg = "arg"
)

// Legacy frame aliases still sent by older servers.
const (
	FrameLowerBound = "lowerbound"
	FrameUpperBound = "upperbound"
)

// Backtrace is the path from the query root down to the faulting term,
// one frame token per level. An empty Backtrace means "this term".
// Backtraces are passed by value; popping never affects the caller's slice.
type Backtrace []string

// Frame is a parsed backtrace token.
type Frame struct {
	Kind  string `json:"kind"`
	Index int    `json:"index"` // 0 is the receiver, 1..n the arguments
}

// String renders the frame in its wire form.
func (f Frame) String() string {
	return f.Kind + ":" + strconv.Itoa(f.Index)
}

// FrameError reports a backtrace token the formatter cannot resolve.
type FrameError struct {
	Token  string `json:"token"`
	Reason string `json:"reason"`
}

// Error implements the error interface for FrameError.
func (e *FrameError) Error() string {
	return fmt.Sprintf("invalid backtrace frame %q: %s", e.Token, e.Reason)
}

// Normalize maps the legacy aliases onto positional argument frames.
func Normalize(tok string) string {
	switch tok {
	case FrameLowerBound:
		return "arg:1"
	case FrameUpperBound:
		return "arg:2"
	}
	return tok
}

// ParseFrame normalizes tok and splits it into kind and index.
// Only "arg" frames with a non-negative integer index are accepted.
func ParseFrame(tok string) (Frame, error) {
	norm := Normalize(tok)
	kind, idx, ok := strings.Cut(norm, ":")
	if !ok {
		return Frame{}, &FrameError{Token: tok, Reason: "missing ':'"}
	}
	if kind != FrameArg {
		return Frame{}, &FrameError{Token: tok, Reason: fmt.Sprintf("unknown kind %q", kind)}
	}
	n, err := strconv.Atoi(idx)
	if err != nil {
		return Frame{}, &FrameError{Token: tok, Reason: "index is not an integer"}
	}
	if n < 0 {
		return Frame{}, &FrameError{Token: tok, Reason: "negative index"}
	}
	return Frame{Kind: kind, Index: n}, nil
}

// Pop parses the head frame and returns it with the remaining path.
// On an empty backtrace it returns a *FrameError.
func (bt Backtrace) Pop() (Frame, Backtrace, error) {
	if len(bt) == 0 {
		return Frame{}, nil, &FrameError{Reason: "empty backtrace"}
	}
	f, err := ParseFrame(bt[0])
	return f, bt[1:], err
}

// Validate parses every frame and returns the first failure.
// The formatter never needs this; callers use it to warn about paths
// that will only partially highlight.
func (bt Backtrace) Validate() error {
	for _, tok := range bt {
		if _, err := ParseFrame(tok); err != nil {
			return err
		}
	}
	return nil
}
