package reql

import (
	"strings"

	"golang.org/x/text/width"
)

// Blank returns one space per terminal column of s. East Asian wide and
// fullwidth runes count as two columns, everything else as one.
func Blank(s string) string {
	return strings.Repeat(" ", columns(s))
}

// Mark returns one caret per terminal column of s, counted as in Blank.
func Mark(s string) string {
	return strings.Repeat("^", columns(s))
}

// columns returns the number of terminal columns s occupies.
func columns(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// callTemplate holds the punctuation around a rendered call.
// The caret line uses a template of the same widths made of spaces.
type callTemplate struct {
	dot, open, sep, close string
}

var (
	plainCall  = callTemplate{dot: ".", open: "(", sep: ", ", close: ")"}
	shadowCall = callTemplate{dot: " ", open: " ", sep: "  ", close: " "}
)

// join renders recv.op(args...) or, without a receiver, op(args...).
func (t callTemplate) join(op, recv string, hasRecv bool, args []string) string {
	var b strings.Builder
	if hasRecv {
		b.WriteString(recv)
		b.WriteString(t.dot)
	}
	b.WriteString(op)
	b.WriteString(t.open)
	b.WriteString(strings.Join(args, t.sep))
	b.WriteString(t.close)
	return b.String()
}

// Format implements Term.
//
// An empty path marks the whole call. Otherwise the head frame selects the
// receiver (arg:0) or one argument (arg:N, 1-based), that term is formatted
// against the rest of the path, and every other part of the call is blanked.
// Frames that do not resolve to a part of this call leave the caret line blank.
func (c *Call) Format(bt Backtrace) Formatted {
	if len(bt) == 0 {
		s := c.String()
		return Formatted{Query: s, Carets: Mark(s)}
	}

	frame, rest, err := bt.Pop()
	if err != nil {
		return c.unresolved()
	}

	var recv Formatted
	if c.Receiver != nil {
		recv = blanked(c.Receiver)
	}
	args := make([]Formatted, len(c.Args))
	for i, a := range c.Args {
		args[i] = blanked(a)
	}

	switch {
	case frame.Index == 0:
		if c.Receiver == nil {
			return c.unresolved()
		}
		recv = c.Receiver.Format(rest)
	case frame.Index <= len(c.Args):
		args[frame.Index-1] = c.Args[frame.Index-1].Format(rest)
	default:
		return c.unresolved()
	}
	return c.assemble(recv, args)
}

// assemble splices the formatted receiver and arguments into one call,
// using the same template for both lines.
func (c *Call) assemble(recv Formatted, args []Formatted) Formatted {
	queries := make([]string, len(args))
	carets := make([]string, len(args))
	for i, a := range args {
		queries[i] = a.Query
		carets[i] = a.Carets
	}
	hasRecv := c.Receiver != nil
	return Formatted{
		Query:  plainCall.join(c.Op, recv.Query, hasRecv, queries),
		Carets: shadowCall.join(Blank(c.Op), recv.Carets, hasRecv, carets),
	}
}

// unresolved renders the call with no markers at all.
func (c *Call) unresolved() Formatted {
	return blanked(c)
}

func blanked(t Term) Formatted {
	s := t.String()
	return Formatted{Query: s, Carets: Blank(s)}
}
