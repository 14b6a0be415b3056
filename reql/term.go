package reql

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Term is a node of a built query: either a chained call or a terminal value.
type Term interface {
	// String renders the term as query text, without any markers.
	String() string

	// Format renders the term against the remaining backtrace path.
	// The returned Query always equals String().
	Format(bt Backtrace) Formatted
}

// Formatted is a rendered query fragment paired with its caret line.
// The caret line is as wide as the query text in terminal columns.
type Formatted struct {
	Query  string `json:"query"`
	Carets string `json:"carets"`
}

// Call is one operation in a chain of query-builder calls.
// A nil Receiver renders as a bare call: op(args).
type Call struct {
	Op       string
	Receiver Term
	Args     []Term
}

// NewCall creates a call of op on receiver with the given arguments.
func NewCall(receiver Term, op string, args ...Term) *Call {
	return &Call{Op: op, Receiver: receiver, Args: args}
}

// String implements Term.
func (c *Call) String() string {
	var recv string
	if c.Receiver != nil {
		recv = c.Receiver.String()
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return plainCall.join(c.Op, recv, c.Receiver != nil, args)
}

// Datum is a literal value. Strings are quoted, json.Number is rendered
// verbatim and composite values are JSON-encoded.
type Datum struct {
	Value any
}

// String implements Term.
func (d Datum) String() string {
	switch v := d.Value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		if isComplex(v) {
			b, err := json.Marshal(v)
			if err == nil {
				return string(b)
			}
		}
		return fmt.Sprintf("%v", v)
	}
}

// Format implements Term.
func (d Datum) Format(bt Backtrace) Formatted {
	return formatTerminal(d.String(), bt)
}

// Expr is an already rendered fragment, such as an identifier or an
// operator expression, rendered verbatim.
type Expr string

// String implements Term.
func (e Expr) String() string {
	return string(e)
}

// Format implements Term.
func (e Expr) Format(bt Backtrace) Formatted {
	return formatTerminal(string(e), bt)
}

// formatTerminal marks the whole text when the path ends here. Terminals
// have no structure, so any remaining frame cannot point inside them.
func formatTerminal(s string, bt Backtrace) Formatted {
	if len(bt) == 0 {
		return Formatted{Query: s, Carets: Mark(s)}
	}
	return Formatted{Query: s, Carets: Blank(s)}
}

// isComplex reports whether v reads better JSON-encoded than through %v.
func isComplex(v any) bool {
	switch v.(type) {
	case []any, []string, map[string]any:
		return true
	}
	s := fmt.Sprintf("%T", v)
	return strings.HasPrefix(s, "[]") || strings.HasPrefix(s, "map[")
}
