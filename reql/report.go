package reql

import "strings"

// FormatServerError builds the report shown for a server-side failure:
// the message, the plain query text, and a caret line under the term the
// backtrace points at, each on its own tab-indented line.
func FormatServerError(message string, bt Backtrace, root Term) string {
	return NewReporter().Report(message, bt, root)
}

// reporterConfig holds configuration set via functional options.
type reporterConfig struct {
	indent    string
	marker    rune
	queryLine bool
}

// Option configures a Reporter during construction.
type Option func(*reporterConfig)

// WithIndent sets the prefix of the query and caret lines. Default: "\t".
func WithIndent(indent string) Option {
	return func(c *reporterConfig) {
		c.indent = indent
	}
}

// WithMarker replaces the caret used to underline the faulting term.
func WithMarker(r rune) Option {
	return func(c *reporterConfig) {
		c.marker = r
	}
}

// WithoutQueryLine omits the plain query line, leaving only the caret line
// under the message. Useful when the caller already printed the query.
func WithoutQueryLine() Option {
	return func(c *reporterConfig) {
		c.queryLine = false
	}
}

// Reporter assembles error reports. It holds no per-report state and is
// safe for concurrent use.
type Reporter struct {
	cfg reporterConfig
}

// NewReporter creates a Reporter. Without options it produces exactly the
// FormatServerError layout.
func NewReporter(opts ...Option) *Reporter {
	cfg := reporterConfig{
		indent:    "\t",
		marker:    '^',
		queryLine: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Reporter{cfg: cfg}
}

// Carets formats root against bt and returns the caret line with the
// configured marker.
func (r *Reporter) Carets(bt Backtrace, root Term) string {
	carets := root.Format(bt).Carets
	if r.cfg.marker != '^' {
		carets = strings.ReplaceAll(carets, "^", string(r.cfg.marker))
	}
	return carets
}

// Report returns the multi-line report for message, bt and root.
// Without a root there is nothing to point at and the message is returned as is.
func (r *Reporter) Report(message string, bt Backtrace, root Term) string {
	if root == nil {
		return message
	}
	var b strings.Builder
	b.WriteString(message)
	if r.cfg.queryLine {
		b.WriteString("\n")
		b.WriteString(r.cfg.indent)
		b.WriteString(root.String())
	}
	b.WriteString("\n")
	b.WriteString(r.cfg.indent)
	b.WriteString(r.Carets(bt, root))
	return b.String()
}

// Error wraps the report in an *Error of the given kind.
func (r *Reporter) Error(kind Kind, message string, bt Backtrace, root Term) *Error {
	if message == "" {
		message = kind.DefaultMessage()
	}
	return &Error{
		Kind:      kind,
		Message:   r.Report(message, bt, root),
		Backtrace: bt,
	}
}
