package reql

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Kind classifies where a failure originated.
type Kind int

// Error kinds.
const (
	RuntimeError Kind = iota + 1 // the server failed while executing the query
	BrokenClient                 // the server could not decode what the client sent
	BadQuery                     // the query is ill-typed or ill-formed
	ClientError                  // failure detected on the client, no server verdict
)

// Error code constants, the stable wire form of a Kind.
const (
	ErrRuntime      = "RUNTIME_ERROR"
	ErrBrokenClient = "BROKEN_CLIENT"
	ErrBadQuery     = "BAD_QUERY"
	ErrClient       = "CLIENT_ERROR"
)

type kindInfo struct {
	code, name, message string
}

var kinds = map[Kind]kindInfo{
	RuntimeError: {ErrRuntime, "Runtime Error", "The RDB runtime experienced an error"},
	BrokenClient: {ErrBrokenClient, "Broken Client", "The client sent the server an incorrectly formatted message"},
	BadQuery:     {ErrBadQuery, "Bad Query", "This query contains type errors"},
	ClientError:  {ErrClient, "RDB Client Error", "The RDB client has experienced an error"},
}

// String returns the display name of the kind.
func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Code returns the stable code of the kind, or "" for an unknown kind.
func (k Kind) Code() string {
	return kinds[k].code
}

// DefaultMessage returns the message used when none is given.
func (k Kind) DefaultMessage() string {
	return kinds[k].message
}

// ParseKind resolves a code such as "BAD_QUERY" to its Kind.
func ParseKind(code string) (Kind, error) {
	for k, info := range kinds {
		if info.code == code {
			return k, nil
		}
	}
	return 0, errors.Errorf("unknown error kind %q", code)
}

// MarshalText encodes the kind as its code.
func (k Kind) MarshalText() ([]byte, error) {
	code := k.Code()
	if code == "" {
		return nil, errors.Errorf("unknown error kind %d", int(k))
	}
	return []byte(code), nil
}

// UnmarshalText decodes a kind from its code.
func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Error is a failure surfaced to the caller of the client library.
// It is JSON-serializable for use in tool output.
type Error struct {
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	Backtrace Backtrace `json:"backtrace,omitempty"`

	cause error
}

// New creates an error of the given kind. An empty msg selects the
// kind's default message.
func New(kind Kind, msg string) *Error {
	if msg == "" {
		msg = kind.DefaultMessage()
	}
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates a ClientError caused by err. An empty msg uses err's text,
// or the default ClientError message when err is nil.
func Wrap(err error, msg string) *Error {
	if msg == "" && err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = ClientError.DefaultMessage()
	}
	return &Error{Kind: ClientError, Message: msg, cause: err}
}

// Name returns the display name of the error's kind.
func (e *Error) Name() string {
	return e.Kind.String()
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Name() + ": " + e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// FormatError implements [errors.Formatter].
func (e *Error) FormatError(p errors.Printer) error {
	p.Print(e.Error())
	return e.cause
}

// IsKind reports whether any error in err's chain is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	if e.Kind == k {
		return true
	}
	return e.cause != nil && IsKind(e.cause, k)
}

// ParseError represents a syntax error found while parsing a query expression.
type ParseError struct {
	Message  string `json:"message"`
	Pos      Pos    `json:"pos"`
	Got      string `json:"got,omitempty"`
	Expected string `json:"expected,omitempty"`
}

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	if e.Got != "" && e.Expected != "" {
		return fmt.Sprintf("parse error at %d:%d: %s (got %q, expected %s)",
			e.Pos.Line, e.Pos.Column, e.Message, e.Got, e.Expected)
	}
	if e.Got != "" {
		return fmt.Sprintf("parse error at %d:%d: %s (got %q)",
			e.Pos.Line, e.Pos.Column, e.Message, e.Got)
	}
	return fmt.Sprintf("parse error at %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Pos represents a position in the input string.
type Pos struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}
