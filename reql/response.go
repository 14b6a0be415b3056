package reql

import (
	"encoding/json"
	"io"

	"github.com/go-faster/errors"
)

// ResponseType is the status a server attaches to a response.
type ResponseType string

// Response types sent by the server.
const (
	SuccessEmpty   ResponseType = "SUCCESS_EMPTY"
	SuccessJSON    ResponseType = "SUCCESS_JSON"
	SuccessPartial ResponseType = "SUCCESS_PARTIAL"
	SuccessStream  ResponseType = "SUCCESS_STREAM"

	BrokenClientResponse ResponseType = "BROKEN_CLIENT"
	BadQueryResponse     ResponseType = "BAD_QUERY"
	RuntimeErrorResponse ResponseType = "RUNTIME_ERROR"
)

// IsSuccess reports whether t carries a result rather than an error.
func (t ResponseType) IsSuccess() bool {
	switch t {
	case SuccessEmpty, SuccessJSON, SuccessPartial, SuccessStream:
		return true
	}
	return false
}

// Response is a decoded server response. Only the fields needed to explain
// a failure are kept.
type Response struct {
	Type         ResponseType `json:"type"`
	Token        int64        `json:"token,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Backtrace    Backtrace    `json:"backtrace,omitempty"`
}

// DecodeResponse reads one JSON-encoded response from r.
// Decode failures are returned as a ClientError.
func DecodeResponse(r io.Reader) (*Response, error) {
	var resp Response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, Wrap(errors.Wrap(err, "decode response"), "")
	}
	if resp.Type == "" {
		return nil, New(ClientError, "response has no type")
	}
	return &resp, nil
}

// Err maps the response onto the error taxonomy. root is the query that was
// sent; it is used to point at the faulting term. Success responses yield nil.
func (resp *Response) Err(root Term) error {
	return resp.ErrWith(NewReporter(), root)
}

// ErrWith is Err with a caller-supplied Reporter.
func (resp *Response) ErrWith(r *Reporter, root Term) error {
	switch resp.Type {
	case SuccessEmpty, SuccessJSON, SuccessPartial, SuccessStream:
		return nil
	case BadQueryResponse:
		return r.Error(BadQuery, resp.ErrorMessage, resp.Backtrace, root)
	case RuntimeErrorResponse:
		return r.Error(RuntimeError, resp.ErrorMessage, resp.Backtrace, root)
	case BrokenClientResponse:
		e := New(BrokenClient, resp.ErrorMessage)
		e.Backtrace = resp.Backtrace
		return e
	default:
		return New(ClientError, "unknown response type "+string(resp.Type))
	}
}
