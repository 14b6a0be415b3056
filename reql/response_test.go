package reql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeResponse(t *testing.T) {
	resp, err := DecodeResponse(strings.NewReader(
		`{"type":"BAD_QUERY","token":7,"error_message":"Expected a number","backtrace":["arg:0","lowerbound"]}`))
	require.NoError(t, err)
	require.Equal(t, BadQueryResponse, resp.Type)
	require.Equal(t, int64(7), resp.Token)
	require.Equal(t, "Expected a number", resp.ErrorMessage)
	require.Equal(t, Backtrace{"arg:0", "lowerbound"}, resp.Backtrace)
}

func TestDecodeResponse_Errors(t *testing.T) {
	_, err := DecodeResponse(strings.NewReader(`{"type":`))
	require.Error(t, err)
	require.True(t, IsKind(err, ClientError))
	require.Contains(t, err.Error(), "decode response")

	_, err = DecodeResponse(strings.NewReader(`{"error_message":"x"}`))
	require.True(t, IsKind(err, ClientError))
	require.Contains(t, err.Error(), "response has no type")
}

func TestResponseErr(t *testing.T) {
	root := MustParse(`table("users").between(1, 5)`)

	tests := []struct {
		name     string
		resp     Response
		wantKind Kind
		wantMsg  string
	}{
		{
			name:     "bad query points at the lower bound",
			resp:     Response{Type: BadQueryResponse, ErrorMessage: "Expected a number", Backtrace: Backtrace{"lowerbound"}},
			wantKind: BadQuery,
			wantMsg: "Expected a number\n" +
				"\ttable(\"users\").between(1, 5)\n" +
				"\t" + underline(28, 23, 1),
		},
		{
			name:     "runtime error without backtrace marks everything",
			resp:     Response{Type: RuntimeErrorResponse, ErrorMessage: "Table missing"},
			wantKind: RuntimeError,
			wantMsg:  "Table missing\n\ttable(\"users\").between(1, 5)\n\t" + strings.Repeat("^", 28),
		},
		{
			name:     "runtime error default message",
			resp:     Response{Type: RuntimeErrorResponse, Backtrace: Backtrace{"arg:0"}},
			wantKind: RuntimeError,
			wantMsg:  "The RDB runtime experienced an error\n\ttable(\"users\").between(1, 5)\n\t" + underline(28, 0, 14),
		},
		{
			name:     "broken client keeps the raw message",
			resp:     Response{Type: BrokenClientResponse, ErrorMessage: "bad protobuf", Backtrace: Backtrace{"arg:0"}},
			wantKind: BrokenClient,
			wantMsg:  "bad protobuf",
		},
		{
			name:     "unknown type",
			resp:     Response{Type: "SOMETHING_NEW"},
			wantKind: ClientError,
			wantMsg:  "unknown response type SOMETHING_NEW",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.resp.Err(root)
			require.Error(t, err)
			var e *Error
			require.ErrorAs(t, err, &e)
			require.Equal(t, tt.wantKind, e.Kind)
			require.Equal(t, tt.wantMsg, e.Message)
		})
	}
}

func TestResponseErr_Success(t *testing.T) {
	root := MustParse(`table("users")`)
	for _, typ := range []ResponseType{SuccessEmpty, SuccessJSON, SuccessPartial, SuccessStream} {
		require.True(t, typ.IsSuccess())
		resp := Response{Type: typ, Backtrace: Backtrace{"arg:1"}}
		require.NoError(t, resp.Err(root), "type %s", typ)
	}
	require.False(t, BadQueryResponse.IsSuccess())
}

func TestResponseErrWith_Reporter(t *testing.T) {
	root := MustParse(`table("users").get(1)`)
	resp := Response{Type: BadQueryResponse, ErrorMessage: "nope", Backtrace: Backtrace{"arg:1"}}

	err := resp.ErrWith(NewReporter(WithoutQueryLine(), WithMarker('*')), root)
	require.EqualError(t, err, "Bad Query: nope\n\t"+strings.Repeat(" ", 19)+"* ")
}
