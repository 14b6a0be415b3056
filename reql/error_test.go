package reql

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultMessages(t *testing.T) {
	tests := []struct {
		kind    Kind
		name    string
		code    string
		message string
	}{
		{RuntimeError, "Runtime Error", ErrRuntime, "The RDB runtime experienced an error"},
		{BrokenClient, "Broken Client", ErrBrokenClient, "The client sent the server an incorrectly formatted message"},
		{BadQuery, "Bad Query", ErrBadQuery, "This query contains type errors"},
		{ClientError, "RDB Client Error", ErrClient, "The RDB client has experienced an error"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			e := New(tt.kind, "")
			require.Equal(t, tt.name, e.Name())
			require.Equal(t, tt.message, e.Message)
			require.Equal(t, tt.code, tt.kind.Code())
			require.Equal(t, tt.name+": "+tt.message, e.Error())

			custom := New(tt.kind, "custom")
			require.Equal(t, "custom", custom.Message)

			parsed, err := ParseKind(tt.code)
			require.NoError(t, err)
			require.Equal(t, tt.kind, parsed)
		})
	}
}

func TestKind_Unknown(t *testing.T) {
	var k Kind = 42
	require.Equal(t, "Kind(42)", k.String())
	require.Empty(t, k.Code())

	_, err := k.MarshalText()
	require.Error(t, err)

	_, err = ParseKind("NOPE")
	require.EqualError(t, err, `unknown error kind "NOPE"`)
}

func TestError_JSON(t *testing.T) {
	e := New(BadQuery, "Expected type NUMBER")
	e.Backtrace = Backtrace{"arg:1"}

	data, err := json.Marshal(e)
	require.NoError(t, err)
	require.JSONEq(t, `{"kind":"BAD_QUERY","message":"Expected type NUMBER","backtrace":["arg:1"]}`, string(data))

	var back Error
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, BadQuery, back.Kind)
	require.Equal(t, e.Message, back.Message)
	require.Equal(t, e.Backtrace, back.Backtrace)

	require.Error(t, json.Unmarshal([]byte(`{"kind":"WHAT"}`), &back))
}

func TestWrapAndIsKind(t *testing.T) {
	cause := errors.New("connection refused")
	e := Wrap(cause, "")
	require.Equal(t, ClientError, e.Kind)
	require.Equal(t, "connection refused", e.Message)
	require.ErrorIs(t, e, cause)

	wrapped := fmt.Errorf("run query: %w", e)
	require.True(t, IsKind(wrapped, ClientError))
	require.False(t, IsKind(wrapped, BadQuery))
	require.False(t, IsKind(cause, ClientError))

	// A ClientError raised while handling a BadQuery still reports both.
	inner := New(BadQuery, "")
	outer := Wrap(errors.Wrap(inner, "render"), "could not render report")
	require.True(t, IsKind(outer, ClientError))
	require.True(t, IsKind(outer, BadQuery))
}

func TestWrap_NilCause(t *testing.T) {
	e := Wrap(nil, "")
	require.Equal(t, ClientError, e.Kind)
	require.Equal(t, ClientError.DefaultMessage(), e.Message)
	require.NoError(t, e.Unwrap())

	e = Wrap(nil, "server unreachable")
	require.Equal(t, "server unreachable", e.Message)
	require.True(t, IsKind(e, ClientError))
}

func TestParseError_Error(t *testing.T) {
	e := &ParseError{Message: "expected ')'", Pos: Pos{Offset: 4, Line: 1, Column: 5}, Got: "end of input", Expected: "')'"}
	require.Equal(t, `parse error at 1:5: expected ')' (got "end of input", expected ')')`, e.Error())

	e = &ParseError{Message: "empty query", Pos: Pos{Line: 1, Column: 1}}
	require.Equal(t, "parse error at 1:1: empty query", e.Error())
}
