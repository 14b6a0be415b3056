package reql

import (
	"bytes"
	"encoding/json"

	"github.com/go-faster/errors"
)

// wireCall is the JSON shape of a call: {"op": ..., "receiver": ..., "args": [...]}.
type wireCall struct {
	Op       *string           `json:"op"`
	Receiver json.RawMessage   `json:"receiver"`
	Args     []json.RawMessage `json:"args"`
}

// DecodeTerm decodes a query tree from JSON. An object with an "op" key is
// a call; any other value is a Datum, with numbers kept as json.Number.
func DecodeTerm(data []byte) (Term, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty term")
	}
	if data[0] == '{' {
		var wc wireCall
		if err := json.Unmarshal(data, &wc); err != nil {
			return nil, errors.Wrap(err, "decode call")
		}
		if wc.Op != nil {
			return decodeCall(wc)
		}
	}
	return decodeDatum(data)
}

func decodeCall(wc wireCall) (*Call, error) {
	c := &Call{Op: *wc.Op}
	if len(wc.Receiver) > 0 && !bytes.Equal(wc.Receiver, []byte("null")) {
		recv, err := DecodeTerm(wc.Receiver)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: receiver", c.Op)
		}
		c.Receiver = recv
	}
	for i, raw := range wc.Args {
		arg, err := DecodeTerm(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: arg %d", c.Op, i+1)
		}
		c.Args = append(c.Args, arg)
	}
	return c, nil
}

func decodeDatum(data []byte) (Datum, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Datum{}, errors.Wrap(err, "decode datum")
	}
	return Datum{Value: v}, nil
}
