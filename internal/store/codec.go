package store

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/golang/snappy"
	"github.com/hashicorp/go-msgpack/v2/codec"

	"github.com/xtding233/idle-venues/internal/state"
)

// formatV1 prefixes every payload: snappy-compressed msgpack of state.GameState.
const formatV1 byte = 1

var ErrCorruptSave = errors.New("corrupt save payload")

var msgpackHandle = &codec.MsgpackHandle{}

func init() {
	msgpackHandle.RawToString = true
}

// Encode serializes a snapshot. Decode(Encode(s)) reproduces every field exactly.
func Encode(s *state.GameState) ([]byte, error) {
	if s == nil {
		return nil, errors.New("nil game state")
	}
	var buf bytes.Buffer
	if err := codec.NewEncoder(&buf, msgpackHandle).Encode(s); err != nil {
		return nil, errors.Wrap(err, "encode game state")
	}
	out := snappy.Encode(nil, buf.Bytes())
	return append([]byte{formatV1}, out...), nil
}

// Decode parses a payload produced by Encode.
func Decode(b []byte) (*state.GameState, error) {
	if len(b) == 0 || b[0] != formatV1 {
		return nil, errors.Wrap(ErrCorruptSave, "unknown format")
	}
	raw, err := snappy.Decode(nil, b[1:])
	if err != nil {
		return nil, errors.Wrap(ErrCorruptSave, err.Error())
	}
	var s state.GameState
	if err := codec.NewDecoderBytes(raw, msgpackHandle).Decode(&s); err != nil {
		return nil, errors.Wrap(ErrCorruptSave, err.Error())
	}
	return &s, nil
}
