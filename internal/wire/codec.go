package wire

import (
	"encoding/json"
	"io"

	"github.com/fxamacker/cbor/v2"
)

var DefaultCodec = NewJSONCodec()

type Codec struct {
	Marshal   func(v any) ([]byte, error)
	Unmarshal func(data []byte, v any) error
}

func NewJSONCodec() *Codec {
	return &Codec{
		Marshal:   json.Marshal,
		Unmarshal: json.Unmarshal,
	}
}

func NewCBORCodec() *Codec {
	return &Codec{
		Marshal:   cbor.Marshal,
		Unmarshal: cbor.Unmarshal,
	}
}

// Compose encodes an event type with its payload into a single envelope.
func Compose(msgType EventType, payload any) []byte {
	body, err := DefaultCodec.Marshal(payload)
	if err != nil {
		panic(err)
	}
	out, err := DefaultCodec.Marshal(Message{Type: msgType, Payload: body})
	if err != nil {
		panic(err)
	}
	return out
}

func Decode(data []byte) (Message, error) {
	var m Message
	if len(data) == 0 {
		return m, io.ErrShortBuffer
	}
	if err := DefaultCodec.Unmarshal(data, &m); err != nil {
		return m, err
	}
	if m.Type == "" {
		return m, ErrMissingType
	}
	return m, nil
}

// DecodeTyped unpacks the payload of an already decoded envelope into a
// concrete payload struct.
func DecodeTyped[T any](m Message) (T, error) {
	var v T
	if len(m.Payload) == 0 {
		return v, nil
	}
	err := DefaultCodec.Unmarshal(m.Payload, &v)
	return v, err
}
