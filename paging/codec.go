package paging

import (
	"encoding/json"
)

// Codec unmarshals raw item JSON.
type Codec interface {
	Unmarshal(data []byte, v any) error
}

// CodecFunc adapts a function to Codec.
type CodecFunc func(data []byte, v any) error

func (f CodecFunc) Unmarshal(data []byte, v any) error {
	return f(data, v)
}

// DefaultCodec is encoding/json. It is only a fallback for a nil Codec.
var DefaultCodec Codec = CodecFunc(json.Unmarshal)

// DecodeFunc turns one raw item into a typed item.
type DecodeFunc[T any] func(raw json.RawMessage) (T, error)

// JSONDecoder decodes items into T with codec, or DefaultCodec when nil.
func JSONDecoder[T any](codec Codec) DecodeFunc[T] {
	if codec == nil {
		codec = DefaultCodec
	}
	return func(raw json.RawMessage) (T, error) {
		var item T
		err := codec.Unmarshal(raw, &item)
		return item, err
	}
}

// RawDecoder hands items through untouched.
func RawDecoder(raw json.RawMessage) (json.RawMessage, error) {
	return raw, nil
}
