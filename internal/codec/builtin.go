package codec

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"

	"github.com/google/uuid"
	"gopkg.in/yaml.v2"
)

var (
	// String stores Go strings as their raw bytes
	String Codec[string] = stringCodec{}

	// Bytes stores byte slices unchanged
	Bytes Codec[[]byte] = bytesCodec{}

	// Int64 stores integers in decimal ASCII, the representation INCR and friends operate on
	Int64 Codec[int64] = int64Codec{}

	// Float64 stores floats in the shortest decimal form that round-trips
	Float64 Codec[float64] = float64Codec{}

	// Bool stores booleans as "1" and "0"
	Bool Codec[bool] = boolCodec{}

	// UUID stores identifiers in their canonical 36-character text form
	UUID Codec[uuid.UUID] = uuidCodec{}
)

var errNonFinite = errors.New("non-finite float")

type stringCodec struct{}

func (stringCodec) Write(v string) ([]byte, error) { return []byte(v), nil }
func (stringCodec) Read(data []byte) (string, error) {
	return string(data), nil
}

type bytesCodec struct{}

func (bytesCodec) Write(v []byte) ([]byte, error) {
	if v == nil {
		return []byte{}, nil
	}
	return v, nil
}

func (bytesCodec) Read(data []byte) ([]byte, error) {
	return append([]byte{}, data...), nil
}

type int64Codec struct{}

func (int64Codec) Write(v int64) ([]byte, error) {
	return strconv.AppendInt(nil, v, 10), nil
}

func (int64Codec) Read(data []byte) (int64, error) {
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, decodeError("int64", data, err)
	}
	return n, nil
}

type float64Codec struct{}

func (float64Codec) Write(v float64) ([]byte, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, errNonFinite
	}
	return strconv.AppendFloat(nil, v, 'f', -1, 64), nil
}

func (float64Codec) Read(data []byte) (float64, error) {
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return 0, decodeError("float64", data, err)
	}
	return f, nil
}

type boolCodec struct{}

func (boolCodec) Write(v bool) ([]byte, error) {
	if v {
		return []byte{'1'}, nil
	}
	return []byte{'0'}, nil
}

func (boolCodec) Read(data []byte) (bool, error) {
	switch string(data) {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	return false, decodeError("bool", data, nil)
}

type uuidCodec struct{}

func (uuidCodec) Write(v uuid.UUID) ([]byte, error) {
	return []byte(v.String()), nil
}

func (uuidCodec) Read(data []byte) (uuid.UUID, error) {
	id, err := uuid.ParseBytes(data)
	if err != nil {
		return uuid.Nil, decodeError("uuid", data, err)
	}
	return id, nil
}

// JSON returns a codec storing T as a JSON document.
// Map keys are sorted by encoding/json, which keeps the output deterministic.
func JSON[T any]() Codec[T] {
	return jsonCodec[T]{}
}

type jsonCodec[T any] struct{}

func (jsonCodec[T]) Write(v T) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec[T]) Read(data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, decodeError("json", data, err)
	}
	return v, nil
}

// YAML returns a codec storing T as a YAML document
func YAML[T any]() Codec[T] {
	return yamlCodec[T]{}
}

type yamlCodec[T any] struct{}

func (yamlCodec[T]) Write(v T) ([]byte, error) {
	return yaml.Marshal(v)
}

func (yamlCodec[T]) Read(data []byte) (T, error) {
	var v T
	if err := yaml.UnmarshalStrict(data, &v); err != nil {
		return v, decodeError("yaml", data, err)
	}
	return v, nil
}

// Funcs builds a codec from a pair of functions.
// A read error that is not already a *DecodeError is wrapped into one.
func Funcs[T any](name string, write func(T) ([]byte, error), read func([]byte) (T, error)) Codec[T] {
	return funcCodec[T]{name: name, write: write, read: read}
}

type funcCodec[T any] struct {
	name  string
	write func(T) ([]byte, error)
	read  func([]byte) (T, error)
}

func (c funcCodec[T]) Write(v T) ([]byte, error) {
	return c.write(v)
}

func (c funcCodec[T]) Read(data []byte) (T, error) {
	v, err := c.read(data)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			return v, err
		}
		return v, decodeError(c.name, data, err)
	}
	return v, nil
}
