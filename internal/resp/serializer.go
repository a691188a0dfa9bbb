package resp

import (
	"bytes"
)

// SerializeCommand uses a standard Encoder to convert the command to bytes
func SerializeCommand(cmd string, args []Value) ([]byte, error) {
	elements := make([]Value, 1+len(args))

	elements[0] = MakeBulkString(cmd)

	copy(elements[1:], args)

	return Marshal(MakeArray(elements))
}

// Marshal encodes a single value
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	if err := enc.Write(v); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Unmarshal decodes exactly one value from b
func Unmarshal(b []byte) (Value, error) {
	r := bytes.NewReader(b)
	dec := NewDecoder(r)
	v, err := dec.Read()
	if err != nil {
		return Value{}, unexpectedEOF(err)
	}
	if dec.Buffered()+r.Len() != 0 {
		return Value{}, ErrInvalidLength
	}
	return v, nil
}
