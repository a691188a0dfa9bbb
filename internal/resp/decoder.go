package resp

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strconv"
)

var (
	ErrInvalidEnding = errors.New("invalid line ending")
	ErrUnknownType   = errors.New("unexpected type")
	ErrInvalidLength = errors.New("invalid length")
	ErrTooDeep       = errors.New("nesting too deep")
)

const (
	// maxBulkLength bounds a single bulk string, as a Redis server does with proto-max-bulk-len
	maxBulkLength = 512 * 1024 * 1024
	// bulkChunk is the largest bulk string allocated up front.
	// Longer ones grow with the bytes that actually arrive
	bulkChunk = 64 * 1024
	// maxDepth bounds how deeply arrays may nest
	maxDepth = 32
)

// Decoder parses RESP values from an input stream
type Decoder struct {
	rd *bufio.Reader
}

// NewDecoder initializes a Decoder with a buffered reader
func NewDecoder(rd io.Reader) *Decoder {
	return &Decoder{rd: bufio.NewReader(rd)}
}

// Buffered returns the number of bytes that can be read from the current buffer
func (d *Decoder) Buffered() int {
	return d.rd.Buffered()
}

// Read decodes the next value. io.EOF is returned untouched when the stream ends between values
func (d *Decoder) Read() (Value, error) {
	return d.read(0)
}

func (d *Decoder) read(depth int) (Value, error) {
	_type, err := d.rd.ReadByte()
	if err != nil {
		return Value{}, err
	}

	val := Value{
		Type: _type,
	}

	switch val.Type {
	case TypeSimpleString, TypeError:
		line, err := d.readLine()
		if err != nil {
			return Value{}, unexpectedEOF(err)
		}
		val.String = line
		return val, nil

	case TypeInteger:
		num, err := d.readInteger()
		if err != nil {
			return Value{}, unexpectedEOF(err)
		}
		val.Integer = num
		return val, nil

	case TypeBulkString:
		return d.readBulkString()

	case TypeArray:
		return d.readArray(depth + 1)
	}

	return Value{}, ErrUnknownType
}

// readLine reads up to CRLF and returns the line without it
func (d *Decoder) readLine() ([]byte, error) {
	line, err := d.rd.ReadBytes('\n')
	if err != nil {
		return nil, err
	}

	if len(line) < 2 || line[len(line)-2] != '\r' {
		return nil, ErrInvalidEnding
	}

	return line[:len(line)-2], nil
}

func (d *Decoder) readInteger() (int64, error) {
	line, err := d.readLine()
	if err != nil {
		return 0, err
	}

	// Command with integer cant be empty
	if len(line) == 0 {
		return 0, ErrInvalidEnding
	}

	return strconv.ParseInt(string(line), 10, 64)
}

func (d *Decoder) readBulkString() (Value, error) {
	n, err := d.readInteger()
	if err != nil {
		return Value{}, unexpectedEOF(err)
	}

	if n == -1 {
		return MakeNilBulkString(), nil
	}
	if n < 0 || n > maxBulkLength {
		return Value{}, ErrInvalidLength
	}

	payload, err := d.readPayload(n)
	if err != nil {
		return Value{}, unexpectedEOF(err)
	}

	var ending [2]byte
	if _, err := io.ReadFull(d.rd, ending[:]); err != nil {
		return Value{}, unexpectedEOF(err)
	}
	if ending[0] != '\r' || ending[1] != '\n' {
		return Value{}, ErrInvalidEnding
	}

	return MakeBulkBytes(payload), nil
}

// readPayload reads exactly n bytes
func (d *Decoder) readPayload(n int64) ([]byte, error) {
	if n <= bulkChunk {
		buf := make([]byte, n)
		_, err := io.ReadFull(d.rd, buf)
		return buf, err
	}

	var buf bytes.Buffer
	buf.Grow(bulkChunk)
	if _, err := io.CopyN(&buf, d.rd, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *Decoder) readArray(depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, ErrTooDeep
	}

	n, err := d.readInteger()
	if err != nil {
		return Value{}, unexpectedEOF(err)
	}

	if n == -1 {
		return MakeNilArray(), nil
	}
	if n < 0 {
		return Value{}, ErrInvalidLength
	}

	values := make([]Value, 0, min(n, 1024))
	for i := int64(0); i < n; i++ {
		v, err := d.read(depth)
		if err != nil {
			return Value{}, unexpectedEOF(err)
		}
		values = append(values, v)
	}

	return MakeArray(values), nil
}

// unexpectedEOF turns an EOF in the middle of a value into io.ErrUnexpectedEOF
func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
