package resp

// Reader yields one decoded value per call, io.EOF at a clean end of input
type Reader interface {
	Read() (Value, error)
}

// Writer buffers encoded values until Flush
type Writer interface {
	Write(v Value) error
	Flush() error
}

var (
	_ Reader = (*Decoder)(nil)
	_ Writer = (*Encoder)(nil)
)
