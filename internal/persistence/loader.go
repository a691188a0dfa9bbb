package persistence

import (
	"errors"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/eternalApril/keyspace/internal/resp"
)

// Load reads the log from the beginning and hands every command to replay, in order.
// A command cut short at the end of the file is dropped with a warning
func (a *AOF) Load(replay func(cmd resp.Value) error) (int, error) {
	file, err := os.Open(a.filename)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil // Fresh start
		}
		return 0, err
	}
	defer file.Close() //nolint:errcheck

	var reader resp.Reader = resp.NewDecoder(file)
	var n int

	for {
		val, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				return n, nil
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				a.logger.Warn("AOF ends with a truncated command, ignoring it",
					zap.Int("loaded", n),
				)
				return n, nil
			}
			return n, err
		}

		if err := replay(val); err != nil {
			return n, err
		}
		n++
	}
}
