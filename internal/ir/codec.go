package ir

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// EncodeProgram writes the msgpack form of p (the ".oir" format).
func EncodeProgram(w io.Writer, p *Program) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode program: %w", err)
	}
	return nil
}

// MarshalProgram returns the canonical encoding of p. Equal programs produce
// equal bytes, which the driver relies on for cache keys.
func MarshalProgram(p *Program) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeProgram(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeProgram(r io.Reader) (*Program, error) {
	var p Program
	if err := msgpack.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	return &p, nil
}

func UnmarshalProgram(data []byte) (*Program, error) {
	return DecodeProgram(bytes.NewReader(data))
}
