package world

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// Save writes the level as msgpack.
func (l *Level) Save(w io.Writer) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode level: %w", err)
	}
	return nil
}

// Load reads a level written by Save and validates it.
func Load(r io.Reader) (*Level, error) {
	var l Level
	if err := msgpack.NewDecoder(r).Decode(&l); err != nil {
		return nil, fmt.Errorf("decode level: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("load level: %w", err)
	}
	return &l, nil
}

// SaveFile writes the level to path.
func (l *Level) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create level file: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := l.Save(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write level file: %w", err)
	}
	return f.Close()
}

// LoadFile reads a level from path.
func LoadFile(path string) (*Level, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open level file: %w", err)
	}
	defer f.Close()
	return Load(bufio.NewReader(f))
}
