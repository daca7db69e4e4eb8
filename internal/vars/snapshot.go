// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

package vars

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// StateFile is the file name of a saved store inside the state directory.
const StateFile = ".pdcli"

// Save writes a zstd-compressed JSON snapshot of the store to w.
func (s *Store) Save(w io.Writer) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("could not create zstd writer: %w", err)
	}
	enc := json.NewEncoder(zw)
	if err := enc.Encode(s.vals); err != nil {
		_ = zw.Close()
		return fmt.Errorf("could not encode json to zstd writer: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("could not flush zstd writer: %w", err)
	}
	return nil
}

// Load replaces the store contents with the snapshot read from r. On error
// the store is left untouched.
func (s *Store) Load(r io.Reader) error {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("could not create zstd reader: %w", err)
	}
	defer zr.Close()

	vals := make(map[string]json.RawMessage)
	if err := json.NewDecoder(zr).Decode(&vals); err != nil {
		return fmt.Errorf("could not decode json from zstd reader: %w", err)
	}
	if vals == nil {
		vals = make(map[string]json.RawMessage)
	}
	s.vals = vals
	return nil
}

// SaveFile writes the snapshot to path, replacing any existing file.
func (s *Store) SaveFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	if err := s.Save(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// LoadFile reads a snapshot written by SaveFile.
func (s *Store) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return s.Load(f)
}
