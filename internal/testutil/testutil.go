// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

// Package testutil holds test doubles shared by the shell packages.
package testutil

import (
	"bytes"
	"errors"
	"io"

	"github.com/paradrop/pdcli/internal/terminal"
)

// FakeTerminal is an in-memory terminal.Terminal. Mode holds the current
// settings; MakeRaw switches it to "raw" and returns the previous value.
type FakeTerminal struct {
	Mode     string
	RawCalls int
	Restores int
	// FailRaw makes MakeRaw return an error without touching Mode.
	FailRaw bool
}

var _ terminal.Terminal = (*FakeTerminal)(nil)

// NewFakeTerminal returns a terminal in "cooked" mode.
func NewFakeTerminal() *FakeTerminal {
	return &FakeTerminal{Mode: "cooked"}
}

// MakeRaw implements terminal.Terminal.
func (f *FakeTerminal) MakeRaw() (terminal.State, error) {
	if f.FailRaw {
		return nil, errors.New("fake terminal: raw mode unavailable")
	}
	f.RawCalls++
	prev := f.Mode
	f.Mode = "raw"
	return prev, nil
}

// Restore implements terminal.Terminal.
func (f *FakeTerminal) Restore(s terminal.State) error {
	f.Restores++
	mode, ok := s.(string)
	if !ok {
		return errors.New("fake terminal: foreign state")
	}
	f.Mode = mode
	return nil
}

// PanicReader returns the bytes of Data and panics once they are exhausted.
type PanicReader struct {
	Data []byte
	pos  int
}

// ReadByte implements io.ByteReader.
func (p *PanicReader) ReadByte() (byte, error) {
	if p.pos >= len(p.Data) {
		panic("testutil: decoder failure")
	}
	b := p.Data[p.pos]
	p.pos++
	return b, nil
}

// Read implements io.Reader one byte at a time.
func (p *PanicReader) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	c, err := p.ReadByte()
	if err != nil {
		return 0, err
	}
	b[0] = c
	return 1, nil
}

// ErrReader fails every read with Err.
type ErrReader struct{ Err error }

func (r ErrReader) Read([]byte) (int, error) { return 0, r.Err }

// FailWriter fails every write.
type FailWriter struct{}

func (FailWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

// Input returns a reader over the concatenated lines, each terminated by a
// carriage return as a raw terminal would deliver them.
func Input(lines ...string) *bytes.Reader {
	var b bytes.Buffer
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\r')
	}
	return bytes.NewReader(b.Bytes())
}
