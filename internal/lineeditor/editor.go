// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

// Package lineeditor reads single lines from a raw-mode terminal.
//
// Input is decoded one byte at a time. Carriage return submits the line,
// Ctrl-C discards it, Ctrl-D ends the session, backspace edits, and the Up and
// Down arrows walk the shared history. Left and Right only move the visible
// cursor: the line is always edited at its end.
package lineeditor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"

	"github.com/paradrop/pdcli/internal/history"
	"github.com/paradrop/pdcli/internal/i18n"
	"github.com/paradrop/pdcli/internal/logging"
	"github.com/paradrop/pdcli/internal/terminal"
)

// ErrEndOfTransmission is returned by ReadLine when the user pressed Ctrl-D
// or the input stream ended. The session is over once it is seen.
var ErrEndOfTransmission = errors.New("end of transmission")

// Editor is a line editor bound to one input and one output stream.
// It is not safe for concurrent use.
type Editor struct {
	in     io.ByteReader
	out    io.Writer
	term   terminal.Terminal
	hist   *history.Ring
	prompt func() string
	notice func() string
}

// Option configures an Editor.
type Option func(*Editor)

// WithTerminal sets the terminal switched into raw mode for every ReadLine.
// Without it the input is read as is.
func WithTerminal(t terminal.Terminal) Option {
	return func(e *Editor) { e.term = t }
}

// WithHistory sets the ring walked by the arrow keys.
func WithHistory(r *history.Ring) Option {
	return func(e *Editor) { e.hist = r }
}

// WithPrompt sets the function used to redraw the prompt after a history jump.
func WithPrompt(p func() string) Option {
	return func(e *Editor) { e.prompt = p }
}

// WithInterruptNotice overrides the text printed on Ctrl-C.
func WithInterruptNotice(s string) Option {
	return func(e *Editor) { e.notice = func() string { return s } }
}

// New returns an Editor reading from in and echoing to out.
func New(in io.Reader, out io.Writer, opts ...Option) *Editor {
	br, ok := in.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(in)
	}
	e := &Editor{
		in:     br,
		out:    out,
		prompt: func() string { return "" },
		notice: func() string { return i18n.T("editor.interrupt") },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ReadLine blocks until a line is complete and returns it without the line
// terminator. With echo false typed bytes are not written back, which is used
// for passwords. The terminal is restored to its entry state on every return
// path, panics included.
func (e *Editor) ReadLine(echo bool) (line string, err error) {
	release, err := terminal.Acquire(e.term)
	if err != nil {
		return "", err
	}
	defer func() {
		if rerr := release(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	var cur *history.Cursor
	if e.hist != nil {
		cur = e.hist.Cursor()
	}

	var (
		buf []byte
		esc escDecoder
		w   = &errWriter{w: e.out}
	)
	for {
		if w.err != nil {
			return "", fmt.Errorf("write to terminal: %w", w.err)
		}
		b, rerr := e.in.ReadByte()
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				w.str("\r\n")
				return "", ErrEndOfTransmission
			}
			return "", fmt.Errorf("read from terminal: %w", rerr)
		}

		if !isControl(b) && esc.active() {
			k, done := esc.feed(b)
			if done {
				buf = e.handleKey(w, k, cur, buf)
			}
			continue
		}

		switch b {
		case ansi.CR, ansi.LF:
			w.str("\r\n")
			return string(buf), w.err
		case ansi.ETX:
			w.str(e.notice() + "\r\n")
			return "", w.err
		case ansi.EOT:
			w.str("\r\n")
			return "", ErrEndOfTransmission
		case ansi.DEL, ansi.BS:
			if len(buf) > 0 {
				_, size := utf8.DecodeLastRune(buf)
				buf = buf[:len(buf)-size]
				w.str(ansi.CursorBackward(1) + ansi.EraseLineRight)
			}
		case ansi.ESC:
			esc.start()
		default:
			if echo {
				w.bytes([]byte{b})
			}
			buf = append(buf, b)
		}
	}
}

// handleKey applies a decoded arrow key and returns the resulting buffer.
func (e *Editor) handleKey(w *errWriter, k key, cur *history.Cursor, buf []byte) []byte {
	switch k {
	case keyUp, keyDown:
		if cur != nil {
			step := cur.Prev
			if k == keyDown {
				step = cur.Next
			}
			if entry, ok := step(); ok {
				buf = []byte(entry)
			} else {
				logging.Debugf("history navigation at boundary (pos %d)", cur.Pos())
			}
		}
		w.str(ansi.EraseEntireLine + ansi.CursorHorizontalAbsolute(1) + e.prompt())
		w.bytes(buf)
	case keyRight:
		w.str(ansi.CUF1)
	case keyLeft:
		w.str(ansi.CUB1)
	}
	return buf
}

// errWriter remembers the first write error so the decode loop stays flat.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) bytes(p []byte) {
	if ew.err != nil {
		return
	}
	_, ew.err = ew.w.Write(p)
}

func (ew *errWriter) str(s string) {
	ew.bytes([]byte(s))
}
