// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

package lineeditor

import "github.com/charmbracelet/x/ansi"

// key is a decoded arrow key.
type key int

const (
	keyNone key = iota
	keyUp
	keyDown
	keyRight
	keyLeft
)

type escState int

const (
	stateNone    escState = iota
	stateEsc              // seen ESC
	stateBracket          // seen ESC plus one byte
)

// escDecoder recognises the three byte cursor key sequences ESC [ A..D.
// Any two bytes following ESC are swallowed; sequences other than the four
// arrows decode to keyNone.
type escDecoder struct {
	state  escState
	second byte
}

// active reports whether a sequence is in progress.
func (d *escDecoder) active() bool { return d.state != stateNone }

// start begins a new sequence, dropping any partial one.
func (d *escDecoder) start() {
	d.state = stateEsc
	d.second = 0
}

// feed consumes one byte of a sequence in progress. done is true once the
// third byte arrived; k is then the decoded key.
func (d *escDecoder) feed(b byte) (k key, done bool) {
	switch d.state {
	case stateEsc:
		d.second = b
		d.state = stateBracket
		return keyNone, false
	case stateBracket:
		d.state = stateNone
		if d.second != '[' {
			return keyNone, true
		}
		switch b {
		case 'A':
			return keyUp, true
		case 'B':
			return keyDown, true
		case 'C':
			return keyRight, true
		case 'D':
			return keyLeft, true
		}
		return keyNone, true
	}
	return keyNone, false
}

// isControl reports whether b is handled by the editor before any pending
// escape sequence sees it.
func isControl(b byte) bool {
	switch b {
	case ansi.CR, ansi.LF, ansi.ETX, ansi.EOT, ansi.DEL, ansi.BS, ansi.ESC:
		return true
	}
	return false
}
