// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

// Package terminal wraps the raw-mode handling of the controlling terminal.
//
// Raw mode is treated as a scoped resource: Acquire switches the terminal
// into raw mode and hands back a release function that restores exactly the
// state observed on entry. Callers defer the release so that every exit path,
// panics included, leaves the terminal as it was found.
package terminal

import (
	"fmt"

	"golang.org/x/term"
)

// State is an opaque snapshot of terminal settings as returned by MakeRaw.
type State any

// Terminal is anything that can be switched into raw mode and back.
type Terminal interface {
	// MakeRaw puts the terminal into raw mode and returns the previous state.
	MakeRaw() (State, error)
	// Restore puts the terminal back into a state returned by MakeRaw.
	Restore(State) error
}

// FD is a Terminal backed by an OS file descriptor.
type FD struct {
	fd int
}

// New returns a Terminal for the given file descriptor, typically
// int(os.Stdin.Fd()).
func New(fd int) *FD {
	return &FD{fd: fd}
}

// IsTerminal reports whether the descriptor refers to a terminal.
func (f *FD) IsTerminal() bool {
	return term.IsTerminal(f.fd)
}

// MakeRaw switches the descriptor into raw mode. A descriptor that is not a
// terminal (a pipe or a file) is left alone and a nil state is returned.
func (f *FD) MakeRaw() (State, error) {
	if !f.IsTerminal() {
		return nil, nil
	}
	st, err := term.MakeRaw(f.fd)
	if err != nil {
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}
	return st, nil
}

// Restore reverts a state returned by MakeRaw. A nil state is a no-op.
func (f *FD) Restore(s State) error {
	st, ok := s.(*term.State)
	if !ok || st == nil {
		return nil
	}
	if err := term.Restore(f.fd, st); err != nil {
		return fmt.Errorf("restore terminal: %w", err)
	}
	return nil
}

// Acquire enters raw mode on t and returns the function that restores the
// previous state. A nil Terminal yields a no-op release, which lets the shell
// run over plain readers.
func Acquire(t Terminal) (release func() error, err error) {
	if t == nil {
		return func() error { return nil }, nil
	}
	prev, err := t.MakeRaw()
	if err != nil {
		return func() error { return nil }, err
	}
	return func() error { return t.Restore(prev) }, nil
}
