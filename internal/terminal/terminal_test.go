// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

package terminal

import (
	"errors"
	"os"
	"testing"
)

type stubTerm struct {
	mode    string
	failRaw bool
}

func (s *stubTerm) MakeRaw() (State, error) {
	if s.failRaw {
		return nil, errors.New("no tty")
	}
	prev := s.mode
	s.mode = "raw"
	return prev, nil
}

func (s *stubTerm) Restore(st State) error {
	s.mode = st.(string)
	return nil
}

func TestAcquire_RestoresPreviousState(t *testing.T) {
	s := &stubTerm{mode: "cooked"}
	release, err := Acquire(s)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if s.mode != "raw" {
		t.Fatalf("expected raw mode, got %q", s.mode)
	}

	// nested acquisition must hand back the raw state, not the cooked one
	inner, err := Acquire(s)
	if err != nil {
		t.Fatalf("nested Acquire: %v", err)
	}
	if err := inner(); err != nil {
		t.Fatalf("inner release: %v", err)
	}
	if s.mode != "raw" {
		t.Fatalf("expected raw after inner release, got %q", s.mode)
	}

	if err := release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if s.mode != "cooked" {
		t.Fatalf("expected cooked after release, got %q", s.mode)
	}
}

func TestAcquire_NilTerminalIsNoop(t *testing.T) {
	release, err := Acquire(nil)
	if err != nil {
		t.Fatalf("Acquire(nil): %v", err)
	}
	if err := release(); err != nil {
		t.Fatalf("release: %v", err)
	}
}

func TestAcquire_ErrorStillReturnsRelease(t *testing.T) {
	s := &stubTerm{mode: "cooked", failRaw: true}
	release, err := Acquire(s)
	if err == nil {
		t.Fatalf("expected error from MakeRaw")
	}
	if release == nil {
		t.Fatalf("expected non-nil release func")
	}
	if err := release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if s.mode != "cooked" {
		t.Fatalf("mode changed on failure: %q", s.mode)
	}
}

func TestFD_NonTerminalIsNoop(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "notatty")
	if err != nil {
		t.Fatalf("create temp: %v", err)
	}
	defer f.Close()

	fd := New(int(f.Fd()))
	if fd.IsTerminal() {
		t.Fatalf("regular file reported as terminal")
	}
	st, err := fd.MakeRaw()
	if err != nil {
		t.Fatalf("MakeRaw on file: %v", err)
	}
	if st != nil {
		t.Fatalf("expected nil state for non-tty, got %v", st)
	}
	if err := fd.Restore(st); err != nil {
		t.Fatalf("Restore(nil): %v", err)
	}
}
