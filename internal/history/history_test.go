// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

package history

import (
	"fmt"
	"slices"
	"testing"
)

func TestRing_EvictsOldest(t *testing.T) {
	r := New(DefaultCapacity)
	var want []string
	for i := 0; i < 21; i++ {
		line := fmt.Sprintf("cmd%d", i)
		r.Append(line)
		want = append(want, line)
	}
	want = want[1:]

	if r.Len() != 20 {
		t.Fatalf("expected 20 entries, got %d", r.Len())
	}
	got := r.Entries()
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected entries:\n got %v\nwant %v", got, want)
	}
	if slices.Contains(got, "cmd0") {
		t.Fatalf("oldest entry still present")
	}
}

func TestNew_InvalidCapacityFallsBack(t *testing.T) {
	for _, c := range []int{0, -3} {
		if got := New(c).Capacity(); got != DefaultCapacity {
			t.Fatalf("New(%d).Capacity() = %d, want %d", c, got, DefaultCapacity)
		}
	}
}

func TestCursor_SaturatesAtBoundaries(t *testing.T) {
	r := New(3)
	r.Append("a")
	r.Append("b")
	c := r.Cursor()

	if _, ok := c.Next(); ok {
		t.Fatalf("Next past newest should not move")
	}
	if got, ok := c.Prev(); !ok || got != "b" {
		t.Fatalf("Prev = %q,%v want b,true", got, ok)
	}
	if got, ok := c.Prev(); !ok || got != "a" {
		t.Fatalf("Prev = %q,%v want a,true", got, ok)
	}
	if _, ok := c.Prev(); ok {
		t.Fatalf("Prev past oldest should not move")
	}
	if c.Pos() != 0 {
		t.Fatalf("cursor moved past oldest: %d", c.Pos())
	}
	if got, ok := c.Next(); !ok || got != "b" {
		t.Fatalf("Next = %q,%v want b,true", got, ok)
	}
	if got, ok := c.Next(); !ok || got != "" {
		t.Fatalf("Next to empty line = %q,%v", got, ok)
	}
	if _, ok := c.Next(); ok {
		t.Fatalf("Next should saturate")
	}
}

func TestCursor_IndependentOfInsertion(t *testing.T) {
	r := New(2)
	r.Append("a")
	r.Append("b")
	r.Append("c") // evicts a
	c := r.Cursor()
	if got, _ := c.Prev(); got != "c" {
		t.Fatalf("expected newest c, got %q", got)
	}
	if got, _ := c.Prev(); got != "b" {
		t.Fatalf("expected b, got %q", got)
	}
	if _, ok := c.Prev(); ok {
		t.Fatalf("expected saturation at b")
	}
	r.Append("d")
	c.Reset()
	if c.Pos() != r.Len() {
		t.Fatalf("Reset should move past newest")
	}
}

func TestCursor_EmptyRing(t *testing.T) {
	c := New(DefaultCapacity).Cursor()
	if _, ok := c.Prev(); ok {
		t.Fatalf("Prev on empty ring moved")
	}
	if _, ok := c.Next(); ok {
		t.Fatalf("Next on empty ring moved")
	}
}
