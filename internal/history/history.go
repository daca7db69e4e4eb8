// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

// Package history keeps the bounded list of lines submitted to the shell and
// the navigation cursor used by the arrow keys.
package history

// DefaultCapacity is the number of lines remembered when no size is configured.
const DefaultCapacity = 20

// Ring is a fixed-capacity FIFO of submitted lines. Once full, appending a
// line evicts the oldest one.
type Ring struct {
	buf   []string
	start int // index of the oldest entry
	n     int
}

// New returns an empty ring holding at most capacity lines. A capacity below
// one falls back to DefaultCapacity.
func New(capacity int) *Ring {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Ring{buf: make([]string, capacity)}
}

// Capacity returns the maximum number of entries.
func (r *Ring) Capacity() int { return len(r.buf) }

// Len returns the number of stored entries.
func (r *Ring) Len() int { return r.n }

// Append stores line as the newest entry.
func (r *Ring) Append(line string) {
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = line
		r.n++
		return
	}
	r.buf[r.start] = line
	r.start = (r.start + 1) % len(r.buf)
}

// At returns the entry at position i, 0 being the oldest.
func (r *Ring) At(i int) (string, bool) {
	if i < 0 || i >= r.n {
		return "", false
	}
	return r.buf[(r.start+i)%len(r.buf)], true
}

// Entries returns a copy of the stored lines, oldest first.
func (r *Ring) Entries() []string {
	out := make([]string, r.n)
	for i := range out {
		out[i], _ = r.At(i)
	}
	return out
}

// Cursor returns a navigation cursor positioned one past the newest entry.
func (r *Ring) Cursor() *Cursor {
	c := &Cursor{ring: r}
	c.Reset()
	return c
}

// Cursor walks a Ring. Its position is independent of where the ring inserts;
// position Len() stands for the empty line after the newest entry.
type Cursor struct {
	ring *Ring
	pos  int
}

// Reset moves the cursor one past the newest entry.
func (c *Cursor) Reset() { c.pos = c.ring.Len() }

// Pos returns the current position.
func (c *Cursor) Pos() int { return c.pos }

// Prev steps towards the oldest entry. At the oldest entry it does not move
// and reports false.
func (c *Cursor) Prev() (string, bool) {
	if c.pos <= 0 {
		return "", false
	}
	c.pos--
	return c.ring.At(c.pos)
}

// Next steps towards the newest entry. Stepping past the newest entry yields
// the empty line; beyond that it does not move and reports false.
func (c *Cursor) Next() (string, bool) {
	if c.pos >= c.ring.Len() {
		return "", false
	}
	c.pos++
	if c.pos == c.ring.Len() {
		return "", true
	}
	return c.ring.At(c.pos)
}
