// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

// Package vars implements the shell's variable store.
//
// Every variable holds a JSON document. References such as @aps[0].guid walk
// into those documents with gjson and nested assignments are written back with
// sjson, so user input is only ever parsed, never evaluated.
package vars

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	// ErrUndefined means the referenced variable does not exist.
	ErrUndefined = errors.New("variable not defined")
	// ErrNoSuchPath means a key or index along a reference is missing.
	ErrNoSuchPath = errors.New("no such key or index")
	// ErrBadReference means the reference text could not be parsed.
	ErrBadReference = errors.New("malformed reference")
)

// Store maps variable names to JSON values.
type Store struct {
	vals map[string]json.RawMessage
}

// New returns an empty store.
func New() *Store {
	return &Store{vals: make(map[string]json.RawMessage)}
}

// Get returns the value of name.
func (s *Store) Get(name string) (json.RawMessage, bool) {
	v, ok := s.vals[name]
	return v, ok
}

// Has reports whether name is defined.
func (s *Store) Has(name string) bool {
	_, ok := s.vals[name]
	return ok
}

// Set stores v under name. v must be valid JSON.
func (s *Store) Set(name string, v json.RawMessage) error {
	if !gjson.ValidBytes(v) {
		return fmt.Errorf("set %s: invalid JSON value", name)
	}
	s.vals[name] = slices.Clone(v)
	return nil
}

// SetValue marshals v and stores it under name.
func (s *Store) SetValue(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	s.vals[name] = raw
	return nil
}

// Delete removes name and reports whether it existed.
func (s *Store) Delete(name string) bool {
	if _, ok := s.vals[name]; !ok {
		return false
	}
	delete(s.vals, name)
	return true
}

// Names returns the defined names in sorted order.
func (s *Store) Names() []string {
	return slices.Sorted(maps.Keys(s.vals))
}

// Len returns the number of variables.
func (s *Store) Len() int { return len(s.vals) }

// Resolve returns the value a reference points at.
func (s *Store) Resolve(ref Reference) (json.RawMessage, error) {
	root, ok := s.vals[ref.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUndefined, ref.Name)
	}
	res, err := walk(gjson.ParseBytes(root), ref, len(ref.Path))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(res.Raw), nil
}

// Assign stores v at the location named by ref. A reference without a path
// sets the variable itself. Otherwise the variable and every step but the last
// must already exist; the last step may add a key to an object but may only
// replace an existing array element.
func (s *Store) Assign(ref Reference, v json.RawMessage) error {
	if !gjson.ValidBytes(v) {
		return fmt.Errorf("assign %s: invalid JSON value", ref)
	}
	if len(ref.Path) == 0 {
		return s.Set(ref.Name, v)
	}
	root, ok := s.vals[ref.Name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUndefined, ref.Name)
	}
	if _, err := walk(gjson.ParseBytes(root), ref, len(ref.Path)-1); err != nil {
		return err
	}

	// normalise negative indexes so the sjson path is absolute
	path := slices.Clone(ref.Path)
	cur := gjson.ParseBytes(root)
	for i := range path {
		if path[i].IsIndex {
			if !cur.IsArray() {
				return fmt.Errorf("%w: %s is not an array", ErrNoSuchPath, prefix(ref, i))
			}
			n := len(cur.Array())
			idx := path[i].Index
			if idx < 0 {
				idx += n
			}
			if idx < 0 || idx >= n {
				return fmt.Errorf("%w: index %d out of range in %s", ErrNoSuchPath, path[i].Index, prefix(ref, i))
			}
			path[i].Index = idx
		} else if !cur.IsObject() {
			return fmt.Errorf("%w: %s is not an object", ErrNoSuchPath, prefix(ref, i))
		}
		if i < len(path)-1 {
			cur = step(cur, path[i])
		}
	}

	out, err := sjson.SetRawBytes(root, sjsonPath(path), v)
	if err != nil {
		return fmt.Errorf("assign %s: %w", ref, err)
	}
	s.vals[ref.Name] = out
	return nil
}

// Value turns the right-hand side of an assignment into JSON. References are
// resolved, valid JSON is kept as is, anything else becomes a JSON string.
func (s *Store) Value(text string) (json.RawMessage, error) {
	if IsReference(text) {
		ref, err := ParseReference(text)
		if err != nil {
			return nil, err
		}
		return s.Resolve(ref)
	}
	return Literal(text), nil
}

// Literal converts user text to JSON without looking at the store.
func Literal(text string) json.RawMessage {
	t := strings.TrimSpace(text)
	if t != "" && gjson.Valid(t) {
		return json.RawMessage(t)
	}
	raw, _ := json.Marshal(t)
	return raw
}

// Display renders a value for the terminal: strings without quotes,
// everything else as compact JSON.
func Display(v json.RawMessage) string {
	res := gjson.ParseBytes(v)
	if res.Type == gjson.String {
		return res.String()
	}
	return res.Raw
}

// Merge copies the top-level members of src into the object dst, leaving out
// the keys in skip. A dst that is not an object is replaced by an empty one
// first. src must be an object.
func Merge(dst, src json.RawMessage, skip ...string) (json.RawMessage, error) {
	from := gjson.ParseBytes(src)
	if !from.IsObject() {
		return nil, fmt.Errorf("merge: %w: source is not an object", ErrNoSuchPath)
	}
	out := []byte("{}")
	if gjson.ParseBytes(dst).IsObject() {
		out = slices.Clone([]byte(dst))
	}
	var err error
	from.ForEach(func(k, v gjson.Result) bool {
		if slices.Contains(skip, k.String()) {
			return true
		}
		out, err = sjson.SetRawBytes(out, gjson.Escape(k.String()), []byte(v.Raw))
		return err == nil
	})
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	return out, nil
}

// walk follows the first n accessors of ref starting at root.
func walk(root gjson.Result, ref Reference, n int) (gjson.Result, error) {
	cur := root
	for i := 0; i < n; i++ {
		a := ref.Path[i]
		if a.IsIndex {
			if !cur.IsArray() {
				return gjson.Result{}, fmt.Errorf("%w: %s is not an array", ErrNoSuchPath, prefix(ref, i))
			}
		} else if !cur.IsObject() {
			return gjson.Result{}, fmt.Errorf("%w: %s is not an object", ErrNoSuchPath, prefix(ref, i))
		}
		next := step(cur, a)
		if !next.Exists() {
			return gjson.Result{}, fmt.Errorf("%w: %s", ErrNoSuchPath, prefix(ref, i+1))
		}
		cur = next
	}
	return cur, nil
}

// step applies one accessor to a node of the matching kind.
func step(cur gjson.Result, a Accessor) gjson.Result {
	if !a.IsIndex {
		return cur.Get(gjson.Escape(a.Key))
	}
	arr := cur.Array()
	idx := a.Index
	if idx < 0 {
		idx += len(arr)
	}
	if idx < 0 || idx >= len(arr) {
		return gjson.Result{}
	}
	return arr[idx]
}

func sjsonPath(path []Accessor) string {
	parts := make([]string, len(path))
	for i, a := range path {
		if a.IsIndex {
			parts[i] = strconv.Itoa(a.Index)
		} else {
			parts[i] = gjson.Escape(a.Key)
		}
	}
	return strings.Join(parts, ".")
}

// prefix renders the first n steps of ref for error messages.
func prefix(ref Reference, n int) string {
	return Reference{Name: ref.Name, Path: ref.Path[:n]}.String()
}
