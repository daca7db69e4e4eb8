// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

package vars

import (
	"fmt"
	"strconv"
	"strings"
)

// Accessor is one step into a nested value: either an object key or an array
// index. Negative indexes count from the end of the array.
type Accessor struct {
	Key     string
	Index   int
	IsIndex bool
}

func (a Accessor) String() string {
	if a.IsIndex {
		return "[" + strconv.Itoa(a.Index) + "]"
	}
	if a.Key == "" || strings.ContainsAny(a.Key, ".[]") {
		return "[" + strconv.Quote(a.Key) + "]"
	}
	return "." + a.Key
}

// Reference names a variable and an optional path into its value, written as
// @name, @name.key, @name[0] or @name["key with.dots"].
type Reference struct {
	Name string
	Path []Accessor
}

func (r Reference) String() string {
	var b strings.Builder
	b.WriteString("@" + r.Name)
	for _, a := range r.Path {
		b.WriteString(a.String())
	}
	return b.String()
}

// IsReference reports whether s is written in reference syntax.
func IsReference(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "@")
}

// ParseReference parses the textual form of a reference. Surrounding
// whitespace is ignored.
func ParseReference(s string) (Reference, error) {
	src := strings.TrimSpace(s)
	if !strings.HasPrefix(src, "@") {
		return Reference{}, fmt.Errorf("%w: %q does not start with @", ErrBadReference, s)
	}
	rest := src[1:]

	n := 0
	for n < len(rest) && isNameByte(rest[n]) {
		n++
	}
	if n == 0 {
		return Reference{}, fmt.Errorf("%w: %q has no variable name", ErrBadReference, s)
	}
	ref := Reference{Name: rest[:n]}
	rest = rest[n:]

	for len(rest) > 0 {
		switch rest[0] {
		case '.':
			end := strings.IndexAny(rest[1:], ".[")
			if end < 0 {
				end = len(rest) - 1
			}
			key := rest[1 : 1+end]
			if key == "" {
				return Reference{}, fmt.Errorf("%w: empty key in %q", ErrBadReference, s)
			}
			ref.Path = append(ref.Path, Accessor{Key: key})
			rest = rest[1+end:]
		case '[':
			acc, used, err := parseBracket(rest)
			if err != nil {
				return Reference{}, fmt.Errorf("%w: %v in %q", ErrBadReference, err, s)
			}
			ref.Path = append(ref.Path, acc)
			rest = rest[used:]
		default:
			return Reference{}, fmt.Errorf("%w: unexpected %q in %q", ErrBadReference, rest[0], s)
		}
	}
	return ref, nil
}

// parseBracket reads [123] or ['key'] / ["key"] from the start of s and
// returns the accessor and the number of bytes consumed.
func parseBracket(s string) (Accessor, int, error) {
	if len(s) > 1 && (s[1] == '\'' || s[1] == '"') {
		// a quoted key may itself contain ']' or '.'
		closing := strings.IndexByte(s[2:], s[1])
		if closing < 0 {
			return Accessor{}, 0, fmt.Errorf("unterminated quote")
		}
		keyEnd := 2 + closing
		if keyEnd+1 >= len(s) || s[keyEnd+1] != ']' {
			return Accessor{}, 0, fmt.Errorf("missing ] after quoted key")
		}
		return Accessor{Key: s[2:keyEnd]}, keyEnd + 2, nil
	}
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return Accessor{}, 0, fmt.Errorf("unterminated [")
	}
	inner := strings.TrimSpace(s[1:end])
	idx, err := strconv.Atoi(inner)
	if err != nil {
		return Accessor{}, 0, fmt.Errorf("index %q is not a number", inner)
	}
	return Accessor{Index: idx, IsIndex: true}, end + 1, nil
}

func isNameByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
