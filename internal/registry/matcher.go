// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

package registry

import (
	"fmt"
	"regexp"
)

// Matcher decides whether a line selects a command. On success it returns
// the text captured from the line, one element per argument.
type Matcher interface {
	Match(line string) (args []string, ok bool)
}

// MatcherFunc adapts a plain function to Matcher.
type MatcherFunc func(line string) ([]string, bool)

// Match implements Matcher.
func (f MatcherFunc) Match(line string) ([]string, bool) { return f(line) }

// RegexMatcher matches a regular expression against the start of a line.
// The rest of the line may hold anything unless the pattern ends in $.
type RegexMatcher struct {
	re *regexp.Regexp
}

// Regex compiles pattern into a RegexMatcher anchored at the line start.
func Regex(pattern string) (*RegexMatcher, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	return &RegexMatcher{re: re}, nil
}

// Match returns the capture groups of the first match. Groups that did not
// take part in the match are returned as empty strings.
func (m *RegexMatcher) Match(line string) ([]string, bool) {
	sub := m.re.FindStringSubmatch(line)
	if sub == nil {
		return nil, false
	}
	return sub[1:], true
}

// String returns the compiled expression.
func (m *RegexMatcher) String() string { return m.re.String() }
