// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

// Package registry maps input lines to command handlers.
//
// Commands are collected by a Builder in a fixed order and frozen into a
// Registry. Dispatch tries the commands in that order and runs the first one
// whose matcher accepts the line, so a broad pattern registered early shadows
// a narrower one registered later. Lines nothing matches go to the catch-all.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/paradrop/pdcli/internal/i18n"
)

// Handler runs a command with the arguments captured by its matcher.
type Handler func(ctx context.Context, args ...string) error

// Gate reports whether the session is signed in.
type Gate interface {
	LoggedIn() bool
}

// GateFunc adapts a function to Gate.
type GateFunc func() bool

// LoggedIn implements Gate.
func (f GateFunc) LoggedIn() bool { return f() }

// Command is one entry of the table.
type Command struct {
	Name         string
	Matcher      Matcher
	Handler      Handler
	HelpText     string
	AuthRequired bool
}

// Option adjusts a command while it is registered.
type Option func(*Command)

// RequireAuth marks the command as usable only after login.
func RequireAuth() Option {
	return func(c *Command) { c.AuthRequired = true }
}

// Help sets the text shown by the help listing.
func Help(text string) Option {
	return func(c *Command) { c.HelpText = text }
}

// Outcome tells what Dispatch did with a line.
type Outcome int

const (
	Invoked   Outcome = iota // a command handler ran
	Rejected                 // a command matched but login is required
	Catchall                 // nothing matched, the catch-all ran
	HelpShown                // the line was a help query for one command
)

func (o Outcome) String() string {
	switch o {
	case Invoked:
		return "invoked"
	case Rejected:
		return "rejected"
	case Catchall:
		return "catchall"
	case HelpShown:
		return "help"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Builder collects commands before the registry is frozen.
type Builder struct {
	cmds     []Command
	catchall Handler
	errs     []error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Register adds a command matched by the regular expression pattern.
// Compile errors are reported by Build.
func (b *Builder) Register(name, pattern string, h Handler, opts ...Option) *Builder {
	m, err := Regex(pattern)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("command %s: %w", name, err))
		return b
	}
	return b.RegisterMatcher(name, m, h, opts...)
}

// RegisterMatcher adds a command with a custom matcher.
func (b *Builder) RegisterMatcher(name string, m Matcher, h Handler, opts ...Option) *Builder {
	c := Command{Name: name, Matcher: m, Handler: h}
	for _, opt := range opts {
		opt(&c)
	}
	b.cmds = append(b.cmds, c)
	return b
}

// Catchall sets the handler run when no command matches.
func (b *Builder) Catchall(h Handler) *Builder {
	b.catchall = h
	return b
}

// Build validates the collected commands and freezes them into a Registry
// that writes its own messages to out.
func (b *Builder) Build(out io.Writer) (*Registry, error) {
	errs := slices.Clone(b.errs)
	seen := make(map[string]bool, len(b.cmds))
	for _, c := range b.cmds {
		switch {
		case c.Name == "":
			errs = append(errs, errors.New("command without a name"))
		case seen[c.Name]:
			errs = append(errs, fmt.Errorf("command %s registered twice", c.Name))
		case c.Handler == nil:
			errs = append(errs, fmt.Errorf("command %s has no handler", c.Name))
		case c.Matcher == nil:
			errs = append(errs, fmt.Errorf("command %s has no matcher", c.Name))
		}
		seen[c.Name] = true
	}
	if b.catchall == nil {
		errs = append(errs, errors.New("no catch-all handler"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}
	return &Registry{cmds: slices.Clone(b.cmds), catchall: b.catchall, out: out}, nil
}

// Registry is the frozen command table.
type Registry struct {
	cmds     []Command
	catchall Handler
	out      io.Writer
}

// Commands returns a copy of the table in registration order.
func (r *Registry) Commands() []Command {
	return slices.Clone(r.cmds)
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	for _, c := range r.cmds {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

// Dispatch runs the command selected by line. The gate is consulted once,
// only when the selected command requires login. Errors come from handlers;
// an unmatched line is not an error.
func (r *Registry) Dispatch(ctx context.Context, line string, gate Gate) (Outcome, error) {
	if name, ok := helpQuery(line); ok {
		if c, found := r.Lookup(name); found {
			if c.HelpText == "" {
				_, err := fmt.Fprintln(r.out, i18n.T("registry.no_help", c.Name))
				return HelpShown, err
			}
			_, err := fmt.Fprintln(r.out, c.HelpText)
			return HelpShown, err
		}
		return Catchall, r.catchall(ctx)
	}

	for _, c := range r.cmds {
		args, ok := c.Matcher.Match(line)
		if !ok {
			continue
		}
		if c.AuthRequired && (gate == nil || !gate.LoggedIn()) {
			_, err := fmt.Fprintln(r.out, i18n.T("registry.auth_required"))
			return Rejected, err
		}
		return Invoked, c.Handler(ctx, args...)
	}
	return Catchall, r.catchall(ctx)
}

// helpQuery reports whether line asks for help with a -? or -h token and
// returns the line with those tokens removed.
func helpQuery(line string) (string, bool) {
	fields := strings.Fields(line)
	var rest []string
	for _, f := range fields {
		if f != "-?" && f != "-h" {
			rest = append(rest, f)
		}
	}
	if len(rest) == len(fields) {
		return "", false
	}
	return strings.Join(rest, " "), true
}

// PrintHelps writes the help listing. A non-empty filter keeps only commands
// whose name contains it. Names are right-aligned one column wider than the
// longest listed name.
func (r *Registry) PrintHelps(w io.Writer, filter string) error {
	filter = strings.TrimSpace(filter)
	var (
		listed []Command
		width  int
	)
	for _, c := range r.cmds {
		if c.HelpText == "" {
			continue
		}
		if filter != "" && !strings.Contains(c.Name, filter) {
			continue
		}
		listed = append(listed, c)
		width = max(width, len(c.Name))
	}
	if len(listed) == 0 {
		_, err := fmt.Fprintln(w, i18n.T("registry.no_match"))
		return err
	}
	for _, c := range listed {
		if _, err := fmt.Fprintf(w, "%*s : %s\n", width+1, c.Name, c.HelpText); err != nil {
			return err
		}
	}
	return nil
}
