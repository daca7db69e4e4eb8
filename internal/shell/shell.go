// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

// Package shell runs the interactive pdcli session.
//
// A Shell prompts, reads a line with the raw-mode editor, records it in the
// history and hands it to the command registry. Failures inside a command,
// including panics, are reported on the error stream and the loop carries on.
// Only quit/exit and Ctrl-D end the session.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/paradrop/pdcli/client"
	"github.com/paradrop/pdcli/internal/history"
	"github.com/paradrop/pdcli/internal/i18n"
	"github.com/paradrop/pdcli/internal/lineeditor"
	"github.com/paradrop/pdcli/internal/logging"
	"github.com/paradrop/pdcli/internal/registry"
	"github.com/paradrop/pdcli/internal/terminal"
	"github.com/paradrop/pdcli/internal/vars"
)

// ErrQuit is returned by the quit command to end the session.
var ErrQuit = errors.New("quit")

// DefaultPrompt is shown while nobody is signed in.
const DefaultPrompt = "pd> "

// DefaultStateEnv names the environment variable holding the state directory.
const DefaultStateEnv = "PDPATH"

// State is the position of the session loop.
type State int

const (
	Prompting State = iota
	Reading
	Dispatching
	Terminated
)

func (s State) String() string {
	switch s {
	case Prompting:
		return "prompting"
	case Reading:
		return "reading"
	case Dispatching:
		return "dispatching"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Config wires a Shell to its streams and collaborators.
type Config struct {
	In  io.Reader
	Out io.Writer
	// Err receives failure reports. Defaults to Out.
	Err io.Writer
	// Terminal is put into raw mode while a line is read. Nil reads In as is.
	Terminal terminal.Terminal
	Client   client.Client

	Prompt      string // prompt while signed out, DefaultPrompt if empty
	HistorySize int    // history.DefaultCapacity if < 1

	// StateDir is where save and load keep the snapshot. When empty the
	// directory is taken from the StateEnv environment variable.
	StateDir  string
	StateEnv  string
	LookupEnv func(string) (string, bool)
}

// Shell is one interactive session. It is not safe for concurrent use.
type Shell struct {
	out    io.Writer
	errOut io.Writer
	errSty lipgloss.Style

	client client.Client
	editor *lineeditor.Editor
	hist   *history.Ring
	reg    *registry.Registry
	vars   *vars.Store
	sess   *session

	stateDir  string
	stateEnv  string
	lookupEnv func(string) (string, bool)

	state State
}

// New builds a Shell and its command table.
func New(cfg Config) (*Shell, error) {
	if cfg.In == nil || cfg.Out == nil {
		return nil, errors.New("shell: input and output are required")
	}
	if cfg.Client == nil {
		return nil, errors.New("shell: no API client")
	}
	if cfg.Err == nil {
		cfg.Err = cfg.Out
	}
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	if cfg.StateEnv == "" {
		cfg.StateEnv = DefaultStateEnv
	}
	if cfg.LookupEnv == nil {
		cfg.LookupEnv = os.LookupEnv
	}

	s := &Shell{
		out:       cfg.Out,
		errOut:    cfg.Err,
		errSty:    lipgloss.NewRenderer(cfg.Err).NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		client:    cfg.Client,
		hist:      history.New(cfg.HistorySize),
		vars:      vars.New(),
		sess:      newSession(cfg.Prompt),
		stateDir:  cfg.StateDir,
		stateEnv:  cfg.StateEnv,
		lookupEnv: cfg.LookupEnv,
	}
	opts := []lineeditor.Option{
		lineeditor.WithHistory(s.hist),
		lineeditor.WithPrompt(s.sess.Prompt),
	}
	if cfg.Terminal != nil {
		opts = append(opts, lineeditor.WithTerminal(cfg.Terminal))
	}
	s.editor = lineeditor.New(cfg.In, cfg.Out, opts...)

	reg, err := s.commands().Build(cfg.Out)
	if err != nil {
		return nil, err
	}
	s.reg = reg
	return s, nil
}

// State returns where the loop currently is.
func (s *Shell) State() State { return s.state }

// Vars exposes the variable store.
func (s *Shell) Vars() *vars.Store { return s.vars }

// History exposes the lines entered so far.
func (s *Shell) History() *history.Ring { return s.hist }

// LoggedIn reports whether the session is signed in.
func (s *Shell) LoggedIn() bool { return s.sess.LoggedIn() }

// Prompt returns the prompt currently shown.
func (s *Shell) Prompt() string { return s.sess.Prompt() }

// Run loops until the user quits, the input ends or ctx is cancelled.
// It returns nil when the session ended normally and ctx.Err() on
// cancellation. A broken input or output stream is returned as an error.
func (s *Shell) Run(ctx context.Context) error {
	if err := s.catchall(ctx); err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.state = Prompting
		if _, err := io.WriteString(s.out, s.sess.Prompt()); err != nil {
			return fmt.Errorf("write prompt: %w", err)
		}

		s.state = Reading
		line, err := s.editor.ReadLine(true)
		if errors.Is(err, lineeditor.ErrEndOfTransmission) {
			s.state = Terminated
			return nil
		}
		if err != nil {
			return err
		}
		s.hist.Append(line)

		s.state = Dispatching
		if s.dispatch(ctx, line) {
			s.state = Terminated
			return nil
		}
	}
}

// dispatch runs one line and reports whether the session has to end.
func (s *Shell) dispatch(ctx context.Context, line string) (stop bool) {
	defer func() {
		if r := recover(); r != nil {
			s.report(fmt.Sprint(r), string(debug.Stack()))
			stop = false
		}
	}()

	outcome, err := s.reg.Dispatch(ctx, line, s.sess)
	logging.Debugf("dispatch %q: %s", firstWord(line), outcome)
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrQuit), errors.Is(err, lineeditor.ErrEndOfTransmission):
		return true
	}
	s.report(err.Error(), errorTrace(err))
	return false
}

// report writes a failure caught at the dispatch boundary.
func (s *Shell) report(msg, trace string) {
	logging.Errorf("command failed: %s", msg)
	_, _ = fmt.Fprintln(s.errOut, s.errSty.Render(i18n.T("shell.error", msg)))
	_, _ = fmt.Fprintln(s.errOut, strings.TrimRight(trace, "\n"))
}

// errorTrace lists every layer of a wrapped error, outermost first.
func errorTrace(err error) string {
	var b strings.Builder
	for e := err; e != nil; e = errors.Unwrap(e) {
		fmt.Fprintf(&b, "  %T: %v\n", e, e)
	}
	return b.String()
}

func firstWord(line string) string {
	if f := strings.Fields(line); len(f) > 0 {
		return f[0]
	}
	return ""
}

func (s *Shell) println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Shell) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

// session holds the login state. It is the registry's gate.
type session struct {
	base     string
	prompt   string
	user     string
	loggedIn bool
}

func newSession(prompt string) *session {
	return &session{base: prompt, prompt: prompt}
}

func (s *session) LoggedIn() bool { return s.loggedIn }

func (s *session) Prompt() string { return s.prompt }

func (s *session) signIn(user string) {
	s.user = user
	s.loggedIn = true
	s.prompt = user + "@" + s.base
}

func (s *session) signOut() {
	s.user = ""
	s.loggedIn = false
	s.prompt = s.base
}
