// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

package shell

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/paradrop/pdcli/internal/i18n"
	"github.com/paradrop/pdcli/internal/registry"
	"github.com/paradrop/pdcli/internal/vars"
)

// commands returns the full command table. The order is significant: the
// first pattern that matches a line wins.
func (s *Shell) commands() *registry.Builder {
	b := registry.NewBuilder()

	b.Register("help", `help(.*)`, s.help)
	b.Register("clear", `clear$`, s.clear)
	b.Register("quit", `quit|exit`, s.quit)
	b.Register("set", `set ([^=]+)=(.*)`, s.set, registry.Help(i18n.T("help.set")))
	b.Register("get", `get (.*)`, s.get, registry.Help(i18n.T("help.get")))
	b.Register("delete", `delete (.*)`, s.deleteVar, registry.Help(i18n.T("help.delete")))
	b.Register("save", `save`, s.save, registry.Help(i18n.T("help.save")))
	b.Register("load", `load`, s.load, registry.Help(i18n.T("help.load")))
	b.Register("login", `login (.*)`, s.login, registry.Help(i18n.T("help.login")))
	b.Register("logout", `logout$`, s.logout, registry.Help(i18n.T("help.logout")))

	s.domainCommands(b)

	b.Catchall(func(ctx context.Context, _ ...string) error { return s.catchall(ctx) })
	return b
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func (s *Shell) catchall(context.Context) error {
	s.println(i18n.T("shell.catchall"))
	return nil
}

func (s *Shell) help(_ context.Context, args ...string) error {
	return s.reg.PrintHelps(s.out, arg(args, 0))
}

func (s *Shell) clear(context.Context, ...string) error {
	s.printf("%s%s", ansi.EraseEntireScreen, ansi.CursorHomePosition)
	return nil
}

func (s *Shell) quit(context.Context, ...string) error {
	return ErrQuit
}

// set assigns the right-hand side to a variable or to a path inside one.
func (s *Shell) set(_ context.Context, args ...string) error {
	lhs := strings.TrimSpace(arg(args, 0))
	if !vars.IsReference(lhs) {
		lhs = "@" + lhs
	}
	ref, err := vars.ParseReference(lhs)
	if err != nil {
		s.println(i18n.T("vars.error", err))
		return nil
	}
	v, err := s.vars.Value(arg(args, 1))
	if err != nil {
		s.println(i18n.T("vars.error", err))
		return nil
	}
	if err := s.vars.Assign(ref, v); err != nil {
		s.println(i18n.T("vars.error", err))
	}
	return nil
}

func (s *Shell) get(_ context.Context, args ...string) error {
	name := strings.TrimSpace(arg(args, 0))
	switch {
	case name == "*":
		for _, k := range s.vars.Names() {
			v, _ := s.vars.Get(k)
			s.printf("%s = %s\n", k, v)
		}
	case vars.IsReference(name):
		v, err := s.vars.Value(name)
		if err != nil {
			s.println(i18n.T("vars.error", err))
			return nil
		}
		s.println(vars.Display(v))
	default:
		if v, ok := s.vars.Get(name); ok {
			s.printf("%s = %s\n", name, vars.Display(v))
			return nil
		}
		s.println(i18n.T("vars.not_defined", name))
	}
	return nil
}

func (s *Shell) deleteVar(_ context.Context, args ...string) error {
	name := strings.TrimSpace(arg(args, 0))
	if s.vars.Delete(name) {
		s.println(i18n.T("vars.removed", name))
	} else {
		s.println(i18n.T("vars.delete_not_defined", name))
	}
	return nil
}

// statePath returns where the snapshot lives. fallback is set when neither
// the configured directory nor the environment names one.
func (s *Shell) statePath() (path string, fallback bool) {
	dir := s.stateDir
	if dir == "" {
		dir, _ = s.lookupEnv(s.stateEnv)
	}
	if dir == "" {
		return "./" + vars.StateFile, true
	}
	return filepath.Join(dir, vars.StateFile), false
}

func (s *Shell) save(context.Context, ...string) error {
	path, fallback := s.statePath()
	if fallback {
		s.println(i18n.T("state.save_fallback", s.stateEnv, path))
	}
	if err := s.vars.SaveFile(path); err != nil {
		s.println(i18n.T("state.save_failed", err))
	}
	return nil
}

func (s *Shell) load(context.Context, ...string) error {
	path, fallback := s.statePath()
	if fallback {
		s.println(i18n.T("state.load_fallback", s.stateEnv, path))
	}
	if err := s.vars.LoadFile(path); err != nil {
		s.println(i18n.T("state.load_failed", err))
	}
	return nil
}

// login asks for the password without echo and opens a session.
func (s *Shell) login(ctx context.Context, args ...string) error {
	user := strings.TrimLeft(arg(args, 0), " ")
	s.printf("%s", i18n.T("shell.password_prompt"))
	pw, err := s.editor.ReadLine(false)
	if err != nil {
		return err
	}
	ok, err := s.client.Signin(ctx, user, pw)
	if err != nil {
		return err
	}
	if !ok {
		s.println(i18n.T("shell.login_failed", user))
		return nil
	}
	s.sess.signIn(user)
	return nil
}

func (s *Shell) logout(ctx context.Context, _ ...string) error {
	s.sess.signOut()
	if err := s.client.Signout(ctx); err != nil {
		return err
	}
	s.println(i18n.T("shell.logged_out"))
	return nil
}
