// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

package shell

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/paradrop/pdcli/client"
	"github.com/paradrop/pdcli/internal/testutil"
)

const catchallText = `"help" for a list of all commands`

type harness struct {
	sh   *Shell
	out  *bytes.Buffer
	errs *bytes.Buffer
	term *testutil.FakeTerminal
}

func newMemoryBackend() *client.MemoryClient {
	return client.NewMemoryClient("dev-1").AddUser("alice", "secret").AddAP("ap-1", "home")
}

func newHarness(t *testing.T, in io.Reader, c client.Client, mods ...func(*Config)) *harness {
	t.Helper()
	h := &harness{out: &bytes.Buffer{}, errs: &bytes.Buffer{}, term: testutil.NewFakeTerminal()}
	cfg := Config{
		In:        in,
		Out:       h.out,
		Err:       h.errs,
		Terminal:  h.term,
		Client:    c,
		StateDir:  t.TempDir(),
		LookupEnv: func(string) (string, bool) { return "", false },
	}
	for _, m := range mods {
		m(&cfg)
	}
	sh, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.sh = sh
	return h
}

func (h *harness) run(t *testing.T) {
	t.Helper()
	if err := h.sh.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.sh.State() != Terminated {
		t.Fatalf("state after Run = %s", h.sh.State())
	}
	if h.term.Mode != "cooked" {
		t.Fatalf("terminal left in mode %q", h.term.Mode)
	}
}

func (h *harness) expect(t *testing.T, wants ...string) {
	t.Helper()
	out := h.out.String()
	for _, w := range wants {
		if !strings.Contains(out, w) {
			t.Fatalf("output misses %q:\n%s", w, out)
		}
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{Out: io.Discard, Client: newMemoryBackend()}); err == nil {
		t.Fatalf("expected error without input")
	}
	if _, err := New(Config{In: strings.NewReader(""), Out: io.Discard}); err == nil {
		t.Fatalf("expected error without client")
	}
}

func TestRun_CatchallThenQuit(t *testing.T) {
	h := newHarness(t, testutil.Input("quit"), newMemoryBackend())
	h.run(t)
	if !strings.HasPrefix(h.out.String(), catchallText+"\n"+DefaultPrompt+"quit\r\n") {
		t.Fatalf("unexpected transcript: %q", h.out.String())
	}
	if got := h.sh.History().Entries(); !slices.Equal(got, []string{"quit"}) {
		t.Fatalf("history = %q", got)
	}
}

func TestRun_ExitAlias(t *testing.T) {
	h := newHarness(t, testutil.Input("exit"), newMemoryBackend())
	h.run(t)
}

func TestRun_EndOfTransmission(t *testing.T) {
	h := newHarness(t, bytes.NewReader([]byte("apL\x04never")), newMemoryBackend())
	h.run(t)
	if h.sh.History().Len() != 0 {
		t.Fatalf("aborted line reached the history")
	}
}

func TestRun_EndOfInput(t *testing.T) {
	h := newHarness(t, strings.NewReader(""), newMemoryBackend())
	h.run(t)
}

func TestRun_InterruptKeepsSession(t *testing.T) {
	in := bytes.NewReader([]byte("half a line\x03quit\r"))
	h := newHarness(t, in, newMemoryBackend())
	h.run(t)
	h.expect(t, "Use ^D to exit\r\n")
	if got := h.sh.History().Entries(); !slices.Equal(got, []string{"", "quit"}) {
		t.Fatalf("history = %q", got)
	}
}

func TestRun_ContextCancelled(t *testing.T) {
	h := newHarness(t, testutil.Input("get x"), newMemoryBackend())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.sh.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
}

func TestRun_ReadFailureIsReturned(t *testing.T) {
	boom := errors.New("tty gone")
	h := newHarness(t, testutil.ErrReader{Err: boom}, newMemoryBackend())
	if err := h.sh.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Run = %v", err)
	}
}

func TestUnknownLine_RunsCatchall(t *testing.T) {
	h := newHarness(t, testutil.Input("frobnicate", "quit"), newMemoryBackend())
	h.run(t)
	if n := strings.Count(h.out.String(), catchallText); n != 2 {
		t.Fatalf("catch-all printed %d times:\n%s", n, h.out.String())
	}
}

func TestAuthGate(t *testing.T) {
	mem := newMemoryBackend()
	calls := 0
	c := client.NewMockClient(mem, client.MockClientOverwrites{
		ListAPs: func(ctx context.Context) ([]json.RawMessage, error) {
			calls++
			return mem.ListAPs(ctx)
		},
	})

	h := newHarness(t, testutil.Input("apList", "quit"), c)
	h.run(t)
	h.expect(t, "Must be logged in to use this function\n")
	if calls != 0 {
		t.Fatalf("handler ran %d times while logged out", calls)
	}

	h = newHarness(t, testutil.Input("apList", "login alice", "secret", "apList", "quit"), c)
	h.run(t)
	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
	h.expect(t, "Password: ", "alice@pd> ", "Setting 'aps' to the list below:")
	if strings.Contains(h.out.String(), "secret") {
		t.Fatalf("password echoed:\n%s", h.out.String())
	}
	if !h.sh.LoggedIn() {
		t.Fatalf("quit must not require logout")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness(t, testutil.Input("login alice", "guess", "quit"), newMemoryBackend())
	h.run(t)
	h.expect(t, "Unable to sign in as alice")
	if h.sh.LoggedIn() || h.sh.Prompt() != DefaultPrompt {
		t.Fatalf("session opened with a wrong password")
	}
}

func TestLogin_EndOfTransmissionTerminates(t *testing.T) {
	in := bytes.NewReader([]byte("login alice\rsec\x04"))
	h := newHarness(t, in, newMemoryBackend())
	h.run(t)
	if h.sh.LoggedIn() {
		t.Fatalf("logged in without a password")
	}
}

func TestLogout(t *testing.T) {
	mem := newMemoryBackend()
	h := newHarness(t, testutil.Input("login alice", "secret", "logout", "apList", "quit"), mem)
	h.run(t)
	h.expect(t, "Signed out", "Must be logged in to use this function")
	if h.sh.LoggedIn() || mem.LoggedIn() {
		t.Fatalf("still logged in after logout")
	}
	if h.sh.Prompt() != DefaultPrompt {
		t.Fatalf("prompt = %q", h.sh.Prompt())
	}
}

func TestHandlerPanic_IsReported(t *testing.T) {
	c := client.NewMockClient(newMemoryBackend(), client.MockClientOverwrites{
		ListAPs: func(context.Context) ([]json.RawMessage, error) { panic("kaboom") },
	})
	h := newHarness(t, testutil.Input("login alice", "secret", "apList", "get x", "quit"), c)
	h.run(t)

	errs := h.errs.String()
	if !strings.Contains(errs, "!! Error: kaboom") || !strings.Contains(errs, "goroutine") {
		t.Fatalf("panic report missing or without stack:\n%s", errs)
	}
	h.expect(t, "x not defined")
}

func TestHandlerError_IsReported(t *testing.T) {
	c := client.NewMockClient(newMemoryBackend(), client.MockClientOverwrites{
		ListAPs: func(context.Context) ([]json.RawMessage, error) {
			return nil, errors.New("network down")
		},
	})
	h := newHarness(t, testutil.Input("login alice", "secret", "apList", "get x", "quit"), c)
	h.run(t)

	errs := h.errs.String()
	if !strings.Contains(errs, "!! Error: network down") || !strings.Contains(errs, "*errors.errorString") {
		t.Fatalf("error report:\n%s", errs)
	}
	h.expect(t, "x not defined")
}

func TestHelp(t *testing.T) {
	h := newHarness(t, testutil.Input("help set", "help zzz", "set -h", "clear -?", "help", "quit"), newMemoryBackend())
	h.run(t)
	h.expect(t,
		"     set : Set <name>=<value> - holds onto the value in this variable, used for different functions\n"+
			" apReset : Fully reset the AP back to defaults\n",
		"No functions match that input\n",
		"\nSet <name>=<value> - holds onto the value in this variable, used for different functions\n",
		"No help available for clear\n",
		"chuteUnfreeze : Unfreeze the chute, start running\n",
	)
}

func TestClear(t *testing.T) {
	h := newHarness(t, testutil.Input("clear", "quit"), newMemoryBackend())
	h.run(t)
	h.expect(t, "\x1b[2J\x1b[H")
}

func TestHistory_Bounded(t *testing.T) {
	lines := make([]string, 0, 22)
	for i := range 21 {
		lines = append(lines, "get v"+string(rune('a'+i)))
	}
	lines = append(lines, "quit")
	h := newHarness(t, testutil.Input(lines...), newMemoryBackend(), func(c *Config) { c.HistorySize = 20 })
	h.run(t)
	got := h.sh.History().Entries()
	if len(got) != 20 || got[0] != "get vc" || got[19] != "quit" {
		t.Fatalf("history = %q", got)
	}
}

func TestHistory_UpRecallsPreviousLine(t *testing.T) {
	in := bytes.NewReader([]byte("set a=1\r\x1b[A\x1b[A\rquit\r"))
	h := newHarness(t, in, newMemoryBackend())
	h.run(t)
	if got := h.sh.History().Entries(); !slices.Equal(got, []string{"set a=1", "set a=1", "quit"}) {
		t.Fatalf("history = %q", got)
	}
}

func TestState_String(t *testing.T) {
	for st, want := range map[State]string{Prompting: "prompting", Reading: "reading", Dispatching: "dispatching", Terminated: "terminated", State(9): "State(9)"} {
		if st.String() != want {
			t.Fatalf("%d.String() = %q", int(st), st.String())
		}
	}
}
