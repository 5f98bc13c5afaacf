package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	arg   string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	f.calls = append(f.calls, "register")
	return nil
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) WhoAmI(ctx context.Context) error {
	f.calls = append(f.calls, "whoami")
	return nil
}
func (f *fakeExec) Profile(ctx context.Context) error {
	f.calls = append(f.calls, "profile")
	return nil
}
func (f *fakeExec) Passwd(ctx context.Context) error {
	f.calls = append(f.calls, "passwd")
	return nil
}
func (f *fakeExec) List(ctx context.Context, status string) error {
	f.calls = append(f.calls, "list")
	f.arg = status
	return nil
}
func (f *fakeExec) Add(ctx context.Context) error {
	f.calls = append(f.calls, "add")
	return nil
}
func (f *fakeExec) Cancel(ctx context.Context, id string) error {
	f.calls = append(f.calls, "cancel")
	f.arg = id
	return nil
}
func (f *fakeExec) Complete(ctx context.Context, id string) error {
	f.calls = append(f.calls, "complete")
	f.arg = id
	return nil
}
func (f *fakeExec) Delete(ctx context.Context, id string) error {
	f.calls = append(f.calls, "delete")
	f.arg = id
	return nil
}
func (f *fakeExec) Stats(ctx context.Context) error {
	f.calls = append(f.calls, "stats")
	return nil
}

func stubPrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(args ...any) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			if s, ok := a.(string); ok {
				parts = append(parts, s)
			}
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func runScript(t *testing.T, f *fakeExec, commands ...string) {
	t.Helper()
	input := strings.NewReader(strings.Join(commands, "\n") + "\n")
	runREPL(context.Background(), f, func() string { return "" }, bufio.NewScanner(input))
}

func TestRunREPL_Dispatch(t *testing.T) {
	stubPrintln(t)
	f := &fakeExec{}

	runScript(t, f, "login", "list scheduled", "add", "stats", "whoami", "logout", "exit")

	want := []string{"login", "list", "add", "stats", "whoami", "logout"}
	if len(f.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", f.calls, want)
	}
	for i := range want {
		if f.calls[i] != want[i] {
			t.Fatalf("calls[%d] = %q, want %q", i, f.calls[i], want[i])
		}
	}
}

func TestRunREPL_ListPassesStatus(t *testing.T) {
	stubPrintln(t)
	f := &fakeExec{loggedIn: true}

	runScript(t, f, "list cancelled", "exit")

	if f.arg != "cancelled" {
		t.Fatalf("list arg = %q, want %q", f.arg, "cancelled")
	}
}

func TestRunREPL_IDCommandsNeedArgument(t *testing.T) {
	lines := stubPrintln(t)
	f := &fakeExec{loggedIn: true}

	runScript(t, f, "cancel", "complete", "delete", "exit")

	if len(f.calls) != 0 {
		t.Fatalf("no handler should run without an id, got %v", f.calls)
	}
	usages := 0
	for _, l := range *lines {
		if strings.HasPrefix(l, "Usage:") {
			usages++
		}
	}
	if usages != 3 {
		t.Fatalf("want 3 usage hints, got %d (%v)", usages, *lines)
	}
}

func TestRunREPL_IDCommandsForwardArgument(t *testing.T) {
	stubPrintln(t)
	f := &fakeExec{loggedIn: true}

	runScript(t, f, "cancel 42", "exit")

	if len(f.calls) != 1 || f.calls[0] != "cancel" || f.arg != "42" {
		t.Fatalf("calls=%v arg=%q", f.calls, f.arg)
	}
}

func TestRunREPL_UnknownCommand(t *testing.T) {
	lines := stubPrintln(t)
	f := &fakeExec{}

	runScript(t, f, "frobnicate", "exit")

	found := false
	for _, l := range *lines {
		if strings.Contains(l, "Unknown command") {
			found = true
		}
	}
	if !found {
		t.Fatalf("unknown command not reported: %v", *lines)
	}
}

func TestRunREPL_HelpDependsOnLoginState(t *testing.T) {
	lines := stubPrintln(t)
	f := &fakeExec{}

	runScript(t, f, "help", "login", "help", "exit")

	if len(*lines) < 2 {
		t.Fatalf("expected two help lines, got %v", *lines)
	}
	if !strings.Contains((*lines)[0], "register, login") {
		t.Fatalf("logged-out help wrong: %q", (*lines)[0])
	}
	if !strings.Contains((*lines)[1], "list [status]") {
		t.Fatalf("logged-in help wrong: %q", (*lines)[1])
	}
}

func TestRunREPL_EOFExits(t *testing.T) {
	stubPrintln(t)
	f := &fakeExec{}
	input := strings.NewReader("")
	runREPL(context.Background(), f, func() string { return "" }, bufio.NewScanner(input))
	if len(f.calls) != 0 {
		t.Fatalf("no commands expected, got %v", f.calls)
	}
}
