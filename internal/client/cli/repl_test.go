package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	calls []string
	args  [][]string
}

func (f *fakeExec) record(name string, args ...string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return nil
}

func (f *fakeExec) Home(context.Context) error { return f.record("home") }
func (f *fakeExec) Open(_ context.Context, r string) error {
	return f.record("open", r)
}
func (f *fakeExec) Refresh(context.Context) error { return f.record("refresh") }
func (f *fakeExec) Add(context.Context) error     { return f.record("add") }
func (f *fakeExec) Edit(_ context.Context, key []string) error {
	return f.record("edit", key...)
}
func (f *fakeExec) Set(_ context.Context, field, value string) error {
	return f.record("set", field, value)
}
func (f *fakeExec) Save(context.Context) error   { return f.record("save") }
func (f *fakeExec) Cancel(context.Context) error { return f.record("cancel") }
func (f *fakeExec) Delete(_ context.Context, key []string) error {
	return f.record("delete", key...)
}
func (f *fakeExec) Login(_ context.Context, args []string) error {
	return f.record("login", args...)
}
func (f *fakeExec) Logout(context.Context) error { return f.record("logout") }
func (f *fakeExec) WhoAmI(context.Context) error { return f.record("whoami") }

// silence replaces printlnFn and collects the printed lines.
func silence(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	silence(t)

	input := strings.Join([]string{
		"help",
		"home",
		"open agencies",
		"list",
		"add",
		"set city   New   York ",
		"set productYear",
		"save",
		"edit 2",
		"cancel",
		"rm 7 3",
		"login 0012345678 0912",
		"whoami",
		"logout",
		"foobar",
		"exit",
		"home",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{
		"home", "open", "refresh", "add", "set", "set", "save",
		"edit", "cancel", "delete", "login", "whoami", "logout",
	}, exec.calls)
	assert.Equal(t, []string{"city", "New   York"}, exec.args[4])
	assert.Equal(t, []string{"productYear", ""}, exec.args[5])
	assert.Equal(t, []string{"7", "3"}, exec.args[9])
	assert.Equal(t, []string{"0012345678", "0912"}, exec.args[10])
}

func TestRunREPL_UsageErrorsAndEOF(t *testing.T) {
	lines := silence(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(x)" },
		bufio.NewReader(strings.NewReader("open\nedit\ndelete\nset\n\nwhoami")))

	assert.Equal(t, []string{"whoami"}, exec.calls)
	assert.Contains(t, *lines, "Usage: open <resource>")
	assert.Contains(t, *lines, "Usage: edit <key...>")
	assert.Contains(t, *lines, "sellingcar (x)>")
}

func TestRunREPL_StopsOnCanceledContext(t *testing.T) {
	silence(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, bufio.NewReader(strings.NewReader("home\n")))
	assert.Empty(t, exec.calls)
}

func TestRestAfter(t *testing.T) {
	tests := []struct {
		line string
		n    int
		want string
	}{
		{"set city Tabriz\n", 2, "Tabriz"},
		{"  set   city  a  b \n", 2, "a  b"},
		{"set city", 2, ""},
		{"set\tcity\tx", 2, "x"},
		{"one", 0, "one"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, restAfter(tt.line, tt.n), tt.line)
	}
}
