package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Home(ctx context.Context) error
	Open(ctx context.Context, resource string) error
	Refresh(ctx context.Context) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, key []string) error
	Set(ctx context.Context, field, value string) error
	Save(ctx context.Context) error
	Cancel(ctx context.Context) error
	Delete(ctx context.Context, key []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
}

const helpText = `Available commands:
  home                      list resource sections
  open <resource>           show a resource list
  list | refresh            reload the open list
  add                       start a new record
  edit <key...>             edit the record with the given key
  set <field> <value...>    change a draft field (no value clears it)
  save                      submit the draft
  cancel                    discard the draft
  delete <key...>           delete the record with the given key
  login [nationalId phone]  log in
  logout | whoami           session commands
  exit | quit               leave the program`

// runREPL starts a simple read–eval–print loop for the SellingCar client.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF, on context cancellation, or when the user
// types "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("sellingcar %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help", "?":
			printlnFn(helpText)

		case "home":
			_ = a.Home(ctx)

		case "open":
			if len(args) != 1 {
				printlnFn("Usage: open <resource>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "l", "list", "refresh":
			_ = a.Refresh(ctx)

		case "add", "new":
			_ = a.Add(ctx)

		case "edit":
			if len(args) == 0 {
				printlnFn("Usage: edit <key...>")
				continue
			}
			_ = a.Edit(ctx, args)

		case "set":
			if len(args) == 0 {
				printlnFn("Usage: set <field> <value...>")
				continue
			}
			_ = a.Set(ctx, args[0], restAfter(line, 2))

		case "save", "submit":
			_ = a.Save(ctx)

		case "cancel":
			_ = a.Cancel(ctx)

		case "delete", "rm":
			if len(args) == 0 {
				printlnFn("Usage: delete <key...>")
				continue
			}
			_ = a.Delete(ctx, args)

		case "login":
			_ = a.Login(ctx, args)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

// restAfter returns line without its first n whitespace-separated tokens,
// keeping the inner spacing of the remainder.
func restAfter(line string, n int) string {
	s := strings.TrimSpace(line)
	for i := 0; i < n && s != ""; i++ {
		if j := strings.IndexAny(s, " \t"); j >= 0 {
			s = strings.TrimLeft(s[j:], " \t")
		} else {
			s = ""
		}
	}
	return s
}
