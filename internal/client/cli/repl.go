package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/sundaram/internal/client/client"
	"github.com/dmitrijs2005/sundaram/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	ChangePassword(ctx context.Context, args []string) error
	Generate(ctx context.Context, args []string) error
	Current(ctx context.Context, args []string) error
	ClearCurrent(ctx context.Context, args []string) error
	SaveParams(ctx context.Context, args []string) error
	ListSaved(ctx context.Context, args []string) error
	DeleteSaved(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error
	ClearHistory(ctx context.Context, args []string) error
}

type command struct {
	name  string
	usage string
	// session marks commands that need a logged in user.
	session bool
	run     func(ctx context.Context, args []string) error
}

func commandTable(a execIface) []command {
	return []command{
		{"register", "register [login] [email]", false, a.Register},
		{"login", "login [login]", false, a.Login},
		{"generate", "generate [n] - primes up to n", true, a.Generate},
		{"current", "current - show the current result", true, a.Current},
		{"clear", "clear - delete the current result", true, a.ClearCurrent},
		{"save", "save [name] [n] - save search params", true, a.SaveParams},
		{"saved", "saved - list saved params", true, a.ListSaved},
		{"unsave", "unsave [name] - delete saved params", true, a.DeleteSaved},
		{"history", "history - show the request history", true, a.History},
		{"clearhistory", "clearhistory - delete the request history", true, a.ClearHistory},
		{"passwd", "passwd - change the password", true, a.ChangePassword},
		{"logout", "logout", true, a.Logout},
	}
}

// describe turns a command error into the line shown to the user.
func describe(err error) string {
	switch {
	case errors.Is(err, errCancelled):
		return "Cancelled"
	case errors.Is(err, client.ErrUnavailable):
		return "Error: server unavailable, try again later"
	case errors.Is(err, client.ErrNotLoggedIn):
		return "Error: not logged in"
	case errors.Is(err, common.ErrorUnauthorized):
		return "Error: " + common.Message(err) + " (log in again)"
	default:
		return "Error: " + common.Message(err)
	}
}

// runREPL reads commands line by line from reader and dispatches them to a.
// The first token is the command, the rest are its arguments; missing
// arguments are prompted for by the command itself. The loop ends on EOF,
// "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	table := commandTable(a)
	byName := make(map[string]command, len(table))
	for _, c := range table {
		byName[c.name] = c
	}

	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("sundaram %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]

		switch name {
		case "help":
			loggedIn := a.isLoggedIn()
			printlnFn("Available commands:")
			for _, c := range table {
				if c.session == loggedIn {
					printlnFn("  " + c.usage)
				}
			}
			printlnFn("  help, exit")
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		c, ok := byName[name]
		if !ok {
			printlnFn("Unknown command:", name)
			continue
		}
		if c.session && !a.isLoggedIn() {
			printlnFn("Please log in first")
			continue
		}
		if err := c.run(ctx, args); err != nil {
			printlnFn(describe(err))
		}
	}
}
