package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/useradmin/internal/client/guard"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	helpText() string
	Exec(ctx context.Context, name string, args []string) error
}

var errUnknownCommand = errors.New("unknown command")

// runREPL reads one command per line from in and runs it through a. The
// loop ends on EOF or on "exit"/"quit". Command errors are printed and the
// loop goes on; a refused protected command prints nothing more since the
// guard already handled it.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "useradmin%s> ", prefixSpace(statusFn()))
		line, err := readLine(in)
		if err != nil {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help", "?":
			fmt.Fprint(w, a.helpText())
			continue
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		}

		err = a.Exec(ctx, cmd, args)
		switch {
		case err == nil, errors.Is(err, guard.ErrLoginRequired):
		case errors.Is(err, errUnknownCommand):
			fmt.Fprintln(w, "Unknown command:", cmd)
		default:
			fmt.Fprintln(w, "Error:", userMessage(err))
		}
	}
}

func prefixSpace(s string) string {
	if s == "" {
		return ""
	}
	return " " + s
}
