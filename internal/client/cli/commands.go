package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/useradmin/internal/client/guard"
)

var (
	errUsage         = errors.New("wrong arguments")
	errAdminRequired = errors.New("only administrators can do that")
)

type command struct {
	name      string
	aliases   []string
	usage     string
	help      string
	protected bool
	admin     bool
	run       guard.Command
}

func (a *App) commands() []command {
	return []command{
		{name: "login", usage: "login [email]", help: "log in", run: a.cmdLogin},
		{name: "logout", help: "log out and forget the stored token", run: a.cmdLogout},
		{name: "whoami", help: "show the logged-in user", protected: true, run: a.cmdWhoAmI},
		{name: "list", aliases: []string{"l", "ls"}, usage: "list [-page N] [-limit N]", help: "list users", protected: true, run: a.cmdList},
		{name: "next", aliases: []string{"n"}, help: "next page", protected: true, run: a.cmdNext},
		{name: "prev", aliases: []string{"p"}, help: "previous page", protected: true, run: a.cmdPrev},
		{name: "first", help: "first page", protected: true, run: a.cmdFirst},
		{name: "last", help: "last page", protected: true, run: a.cmdLast},
		{name: "page", usage: "page N", help: "go to page N", protected: true, run: a.cmdPage},
		{name: "limit", usage: "limit N", help: "users per page (5, 10, 25, 50, 100)", protected: true, run: a.cmdLimit},
		{name: "show", aliases: []string{"get"}, usage: "show <id>", help: "show one user", protected: true, run: a.cmdShow},
		{name: "add", help: "create a user", protected: true, admin: true, run: a.cmdAdd},
		{name: "edit", usage: "edit <id>", help: "edit a user", protected: true, admin: true, run: a.cmdEdit},
		{name: "delete", aliases: []string{"rm"}, usage: "delete <id> [-y]", help: "delete a user", protected: true, admin: true, run: a.cmdDelete},
		{name: "stats", help: "API call statistics of this run", run: a.cmdStats},
	}
}

func (a *App) lookup(name string) (command, bool) {
	for _, c := range a.commands() {
		if c.name == name {
			return c, true
		}
		for _, al := range c.aliases {
			if al == name {
				return c, true
			}
		}
	}
	return command{}, false
}

// Exec runs one command by name. Protected commands go through the guard.
func (a *App) Exec(ctx context.Context, name string, args []string) error {
	c, ok := a.lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownCommand, name)
	}
	run := c.run
	if c.admin {
		run = a.requireAdmin(run)
	}
	if c.protected {
		run = a.guard.Protect(run)
	}
	err := run(ctx, args)
	if errors.Is(err, errUsage) {
		usage := c.usage
		if usage == "" {
			usage = c.name
		}
		return fmt.Errorf("usage: %s", usage)
	}
	return err
}

func (a *App) requireAdmin(next guard.Command) guard.Command {
	return func(ctx context.Context, args []string) error {
		if !a.session.IsAdmin() {
			return errAdminRequired
		}
		return next(ctx, args)
	}
}

func (a *App) helpText() string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Available commands:")
	loggedIn := a.isLoggedIn()
	for _, c := range a.commands() {
		if c.protected && !loggedIn {
			continue
		}
		if c.admin && !a.session.IsAdmin() {
			continue
		}
		usage := c.usage
		if usage == "" {
			usage = c.name
		}
		fmt.Fprintf(tw, "  %s\t%s\n", usage, c.help)
	}
	fmt.Fprintf(tw, "  %s\t%s\n", "help", "show this help")
	fmt.Fprintf(tw, "  %s\t%s\n", "exit", "leave the program")
	_ = tw.Flush()
	return b.String()
}
