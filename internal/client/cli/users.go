package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/useradmin/internal/client/services"
	"github.com/dmitrijs2005/useradmin/internal/flagx"
)

// cmdList loads and prints a page. -page is 1-based.
func (a *App) cmdList(ctx context.Context, args []string) error {
	page, limit := 0, 0
	rest, err := flagx.ParseIntOptions(args, map[string]*int{"page": &page, "limit": &limit})
	if err != nil || len(rest) > 0 || page < 0 {
		return errUsage
	}
	l, err := a.userList()
	if err != nil {
		return err
	}
	switch {
	case limit != 0:
		err = l.SetPageSize(ctx, limit)
	case page == 0 || !l.View().Loaded:
		err = l.Fetch(ctx)
	}
	if err == nil && page > 0 && page-1 != l.View().PageIndex {
		err = l.GoTo(ctx, page-1)
	}
	return a.showList(l, err)
}

func (a *App) cmdNext(ctx context.Context, _ []string) error {
	return a.navigate(ctx, (*services.UserList).NextPage)
}

func (a *App) cmdPrev(ctx context.Context, _ []string) error {
	return a.navigate(ctx, (*services.UserList).PrevPage)
}

func (a *App) cmdFirst(ctx context.Context, _ []string) error {
	return a.navigate(ctx, (*services.UserList).FirstPage)
}

func (a *App) cmdLast(ctx context.Context, _ []string) error {
	return a.navigate(ctx, (*services.UserList).LastPage)
}

func (a *App) cmdPage(ctx context.Context, args []string) error {
	n, err := intArg(args)
	if err != nil || n < 1 {
		return errUsage
	}
	return a.navigate(ctx, func(l *services.UserList, ctx context.Context) error {
		return l.GoTo(ctx, n-1)
	})
}

func (a *App) cmdLimit(ctx context.Context, args []string) error {
	n, err := intArg(args)
	if err != nil {
		return errUsage
	}
	return a.navigate(ctx, func(l *services.UserList, ctx context.Context) error {
		return l.SetPageSize(ctx, n)
	})
}

// navigate makes sure a page is loaded before moving, so that page bounds
// are known.
func (a *App) navigate(ctx context.Context, move func(*services.UserList, context.Context) error) error {
	l, err := a.userList()
	if err != nil {
		return err
	}
	if !l.View().Loaded {
		if err := l.Fetch(ctx); err != nil {
			return a.showList(l, err)
		}
	}
	return a.showList(l, move(l, ctx))
}

// showList prints the list state after an operation. Fetch failures are
// rendered as part of the list rather than returned.
func (a *App) showList(l *services.UserList, err error) error {
	v := l.View()
	if err != nil && err != v.Err {
		return err
	}
	renderList(a.out, v, a.policy)
	return nil
}

func (a *App) cmdShow(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	u, err := a.api.GetUser(ctx, args[0])
	if err != nil {
		return err
	}
	renderUser(a.out, *u)
	return nil
}

func (a *App) cmdDelete(ctx context.Context, args []string) error {
	var pos []string
	confirmed := false
	for _, arg := range args {
		if arg == "-y" || arg == "--yes" {
			confirmed = true
			continue
		}
		pos = append(pos, arg)
	}
	if len(pos) != 1 {
		return errUsage
	}
	id := pos[0]

	if !confirmed {
		ok, err := Confirm(a.reader, fmt.Sprintf("Delete user %s?", id), a.out)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "Cancelled.")
			return nil
		}
	}

	l, err := a.userList()
	if err != nil {
		return err
	}
	if err := l.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "User deleted.")
	if v := l.View(); v.Loaded {
		renderList(a.out, v, a.policy)
	}
	return nil
}

func intArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errUsage
	}
	return strconv.Atoi(args[0])
}
