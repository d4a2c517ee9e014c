package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/useradmin/internal/common"
)

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	return a.login(ctx, args)
}

// login prompts for the missing credentials and logs in.
func (a *App) login(ctx context.Context, args []string) error {
	var email string
	if len(args) > 0 {
		email = args[0]
	} else {
		var err error
		if email, err = GetSimpleText(a.reader, "Email", a.out); err != nil {
			return err
		}
	}

	password, err := GetPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, email, password); err != nil {
		return err
	}
	u, _ := a.session.User()
	fmt.Fprintf(a.out, "Logged in as %s (%s).\n", u.Name, u.Role)
	return nil
}

func (a *App) cmdLogout(ctx context.Context, _ []string) error {
	if !a.session.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	a.session.SignOut(ctx)
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) cmdWhoAmI(_ context.Context, _ []string) error {
	u, ok := a.session.User()
	if !ok {
		return nil
	}
	renderUser(a.out, u)
	return nil
}
