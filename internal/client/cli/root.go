package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/dmitrijs2005/useradmin/internal/buildinfo"
	"github.com/dmitrijs2005/useradmin/internal/client/config"
	"github.com/dmitrijs2005/useradmin/internal/logging"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the useradmin command tree. Without a subcommand
// it starts the REPL.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "useradmin",
		Short:         "Administer users of a remote user-management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, true, func(ctx context.Context, a *App) error {
				a.Run(ctx)
				return nil
			})
		},
	}
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newLoginCommand(),
		oneShot("logout", "Log out and forget the stored token", cobra.NoArgs, "logout"),
		newUsersCommand(),
		oneShot("stats", "Show API call statistics of this run", cobra.NoArgs, "stats"),
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				buildinfo.PrintBuildData(cmd.OutOrStdout())
			},
		},
	)
	return root
}

func newLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login [email]",
		Short: "Log in and store the session token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execOnce(cmd, "login", args)
		},
	}
}

func newUsersCommand() *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}

	var page, limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List one page of users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var args []string
			if cmd.Flags().Changed("page") {
				args = append(args, "-page", strconv.Itoa(page))
			}
			if cmd.Flags().Changed("limit") {
				args = append(args, "-limit", strconv.Itoa(limit))
			}
			return execOnce(cmd, "list", args)
		},
	}
	list.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	list.Flags().IntVar(&limit, "limit", 0, "users per page (5, 10, 25, 50 or 100)")

	var yes bool
	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if yes {
				args = append(args, "-y")
			}
			return execOnce(cmd, "delete", args)
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	users.AddCommand(
		list,
		oneShot("get <id>", "Show one user", cobra.ExactArgs(1), "show"),
		oneShot("add", "Create a user interactively", cobra.NoArgs, "add"),
		oneShot("edit <id>", "Edit a user interactively", cobra.ExactArgs(1), "edit"),
		del,
	)
	return users
}

func oneShot(use, short string, args cobra.PositionalArgs, name string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execOnce(cmd, name, args)
		},
	}
}

// execOnce restores the stored session and runs a single REPL command.
func execOnce(cmd *cobra.Command, name string, args []string) error {
	return withApp(cmd, false, func(ctx context.Context, a *App) error {
		a.Start(ctx)
		if err := a.Exec(ctx, name, args); err != nil {
			return fmt.Errorf("%s", userMessage(err))
		}
		return nil
	})
}

func withApp(cmd *cobra.Command, interactive bool, fn func(context.Context, *App) error) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, logging.Options{
		Backend: cfg.Log.Backend,
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
	})
	if err != nil {
		return err
	}

	opts := []AppOption{WithIO(cmd.InOrStdin(), cmd.OutOrStdout()), WithLogger(logger)}
	if interactive {
		opts = append(opts, Interactive())
	}

	ctx := cmd.Context()
	a, err := NewApp(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logger.Warn(ctx, "closing app failed", "error", cerr)
		}
	}()
	return fn(ctx, a)
}
