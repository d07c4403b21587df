package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jain-bhavna/recipe-ai-app/internal/buildinfo"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/config"
	"github.com/jain-bhavna/recipe-ai-app/internal/logging"
	"github.com/jain-bhavna/recipe-ai-app/internal/ui"
)

// NewRootCommand builds the command tree. Without a subcommand the
// interactive shell starts.
func NewRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	var app *App

	// withApp runs fn with the App built in PersistentPreRunE and closes it
	// afterwards. Cobra skips post-run hooks when RunE fails.
	withApp := func(fn func(ctx context.Context, a *App, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			defer func() {
				if err := app.Close(); err != nil {
					fmt.Fprintln(errOut, ui.FormatWarning("close: "+err.Error()))
				}
			}()
			return fn(cmd.Context(), app, args)
		}
	}

	root := &cobra.Command{
		Use:           "recipeai",
		Short:         "Recognize dishes from food photos",
		Long:          "recipe-ai client: sign in, pick a food photo and let the server name the dish.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsApp(cmd) {
				return nil
			}
			cfg, err := config.LoadConfig(cmd.Flags())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log := logging.New(errOut, cfg.LogLevel)
			app, err = NewApp(cmd.Context(), cfg, in, out, log)
			return err
		},
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error { return a.Shell(ctx) }),
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "shell",
			Short: "Start the interactive shell",
			Args:  cobra.NoArgs,
			RunE:  withApp(func(ctx context.Context, a *App, _ []string) error { return a.Shell(ctx) }),
		},
		&cobra.Command{
			Use:   "register",
			Short: "Create an account",
			Args:  cobra.NoArgs,
			RunE:  withApp(func(ctx context.Context, a *App, _ []string) error { return a.Register(ctx) }),
		},
		&cobra.Command{
			Use:   "login",
			Short: "Sign in and store the session",
			Args:  cobra.NoArgs,
			RunE:  withApp(func(ctx context.Context, a *App, _ []string) error { return a.Login(ctx) }),
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Forget the stored session",
			Args:  cobra.NoArgs,
			RunE:  withApp(func(ctx context.Context, a *App, _ []string) error { return a.Logout(ctx) }),
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Show the stored session",
			Args:  cobra.NoArgs,
			RunE:  withApp(func(ctx context.Context, a *App, _ []string) error { return a.Whoami(ctx) }),
		},
		&cobra.Command{
			Use:   "me",
			Short: "Show the current user as seen by the server",
			Args:  cobra.NoArgs,
			RunE:  withApp(func(ctx context.Context, a *App, _ []string) error { return a.Me(ctx) }),
		},
		&cobra.Command{
			Use:   "detect <file>",
			Short: "Detect the dish in a food photo",
			Args:  cobra.ExactArgs(1),
			RunE:  withApp(func(ctx context.Context, a *App, args []string) error { return a.DetectFile(ctx, args[0]) }),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				buildinfo.PrintBuildData(cmd.OutOrStdout())
				return nil
			},
		},
	)
	return root
}

// needsApp reports whether cmd runs through withApp. Built-in help and
// completion commands and version never open the database.
func needsApp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd, "completion":
			return false
		}
	}
	return true
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	root := NewRootCommand(in, out, errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var reported reportedError
	if !errors.As(err, &reported) {
		fmt.Fprintln(errOut, ui.FormatError(err.Error()))
	}
	return 1
}
