package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/client"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/errnorm"
	"github.com/jain-bhavna/recipe-ai-app/internal/ui"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	println(args ...any)
	isLoggedIn(ctx context.Context) bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	Whoami(ctx context.Context) error
	Select(ctx context.Context, args []string) error
	Drop(ctx context.Context, args []string) error
	Detect(ctx context.Context) error
	Replace(ctx context.Context) error
	Status(ctx context.Context) error
}

const (
	publicHelp    = "Available commands: register, login, exit"
	protectedHelp = "Available commands: me, whoami, select <path>, drop <path> <media-type>, detect, replace, status, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the recipe-ai CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Command prompts read from the same reader.
// The loop exits on EOF, on context cancellation, or when the user types
// "exit" or "quit".
//
// Errors returned by command handlers are not printed here; handlers report
// their own failures so one bad command never ends the session.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		prompt := "recipe-ai> "
		if s := statusFn(); s != "" {
			prompt = fmt.Sprintf("recipe-ai %s> ", s)
		}
		a.println(prompt)

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
		case "help":
			if a.isLoggedIn(ctx) {
				a.println(protectedHelp)
			} else {
				a.println(publicHelp)
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "me":
			_ = a.Me(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "select":
			_ = a.Select(ctx, args)

		case "drop":
			_ = a.Drop(ctx, args)

		case "detect":
			_ = a.Detect(ctx)

		case "replace":
			_ = a.Replace(ctx)

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			a.println("Bye!")
			return

		default:
			a.println("Unknown command:", cmd)
		}
	}
}

// Shell greets the user and runs the REPL until exit.
func (a *App) Shell(ctx context.Context) error {
	a.println("Welcome to recipe-ai (type 'help' for commands)")
	if a.isLoggedIn(ctx) {
		_ = a.protected(ctx, "home", func(ctx context.Context) error {
			p, err := a.authService.Profile(ctx)
			if errors.Is(err, client.ErrUnauthorized) {
				return err
			}
			if err != nil {
				a.println(ui.FormatWarning(errnorm.Message(err)))
				return nil
			}
			a.println(fmt.Sprintf("Hello, %s!", p.Name))
			return nil
		})
	}

	runREPL(ctx, a, func() string { return a.status(ctx) }, a.reader)
	return nil
}
