package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/client"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/credentials"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/errnorm"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/services"
	"github.com/jain-bhavna/recipe-ai-app/internal/ui"
)

// Register prompts for name, email and password and creates the account.
// Field problems are listed one per line; other failures are shown as a
// single normalized message.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Full name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	if len(password) > 0 {
		_, label := services.PasswordStrength(password)
		a.println(ui.FormatMuted("Password strength: " + label))
	}

	if err := a.authService.Register(ctx, name, email, password); err != nil {
		return a.formError(err)
	}

	a.println(ui.FormatSuccess("Registration successful! Run 'login' to sign in."))
	return nil
}

// Login prompts for credentials, stores the session and greets the user by
// the name the server reports for the new token.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	s, err := a.authService.Login(ctx, email, password)
	if err != nil {
		return a.formError(err)
	}

	a.workflow.Replace(ctx)
	return a.protected(ctx, "home", func(ctx context.Context) error {
		name := s.Name
		if p, err := a.authService.Profile(ctx); err == nil {
			name = p.Name
		} else if errors.Is(err, client.ErrUnauthorized) {
			return err
		} else {
			a.log.Warn(ctx, "profile unavailable", "err", err)
		}
		a.println(ui.FormatSuccess(fmt.Sprintf("Welcome, %s!", name)))
		return nil
	})
}

// Logout clears the stored session and any selected image.
func (a *App) Logout(ctx context.Context) error {
	return a.protected(ctx, "logout", func(ctx context.Context) error {
		a.workflow.Replace(ctx)
		if err := a.authService.Logout(ctx); err != nil {
			return a.fail(errnorm.Message(err))
		}
		a.println(ui.FormatSuccess("Logged out."))
		return nil
	})
}

// Me shows the current user as reported by the server.
func (a *App) Me(ctx context.Context) error {
	return a.protected(ctx, "me", func(ctx context.Context) error {
		p, err := a.authService.Profile(ctx)
		if err != nil {
			if errors.Is(err, client.ErrUnauthorized) {
				return err
			}
			return a.fail(errnorm.Message(err))
		}
		a.println(fmt.Sprintf("%s <%s>", p.Name, p.Email))
		return nil
	})
}

// Whoami shows the locally stored session without contacting the server.
func (a *App) Whoami(ctx context.Context) error {
	return a.protected(ctx, "whoami", func(ctx context.Context) error {
		s, err := a.store.Read(ctx)
		if err != nil {
			return a.fail(errnorm.Message(err))
		}
		a.println(fmt.Sprintf("%s <%s>", s.Name, s.Email))
		if exp, ok := credentials.TokenExpiry(s.Token); ok {
			a.println(ui.FormatMuted("token expires " + exp.UTC().Format(time.RFC1123)))
		}
		return nil
	})
}

// formError prints a form submission failure. Per-field messages come from
// local validation or from the server's validation detail.
func (a *App) formError(err error) error {
	var verr *services.ValidationError
	fields := errnorm.Fields(err)
	if errors.As(err, &verr) {
		fields = verr.Fields
	}

	if len(fields) == 0 {
		return a.fail(errnorm.Message(err))
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		a.println(ui.FormatError(k + ": " + fields[k]))
	}
	return reportedError{err}
}
