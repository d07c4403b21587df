// Package guard gates protected views on the presence of a stored token.
//
// It is a navigation aid, not a security boundary: the server still checks
// every bearer token.
package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/client"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/models"
	"github.com/jain-bhavna/recipe-ai-app/internal/logging"
)

// ErrRedirectLogin means the caller must send the user to the login view.
var ErrRedirectLogin = errors.New("login required")

type View interface {
	Name() string
	Protected() bool
	Run(ctx context.Context, s models.Session) error
}

type viewFunc struct {
	name      string
	protected bool
	fn        func(ctx context.Context, s models.Session) error
}

func (v viewFunc) Name() string    { return v.name }
func (v viewFunc) Protected() bool { return v.protected }
func (v viewFunc) Run(ctx context.Context, s models.Session) error {
	return v.fn(ctx, s)
}

func Protected(name string, fn func(ctx context.Context, s models.Session) error) View {
	return viewFunc{name: name, protected: true, fn: fn}
}

func Public(name string, fn func(ctx context.Context, s models.Session) error) View {
	return viewFunc{name: name, fn: fn}
}

type CredentialStore interface {
	Read(ctx context.Context) (models.Session, error)
	Clear(ctx context.Context) error
}

type Guard struct {
	store CredentialStore
	log   logging.Logger
}

func New(store CredentialStore, log logging.Logger) *Guard {
	if log == nil {
		log = logging.Nop()
	}
	return &Guard{store: store, log: log}
}

// Run executes v. A protected view only runs when a token is stored; an
// unauthorized result from it invalidates the stored session.
func (g *Guard) Run(ctx context.Context, v View) error {
	s, err := g.store.Read(ctx)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}

	if !v.Protected() {
		return v.Run(ctx, s)
	}

	if !s.Authenticated() {
		g.log.Debug(ctx, "redirect to login", "view", v.Name())
		return ErrRedirectLogin
	}

	err = v.Run(ctx, s)
	if errors.Is(err, client.ErrUnauthorized) {
		g.log.Info(ctx, "session rejected by server, clearing", "view", v.Name())
		if cerr := g.store.Clear(ctx); cerr != nil {
			g.log.Error(ctx, "failed to clear session", "err", cerr)
		}
		return fmt.Errorf("%w: %w", ErrRedirectLogin, err)
	}
	return err
}
