package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/client"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/config"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/credentials"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/guard"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/models"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/preview"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/services"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/workflow"
	"github.com/jain-bhavna/recipe-ai-app/internal/logging"
	"github.com/jain-bhavna/recipe-ai-app/internal/ui"
)

// revealGrace bounds how long a command waits past the reveal delay for the
// result card.
const revealGrace = time.Second

// reportedError marks an error the App has already shown to the user.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

type App struct {
	config      *config.Config
	db          *sql.DB
	store       *credentials.Store
	authService services.AuthService
	guard       *guard.Guard
	previews    *preview.Store
	workflow    *workflow.Workflow
	log         logging.Logger
	reader      *bufio.Reader

	outMu    sync.Mutex
	out      io.Writer
	revealed chan struct{}

	revealMu      sync.Mutex
	revealPending bool
}

// NewApp opens the local database at c.SessionDBPath and wires the API
// client, services and workflow. Close releases everything it opened.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.Nop()
	}

	db, err := credentials.InitDatabase(ctx, c.SessionDBPath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	store := credentials.NewStore(db)

	previews, err := preview.NewStore(c.PreviewDir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	api := client.NewHTTPClient(c.ServerBaseURL, store, client.Options{
		RequestTimeout: c.RequestTimeout,
		DetectTimeout:  c.DetectTimeout,
		Logger:         log.With("component", "http"),
	})

	a := &App{
		config:      c,
		db:          db,
		store:       store,
		authService: services.NewAuthService(api, store, log),
		guard:       guard.New(store, log),
		previews:    previews,
		log:         log,
		reader:      bufio.NewReader(in),
		out:         out,
		revealed:    make(chan struct{}, 1),
	}
	a.workflow = workflow.New(api, previews,
		workflow.WithRevealDelay(c.RevealDelay),
		workflow.WithPolicy(c.Policy()),
		workflow.WithLogger(log.With("component", "workflow")),
		workflow.WithUnauthorizedHook(a.onUnauthorized),
	)
	a.workflow.Mount(a)
	return a, nil
}

func (a *App) Close() error {
	a.workflow.Unmount()
	a.workflow.Close()
	return errors.Join(a.previews.Close(), a.db.Close())
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

// fail shows msg as an error and returns it marked as reported.
func (a *App) fail(msg string) error {
	a.println(ui.FormatError(msg))
	return reportedError{errors.New(msg)}
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	s, err := a.store.Read(ctx)
	return err == nil && s.Authenticated()
}

// status is the prompt decoration: the user's name when logged in.
func (a *App) status(ctx context.Context) string {
	s, err := a.store.Read(ctx)
	if err != nil || !s.Authenticated() {
		return ""
	}
	if s.Name != "" {
		return "(" + s.Name + ")"
	}
	return "(" + s.Email + ")"
}

// protected runs fn through the auth guard and turns a redirect into a
// pointer to the login command.
func (a *App) protected(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	v := guard.Protected(name, func(ctx context.Context, _ models.Session) error {
		return fn(ctx)
	})
	err := a.guard.Run(ctx, v)
	if errors.Is(err, guard.ErrRedirectLogin) {
		if errors.Is(err, client.ErrUnauthorized) {
			a.println(ui.FormatWarning("Your session has expired."))
		}
		a.println(ui.FormatInfo("Please log in first: run 'login'"))
		return reportedError{err}
	}
	return err
}

func (a *App) onUnauthorized(ctx context.Context) {
	if err := a.store.Clear(ctx); err != nil {
		a.log.Error(ctx, "failed to clear session", "err", err)
	}
}
