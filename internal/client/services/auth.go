// Package services contains application services for the recipe-ai client.
// This file defines the authentication service: register, login, logout and
// the current-user profile, with the credential store kept in step.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/client"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/models"
	"github.com/jain-bhavna/recipe-ai-app/internal/common"
	"github.com/jain-bhavna/recipe-ai-app/internal/logging"
)

// ErrNoToken is returned when the server accepts a login but sends no token.
var ErrNoToken = errors.New("login response carried no access token")

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: validate the form locally, then create the user on the server.
//   - Login: authenticate and persist token, name and email as one record.
//   - Logout: clear the stored session.
//   - Profile: fetch the current user with the stored token.
//
// Password buffers are wiped once the request has been built.
type AuthService interface {
	Register(ctx context.Context, name, email string, password []byte) error
	Login(ctx context.Context, email string, password []byte) (models.Session, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (models.Profile, error)
}

// SessionStore is the write side of the credential store.
type SessionStore interface {
	Save(ctx context.Context, token, name, email string) error
	Clear(ctx context.Context) error
}

type authService struct {
	client client.Client
	store  SessionStore
	log    logging.Logger
}

func NewAuthService(c client.Client, store SessionStore, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &authService{client: c, store: store, log: log}
}

func (a *authService) Register(ctx context.Context, name, email string, password []byte) error {
	defer common.WipeByteArray(password)

	if err := ValidateRegistration(name, email, password); err != nil {
		return err
	}

	req := client.RegisterRequest{Name: name, Email: email, Password: string(password)}
	if err := a.client.Register(ctx, req); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	a.log.Info(ctx, "user registered", "email", email)
	return nil
}

func (a *authService) Login(ctx context.Context, email string, password []byte) (models.Session, error) {
	defer common.WipeByteArray(password)

	if err := ValidateLogin(email, password); err != nil {
		return models.Session{}, err
	}

	resp, err := a.client.Login(ctx, email, string(password))
	if err != nil {
		return models.Session{}, fmt.Errorf("login: %w", err)
	}
	if resp.AccessToken == "" {
		return models.Session{}, ErrNoToken
	}

	if err := a.store.Save(ctx, resp.AccessToken, resp.Name, resp.Email); err != nil {
		return models.Session{}, fmt.Errorf("save session: %w", err)
	}
	a.log.Info(ctx, "logged in", "email", resp.Email)

	return models.Session{Token: resp.AccessToken, Name: resp.Name, Email: resp.Email}, nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (a *authService) Profile(ctx context.Context) (models.Profile, error) {
	p, err := a.client.Me(ctx)
	if err != nil {
		return models.Profile{}, fmt.Errorf("me: %w", err)
	}
	return p, nil
}
