package client

import (
	"context"
	"io"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/models"
)

type Client interface {
	Register(ctx context.Context, req RegisterRequest) error
	Login(ctx context.Context, email, password string) (LoginResponse, error)
	Me(ctx context.Context) (models.Profile, error)
	DetectDish(ctx context.Context, fileName, mediaType string, body io.Reader) (models.Detection, error)
}

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Name        string `json:"name"`
	Email       string `json:"email"`
}
