// Package session persists the single login record of the client.
//
// The record holds token, display name and email together in one row, so a
// write replaces all three at once and readers never see a mix of old and
// new values.
package session

import (
	"context"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/models"
)

type Repository interface {
	// Get returns the stored session, or a zero Session when none is stored.
	Get(ctx context.Context) (models.Session, error)
	Put(ctx context.Context, s models.Session) error
	Delete(ctx context.Context) error
}
