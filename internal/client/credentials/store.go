// Package credentials is the process-wide credential store: the bearer token
// and display fields of the logged-in user, persisted in the local database
// so they survive restarts.
//
// All three fields are written as one record inside a transaction, and
// in-process readers are serialized against writers, so no caller can
// observe a token from one login next to the name of another.
package credentials

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/models"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/repositories/session"
	"github.com/jain-bhavna/recipe-ai-app/internal/dbx"
)

type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) repo(db dbx.DBTX) session.Repository {
	return session.NewSQLiteRepository(db)
}

// Save replaces the stored session with token, name and email.
func (s *Store) Save(ctx context.Context, token, name, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := models.Session{Token: token, Name: name, Email: email, UpdatedAt: s.now()}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repo(tx).Put(ctx, rec); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		return nil
	})
}

// Clear removes the stored session. Clearing an empty store is not an error.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo(s.db).Delete(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Read returns the current session. Missing fields are empty strings.
func (s *Store) Read(ctx context.Context) (models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.repo(s.db).Get(ctx)
	if err != nil {
		return models.Session{}, fmt.Errorf("read session: %w", err)
	}
	return rec, nil
}

// Token returns the stored bearer token, or "" when logged out.
func (s *Store) Token(ctx context.Context) (string, error) {
	rec, err := s.Read(ctx)
	if err != nil {
		return "", err
	}
	return rec.Token, nil
}
