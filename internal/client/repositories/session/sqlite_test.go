package session

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/models"
	"github.com/jain-bhavna/recipe-ai-app/internal/dbx"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := dbx.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE session (
  id         INTEGER PRIMARY KEY CHECK (id = 1),
  token      TEXT NOT NULL,
  name       TEXT NOT NULL DEFAULT '',
  email      TEXT NOT NULL DEFAULT '',
  updated_at TEXT NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestGet_Empty_ReturnsZeroSession(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	s, err := r.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Session{}, s)
}

func TestPutThenGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, r.Put(ctx, models.Session{Token: "tok123", Name: "Ann", Email: "a@b.com", UpdatedAt: at}))

	s, err := r.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Session{Token: "tok123", Name: "Ann", Email: "a@b.com", UpdatedAt: at}, s)
}

func TestPut_OverwritesWholeRecord(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, models.Session{Token: "old", Name: "Old", Email: "old@x.io"}))
	require.NoError(t, r.Put(ctx, models.Session{Token: "new", Name: "", Email: "new@x.io"}))

	s, err := r.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", s.Token)
	assert.Equal(t, "", s.Name, "no field may survive from the previous record")
	assert.Equal(t, "new@x.io", s.Email)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM session`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestDelete_IsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, models.Session{Token: "t"}))
	require.NoError(t, r.Delete(ctx))
	require.NoError(t, r.Delete(ctx))

	s, err := r.Get(ctx)
	require.NoError(t, err)
	assert.False(t, s.Authenticated())
}

func TestDBErrorsWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx)
	require.ErrorContains(t, err, "failed to get session")

	err = r.Put(ctx, models.Session{Token: "t"})
	require.ErrorContains(t, err, "failed to put session")

	err = r.Delete(ctx)
	require.ErrorContains(t, err, "failed to delete session")
}
