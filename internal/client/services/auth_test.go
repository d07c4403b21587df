package services

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/apitest"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/client"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/credentials"
	"github.com/jain-bhavna/recipe-ai-app/internal/client/models"
)

// ---- fakes ----

type fakeClient struct {
	RegisterErr error
	LoginRet    client.LoginResponse
	LoginErr    error
	MeRet       models.Profile
	MeErr       error

	RegisterCalls   int
	LastRegister    client.RegisterRequest
	LastLoginEmail  string
	LastLoginSecret string
}

func (f *fakeClient) Register(ctx context.Context, req client.RegisterRequest) error {
	f.RegisterCalls++
	f.LastRegister = req
	return f.RegisterErr
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (client.LoginResponse, error) {
	f.LastLoginEmail, f.LastLoginSecret = email, password
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) Me(ctx context.Context) (models.Profile, error) { return f.MeRet, f.MeErr }

func (f *fakeClient) DetectDish(ctx context.Context, name, mediaType string, body io.Reader) (models.Detection, error) {
	return models.Detection{}, errors.New("not used")
}

type fakeStore struct {
	saved   []string
	cleared int
	SaveErr error
}

func (f *fakeStore) Save(ctx context.Context, token, name, email string) error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.saved = []string{token, name, email}
	return nil
}

func (f *fakeStore) Clear(ctx context.Context) error { f.cleared++; return nil }

// ---- tests ----

func TestRegister_ValidatesBeforeRequest(t *testing.T) {
	fc := &fakeClient{}
	svc := NewAuthService(fc, &fakeStore{}, nil)

	err := svc.Register(context.Background(), "", "not-an-email", []byte("abc"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{
		"name":     "Full Name is required",
		"email":    "Email is invalid",
		"password": "Password must be at least 6 characters",
	}, verr.Fields)
	assert.Zero(t, fc.RegisterCalls)
}

func TestRegister_SendsAndWipesPassword(t *testing.T) {
	fc := &fakeClient{}
	svc := NewAuthService(fc, &fakeStore{}, nil)

	pw := []byte("secret1")
	require.NoError(t, svc.Register(context.Background(), "Ann", "a@b.com", pw))
	assert.Equal(t, client.RegisterRequest{Name: "Ann", Email: "a@b.com", Password: "secret1"}, fc.LastRegister)
	assert.Equal(t, make([]byte, len(pw)), pw, "password buffer must be wiped")
}

func TestRegister_ServerError(t *testing.T) {
	apiErr := &client.APIError{StatusCode: 400, Detail: []byte(`"Email already exists"`)}
	svc := NewAuthService(&fakeClient{RegisterErr: apiErr}, &fakeStore{}, nil)

	err := svc.Register(context.Background(), "Ann", "a@b.com", []byte("secret1"))
	require.ErrorAs(t, err, new(*client.APIError))
}

func TestLogin_SavesSession(t *testing.T) {
	fc := &fakeClient{LoginRet: client.LoginResponse{AccessToken: "tok123", TokenType: "bearer", Name: "Ann", Email: "a@b.com"}}
	st := &fakeStore{}
	svc := NewAuthService(fc, st, nil)

	s, err := svc.Login(context.Background(), "a@b.com", []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, models.Session{Token: "tok123", Name: "Ann", Email: "a@b.com"}, s)
	assert.Equal(t, []string{"tok123", "Ann", "a@b.com"}, st.saved)
	assert.Equal(t, "secret", fc.LastLoginSecret)
}

func TestLogin_Errors(t *testing.T) {
	tests := []struct {
		name     string
		client   *fakeClient
		store    *fakeStore
		email    string
		password string
		check    func(t *testing.T, err error)
	}{
		{
			name:   "missing fields",
			client: &fakeClient{},
			store:  &fakeStore{},
			check: func(t *testing.T, err error) {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Len(t, verr.Fields, 2)
			},
		},
		{
			name:     "wrong password",
			client:   &fakeClient{LoginErr: &client.APIError{StatusCode: 401}},
			store:    &fakeStore{},
			email:    "a@b.com",
			password: "nope",
			check:    func(t *testing.T, err error) { require.ErrorIs(t, err, client.ErrUnauthorized) },
		},
		{
			name:     "empty token",
			client:   &fakeClient{LoginRet: client.LoginResponse{Name: "Ann"}},
			store:    &fakeStore{},
			email:    "a@b.com",
			password: "secret",
			check:    func(t *testing.T, err error) { require.ErrorIs(t, err, ErrNoToken) },
		},
		{
			name:     "store failure",
			client:   &fakeClient{LoginRet: client.LoginResponse{AccessToken: "t"}},
			store:    &fakeStore{SaveErr: errors.New("disk full")},
			email:    "a@b.com",
			password: "secret",
			check:    func(t *testing.T, err error) { require.ErrorContains(t, err, "disk full") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthService(tt.client, tt.store, nil)
			_, err := svc.Login(context.Background(), tt.email, []byte(tt.password))
			tt.check(t, err)
			assert.Nil(t, tt.store.saved)
		})
	}
}

func TestLogoutClearsStore(t *testing.T) {
	st := &fakeStore{}
	require.NoError(t, NewAuthService(&fakeClient{}, st, nil).Logout(context.Background()))
	assert.Equal(t, 1, st.cleared)
}

func TestLoginEndToEnd(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.AddUser("Ann", "a@b.com", "secret")
	srv.SetFixedToken("tok123")

	ctx := context.Background()
	db, err := credentials.InitDatabase(ctx, filepath.Join(t.TempDir(), "recipeai.db"))
	require.NoError(t, err)
	defer db.Close()
	store := credentials.NewStore(db)

	svc := NewAuthService(client.NewHTTPClient(srv.URL, store, client.Options{}), store, nil)

	_, err = svc.Login(ctx, "a@b.com", []byte("secret"))
	require.NoError(t, err)

	got, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok123", got.Token)
	assert.Equal(t, "Ann", got.Name)
	assert.Equal(t, "a@b.com", got.Email)

	p, err := svc.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Profile{Name: "Ann", Email: "a@b.com"}, p)
	assert.Equal(t, "Bearer tok123", srv.LastAuthorization())
}
