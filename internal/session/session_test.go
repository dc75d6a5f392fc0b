package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"cropsense/internal/api"
	"cropsense/internal/models"
	"cropsense/internal/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func makeToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "farmer@example.com"}
	if !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

type fakeBackend struct {
	mu        sync.Mutex
	token     string
	meUser    *models.User
	meErr     error
	meCalls   int
	loginResp *models.TokenResponse
	loginErr  error
	regErr    error
	regCalls  int
}

func (f *fakeBackend) SetToken(token string) { f.mu.Lock(); f.token = token; f.mu.Unlock() }
func (f *fakeBackend) ClearToken()           { f.mu.Lock(); f.token = ""; f.mu.Unlock() }

func (f *fakeBackend) header() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeBackend) Me(ctx context.Context) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	return f.meUser, f.meErr
}

func (f *fakeBackend) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeBackend) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	f.regCalls++
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &models.User{Name: name, Email: email}, nil
}

func (f *fakeBackend) GoogleLogin(ctx context.Context, credential string) (*models.TokenResponse, error) {
	return f.loginResp, f.loginErr
}

func newSession(t *testing.T, b *fakeBackend) (*Session, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	return New(store, b, nil, WithClock(clock)), store
}

func TestDecodeClaims(t *testing.T) {
	exp := now.Add(time.Hour)
	c, err := DecodeClaims(makeToken(t, exp))
	require.NoError(t, err)
	assert.Equal(t, "farmer@example.com", c.Subject)
	assert.True(t, c.ExpiresAt.Equal(exp))
	assert.False(t, c.Expired(now))
	assert.True(t, c.Expired(exp.Add(time.Second)))

	c, err = DecodeClaims(makeToken(t, time.Time{}))
	require.NoError(t, err)
	assert.False(t, c.Expired(now.Add(100*365*24*time.Hour)), "no exp claim never expires")

	_, err = DecodeClaims("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRestore_NoToken(t *testing.T) {
	b := &fakeBackend{}
	s, _ := newSession(t, b)

	require.NoError(t, s.Restore(context.Background()))
	assert.Equal(t, Unauthenticated, s.State())
	assert.Zero(t, b.meCalls)
}

func TestRestore_ValidToken(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{meUser: &models.User{Name: "Asha", Email: "asha@example.com"}}
	s, store := newSession(t, b)
	tok := makeToken(t, now.Add(time.Hour))
	require.NoError(t, store.Set(ctx, storage.KeyToken, tok))

	require.NoError(t, s.Restore(ctx))
	assert.Equal(t, Authenticated, s.State())
	assert.Equal(t, "Asha", s.User().Name)
	assert.Equal(t, tok, s.Token())
	assert.Equal(t, tok, b.header())
}

func TestRestore_OverHTTPWithBackendTimestamps(t *testing.T) {
	ctx := context.Background()
	tok := makeToken(t, now.Add(time.Hour))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/me" || r.Header.Get("Authorization") != "Bearer "+tok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"id":"u1","name":"Asha","email":"asha@example.com","created_at":"2025-01-01T10:00:00.123000"}`))
	}))
	defer srv.Close()

	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.KeyToken, tok))
	s := New(store, api.NewClient(srv.URL, 5*time.Second, nil), nil, WithClock(clock))

	require.NoError(t, s.Restore(ctx))
	assert.Equal(t, Authenticated, s.State())
	assert.Equal(t, 2025, s.User().CreatedAt.Year())
}

func TestRestore_ExpiredTokenSkipsNetwork(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{meUser: &models.User{Email: "asha@example.com"}}
	s, store := newSession(t, b)
	require.NoError(t, store.Set(ctx, storage.KeyToken, makeToken(t, now.Add(-time.Minute))))

	err := s.Restore(ctx)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, Unauthenticated, s.State())
	assert.Zero(t, b.meCalls, "expired token must not reach the backend")

	_, ok, _ := store.Get(ctx, storage.KeyToken)
	assert.False(t, ok, "expired token should be removed from storage")
}

func TestRestore_UndecodableToken(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{}
	s, store := newSession(t, b)
	require.NoError(t, store.Set(ctx, storage.KeyToken, "garbage"))

	err := s.Restore(ctx)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, Unauthenticated, s.State())
	assert.Zero(t, b.meCalls)
}

func TestRestore_BackendErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantState State
		wantToken bool
	}{
		{"401 logs out", &api.StatusError{Endpoint: "auth_me", Code: 401, Message: "Could not validate credentials"}, Unauthenticated, false},
		{"500 stays restoring", &api.StatusError{Endpoint: "auth_me", Code: 500, Message: "boom"}, Restoring, true},
		{"network stays restoring", &api.NetworkError{Endpoint: "auth_me", Err: errors.New("connection refused")}, Restoring, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			b := &fakeBackend{meErr: tt.err}
			s, store := newSession(t, b)
			tok := makeToken(t, now.Add(time.Hour))
			require.NoError(t, store.Set(ctx, storage.KeyToken, tok))

			assert.Error(t, s.Restore(ctx))
			assert.Equal(t, tt.wantState, s.State())
			assert.Nil(t, s.User())

			_, ok, _ := store.Get(ctx, storage.KeyToken)
			assert.Equal(t, tt.wantToken, ok)
			if tt.wantToken {
				assert.Equal(t, tok, b.header())
			} else {
				assert.Empty(t, b.header())
			}
		})
	}
}

func TestLoginLogout(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{}
	s, store := newSession(t, b)
	tok := makeToken(t, now.Add(time.Hour))

	require.NoError(t, s.Login(ctx, tok, models.User{Name: "Ravi", Email: "ravi@example.com"}))
	assert.True(t, s.Authenticated())
	assert.Equal(t, "Ravi", s.User().Name)
	assert.Equal(t, tok, b.header())
	v, ok, _ := store.Get(ctx, storage.KeyToken)
	assert.True(t, ok)
	assert.Equal(t, tok, v)

	require.NoError(t, s.Logout(ctx))
	assert.Equal(t, Unauthenticated, s.State())
	assert.Nil(t, s.User())
	assert.Empty(t, s.Token())
	assert.Empty(t, b.header())
	_, ok, _ = store.Get(ctx, storage.KeyToken)
	assert.False(t, ok)
}

func TestLogin_RejectsExpiredToken(t *testing.T) {
	b := &fakeBackend{}
	s, _ := newSession(t, b)

	err := s.Login(context.Background(), makeToken(t, now.Add(-time.Hour)), models.User{Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.False(t, s.Authenticated())
	assert.Empty(t, b.header())
}

func TestExpiryWhileAuthenticated(t *testing.T) {
	ctx := context.Background()
	current := now
	b := &fakeBackend{}
	s := New(storage.NewMemoryStore(), b, nil, WithClock(func() time.Time { return current }))

	require.NoError(t, s.Login(ctx, makeToken(t, now.Add(time.Minute)), models.User{Email: "x@example.com"}))
	assert.True(t, s.Authenticated())

	current = now.Add(2 * time.Minute)
	assert.True(t, s.Expired())
	assert.False(t, s.Authenticated())
	assert.Nil(t, s.User())

	assert.ErrorIs(t, s.RequireAuth(ctx), ErrSessionExpired)
	assert.Empty(t, b.header(), "expired session should clear the header")
	assert.ErrorIs(t, s.RequireAuth(ctx), ErrNotAuthenticated)
}

func TestHandleUnauthorized(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{}
	s, _ := newSession(t, b)
	require.NoError(t, s.Login(ctx, makeToken(t, now.Add(time.Hour)), models.User{Email: "x@example.com"}))

	assert.False(t, s.HandleUnauthorized(ctx, &api.StatusError{Code: 500}))
	assert.True(t, s.Authenticated())

	assert.True(t, s.HandleUnauthorized(ctx, &api.StatusError{Code: 401}))
	assert.False(t, s.Authenticated())
	assert.Empty(t, b.header())
}

func TestPasswordLogin(t *testing.T) {
	ctx := context.Background()
	tok := makeToken(t, now.Add(time.Hour))
	b := &fakeBackend{loginResp: &models.TokenResponse{
		AccessToken: tok,
		TokenType:   "bearer",
		User:        models.User{Name: "Asha", Email: "asha@example.com"},
	}}
	s, _ := newSession(t, b)

	_, err := s.PasswordLogin(ctx, "asha@example.com", "")
	assert.ErrorIs(t, err, models.ErrValidation, "empty password rejected locally")
	assert.False(t, s.Authenticated())

	u, err := s.PasswordLogin(ctx, "asha@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", u.Name)
	assert.Equal(t, tok, b.header())
}

func TestPasswordLogin_BackendRejects(t *testing.T) {
	b := &fakeBackend{loginErr: &api.StatusError{Code: 401, Message: "Incorrect email or password"}}
	s, _ := newSession(t, b)

	_, err := s.PasswordLogin(context.Background(), "asha@example.com", "secret1")
	require.Error(t, err)
	assert.Equal(t, "Incorrect email or password", api.UserMessage(err, ""))
	assert.Equal(t, Unauthenticated, s.State())
}

func TestGoogleLogin(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{loginResp: &models.TokenResponse{
		AccessToken: makeToken(t, now.Add(time.Hour)),
		User:        models.User{Email: "g@example.com"},
	}}
	s, _ := newSession(t, b)

	_, err := s.GoogleLogin(ctx, "")
	assert.ErrorIs(t, err, models.ErrValidation)

	u, err := s.GoogleLogin(ctx, "google-credential")
	require.NoError(t, err)
	assert.Equal(t, "g@example.com", u.Email)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{loginResp: &models.TokenResponse{
		AccessToken: makeToken(t, now.Add(time.Hour)),
		User:        models.User{Name: "Asha", Email: "asha@example.com"},
	}}
	s, _ := newSession(t, b)

	_, err := s.RegisterAndLogin(ctx, "Asha", "asha@example.com", "secret1", "secret2")
	assert.ErrorIs(t, err, models.ErrValidation, "mismatched passwords")
	assert.Zero(t, b.regCalls)

	u, err := s.RegisterAndLogin(ctx, "Asha", "asha@example.com", "secret1", "secret1")
	require.NoError(t, err)
	assert.Equal(t, 1, b.regCalls)
	assert.Equal(t, "asha@example.com", u.Email)
	assert.True(t, s.Authenticated())
}

func TestRegisterAndLogin_Conflict(t *testing.T) {
	b := &fakeBackend{regErr: &api.StatusError{Code: 400, Message: "Email already registered"}}
	s, _ := newSession(t, b)

	_, err := s.RegisterAndLogin(context.Background(), "Asha", "asha@example.com", "secret1", "secret1")
	require.Error(t, err)
	assert.Equal(t, "Email already registered", api.UserMessage(err, ""))
	assert.False(t, s.Authenticated())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unauthenticated", Unauthenticated.String())
	assert.Equal(t, "restoring", Restoring.String())
	assert.Equal(t, "authenticated", Authenticated.String())
}
