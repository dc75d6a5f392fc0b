// Package session holds the authentication token and the current user profile.
//
// A Session moves between three states:
//
//	Unauthenticated -> Restoring      stored token found, profile fetch in flight
//	Restoring       -> Authenticated  profile loaded
//	Restoring       -> Unauthenticated  backend answered 401
//	any             -> Authenticated  explicit login with a server-supplied user
//	any             -> Unauthenticated  logout, undecodable or expired token
//
// A transient error while restoring leaves the session in Restoring with the
// token kept, so a later Restore can complete it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cropsense/internal/api"
	"cropsense/internal/logging"
	"cropsense/internal/metrics"
	"cropsense/internal/models"
	"cropsense/internal/storage"

	"go.uber.org/zap"
)

type State int

const (
	Unauthenticated State = iota
	Restoring
	Authenticated
)

func (s State) String() string {
	switch s {
	case Restoring:
		return "restoring"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// ErrNotAuthenticated is returned by actions that need a logged-in user
var ErrNotAuthenticated = errors.New("not logged in")

// Backend is the slice of the API client the session drives
type Backend interface {
	SetToken(token string)
	ClearToken()
	Me(ctx context.Context) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.TokenResponse, error)
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	GoogleLogin(ctx context.Context, credential string) (*models.TokenResponse, error)
}

// Session is the single source of truth for who is logged in. It is passed
// explicitly to everything that needs it.
type Session struct {
	store   storage.Store
	backend Backend
	logger  *zap.Logger
	now     func() time.Time

	mu     sync.RWMutex
	state  State
	token  string
	claims Claims
	user   *models.User
}

type Option func(*Session)

// WithClock replaces time.Now for expiry checks
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func New(store storage.Store, backend Backend, logger *zap.Logger, opts ...Option) *Session {
	s := &Session{
		store:   store,
		backend: backend,
		logger:  logging.OrNop(logger),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.SetSessionState(Unauthenticated.String())
	return s
}

// State returns the current state. An Authenticated session whose token has
// since expired reports Unauthenticated.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == Authenticated && s.claims.Expired(s.now()) {
		return Unauthenticated
	}
	return s.state
}

func (s *Session) Authenticated() bool { return s.State() == Authenticated }

// User returns a copy of the profile, or nil unless Authenticated
func (s *Session) User() *models.User {
	if !s.Authenticated() {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the in-memory token ("" when there is none)
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Expired reports whether the held token is past its expiry
func (s *Session) Expired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.claims.Expired(s.now())
}

// Restore loads the persisted token and, if it is still valid, fetches the profile.
func (s *Session) Restore(ctx context.Context) error {
	tok, ok, err := s.store.Get(ctx, storage.KeyToken)
	if err != nil {
		return fmt.Errorf("failed to read stored token: %w", err)
	}
	if !ok || tok == "" {
		s.transition(Unauthenticated, "", Claims{}, nil)
		return nil
	}

	claims, err := DecodeClaims(tok)
	if err != nil {
		s.logger.Info("discarding undecodable stored token", zap.Error(err))
		return errors.Join(err, s.Logout(ctx))
	}
	if claims.Expired(s.now()) {
		s.logger.Info("stored token expired", zap.Time("expired_at", claims.ExpiresAt))
		return errors.Join(ErrSessionExpired, s.Logout(ctx))
	}

	s.backend.SetToken(tok)
	s.transition(Restoring, tok, claims, nil)

	user, err := s.backend.Me(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			s.logger.Info("stored token rejected by backend")
			return errors.Join(err, s.Logout(ctx))
		}
		// transient: keep the token and stay in Restoring
		s.logger.Warn("failed to load user profile", zap.Error(err))
		return fmt.Errorf("failed to load user profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != tok {
		// logged out or replaced while the profile was loading
		return nil
	}
	s.setLocked(Authenticated, tok, claims, user)
	return nil
}

// Login adopts a server-issued token and user. The profile is already known,
// so there is no Restoring step.
func (s *Session) Login(ctx context.Context, token string, user models.User) error {
	claims, err := DecodeClaims(token)
	if err != nil {
		return err
	}
	if claims.Expired(s.now()) {
		return ErrSessionExpired
	}
	if err := s.store.Set(ctx, storage.KeyToken, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	s.backend.SetToken(token)
	s.transition(Authenticated, token, claims, &user)
	s.logger.Info("logged in", zap.String("email", user.Email))
	return nil
}

// Logout forgets the token everywhere. It always clears memory and the header;
// a storage failure is returned after that.
func (s *Session) Logout(ctx context.Context) error {
	err := s.store.Delete(ctx, storage.KeyToken)
	s.backend.ClearToken()
	s.transition(Unauthenticated, "", Claims{}, nil)
	if err != nil {
		return fmt.Errorf("failed to delete stored token: %w", err)
	}
	return nil
}

// HandleUnauthorized logs out when err is a 401 and reports whether it did
func (s *Session) HandleUnauthorized(ctx context.Context, err error) bool {
	if !api.IsUnauthorized(err) {
		return false
	}
	if lerr := s.Logout(ctx); lerr != nil {
		s.logger.Warn("logout after 401 failed", zap.Error(lerr))
	}
	return true
}

// RequireAuth returns ErrNotAuthenticated (or ErrSessionExpired) unless a user is logged in
func (s *Session) RequireAuth(ctx context.Context) error {
	if s.Expired() {
		if err := s.Logout(ctx); err != nil {
			s.logger.Warn("logout of expired session failed", zap.Error(err))
		}
		return ErrSessionExpired
	}
	if s.State() != Authenticated {
		return ErrNotAuthenticated
	}
	return nil
}

// PasswordLogin validates the form, calls /auth/login and adopts the result
func (s *Session) PasswordLogin(ctx context.Context, email, password string) (*models.User, error) {
	if err := models.ValidateCredentials(email, password); err != nil {
		return nil, err
	}
	tok, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.Login(ctx, tok.AccessToken, tok.User); err != nil {
		return nil, err
	}
	return s.User(), nil
}

// GoogleLogin exchanges a Google credential for a session
func (s *Session) GoogleLogin(ctx context.Context, credential string) (*models.User, error) {
	if credential == "" {
		return nil, &models.ValidationError{Field: "credential", Message: "missing Google credential"}
	}
	tok, err := s.backend.GoogleLogin(ctx, credential)
	if err != nil {
		return nil, err
	}
	if err := s.Login(ctx, tok.AccessToken, tok.User); err != nil {
		return nil, err
	}
	return s.User(), nil
}

// RegisterAndLogin creates the account and then logs in with the same credentials
func (s *Session) RegisterAndLogin(ctx context.Context, name, email, password, confirm string) (*models.User, error) {
	if err := models.ValidateRegistration(name, email, password, confirm); err != nil {
		return nil, err
	}
	if _, err := s.backend.Register(ctx, name, email, password); err != nil {
		return nil, err
	}
	return s.PasswordLogin(ctx, email, password)
}

func (s *Session) transition(state State, token string, claims Claims, user *models.User) {
	s.mu.Lock()
	s.setLocked(state, token, claims, user)
	s.mu.Unlock()
}

func (s *Session) setLocked(state State, token string, claims Claims, user *models.User) {
	s.state = state
	s.token = token
	s.claims = claims
	s.user = nil
	if state == Authenticated {
		s.user = user
	}
	metrics.SetSessionState(state.String())
}
