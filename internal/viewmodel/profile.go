package viewmodel

import (
	"context"

	"cropsense/internal/logging"
	"cropsense/internal/models"
	"cropsense/internal/session"

	"go.uber.org/zap"
)

type ProfileAPI interface {
	Me(ctx context.Context) (*models.User, error)
}

// ProfileState is a copy of the profile page
type ProfileState struct {
	Loading bool
	Err     error
	User    *models.User
}

// Profile loads the logged-in user's details. A 401 ends the session.
type Profile struct {
	api     ProfileAPI
	session *session.Session
	logger  *zap.Logger

	run
	state ProfileState
}

func NewProfile(api ProfileAPI, sess *session.Session, logger *zap.Logger) *Profile {
	return &Profile{api: api, session: sess, logger: logging.OrNop(logger)}
}

func (p *Profile) Snapshot() ProfileState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Profile) Load(ctx context.Context) (ProfileState, error) {
	if err := p.session.RequireAuth(ctx); err != nil {
		p.mu.Lock()
		p.state.User = nil
		p.mu.Unlock()
		record("profile", err)
		return p.Snapshot(), err
	}

	p.mu.Lock()
	ctx, gen := p.beginLocked(ctx)
	p.state.Loading = true
	p.state.Err = nil
	p.mu.Unlock()

	user, err := p.api.Me(ctx)
	if err != nil && p.session.HandleUnauthorized(ctx, err) {
		p.logger.Info("profile fetch rejected, logged out")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.finishLocked(gen) {
		record("profile", ErrSuperseded)
		return p.state, ErrSuperseded
	}
	p.state.Loading = false
	if err != nil {
		p.state.Err = err
		if !p.session.Authenticated() {
			p.state.User = nil
		}
		record("profile", err)
		return p.state, err
	}
	p.state.User = user
	record("profile", nil)
	return p.state, nil
}
