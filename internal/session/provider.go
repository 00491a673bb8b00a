// Package session resolves who is signed in: the stored credential plus the
// profile the backend returns for it.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/medivault/shell/internal/client"
	"github.com/medivault/shell/internal/credential"
)

// Session is the signed-in user as the shell sees it. It is read-only for
// every consumer.
type Session struct {
	UserID    string
	Username  string
	FirstName string
	LastName  string
	Role      string
	ImagePath string
	HasToken  bool
}

// DisplayName returns "First Last", or "" when the profile is not loaded.
func (s Session) DisplayName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// HasProfile reports whether profile fields were filled in by the backend.
func (s Session) HasProfile() bool {
	return s.Username != "" || s.DisplayName() != ""
}

// Backend is the part of the REST client the provider needs.
type Backend interface {
	GetProfile(ctx context.Context, token string) (*client.Profile, error)
	Logout(ctx context.Context, token string) error
}

// CredentialStore persists the token.
type CredentialStore interface {
	Load(ctx context.Context) (credential.Credential, error)
	Save(ctx context.Context, c credential.Credential) error
	Clear(ctx context.Context) error
}

// Provider is the explicit session context handed to the shell. It is safe
// for concurrent use.
type Provider struct {
	store   CredentialStore
	backend Backend
	log     *slog.Logger
	now     func() time.Time

	mu          sync.Mutex
	cached      *Session
	cachedToken string
}

// NewProvider wires a provider to its store and backend.
func NewProvider(store CredentialStore, backend Backend, log *slog.Logger) *Provider {
	if log == nil {
		log = slog.Default()
	}
	return &Provider{
		store:   store,
		backend: backend,
		log:     log.With("component", "session"),
		now:     time.Now,
	}
}

// Credential returns the stored credential if it is usable. Missing,
// malformed and expired tokens yield an Unauthenticated AuthError.
func (p *Provider) Credential(ctx context.Context) (credential.Credential, error) {
	cred, err := p.store.Load(ctx)
	if err != nil {
		return credential.Credential{}, &AuthError{Kind: Unauthenticated, Err: err}
	}
	claims, err := credential.Check(cred.Token, p.now())
	if err != nil {
		return credential.Credential{}, &AuthError{Kind: Unauthenticated, Err: err}
	}
	if cred.UserID == "" {
		cred.UserID = claims.Subject()
	}
	return cred, nil
}

// Resolve returns the current session. On ProfileFetchFailed the returned
// Session still carries the user id and token presence so the shell can
// run in a degraded state.
func (p *Provider) Resolve(ctx context.Context) (Session, error) {
	cred, err := p.Credential(ctx)
	if err != nil {
		return Session{}, err
	}

	p.mu.Lock()
	if p.cached != nil && p.cachedToken == cred.Token {
		s := *p.cached
		p.mu.Unlock()
		return s, nil
	}
	p.mu.Unlock()

	partial := Session{UserID: cred.UserID, HasToken: true}
	profile, err := p.backend.GetProfile(ctx, cred.Token)
	if err != nil {
		p.log.Warn("profile fetch failed", "err", err)
		return partial, &AuthError{Kind: ProfileFetchFailed, Err: err}
	}

	s := Session{
		UserID:    string(profile.UserID),
		Username:  profile.Username,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Role:      profile.Role,
		ImagePath: profile.ImagePath,
		HasToken:  true,
	}
	if s.UserID == "" {
		s.UserID = cred.UserID
	}

	p.mu.Lock()
	// A logout may have cleared the credential while the fetch was running.
	if current, err := p.store.Load(ctx); err == nil && current.Token == cred.Token {
		p.cached = &s
		p.cachedToken = cred.Token
	}
	p.mu.Unlock()
	return s, nil
}

// Authenticated reports whether a usable credential is stored.
func (p *Provider) Authenticated(ctx context.Context) bool {
	_, err := p.Credential(ctx)
	return err == nil
}

// Login stores a new credential after checking that the token is usable.
func (p *Provider) Login(ctx context.Context, token, userID string) error {
	claims, err := credential.Check(token, p.now())
	if err != nil {
		return &AuthError{Kind: Unauthenticated, Err: err}
	}
	if userID == "" {
		userID = claims.Subject()
	}
	if err := p.store.Save(ctx, credential.Credential{Token: token, UserID: userID}); err != nil {
		return err
	}
	p.invalidate()
	p.log.Info("credential stored", "user", userID)
	return nil
}

// Logout invalidates the credential on the server, then locally. On failure
// nothing changes and the call may be retried. Logging out without a stored
// credential succeeds.
func (p *Provider) Logout(ctx context.Context) error {
	cred, err := p.store.Load(ctx)
	if errors.Is(err, credential.ErrNotFound) {
		p.invalidate()
		return nil
	}
	if err != nil {
		return &AuthError{Kind: LogoutFailed, Err: err}
	}

	if err := p.backend.Logout(ctx, cred.Token); err != nil {
		p.log.Error("logout failed", "err", err)
		return &AuthError{Kind: LogoutFailed, Err: err}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.cached = nil
	p.cachedToken = ""
	if err := p.store.Clear(ctx); err != nil {
		p.log.Error("clear credential failed", "err", err)
		return &AuthError{Kind: LogoutFailed, Err: err}
	}
	p.log.Info("logged out", "user", cred.UserID)
	return nil
}

func (p *Provider) invalidate() {
	p.mu.Lock()
	p.cached = nil
	p.cachedToken = ""
	p.mu.Unlock()
}
