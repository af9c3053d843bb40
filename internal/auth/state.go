// Package auth tracks the session state the rest of the client keys off:
// pending until the stored token is probed, then authenticated or
// anonymous, with notification on transitions.
package auth

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/idw-coder/quizterm/internal/api"
)

// State is the resolved authentication state.
type State int

const (
	// StatePending means the session probe has not settled yet. Consumers
	// must not pick a history source until this resolves.
	StatePending State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "pending"
	}
}

// Listener is notified after a state change, outside the manager's lock.
type Listener func(prev, next State)

// TokenStore persists the session token across runs.
type TokenStore interface {
	Token(ctx context.Context) string
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// Manager owns the session lifecycle: probing the stored token at
// startup, logging in and out, and fanning out transitions.
type Manager struct {
	mu        sync.Mutex
	state     State
	user      *api.User
	listeners []Listener

	client *api.AuthClient
	tokens TokenStore
}

// NewManager creates a manager in the pending state.
func NewManager(client *api.AuthClient, tokens TokenStore) *Manager {
	return &Manager{state: StatePending, client: client, tokens: tokens}
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// User returns the profile of the signed-in user, or nil.
func (m *Manager) User() *api.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// Role returns the signed-in user's role; anonymous sessions get RoleUser
// capabilities (none beyond playing).
func (m *Manager) Role() Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return RoleUser
	}
	return ParseRole(m.user.Role)
}

// Subscribe registers a listener for state transitions.
func (m *Manager) Subscribe(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Resolve settles the pending state by probing the stored token against
// the profile endpoint. No token or a rejected token resolves to
// anonymous; a network failure also resolves to anonymous so the client
// stays usable offline, with the local store authoritative.
func (m *Manager) Resolve(ctx context.Context) State {
	if m.tokens.Token(ctx) == "" {
		m.set(nil, StateAnonymous)
		return StateAnonymous
	}

	user, err := m.client.Profile(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			if cerr := m.tokens.ClearToken(ctx); cerr != nil {
				log.Warn().Err(cerr).Msg("clear stale token")
			}
		} else {
			log.Warn().Err(err).Msg("session probe failed")
		}
		m.set(nil, StateAnonymous)
		return StateAnonymous
	}

	m.set(&user, StateAuthenticated)
	return StateAuthenticated
}

// Login exchanges credentials for a token, persists it, and transitions
// to authenticated. The anonymous-to-authenticated transition is what
// triggers the history migration in subscribers.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	resp, err := m.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := m.tokens.SaveToken(ctx, resp.Token); err != nil {
		log.Warn().Err(err).Msg("persist session token")
	}

	user, err := m.client.Profile(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("profile fetch after login")
		m.set(nil, StateAuthenticated)
		return nil
	}
	m.set(&user, StateAuthenticated)
	return nil
}

// Register creates an account and signs in.
func (m *Manager) Register(ctx context.Context, name, email, password string) error {
	resp, err := m.client.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	if err := m.tokens.SaveToken(ctx, resp.Token); err != nil {
		log.Warn().Err(err).Msg("persist session token")
	}
	user, err := m.client.Profile(ctx)
	if err != nil {
		m.set(nil, StateAuthenticated)
		return nil
	}
	m.set(&user, StateAuthenticated)
	return nil
}

// Logout invalidates the session server-side (best effort), drops the
// stored token, and transitions to anonymous.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.client.Logout(ctx); err != nil {
		log.Warn().Err(err).Msg("server-side logout")
	}
	if err := m.tokens.ClearToken(ctx); err != nil {
		log.Warn().Err(err).Msg("clear session token")
	}
	m.set(nil, StateAnonymous)
}

func (m *Manager) set(user *api.User, next State) {
	m.mu.Lock()
	prev := m.state
	m.state = next
	m.user = user
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	if prev == next {
		return
	}
	for _, l := range listeners {
		l(prev, next)
	}
}
