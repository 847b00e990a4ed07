// Package session keeps the signed-in explorer for a client process and tells
// subscribers when it changes.
package session

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/world-explorer/client/credentials"
	"github.com/jrsteele09/world-explorer/users"
)

// API is the part of the API client the session needs.
type API interface {
	Store() credentials.Store
	MeOnce(ctx context.Context) (*users.PublicUser, error)
	Refresh(ctx context.Context) (string, error)
	Login(ctx context.Context, email, password string) (*users.PublicUser, error)
	Register(ctx context.Context, username, email, password string) (*users.PublicUser, error)
	Logout(ctx context.Context) error
	ToggleFavorite(ctx context.Context, countryCode string) ([]string, error)
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	User            *users.PublicUser
	Loading         bool
	IsAuthenticated bool
}

type Manager struct {
	api API
	log zerolog.Logger

	mu          sync.RWMutex
	user        *users.PublicUser
	loading     bool
	subscribers map[int]func(Snapshot)
	nextSubID   int
}

type Option func(*Manager)

func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

func New(api API, options ...Option) *Manager {
	m := &Manager{
		api:         api,
		log:         zerolog.Nop(),
		loading:     true,
		subscribers: make(map[int]func(Snapshot)),
	}
	for _, o := range options {
		o(m)
	}
	return m
}

// Init restores the session from the stored access token. Without a token it makes no
// network call. When whoami fails the token is refreshed once and whoami retried; a
// second failure forgets the token.
func (m *Manager) Init(ctx context.Context) error {
	store := m.api.Store()
	tok, err := store.Get()
	if err != nil {
		m.setUser(nil)
		return err
	}
	if tok == "" {
		m.setUser(nil)
		return nil
	}

	user, err := m.api.MeOnce(ctx)
	if err != nil {
		m.log.Debug().Err(err).Msg("whoami failed, refreshing access token")
		if _, err = m.api.Refresh(ctx); err == nil {
			user, err = m.api.MeOnce(ctx)
		}
	}
	if err != nil {
		m.log.Debug().Err(err).Msg("session could not be restored")
		if clearErr := store.Clear(); clearErr != nil {
			m.log.Warn().Err(clearErr).Msg("failed to clear access token")
		}
		m.setUser(nil)
		return nil
	}

	m.setUser(user)
	return nil
}

func (m *Manager) Login(ctx context.Context, email, password string) (*users.PublicUser, error) {
	user, err := m.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	m.setUser(user)
	return copyUser(user), nil
}

func (m *Manager) Register(ctx context.Context, username, email, password string) (*users.PublicUser, error) {
	user, err := m.api.Register(ctx, username, email, password)
	if err != nil {
		return nil, err
	}
	m.setUser(user)
	return copyUser(user), nil
}

// Logout always forgets the local session. A server error is logged and returned.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.api.Logout(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("logout request failed")
		if clearErr := m.api.Store().Clear(); clearErr != nil {
			m.log.Warn().Err(clearErr).Msg("failed to clear access token")
		}
	}
	m.setUser(nil)
	return err
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// Subscribe calls fn after every change. The returned func removes the subscription.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

// ToggleFavorite adds or removes countryCode and keeps the session user in step.
func (m *Manager) ToggleFavorite(ctx context.Context, countryCode string) ([]string, error) {
	codes, err := m.api.ToggleFavorite(ctx, countryCode)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.user != nil {
		m.user.FavoriteCountries = slices.Clone(codes)
	}
	snap, subs := m.snapshotLocked(), m.subscriberList()
	m.mu.Unlock()

	publish(subs, snap)
	return codes, nil
}

func (m *Manager) IsFavorite(countryCode string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil && slices.Contains(m.user.FavoriteCountries, countryCode)
}

func (m *Manager) setUser(user *users.PublicUser) {
	m.mu.Lock()
	m.user = copyUser(user)
	m.loading = false
	snap, subs := m.snapshotLocked(), m.subscriberList()
	m.mu.Unlock()

	publish(subs, snap)
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{User: copyUser(m.user), Loading: m.loading, IsAuthenticated: m.user != nil}
}

func (m *Manager) subscriberList() []func(Snapshot) {
	subs := make([]func(Snapshot), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func publish(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}

func copyUser(u *users.PublicUser) *users.PublicUser {
	if u == nil {
		return nil
	}
	c := *u
	c.FavoriteCountries = slices.Clone(u.FavoriteCountries)
	return &c
}
