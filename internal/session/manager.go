package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/five82/shelf/internal/dummyjson"
	"github.com/five82/shelf/internal/kv"
)

// State is the session lifecycle position.
type State int

const (
	Uninitialized State = iota
	Loading
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "uninitialized"
	}
}

// DefaultSessionMinutes is the session lifetime hint sent on login.
const DefaultSessionMinutes = 30

// Messages returned in failed LoginResults.
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgMissingCredentials = "Username and password are required"
	MsgUnreachable        = "Unable to reach the server. Please try again."
)

// LoginResult is the tagged outcome of Login.
type LoginResult struct {
	Success bool
	User    dummyjson.User
	Message string
}

// Manager owns authentication state.
type Manager struct {
	store          *kv.Store
	auth           dummyjson.Authenticator
	log            zerolog.Logger
	sessionMinutes int
	now            func() time.Time

	mu      sync.RWMutex
	state   State
	loading bool
	user    *dummyjson.User
	token   string
}

// Options configure a Manager.
type Options struct {
	SessionMinutes int
	Now            func() time.Time
}

// NewManager returns a Manager in the Uninitialized state. Call Restore
// before relying on CurrentUser.
func NewManager(store *kv.Store, auth dummyjson.Authenticator, log zerolog.Logger, opts Options) *Manager {
	minutes := opts.SessionMinutes
	if minutes <= 0 {
		minutes = DefaultSessionMinutes
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		store:          store,
		auth:           auth,
		log:            log.With().Str("component", "session").Logger(),
		sessionMinutes: minutes,
		now:            now,
		state:          Uninitialized,
		loading:        true,
	}
}

// Restore reloads a persisted session without touching the network. A
// malformed, incomplete or expired session is purged and the manager ends
// up Anonymous. Loading is false once Restore returns.
func (m *Manager) Restore() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = Loading
	m.loading = true
	defer func() { m.loading = false }()

	var user dummyjson.User
	if !m.store.Read(kv.KeyUser, &user) || user.ID == 0 || strings.TrimSpace(user.Username) == "" {
		m.clearLocked()
		return m.state
	}

	var token string
	m.store.Read(kv.KeyToken, &token)
	if exp, ok := tokenExpiry(token); ok && !exp.After(m.now()) {
		m.log.Info().Str("user", user.Username).Time("expired_at", exp).Msg("stored session expired")
		m.clearLocked()
		return m.state
	}

	m.user = &user
	m.token = token
	m.state = Authenticated
	m.log.Debug().Str("user", user.Username).Msg("session restored")
	return m.state
}

// Login authenticates against the remote API. It never returns an error;
// failures come back as a LoginResult with Success false and the state
// left as it was.
func (m *Manager) Login(ctx context.Context, username, password string) LoginResult {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{Message: MsgMissingCredentials}
	}

	resp, err := m.auth.Login(ctx, dummyjson.LoginRequest{
		Username:      username,
		Password:      password,
		ExpiresInMins: m.sessionMinutes,
	})
	if err != nil {
		m.log.Warn().Err(err).Str("user", username).Msg("login failed")
		return LoginResult{Message: failureMessage(err)}
	}
	token := resp.SessionToken()
	if token == "" {
		m.log.Warn().Str("user", username).Msg("login response carried no token")
		return LoginResult{Message: MsgInvalidCredentials}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user := resp.User
	m.store.Persist(kv.KeyUser, user)
	m.store.Persist(kv.KeyToken, token)
	if resp.RefreshToken != "" {
		m.store.Persist(kv.KeyRefreshToken, resp.RefreshToken)
	}
	m.user = &user
	m.token = token
	m.state = Authenticated
	m.loading = false
	m.log.Info().Str("user", user.Username).Int64("user_id", user.ID).Msg("logged in")
	return LoginResult{Success: true, User: user}
}

// Logout clears every session key and leaves the manager Anonymous.
// Calling it again is harmless.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user != nil {
		m.log.Info().Str("user", m.user.Username).Msg("logged out")
	}
	m.clearLocked()
}

// CurrentUser returns the signed-in user.
func (m *Manager) CurrentUser() (dummyjson.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return dummyjson.User{}, false
	}
	return *m.user, true
}

// UserID returns the signed-in user's id, or zero when anonymous.
func (m *Manager) UserID() int64 {
	u, ok := m.CurrentUser()
	if !ok {
		return 0
	}
	return u.ID
}

// IsLoading reports whether the initial restore is still pending.
func (m *Manager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// State returns the lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Token returns the session token, if any.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// SyncUsers fetches the remote user directory and caches it.
func (m *Manager) SyncUsers(ctx context.Context) ([]dummyjson.User, error) {
	users, err := m.auth.FetchUsers(ctx)
	if err != nil {
		m.log.Debug().Err(err).Msg("user sync failed")
		return nil, err
	}
	m.store.Persist(kv.KeyAllUsers, users)
	return users, nil
}

// KnownUsers returns the cached user directory.
func (m *Manager) KnownUsers() []dummyjson.User {
	var users []dummyjson.User
	m.store.Read(kv.KeyAllUsers, &users)
	return users
}

func (m *Manager) clearLocked() {
	for _, key := range []string{kv.KeyUser, kv.KeyToken, kv.KeyRefreshToken} {
		if err := m.store.Remove(key); err != nil {
			m.log.Warn().Err(err).Str("key", key).Msg("failed to clear session key")
		}
	}
	m.user = nil
	m.token = ""
	m.state = Anonymous
}

func failureMessage(err error) string {
	var apiErr *dummyjson.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return MsgInvalidCredentials
	}
	if dummyjson.IsTransport(err) {
		return MsgUnreachable
	}
	return MsgInvalidCredentials
}

// tokenExpiry reads the exp claim of a JWT without verifying its signature;
// the token is only inspected locally to decide whether to keep a session.
func tokenExpiry(token string) (time.Time, bool) {
	if strings.Count(token, ".") != 2 {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
