// Package auth guards ledger mutations behind a single static login with
// an optional TOTP second factor.
package auth

import (
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/pkg/id"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("not authenticated")
)

// DefaultSessionTTL is how long a login token stays valid.
const DefaultSessionTTL = 24 * time.Hour

// Gate checks credentials and tracks the session tokens it issued.
// Tokens live in memory only; a restart logs everyone out.
type Gate struct {
	username   []byte
	password   []byte
	totpSecret string

	now   func() time.Time
	newID func() string
	ttl   time.Duration

	mu       sync.Mutex
	sessions map[string]time.Time // token -> expiry
}

type Option func(*Gate)

func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

func WithTokens(newID func() string) Option {
	return func(g *Gate) { g.newID = newID }
}

// WithSessionTTL sets how long tokens issued by Login stay valid.
func WithSessionTTL(d time.Duration) Option {
	return func(g *Gate) { g.ttl = d }
}

func NewGate(cfg config.AuthConfig, opts ...Option) *Gate {
	g := &Gate{
		username:   []byte(cfg.Username),
		password:   []byte(cfg.Password),
		totpSecret: cfg.TOTPSecret,
		now:        time.Now,
		newID:      id.New,
		ttl:        DefaultSessionTTL,
		sessions:   make(map[string]time.Time),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// RequiresCode reports whether Login expects a TOTP code.
func (g *Gate) RequiresCode() bool {
	return g.totpSecret != ""
}

// Check verifies user and pass, plus code when a TOTP secret is set.
func (g *Gate) Check(user, pass, code string) error {
	userOK := subtle.ConstantTimeCompare([]byte(user), g.username) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), g.password) == 1
	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	if g.totpSecret == "" {
		return nil
	}

	ok, err := totp.ValidateCustom(code, g.totpSecret, g.now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil || !ok {
		return ErrInvalidCredentials
	}
	return nil
}

// Login checks the credentials and returns a new session token.
func (g *Gate) Login(user, pass, code string) (string, error) {
	if err := g.Check(user, pass, code); err != nil {
		return "", err
	}

	token := g.newID()
	g.mu.Lock()
	g.sessions[token] = g.now().Add(g.ttl)
	g.mu.Unlock()
	return token, nil
}

// Logout forgets token. Unknown tokens are ignored.
func (g *Gate) Logout(token string) {
	g.mu.Lock()
	delete(g.sessions, token)
	g.mu.Unlock()
}

// Authenticated reports whether token is a live session. Expired tokens
// are dropped.
func (g *Gate) Authenticated(token string) bool {
	if token == "" {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	expiry, ok := g.sessions[token]
	if !ok {
		return false
	}
	if !g.now().Before(expiry) {
		delete(g.sessions, token)
		return false
	}
	return true
}

// Require returns ErrUnauthenticated unless token is a live session.
func (g *Gate) Require(token string) error {
	if !g.Authenticated(token) {
		return ErrUnauthenticated
	}
	return nil
}
