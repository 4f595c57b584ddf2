// Package session keeps the bearer token issued by the booking backend and
// answers login questions from it without touching the network.
//
// Only one token is held per install. Login state is derived from the
// token's exp claim on every read; an unreadable token always counts as
// expired.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/nasti/booking-client/internal/storage"
	"github.com/rs/zerolog/log"
)

const tokenKey = "access_token"

// Store is the single session slot of the app.
type Store struct {
	prefs storage.Prefs
	now   func() time.Time
	mu    sync.RWMutex
}

type Option func(*Store)

// WithClock overrides the wall clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New returns a Store persisting into prefs. prefs should be dedicated to the
// session: ClearSession wipes every key in it.
func New(prefs storage.Prefs, opts ...Option) *Store {
	s := &Store{
		prefs: prefs,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveToken stores token verbatim, replacing any previous one. The token is
// not validated.
func (s *Store) SaveToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prefs.PutString(tokenKey, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Token returns the stored token. ok is false when no token is stored.
func (s *Store) Token() (token string, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token()
}

func (s *Store) token() (string, bool, error) {
	token, ok, err := s.prefs.GetString(tokenKey)
	if err != nil {
		return "", false, fmt.Errorf("failed to read token: %w", err)
	}
	return token, ok, nil
}

// ClearSession removes the token and every other session field. Calling it
// without a stored session is a no-op.
func (s *Store) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prefs.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// IsLoggedIn reports whether a token is stored, decodes, and has an exp
// claim strictly in the future. The error is non-nil only for storage faults.
func (s *Store) IsLoggedIn() (bool, error) {
	claims, ok, err := s.claims()
	if err != nil || !ok {
		return false, err
	}
	return !claims.Expired(s.now()), nil
}

// IsTokenExpired is true whenever the caller cannot proceed with the stored
// session, which includes having no session at all.
func (s *Store) IsTokenExpired() (bool, error) {
	loggedIn, err := s.IsLoggedIn()
	if err != nil {
		return true, err
	}
	return !loggedIn, nil
}

// UserID returns the numeric sub claim of the stored token. It does not
// check expiry.
func (s *Store) UserID() (id int64, ok bool, err error) {
	claims, ok, err := s.claims()
	if err != nil || !ok || !claims.HasSubject {
		return 0, false, err
	}
	return claims.Subject, true, nil
}

// claims decodes the stored token. ok is false when there is no token or it
// cannot be decoded.
func (s *Store) claims() (Claims, bool, error) {
	s.mu.RLock()
	token, ok, err := s.token()
	s.mu.RUnlock()
	if err != nil || !ok {
		return Claims{}, false, err
	}

	claims, err := DecodeClaims(token)
	if err != nil {
		log.Debug().Err(err).Msg("stored token unreadable, treating session as expired")
		return Claims{}, false, nil
	}
	return claims, true, nil
}
