// Package session resolves the partner's opaque session credential to a
// durable account id. The browser holds an HTTP-only cookie carrying a signed
// token whose subject is a server-side session id; the id -> account mapping
// lives in the Store so logout revokes server-side, not just in the cookie.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the session cookie set on login/registration.
const CookieName = "partner_session"

// ErrNotAuthenticated is returned when no valid session can be resolved.
var ErrNotAuthenticated = errors.New("not authenticated")

type sessionClaims struct {
	jwt.RegisteredClaims
}

// Manager issues, resolves, and revokes partner sessions.
type Manager struct {
	secret []byte
	ttl    time.Duration
	store  Store
	secure bool
}

// NewManager creates a Manager. secure controls the cookie Secure flag and
// should be true everywhere except local development.
func NewManager(secret string, ttl time.Duration, store Store, secure bool) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, store: store, secure: secure}
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue creates a session for the account and returns the cookie to set.
func (m *Manager) Issue(ctx context.Context, accountID uuid.UUID) (*http.Cookie, error) {
	sessionID := uuid.New().String()
	if err := m.store.Put(ctx, sessionID, accountID, m.ttl); err != nil {
		return nil, err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return nil, err
	}

	return &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Resolve verifies the token and looks up the account it names. Any failure
// (bad signature, expiry, revoked session) collapses to ErrNotAuthenticated:
// callers must not distinguish why a credential is invalid.
func (m *Manager) Resolve(ctx context.Context, tokenString string) (uuid.UUID, error) {
	sessionID, err := m.verify(tokenString)
	if err != nil {
		return uuid.Nil, ErrNotAuthenticated
	}
	accountID, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return uuid.Nil, ErrNotAuthenticated
	}
	return accountID, nil
}

// Revoke deletes the session named by the token. Unparseable tokens are a
// no-op: the caller is logging out either way.
func (m *Manager) Revoke(ctx context.Context, tokenString string) error {
	sessionID, err := m.verify(tokenString)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, sessionID)
}

// ClearCookie returns an expired cookie that removes the session cookie.
func (m *Manager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) verify(tokenString string) (string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrNotAuthenticated
	}
	return claims.Subject, nil
}
