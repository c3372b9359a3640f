package user

import (
	"errors"
	"time"

	"github.com/o1egl/paseto"
)

const (
	purposeSession    = "session"
	purposeActivation = "activation"

	SessionTTL    = 24 * time.Hour
	ActivationTTL = 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenMaker issues and verifies symmetric paseto v2 tokens for login
// sessions and account-activation links.
type TokenMaker struct {
	v2  *paseto.V2
	key []byte
}

func NewTokenMaker(key string) (*TokenMaker, error) {
	if len(key) != 32 {
		return nil, errors.New("token key must be exactly 32 bytes")
	}
	return &TokenMaker{v2: paseto.NewV2(), key: []byte(key)}, nil
}

func (m *TokenMaker) issue(userID, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := paseto.JSONToken{
		Subject:    userID,
		IssuedAt:   now,
		Expiration: now.Add(ttl),
	}
	claims.Set("purpose", purpose)
	return m.v2.Encrypt(m.key, claims, nil)
}

func (m *TokenMaker) SessionToken(userID string) (string, error) {
	return m.issue(userID, purposeSession, SessionTTL)
}

func (m *TokenMaker) ActivationToken(userID string) (string, error) {
	return m.issue(userID, purposeActivation, ActivationTTL)
}

func (m *TokenMaker) verify(token, purpose string) (string, error) {
	var claims paseto.JSONToken
	if err := m.v2.Decrypt(token, m.key, &claims, nil); err != nil {
		return "", ErrInvalidToken
	}
	if err := claims.Validate(paseto.ValidAt(time.Now())); err != nil {
		return "", ErrInvalidToken
	}
	if claims.Get("purpose") != purpose {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// VerifySession returns the user id carried by a valid session token.
func (m *TokenMaker) VerifySession(token string) (string, error) {
	return m.verify(token, purposeSession)
}

// VerifyActivation returns the user id carried by a valid activation token.
func (m *TokenMaker) VerifyActivation(token string) (string, error) {
	return m.verify(token, purposeActivation)
}
