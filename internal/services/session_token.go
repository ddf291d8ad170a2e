package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionAudience = "zakeke-session"

var ErrInvalidToken = errors.New("invalid session token")

type SessionClaims struct {
	jwt.RegisteredClaims
}

// SessionTokens issues and checks bearer tokens scoped to one configurator session.
type SessionTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionTokens(secret string, ttl time.Duration) (*SessionTokens, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, fmt.Errorf("session secret required")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionTokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (t *SessionTokens) TTL() time.Duration { return t.ttl }

func (t *SessionTokens) Issue(sessionID string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   sessionID,
			Audience:  jwt.ClaimStrings{sessionAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, exp, nil
}

// Verify returns the session id the token was issued for.
func (t *SessionTokens) Verify(tokenString string) (string, error) {
	if strings.TrimSpace(tokenString) == "" {
		return "", ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(sessionAudience),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
