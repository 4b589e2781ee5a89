// Package token issues and verifies the signed bearer tokens handed to admins
// after login. Tokens are stateless: they are revoked only by expiry or by
// rotating the signing secret.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTTL = 7 * 24 * time.Hour

var (
	ErrEmptySecret  = errors.New("token: signing secret is empty")
	ErrInvalidToken = errors.New("token: invalid token")
	ErrExpiredToken = errors.New("token: expired")
)

// Claims is the claim set carried by an admin token.
type Claims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock returns a copy of the manager that reads time from now.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	c := *m
	c.now = now
	return &c
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func (m *Manager) Issue(userID int64, username string) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrEmptySecret
	}

	now := m.now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, signing method and expiry. Every failure wraps
// ErrInvalidToken.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	if len(m.secret) == 0 {
		return nil, ErrEmptySecret
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, ErrExpiredToken)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractBearer returns the token from an Authorization header of the exact
// form "Bearer <token>".
func ExtractBearer(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}

	tok := header[len(prefix):]
	if tok == "" || strings.ContainsAny(tok, " \t") {
		return "", false
	}
	return tok, true
}
