package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSessionToken = errors.New("invalid session token")

// SessionIssuer mints and verifies the stateless bearer tokens returned at
// login. The signing key is process-wide configuration; tokens carry only
// the user id and remain valid until their own expiry.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type sessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

func NewSessionIssuer(secret []byte, ttl time.Duration) *SessionIssuer {
	secretCopy := make([]byte, len(secret))
	copy(secretCopy, secret)
	return &SessionIssuer{secret: secretCopy, ttl: ttl, now: time.Now}
}

func (s *SessionIssuer) TTL() time.Duration { return s.ttl }

func (s *SessionIssuer) Issue(userID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: userID,
	})
	return token.SignedString(s.secret)
}

// Verify parses a bearer token and returns the user id it binds. Expired or
// tampered tokens yield ErrInvalidSessionToken.
func (s *SessionIssuer) Verify(tokenString string) (string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidSessionToken
	}
	return claims.UserID, nil
}
