package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionToken is a signed admin session carried in a cookie. Exp is the
// idle deadline; the middleware re-issues the token on every authenticated
// request so the deadline slides while the admin keeps working.
type SessionToken struct {
	Token string    // serialized JWT
	Exp   time.Time // UTC idle deadline
}

var ErrInvalidSession = errors.New("invalid session")

// NewSessionToken builds and signs an HS256 admin session token valid for
// the given idle TTL. Claims: jti (random session id), exp and iat.
func NewSessionToken(secret string, idleTTL time.Duration) (SessionToken, error) {
	exp := time.Now().UTC().Add(idleTTL)
	claims := jwt.MapClaims{
		"jti": uuid.NewString(),
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// VerifySessionToken parses and validates a session cookie value. It returns
// ErrInvalidSession for any signature, format or expiry problem; callers do
// not need to distinguish them.
func VerifySessionToken(secret, raw string) error {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return ErrInvalidSession
	}
	return nil
}
