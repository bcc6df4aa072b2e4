package rest

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/unischedule/dashboard/internal/core/domain"
)

var (
	ErrMissingToken = fmt.Errorf("%w: no bearer token configured", domain.ErrUnauthorized)
	ErrTokenExpired = fmt.Errorf("%w: bearer token has expired", domain.ErrUnauthorized)
)

// Credentials supplies the Authorization header for backend calls.
// An empty header with a nil error means the request goes out anonymously.
type Credentials interface {
	Authorization() (string, error)
}

type staticToken struct {
	token string
	now   func() time.Time
}

// StaticToken sends token as a bearer credential on every request. If the
// token is a JWT with an exp claim in the past, requests fail before they
// reach the network.
func StaticToken(token string) Credentials {
	return staticToken{token: strings.TrimSpace(token), now: time.Now}
}

func (s staticToken) Authorization() (string, error) {
	if s.token == "" {
		return "", ErrMissingToken
	}
	if expired(s.token, s.now()) {
		return "", ErrTokenExpired
	}
	return "Bearer " + s.token, nil
}

// expired inspects the exp claim without verifying the signature; the
// backend does the verification. Opaque tokens never count as expired.
func expired(token string, now time.Time) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

type anonymous struct{}

// Anonymous sends no Authorization header at all.
func Anonymous() Credentials { return anonymous{} }

func (anonymous) Authorization() (string, error) { return "", nil }
