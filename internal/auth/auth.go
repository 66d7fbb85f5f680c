// Package auth issues and verifies the bearer tokens that identify the actor
// behind a request.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Actor is who performs an operation. The zero value is an anonymous visitor.
type Actor struct {
	UserID string
	Staff  bool
}

func (a Actor) Authenticated() bool { return a.UserID != "" }

// Claims holds the typed JWT payload.
type Claims struct {
	UserID string `json:"user_id"`
	Staff  bool   `json:"staff"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed HS256 token for the user.
func (i *Issuer) Issue(userID string, staff bool) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Staff:  staff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse validates the token and returns the actor it names.
func (i *Issuer) Parse(token string) (Actor, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid || claims.UserID == "" {
		return Actor{}, ErrInvalidToken
	}
	return Actor{UserID: claims.UserID, Staff: claims.Staff}, nil
}

type ctxKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext returns the actor stored by WithActor, or an anonymous one.
func FromContext(ctx context.Context) Actor {
	a, _ := ctx.Value(ctxKey{}).(Actor)
	return a
}
