package jwtinfra

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken covers malformed tokens, bad signatures and unsupported algorithms.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned for a correctly signed token whose exp has passed.
	ErrTokenExpired = errors.New("token expired")
)

// Claims holds the session token payload.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 session tokens with a shared secret.
type Provider struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewProvider(secret []byte, ttl time.Duration) (*Provider, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("jwt ttl must be positive")
	}
	return &Provider{secret: secret, ttl: ttl, now: time.Now}, nil
}

// TTL returns the lifetime given to tokens issued by Sign.
func (p *Provider) TTL() time.Duration { return p.ttl }

// Sign issues a token for email that expires after the provider TTL.
func (p *Provider) Sign(email string) (string, error) {
	return p.Issue(email, p.ttl)
}

// Issue issues a token for email with exp = now + ttl.
func (p *Provider) Issue(email string, ttl time.Duration) (string, error) {
	now := p.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// Verify checks structure and signature only. An expired token still
// verifies; callers compare the expiry themselves via Expired.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Email == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Expired reports whether the embedded expiry lies in the past.
func (p *Provider) Expired(c *Claims) bool {
	return c.ExpiresAt == nil || c.ExpiresAt.Time.Before(p.now())
}

// Check runs Verify and then the expiry comparison.
func (p *Provider) Check(tokenStr string) (*Claims, error) {
	c, err := p.Verify(tokenStr)
	if err != nil {
		return nil, err
	}
	if p.Expired(c) {
		return c, ErrTokenExpired
	}
	return c, nil
}
