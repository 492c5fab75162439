package jwtinfra

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := NewProvider([]byte("test-secret"), time.Hour)
	require.NoError(t, err)
	return p
}

// flip returns s with the byte at i replaced by a different base64url character.
func flip(s string, i int) string {
	b := []byte(s)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}

func TestNewProvider_RejectsBadConfig(t *testing.T) {
	_, err := NewProvider(nil, time.Hour)
	assert.Error(t, err)
	_, err = NewProvider([]byte("s"), 0)
	assert.Error(t, err)
}

func TestSignVerify_RoundTrip(t *testing.T) {
	p := newTestProvider(t)
	tok, err := p.Sign("alice@example.com")
	require.NoError(t, err)

	c, err := p.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", c.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), c.ExpiresAt.Time, 5*time.Second)
	assert.False(t, p.Expired(c))
}

func TestIssue_CustomTTL(t *testing.T) {
	p := newTestProvider(t)
	tok, err := p.Issue("bob@example.com", 5*time.Minute)
	require.NoError(t, err)

	c, err := p.Verify(tok)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), c.ExpiresAt.Time, 5*time.Second)
}

func TestVerify_TamperedPayload(t *testing.T) {
	p := newTestProvider(t)
	tok, err := p.Sign("alice@example.com")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	for i := 0; i < len(parts[1]); i++ {
		parts := strings.Split(tok, ".")
		parts[1] = flip(parts[1], i)
		_, err := p.Verify(strings.Join(parts, "."))
		assert.True(t, errors.Is(err, ErrInvalidToken), "payload byte %d", i)
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	p := newTestProvider(t)
	tok, err := p.Sign("alice@example.com")
	require.NoError(t, err)

	sigStart := strings.LastIndex(tok, ".") + 1
	// The final character of a 32-byte HMAC in base64url carries only padding
	// bits, so it is skipped.
	for i := sigStart; i < len(tok)-1; i++ {
		_, err := p.Verify(flip(tok, i))
		assert.True(t, errors.Is(err, ErrInvalidToken), "signature byte %d", i-sigStart)
	}
}

func TestVerify_ForgedPayloadWithOriginalSignature(t *testing.T) {
	p := newTestProvider(t)
	tok, err := p.Sign("alice@example.com")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(`{"email":"mallory@example.com","exp":9999999999}`))
	_, err = p.Verify(strings.Join(parts, "."))
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestVerify_WrongSecret(t *testing.T) {
	other, err := NewProvider([]byte("other-secret"), time.Hour)
	require.NoError(t, err)
	tok, err := other.Sign("alice@example.com")
	require.NoError(t, err)

	_, err = newTestProvider(t).Verify(tok)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestVerify_Malformed(t *testing.T) {
	p := newTestProvider(t)
	for _, tok := range []string{"", "garbage", "a.b.c", "a.b"} {
		_, err := p.Verify(tok)
		assert.True(t, errors.Is(err, ErrInvalidToken), "token %q", tok)
	}
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{
		Email: "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestProvider(t).Verify(tok)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestVerify_MissingExpiry(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Email: "alice@example.com"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = newTestProvider(t).Verify(tok)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestExpiredToken_VerifiesButIsExpired(t *testing.T) {
	p := newTestProvider(t)
	tok, err := p.Issue("alice@example.com", -time.Minute)
	require.NoError(t, err)

	c, err := p.Verify(tok)
	require.NoError(t, err, "signature is still valid")
	assert.True(t, p.Expired(c))

	_, err = p.Check(tok)
	assert.True(t, errors.Is(err, ErrTokenExpired))
	assert.False(t, errors.Is(err, ErrInvalidToken))
}

func TestCheck_ExpiresWithClock(t *testing.T) {
	p := newTestProvider(t)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return base }

	tok, err := p.Sign("alice@example.com")
	require.NoError(t, err)

	p.now = func() time.Time { return base.Add(59 * time.Minute) }
	_, err = p.Check(tok)
	assert.NoError(t, err)

	p.now = func() time.Time { return base.Add(61 * time.Minute) }
	_, err = p.Check(tok)
	assert.True(t, errors.Is(err, ErrTokenExpired))
}
