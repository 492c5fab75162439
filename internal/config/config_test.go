package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, "users", cfg.DynamoTables.Users)
	assert.Equal(t, "plants", cfg.DynamoTables.Plants)
	assert.Equal(t, "saved_plants", cfg.DynamoTables.SavedPlants)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "token", cfg.SessionCookieName)
	assert.False(t, cfg.SessionCookieSecure)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.False(t, cfg.TrustProxyHeaders)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRY_MINUTES", "5")
	t.Setenv("SESSION_COOKIE_SECURE", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("TRUST_PROXY_HEADERS", "true")
	t.Setenv("DYNAMO_TABLE_PLANTS", "Tanaman")

	cfg := Load()

	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 5*time.Minute, cfg.JWTExpiry)
	assert.True(t, cfg.SessionCookieSecure)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "Tanaman", cfg.DynamoTables.Plants)
	assert.True(t, cfg.TrustProxyHeaders)
}

func TestLoad_InvalidNumberFallsBack(t *testing.T) {
	t.Setenv("BCRYPT_COST", "ten")
	assert.Equal(t, 10, Load().BcryptCost)
}

func TestValidate(t *testing.T) {
	cfg := Load()
	require.Error(t, cfg.Validate(), "missing secret must be rejected")

	cfg.JWTSecret = "s3cret"
	require.NoError(t, cfg.Validate())

	cfg.JWTExpiry = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsWildcardOrigins(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	t.Setenv("ALLOWED_ORIGINS", "*")
	assert.Error(t, Load().Validate())

	t.Setenv("ALLOWED_ORIGINS", "https://app.example,https://*.example")
	assert.Error(t, Load().Validate())

	t.Setenv("ALLOWED_ORIGINS", " , ")
	assert.Error(t, Load().Validate())

	t.Setenv("ALLOWED_ORIGINS", "https://app.example")
	assert.NoError(t, Load().Validate())
}
