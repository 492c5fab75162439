package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTSecret           string
	JWTExpiry           time.Duration
	SessionCookieName   string
	SessionCookieSecure bool
	BcryptCost          int

	S3BucketName  string // empty disables plant image URLs
	S3PresignTTL  time.Duration
	SNSTopicARN   string // empty disables activity events
	RedisAddr     string // empty disables the plant cache
	RedisPassword string
	RedisDB       int
	PlantCacheTTL time.Duration

	RateLimitRPS      float64
	RateLimitBurst    int
	TrustProxyHeaders bool     // take the client IP from X-Forwarded-For / X-Real-IP
	AllowedOrigins    []string // CORS allowed origins; credentials are always allowed
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users       string
	Plants      string
	SavedPlants string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:  getEnv("APP_PORT", "3000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:       getEnv("DYNAMO_TABLE_USERS", "users"),
			Plants:      getEnv("DYNAMO_TABLE_PLANTS", "plants"),
			SavedPlants: getEnv("DYNAMO_TABLE_SAVED_PLANTS", "saved_plants"),
		},

		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTExpiry:           time.Duration(getEnvInt("JWT_EXPIRY_MINUTES", 60)) * time.Minute,
		SessionCookieName:   getEnv("SESSION_COOKIE_NAME", "token"),
		SessionCookieSecure: getEnvBool("SESSION_COOKIE_SECURE", false),
		BcryptCost:          getEnvInt("BCRYPT_COST", 10),

		S3BucketName:  getEnv("S3_BUCKET_NAME", ""),
		S3PresignTTL:  time.Duration(getEnvInt("S3_PRESIGN_MINUTES", 15)) * time.Minute,
		SNSTopicARN:   getEnv("SNS_TOPIC_ARN", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		PlantCacheTTL: time.Duration(getEnvInt("PLANT_CACHE_TTL_MINUTES", 10)) * time.Minute,

		RateLimitRPS:      getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:    getEnvInt("RATE_LIMIT_BURST", 10),
		TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),
		AllowedOrigins:    getEnvList("ALLOWED_ORIGINS", "http://localhost:3000"),
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.JWTExpiry <= 0 {
		return errors.New("JWT_EXPIRY_MINUTES must be positive")
	}
	if c.SessionCookieName == "" {
		return errors.New("SESSION_COOKIE_NAME must not be empty")
	}
	if len(c.AllowedOrigins) == 0 {
		return errors.New("ALLOWED_ORIGINS must list at least one origin")
	}
	for _, o := range c.AllowedOrigins {
		if strings.Contains(o, "*") {
			return errors.New("ALLOWED_ORIGINS must not contain wildcards: the session cookie is sent with credentials")
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvList splits a comma-separated value, dropping blank entries.
func getEnvList(key, fallback string) []string {
	var out []string
	for _, v := range strings.Split(getEnv(key, fallback), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
