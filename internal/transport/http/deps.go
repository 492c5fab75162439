package http

import (
	"context"
	"time"

	"github.com/plant-catalog-api/internal/domain"
	jwtinfra "github.com/plant-catalog-api/internal/infrastructure/jwt"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
}

// PlantRepository is the read side of the catalog store.
type PlantRepository interface {
	Get(ctx context.Context, plantID string) (domain.Plant, error)
	// BatchGet returns the documents for ids in input order, skipping ids
	// without a document.
	BatchGet(ctx context.Context, ids []string) ([]domain.Plant, error)
}

// SavedPlantRepository stores (user_email, plant_id) bookmarks.
type SavedPlantRepository interface {
	Exists(ctx context.Context, email, plantID string) (bool, error)
	Put(ctx context.Context, s *domain.SavedPlant) error
	ListByUser(ctx context.Context, email string) ([]domain.SavedPlant, error)
}

// PasswordHasher hashes and compares passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// TokenCodec signs and verifies session tokens.
type TokenCodec interface {
	Sign(email string) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
	Expired(c *jwtinfra.Claims) bool
	TTL() time.Duration
}

// PlantCache is an optional read-through cache for plant documents.
type PlantCache interface {
	Get(ctx context.Context, plantID string) (domain.Plant, bool, error)
	Set(ctx context.Context, plantID string, p domain.Plant) error
}

// ImageStore presigns plant image keys.
type ImageStore interface {
	PresignedURL(ctx context.Context, key string) (string, error)
}

// EventPublisher sends activity events.
type EventPublisher interface {
	Publish(ctx context.Context, e domain.Event) error
}
