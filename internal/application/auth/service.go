package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/plant-catalog-api/internal/domain"
	"github.com/plant-catalog-api/internal/pkg/id"
	"github.com/plant-catalog-api/internal/pkg/password"
)

var (
	ErrEmailExists = fmt.Errorf("email already exists: %w", domain.ErrConflict)
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
)

type LoginResult struct {
	Token string
	User  *domain.User
}

type Service interface {
	Register(ctx context.Context, req domain.CredentialsRequest) (*domain.User, error)
	Login(ctx context.Context, req domain.CredentialsRequest) (*LoginResult, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
}

type passwordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

type tokenSigner interface {
	Sign(email string) (string, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, e domain.Event) error
}

type service struct {
	repo      userStore
	hasher    passwordHasher
	signer    tokenSigner
	publisher eventPublisher
}

// ServiceDeps wires the auth service. Publisher may be nil.
type ServiceDeps struct {
	UserRepo  userStore
	Hasher    passwordHasher
	Signer    tokenSigner
	Publisher eventPublisher
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:      deps.UserRepo,
		hasher:    deps.Hasher,
		signer:    deps.Signer,
		publisher: deps.Publisher,
	}
}

// Register creates a user unless the email is already taken. The lookup and
// the insert are not atomic: two concurrent registrations of one email can
// both succeed.
func (s *service) Register(ctx context.Context, req domain.CredentialsRequest) (*domain.User, error) {
	_, err := s.repo.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		UserID:       id.New(),
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, fmt.Errorf("store user: %w", err)
	}
	s.publish(ctx, domain.Event{
		Type:       domain.EventUserRegistered,
		Subject:    u.Email,
		Attributes: map[string]string{"user_id": u.UserID},
		OccurredAt: u.CreatedAt,
	})
	return u, nil
}

func (s *service) Login(ctx context.Context, req domain.CredentialsRequest) (*LoginResult, error) {
	u, err := s.repo.GetByEmail(ctx, req.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := s.hasher.Compare(u.PasswordHash, req.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}
	token, err := s.signer.Sign(u.Email)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	return &LoginResult{Token: token, User: u}, nil
}

func (s *service) publish(ctx context.Context, e domain.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		slog.WarnContext(ctx, "publish event failed", "type", e.Type, "err", err)
	}
}
