package plant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/plant-catalog-api/internal/domain"
)

var (
	ErrPlantNotFound = fmt.Errorf("plant not found: %w", domain.ErrNotFound)
	ErrAlreadySaved  = fmt.Errorf("plant already saved: %w", domain.ErrConflict)
)

type Service interface {
	Get(ctx context.Context, plantID string) (domain.Plant, error)
	Save(ctx context.Context, email, plantID string) error
	ListSaved(ctx context.Context, email string) ([]domain.Plant, error)
}

type plantStore interface {
	Get(ctx context.Context, plantID string) (domain.Plant, error)
	BatchGet(ctx context.Context, ids []string) ([]domain.Plant, error)
}

type savedPlantStore interface {
	Exists(ctx context.Context, email, plantID string) (bool, error)
	Put(ctx context.Context, s *domain.SavedPlant) error
	ListByUser(ctx context.Context, email string) ([]domain.SavedPlant, error)
}

type plantCache interface {
	Get(ctx context.Context, plantID string) (domain.Plant, bool, error)
	Set(ctx context.Context, plantID string, p domain.Plant) error
}

type imageSigner interface {
	PresignedURL(ctx context.Context, key string) (string, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, e domain.Event) error
}

type service struct {
	plants    plantStore
	saved     savedPlantStore
	cache     plantCache
	images    imageSigner
	publisher eventPublisher
}

// ServiceDeps wires the plant service. Cache, Images and Publisher are optional.
type ServiceDeps struct {
	PlantRepo      plantStore
	SavedPlantRepo savedPlantStore
	Cache          plantCache
	Images         imageSigner
	Publisher      eventPublisher
}

func NewService(deps ServiceDeps) Service {
	return &service{
		plants:    deps.PlantRepo,
		saved:     deps.SavedPlantRepo,
		cache:     deps.Cache,
		images:    deps.Images,
		publisher: deps.Publisher,
	}
}

func (s *service) Get(ctx context.Context, plantID string) (domain.Plant, error) {
	p, err := s.load(ctx, plantID)
	if err != nil {
		return nil, err
	}
	return s.withImageURL(ctx, p), nil
}

func (s *service) load(ctx context.Context, plantID string) (domain.Plant, error) {
	if s.cache != nil {
		p, ok, err := s.cache.Get(ctx, plantID)
		if err != nil {
			slog.WarnContext(ctx, "plant cache read failed", "plant_id", plantID, "err", err)
		} else if ok {
			return p, nil
		}
	}
	p, err := s.plants.Get(ctx, plantID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrPlantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plant %s: %w", plantID, err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, plantID, p); err != nil {
			slog.WarnContext(ctx, "plant cache write failed", "plant_id", plantID, "err", err)
		}
	}
	return p, nil
}

// withImageURL returns a copy of p carrying a presigned image_url when the
// document has an image key. Presign failures leave the document unchanged.
func (s *service) withImageURL(ctx context.Context, p domain.Plant) domain.Plant {
	key := p.ImageKey()
	if s.images == nil || key == "" {
		return p
	}
	url, err := s.images.PresignedURL(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "presign plant image failed", "plant_id", p.ID(), "err", err)
		return p
	}
	out := make(domain.Plant, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	out[domain.ImageURLAttr] = url
	return out
}

// Save bookmarks plantID for email. The plant document is not required to
// exist.
func (s *service) Save(ctx context.Context, email, plantID string) error {
	exists, err := s.saved.Exists(ctx, email, plantID)
	if err != nil {
		return fmt.Errorf("check saved plant: %w", err)
	}
	if exists {
		return ErrAlreadySaved
	}
	now := time.Now().UTC()
	err = s.saved.Put(ctx, &domain.SavedPlant{UserEmail: email, PlantID: plantID, SavedAt: now})
	if errors.Is(err, domain.ErrConflict) {
		return ErrAlreadySaved
	}
	if err != nil {
		return fmt.Errorf("store saved plant: %w", err)
	}
	if s.publisher != nil {
		e := domain.Event{
			Type:       domain.EventPlantSaved,
			Subject:    email,
			Attributes: map[string]string{"plant_id": plantID},
			OccurredAt: now,
		}
		if err := s.publisher.Publish(ctx, e); err != nil {
			slog.WarnContext(ctx, "publish event failed", "type", e.Type, "err", err)
		}
	}
	return nil
}

// ListSaved returns the catalog documents bookmarked by email. Bookmarks whose
// document no longer exists are left out.
func (s *service) ListSaved(ctx context.Context, email string) ([]domain.Plant, error) {
	rows, err := s.saved.ListByUser(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list saved plants: %w", err)
	}
	if len(rows) == 0 {
		return []domain.Plant{}, nil
	}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.PlantID
	}
	plants, err := s.plants.BatchGet(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch saved plants: %w", err)
	}
	for i := range plants {
		plants[i] = s.withImageURL(ctx, plants[i])
	}
	return plants, nil
}
