package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/plant-catalog-api/internal/config"
	"github.com/plant-catalog-api/internal/domain"
	"github.com/plant-catalog-api/internal/infrastructure/dynamo"
	redisinfra "github.com/plant-catalog-api/internal/infrastructure/redis"
	s3infra "github.com/plant-catalog-api/internal/infrastructure/s3"
	"github.com/urfave/cli/v2"
)

func bootstrapCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "bootstrap",
		Usage: "Create the users, plants and saved_plants tables if missing",
		Action: func(ctx *cli.Context) error {
			client, err := dynamo.NewClient(ctx.Context, cfg)
			if err != nil {
				return err
			}
			dynamo.Bootstrap(ctx.Context, client, cfg.DynamoTables)
			return nil
		},
	}
}

func importCmd(cfg *config.Config) *cli.Command {
	var file string
	return &cli.Command{
		Name:  "import",
		Usage: "Load a JSON array of plant documents into the plants table",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "Path to the JSON catalog",
				Destination: &file,
				Required:    true,
			},
		},
		Action: func(ctx *cli.Context) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			plants, err := readCatalog(f)
			if err != nil {
				return err
			}
			client, err := dynamo.NewClient(ctx.Context, cfg)
			if err != nil {
				return err
			}
			cache, closeCache := newCacheEvicter(cfg)
			defer closeCache()
			n, err := importPlants(ctx.Context, dynamo.NewPlantRepo(client, cfg.DynamoTables.Plants), cache, plants)
			slog.Info("catalog import finished", "imported", n, "total", len(plants))
			return err
		},
	}
}

func imageCmd(cfg *config.Config) *cli.Command {
	var plantID, file string
	return &cli.Command{
		Name:  "image",
		Usage: "Upload an image and attach it to a plant document",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "id",
				Usage:       "Plant id",
				Destination: &plantID,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "Path to the image",
				Destination: &file,
				Required:    true,
			},
		},
		Action: func(ctx *cli.Context) error {
			if cfg.S3BucketName == "" {
				return errors.New("S3_BUCKET_NAME must be set")
			}
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			s3Client, err := s3infra.NewClient(ctx.Context, cfg)
			if err != nil {
				return err
			}
			dynamoClient, err := dynamo.NewClient(ctx.Context, cfg)
			if err != nil {
				return err
			}
			cache, closeCache := newCacheEvicter(cfg)
			defer closeCache()
			key, err := attachImage(ctx.Context,
				s3infra.NewStore(s3Client, cfg.S3BucketName, cfg.S3PresignTTL),
				dynamo.NewPlantRepo(dynamoClient, cfg.DynamoTables.Plants),
				cache, plantID, file, f)
			if err != nil {
				return err
			}
			slog.Info("image attached", "plant_id", plantID, "key", key)
			return nil
		},
	}
}

// readCatalog decodes a JSON array of plant documents. Each document must
// carry "plant_id" or "id"; "id" is renamed to "plant_id".
func readCatalog(r io.Reader) ([]domain.Plant, error) {
	var docs []domain.Plant
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for i, doc := range docs {
		if doc.ID() != "" {
			continue
		}
		id := stringID(doc["id"])
		if id == "" {
			return nil, fmt.Errorf("catalog entry %d has no id: %w", i, domain.ErrBadRequest)
		}
		delete(doc, "id")
		doc[domain.PlantIDAttr] = id
	}
	return docs, nil
}

func stringID(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}

type plantWriter interface {
	Put(ctx context.Context, p domain.Plant) error
}

// cacheEvicter drops cached plant documents the API may still be serving.
type cacheEvicter interface {
	Delete(ctx context.Context, plantID string) error
}

type noCache struct{}

func (noCache) Delete(context.Context, string) error { return nil }

// newCacheEvicter returns the Redis plant cache when REDIS_ADDR is set.
func newCacheEvicter(cfg *config.Config) (cacheEvicter, func()) {
	if cfg.RedisAddr == "" {
		return noCache{}, func() {}
	}
	rdb := redisinfra.NewClient(cfg)
	return redisinfra.NewPlantCache(rdb, cfg.PlantCacheTTL), func() { _ = rdb.Close() }
}

// evict only logs failures; a stale entry then lives until its TTL.
func evict(ctx context.Context, cache cacheEvicter, plantID string) {
	if err := cache.Delete(ctx, plantID); err != nil {
		slog.WarnContext(ctx, "plant cache eviction failed; cached copy stays until it expires", "plant_id", plantID, "err", err)
	}
}

// importPlants writes every document and reports how many succeeded. It stops
// at the first failure.
func importPlants(ctx context.Context, w plantWriter, cache cacheEvicter, plants []domain.Plant) (int, error) {
	for i, p := range plants {
		if err := w.Put(ctx, p); err != nil {
			return i, fmt.Errorf("import plant %s: %w", p.ID(), err)
		}
		evict(ctx, cache, p.ID())
	}
	return len(plants), nil
}

type imageUploader interface {
	Upload(ctx context.Context, key string, r io.Reader) (string, error)
}

type plantUpdater interface {
	Update(ctx context.Context, plantID string, updates map[string]interface{}) error
}

// attachImage uploads the image, records its key on the plant document and
// evicts the cached copy so the API picks up the new key.
func attachImage(ctx context.Context, up imageUploader, plants plantUpdater, cache cacheEvicter, plantID, filename string, r io.Reader) (string, error) {
	key := s3infra.ImageKey(plantID, filename)
	if _, err := up.Upload(ctx, key, r); err != nil {
		return "", err
	}
	if err := plants.Update(ctx, plantID, map[string]interface{}{domain.ImageKeyAttr: key}); err != nil {
		return "", fmt.Errorf("attach image to %s: %w", plantID, err)
	}
	evict(ctx, cache, plantID)
	return key, nil
}
