package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/plant-catalog-api/internal/config"
	"github.com/plant-catalog-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/plant-catalog-api/internal/infrastructure/jwt"
	redisinfra "github.com/plant-catalog-api/internal/infrastructure/redis"
	s3infra "github.com/plant-catalog-api/internal/infrastructure/s3"
	"github.com/plant-catalog-api/internal/infrastructure/sns"
	"github.com/plant-catalog-api/internal/pkg/password"
	transporthttp "github.com/plant-catalog-api/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	envErr := godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})))
	if envErr != nil {
		slog.Info("no .env file found, reading from environment")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	tokens, err := jwtinfra.NewProvider([]byte(cfg.JWTSecret), cfg.JWTExpiry)
	if err != nil {
		return err
	}

	deps := &transporthttp.Deps{
		UserRepo:       dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		PlantRepo:      dynamo.NewPlantRepo(dynamoClient, cfg.DynamoTables.Plants),
		SavedPlantRepo: dynamo.NewSavedPlantRepo(dynamoClient, cfg.DynamoTables.SavedPlants),
		Hasher:         password.NewHasher(cfg.BcryptCost),
		Tokens:         tokens,
	}

	// Optional collaborators, each disabled when its setting is empty.
	if cfg.S3BucketName != "" {
		s3Client, err := s3infra.NewClient(ctx, cfg)
		if err != nil {
			return err
		}
		deps.Images = s3infra.NewStore(s3Client, cfg.S3BucketName, cfg.S3PresignTTL)
	}
	if cfg.SNSTopicARN != "" {
		snsClient, err := sns.NewClient(ctx, cfg)
		if err != nil {
			return err
		}
		deps.Publisher = sns.NewPublisher(snsClient, cfg.SNSTopicARN)
	}
	if cfg.RedisAddr != "" {
		rdb := redisinfra.NewClient(cfg)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unreachable, plant cache disabled", "addr", cfg.RedisAddr, "err", err)
		} else {
			deps.Cache = redisinfra.NewPlantCache(rdb, cfg.PlantCacheTTL)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
