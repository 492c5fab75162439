package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/plant-catalog-api/internal/application/auth"
	"github.com/plant-catalog-api/internal/application/plant"
	"github.com/plant-catalog-api/internal/config"
	"github.com/plant-catalog-api/internal/transport/http/handler"
	appmiddleware "github.com/plant-catalog-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router. Cache, Images and
// Publisher may be nil.
type Deps struct {
	UserRepo       UserRepository
	PlantRepo      PlantRepository
	SavedPlantRepo SavedPlantRepository
	Hasher         PasswordHasher
	Tokens         TokenCodec
	Cache          PlantCache
	Images         ImageStore
	Publisher      EventPublisher
}

// NewRouter builds and returns the application router. ctx bounds background
// work started by the router.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxyHeaders {
		// Only behind a proxy that overwrites these headers; otherwise clients
		// could pick their own rate-limit bucket.
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	session := appmiddleware.Session(deps.Tokens, cfg.SessionCookieName)

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:  deps.UserRepo,
		Hasher:    deps.Hasher,
		Signer:    deps.Tokens,
		Publisher: deps.Publisher,
	})
	plantSvc := plant.NewService(plant.ServiceDeps{
		PlantRepo:      deps.PlantRepo,
		SavedPlantRepo: deps.SavedPlantRepo,
		Cache:          deps.Cache,
		Images:         deps.Images,
		Publisher:      deps.Publisher,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, handler.SessionCookie{
		Name:   cfg.SessionCookieName,
		Secure: cfg.SessionCookieSecure,
		TTL:    deps.Tokens.TTL(),
	})
	plantH := handler.NewPlantHandler(plantSvc)

	// ── Public routes ────────────────────────────────────────────────────
	r.Get("/health-check/{action}", healthH.Ping)
	r.With(sensitiveRL.Limit).Post("/register", authH.Register)
	r.With(sensitiveRL.Limit).Post("/login", authH.Login)
	r.Post("/logout", authH.Logout)

	// ── Session routes ───────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(session)

		r.Get("/Tanaman/{id}", plantH.Get)
		r.Post("/savePlant", plantH.Save)
		r.Get("/savedPlants", plantH.ListSaved)
	})

	return r
}
