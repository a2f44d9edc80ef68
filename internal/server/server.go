package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
}

// New wires services and routes. redisClient may be nil, in which case
// tokens are revoked in memory, short links are not cached and recipe
// creation is not rate limited.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, images service.ImageStore) *Server {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.CORS(cfg.AllowedOrigins()),
	)
	router.NoRoute(middleware.NotFound())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.StorageBackend == "local" && strings.HasPrefix(cfg.MediaURL, "/") {
		router.Static(cfg.MediaURL, cfg.MediaRoot)
	}

	var tokens service.TokenStore = service.NewMemoryTokenStore()
	var createLimiter *middleware.RateLimiter
	checks := map[string]api.HealthCheck{
		"database": func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
	}
	if redisClient != nil {
		tokens = service.NewRedisTokenStore(redisClient)
		createLimiter = middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreateLimit, cfg.RecipeCreateWindow)
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, tokens)
	links := service.NewShortLinkService(db, redisClient, cfg.ShortLinkSalt, cfg.ShortLinkMinLength)

	api.RegisterRoutes(router, api.Dependencies{
		Auth:                auth,
		Users:               service.NewUserService(db, images),
		Subscriptions:       service.NewSubscriptionService(db),
		Ingredients:         service.NewIngredientService(db),
		Recipes:             service.NewRecipeService(db, images, links),
		ShopLists:           service.NewShopListService(db),
		ShortLinks:          links,
		RecipeCreateLimiter: createLimiter,
		LoginLimiter:        middleware.NewIPRateLimiter(cfg.LoginRatePerMinute),
		HealthChecks:        checks,
		Settings: api.Settings{
			PublicURL:   cfg.PublicURL,
			PageSize:    cfg.PageSize,
			MaxPageSize: cfg.MaxPageSize,
		},
	})

	return &Server{
		cfg:    cfg,
		router: router,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	logging.Info().Str("addr", s.http.Addr).Msg("starting http server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// NewImageStore picks the image backend named by cfg.StorageBackend.
func NewImageStore(ctx context.Context, cfg *config.Config) (service.ImageStore, error) {
	switch cfg.StorageBackend {
	case "s3":
		s3Config, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to configure s3: %w", err)
		}
		if err := s3Config.SetupBucketPolicy(ctx); err != nil {
			logging.Warn().Err(err).Str("bucket", s3Config.BucketName).Msg("could not apply public read policy")
		}
		return service.NewS3Store(s3Config, cfg.MaxImageWidth), nil
	case "local":
		return service.NewLocalStore(cfg.MediaRoot, cfg.MediaURL, cfg.MaxImageWidth), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}
