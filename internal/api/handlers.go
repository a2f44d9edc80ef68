package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// HealthCheck probes one backing dependency.
type HealthCheck func(ctx context.Context) error

// Dependencies carries everything the HTTP layer needs. The limiters and
// health checks are optional.
type Dependencies struct {
	Auth          service.IAuthService
	Users         service.IUserService
	Subscriptions service.ISubscriptionService
	Ingredients   service.IIngredientService
	Recipes       service.IRecipeService
	ShopLists     service.IShopListService
	ShortLinks    service.IShortLinkService

	RecipeCreateLimiter *middleware.RateLimiter
	LoginLimiter        *middleware.IPRateLimiter
	HealthChecks        map[string]HealthCheck

	Settings Settings
}

// RegisterRoutes registers the health probe, the /api tree and the short
// link resolver.
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	RegisterValidators()

	router.GET("/health", healthHandler(deps.HealthChecks))

	api := router.Group("/api")
	{
		NewAuthHandler(deps.Auth, deps.LoginLimiter).RegisterRoutes(api)
		NewUserHandler(deps.Auth, deps.Users, deps.Subscriptions, deps.Settings).RegisterRoutes(api)
		NewIngredientHandler(deps.Ingredients).RegisterRoutes(api)
		NewRecipeHandler(deps.Auth, deps.Recipes, deps.ShopLists, deps.ShortLinks, deps.RecipeCreateLimiter, deps.Settings).RegisterRoutes(api)
	}

	NewShortLinkHandler(deps.Auth, deps.Recipes, deps.ShortLinks, deps.Settings).RegisterRoutes(router)
}

// healthHandler reports "ok" when every check passes, otherwise 503 with
// the failing components.
func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		components := make(map[string]string, len(checks))
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				components[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			components[name] = "ok"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		c.JSON(status, gin.H{
			"status":     overall,
			"components": components,
		})
	}
}
