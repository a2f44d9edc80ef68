package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// ShortLinkHandler resolves short recipe links.
type ShortLinkHandler struct {
	auth       service.IAuthService
	recipes    service.IRecipeService
	shortLinks service.IShortLinkService
	settings   Settings
}

func NewShortLinkHandler(auth service.IAuthService, recipes service.IRecipeService, shortLinks service.IShortLinkService, settings Settings) *ShortLinkHandler {
	return &ShortLinkHandler{
		auth:       auth,
		recipes:    recipes,
		shortLinks: shortLinks,
		settings:   settings.withDefaults(),
	}
}

// RegisterRoutes mounts GET /s/:code on router, outside of the /api prefix.
func (h *ShortLinkHandler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/s/:code", middleware.OptionalAuth(h.auth), h.Resolve)
}

// Resolve returns the recipe behind a short link code.
func (h *ShortLinkHandler) Resolve(c *gin.Context) {
	ctx := c.Request.Context()
	recipeID, err := h.shortLinks.Resolve(ctx, c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	recipe, err := h.recipes.GetRecipe(ctx, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}

	viewerID, _ := middleware.UserID(c)
	state, err := h.recipes.ViewerState(ctx, viewerID, *recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.settings.fullRecipeView(c, recipe, state))
}
