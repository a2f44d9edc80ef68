package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	qrcode "github.com/skip2/go-qrcode"
)

// RecipeHandler handles recipe related HTTP requests
type RecipeHandler struct {
	auth          service.IAuthService
	recipes       service.IRecipeService
	shopLists     service.IShopListService
	shortLinks    service.IShortLinkService
	createLimiter *middleware.RateLimiter
	settings      Settings
}

// NewRecipeHandler creates a new RecipeHandler. createLimiter may be nil,
// in which case recipe creation is not rate limited.
func NewRecipeHandler(
	auth service.IAuthService,
	recipes service.IRecipeService,
	shopLists service.IShopListService,
	shortLinks service.IShortLinkService,
	createLimiter *middleware.RateLimiter,
	settings Settings,
) *RecipeHandler {
	return &RecipeHandler{
		auth:          auth,
		recipes:       recipes,
		shopLists:     shopLists,
		shortLinks:    shortLinks,
		createLimiter: createLimiter,
		settings:      settings.withDefaults(),
	}
}

// RegisterRoutes registers all recipe routes
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.auth)
	optional := middleware.OptionalAuth(h.auth)

	create := []gin.HandlerFunc{required}
	if h.createLimiter != nil {
		create = append(create, h.createLimiter.RateLimitMiddleware())
	}

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.POST("", append(create, h.CreateRecipe)...)
		recipes.GET("/download_shopping_cart", required, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.PATCH("/:id", required, h.UpdateRecipe)
		recipes.DELETE("/:id", required, h.DeleteRecipe)
		recipes.POST("/:id/favorite", required, h.Favorite)
		recipes.DELETE("/:id/favorite", required, h.Unfavorite)
		recipes.POST("/:id/shopping_cart", required, h.AddToShoppingCart)
		recipes.DELETE("/:id/shopping_cart", required, h.RemoveFromShoppingCart)
		recipes.GET("/:id/get-link", h.GetLink)
		recipes.GET("/:id/qr", h.QRCode)
	}
}

// digitFlag reports whether a boolean filter is switched on. Any non-empty
// run of digits enables it, "0" included.
func digitFlag(raw string) bool {
	if raw == "" {
		return false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ListRecipes handles GET /recipes
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	req, ok := h.settings.pageRequest(c)
	if !ok {
		return
	}

	viewerID, _ := middleware.UserID(c)
	filter := service.RecipeFilter{
		ViewerID:       viewerID,
		Favorited:      digitFlag(c.Query("is_favorited")),
		InShoppingCart: digitFlag(c.Query("is_in_shopping_cart")),
	}
	if raw := c.Query("author"); raw != "" {
		author, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "author must be a user id"})
			return
		}
		id := uint(author)
		filter.AuthorID = &id
	}

	ctx := c.Request.Context()
	recipes, count, err := h.recipes.ListRecipes(ctx, filter, req)
	if err != nil {
		respondError(c, err)
		return
	}
	state, err := h.recipes.ViewerState(ctx, viewerID, recipes...)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]types.FullRecipeView, 0, len(recipes))
	for i := range recipes {
		views = append(views, h.settings.fullRecipeView(c, &recipes[i], state))
	}
	page, ok := buildPage(c, h.settings, req, count, views)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, page)
}

// renderRecipe writes the full view of recipe as seen by the current user.
func (h *RecipeHandler) renderRecipe(c *gin.Context, status int, recipe *models.Recipe) {
	viewerID, _ := middleware.UserID(c)
	state, err := h.recipes.ViewerState(c.Request.Context(), viewerID, *recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, h.settings.fullRecipeView(c, recipe, state))
}

// CreateRecipe handles POST /recipes
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	userID, _ := middleware.UserID(c)
	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.renderRecipe(c, http.StatusCreated, recipe)
}

// GetRecipe handles GET /recipes/:id
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.renderRecipe(c, http.StatusOK, recipe)
}

// UpdateRecipe handles PATCH /recipes/:id
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	userID, _ := middleware.UserID(c)
	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.renderRecipe(c, http.StatusOK, recipe)
}

// DeleteRecipe handles DELETE /recipes/:id
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	userID, _ := middleware.UserID(c)
	if err := h.recipes.DeleteRecipe(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) Favorite(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	userID, _ := middleware.UserID(c)
	recipe, err := h.recipes.FavoriteRecipe(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.settings.summaryRecipeView(c, recipe))
}

func (h *RecipeHandler) Unfavorite(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	userID, _ := middleware.UserID(c)
	if err := h.recipes.UnfavoriteRecipe(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	userID, _ := middleware.UserID(c)
	recipe, err := h.shopLists.AddToShoppingList(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.settings.summaryRecipeView(c, recipe))
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	userID, _ := middleware.UserID(c)
	if err := h.shopLists.RemoveFromShoppingList(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart sends the aggregated shopping list as a text file,
// or as a PDF with ?format=pdf.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	format := c.DefaultQuery("format", "txt")
	if format != "txt" && format != "pdf" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "format must be txt or pdf"})
		return
	}

	userID, _ := middleware.UserID(c)
	report, err := h.shopLists.GenerateShoppingReport(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if format == "pdf" {
		var buf bytes.Buffer
		if err := report.WritePDF(&buf); err != nil {
			respondError(c, err)
			return
		}
		metrics.ShoppingListDownloads.WithLabelValues(format).Inc()
		c.Header("Content-Disposition", `attachment; filename="shopping_list.pdf"`)
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
		return
	}

	metrics.ShoppingListDownloads.WithLabelValues(format).Inc()
	c.Header("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(report.Text()))
}

// shortLinkURL returns the public short link of the recipe in the :id param.
func (h *RecipeHandler) shortLinkURL(c *gin.Context) (string, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return "", false
	}

	code, err := h.shortLinks.GetOrCreate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return "", false
	}
	return h.settings.baseURL(c) + "/s/" + code, true
}

// GetLink handles GET /recipes/:id/get-link
func (h *RecipeHandler) GetLink(c *gin.Context) {
	link, ok := h.shortLinkURL(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, types.ShortLinkView{ShortLink: link})
}

// QRCode renders the recipe's short link as a PNG QR code.
func (h *RecipeHandler) QRCode(c *gin.Context) {
	link, ok := h.shortLinkURL(c)
	if !ok {
		return
	}

	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
