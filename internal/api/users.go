package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserHandler serves profiles, passwords, avatars and subscriptions.
type UserHandler struct {
	auth          service.IAuthService
	users         service.IUserService
	subscriptions service.ISubscriptionService
	settings      Settings
}

func NewUserHandler(auth service.IAuthService, users service.IUserService, subscriptions service.ISubscriptionService, settings Settings) *UserHandler {
	return &UserHandler{
		auth:          auth,
		users:         users,
		subscriptions: subscriptions,
		settings:      settings.withDefaults(),
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.auth)
	optional := middleware.OptionalAuth(h.auth)

	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", optional, h.ListUsers)
		users.GET("/me", required, h.Me)
		users.PUT("/me/avatar", required, h.SetAvatar)
		users.DELETE("/me/avatar", required, h.DeleteAvatar)
		users.POST("/set_password", required, h.SetPassword)
		users.GET("/subscriptions", required, h.ListSubscriptions)
		users.GET("/:id", optional, h.GetUser)
		users.POST("/:id/subscribe", required, h.Subscribe)
		users.DELETE("/:id/subscribe", required, h.Unsubscribe)
	}
}

// Register creates an account. It is open to anonymous callers.
func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, registeredUserView(user))
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	req, ok := h.settings.pageRequest(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	users, count, err := h.users.ListUsers(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}

	viewerID, _ := middleware.UserID(c)
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	subscribed, err := h.users.IsSubscribed(ctx, viewerID, ids...)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]types.UserView, 0, len(users))
	for i := range users {
		views = append(views, h.settings.userView(c, &users[i], subscribed[users[i].ID]))
	}
	page, ok := buildPage(c, h.settings, req, count, views)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	h.renderUser(c, id)
}

// Me returns the authenticated user's own profile.
func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	h.renderUser(c, userID)
}

func (h *UserHandler) renderUser(c *gin.Context, id uint) {
	ctx := c.Request.Context()
	user, err := h.users.GetUser(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	viewerID, _ := middleware.UserID(c)
	subscribed, err := h.users.IsSubscribed(ctx, viewerID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.settings.userView(c, user, subscribed[user.ID]))
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	userID, _ := middleware.UserID(c)
	if err := h.users.SetPassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	var req types.AvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	userID, _ := middleware.UserID(c)
	url, err := h.users.SetAvatar(c.Request.Context(), userID, req.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.AvatarView{Avatar: h.settings.absolute(c, url)})
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	if err := h.users.DeleteAvatar(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListSubscriptions pages through the authors the actor follows.
func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	req, ok := h.settings.pageRequest(c)
	if !ok {
		return
	}
	limit, ok := recipesLimit(c)
	if !ok {
		return
	}

	userID, _ := middleware.UserID(c)
	digests, count, err := h.subscriptions.ListSubscriptions(c.Request.Context(), userID, req, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]types.SubscriptionView, 0, len(digests))
	for i := range digests {
		views = append(views, h.settings.subscriptionView(c, &digests[i]))
	}
	page, ok := buildPage(c, h.settings, req, count, views)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	targetID, ok := parseID(c, "id")
	if !ok {
		return
	}
	limit, ok := recipesLimit(c)
	if !ok {
		return
	}

	userID, _ := middleware.UserID(c)
	digest, err := h.subscriptions.Subscribe(c.Request.Context(), userID, targetID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.settings.subscriptionView(c, digest))
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	targetID, ok := parseID(c, "id")
	if !ok {
		return
	}

	userID, _ := middleware.UserID(c)
	if err := h.subscriptions.Unsubscribe(c.Request.Context(), userID, targetID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
