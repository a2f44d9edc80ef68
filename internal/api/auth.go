package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// AuthHandler issues and revokes API tokens.
type AuthHandler struct {
	auth         service.IAuthService
	loginLimiter *middleware.IPRateLimiter
}

// NewAuthHandler creates an AuthHandler. loginLimiter may be nil.
func NewAuthHandler(auth service.IAuthService, loginLimiter *middleware.IPRateLimiter) *AuthHandler {
	return &AuthHandler{auth: auth, loginLimiter: loginLimiter}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth/token")
	{
		login := []gin.HandlerFunc{}
		if h.loginLimiter != nil {
			login = append(login, h.loginLimiter.Middleware())
		}
		auth.POST("/login", append(login, h.Login)...)
		auth.POST("/logout", middleware.AuthMiddleware(h.auth), h.Logout)
	}
}

// Login exchanges credentials for a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logging.Debug().Str("email", req.Email).Msg("login rejected")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.TokenView{AuthToken: token})
}

// Logout revokes the token used for the request.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "authentication credentials were not provided"})
		return
	}
	if err := h.auth.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
