package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/logging"
)

// Recovery turns panics into a JSON 500 response and logs them.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logging.Error().
					Interface("panic", err).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("recovered from panic")
				abortWithDetail(c, http.StatusInternalServerError, "internal server error")
			}
		}()
		c.Next()
	}
}

// NotFound renders unknown routes in the API error shape.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		abortWithDetail(c, http.StatusNotFound, "not found")
	}
}
