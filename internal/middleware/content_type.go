package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/servir-hc/internal/handler"
)

// RequireJSON rejects POST, PUT and PATCH bodies that are not application/json.
// Bodiless requests pass.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}
		if c.Request.ContentLength == 0 {
			c.Next()
			return
		}
		if c.ContentType() != gin.MIMEJSON {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType,
				handler.NewErrorResponse("content type must be application/json"))
			return
		}
		c.Next()
	}
}
