package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/servir-hc/internal/handler"
	"github.com/jwalitptl/servir-hc/internal/session"
	apperrors "github.com/jwalitptl/servir-hc/pkg/errors"
)

// RequireSession answers 401 unless a practitioner is logged in.
func RequireSession(sess *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sess.IsAuthenticated() {
			handler.RespondError(c, apperrors.NoSession())
			c.Abort()
			return
		}
		c.Next()
	}
}
