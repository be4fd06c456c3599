package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CookieName is the cookie carrying the signed visitor token.
const CookieName = "idcard_visitor"

const (
	contextKey = "visitor"
	issuer     = "idcard-web"
)

// VisitorAuth identifies the browser behind each request, minting a new
// visitor id when the cookie is missing, expired or forged.
func VisitorAuth(signingKey string, ttl time.Duration, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := c.Cookie(CookieName); err == nil && raw != "" {
			if claims, err := Parse(raw, signingKey, issuer); err == nil {
				c.Set(contextKey, claims.Visitor)
				c.Next()
				return
			}
		}

		id := uuid.NewString()
		token, _, err := Issue(id, issuer, signingKey, ttl)
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "visitor token issue failed", "error", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, token, int(ttl.Seconds()), "/", "", secure, true)
		c.Set(contextKey, id)
		c.Next()
	}
}

// VisitorID returns the id VisitorAuth attached to the request.
func VisitorID(c *gin.Context) string {
	return c.GetString(contextKey)
}
