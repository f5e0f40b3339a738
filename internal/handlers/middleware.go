package handlers

import (
	"net/http"

	"campus_portal/internal/clients"
	"campus_portal/internal/models"
	"campus_portal/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ClientHeader = "X-Client-ID"
	ClientCookie = "vhelpcc_client"

	clientKey = "client"
	userKey   = "user"
)

// ClientMiddleware resolves the browser profile behind a request and
// attaches its client. Unknown or malformed ids get a fresh one.
func ClientMiddleware(registry *clients.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(ClientHeader)
		if id == "" {
			id, _ = c.Cookie(ClientCookie)
		}
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(ClientCookie, id, 365*24*60*60, "/", "", false, true)
		c.Header(ClientHeader, id)
		c.Set(clientKey, registry.Get(id))
		c.Next()
	}
}

func clientFrom(c *gin.Context) *clients.Client {
	return c.MustGet(clientKey).(*clients.Client)
}

// RequireRole lets the request through only for a confirmed user holding
// one of roles.
func RequireRole(portal *services.Portal, roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := portal.Gate(clientFrom(c)).CurrentUser(c.Request.Context())
		if err != nil || user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		for _, r := range roles {
			if user.Role == string(r) {
				c.Set(userKey, user)
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}

func userFrom(c *gin.Context) *models.User {
	return c.MustGet(userKey).(*models.User)
}
