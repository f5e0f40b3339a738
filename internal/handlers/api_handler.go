package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"campus_portal/internal/auth"
	"campus_portal/internal/events"
	"campus_portal/internal/models"
	"campus_portal/internal/services"
	"campus_portal/internal/storage"

	"github.com/gin-gonic/gin"
)

// APIHandler serves the client session surface and account administration.
type APIHandler struct {
	portal      *services.Portal
	userService services.UserService
}

func NewAPIHandler(portal *services.Portal, userService services.UserService) *APIHandler {
	return &APIHandler{portal: portal, userService: userService}
}

// GetSession reports what the server holds for this client from the
// snapshot alone.
func (h *APIHandler) GetSession(c *gin.Context) {
	ctx := c.Request.Context()
	client := clientFrom(c)

	count, err := h.portal.Cart(client).ItemCount(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	user := h.portal.Gate(client).CurrentUserSync(ctx)
	c.JSON(http.StatusOK, gin.H{
		"client_id":       client.ID,
		"authenticated":   user != nil,
		"user":            user,
		"cart_item_count": count,
	})
}

// Events streams this client's cart and auth changes as server-sent events.
// Changes made in this process come from the client's bus; changes other
// server instances write to local storage are mapped onto the same events.
func (h *APIHandler) Events(c *gin.Context) {
	ctx := c.Request.Context()
	client := clientFrom(c)
	gate := h.portal.Gate(client)

	type message struct {
		topic   events.Topic
		payload interface{}
		change  *storage.Change
	}
	ch := make(chan message, 16)
	send := func(m message) {
		select {
		case ch <- m:
		default:
			// slow reader; drop
		}
	}
	forward := func(topic events.Topic) func() {
		return client.Bus.Subscribe(topic, func(payload interface{}) {
			send(message{topic: topic, payload: payload})
		})
	}
	defer forward(events.CartUpdated)()
	defer forward(events.AuthChanged)()
	defer client.Scopes.Local.Subscribe(func(change storage.Change) {
		if change.Remote {
			send(message{change: &change})
		}
	})()

	lastAuth := authKey(gate.CurrentUserSync(ctx))
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case m := <-ch:
			if m.change != nil {
				topic, payload, ok := remoteEvent(ctx, gate, *m.change)
				if !ok {
					return true
				}
				if topic == events.AuthChanged {
					state := payload.(auth.State)
					if authKey(state.User) == lastAuth {
						return true
					}
				}
				m.topic, m.payload = topic, payload
			}
			if state, ok := m.payload.(auth.State); ok {
				lastAuth = authKey(state.User)
			}
			c.SSEvent(string(m.topic), m.payload)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// remoteEvent maps a local-storage change onto the event the writing
// process published on its own bus.
func remoteEvent(ctx context.Context, gate *auth.Gate, change storage.Change) (events.Topic, interface{}, bool) {
	switch change.Key {
	case storage.KeyCart:
		if change.Removed {
			return events.CartUpdated, (*models.Cart)(nil), true
		}
		var cart models.Cart
		if err := json.Unmarshal([]byte(change.Value), &cart); err != nil {
			log.Printf("events: ignoring unreadable cart change: %v", err)
			return "", nil, false
		}
		return events.CartUpdated, &cart, true
	case storage.KeyUser, storage.KeyIsAuthenticated:
		user := gate.CurrentUserSync(ctx)
		return events.AuthChanged, auth.State{Authenticated: user != nil, User: user}, true
	}
	return "", nil, false
}

// authKey identifies a sign-in state; a snapshot rewrite by the same user
// yields the same key.
func authKey(user *models.User) string {
	if user == nil {
		return ""
	}
	return fmt.Sprintf("%d:%s", user.ID, user.Role)
}

func (h *APIHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.GetAllUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *APIHandler) UpdateUserRole(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Role        models.UserRole `json:"role" binding:"required"`
		ServiceType string          `json:"service_type"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if (req.Role == models.Admin || req.Role == models.SuperAdmin) && userFrom(c).Role != string(models.SuperAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only a super admin can grant admin roles"})
		return
	}

	user, err := h.userService.UpdateRole(c.Request.Context(), id, req.Role, req.ServiceType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
