package handlers

import (
	"log"
	"net/http"

	"campus_portal/internal/auth"
	"campus_portal/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	portal *services.Portal
	resume services.ResumeService
}

func NewAuthHandler(portal *services.Portal, resume services.ResumeService) *AuthHandler {
	return &AuthHandler{portal: portal, resume: resume}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var input auth.SignUpInput
	if !bindJSON(c, &input) {
		return
	}

	client := clientFrom(c)
	user, err := h.portal.Gate(client).SignUp(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "resume": h.afterLogin(c)})
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	client := clientFrom(c)
	user, err := h.portal.Gate(client).SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "resume": h.afterLogin(c)})
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.portal.Gate(clientFrom(c)).SignOut(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "signed_out"})
}

// Me confirms the session with the backend. Any failure reads as signed out.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.portal.Gate(clientFrom(c)).CurrentUser(c.Request.Context())
	if err != nil {
		log.Printf("handlers: session check failed: %v", err)
	}
	if err != nil || user == nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": user})
}

func (h *AuthHandler) afterLogin(c *gin.Context) *services.ResumeOutcome {
	outcome, err := h.resume.AfterLogin(c.Request.Context(), clientFrom(c))
	if err != nil {
		log.Printf("handlers: resume after login failed: %v", err)
		return &services.ResumeOutcome{Redirect: "/"}
	}
	return outcome
}
