package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"campus_portal/internal/auth"
	"campus_portal/internal/cart"
	"campus_portal/internal/forms"
	"campus_portal/internal/repository"
	"campus_portal/internal/services"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, err error) {
	var (
		fieldErrs  forms.Errors
		invalid    *services.CartInvalidError
		submission *services.SubmissionError
	)

	switch {
	case errors.As(err, &fieldErrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": fieldErrs})
	case errors.As(err, &invalid):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cart cannot be checked out", "validation": invalid.Validation})
	case errors.As(err, &submission):
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": submission.Message})
	case errors.Is(err, auth.ErrAuthRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrEmailTaken), errors.Is(err, repository.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, auth.ErrUserNotFound), errors.Is(err, services.ErrUnknownServiceType):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrItemUnavailable), errors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("handlers: %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// respondRedirect tells the client to log in first.
func respondRedirect(c *gin.Context, redirect *auth.Redirect) {
	c.JSON(http.StatusUnauthorized, redirect)
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return false
	}
	return true
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func returnURL(requested, fallback string) string {
	if requested == "" {
		return fallback
	}
	return requested
}
