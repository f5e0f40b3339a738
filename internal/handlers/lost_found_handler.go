package handlers

import (
	"net/http"

	"campus_portal/internal/pending"
	"campus_portal/internal/services"

	"github.com/gin-gonic/gin"
)

type LostFoundHandler struct {
	lostFound services.LostFoundService
}

func NewLostFoundHandler(lostFound services.LostFoundService) *LostFoundHandler {
	return &LostFoundHandler{lostFound: lostFound}
}

func (h *LostFoundHandler) List(c *gin.Context) {
	items, err := h.lostFound.ListOpen(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *LostFoundHandler) Submit(c *gin.Context) {
	var req struct {
		pending.LostFoundReport
		ReturnURL string `json:"return_url"`
	}
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.lostFound.Submit(c.Request.Context(), clientFrom(c), req.LostFoundReport, returnURL(req.ReturnURL, "/lost-and-found"))
	if err != nil {
		respondError(c, err)
		return
	}
	if res.Redirect != nil {
		respondRedirect(c, res.Redirect)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "item": res.Order})
}
