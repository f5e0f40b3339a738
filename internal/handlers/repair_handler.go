package handlers

import (
	"net/http"

	"campus_portal/internal/pending"
	"campus_portal/internal/services"

	"github.com/gin-gonic/gin"
)

type RepairHandler struct {
	catalog services.CatalogService
	repair  services.RepairService
}

func NewRepairHandler(catalog services.CatalogService, repair services.RepairService) *RepairHandler {
	return &RepairHandler{catalog: catalog, repair: repair}
}

func (h *RepairHandler) ListServiceTypes(c *gin.Context) {
	types, err := h.catalog.ListServiceTypes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service_types": types})
}

func (h *RepairHandler) Prefill(c *gin.Context) {
	form, err := h.repair.Prefill(c.Request.Context(), clientFrom(c), c.Param("service_type"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": form})
}

func (h *RepairHandler) Submit(c *gin.Context) {
	var req struct {
		pending.RepairForm
		ReturnURL string `json:"return_url"`
	}
	if !bindJSON(c, &req) {
		return
	}
	serviceType := c.Param("service_type")
	req.ServiceType = serviceType

	res, err := h.repair.Submit(c.Request.Context(), clientFrom(c), req.RepairForm, returnURL(req.ReturnURL, "/repair/"+serviceType))
	if err != nil {
		respondError(c, err)
		return
	}
	if res.Redirect != nil {
		respondRedirect(c, res.Redirect)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "order": res.Order})
}

func (h *RepairHandler) ListMine(c *gin.Context) {
	list, err := h.repair.ListMine(c.Request.Context(), clientFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}
