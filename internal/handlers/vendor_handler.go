package handlers

import (
	"io"
	"net/http"
	"strconv"

	"campus_portal/internal/models"
	"campus_portal/internal/realtime"
	"campus_portal/internal/services"

	"github.com/gin-gonic/gin"
)

type VendorHandler struct {
	vendor services.VendorService
	feed   *realtime.Feed
}

func NewVendorHandler(vendor services.VendorService, feed *realtime.Feed) *VendorHandler {
	return &VendorHandler{vendor: vendor, feed: feed}
}

func (h *VendorHandler) ListRepairOrders(c *gin.Context) {
	list, err := h.vendor.ListRepairOrders(c.Request.Context(), userFrom(c), c.Query("service_type"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

func (h *VendorHandler) ListFoodOrders(c *gin.Context) {
	restaurantID, err := strconv.ParseUint(c.Query("restaurant_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid restaurant_id"})
		return
	}
	list, err := h.vendor.ListFoodOrders(c.Request.Context(), userFrom(c), uint(restaurantID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

type statusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

func (h *VendorHandler) UpdateRepairStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.vendor.UpdateRepairStatus(c.Request.Context(), userFrom(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *VendorHandler) UpdateFoodStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.vendor.UpdateFoodStatus(c.Request.Context(), userFrom(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// Stream pushes order changes the vendor may see as server-sent events.
// Query: kind=repair&key=<service type> or kind=food&key=<restaurant id>.
func (h *VendorHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	table, filter, err := h.vendor.StreamScope(ctx, userFrom(c), services.StreamKind(c.Query("kind")), c.Query("key"))
	if err != nil {
		respondError(c, err)
		return
	}

	sub, err := h.feed.Subscribe(ctx, table, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	defer sub.Close()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case change, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent("change", change)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
