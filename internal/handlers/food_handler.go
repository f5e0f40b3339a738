package handlers

import (
	"net/http"

	"campus_portal/internal/orders"
	"campus_portal/internal/services"

	"github.com/gin-gonic/gin"
)

type FoodHandler struct {
	portal   *services.Portal
	catalog  services.CatalogService
	checkout services.CheckoutService
}

func NewFoodHandler(portal *services.Portal, catalog services.CatalogService, checkout services.CheckoutService) *FoodHandler {
	return &FoodHandler{portal: portal, catalog: catalog, checkout: checkout}
}

func (h *FoodHandler) ListRestaurants(c *gin.Context) {
	restaurants, err := h.catalog.ListRestaurants(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurants": restaurants})
}

func (h *FoodHandler) GetMenu(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	menu, err := h.catalog.GetMenu(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

// GetCart returns the cart with its totals, count and checkout validation.
func (h *FoodHandler) GetCart(c *gin.Context) {
	quote, err := h.checkout.Quote(c.Request.Context(), clientFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *FoodHandler) GetTotals(c *gin.Context) {
	quote, err := h.checkout.Quote(c.Request.Context(), clientFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"totals": quote.Totals, "item_count": quote.ItemCount})
}

func (h *FoodHandler) ClearCart(c *gin.Context) {
	if err := h.portal.Cart(clientFrom(c)).Clear(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": nil})
}

func (h *FoodHandler) AddItem(c *gin.Context) {
	var req struct {
		services.AddToCartRequest
		ReturnURL string `json:"return_url"`
	}
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.checkout.AddToCart(c.Request.Context(), clientFrom(c), req.AddToCartRequest, returnURL(req.ReturnURL, "/food"))
	if err != nil {
		respondError(c, err)
		return
	}
	if res.Redirect != nil {
		respondRedirect(c, res.Redirect)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *FoodHandler) UpdateItem(c *gin.Context) {
	id, ok := paramID(c, "menu_item_id")
	if !ok {
		return
	}
	var req struct {
		Quantity        int    `json:"quantity"`
		SpecialRequests string `json:"special_requests"`
	}
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.portal.Cart(clientFrom(c)).SetQuantity(c.Request.Context(), id, req.Quantity, req.SpecialRequests)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": updated})
}

func (h *FoodHandler) RemoveItem(c *gin.Context) {
	id, ok := paramID(c, "menu_item_id")
	if !ok {
		return
	}

	updated, err := h.portal.Cart(clientFrom(c)).RemoveItem(c.Request.Context(), id, c.Query("special_requests"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": updated})
}

func (h *FoodHandler) Checkout(c *gin.Context) {
	var req struct {
		orders.DeliveryDetails
		ReturnURL string `json:"return_url"`
	}
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.checkout.Checkout(c.Request.Context(), clientFrom(c), req.DeliveryDetails, returnURL(req.ReturnURL, "/food/checkout"))
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

func (h *FoodHandler) OrderHistory(c *gin.Context) {
	history, err := h.checkout.OrderHistory(c.Request.Context(), clientFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": history})
}
