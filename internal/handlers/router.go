package handlers

import (
	"campus_portal/internal/clients"
	"campus_portal/internal/models"
	"campus_portal/internal/services"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Registry  *clients.Registry
	Portal    *services.Portal
	API       *APIHandler
	Auth      *AuthHandler
	Food      *FoodHandler
	Repair    *RepairHandler
	LostFound *LostFoundHandler
	Vendor    *VendorHandler
}

func SetupRouter(h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	api := router.Group("/api")
	api.Use(ClientMiddleware(h.Registry))
	{
		api.GET("/session", h.API.GetSession)
		api.GET("/events", h.API.Events)

		api.POST("/auth/signup", h.Auth.SignUp)
		api.POST("/auth/signin", h.Auth.SignIn)
		api.POST("/auth/signout", h.Auth.SignOut)
		api.GET("/auth/me", h.Auth.Me)

		api.GET("/restaurants", h.Food.ListRestaurants)
		api.GET("/restaurants/:id/menu", h.Food.GetMenu)
		api.GET("/cart", h.Food.GetCart)
		api.DELETE("/cart", h.Food.ClearCart)
		api.GET("/cart/totals", h.Food.GetTotals)
		api.POST("/cart/items", h.Food.AddItem)
		api.PATCH("/cart/items/:menu_item_id", h.Food.UpdateItem)
		api.DELETE("/cart/items/:menu_item_id", h.Food.RemoveItem)
		api.POST("/checkout", h.Food.Checkout)
		api.GET("/orders/food", h.Food.OrderHistory)

		api.GET("/service-types", h.Repair.ListServiceTypes)
		api.GET("/repair/:service_type/prefill", h.Repair.Prefill)
		api.POST("/repair/:service_type", h.Repair.Submit)
		api.GET("/orders/repair", h.Repair.ListMine)

		api.GET("/lost-found", h.LostFound.List)
		api.POST("/lost-found", h.LostFound.Submit)
	}

	vendor := api.Group("/vendor")
	vendor.Use(RequireRole(h.Portal, models.Vendor, models.Admin, models.SuperAdmin))
	{
		vendor.GET("/repair-orders", h.Vendor.ListRepairOrders)
		vendor.PUT("/repair-orders/:id/status", h.Vendor.UpdateRepairStatus)
		vendor.GET("/food-orders", h.Vendor.ListFoodOrders)
		vendor.PUT("/food-orders/:id/status", h.Vendor.UpdateFoodStatus)
		vendor.GET("/stream", h.Vendor.Stream)
	}

	admin := api.Group("/admin")
	admin.Use(RequireRole(h.Portal, models.Admin, models.SuperAdmin))
	{
		admin.GET("/users", h.API.ListUsers)
		admin.PUT("/users/:id/role", h.API.UpdateUserRole)
	}

	return router
}
