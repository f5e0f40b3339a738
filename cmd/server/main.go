package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus_portal/internal/auth"
	"campus_portal/internal/clients"
	"campus_portal/internal/config"
	"campus_portal/internal/database"
	"campus_portal/internal/handlers"
	"campus_portal/internal/migrations"
	"campus_portal/internal/orders"
	"campus_portal/internal/pending"
	"campus_portal/internal/realtime"
	"campus_portal/internal/redis"
	"campus_portal/internal/repository"
	"campus_portal/internal/services"
	"campus_portal/internal/storage"
	"campus_portal/pkg/whatsapp"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, cfg.GinMode == gin.DebugMode)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := migrations.RunMigrations(ctx, db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	if err := realtime.RegisterCallbacks(db, redisClient, "food_orders", "repair_orders", "lost_found_items"); err != nil {
		log.Fatal("Failed to register change callbacks:", err)
	}

	// Initialize WhatsApp client
	var notifier orders.Notifier
	if cfg.NotificationsEnabled() {
		notifier = whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath, cfg.WhatsAppCountry)
	} else {
		log.Println("WhatsApp gateway not configured; order confirmations disabled")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	restaurantRepo := repository.NewRestaurantRepository(db)
	menuRepo := repository.NewMenuItemRepository(db)
	serviceTypeRepo := repository.NewServiceTypeRepository(db)
	foodOrderRepo := repository.NewFoodOrderRepository(db)
	repairOrderRepo := repository.NewRepairOrderRepository(db)
	lostFoundRepo := repository.NewLostFoundRepository(db)

	// Initialize services
	userService := services.NewUserService(userRepo)
	portal := &services.Portal{
		Authenticator: auth.NewAuthenticator(userService, cfg.LoginPath),
		TaxRate:       cfg.TaxRate,
		Pending:       pending.Options{MaxAge: cfg.PendingActionTTL},
	}
	adapter := orders.NewAdapter(foodOrderRepo, repairOrderRepo, lostFoundRepo, notifier)
	catalogService := services.NewCatalogService(restaurantRepo, menuRepo, serviceTypeRepo)
	checkoutService := services.NewCheckoutService(portal, restaurantRepo, menuRepo, foodOrderRepo, adapter)
	repairService := services.NewRepairService(portal, serviceTypeRepo, repairOrderRepo, adapter)
	lostFoundService := services.NewLostFoundService(portal, lostFoundRepo, adapter)
	resumeService := services.NewResumeService(portal, checkoutService, lostFoundService)
	vendorService := services.NewVendorService(restaurantRepo, foodOrderRepo, repairOrderRepo)

	registry := clients.NewRegistry(func(clientID string) storage.Scopes {
		return redisClient.Scopes(clientID, cfg.SessionTTL())
	})
	go sweepClients(ctx, registry, cfg.ClientIdleTTL)

	// Setup routes
	router := handlers.SetupRouter(handlers.Handlers{
		Registry:  registry,
		Portal:    portal,
		API:       handlers.NewAPIHandler(portal, userService),
		Auth:      handlers.NewAuthHandler(portal, resumeService),
		Food:      handlers.NewFoodHandler(portal, catalogService, checkoutService),
		Repair:    handlers.NewRepairHandler(catalogService, repairService),
		LostFound: handlers.NewLostFoundHandler(lostFoundService),
		Vendor:    handlers.NewVendorHandler(vendorService, realtime.NewFeed(redisClient)),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Failed to start server:", err)
	}
	log.Println("Server stopped")
}

func sweepClients(ctx context.Context, registry *clients.Registry, idle time.Duration) {
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			registry.Sweep(idle)
		}
	}
}
