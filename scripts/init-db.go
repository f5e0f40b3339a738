package main

import (
	"context"
	"fmt"
	"log"

	"campus_portal/internal/config"
	"campus_portal/internal/database"
	"campus_portal/internal/migrations"
)

// Recreates the schema from scratch and seeds the default catalog and
// super admin.
func main() {
	fmt.Println("Initializing database...")

	cfg := config.Load()

	db, err := database.Initialize(cfg.DatabaseURL, cfg.GinMode == "debug")
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := migrations.Reset(context.Background(), db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	fmt.Println("Database initialized successfully!")
	fmt.Printf("Super admin: %s\n", cfg.AdminEmail)
}
