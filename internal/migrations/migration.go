package migrations

import (
	"context"
	"errors"
	"fmt"
	"log"

	"campus_portal/internal/database"
	"campus_portal/internal/models"
	"campus_portal/internal/repository"
	"campus_portal/internal/services"

	"gorm.io/gorm"
)

// RunMigrations brings the schema up to date and seeds default data once.
func RunMigrations(ctx context.Context, db *gorm.DB, adminEmail, adminPassword string) error {
	log.Println("Running database migrations...")

	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	if err := createDefaultData(ctx, db, adminEmail, adminPassword); err != nil {
		log.Printf("Warning: Failed to create default data: %v", err)
	}

	log.Println("Database migrations completed successfully!")
	return nil
}

// Reset drops every portal table and recreates it. Development only.
func Reset(ctx context.Context, db *gorm.DB, adminEmail, adminPassword string) error {
	log.Println("Dropping existing tables...")
	err := db.Migrator().DropTable(
		&models.FoodOrderItem{},
		&models.FoodOrder{},
		&models.RepairOrder{},
		&models.LostFoundItem{},
		&models.MenuItem{},
		&models.Restaurant{},
		&models.ServiceType{},
		&models.User{},
	)
	if err != nil {
		log.Printf("Warning: Error dropping tables: %v", err)
	}
	return RunMigrations(ctx, db, adminEmail, adminPassword)
}

func createDefaultData(ctx context.Context, db *gorm.DB, adminEmail, adminPassword string) error {
	log.Println("Creating default data...")

	userRepo := repository.NewUserRepository(db)
	if _, err := userRepo.GetByEmail(ctx, adminEmail); err == nil {
		log.Println("Super admin user already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	} else {
		admin := &models.User{
			Email:     adminEmail,
			FirstName: "Super",
			LastName:  "Admin",
			Role:      string(models.SuperAdmin),
			IsActive:  true,
		}
		if err := services.NewUserService(userRepo).CreateUser(ctx, admin, adminPassword); err != nil {
			return fmt.Errorf("failed to create super admin: %w", err)
		}
		log.Printf("Super admin created: %s", adminEmail)
	}

	serviceTypes := repository.NewServiceTypeRepository(db)
	for _, st := range defaultServiceTypes {
		st := st
		if _, err := serviceTypes.GetByName(ctx, st.Name); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := serviceTypes.Create(ctx, &st); err != nil {
			return fmt.Errorf("failed to create service type %s: %w", st.Name, err)
		}
	}

	restaurants := repository.NewRestaurantRepository(db)
	if n, err := restaurants.Count(ctx); err != nil || n > 0 {
		return err
	}
	menu := repository.NewMenuItemRepository(db)
	for _, seed := range defaultRestaurants {
		r := seed.restaurant
		if err := restaurants.Create(ctx, &r); err != nil {
			return fmt.Errorf("failed to create restaurant %s: %w", r.Name, err)
		}
		for _, item := range seed.items {
			item.RestaurantID = r.ID
			item.IsAvailable = true
			if err := menu.Create(ctx, &item); err != nil {
				return fmt.Errorf("failed to create menu item %s: %w", item.Name, err)
			}
		}
	}

	log.Println("Default data created successfully")
	return nil
}

var defaultServiceTypes = []models.ServiceType{
	{Name: "phone", DisplayName: "Phone Repair", Description: "Screens, batteries and charging ports", IsActive: true},
	{Name: "laptop", DisplayName: "Laptop Repair", Description: "Hardware faults, OS reinstalls and upgrades", IsActive: true},
	{Name: "electronics", DisplayName: "Electronics Repair", Description: "Headphones, speakers and small appliances", IsActive: true},
}

type restaurantSeed struct {
	restaurant models.Restaurant
	items      []models.MenuItem
}

var defaultRestaurants = []restaurantSeed{
	{
		restaurant: models.Restaurant{Name: "Campus Canteen", CuisineType: "Indian", DeliveryFee: 1.5, MinimumOrder: 5, DeliveryTime: "20-30 min", Rating: 4.2, IsActive: true},
		items: []models.MenuItem{
			{Name: "Masala Dosa", Category: "Mains", Price: 3.5, IsVegetarian: true, PreparationTime: 10},
			{Name: "Veg Biryani", Category: "Mains", Price: 4.75, IsVegetarian: true, PreparationTime: 20},
			{Name: "Filter Coffee", Category: "Drinks", Price: 1.25, IsVegetarian: true, PreparationTime: 5},
		},
	},
	{
		restaurant: models.Restaurant{Name: "Slice House", CuisineType: "Pizza", DeliveryFee: 2.99, MinimumOrder: 10, DeliveryTime: "30-40 min", Rating: 4.5, IsActive: true},
		items: []models.MenuItem{
			{Name: "Margherita", Category: "Pizza", Price: 8, IsVegetarian: true, PreparationTime: 15},
			{Name: "Pepperoni", Category: "Pizza", Price: 9.5, PreparationTime: 15},
			{Name: "Garlic Bread", Category: "Sides", Price: 3, IsVegetarian: true, PreparationTime: 8},
		},
	},
}
