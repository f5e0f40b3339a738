package models

import (
	"time"

	"gorm.io/gorm"
)

type Restaurant struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Name         string         `json:"name" gorm:"not null"`
	Description  string         `json:"description"`
	CuisineType  string         `json:"cuisine_type"`
	DeliveryFee  float64        `json:"delivery_fee"`
	MinimumOrder float64        `json:"minimum_order"`
	DeliveryTime string         `json:"delivery_time"`
	Rating       float64        `json:"rating"`
	IsActive     bool           `json:"is_active"`
	VendorID     *uint          `json:"vendor_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

type MenuItem struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	RestaurantID    uint      `json:"restaurant_id" gorm:"not null;index"`
	Name            string    `json:"name" gorm:"not null"`
	Description     string    `json:"description"`
	Price           float64   `json:"price" gorm:"not null"`
	Category        string    `json:"category"`
	IsAvailable     bool      `json:"is_available"`
	IsVegetarian    bool      `json:"is_vegetarian"`
	PreparationTime int       `json:"preparation_time"` // minutes
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ServiceType is a repair category such as "phone" or "laptop".
type ServiceType struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"unique;not null"`
	DisplayName string    `json:"display_name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
