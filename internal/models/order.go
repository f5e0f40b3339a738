package models

import (
	"time"

	"gorm.io/gorm"
)

type FoodOrder struct {
	ID                  uint            `json:"id" gorm:"primaryKey"`
	OrderToken          string          `json:"order_token" gorm:"unique;not null"`
	UserID              uint            `json:"user_id" gorm:"not null;index"`
	RestaurantID        uint            `json:"restaurant_id" gorm:"not null;index"`
	Status              string          `json:"status" gorm:"default:'pending'"`
	Subtotal            float64         `json:"subtotal"`
	DeliveryFee         float64         `json:"delivery_fee"`
	TaxAmount           float64         `json:"tax_amount"`
	TotalAmount         float64         `json:"total_amount" gorm:"not null"`
	CustomerName        string          `json:"customer_name"`
	CustomerPhone       string          `json:"customer_phone"`
	DeliveryAddress     string          `json:"delivery_address"`
	SpecialInstructions string          `json:"special_instructions"`
	Items               []FoodOrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	DeletedAt           gorm.DeletedAt  `json:"-" gorm:"index"`
}

type FoodOrderItem struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	OrderID         uint      `json:"order_id" gorm:"not null;index"`
	MenuItemID      uint      `json:"menu_item_id" gorm:"not null"`
	ItemName        string    `json:"item_name" gorm:"not null"`
	Quantity        int       `json:"quantity" gorm:"not null"`
	UnitPrice       float64   `json:"unit_price" gorm:"not null"`
	TotalPrice      float64   `json:"total_price" gorm:"not null"`
	SpecialRequests string    `json:"special_requests"`
	CreatedAt       time.Time `json:"created_at"`
}

type RepairOrder struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	OrderToken         string         `json:"order_token" gorm:"unique;not null"`
	UserID             uint           `json:"user_id" gorm:"not null;index"`
	ServiceType        string         `json:"service_type" gorm:"not null;index"`
	FirstName          string         `json:"first_name"`
	LastName           string         `json:"last_name"`
	Email              string         `json:"email"`
	Phone              string         `json:"phone"`
	DeviceBrand        string         `json:"device_brand"`
	DeviceModel        string         `json:"device_model"`
	ProblemDescription string         `json:"problem_description" gorm:"type:text"`
	PickupAddress      string         `json:"pickup_address"`
	Status             string         `json:"status" gorm:"default:'pending'"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`
}

type LostFoundItem struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ReferenceNo  string    `json:"reference_no" gorm:"unique;not null"`
	UserID       uint      `json:"user_id" gorm:"not null;index"`
	Kind         string    `json:"kind" gorm:"not null"` // lost, found
	ItemName     string    `json:"item_name" gorm:"not null"`
	Description  string    `json:"description" gorm:"type:text"`
	Location     string    `json:"location"`
	EventDate    time.Time `json:"event_date"`
	ContactName  string    `json:"contact_name"`
	ContactPhone string    `json:"contact_phone"`
	Status       string    `json:"status" gorm:"default:'open'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderAccepted   OrderStatus = "accepted"
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderAccepted, OrderCancelled},
	OrderAccepted:   {OrderInProgress, OrderCancelled},
	OrderInProgress: {OrderCompleted, OrderCancelled},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
