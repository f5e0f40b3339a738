package pending

import (
	"time"

	"campus_portal/internal/auth"
	"campus_portal/internal/models"
)

// Payload is implemented only by the action families in this package.
type Payload interface {
	Context() auth.ServiceContext
	matches(page Page) bool
}

// Page identifies the screen that is resuming.
type Page struct {
	Context     auth.ServiceContext
	ServiceType string // repair category; empty matches any
}

type RepairForm struct {
	ServiceType        string `json:"service_type" validate:"required"`
	FirstName          string `json:"first_name" validate:"required"`
	LastName           string `json:"last_name" validate:"required"`
	Email              string `json:"email" validate:"required,email"`
	Phone              string `json:"phone" validate:"required,phone"`
	DeviceBrand        string `json:"device_brand" validate:"required"`
	DeviceModel        string `json:"device_model"`
	ProblemDescription string `json:"problem_description" validate:"required,min=10"`
	PickupAddress      string `json:"pickup_address"`
}

func (RepairForm) Context() auth.ServiceContext { return auth.ContextRepair }

func (f RepairForm) matches(page Page) bool {
	return page.ServiceType == "" || page.ServiceType == f.ServiceType
}

type CartAction string

const (
	ActionAddToCart CartAction = "add-to-cart"
	ActionCheckout  CartAction = "checkout"
)

// CartIntent is an add-to-cart or checkout request waiting for login.
type CartIntent struct {
	Action          CartAction       `json:"action" validate:"required,oneof=add-to-cart checkout"`
	MenuItem        *models.MenuItem `json:"menuItem,omitempty"`
	Quantity        int              `json:"quantity,omitempty"`
	SpecialRequests string           `json:"specialRequests,omitempty"`
}

func (CartIntent) Context() auth.ServiceContext { return auth.ContextFood }

func (CartIntent) matches(Page) bool { return true }

type LostFoundReport struct {
	Kind         string    `json:"kind" validate:"required,oneof=lost found"`
	ItemName     string    `json:"item_name" validate:"required"`
	Description  string    `json:"description" validate:"required,min=10"`
	Location     string    `json:"location" validate:"required"`
	EventDate    time.Time `json:"event_date" validate:"required"`
	ContactName  string    `json:"contact_name" validate:"required"`
	ContactPhone string    `json:"contact_phone" validate:"required,phone"`
}

func (LostFoundReport) Context() auth.ServiceContext { return auth.ContextLostFound }

func (LostFoundReport) matches(Page) bool { return true }

// Envelope is what sits in session storage.
type Envelope[T Payload] struct {
	Payload     T                   `json:"payload"`
	Context     auth.ServiceContext `json:"context"`
	RedirectURL string              `json:"redirectUrl"`
	Timestamp   time.Time           `json:"timestamp"`
	Attempts    int                 `json:"attempts"`
}
