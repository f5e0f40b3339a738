// Package orders turns validated client intents into persisted orders and
// reports the outcome as a Result instead of an error.
package orders

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"campus_portal/internal/cart"
	"campus_portal/internal/models"
	"campus_portal/internal/pending"
	"campus_portal/internal/repository"

	"github.com/google/uuid"
)

const (
	PrefixFood      = "FD"
	PrefixRepair    = "RP"
	PrefixLostFound = "LF"
)

// Result is the uniform outcome of a submission.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func succeeded[T any](data *T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func failed[T any](format string, args ...interface{}) Result[T] {
	return Result[T]{Error: fmt.Sprintf(format, args...)}
}

// GenerateOrderToken builds a human-friendly reference such as
// FD-LXK2P9QA-3F9A1C.
func GenerateOrderToken(prefix string, now time.Time) string {
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return prefix + "-" + stamp + "-" + suffix
}

type DeliveryDetails struct {
	CustomerName        string `json:"customer_name" validate:"required"`
	Phone               string `json:"phone" validate:"required,phone"`
	DeliveryAddress     string `json:"delivery_address" validate:"required"`
	SpecialInstructions string `json:"special_instructions"`
}

type FoodOrderRequest struct {
	UserID   uint
	Cart     *models.Cart
	Totals   cart.Totals
	Delivery DeliveryDetails
}

// Notifier sends a text confirmation; *whatsapp.Client satisfies it.
type Notifier interface {
	SendTextMessage(ctx context.Context, phone, message string) error
}

type Adapter struct {
	foodOrders   repository.FoodOrderRepository
	repairOrders repository.RepairOrderRepository
	lostFound    repository.LostFoundRepository
	notifier     Notifier
	now          func() time.Time
}

func NewAdapter(food repository.FoodOrderRepository, repair repository.RepairOrderRepository, lostFound repository.LostFoundRepository, notifier Notifier) *Adapter {
	return &Adapter{
		foodOrders:   food,
		repairOrders: repair,
		lostFound:    lostFound,
		notifier:     notifier,
		now:          time.Now,
	}
}

// SubmitFoodOrder persists the cart as an order with one line per item.
func (a *Adapter) SubmitFoodOrder(ctx context.Context, req FoodOrderRequest) Result[models.FoodOrder] {
	if req.Cart == nil || len(req.Cart.Items) == 0 {
		return failed[models.FoodOrder]("cart is empty")
	}

	order := &models.FoodOrder{
		OrderToken:          GenerateOrderToken(PrefixFood, a.now()),
		UserID:              req.UserID,
		RestaurantID:        req.Cart.RestaurantID,
		Status:              string(models.OrderPending),
		Subtotal:            req.Totals.Subtotal,
		DeliveryFee:         req.Totals.DeliveryFee,
		TaxAmount:           req.Totals.Tax,
		TotalAmount:         req.Totals.Total,
		CustomerName:        strings.TrimSpace(req.Delivery.CustomerName),
		CustomerPhone:       req.Delivery.Phone,
		DeliveryAddress:     strings.TrimSpace(req.Delivery.DeliveryAddress),
		SpecialInstructions: strings.TrimSpace(req.Delivery.SpecialInstructions),
	}
	for _, item := range req.Cart.Items {
		order.Items = append(order.Items, models.FoodOrderItem{
			MenuItemID:      item.MenuItem.ID,
			ItemName:        item.MenuItem.Name,
			Quantity:        item.Quantity,
			UnitPrice:       item.MenuItem.Price,
			TotalPrice:      cart.LineTotal(item),
			SpecialRequests: item.SpecialRequests,
		})
	}

	if err := a.foodOrders.Create(ctx, order); err != nil {
		log.Printf("orders: food order for user %d failed: %v", req.UserID, err)
		return failed[models.FoodOrder]("failed to place order: %v", err)
	}

	a.notify(ctx, order.CustomerPhone, fmt.Sprintf(
		"Your food order %s has been placed. Total: $%.2f", order.OrderToken, order.TotalAmount))
	return succeeded(order)
}

// SubmitRepairOrder books a repair pickup for userID.
func (a *Adapter) SubmitRepairOrder(ctx context.Context, userID uint, form pending.RepairForm) Result[models.RepairOrder] {
	order := &models.RepairOrder{
		OrderToken:         GenerateOrderToken(PrefixRepair, a.now()),
		UserID:             userID,
		ServiceType:        form.ServiceType,
		FirstName:          strings.TrimSpace(form.FirstName),
		LastName:           strings.TrimSpace(form.LastName),
		Email:              strings.TrimSpace(form.Email),
		Phone:              form.Phone,
		DeviceBrand:        strings.TrimSpace(form.DeviceBrand),
		DeviceModel:        strings.TrimSpace(form.DeviceModel),
		ProblemDescription: strings.TrimSpace(form.ProblemDescription),
		PickupAddress:      strings.TrimSpace(form.PickupAddress),
		Status:             string(models.OrderPending),
	}

	if err := a.repairOrders.Create(ctx, order); err != nil {
		log.Printf("orders: %s repair for user %d failed: %v", form.ServiceType, userID, err)
		return failed[models.RepairOrder]("failed to submit repair request: %v", err)
	}

	a.notify(ctx, order.Phone, fmt.Sprintf(
		"Your %s repair request %s has been received. We will contact you for pickup.", order.ServiceType, order.OrderToken))
	return succeeded(order)
}

// SubmitLostFoundReport files a lost or found item report.
func (a *Adapter) SubmitLostFoundReport(ctx context.Context, userID uint, report pending.LostFoundReport) Result[models.LostFoundItem] {
	item := &models.LostFoundItem{
		ReferenceNo:  GenerateOrderToken(PrefixLostFound, a.now()),
		UserID:       userID,
		Kind:         report.Kind,
		ItemName:     strings.TrimSpace(report.ItemName),
		Description:  strings.TrimSpace(report.Description),
		Location:     strings.TrimSpace(report.Location),
		EventDate:    report.EventDate,
		ContactName:  strings.TrimSpace(report.ContactName),
		ContactPhone: report.ContactPhone,
		Status:       "open",
	}

	if err := a.lostFound.Create(ctx, item); err != nil {
		log.Printf("orders: lost-and-found report for user %d failed: %v", userID, err)
		return failed[models.LostFoundItem]("failed to file report: %v", err)
	}

	a.notify(ctx, item.ContactPhone, fmt.Sprintf(
		"Your %s item report %s has been filed.", item.Kind, item.ReferenceNo))
	return succeeded(item)
}

// notify never fails the submission it follows.
func (a *Adapter) notify(ctx context.Context, phone, message string) {
	if a.notifier == nil || phone == "" {
		return
	}
	if err := a.notifier.SendTextMessage(ctx, phone, message); err != nil {
		log.Printf("orders: confirmation to %s failed: %v", phone, err)
	}
}
