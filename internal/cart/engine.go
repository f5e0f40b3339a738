// Package cart holds the single-restaurant basket kept in a client's local
// storage. Every mutation is persisted and announced on the events bus.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campus_portal/internal/events"
	"campus_portal/internal/models"
	"campus_portal/internal/storage"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate is applied to the subtotal at checkout.
const DefaultTaxRate = 0.08

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

type Totals struct {
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"delivery_fee"`
	Tax         float64 `json:"tax"`
	Total       float64 `json:"total"`
}

type Validation struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

type Engine struct {
	store   storage.Store
	bus     *events.Bus
	taxRate decimal.Decimal
}

// NewEngine returns an engine persisting into store. bus may be nil.
func NewEngine(store storage.Store, bus *events.Bus, taxRate float64) *Engine {
	return &Engine{
		store:   store,
		bus:     bus,
		taxRate: decimal.NewFromFloat(taxRate),
	}
}

// GetCart returns the stored cart, or nil when there is none. The total is
// recomputed rather than read back.
func (e *Engine) GetCart(ctx context.Context) (*models.Cart, error) {
	var c models.Cart
	ok, err := storage.GetJSON(ctx, e.store, storage.KeyCart, &c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if len(c.Items) == 0 {
		if err := e.store.Remove(ctx, storage.KeyCart); err != nil {
			return nil, fmt.Errorf("failed to drop empty cart: %w", err)
		}
		return nil, nil
	}
	c.TotalAmount = lineTotal(c.Items)
	return &c, nil
}

// AddItem puts quantity units of item into the cart. An item from another
// restaurant replaces the whole cart.
func (e *Engine) AddItem(ctx context.Context, item models.MenuItem, quantity int, specialRequests string) (*models.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	c, err := e.GetCart(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil || c.RestaurantID != item.RestaurantID {
		c = &models.Cart{RestaurantID: item.RestaurantID}
	}

	note := normalize(specialRequests)
	if i := indexOf(c.Items, item.ID, note); i >= 0 {
		c.Items[i].Quantity += quantity
	} else {
		c.Items = append(c.Items, models.CartItem{
			MenuItem:        item,
			Quantity:        quantity,
			SpecialRequests: note,
		})
	}

	return e.save(ctx, c)
}

// RemoveItem drops the matching line. Removing the last line deletes the cart.
func (e *Engine) RemoveItem(ctx context.Context, menuItemID uint, specialRequests string) (*models.Cart, error) {
	c, err := e.GetCart(ctx)
	if err != nil || c == nil {
		return nil, err
	}

	i := indexOf(c.Items, menuItemID, normalize(specialRequests))
	if i < 0 {
		return c, nil
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return e.save(ctx, c)
}

// SetQuantity overwrites a line's quantity; zero or less removes it.
func (e *Engine) SetQuantity(ctx context.Context, menuItemID uint, quantity int, specialRequests string) (*models.Cart, error) {
	if quantity <= 0 {
		return e.RemoveItem(ctx, menuItemID, specialRequests)
	}

	c, err := e.GetCart(ctx)
	if err != nil || c == nil {
		return nil, err
	}

	i := indexOf(c.Items, menuItemID, normalize(specialRequests))
	if i < 0 {
		return c, nil
	}
	c.Items[i].Quantity = quantity
	return e.save(ctx, c)
}

func (e *Engine) Clear(ctx context.Context) error {
	if err := e.store.Remove(ctx, storage.KeyCart); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	e.publish(nil)
	return nil
}

// ItemCount is the number of units in the cart, for the badge.
func (e *Engine) ItemCount(ctx context.Context) (int, error) {
	c, err := e.GetCart(ctx)
	if err != nil || c == nil {
		return 0, err
	}
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n, nil
}

// ComputeTotals prices the cart for restaurant. The delivery fee is charged
// only once the subtotal reaches the restaurant's minimum order.
func (e *Engine) ComputeTotals(c *models.Cart, restaurant *models.Restaurant) Totals {
	subtotal := decimal.Zero
	if c != nil {
		subtotal = lineSum(c.Items)
	}

	fee := decimal.Zero
	if restaurant != nil && subtotal.GreaterThanOrEqual(decimal.NewFromFloat(restaurant.MinimumOrder)) {
		fee = decimal.NewFromFloat(restaurant.DeliveryFee)
	}

	tax := subtotal.Mul(e.taxRate).Round(2)
	total := subtotal.Add(fee).Add(tax)

	return Totals{
		Subtotal:    subtotal.Round(2).InexactFloat64(),
		DeliveryFee: fee.Round(2).InexactFloat64(),
		Tax:         tax.InexactFloat64(),
		Total:       total.Round(2).InexactFloat64(),
	}
}

// Validate checks that c can be checked out at restaurant.
func (e *Engine) Validate(c *models.Cart, restaurant *models.Restaurant) Validation {
	var errs []string

	if c == nil || len(c.Items) == 0 {
		errs = append(errs, "Cart is empty")
		return Validation{IsValid: false, Errors: errs}
	}
	if restaurant == nil {
		errs = append(errs, "Restaurant not found")
		return Validation{IsValid: false, Errors: errs}
	}
	if c.RestaurantID != restaurant.ID {
		errs = append(errs, "Cart belongs to a different restaurant")
	}

	minimum := decimal.NewFromFloat(restaurant.MinimumOrder)
	if lineSum(c.Items).LessThan(minimum) {
		errs = append(errs, fmt.Sprintf("Minimum order amount is $%s", minimum.StringFixed(2)))
	}

	for _, it := range c.Items {
		if !it.MenuItem.IsAvailable {
			errs = append(errs, fmt.Sprintf("%s is no longer available", it.MenuItem.Name))
		}
	}

	return Validation{IsValid: len(errs) == 0, Errors: errs}
}

func (e *Engine) save(ctx context.Context, c *models.Cart) (*models.Cart, error) {
	if len(c.Items) == 0 {
		if err := e.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	c.TotalAmount = lineTotal(c.Items)
	if err := storage.SetJSON(ctx, e.store, storage.KeyCart, c); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	e.publish(c)
	return c, nil
}

func (e *Engine) publish(c *models.Cart) {
	if e.bus == nil {
		return
	}
	if c == nil {
		e.bus.Publish(events.CartUpdated, (*models.Cart)(nil))
		return
	}
	snapshot := *c
	snapshot.Items = append([]models.CartItem(nil), c.Items...)
	e.bus.Publish(events.CartUpdated, &snapshot)
}

func normalize(specialRequests string) string {
	return strings.TrimSpace(specialRequests)
}

func indexOf(items []models.CartItem, menuItemID uint, note string) int {
	for i, it := range items {
		if it.MenuItem.ID == menuItemID && normalize(it.SpecialRequests) == note {
			return i
		}
	}
	return -1
}

func lineSum(items []models.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.MenuItem.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

func lineTotal(items []models.CartItem) float64 {
	return lineSum(items).Round(2).InexactFloat64()
}

// LineTotal is price times quantity for one line, rounded to cents.
func LineTotal(item models.CartItem) float64 {
	return lineTotal([]models.CartItem{item})
}
