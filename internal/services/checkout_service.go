package services

import (
	"context"
	"errors"
	"fmt"

	"campus_portal/internal/auth"
	"campus_portal/internal/cart"
	"campus_portal/internal/clients"
	"campus_portal/internal/forms"
	"campus_portal/internal/models"
	"campus_portal/internal/orders"
	"campus_portal/internal/pending"
	"campus_portal/internal/repository"
)

type AddToCartRequest struct {
	MenuItemID      uint   `json:"menu_item_id" validate:"required"`
	Quantity        int    `json:"quantity" validate:"required,min=1"`
	SpecialRequests string `json:"special_requests"`
}

type CartResult struct {
	Cart     *models.Cart   `json:"cart"`
	Redirect *auth.Redirect `json:"redirect,omitempty"`
	// Replaced is set when the add discarded a cart from another restaurant.
	Replaced bool `json:"replaced,omitempty"`
}

type Quote struct {
	Cart       *models.Cart       `json:"cart"`
	Restaurant *models.Restaurant `json:"restaurant,omitempty"`
	ItemCount  int                `json:"item_count"`
	Totals     cart.Totals        `json:"totals"`
	Validation cart.Validation    `json:"validation"`
}

type CheckoutService interface {
	AddToCart(ctx context.Context, c *clients.Client, req AddToCartRequest, returnURL string) (*CartResult, error)
	Quote(ctx context.Context, c *clients.Client) (*Quote, error)
	Checkout(ctx context.Context, c *clients.Client, details orders.DeliveryDetails, returnURL string) (*SubmitResult[models.FoodOrder], error)
	ResumePending(ctx context.Context, c *clients.Client) (*ResumeOutcome, error)
	OrderHistory(ctx context.Context, c *clients.Client) ([]models.FoodOrder, error)
}

type checkoutService struct {
	portal      *Portal
	restaurants repository.RestaurantRepository
	menu        repository.MenuItemRepository
	foodOrders  repository.FoodOrderRepository
	adapter     *orders.Adapter
}

func NewCheckoutService(portal *Portal, restaurants repository.RestaurantRepository, menu repository.MenuItemRepository, foodOrders repository.FoodOrderRepository, adapter *orders.Adapter) CheckoutService {
	return &checkoutService{
		portal:      portal,
		restaurants: restaurants,
		menu:        menu,
		foodOrders:  foodOrders,
		adapter:     adapter,
	}
}

func (s *checkoutService) AddToCart(ctx context.Context, c *clients.Client, req AddToCartRequest, returnURL string) (*CartResult, error) {
	if err := forms.Validate(req); err != nil {
		return nil, err
	}
	item, err := s.availableItem(ctx, req.MenuItemID)
	if err != nil {
		return nil, err
	}

	result := &CartResult{}
	redirect, err := s.portal.Gate(c).RequireAuth(ctx, returnURL, auth.ContextFood, func(ctx context.Context) error {
		res, err := s.addItem(ctx, c, *item, req.Quantity, req.SpecialRequests)
		if err != nil {
			return err
		}
		*result = *res
		return nil
	})
	if err != nil {
		return nil, err
	}
	if redirect != nil {
		intent := pending.CartIntent{
			Action:          pending.ActionAddToCart,
			MenuItem:        item,
			Quantity:        req.Quantity,
			SpecialRequests: req.SpecialRequests,
		}
		if err := pending.CartSlot(c.Scopes.Session, s.portal.Pending).Save(ctx, intent, returnURL); err != nil {
			return nil, err
		}
		result.Redirect = redirect
	}
	return result, nil
}

func (s *checkoutService) Quote(ctx context.Context, c *clients.Client) (*Quote, error) {
	engine := s.portal.Cart(c)
	current, err := engine.GetCart(ctx)
	if err != nil {
		return nil, err
	}

	q := &Quote{Cart: current}
	if current == nil {
		q.Validation = engine.Validate(nil, nil)
		return q, nil
	}

	q.Restaurant, err = s.restaurant(ctx, current.RestaurantID)
	if err != nil {
		return nil, err
	}
	checked, err := s.refreshAvailability(ctx, current)
	if err != nil {
		return nil, err
	}
	for _, it := range current.Items {
		q.ItemCount += it.Quantity
	}
	q.Totals = engine.ComputeTotals(current, q.Restaurant)
	q.Validation = engine.Validate(checked, q.Restaurant)
	return q, nil
}

// Checkout submits the cart. Without a session it remembers the intent and
// returns a login redirect instead.
func (s *checkoutService) Checkout(ctx context.Context, c *clients.Client, details orders.DeliveryDetails, returnURL string) (*SubmitResult[models.FoodOrder], error) {
	gate := s.portal.Gate(c)
	result := &SubmitResult[models.FoodOrder]{}

	redirect, err := gate.RequireAuth(ctx, returnURL, auth.ContextFood, func(ctx context.Context) error {
		order, err := s.placeOrder(ctx, c, gate, details)
		result.Order = order
		return err
	})
	redirect, err = relogin(ctx, gate, returnURL, auth.ContextFood, redirect, err)
	if err != nil {
		return nil, err
	}
	if redirect != nil {
		intent := pending.CartIntent{Action: pending.ActionCheckout}
		if err := pending.CartSlot(c.Scopes.Session, s.portal.Pending).Save(ctx, intent, returnURL); err != nil {
			return nil, err
		}
		result.Redirect = redirect
	}
	return result, nil
}

// ResumePending replays a stored add-to-cart. A stored checkout needs the
// delivery form, so replaying it only sends the user back to checkout.
func (s *checkoutService) ResumePending(ctx context.Context, c *clients.Client) (*ResumeOutcome, error) {
	outcome := &ResumeOutcome{Context: auth.ContextFood, Mode: pending.ModeReplay}
	slot := pending.CartSlot(c.Scopes.Session, s.portal.Pending)

	ran, err := pending.Run(ctx, slot, pending.Page{Context: auth.ContextFood}, func(ctx context.Context, intent pending.CartIntent) error {
		if intent.Action != pending.ActionAddToCart {
			return nil
		}
		if intent.MenuItem == nil {
			return fmt.Errorf("%w: stored cart intent has no menu item", ErrInvalidInput)
		}
		item, err := s.availableItem(ctx, intent.MenuItem.ID)
		if err != nil {
			return err
		}
		res, err := s.addItem(ctx, c, *item, intent.Quantity, intent.SpecialRequests)
		if err != nil {
			return err
		}
		outcome.Result = res
		return nil
	})
	outcome.Replayed = ran
	return outcome, err
}

func (s *checkoutService) OrderHistory(ctx context.Context, c *clients.Client) ([]models.FoodOrder, error) {
	user, err := currentUser(ctx, s.portal.Gate(c))
	if err != nil {
		return nil, err
	}
	return s.foodOrders.GetByUserID(ctx, user.ID)
}

func (s *checkoutService) addItem(ctx context.Context, c *clients.Client, item models.MenuItem, quantity int, specialRequests string) (*CartResult, error) {
	engine := s.portal.Cart(c)
	before, err := engine.GetCart(ctx)
	if err != nil {
		return nil, err
	}
	updated, err := engine.AddItem(ctx, item, quantity, specialRequests)
	if err != nil {
		return nil, err
	}
	return &CartResult{
		Cart:     updated,
		Replaced: before != nil && before.RestaurantID != item.RestaurantID,
	}, nil
}

func (s *checkoutService) placeOrder(ctx context.Context, c *clients.Client, gate *auth.Gate, details orders.DeliveryDetails) (*models.FoodOrder, error) {
	if err := forms.Validate(details); err != nil {
		return nil, err
	}
	user, err := currentUser(ctx, gate)
	if err != nil {
		return nil, err
	}

	engine := s.portal.Cart(c)
	current, err := engine.GetCart(ctx)
	if err != nil {
		return nil, err
	}
	var restaurant *models.Restaurant
	checked := current
	if current != nil {
		if restaurant, err = s.restaurant(ctx, current.RestaurantID); err != nil {
			return nil, err
		}
		if checked, err = s.refreshAvailability(ctx, current); err != nil {
			return nil, err
		}
	}
	if v := engine.Validate(checked, restaurant); !v.IsValid {
		return nil, &CartInvalidError{Validation: v}
	}

	res := s.adapter.SubmitFoodOrder(ctx, orders.FoodOrderRequest{
		UserID:   user.ID,
		Cart:     current,
		Totals:   engine.ComputeTotals(current, restaurant),
		Delivery: details,
	})
	if !res.Success {
		return nil, &SubmissionError{Message: res.Error}
	}

	if err := engine.Clear(ctx); err != nil {
		return res.Data, err
	}
	if err := pending.CartSlot(c.Scopes.Session, s.portal.Pending).Complete(ctx); err != nil {
		return res.Data, err
	}
	return res.Data, nil
}

func (s *checkoutService) availableItem(ctx context.Context, id uint) (*models.MenuItem, error) {
	item, err := s.menu.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.IsAvailable {
		return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, item.Name)
	}
	return item, nil
}

// restaurant returns nil when the restaurant no longer exists.
func (s *checkoutService) restaurant(ctx context.Context, id uint) (*models.Restaurant, error) {
	r, err := s.restaurants.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return r, err
}

// refreshAvailability copies c with each line's availability taken from the
// menu. Prices stay as snapshotted.
func (s *checkoutService) refreshAvailability(ctx context.Context, c *models.Cart) (*models.Cart, error) {
	checked := *c
	checked.Items = make([]models.CartItem, len(c.Items))
	for i, it := range c.Items {
		current, err := s.menu.GetByID(ctx, it.MenuItem.ID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			it.MenuItem.IsAvailable = false
		case err != nil:
			return nil, err
		default:
			it.MenuItem.IsAvailable = current.IsAvailable
		}
		checked.Items[i] = it
	}
	return &checked, nil
}

// currentUser confirms the session with the backend before a write. A
// failed check counts as signed out.
func currentUser(ctx context.Context, gate *auth.Gate) (*models.User, error) {
	user, err := gate.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrAuthRequired, err)
	}
	if user == nil {
		return nil, auth.ErrAuthRequired
	}
	return user, nil
}

// relogin turns an auth failure raised inside a gated action into the
// login redirect an unauthenticated caller would have got.
func relogin(ctx context.Context, gate *auth.Gate, returnURL string, svc auth.ServiceContext, redirect *auth.Redirect, err error) (*auth.Redirect, error) {
	if !errors.Is(err, auth.ErrAuthRequired) {
		return redirect, err
	}
	return gate.LoginRedirect(ctx, returnURL, svc)
}
