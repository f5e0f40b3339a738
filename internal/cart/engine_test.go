package cart

import (
	"context"
	"testing"

	"campus_portal/internal/events"
	"campus_portal/internal/models"
	"campus_portal/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	starbucks = &models.Restaurant{ID: 1, Name: "Starbucks", DeliveryFee: 2.99, MinimumOrder: 10}
	pizzaHut  = &models.Restaurant{ID: 2, Name: "Pizza Hut", DeliveryFee: 3.49, MinimumOrder: 15}

	latte     = models.MenuItem{ID: 11, RestaurantID: 1, Name: "Latte", Price: 4.00, IsAvailable: true}
	muffin    = models.MenuItem{ID: 12, RestaurantID: 1, Name: "Muffin", Price: 2.50, IsAvailable: true}
	pepperoni = models.MenuItem{ID: 21, RestaurantID: 2, Name: "Pepperoni Pizza", Price: 12.99, IsAvailable: true}
)

func newTestEngine(t *testing.T) (*Engine, *storage.MemoryStore, *events.Bus) {
	t.Helper()
	store := storage.NewMemoryStore(storage.Local)
	bus := events.NewBus()
	return NewEngine(store, bus, DefaultTaxRate), store, bus
}

func TestAddItem_ExampleScenario(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine(t)

	c, err := engine.AddItem(ctx, latte, 2, "")
	require.NoError(t, err)
	assert.InDelta(t, 8.00, c.TotalAmount, 1e-9)

	c, err = engine.AddItem(ctx, latte, 1, "oat milk")
	require.NoError(t, err)
	require.Len(t, c.Items, 2)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, 1, c.Items[1].Quantity)
	assert.InDelta(t, 12.00, c.TotalAmount, 1e-9)

	c, err = engine.AddItem(ctx, pepperoni, 1, "")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, pizzaHut.ID, c.RestaurantID)
	assert.Equal(t, "Pepperoni Pizza", c.Items[0].MenuItem.Name)
}

func TestAddItem_RestaurantAffinity(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine(t)

	_, err := engine.AddItem(ctx, latte, 1, "")
	require.NoError(t, err)
	_, err = engine.AddItem(ctx, muffin, 3, "")
	require.NoError(t, err)
	_, err = engine.AddItem(ctx, pepperoni, 2, "extra cheese")
	require.NoError(t, err)

	c, err := engine.GetCart(ctx)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, uint(2), c.RestaurantID)
	assert.Equal(t, pepperoni.ID, c.Items[0].MenuItem.ID)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestAddItem_LineIdentity(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine(t)

	_, err := engine.AddItem(ctx, latte, 1, "oat milk")
	require.NoError(t, err)
	c, err := engine.AddItem(ctx, latte, 2, " oat milk ")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)

	c, err = engine.AddItem(ctx, latte, 1, "")
	require.NoError(t, err)
	assert.Len(t, c.Items, 2)

	c, err = engine.AddItem(ctx, latte, 1, "   ")
	require.NoError(t, err)
	require.Len(t, c.Items, 2)
	assert.Equal(t, 2, c.Items[1].Quantity)
}

func TestAddItem_RejectsNonPositiveQuantity(t *testing.T) {
	engine, store, _ := newTestEngine(t)

	_, err := engine.AddItem(context.Background(), latte, 0, "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, 0, store.Len())
}

func TestAddItem_KeepsPriceSnapshot(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine(t)

	_, err := engine.AddItem(ctx, latte, 1, "")
	require.NoError(t, err)

	repriced := latte
	repriced.Price = 5.00
	c, err := engine.AddItem(ctx, repriced, 1, "")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.InDelta(t, 4.00, c.Items[0].MenuItem.Price, 1e-9)
	assert.InDelta(t, 8.00, c.TotalAmount, 1e-9)
}

func TestTotalAmount_AlwaysMatchesLines(t *testing.T) {
	ctx := context.Background()
	engine, store, _ := newTestEngine(t)

	steps := []func() (*models.Cart, error){
		func() (*models.Cart, error) { return engine.AddItem(ctx, latte, 3, "") },
		func() (*models.Cart, error) { return engine.AddItem(ctx, muffin, 2, "warm") },
		func() (*models.Cart, error) { return engine.SetQuantity(ctx, latte.ID, 5, "") },
		func() (*models.Cart, error) { return engine.RemoveItem(ctx, muffin.ID, "warm") },
		func() (*models.Cart, error) { return engine.AddItem(ctx, muffin, 1, "") },
	}
	for _, step := range steps {
		c, err := step()
		require.NoError(t, err)
		require.NotNil(t, c)
		sum := 0.0
		for _, it := range c.Items {
			sum += it.MenuItem.Price * float64(it.Quantity)
		}
		assert.InDelta(t, sum, c.TotalAmount, 1e-9)
	}

	// a tampered total is never trusted
	require.NoError(t, store.Set(ctx, storage.KeyCart,
		`{"restaurant_id":1,"items":[{"menu_item":{"id":11,"restaurant_id":1,"name":"Latte","price":4,"is_available":true},"quantity":2}],"total_amount":999}`))
	c, err := engine.GetCart(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 8.00, c.TotalAmount, 1e-9)
}

func TestRemoveItem_LastLineDeletesCart(t *testing.T) {
	ctx := context.Background()
	engine, store, _ := newTestEngine(t)

	_, err := engine.AddItem(ctx, latte, 1, "")
	require.NoError(t, err)

	c, err := engine.RemoveItem(ctx, latte.ID, "")
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = engine.GetCart(ctx)
	require.NoError(t, err)
	assert.Nil(t, c)
	_, exists, _ := store.Get(ctx, storage.KeyCart)
	assert.False(t, exists)
}

func TestSetQuantity_ZeroRemoves(t *testing.T) {
	ctx := context.Background()
	engine, store, _ := newTestEngine(t)

	_, err := engine.AddItem(ctx, latte, 2, "")
	require.NoError(t, err)

	c, err := engine.SetQuantity(ctx, latte.ID, 0, "")
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Equal(t, 0, store.Len())
}

func TestSetQuantity_UnknownLineIsNoop(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine(t)

	_, err := engine.AddItem(ctx, latte, 2, "")
	require.NoError(t, err)

	c, err := engine.SetQuantity(ctx, latte.ID, 4, "decaf")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestGetCart_EmptyShellCollapses(t *testing.T) {
	ctx := context.Background()
	engine, store, _ := newTestEngine(t)
	require.NoError(t, store.Set(ctx, storage.KeyCart, `{"restaurant_id":1,"items":[],"total_amount":0}`))

	c, err := engine.GetCart(ctx)
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Equal(t, 0, store.Len())
}

func TestGetCart_CorruptIsDiscarded(t *testing.T) {
	ctx := context.Background()
	engine, store, _ := newTestEngine(t)
	require.NoError(t, store.Set(ctx, storage.KeyCart, "[[["))

	c, err := engine.GetCart(ctx)
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Equal(t, 0, store.Len())
}

func TestItemCount(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine(t)

	n, err := engine.ItemCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, _ = engine.AddItem(ctx, latte, 2, "")
	_, _ = engine.AddItem(ctx, muffin, 3, "")
	n, err = engine.ItemCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestMutationsPublishCartUpdated(t *testing.T) {
	ctx := context.Background()
	engine, _, bus := newTestEngine(t)

	var seen []*models.Cart
	unsubscribe := bus.Subscribe(events.CartUpdated, func(p interface{}) {
		seen = append(seen, p.(*models.Cart))
	})
	defer unsubscribe()

	_, _ = engine.AddItem(ctx, latte, 1, "")
	_, _ = engine.SetQuantity(ctx, latte.ID, 3, "")
	_, _ = engine.RemoveItem(ctx, latte.ID, "")

	require.Len(t, seen, 3)
	assert.Equal(t, 1, seen[0].Items[0].Quantity)
	assert.Equal(t, 3, seen[1].Items[0].Quantity)
	assert.Nil(t, seen[2])
}

func TestComputeTotals_FeeThreshold(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	tests := []struct {
		name    string
		line    models.CartItem
		wantFee float64
	}{
		{"below minimum", models.CartItem{MenuItem: latte, Quantity: 2}, 0},
		{"at minimum", models.CartItem{MenuItem: muffin, Quantity: 4}, 2.99},
		{"above minimum", models.CartItem{MenuItem: latte, Quantity: 3}, 2.99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &models.Cart{RestaurantID: 1, Items: []models.CartItem{tt.line}}
			totals := engine.ComputeTotals(c, starbucks)
			assert.InDelta(t, tt.wantFee, totals.DeliveryFee, 1e-9)
			assert.InDelta(t, totals.Subtotal*0.08, totals.Tax, 0.005)
			assert.InDelta(t, totals.Subtotal+totals.DeliveryFee+totals.Tax, totals.Total, 1e-9)
		})
	}
}

func TestComputeTotals_Values(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	c := &models.Cart{RestaurantID: 1, Items: []models.CartItem{{MenuItem: latte, Quantity: 3}}}

	totals := engine.ComputeTotals(c, starbucks)
	assert.Equal(t, Totals{Subtotal: 12.00, DeliveryFee: 2.99, Tax: 0.96, Total: 15.95}, totals)
}

func TestValidate(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	v := engine.Validate(nil, starbucks)
	assert.False(t, v.IsValid)
	assert.Equal(t, []string{"Cart is empty"}, v.Errors)

	small := &models.Cart{RestaurantID: 1, Items: []models.CartItem{{MenuItem: latte, Quantity: 1}}}
	v = engine.Validate(small, starbucks)
	assert.False(t, v.IsValid)
	assert.Contains(t, v.Errors, "Minimum order amount is $10.00")

	soldOut := muffin
	soldOut.IsAvailable = false
	stale := &models.Cart{RestaurantID: 1, Items: []models.CartItem{
		{MenuItem: latte, Quantity: 3},
		{MenuItem: soldOut, Quantity: 1},
	}}
	v = engine.Validate(stale, starbucks)
	assert.False(t, v.IsValid)
	assert.Equal(t, []string{"Muffin is no longer available"}, v.Errors)

	v = engine.Validate(stale, pizzaHut)
	assert.Contains(t, v.Errors, "Cart belongs to a different restaurant")

	ok := &models.Cart{RestaurantID: 1, Items: []models.CartItem{{MenuItem: latte, Quantity: 3}}}
	v = engine.Validate(ok, starbucks)
	assert.True(t, v.IsValid)
	assert.Empty(t, v.Errors)
}
