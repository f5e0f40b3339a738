package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"campus_portal/internal/auth"
	"campus_portal/internal/clients"
	"campus_portal/internal/database"
	"campus_portal/internal/forms"
	"campus_portal/internal/models"
	"campus_portal/internal/orders"
	"campus_portal/internal/pending"
	"campus_portal/internal/repository"
	"campus_portal/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db        *gorm.DB
	users     UserService
	portal    *Portal
	registry  *clients.Registry
	checkout  CheckoutService
	repair    RepairService
	lostFound LostFoundService
	resume    ResumeService
	vendor    VendorService
	catalog   CatalogService

	restaurant *models.Restaurant
	burger     *models.MenuItem
	fries      *models.MenuItem
	soldOut    *models.MenuItem
	other      *models.MenuItem
	vendorUser *models.User

	foodStore   *failingFoodOrders
	repairStore *failingRepairOrders
}

var errStoreDown = errors.New("database is unavailable")

// failingFoodOrders rejects new orders while down is set.
type failingFoodOrders struct {
	repository.FoodOrderRepository
	down bool
}

func (r *failingFoodOrders) Create(ctx context.Context, order *models.FoodOrder) error {
	if r.down {
		return errStoreDown
	}
	return r.FoodOrderRepository.Create(ctx, order)
}

type failingRepairOrders struct {
	repository.RepairOrderRepository
	down bool
}

func (r *failingRepairOrders) Create(ctx context.Context, order *models.RepairOrder) error {
	if r.down {
		return errStoreDown
	}
	return r.RepairOrderRepository.Create(ctx, order)
}

const password = "password123"

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })

	userRepo := repository.NewUserRepository(db)
	restaurants := repository.NewRestaurantRepository(db)
	menu := repository.NewMenuItemRepository(db)
	serviceTypes := repository.NewServiceTypeRepository(db)
	foodOrders := repository.NewFoodOrderRepository(db)
	repairOrders := repository.NewRepairOrderRepository(db)
	lostFound := repository.NewLostFoundRepository(db)

	f := &fixture{db: db, registry: clients.NewMemoryRegistry()}
	f.users = NewUserService(userRepo)
	f.portal = &Portal{
		Authenticator: auth.NewAuthenticator(f.users, "/login"),
		TaxRate:       0.08,
		Pending:       pending.Options{MaxAge: 24 * time.Hour},
	}
	f.foodStore = &failingFoodOrders{FoodOrderRepository: foodOrders}
	f.repairStore = &failingRepairOrders{RepairOrderRepository: repairOrders}
	adapter := orders.NewAdapter(f.foodStore, f.repairStore, lostFound, nil)
	f.checkout = NewCheckoutService(f.portal, restaurants, menu, foodOrders, adapter)
	f.repair = NewRepairService(f.portal, serviceTypes, repairOrders, adapter)
	f.lostFound = NewLostFoundService(f.portal, lostFound, adapter)
	f.resume = NewResumeService(f.portal, f.checkout, f.lostFound)
	f.vendor = NewVendorService(restaurants, foodOrders, repairOrders)
	f.catalog = NewCatalogService(restaurants, menu, serviceTypes)

	f.vendorUser = &models.User{Email: "grill@campus.edu", FirstName: "Grill", Role: string(models.Vendor), IsActive: true}
	require.NoError(t, f.users.CreateUser(ctx, f.vendorUser, password))
	require.NoError(t, f.users.CreateUser(ctx, &models.User{Email: "ana@campus.edu", FirstName: "Ana", LastName: "Lee", Phone: "5551234567", IsActive: true}, password))

	f.restaurant = &models.Restaurant{Name: "Campus Grill", DeliveryFee: 2.99, MinimumOrder: 10, IsActive: true, VendorID: &f.vendorUser.ID}
	require.NoError(t, restaurants.Create(ctx, f.restaurant))
	elsewhere := &models.Restaurant{Name: "Noodle Bar", IsActive: true}
	require.NoError(t, restaurants.Create(ctx, elsewhere))

	f.burger = &models.MenuItem{RestaurantID: f.restaurant.ID, Name: "Burger", Price: 5, IsAvailable: true}
	f.fries = &models.MenuItem{RestaurantID: f.restaurant.ID, Name: "Fries", Price: 2, IsAvailable: true}
	f.soldOut = &models.MenuItem{RestaurantID: f.restaurant.ID, Name: "Shake", Price: 4, IsAvailable: false}
	f.other = &models.MenuItem{RestaurantID: elsewhere.ID, Name: "Ramen", Price: 9, IsAvailable: true}
	for _, item := range []*models.MenuItem{f.burger, f.fries, f.soldOut, f.other} {
		require.NoError(t, menu.Create(ctx, item))
	}

	require.NoError(t, serviceTypes.Create(ctx, &models.ServiceType{Name: "laptop", DisplayName: "Laptop Repair", IsActive: true}))
	return f
}

func (f *fixture) signIn(t *testing.T, c *clients.Client, email string) {
	t.Helper()
	_, err := f.portal.Gate(c).SignIn(context.Background(), email, password)
	require.NoError(t, err)
}

var delivery = orders.DeliveryDetails{
	CustomerName:    "Ana Lee",
	Phone:           "5551234567",
	DeliveryAddress: "Hostel B, Room 12",
}

func TestUserService_SignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.users.SignUp(ctx, auth.SignUpInput{Email: "ana@campus.edu", Password: "longenough", FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, auth.ErrEmailTaken)

	_, err = f.users.SignUp(ctx, auth.SignUpInput{Email: "bad", Password: "short"})
	var fieldErrs forms.Errors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "email")
	assert.Contains(t, fieldErrs, "password")

	user, err := f.users.SignUp(ctx, auth.SignUpInput{Email: "New@Campus.edu", Password: "longenough", FirstName: "New", LastName: "User"})
	require.NoError(t, err)
	assert.Equal(t, "new@campus.edu", user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("longenough")))

	_, err = f.users.SignIn(ctx, "new@campus.edu", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = f.users.SignIn(ctx, "nobody@campus.edu", "longenough")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	require.NoError(t, f.users.Deactivate(ctx, user.ID))
	_, err = f.users.SignIn(ctx, "new@campus.edu", "longenough")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.users.GetUser(ctx, 9999)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestCheckout_LoginInterruptsAddToCartThenReplays(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.registry.Get("browser-1")

	res, err := f.checkout.AddToCart(ctx, c, AddToCartRequest{MenuItemID: f.burger.ID, Quantity: 2}, "/food/restaurant/1")
	require.NoError(t, err)
	require.NotNil(t, res.Redirect)
	assert.Equal(t, "/login?returnUrl=%2Ffood%2Frestaurant%2F1", res.Redirect.LoginURL)
	assert.Nil(t, res.Cart)

	f.signIn(t, c, "ana@campus.edu")
	outcome, err := f.resume.AfterLogin(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "/food/restaurant/1", outcome.Redirect)
	assert.True(t, outcome.Replayed)
	assert.Empty(t, outcome.Error)

	q, err := f.checkout.Quote(ctx, c)
	require.NoError(t, err)
	require.NotNil(t, q.Cart)
	assert.Equal(t, 2, q.ItemCount)

	// replay happens exactly once
	again, err := f.checkout.ResumePending(ctx, c)
	require.NoError(t, err)
	assert.False(t, again.Replayed)
}

func TestCheckout_PlacesOrderAndClearsCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.registry.Get("browser-1")
	f.signIn(t, c, "ana@campus.edu")

	_, err := f.checkout.AddToCart(ctx, c, AddToCartRequest{MenuItemID: f.burger.ID, Quantity: 2}, "/food")
	require.NoError(t, err)
	_, err = f.checkout.AddToCart(ctx, c, AddToCartRequest{MenuItemID: f.fries.ID, Quantity: 1}, "/food")
	require.NoError(t, err)

	q, err := f.checkout.Quote(ctx, c)
	require.NoError(t, err)
	assert.True(t, q.Validation.IsValid)
	assert.Equal(t, 15.95, q.Totals.Total)

	res, err := f.checkout.Checkout(ctx, c, delivery, "/food/checkout")
	require.NoError(t, err)
	require.NotNil(t, res.Order)
	assert.Nil(t, res.Redirect)
	assert.Equal(t, 15.95, res.Order.TotalAmount)
	assert.Len(t, res.Order.Items, 2)

	cleared, err := f.portal.Cart(c).GetCart(ctx)
	require.NoError(t, err)
	assert.Nil(t, cleared)

	history, err := f.checkout.OrderHistory(ctx, c)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCheckout_RejectsInvalidCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.registry.Get("browser-1")
	f.signIn(t, c, "ana@campus.edu")

	_, err := f.checkout.Checkout(ctx, c, delivery, "/food/checkout")
	var invalid *CartInvalidError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"Cart is empty"}, invalid.Validation.Errors)

	_, err = f.checkout.AddToCart(ctx, c, AddToCartRequest{MenuItemID: f.fries.ID, Quantity: 1}, "/food")
	require.NoError(t, err)

	// item sold out after it was added
	f.fries.IsAvailable = false
	require.NoError(t, f.db.Save(f.fries).Error)

	_, err = f.checkout.Checkout(ctx, c, delivery, "/food/checkout")
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Validation.Errors, "Minimum order amount is $10.00")
	assert.Contains(t, invalid.Validation.Errors, "Fries is no longer available")

	stillThere, err := f.portal.Cart(c).GetCart(ctx)
	require.NoError(t, err)
	assert.NotNil(t, stillThere)
}

func TestCheckout_DeliveryDetailsValidated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.registry.Get("browser-1")
	f.signIn(t, c, "ana@campus.edu")

	_, err := f.checkout.Checkout(ctx, c, orders.DeliveryDetails{CustomerName: "Ana", Phone: "12"}, "/food/checkout")
	var fieldErrs forms.Errors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "phone")
	assert.Contains(t, fieldErrs, "delivery_address")
}

func TestAddToCart_ReplacesOtherRestaurant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.registry.Get("browser-1")
	f.signIn(t, c, "ana@campus.edu")

	_, err := f.checkout.AddToCart(ctx, c, AddToCartRequest{MenuItemID: f.burger.ID, Quantity: 1}, "/food")
	require.NoError(t, err)
	res, err := f.checkout.AddToCart(ctx, c, AddToCartRequest{MenuItemID: f.other.ID, Quantity: 1}, "/food")
	require.NoError(t, err)
	assert.True(t, res.Replaced)
	require.Len(t, res.Cart.Items, 1)
	assert.Equal(t, "Ramen", res.Cart.Items[0].MenuItem.Name)

	_, err = f.checkout.AddToCart(ctx, c, AddToCartRequest{MenuItemID: f.soldOut.ID, Quantity: 1}, "/food")
	assert.ErrorIs(t, err, ErrItemUnavailable)
}

func TestCheckout_UnauthenticatedStoresIntent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.registry.Get("browser-1")

	res, err := f.checkout.Checkout(ctx, c, delivery, "/food/checkout")
	require.NoError(t, err)
	require.NotNil(t, res.Redirect)

	var env pending.Envelope[pending.CartIntent]
	ok, err := storage.GetJSON(ctx, c.Scopes.Session, storage.KeyPendingCartAccess, &env)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pending.ActionCheckout, env.Payload.Action)
	assert.Equal(t, "/food/checkout", env.RedirectURL)
}

func TestRepair_PrefillAfterLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.registry.Get("browser-1")

	form := pending.RepairForm{
		ServiceType:        "laptop",
		FirstName:          "Ana",
		LastName:           "Lee",
		Email:              "ana@campus.edu",
		Phone:              "555-123-4567",
		DeviceBrand:        "Dell",
		ProblemDescription: "battery drains in an hour",
	}
	res, err := f.repair.Submit(ctx, c, form, "/repair/laptop")
	require.NoError(t, err)
	require.NotNil(t, res.Redirect)
	assert.Nil(t, res.Order)

	f.signIn(t, c, "ana@campus.edu")
	outcome, err := f.resume.AfterLogin(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, pending.ModePrefill, outcome.Mode)
	require.NotNil(t, outcome.Prefill)
	assert.Equal(t, "Dell", outcome.Prefill.DeviceBrand)
	assert.Equal(t, "/repair/laptop", outcome.Redirect)

	prefill, err := f.repair.Prefill(ctx, c, "laptop")
	require.NoError(t, err)
	assert.Equal(t, "battery drains in an hour", prefill.ProblemDescription)

	submitted, err := f.repair.Submit(ctx, c, *prefill, "/repair/laptop")
	require.NoError(t, err)
	require.NotNil(t, submitted.Order)
	assert.Equal(t, "laptop", submitted.Order.ServiceType)

	// payload consumed; prefill falls back to the profile
	after, err := f.repair.Prefill(ctx, c, "laptop")
	require.NoError(t, err)
	assert.Empty(t, after.DeviceBrand)
	assert.Equal(t, "Ana", after.FirstName)
	assert.Equal(t, "5551234567", after.Phone)
}

var laptopForm = pending.RepairForm{
	ServiceType:        "laptop",
	FirstName:          "Ana",
	LastName:           "Lee",
	Email:              "ana@campus.edu",
	Phone:              "5551234567",
	DeviceBrand:        "Dell",
	ProblemDescription: "screen flickers after waking up",
}

func storedRepairForm(t *testing.T, c *clients.Client) (*pending.Envelope[pending.RepairForm], bool) {
	t.Helper()
	var env pending.Envelope[pending.RepairForm]
	ok, err := storage.GetJSON(context.Background(), c.Scopes.Session, storage.KeyPendingRepairForm, &env)
	require.NoError(t, err)
	return &env, ok
}

func TestRepair_FailedResubmitKeepsFormForOneRetry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.registry.Get("browser-1")

	res, err := f.repair.Submit(ctx, c, laptopForm, "/repair/laptop")
	require.NoError(t, err)
	require.NotNil(t, res.Redirect)
	f.signIn(t, c, "ana@campus.edu")

	f.repairStore.down = true
	prefill, err := f.repair.Prefill(ctx, c, "laptop")
	require.NoError(t, err)
	_, err = f.repair.Submit(ctx, c, *prefill, "/repair/laptop")
	var submitErr *SubmissionError
	require.ErrorAs(t, err, &submitErr)

	env, ok := storedRepairForm(t, c)
	require.True(t, ok)
	assert.Equal(t, 1, env.Attempts)
	assert.Equal(t, "Dell", env.Payload.DeviceBrand)

	f.repairStore.down = false
	submitted, err := f.repair.Submit(ctx, c, *prefill, "/repair/laptop")
	require.NoError(t, err)
	require.NotNil(t, submitted.Order)
	_, ok = storedRepairForm(t, c)
	assert.False(t, ok)
}

func TestRepair_SecondFailedResubmitDropsForm(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.registry.Get("browser-1")

	_, err := f.repair.Submit(ctx, c, laptopForm, "/repair/laptop")
	require.NoError(t, err)
	f.signIn(t, c, "ana@campus.edu")
	f.repairStore.down = true

	for i := 0; i < 2; i++ {
		_, err = f.repair.Submit(ctx, c, laptopForm, "/repair/laptop")
		var submitErr *SubmissionError
		require.ErrorAs(t, err, &submitErr)
	}
	_, ok := storedRepairForm(t, c)
	assert.False(t, ok)

	prefill, err := f.repair.Prefill(ctx, c, "laptop")
	require.NoError(t, err)
	assert.Empty(t, prefill.DeviceBrand)
}

func TestRepair_DeactivatedUserIsSentBackToLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.registry.Get("browser-1")
	f.signIn(t, c, "ana@campus.edu")

	user := f.portal.Gate(c).CurrentUserSync(ctx)
	require.NotNil(t, user)
	require.NoError(t, f.users.Deactivate(ctx, user.ID))

	res, err := f.repair.Submit(ctx, c, laptopForm, "/repair/laptop")
	require.NoError(t, err)
	require.NotNil(t, res.Redirect)
	assert.Nil(t, res.Order)
	assert.Equal(t, "/login?returnUrl=%2Frepair%2Flaptop", res.Redirect.LoginURL)
	assert.False(t, f.portal.Gate(c).IsAuthenticated(ctx))

	env, ok := storedRepairForm(t, c)
	require.True(t, ok)
	assert.Equal(t, "Dell", env.Payload.DeviceBrand)
	assert.Equal(t, 0, env.Attempts)

	returnURL, svc, ok := f.portal.Gate(c).ConsumeReturn(ctx)
	require.True(t, ok)
	assert.Equal(t, "/repair/laptop", returnURL)
	assert.Equal(t, auth.ContextRepair, svc)
}

func TestCheckout_BackendFailureRedirectsToLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.registry.Get("browser-1")
	f.signIn(t, c, "ana@campus.edu")

	_, err := f.checkout.AddToCart(ctx, c, AddToCartRequest{MenuItemID: f.burger.ID, Quantity: 2}, "/food")
	require.NoError(t, err)

	// session check can no longer reach the accounts table
	require.NoError(t, f.db.Migrator().DropTable(&models.User{}))

	res, err := f.checkout.Checkout(ctx, c, delivery, "/food/checkout")
	require.NoError(t, err)
	require.NotNil(t, res.Redirect)
	assert.Nil(t, res.Order)
	assert.Equal(t, "/food/checkout", res.Redirect.ReturnURL)

	var env pending.Envelope[pending.CartIntent]
	ok, err := storage.GetJSON(ctx, c.Scopes.Session, storage.KeyPendingCartAccess, &env)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pending.ActionCheckout, env.Payload.Action)

	kept, err := f.portal.Cart(c).GetCart(ctx)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestCheckout_FailedSubmissionKeepsIntentAndCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.registry.Get("browser-1")

	res, err := f.checkout.Checkout(ctx, c, delivery, "/food/checkout")
	require.NoError(t, err)
	require.NotNil(t, res.Redirect)
	f.signIn(t, c, "ana@campus.edu")

	_, err = f.checkout.AddToCart(ctx, c, AddToCartRequest{MenuItemID: f.burger.ID, Quantity: 2}, "/food")
	require.NoError(t, err)

	f.foodStore.down = true
	_, err = f.checkout.Checkout(ctx, c, delivery, "/food/checkout")
	var submitErr *SubmissionError
	require.ErrorAs(t, err, &submitErr)

	_, ok, err := c.Scopes.Session.Get(ctx, storage.KeyPendingCartAccess)
	require.NoError(t, err)
	assert.True(t, ok)
	kept, err := f.portal.Cart(c).GetCart(ctx)
	require.NoError(t, err)
	assert.NotNil(t, kept)

	f.foodStore.down = false
	placed, err := f.checkout.Checkout(ctx, c, delivery, "/food/checkout")
	require.NoError(t, err)
	require.NotNil(t, placed.Order)
	_, ok, err = c.Scopes.Session.Get(ctx, storage.KeyPendingCartAccess)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepair_UnknownServiceTypeAndValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.registry.Get("browser-1")

	_, err := f.repair.Prefill(ctx, c, "toaster")
	assert.ErrorIs(t, err, ErrUnknownServiceType)

	_, err = f.repair.Submit(ctx, c, pending.RepairForm{ServiceType: "laptop"}, "/repair/laptop")
	var fieldErrs forms.Errors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "is required", fieldErrs["first_name"])

	_, ok, _ := c.Scopes.Session.Get(ctx, storage.KeyPendingRepairForm)
	assert.False(t, ok)
}

func TestLostFound_ReplaysAfterLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.registry.Get("browser-1")

	report := pending.LostFoundReport{
		Kind:         "found",
		ItemName:     "Student ID card",
		Description:  "found near the main gate",
		Location:     "Main gate",
		EventDate:    time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC),
		ContactName:  "Ana",
		ContactPhone: "5551234567",
	}
	res, err := f.lostFound.Submit(ctx, c, report, "/lost-and-found")
	require.NoError(t, err)
	require.NotNil(t, res.Redirect)

	f.signIn(t, c, "ana@campus.edu")
	outcome, err := f.resume.AfterLogin(ctx, c)
	require.NoError(t, err)
	assert.True(t, outcome.Replayed)
	item, ok := outcome.Result.(*models.LostFoundItem)
	require.True(t, ok)
	assert.Equal(t, "Student ID card", item.ItemName)

	open, err := f.lostFound.ListOpen(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestResume_WithoutPendingGoesHome(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.registry.Get("browser-1")

	_, err := f.resume.AfterLogin(ctx, c)
	assert.ErrorIs(t, err, auth.ErrAuthRequired)

	f.signIn(t, c, "ana@campus.edu")
	outcome, err := f.resume.AfterLogin(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "/", outcome.Redirect)
	assert.False(t, outcome.Replayed)
}

func TestVendor_ScopesAndTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.registry.Get("browser-1")
	f.signIn(t, c, "ana@campus.edu")

	_, err := f.checkout.AddToCart(ctx, c, AddToCartRequest{MenuItemID: f.burger.ID, Quantity: 2}, "/food")
	require.NoError(t, err)
	placed, err := f.checkout.Checkout(ctx, c, delivery, "/food/checkout")
	require.NoError(t, err)

	customer := f.portal.Gate(c).CurrentUserSync(ctx)
	_, err = f.vendor.ListFoodOrders(ctx, customer, f.restaurant.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	queue, err := f.vendor.ListFoodOrders(ctx, f.vendorUser, f.restaurant.ID)
	require.NoError(t, err)
	require.Len(t, queue, 1)

	updated, err := f.vendor.UpdateFoodStatus(ctx, f.vendorUser, placed.Order.ID, models.OrderAccepted)
	require.NoError(t, err)
	assert.Equal(t, "accepted", updated.Status)

	_, err = f.vendor.UpdateFoodStatus(ctx, f.vendorUser, placed.Order.ID, models.OrderCompleted)
	assert.True(t, errors.Is(err, repository.ErrInvalidTransition))

	table, filter, err := f.vendor.StreamScope(ctx, f.vendorUser, StreamFood, fmt.Sprint(f.restaurant.ID))
	require.NoError(t, err)
	assert.Equal(t, "food_orders", table)
	assert.Equal(t, "restaurant_id", filter.Column)

	admin := &models.User{ID: 99, Role: string(models.Admin)}
	_, err = f.vendor.ListRepairOrders(ctx, admin, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	repairVendor := &models.User{ID: 98, Role: string(models.Vendor), ServiceType: "phone"}
	_, err = f.vendor.ListRepairOrders(ctx, repairVendor, "laptop")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	restaurants, err := f.catalog.ListRestaurants(ctx)
	require.NoError(t, err)
	assert.Len(t, restaurants, 2)

	menu, err := f.catalog.GetMenu(ctx, f.restaurant.ID)
	require.NoError(t, err)
	assert.Len(t, menu.Items, 3)

	_, err = f.catalog.GetMenu(ctx, 404)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	types, err := f.catalog.ListServiceTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "laptop", types[0].Name)
}
