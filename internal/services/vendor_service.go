package services

import (
	"context"
	"fmt"
	"strconv"

	"campus_portal/internal/models"
	"campus_portal/internal/realtime"
	"campus_portal/internal/repository"
)

// StreamKind selects which order table a vendor follows.
type StreamKind string

const (
	StreamRepair StreamKind = "repair"
	StreamFood   StreamKind = "food"
)

// VendorService lets vendors and admins work the order queues. Vendors see
// only their own service type or restaurants.
type VendorService interface {
	ListRepairOrders(ctx context.Context, user *models.User, serviceType string) ([]models.RepairOrder, error)
	ListFoodOrders(ctx context.Context, user *models.User, restaurantID uint) ([]models.FoodOrder, error)
	UpdateRepairStatus(ctx context.Context, user *models.User, id uint, status models.OrderStatus) (*models.RepairOrder, error)
	UpdateFoodStatus(ctx context.Context, user *models.User, id uint, status models.OrderStatus) (*models.FoodOrder, error)
	// StreamScope resolves the table and row filter user may follow.
	StreamScope(ctx context.Context, user *models.User, kind StreamKind, key string) (string, realtime.Filter, error)
}

type vendorService struct {
	restaurants  repository.RestaurantRepository
	foodOrders   repository.FoodOrderRepository
	repairOrders repository.RepairOrderRepository
}

func NewVendorService(restaurants repository.RestaurantRepository, foodOrders repository.FoodOrderRepository, repairOrders repository.RepairOrderRepository) VendorService {
	return &vendorService{restaurants: restaurants, foodOrders: foodOrders, repairOrders: repairOrders}
}

func (s *vendorService) ListRepairOrders(ctx context.Context, user *models.User, serviceType string) ([]models.RepairOrder, error) {
	serviceType, err := s.repairScope(user, serviceType)
	if err != nil {
		return nil, err
	}
	return s.repairOrders.GetByServiceType(ctx, serviceType)
}

func (s *vendorService) ListFoodOrders(ctx context.Context, user *models.User, restaurantID uint) ([]models.FoodOrder, error) {
	if err := s.checkRestaurant(ctx, user, restaurantID); err != nil {
		return nil, err
	}
	return s.foodOrders.GetByRestaurant(ctx, restaurantID)
}

func (s *vendorService) UpdateRepairStatus(ctx context.Context, user *models.User, id uint, status models.OrderStatus) (*models.RepairOrder, error) {
	order, err := s.repairOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.repairScope(user, order.ServiceType); err != nil {
		return nil, err
	}
	return s.repairOrders.UpdateStatus(ctx, id, status)
}

func (s *vendorService) UpdateFoodStatus(ctx context.Context, user *models.User, id uint, status models.OrderStatus) (*models.FoodOrder, error) {
	order, err := s.foodOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkRestaurant(ctx, user, order.RestaurantID); err != nil {
		return nil, err
	}
	return s.foodOrders.UpdateStatus(ctx, id, status)
}

func (s *vendorService) StreamScope(ctx context.Context, user *models.User, kind StreamKind, key string) (string, realtime.Filter, error) {
	switch kind {
	case StreamRepair:
		serviceType, err := s.repairScope(user, key)
		if err != nil {
			return "", realtime.Filter{}, err
		}
		return "repair_orders", realtime.Filter{Column: "service_type", Value: serviceType}, nil
	case StreamFood:
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return "", realtime.Filter{}, fmt.Errorf("%w: restaurant id %q", ErrInvalidInput, key)
		}
		if err := s.checkRestaurant(ctx, user, uint(id)); err != nil {
			return "", realtime.Filter{}, err
		}
		return "food_orders", realtime.Filter{Column: "restaurant_id", Value: key}, nil
	}
	return "", realtime.Filter{}, fmt.Errorf("%w: stream %q", ErrInvalidInput, kind)
}

// repairScope returns the service type user may act on.
func (s *vendorService) repairScope(user *models.User, serviceType string) (string, error) {
	switch {
	case isAdmin(user):
		if serviceType == "" {
			return "", fmt.Errorf("%w: service type is required", ErrInvalidInput)
		}
		return serviceType, nil
	case user.Role == string(models.Vendor) && user.ServiceType != "":
		if serviceType != "" && serviceType != user.ServiceType {
			return "", ErrForbidden
		}
		return user.ServiceType, nil
	}
	return "", ErrForbidden
}

func (s *vendorService) checkRestaurant(ctx context.Context, user *models.User, restaurantID uint) error {
	restaurant, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return err
	}
	if isAdmin(user) {
		return nil
	}
	if user.Role == string(models.Vendor) && restaurant.VendorID != nil && *restaurant.VendorID == user.ID {
		return nil
	}
	return ErrForbidden
}

func isAdmin(user *models.User) bool {
	return user.Role == string(models.Admin) || user.Role == string(models.SuperAdmin)
}
