package services

import (
	"context"

	"campus_portal/internal/models"
	"campus_portal/internal/repository"
)

type Menu struct {
	Restaurant *models.Restaurant `json:"restaurant"`
	Items      []models.MenuItem  `json:"items"`
}

type CatalogService interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	GetMenu(ctx context.Context, restaurantID uint) (*Menu, error)
	ListServiceTypes(ctx context.Context) ([]models.ServiceType, error)
}

type catalogService struct {
	restaurants  repository.RestaurantRepository
	menu         repository.MenuItemRepository
	serviceTypes repository.ServiceTypeRepository
}

func NewCatalogService(restaurants repository.RestaurantRepository, menu repository.MenuItemRepository, serviceTypes repository.ServiceTypeRepository) CatalogService {
	return &catalogService{restaurants: restaurants, menu: menu, serviceTypes: serviceTypes}
}

func (s *catalogService) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	return s.restaurants.GetActive(ctx)
}

func (s *catalogService) GetMenu(ctx context.Context, restaurantID uint) (*Menu, error) {
	restaurant, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if !restaurant.IsActive {
		return nil, repository.ErrNotFound
	}
	items, err := s.menu.GetByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	return &Menu{Restaurant: restaurant, Items: items}, nil
}

func (s *catalogService) ListServiceTypes(ctx context.Context) ([]models.ServiceType, error) {
	return s.serviceTypes.GetActive(ctx)
}
