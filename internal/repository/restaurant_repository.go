package repository

import (
	"context"

	"campus_portal/internal/models"

	"gorm.io/gorm"
)

type RestaurantRepository interface {
	Create(ctx context.Context, restaurant *models.Restaurant) error
	GetByID(ctx context.Context, id uint) (*models.Restaurant, error)
	GetActive(ctx context.Context) ([]models.Restaurant, error)
	GetByVendor(ctx context.Context, vendorID uint) ([]models.Restaurant, error)
	Count(ctx context.Context) (int64, error)
}

type restaurantRepository struct {
	db *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) RestaurantRepository {
	return &restaurantRepository{db: db}
}

func (r *restaurantRepository) Create(ctx context.Context, restaurant *models.Restaurant) error {
	return r.db.WithContext(ctx).Create(restaurant).Error
}

func (r *restaurantRepository) GetByID(ctx context.Context, id uint) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := r.db.WithContext(ctx).First(&restaurant, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &restaurant, nil
}

func (r *restaurantRepository) GetActive(ctx context.Context) ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&restaurants).Error
	return restaurants, err
}

func (r *restaurantRepository) GetByVendor(ctx context.Context, vendorID uint) ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	err := r.db.WithContext(ctx).Where("vendor_id = ?", vendorID).Find(&restaurants).Error
	return restaurants, err
}

func (r *restaurantRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Restaurant{}).Count(&n).Error
	return n, err
}

type MenuItemRepository interface {
	Create(ctx context.Context, item *models.MenuItem) error
	GetByID(ctx context.Context, id uint) (*models.MenuItem, error)
	GetByRestaurant(ctx context.Context, restaurantID uint) ([]models.MenuItem, error)
	Update(ctx context.Context, item *models.MenuItem) error
}

type menuItemRepository struct {
	db *gorm.DB
}

func NewMenuItemRepository(db *gorm.DB) MenuItemRepository {
	return &menuItemRepository{db: db}
}

func (r *menuItemRepository) Create(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *menuItemRepository) GetByID(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.WithContext(ctx).First(&item, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *menuItemRepository) GetByRestaurant(ctx context.Context, restaurantID uint) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID).Order("category, name").Find(&items).Error
	return items, err
}

func (r *menuItemRepository) Update(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

type ServiceTypeRepository interface {
	Create(ctx context.Context, st *models.ServiceType) error
	GetByName(ctx context.Context, name string) (*models.ServiceType, error)
	GetActive(ctx context.Context) ([]models.ServiceType, error)
}

type serviceTypeRepository struct {
	db *gorm.DB
}

func NewServiceTypeRepository(db *gorm.DB) ServiceTypeRepository {
	return &serviceTypeRepository{db: db}
}

func (r *serviceTypeRepository) Create(ctx context.Context, st *models.ServiceType) error {
	return r.db.WithContext(ctx).Create(st).Error
}

func (r *serviceTypeRepository) GetByName(ctx context.Context, name string) (*models.ServiceType, error) {
	var st models.ServiceType
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&st).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &st, nil
}

func (r *serviceTypeRepository) GetActive(ctx context.Context) ([]models.ServiceType, error) {
	var types []models.ServiceType
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&types).Error
	return types, err
}
