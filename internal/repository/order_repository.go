package repository

import (
	"context"
	"fmt"

	"campus_portal/internal/models"
	"campus_portal/internal/realtime"

	"gorm.io/gorm"
)

type FoodOrderRepository interface {
	// Create inserts the order and its items in one transaction.
	Create(ctx context.Context, order *models.FoodOrder) error
	GetByID(ctx context.Context, id uint) (*models.FoodOrder, error)
	GetByToken(ctx context.Context, token string) (*models.FoodOrder, error)
	GetByUserID(ctx context.Context, userID uint) ([]models.FoodOrder, error)
	GetByRestaurant(ctx context.Context, restaurantID uint) ([]models.FoodOrder, error)
	UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.FoodOrder, error)
}

type foodOrderRepository struct {
	db *gorm.DB
}

func NewFoodOrderRepository(db *gorm.DB) FoodOrderRepository {
	return &foodOrderRepository{db: db}
}

func (r *foodOrderRepository) Create(ctx context.Context, order *models.FoodOrder) error {
	return realtime.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
}

func (r *foodOrderRepository) GetByID(ctx context.Context, id uint) (*models.FoodOrder, error) {
	var order models.FoodOrder
	err := r.db.WithContext(ctx).Preload("Items").First(&order, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (r *foodOrderRepository) GetByToken(ctx context.Context, token string) (*models.FoodOrder, error) {
	var order models.FoodOrder
	err := r.db.WithContext(ctx).Preload("Items").Where("order_token = ?", token).First(&order).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (r *foodOrderRepository) GetByUserID(ctx context.Context, userID uint) ([]models.FoodOrder, error) {
	var orders []models.FoodOrder
	err := r.db.WithContext(ctx).Preload("Items").Where("user_id = ?", userID).Order("created_at desc").Find(&orders).Error
	return orders, err
}

func (r *foodOrderRepository) GetByRestaurant(ctx context.Context, restaurantID uint) ([]models.FoodOrder, error) {
	var orders []models.FoodOrder
	err := r.db.WithContext(ctx).Preload("Items").Where("restaurant_id = ?", restaurantID).Order("created_at desc").Find(&orders).Error
	return orders, err
}

func (r *foodOrderRepository) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.FoodOrder, error) {
	var order models.FoodOrder
	err := realtime.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.First(&order, id).Error; err != nil {
			return notFound(err)
		}
		if !models.CanTransition(models.OrderStatus(order.Status), status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, status)
		}
		order.Status = string(status)
		return tx.Omit("Items").Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

type RepairOrderRepository interface {
	Create(ctx context.Context, order *models.RepairOrder) error
	GetByID(ctx context.Context, id uint) (*models.RepairOrder, error)
	GetByUserID(ctx context.Context, userID uint) ([]models.RepairOrder, error)
	GetByServiceType(ctx context.Context, serviceType string) ([]models.RepairOrder, error)
	UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.RepairOrder, error)
}

type repairOrderRepository struct {
	db *gorm.DB
}

func NewRepairOrderRepository(db *gorm.DB) RepairOrderRepository {
	return &repairOrderRepository{db: db}
}

func (r *repairOrderRepository) Create(ctx context.Context, order *models.RepairOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repairOrderRepository) GetByID(ctx context.Context, id uint) (*models.RepairOrder, error) {
	var order models.RepairOrder
	err := r.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (r *repairOrderRepository) GetByUserID(ctx context.Context, userID uint) ([]models.RepairOrder, error) {
	var orders []models.RepairOrder
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&orders).Error
	return orders, err
}

func (r *repairOrderRepository) GetByServiceType(ctx context.Context, serviceType string) ([]models.RepairOrder, error) {
	var orders []models.RepairOrder
	err := r.db.WithContext(ctx).Where("service_type = ?", serviceType).Order("created_at desc").Find(&orders).Error
	return orders, err
}

func (r *repairOrderRepository) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.RepairOrder, error) {
	var order models.RepairOrder
	err := realtime.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.First(&order, id).Error; err != nil {
			return notFound(err)
		}
		if !models.CanTransition(models.OrderStatus(order.Status), status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, status)
		}
		order.Status = string(status)
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

type LostFoundRepository interface {
	Create(ctx context.Context, item *models.LostFoundItem) error
	GetOpen(ctx context.Context) ([]models.LostFoundItem, error)
	GetByUserID(ctx context.Context, userID uint) ([]models.LostFoundItem, error)
}

type lostFoundRepository struct {
	db *gorm.DB
}

func NewLostFoundRepository(db *gorm.DB) LostFoundRepository {
	return &lostFoundRepository{db: db}
}

func (r *lostFoundRepository) Create(ctx context.Context, item *models.LostFoundItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *lostFoundRepository) GetOpen(ctx context.Context) ([]models.LostFoundItem, error) {
	var items []models.LostFoundItem
	err := r.db.WithContext(ctx).Where("status = ?", "open").Order("event_date desc").Find(&items).Error
	return items, err
}

func (r *lostFoundRepository) GetByUserID(ctx context.Context, userID uint) ([]models.LostFoundItem, error) {
	var items []models.LostFoundItem
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&items).Error
	return items, err
}
