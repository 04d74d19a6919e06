package repository

import (
	"context"
	"time"

	"zawawiya-store/internal/model"

	"gorm.io/gorm"
)

type OrderFilter struct {
	ID     uint
	Status model.OrderStatus
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	FindByID(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error)
	FindForUser(ctx context.Context, tx *gorm.DB, orderID, userID uint) (*model.Order, error)
	ListByUser(ctx context.Context, userID uint) ([]*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, orderID uint, from, to model.OrderStatus, now time.Time) error
	GetOrderItems(ctx context.Context, tx *gorm.DB, orderID uint) ([]*model.OrderItem, error)
	Delete(ctx context.Context, tx *gorm.DB, orderID uint) error
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

// Create inserts the order together with its items.
func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Omit("Payment", "Shipment", "Return", "User").Create(order).Error
}

func preloadOrderDetail(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Items.Product").
		Preload("Items.Variant").
		Preload("Items.Variant.Values").
		Preload("Payment").
		Preload("Shipment").
		Preload("Shipment.Service").
		Preload("Shipment.Service.Courier").
		Preload("Return")
}

func (r *orderRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error) {
	var order model.Order
	err := preloadOrderDetail(tx.WithContext(ctx)).
		Preload("User").
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindForUser(ctx context.Context, tx *gorm.DB, orderID, userID uint) (*model.Order, error) {
	var order model.Order
	err := preloadOrderDetail(tx.WithContext(ctx)).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) ListByUser(ctx context.Context, userID uint) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Preload("Payment").
		Preload("Shipment").
		Preload("Shipment.Service").
		Preload("Shipment.Service.Courier").
		Preload("Return").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) List(ctx context.Context, filter OrderFilter) ([]*model.Order, error) {
	q := r.db.WithContext(ctx).
		Preload("User").
		Preload("Payment").
		Preload("Shipment").
		Preload("Shipment.Service").
		Preload("Shipment.Service.Courier").
		Preload("Items")

	if filter.ID != 0 {
		q = q.Where("id = ?", filter.ID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}

	var orders []*model.Order
	if err := q.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}

	return orders, nil
}

// UpdateStatus moves the order only if it is still in the from status.
// gorm.ErrRecordNotFound means someone else moved it first.
func (r *orderRepoImpl) UpdateStatus(ctx context.Context, tx *gorm.DB, orderID uint, from, to model.OrderStatus, now time.Time) error {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": now,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *orderRepoImpl) GetOrderItems(ctx context.Context, tx *gorm.DB, orderID uint) ([]*model.OrderItem, error) {
	var items []*model.OrderItem
	err := tx.WithContext(ctx).Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

// Delete removes the order and everything it owns.
func (r *orderRepoImpl) Delete(ctx context.Context, tx *gorm.DB, orderID uint) error {
	db := tx.WithContext(ctx)
	if err := db.Where("order_id = ?", orderID).Delete(&model.Shipment{}).Error; err != nil {
		return err
	}
	if err := db.Where("order_id = ?", orderID).Delete(&model.Payment{}).Error; err != nil {
		return err
	}
	if err := db.Where("order_id = ?", orderID).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}

	result := db.Where("id = ?", orderID).Delete(&model.Order{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
