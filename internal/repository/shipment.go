package repository

import (
	"context"
	"time"

	"zawawiya-store/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShipmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, shipment *model.Shipment) error
	SetTrackingNumber(ctx context.Context, tx *gorm.DB, orderID uint, trackingNumber string, now time.Time) error
}

type shipmentRepoImpl struct {
	db *gorm.DB
}

func NewShipmentRepository(db *gorm.DB) ShipmentRepository {
	return &shipmentRepoImpl{db: db}
}

func (r *shipmentRepoImpl) Create(ctx context.Context, tx *gorm.DB, shipment *model.Shipment) error {
	return tx.WithContext(ctx).Omit("Service").Create(shipment).Error
}

func (r *shipmentRepoImpl) SetTrackingNumber(ctx context.Context, tx *gorm.DB, orderID uint, trackingNumber string, now time.Time) error {
	return tx.WithContext(ctx).Model(&model.Shipment{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"tracking_number": trackingNumber,
			"updated_at":      now,
		}).Error
}

type ShippingRepository interface {
	Seed(ctx context.Context) error
	ListActive(ctx context.Context, tx *gorm.DB) ([]*model.ShippingService, error)
	FindActive(ctx context.Context, tx *gorm.DB, serviceID uint) (*model.ShippingService, error)
}

type shippingRepoImpl struct {
	db *gorm.DB
}

func NewShippingRepository(db *gorm.DB) ShippingRepository {
	return &shippingRepoImpl{db: db}
}

func (r *shippingRepoImpl) Seed(ctx context.Context) error {
	couriers := []model.Courier{
		{ID: 1, Code: "jne", Name: "JNE", Active: true},
		{ID: 2, Code: "jnt", Name: "J&T Express", Active: true},
		{ID: 3, Code: "sicepat", Name: "SiCepat", Active: true},
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&couriers).Error; err != nil {
		return err
	}

	services := []model.ShippingService{
		{ID: 1, CourierID: 1, Name: "REG", Price: 18000, EstimatedDays: "2-3", Active: true},
		{ID: 2, CourierID: 1, Name: "YES", Price: 32000, EstimatedDays: "1", Active: true},
		{ID: 3, CourierID: 2, Name: "EZ", Price: 16000, EstimatedDays: "2-4", Active: true},
		{ID: 4, CourierID: 3, Name: "HALU", Price: 0, Free: true, EstimatedDays: "3-5", Active: true},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&services).Error
}

func activeServices(q *gorm.DB) *gorm.DB {
	return q.Joins("Courier").
		Where("shipping_services.active = ?", true).
		Where("Courier.active = ?", true)
}

func (r *shippingRepoImpl) ListActive(ctx context.Context, tx *gorm.DB) ([]*model.ShippingService, error) {
	var services []*model.ShippingService
	err := activeServices(tx.WithContext(ctx)).
		Order("shipping_services.free DESC").
		Order("shipping_services.price ASC").
		Order("shipping_services.id ASC").
		Find(&services).Error

	if err != nil {
		return nil, err
	}

	return services, nil
}

func (r *shippingRepoImpl) FindActive(ctx context.Context, tx *gorm.DB, serviceID uint) (*model.ShippingService, error) {
	var service model.ShippingService
	err := activeServices(tx.WithContext(ctx)).
		Where("shipping_services.id = ?", serviceID).
		First(&service).Error

	if err != nil {
		return nil, err
	}

	return &service, nil
}
