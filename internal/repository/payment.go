package repository

import (
	"context"
	"time"

	"zawawiya-store/internal/model"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error
	FindByOrderID(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Payment, error)
	FindByExternalID(ctx context.Context, tx *gorm.DB, externalID string) (*model.Payment, error)
	FindOverdue(ctx context.Context, tx *gorm.DB, userID *uint, now time.Time) ([]*model.Payment, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, paymentID uint, from, to model.PaymentStatus, now time.Time, fields map[string]interface{}) error
	SetSession(ctx context.Context, tx *gorm.DB, paymentID uint, externalID, token string, now time.Time) error
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{db: db}
}

func (r *paymentRepoImpl) Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error {
	return tx.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepoImpl) FindByOrderID(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Payment, error) {
	var payment model.Payment
	err := tx.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&payment).Error

	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepoImpl) FindByExternalID(ctx context.Context, tx *gorm.DB, externalID string) (*model.Payment, error) {
	var payment model.Payment
	err := tx.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&payment).Error

	if err != nil {
		return nil, err
	}

	return &payment, nil
}

// FindOverdue lists waiting payments whose expiry has passed. A nil userID
// scans every user.
func (r *paymentRepoImpl) FindOverdue(ctx context.Context, tx *gorm.DB, userID *uint, now time.Time) ([]*model.Payment, error) {
	q := tx.WithContext(ctx).Model(&model.Payment{}).
		Where("payments.status = ?", model.PaymentWaiting).
		Where("payments.expired_at IS NOT NULL AND payments.expired_at <= ?", now)

	if userID != nil {
		q = q.Joins("JOIN orders ON orders.id = payments.order_id").
			Where("orders.user_id = ?", *userID)
	}

	var payments []*model.Payment
	if err := q.Order("payments.id ASC").Find(&payments).Error; err != nil {
		return nil, err
	}

	return payments, nil
}

// UpdateStatus is a compare-and-set on the payment status. Extra columns in
// fields are written in the same statement.
func (r *paymentRepoImpl) UpdateStatus(ctx context.Context, tx *gorm.DB, paymentID uint, from, to model.PaymentStatus, now time.Time, fields map[string]interface{}) error {
	values := map[string]interface{}{
		"status":     to,
		"updated_at": now,
	}
	for k, v := range fields {
		values[k] = v
	}

	result := tx.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ? AND status = ?", paymentID, from).
		Updates(values)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// SetSession stores the gateway session once. A second writer gets
// gorm.ErrRecordNotFound and should re-read the winner's token.
func (r *paymentRepoImpl) SetSession(ctx context.Context, tx *gorm.DB, paymentID uint, externalID, token string, now time.Time) error {
	result := tx.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ? AND session_token IS NULL", paymentID).
		Updates(map[string]interface{}{
			"external_id":   externalID,
			"session_token": token,
			"updated_at":    now,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
