package repository

import (
	"context"
	"time"

	"zawawiya-store/internal/model"

	"gorm.io/gorm"
)

type ReturnFilter struct {
	Query  uint
	Status model.ReturnStatus
	Kind   model.ReturnKind
	From   *time.Time
	To     *time.Time
}

type ReturnRepository interface {
	Create(ctx context.Context, tx *gorm.DB, ret *model.Return) error
	ExistsForOrder(ctx context.Context, tx *gorm.DB, orderID uint) (bool, error)
	FindByID(ctx context.Context, tx *gorm.DB, returnID uint) (*model.Return, error)
	FindForUser(ctx context.Context, tx *gorm.DB, returnID, userID uint) (*model.Return, error)
	ListByUser(ctx context.Context, userID uint) ([]*model.Return, error)
	List(ctx context.Context, filter ReturnFilter) ([]*model.Return, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, returnID uint, from, to model.ReturnStatus, fields map[string]interface{}) error
	Update(ctx context.Context, tx *gorm.DB, returnID uint, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, returnID uint) error
}

type returnRepoImpl struct {
	db *gorm.DB
}

func NewReturnRepository(db *gorm.DB) ReturnRepository {
	return &returnRepoImpl{db: db}
}

func (r *returnRepoImpl) Create(ctx context.Context, tx *gorm.DB, ret *model.Return) error {
	return tx.WithContext(ctx).Omit("User", "Order").Create(ret).Error
}

func (r *returnRepoImpl) ExistsForOrder(ctx context.Context, tx *gorm.DB, orderID uint) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Return{}).
		Where("order_id = ?", orderID).
		Count(&count).Error

	return count > 0, err
}

func (r *returnRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, returnID uint) (*model.Return, error) {
	var ret model.Return
	err := tx.WithContext(ctx).
		Preload("User").
		Preload("Order").
		Preload("Order.Items").
		Where("id = ?", returnID).
		First(&ret).Error

	if err != nil {
		return nil, err
	}

	return &ret, nil
}

func (r *returnRepoImpl) FindForUser(ctx context.Context, tx *gorm.DB, returnID, userID uint) (*model.Return, error) {
	var ret model.Return
	err := tx.WithContext(ctx).
		Preload("Order").
		Preload("Order.Items").
		Where("id = ? AND user_id = ?", returnID, userID).
		First(&ret).Error

	if err != nil {
		return nil, err
	}

	return &ret, nil
}

func (r *returnRepoImpl) ListByUser(ctx context.Context, userID uint) ([]*model.Return, error) {
	var returns []*model.Return
	err := r.db.WithContext(ctx).
		Preload("Order").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&returns).Error

	if err != nil {
		return nil, err
	}

	return returns, nil
}

func (r *returnRepoImpl) List(ctx context.Context, filter ReturnFilter) ([]*model.Return, error) {
	q := r.db.WithContext(ctx).
		Preload("User").
		Preload("Order")

	if filter.Query != 0 {
		q = q.Where("id = ? OR order_id = ?", filter.Query, filter.Query)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}

	var returns []*model.Return
	if err := q.Order("created_at DESC").Order("id DESC").Find(&returns).Error; err != nil {
		return nil, err
	}

	return returns, nil
}

// UpdateStatus moves the return only while it is still in from.
func (r *returnRepoImpl) UpdateStatus(ctx context.Context, tx *gorm.DB, returnID uint, from, to model.ReturnStatus, fields map[string]interface{}) error {
	values := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range fields {
		values[k] = v
	}

	result := tx.WithContext(ctx).Model(&model.Return{}).
		Where("id = ? AND status = ?", returnID, from).
		Updates(values)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *returnRepoImpl) Update(ctx context.Context, tx *gorm.DB, returnID uint, fields map[string]interface{}) error {
	values := map[string]interface{}{"updated_at": time.Now()}
	for k, v := range fields {
		values[k] = v
	}

	return tx.WithContext(ctx).Model(&model.Return{}).
		Where("id = ?", returnID).
		Updates(values).Error
}

func (r *returnRepoImpl) Delete(ctx context.Context, tx *gorm.DB, returnID uint) error {
	result := tx.WithContext(ctx).Where("id = ?", returnID).Delete(&model.Return{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
