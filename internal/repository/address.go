package repository

import (
	"context"

	"zawawiya-store/internal/model"

	"gorm.io/gorm"
)

type AddressRepository interface {
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*model.Address, error)
	FindForUser(ctx context.Context, tx *gorm.DB, addressID, userID uint) (*model.Address, error)
	Create(ctx context.Context, tx *gorm.DB, address *model.Address) error
	Save(ctx context.Context, tx *gorm.DB, address *model.Address) error
	ClearPrimary(ctx context.Context, tx *gorm.DB, userID, exceptID uint) error
	Delete(ctx context.Context, tx *gorm.DB, addressID, userID uint) error
}

type addressRepoImpl struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepoImpl{db: db}
}

// ListByUser returns the primary address first, then the most recently
// updated ones.
func (r *addressRepoImpl) ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*model.Address, error) {
	var addresses []*model.Address
	err := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_primary DESC").
		Order("updated_at DESC").
		Order("id DESC").
		Find(&addresses).Error

	if err != nil {
		return nil, err
	}

	return addresses, nil
}

func (r *addressRepoImpl) FindForUser(ctx context.Context, tx *gorm.DB, addressID, userID uint) (*model.Address, error) {
	var address model.Address
	err := tx.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		First(&address).Error

	if err != nil {
		return nil, err
	}

	return &address, nil
}

func (r *addressRepoImpl) Create(ctx context.Context, tx *gorm.DB, address *model.Address) error {
	return tx.WithContext(ctx).Create(address).Error
}

func (r *addressRepoImpl) Save(ctx context.Context, tx *gorm.DB, address *model.Address) error {
	return tx.WithContext(ctx).Save(address).Error
}

func (r *addressRepoImpl) ClearPrimary(ctx context.Context, tx *gorm.DB, userID, exceptID uint) error {
	return tx.WithContext(ctx).Model(&model.Address{}).
		Where("user_id = ? AND id <> ? AND is_primary = ?", userID, exceptID, true).
		Update("is_primary", false).Error
}

func (r *addressRepoImpl) Delete(ctx context.Context, tx *gorm.DB, addressID, userID uint) error {
	result := tx.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		Delete(&model.Address{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
