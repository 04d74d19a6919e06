package repository

import (
	"context"
	"errors"
	"time"

	"zawawiya-store/internal/model"

	"gorm.io/gorm"
)

type CartRepository interface {
	FindActive(ctx context.Context, tx *gorm.DB, userID uint) (*model.Cart, error)
	GetOrCreateActive(ctx context.Context, tx *gorm.DB, userID uint) (*model.Cart, error)
	GetWithItems(ctx context.Context, tx *gorm.DB, userID uint) (*model.Cart, error)
	FindItems(ctx context.Context, tx *gorm.DB, cartID uint, itemIDs []uint) ([]*model.CartItem, error)
	FindItem(ctx context.Context, tx *gorm.DB, cartID, itemID uint) (*model.CartItem, error)
	AddOrMerge(ctx context.Context, tx *gorm.DB, cartID, productID uint, variantID *uint, quantity int64, now time.Time) (*model.CartItem, error)
	UpdateItemQuantity(ctx context.Context, tx *gorm.DB, cartID, itemID uint, quantity int64, now time.Time) error
	DeleteItem(ctx context.Context, tx *gorm.DB, cartID, itemID uint) error
	DeleteItems(ctx context.Context, tx *gorm.DB, cartID uint, itemIDs []uint) (int64, error)
	DeleteByVariantIDs(ctx context.Context, tx *gorm.DB, variantIDs []uint) error
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{db: db}
}

func (r *cartRepoImpl) FindActive(ctx context.Context, tx *gorm.DB, userID uint) (*model.Cart, error) {
	var cart model.Cart
	err := tx.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Order("id ASC").
		First(&cart).Error

	if err != nil {
		return nil, err
	}

	return &cart, nil
}

func (r *cartRepoImpl) GetOrCreateActive(ctx context.Context, tx *gorm.DB, userID uint) (*model.Cart, error) {
	cart, err := r.FindActive(ctx, tx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = &model.Cart{UserID: userID, Active: true}
	if err := tx.WithContext(ctx).Omit("Items").Create(cart).Error; err != nil {
		return nil, err
	}

	return cart, nil
}

func (r *cartRepoImpl) GetWithItems(ctx context.Context, tx *gorm.DB, userID uint) (*model.Cart, error) {
	var cart model.Cart
	err := tx.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id ASC") }).
		Preload("Items.Product").
		Preload("Items.Variant").
		Where("user_id = ? AND active = ?", userID, true).
		Order("id ASC").
		First(&cart).Error

	if err != nil {
		return nil, err
	}

	return &cart, nil
}

// FindItems loads the requested lines of one cart. IDs that belong to
// another cart are silently left out.
func (r *cartRepoImpl) FindItems(ctx context.Context, tx *gorm.DB, cartID uint, itemIDs []uint) ([]*model.CartItem, error) {
	var items []*model.CartItem
	if len(itemIDs) == 0 {
		return items, nil
	}

	err := tx.WithContext(ctx).
		Preload("Product").
		Preload("Variant").
		Where("cart_id = ? AND id IN ?", cartID, itemIDs).
		Order("id ASC").
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *cartRepoImpl) FindItem(ctx context.Context, tx *gorm.DB, cartID, itemID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := tx.WithContext(ctx).
		Where("cart_id = ? AND id = ?", cartID, itemID).
		First(&item).Error

	if err != nil {
		return nil, err
	}

	return &item, nil
}

// AddOrMerge adds quantity to the line keyed by (product, variant), creating
// the line if it does not exist yet.
func (r *cartRepoImpl) AddOrMerge(ctx context.Context, tx *gorm.DB, cartID, productID uint, variantID *uint, quantity int64, now time.Time) (*model.CartItem, error) {
	db := tx.WithContext(ctx)

	q := db.Where("cart_id = ? AND product_id = ?", cartID, productID)
	if variantID == nil {
		q = q.Where("variant_id IS NULL")
	} else {
		q = q.Where("variant_id = ?", *variantID)
	}

	var item model.CartItem
	err := q.First(&item).Error
	switch {
	case err == nil:
		item.Quantity += quantity
		err = db.Model(&model.CartItem{}).
			Where("id = ?", item.ID).
			Updates(map[string]interface{}{
				"quantity":   item.Quantity,
				"updated_at": now,
			}).Error
		if err != nil {
			return nil, err
		}
		return &item, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = model.CartItem{
			CartID:    cartID,
			ProductID: productID,
			VariantID: variantID,
			Quantity:  quantity,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := db.Omit("Product", "Variant").Create(&item).Error; err != nil {
			return nil, err
		}
		return &item, nil
	default:
		return nil, err
	}
}

func (r *cartRepoImpl) UpdateItemQuantity(ctx context.Context, tx *gorm.DB, cartID, itemID uint, quantity int64, now time.Time) error {
	result := tx.WithContext(ctx).Model(&model.CartItem{}).
		Where("cart_id = ? AND id = ?", cartID, itemID).
		Updates(map[string]interface{}{
			"quantity":   quantity,
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

func (r *cartRepoImpl) DeleteItem(ctx context.Context, tx *gorm.DB, cartID, itemID uint) error {
	result := tx.WithContext(ctx).
		Where("cart_id = ? AND id = ?", cartID, itemID).
		Delete(&model.CartItem{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *cartRepoImpl) DeleteItems(ctx context.Context, tx *gorm.DB, cartID uint, itemIDs []uint) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}

	result := tx.WithContext(ctx).
		Where("cart_id = ? AND id IN ?", cartID, itemIDs).
		Delete(&model.CartItem{})

	return result.RowsAffected, result.Error
}

// DeleteByVariantIDs drops cart lines that point at variants being removed.
func (r *cartRepoImpl) DeleteByVariantIDs(ctx context.Context, tx *gorm.DB, variantIDs []uint) error {
	if len(variantIDs) == 0 {
		return nil
	}

	return tx.WithContext(ctx).
		Where("variant_id IN ?", variantIDs).
		Delete(&model.CartItem{}).Error
}
