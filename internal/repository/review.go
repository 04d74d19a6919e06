package repository

import (
	"context"

	"zawawiya-store/internal/model"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	CreateMany(ctx context.Context, tx *gorm.DB, reviews []*model.Review) error
	ExistingProductIDs(ctx context.Context, tx *gorm.DB, userID uint, productIDs []uint) ([]uint, error)
	ReviewedOrderIDs(ctx context.Context, userID uint, orderIDs []uint) (map[uint]bool, error)
	ListByUser(ctx context.Context, userID uint) ([]*model.Review, error)
	ListByProduct(ctx context.Context, productID uint) ([]*model.Review, error)
	Delete(ctx context.Context, reviewID, userID uint) error
}

type reviewRepoImpl struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepoImpl{db: db}
}

func (r *reviewRepoImpl) CreateMany(ctx context.Context, tx *gorm.DB, reviews []*model.Review) error {
	return tx.WithContext(ctx).Omit("Product").Create(reviews).Error
}

func (r *reviewRepoImpl) ExistingProductIDs(ctx context.Context, tx *gorm.DB, userID uint, productIDs []uint) ([]uint, error) {
	var ids []uint
	if len(productIDs) == 0 {
		return ids, nil
	}

	err := tx.WithContext(ctx).Model(&model.Review{}).
		Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Pluck("product_id", &ids).Error

	return ids, err
}

func (r *reviewRepoImpl) ReviewedOrderIDs(ctx context.Context, userID uint, orderIDs []uint) (map[uint]bool, error) {
	reviewed := make(map[uint]bool)
	if len(orderIDs) == 0 {
		return reviewed, nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("user_id = ? AND order_id IN ?", userID, orderIDs).
		Distinct().
		Pluck("order_id", &ids).Error
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		reviewed[id] = true
	}

	return reviewed, nil
}

func (r *reviewRepoImpl) ListByUser(ctx context.Context, userID uint) ([]*model.Review, error) {
	var reviews []*model.Review
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&reviews).Error

	if err != nil {
		return nil, err
	}

	return reviews, nil
}

func (r *reviewRepoImpl) ListByProduct(ctx context.Context, productID uint) ([]*model.Review, error) {
	var reviews []*model.Review
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&reviews).Error

	if err != nil {
		return nil, err
	}

	return reviews, nil
}

func (r *reviewRepoImpl) Delete(ctx context.Context, reviewID, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", reviewID, userID).
		Delete(&model.Review{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
