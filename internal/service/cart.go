package service

import (
	"context"
	"errors"
	"fmt"

	"zawawiya-store/internal/apperror"
	"zawawiya-store/internal/clock"
	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/model"
	"zawawiya-store/internal/repository"

	"gorm.io/gorm"
)

type CartService interface {
	Get(ctx context.Context, userID uint) (*model.Cart, error)
	AddItem(ctx context.Context, userID uint, req *dto.AddCartItemRequest) (*model.CartItem, error)
	UpdateItem(ctx context.Context, userID, itemID uint, req *dto.UpdateCartItemRequest) error
	RemoveItem(ctx context.Context, userID, itemID uint) error
}

type cartServiceImpl struct {
	db          *gorm.DB
	clock       clock.Clock
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(db *gorm.DB, clk clock.Clock, cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartServiceImpl{
		db:          db,
		clock:       clk,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartServiceImpl) Get(ctx context.Context, userID uint) (*model.Cart, error) {
	cart, err := s.cartRepo.GetWithItems(ctx, s.db, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.Cart{UserID: userID, Active: true, Items: []model.CartItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return cart, nil
}

func (s *cartServiceImpl) AddItem(ctx context.Context, userID uint, req *dto.AddCartItemRequest) (*model.CartItem, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, apperror.InvalidRequest("quantity must be at least 1")
	}

	var item *model.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.FindByID(ctx, tx, req.ProductID)
		if err != nil {
			return lookupErr(err, "product not found")
		}
		if !product.Active {
			return apperror.NotFound("product not found")
		}
		if req.VariantID != nil {
			if _, err := s.productRepo.FindVariant(ctx, tx, product.ID, *req.VariantID); err != nil {
				return lookupErr(err, "variant not found for this product")
			}
		}

		cart, err := s.cartRepo.GetOrCreateActive(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("get cart: %w", err)
		}

		item, err = s.cartRepo.AddOrMerge(ctx, tx, cart.ID, product.ID, req.VariantID, quantity, s.clock.Now())
		if err != nil {
			return fmt.Errorf("add cart item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (s *cartServiceImpl) UpdateItem(ctx context.Context, userID, itemID uint, req *dto.UpdateCartItemRequest) error {
	if req.Quantity < 1 {
		return apperror.InvalidRequest("quantity must be at least 1")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.FindActive(ctx, tx, userID)
		if err != nil {
			return lookupErr(err, "cart item not found")
		}
		if err := s.cartRepo.UpdateItemQuantity(ctx, tx, cart.ID, itemID, req.Quantity, s.clock.Now()); err != nil {
			return lookupErr(err, "cart item not found")
		}
		return nil
	})
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, userID, itemID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.FindActive(ctx, tx, userID)
		if err != nil {
			return lookupErr(err, "cart item not found")
		}
		if err := s.cartRepo.DeleteItem(ctx, tx, cart.ID, itemID); err != nil {
			return lookupErr(err, "cart item not found")
		}
		return nil
	})
}
