package service

import (
	"context"
	"fmt"

	"zawawiya-store/internal/model"
	"zawawiya-store/internal/repository"

	"gorm.io/gorm"
)

type ShippingService interface {
	List(ctx context.Context) ([]*model.ShippingService, error)
}

type shippingServiceImpl struct {
	db           *gorm.DB
	shippingRepo repository.ShippingRepository
}

func NewShippingService(db *gorm.DB, shippingRepo repository.ShippingRepository) ShippingService {
	return &shippingServiceImpl{db: db, shippingRepo: shippingRepo}
}

func (s *shippingServiceImpl) List(ctx context.Context) ([]*model.ShippingService, error) {
	services, err := s.shippingRepo.ListActive(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("list shipping services: %w", err)
	}

	return services, nil
}
