package service

import (
	"context"
	"fmt"

	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/model"
	"zawawiya-store/internal/repository"

	"gorm.io/gorm"
)

type AddressService interface {
	List(ctx context.Context, userID uint) ([]*model.Address, error)
	Create(ctx context.Context, userID uint, req *dto.AddressRequest) (*model.Address, error)
	Update(ctx context.Context, userID, addressID uint, req *dto.AddressRequest) (*model.Address, error)
	Delete(ctx context.Context, userID, addressID uint) error
}

type addressServiceImpl struct {
	db          *gorm.DB
	addressRepo repository.AddressRepository
}

func NewAddressService(db *gorm.DB, addressRepo repository.AddressRepository) AddressService {
	return &addressServiceImpl{db: db, addressRepo: addressRepo}
}

func applyAddress(a *model.Address, req *dto.AddressRequest) {
	a.Label = req.Label
	a.RecipientName = req.RecipientName
	a.Phone = req.Phone
	a.Province = req.Province
	a.City = req.City
	a.District = req.District
	a.Village = req.Village
	a.PostalCode = req.PostalCode
	a.Street = req.Street
	a.Latitude = req.Latitude
	a.Longitude = req.Longitude
	a.MapsURL = req.MapsURL
	a.IsPrimary = req.IsPrimary
}

func (s *addressServiceImpl) List(ctx context.Context, userID uint) ([]*model.Address, error) {
	addresses, err := s.addressRepo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}

	return addresses, nil
}

// Create stores a new address. The first address of a user becomes primary.
func (s *addressServiceImpl) Create(ctx context.Context, userID uint, req *dto.AddressRequest) (*model.Address, error) {
	address := &model.Address{UserID: userID}
	applyAddress(address, req)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.addressRepo.ListByUser(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("list addresses: %w", err)
		}
		if len(existing) == 0 {
			address.IsPrimary = true
		}

		if err := s.addressRepo.Create(ctx, tx, address); err != nil {
			return fmt.Errorf("create address: %w", err)
		}
		if address.IsPrimary {
			return s.addressRepo.ClearPrimary(ctx, tx, userID, address.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return address, nil
}

func (s *addressServiceImpl) Update(ctx context.Context, userID, addressID uint, req *dto.AddressRequest) (*model.Address, error) {
	var address *model.Address
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		address, err = s.addressRepo.FindForUser(ctx, tx, addressID, userID)
		if err != nil {
			return lookupErr(err, "address not found")
		}

		applyAddress(address, req)
		if err := s.addressRepo.Save(ctx, tx, address); err != nil {
			return fmt.Errorf("save address: %w", err)
		}
		if address.IsPrimary {
			return s.addressRepo.ClearPrimary(ctx, tx, userID, address.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return address, nil
}

func (s *addressServiceImpl) Delete(ctx context.Context, userID, addressID uint) error {
	if err := s.addressRepo.Delete(ctx, s.db, addressID, userID); err != nil {
		return lookupErr(err, "address not found")
	}

	return nil
}
