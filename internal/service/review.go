package service

import (
	"context"
	"fmt"
	"strings"

	"zawawiya-store/internal/apperror"
	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/model"
	"zawawiya-store/internal/repository"

	"gorm.io/gorm"
)

type ReviewService interface {
	Create(ctx context.Context, userID, orderID uint, req *dto.CreateReviewRequest) ([]*model.Review, error)
	ListMine(ctx context.Context, userID uint) ([]*model.Review, error)
	ListForProduct(ctx context.Context, productID uint) ([]*model.Review, error)
	Delete(ctx context.Context, userID, reviewID uint) error
}

type reviewServiceImpl struct {
	db         *gorm.DB
	orderRepo  repository.OrderRepository
	userRepo   repository.UserRepository
	reviewRepo repository.ReviewRepository
}

func NewReviewService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	reviewRepo repository.ReviewRepository,
) ReviewService {
	return &reviewServiceImpl{
		db:         db,
		orderRepo:  orderRepo,
		userRepo:   userRepo,
		reviewRepo: reviewRepo,
	}
}

// Create reviews products of a completed order. A user reviews a product
// once, whichever order it came from.
func (s *reviewServiceImpl) Create(ctx context.Context, userID, orderID uint, req *dto.CreateReviewRequest) ([]*model.Review, error) {
	if len(req.Items) == 0 {
		return nil, apperror.InvalidRequest("at least one item must be reviewed")
	}

	var reviews []*model.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindForUser(ctx, tx, orderID, userID)
		if err != nil {
			return lookupErr(err, "order not found")
		}
		if order.Status != model.OrderCompleted {
			return apperror.InvalidRequest("only completed orders can be reviewed")
		}

		user, err := s.userRepo.FindByID(ctx, tx, userID)
		if err != nil {
			return lookupErr(err, "user not found")
		}

		lines := make(map[uint]model.OrderItem, len(order.Items))
		for _, it := range order.Items {
			lines[it.ID] = it
		}

		seen := make(map[uint]bool)
		productIDs := make([]uint, 0, len(req.Items))
		for _, ri := range req.Items {
			line, ok := lines[ri.ItemID]
			if !ok {
				return apperror.InvalidRequest(fmt.Sprintf("item %d does not belong to this order", ri.ItemID))
			}
			if ri.Rating < 1 || ri.Rating > 5 {
				return apperror.InvalidRequest("rating must be between 1 and 5")
			}
			if seen[line.ProductID] {
				return apperror.Conflict("a product can only be reviewed once")
			}
			seen[line.ProductID] = true
			productIDs = append(productIDs, line.ProductID)

			r := &model.Review{
				UserID:        userID,
				ProductID:     line.ProductID,
				OrderID:       order.ID,
				Rating:        ri.Rating,
				ReviewerName:  user.DisplayName(),
				ReviewerEmail: user.Email,
			}
			if c := strings.TrimSpace(ri.Comment); c != "" {
				r.Comment = &c
			}
			reviews = append(reviews, r)
		}

		existing, err := s.reviewRepo.ExistingProductIDs(ctx, tx, userID, productIDs)
		if err != nil {
			return fmt.Errorf("check existing reviews: %w", err)
		}
		if len(existing) > 0 {
			return apperror.Conflict("you already reviewed this product")
		}

		if err := s.reviewRepo.CreateMany(ctx, tx, reviews); err != nil {
			if isDuplicate(err) {
				return apperror.Conflict("you already reviewed this product")
			}
			return fmt.Errorf("create reviews: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return reviews, nil
}

func (s *reviewServiceImpl) ListMine(ctx context.Context, userID uint) ([]*model.Review, error) {
	reviews, err := s.reviewRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, nil
}

func (s *reviewServiceImpl) ListForProduct(ctx context.Context, productID uint) ([]*model.Review, error) {
	reviews, err := s.reviewRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, nil
}

func (s *reviewServiceImpl) Delete(ctx context.Context, userID, reviewID uint) error {
	if err := s.reviewRepo.Delete(ctx, reviewID, userID); err != nil {
		return lookupErr(err, "review not found")
	}

	return nil
}
