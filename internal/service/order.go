package service

import (
	"context"
	"fmt"

	"zawawiya-store/internal/apperror"
	"zawawiya-store/internal/clock"
	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/event"
	"zawawiya-store/internal/metrics"
	"zawawiya-store/internal/model"
	"zawawiya-store/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderService interface {
	List(ctx context.Context, userID uint) ([]*dto.OrderView, error)
	Get(ctx context.Context, userID, orderID uint) (*dto.OrderView, error)
	Cancel(ctx context.Context, userID, orderID uint) (*dto.CancelOrderResponse, error)
	ConfirmReceived(ctx context.Context, userID, orderID uint) (*model.Order, error)
}

type orderServiceImpl struct {
	db          *gorm.DB
	clock       clock.Clock
	log         *zap.Logger
	publisher   event.Publisher
	expiry      ExpiryService
	fulfillment *fulfillment
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	cartRepo    repository.CartRepository
	reviewRepo  repository.ReviewRepository
}

func NewOrderService(
	db *gorm.DB,
	clk clock.Clock,
	log *zap.Logger,
	publisher event.Publisher,
	expiry ExpiryService,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	reviewRepo repository.ReviewRepository,
) OrderService {
	return &orderServiceImpl{
		db:          db,
		clock:       clk,
		log:         log,
		publisher:   publisher,
		expiry:      expiry,
		fulfillment: &fulfillment{orderRepo: orderRepo, productRepo: productRepo},
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		cartRepo:    cartRepo,
		reviewRepo:  reviewRepo,
	}
}

func (s *orderServiceImpl) List(ctx context.Context, userID uint) ([]*dto.OrderView, error) {
	if _, err := s.expiry.ExpireForUser(ctx, userID); err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	var completed []uint
	for _, o := range orders {
		if o.Status == model.OrderCompleted {
			completed = append(completed, o.ID)
		}
	}
	reviewed, err := s.reviewRepo.ReviewedOrderIDs(ctx, userID, completed)
	if err != nil {
		return nil, fmt.Errorf("load reviewed orders: %w", err)
	}

	views := make([]*dto.OrderView, len(orders))
	for i, o := range orders {
		views[i] = &dto.OrderView{Order: o, Reviewed: reviewed[o.ID]}
	}

	return views, nil
}

func (s *orderServiceImpl) Get(ctx context.Context, userID, orderID uint) (*dto.OrderView, error) {
	if _, err := s.expiry.ExpireForUser(ctx, userID); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindForUser(ctx, s.db, orderID, userID)
	if err != nil {
		return nil, lookupErr(err, "order not found")
	}

	view := &dto.OrderView{Order: order}
	if order.Status == model.OrderCompleted {
		reviewed, err := s.reviewRepo.ReviewedOrderIDs(ctx, userID, []uint{order.ID})
		if err != nil {
			return nil, fmt.Errorf("load reviewed orders: %w", err)
		}
		view.Reviewed = reviewed[order.ID]
	}

	return view, nil
}

// Cancel deletes an unpaid order and puts its lines back in the cart. An
// order that is already being processed is kept and marked CANCELLED.
func (s *orderServiceImpl) Cancel(ctx context.Context, userID, orderID uint) (*dto.CancelOrderResponse, error) {
	var (
		order   *model.Order
		deleted bool
	)
	now := s.clock.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.orderRepo.FindForUser(ctx, tx, orderID, userID)
		if err != nil {
			return lookupErr(err, "order not found")
		}

		switch order.Status {
		case model.OrderAwaitingPayment:
			// claim the order first so a concurrent payment cannot land on a
			// deleted row
			if err := s.orderRepo.UpdateStatus(ctx, tx, order.ID, model.OrderAwaitingPayment, model.OrderCancelled, now); err != nil {
				return raceErr(err, "order status changed, please reload")
			}

			cart, err := s.cartRepo.GetOrCreateActive(ctx, tx, userID)
			if err != nil {
				return fmt.Errorf("get cart: %w", err)
			}
			for _, item := range order.Items {
				if _, err := s.cartRepo.AddOrMerge(ctx, tx, cart.ID, item.ProductID, item.VariantID, item.Quantity, now); err != nil {
					return fmt.Errorf("restore cart item: %w", err)
				}
			}

			if err := s.orderRepo.Delete(ctx, tx, order.ID); err != nil {
				return fmt.Errorf("delete order: %w", err)
			}
			deleted = true

		case model.OrderProcessing:
			if err := s.orderRepo.UpdateStatus(ctx, tx, order.ID, model.OrderProcessing, model.OrderCancelled, now); err != nil {
				return raceErr(err, "order status changed, please reload")
			}
			order.Status = model.OrderCancelled

			if p := order.Payment; p != nil && p.Status.CanTransition(model.PaymentCancelled) {
				if err := s.paymentRepo.UpdateStatus(ctx, tx, p.ID, p.Status, model.PaymentCancelled, now, nil); err != nil {
					return raceErr(err, "payment status changed, please reload")
				}
				p.Status = model.PaymentCancelled
			}

		default:
			return apperror.InvalidRequest(fmt.Sprintf("order with status %s can no longer be cancelled", order.Status))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if deleted {
		order.Status = model.OrderCancelled
	}
	if order.Payment != nil && order.Payment.Status == model.PaymentCancelled {
		metrics.RecordPaymentTransition("cancel", string(model.PaymentCancelled))
	}
	s.publisher.Publish(ctx, event.OrderCancelled, orderKey(order.ID), orderPayload(order))
	s.log.Info("order cancelled by buyer", zap.Uint("order_id", order.ID), zap.Bool("deleted", deleted))

	if deleted {
		return &dto.CancelOrderResponse{
			Message: "order cancelled, items returned to cart",
			Deleted: true,
		}, nil
	}

	return &dto.CancelOrderResponse{
		Message: "order cancelled",
		Order:   order,
	}, nil
}

func (s *orderServiceImpl) ConfirmReceived(ctx context.Context, userID, orderID uint) (*model.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindForUser(ctx, tx, orderID, userID)
		if err != nil {
			return lookupErr(err, "order not found")
		}
		if order.Status != model.OrderShipped {
			return apperror.InvalidRequest("only shipped orders can be confirmed as received")
		}

		if err := s.fulfillment.complete(ctx, tx, order.ID, s.clock.Now()); err != nil {
			return raceErr(err, "order status changed, please reload")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindForUser(ctx, s.db, orderID, userID)
	if err != nil {
		return nil, lookupErr(err, "order not found")
	}

	s.publisher.Publish(ctx, event.OrderCompleted, orderKey(order.ID), orderPayload(order))
	return order, nil
}
