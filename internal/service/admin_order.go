package service

import (
	"context"
	"fmt"
	"strings"
	"time"

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

type AdminOrderService interface {
	List(ctx context.Context, filter *dto.AdminOrderFilter) ([]*model.Order, error)
	Get(ctx context.Context, orderID uint) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID uint, req *dto.UpdateOrderStatusRequest) (*model.Order, error)
}

type adminOrderServiceImpl struct {
	db           *gorm.DB
	clock        clock.Clock
	log          *zap.Logger
	publisher    event.Publisher
	fulfillment  *fulfillment
	orderRepo    repository.OrderRepository
	paymentRepo  repository.PaymentRepository
	shipmentRepo repository.ShipmentRepository
}

func NewAdminOrderService(
	db *gorm.DB,
	clk clock.Clock,
	log *zap.Logger,
	publisher event.Publisher,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	shipmentRepo repository.ShipmentRepository,
	productRepo repository.ProductRepository,
) AdminOrderService {
	return &adminOrderServiceImpl{
		db:           db,
		clock:        clk,
		log:          log,
		publisher:    publisher,
		fulfillment:  &fulfillment{orderRepo: orderRepo, productRepo: productRepo},
		orderRepo:    orderRepo,
		paymentRepo:  paymentRepo,
		shipmentRepo: shipmentRepo,
	}
}

func (s *adminOrderServiceImpl) List(ctx context.Context, filter *dto.AdminOrderFilter) ([]*model.Order, error) {
	id, ok := parseIDQuery(filter.Query)
	if !ok {
		return []*model.Order{}, nil
	}

	f := repository.OrderFilter{ID: id}
	if filter.Status != "" {
		status, ok := model.ParseOrderStatus(strings.ToUpper(filter.Status))
		if !ok {
			return nil, apperror.InvalidRequest("unknown order status")
		}
		f.Status = status
	}

	from, to, err := parseDayRange(filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	f.From, f.To = from, to

	orders, err := s.orderRepo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return orders, nil
}

func (s *adminOrderServiceImpl) Get(ctx context.Context, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, lookupErr(err, "order not found")
	}

	return order, nil
}

// UpdateStatus moves an order along the lattice. Asking for the current
// status only updates the tracking number. Moving an unpaid order to
// PROCESSING records its open payment as settled, the same way a settlement
// notification would.
func (s *adminOrderServiceImpl) UpdateStatus(ctx context.Context, orderID uint, req *dto.UpdateOrderStatusRequest) (*model.Order, error) {
	target, ok := model.ParseOrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !ok {
		return nil, apperror.InvalidRequest("unknown order status")
	}
	tracking := strings.TrimSpace(req.TrackingNumber)

	var (
		from          model.OrderStatus
		paymentStatus model.PaymentStatus
	)
	now := s.clock.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByID(ctx, tx, orderID)
		if err != nil {
			return lookupErr(err, "order not found")
		}
		from = order.Status

		if from != target {
			if !from.CanTransition(target) {
				return apperror.InvalidRequest(fmt.Sprintf("cannot change order status from %s to %s", from, target))
			}

			if target == model.OrderCompleted {
				err = s.fulfillment.complete(ctx, tx, order.ID, now)
			} else {
				err = s.orderRepo.UpdateStatus(ctx, tx, order.ID, from, target, now)
			}
			if err != nil {
				return raceErr(err, "order status changed, please reload")
			}

			paymentStatus, err = s.settlePayment(ctx, tx, order, target, now)
			if err != nil {
				return err
			}
		}

		if tracking != "" {
			if err := s.shipmentRepo.SetTrackingNumber(ctx, tx, order.ID, tracking, now); err != nil {
				return fmt.Errorf("set tracking number: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, lookupErr(err, "order not found")
	}

	if paymentStatus != "" {
		metrics.RecordPaymentTransition("admin", string(paymentStatus))
	}
	if from != target {
		switch target {
		case model.OrderProcessing:
			if paymentStatus == model.PaymentSucceeded {
				s.publisher.Publish(ctx, event.OrderPaid, orderKey(order.ID), orderPayload(order))
			}
		case model.OrderCompleted:
			s.publisher.Publish(ctx, event.OrderCompleted, orderKey(order.ID), orderPayload(order))
		case model.OrderCancelled:
			s.publisher.Publish(ctx, event.OrderCancelled, orderKey(order.ID), orderPayload(order))
		}
		s.log.Info("order status updated by admin",
			zap.Uint("order_id", order.ID),
			zap.String("from", string(from)),
			zap.String("to", string(target)),
		)
	}

	return order, nil
}

// settlePayment keeps the payment in step with an admin order move. It
// returns the payment status it wrote, or "" when the payment was left alone.
func (s *adminOrderServiceImpl) settlePayment(ctx context.Context, tx *gorm.DB, order *model.Order, target model.OrderStatus, now time.Time) (model.PaymentStatus, error) {
	p := order.Payment
	if p == nil {
		return "", nil
	}

	var (
		to     model.PaymentStatus
		fields map[string]interface{}
	)
	switch {
	case target == model.OrderCancelled && p.Status.CanTransition(model.PaymentCancelled):
		to = model.PaymentCancelled
	case target == model.OrderProcessing && order.Status == model.OrderAwaitingPayment:
		if !p.Status.CanTransition(model.PaymentSucceeded) {
			return "", apperror.InvalidRequest(fmt.Sprintf("payment with status %s cannot be confirmed", p.Status))
		}
		to = model.PaymentSucceeded
		fields = map[string]interface{}{"paid_at": now}
	default:
		return "", nil
	}

	if err := s.paymentRepo.UpdateStatus(ctx, tx, p.ID, p.Status, to, now, fields); err != nil {
		return "", raceErr(err, "payment status changed, please reload")
	}
	return to, nil
}
