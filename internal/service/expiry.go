package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zawawiya-store/internal/clock"
	"zawawiya-store/internal/event"
	"zawawiya-store/internal/metrics"
	"zawawiya-store/internal/model"
	"zawawiya-store/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExpiryService flips overdue waiting payments to KADALUARSA and cancels
// their orders. It runs lazily before buyer reads and, optionally, on a
// timer.
type ExpiryService interface {
	ExpireForUser(ctx context.Context, userID uint) (int, error)
	ExpireAll(ctx context.Context) (int, error)
	RunSweeper(ctx context.Context, interval time.Duration)
}

type expiryServiceImpl struct {
	db          *gorm.DB
	clock       clock.Clock
	log         *zap.Logger
	publisher   event.Publisher
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
}

func NewExpiryService(
	db *gorm.DB,
	clk clock.Clock,
	log *zap.Logger,
	publisher event.Publisher,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
) ExpiryService {
	return &expiryServiceImpl{
		db:          db,
		clock:       clk,
		log:         log,
		publisher:   publisher,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
	}
}

func (s *expiryServiceImpl) ExpireForUser(ctx context.Context, userID uint) (int, error) {
	return s.expire(ctx, &userID)
}

func (s *expiryServiceImpl) ExpireAll(ctx context.Context) (int, error) {
	return s.expire(ctx, nil)
}

func (s *expiryServiceImpl) expire(ctx context.Context, userID *uint) (int, error) {
	now := s.clock.Now()
	payments, err := s.paymentRepo.FindOverdue(ctx, s.db, userID, now)
	if err != nil {
		return 0, fmt.Errorf("find overdue payments: %w", err)
	}

	expired := 0
	for _, p := range payments {
		orderCancelled := false
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.paymentRepo.UpdateStatus(ctx, tx, p.ID, model.PaymentWaiting, model.PaymentExpired, now, nil); err != nil {
				return err
			}

			err := s.orderRepo.UpdateStatus(ctx, tx, p.OrderID, model.OrderAwaitingPayment, model.OrderCancelled, now)
			switch {
			case err == nil:
				orderCancelled = true
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}

			return nil
		})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// a webhook or another reader got there first
			continue
		}
		if err != nil {
			return expired, fmt.Errorf("expire payment %d: %w", p.ID, err)
		}

		expired++
		metrics.RecordPaymentTransition("expiry", string(model.PaymentExpired))
		if orderCancelled {
			s.publisher.Publish(ctx, event.OrderCancelled, orderKey(p.OrderID), event.OrderPayload{
				OrderID:       p.OrderID,
				Status:        string(model.OrderCancelled),
				PaymentStatus: string(model.PaymentExpired),
				Total:         p.Amount,
			})
		}
		s.log.Info("payment expired",
			zap.Uint("payment_id", p.ID),
			zap.Uint("order_id", p.OrderID),
			zap.Bool("order_cancelled", orderCancelled),
		)
	}

	return expired, nil
}

func (s *expiryServiceImpl) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("expiry sweeper started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.ExpireAll(ctx); err != nil {
				s.log.Error("expiry sweep failed", zap.Error(err))
			}
		}
	}
}
