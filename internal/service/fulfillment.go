package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"zawawiya-store/internal/event"
	"zawawiya-store/internal/model"
	"zawawiya-store/internal/repository"

	"gorm.io/gorm"
)

type fulfillment struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

// complete moves a shipped order to COMPLETED and books the sale against
// sold and stock counters. The status write is conditional, so a retried or
// concurrent call gets gorm.ErrRecordNotFound and books nothing.
func (f *fulfillment) complete(ctx context.Context, tx *gorm.DB, orderID uint, now time.Time) error {
	if err := f.orderRepo.UpdateStatus(ctx, tx, orderID, model.OrderShipped, model.OrderCompleted, now); err != nil {
		return err
	}

	items, err := f.orderRepo.GetOrderItems(ctx, tx, orderID)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := f.productRepo.IncrementSold(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
		if item.VariantID != nil {
			err = f.productRepo.DecrementVariantStock(ctx, tx, *item.VariantID, item.Quantity)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// the variant was replaced after the order was placed
				err = f.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity)
			}
		} else {
			err = f.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func orderPayload(order *model.Order) event.OrderPayload {
	p := event.OrderPayload{
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  string(order.Status),
		Total:   order.Total,
	}
	if order.Payment != nil {
		p.PaymentStatus = string(order.Payment.Status)
	}
	return p
}

func orderKey(orderID uint) string {
	return strconv.FormatUint(uint64(orderID), 10)
}
