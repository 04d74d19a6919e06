package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"zawawiya-store/internal/apperror"
	"zawawiya-store/internal/client"
	"zawawiya-store/internal/clock"
	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/event"
	"zawawiya-store/internal/metrics"
	"zawawiya-store/internal/model"
	"zawawiya-store/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const externalIDPrefix = "ORDER-"

type PaymentService interface {
	CreateSession(ctx context.Context, userID, orderID uint) (*dto.PaySessionResponse, error)
	HandleNotification(ctx context.Context, n *dto.PaymentNotification) error
}

type paymentServiceImpl struct {
	db               *gorm.DB
	clock            clock.Clock
	log              *zap.Logger
	publisher        event.Publisher
	gateway          client.MidtransClient
	expiry           ExpiryService
	orderRepo        repository.OrderRepository
	paymentRepo      repository.PaymentRepository
	userRepo         repository.UserRepository
	webhookEventRepo repository.WebhookEventRepository
}

func NewPaymentService(
	db *gorm.DB,
	clk clock.Clock,
	log *zap.Logger,
	publisher event.Publisher,
	gateway client.MidtransClient,
	expiry ExpiryService,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	webhookEventRepo repository.WebhookEventRepository,
) PaymentService {
	return &paymentServiceImpl{
		db:               db,
		clock:            clk,
		log:              log,
		publisher:        publisher,
		gateway:          gateway,
		expiry:           expiry,
		orderRepo:        orderRepo,
		paymentRepo:      paymentRepo,
		userRepo:         userRepo,
		webhookEventRepo: webhookEventRepo,
	}
}

// MapTransactionStatus translates a gateway transaction status and fraud
// status into a payment status. ok is false for statuses it does not know.
func MapTransactionStatus(transactionStatus, fraudStatus string) (status model.PaymentStatus, ok bool) {
	fraud := strings.ToLower(strings.TrimSpace(fraudStatus))

	switch strings.ToLower(strings.TrimSpace(transactionStatus)) {
	case "capture":
		switch fraud {
		case "challenge":
			return model.PaymentPending, true
		case "deny":
			return model.PaymentFailed, true
		default:
			return model.PaymentSucceeded, true
		}
	case "settlement":
		return model.PaymentSucceeded, true
	case "pending":
		return model.PaymentWaiting, true
	case "cancel", "deny", "failure":
		return model.PaymentFailed, true
	case "expire":
		return model.PaymentExpired, true
	}

	return "", false
}

func (s *paymentServiceImpl) CreateSession(ctx context.Context, userID, orderID uint) (*dto.PaySessionResponse, error) {
	if _, err := s.expiry.ExpireForUser(ctx, userID); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindForUser(ctx, s.db, orderID, userID)
	if err != nil {
		return nil, lookupErr(err, "order not found")
	}
	payment := order.Payment
	if payment == nil {
		return nil, apperror.NotFound("payment not found")
	}

	switch {
	case order.Status != model.OrderAwaitingPayment:
		return nil, apperror.InvalidRequest("order is not awaiting payment")
	case payment.Method == model.PaymentMethodCOD:
		return nil, apperror.InvalidRequest("cash on delivery orders are paid to the courier")
	case payment.Status != model.PaymentWaiting:
		return nil, apperror.InvalidRequest("payment is no longer open")
	case payment.Amount <= 0:
		return nil, apperror.InvalidRequest("nothing to pay for this order")
	}

	if payment.SessionToken != nil && *payment.SessionToken != "" {
		return existingSession(payment), nil
	}

	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, lookupErr(err, "user not found")
	}

	externalID := fmt.Sprintf("%s%d-%d", externalIDPrefix, order.ID, s.clock.Now().UnixMilli())
	resp, err := s.gateway.CreateSession(ctx, &client.SessionRequest{
		ExternalID:  externalID,
		GrossAmount: payment.Amount,
		Items:       sessionItems(order),
		Customer: client.SessionCustomer{
			FirstName: order.RecipientName,
			Email:     user.Email,
			Phone:     order.Phone,
			ShippingAddress: &client.SessionAddress{
				FirstName:   order.RecipientName,
				Phone:       order.Phone,
				Address:     strings.Join([]string{order.Street, order.Village, order.District}, ", "),
				City:        order.City,
				PostalCode:  order.PostalCode,
				CountryCode: "IDN",
			},
		},
	})
	if err != nil {
		return nil, apperror.Upstream("payment gateway is unavailable, please try again", err)
	}

	err = s.paymentRepo.SetSession(ctx, s.db, payment.ID, externalID, resp.Token, s.clock.Now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// a concurrent request stored its session first
		current, err := s.paymentRepo.FindByOrderID(ctx, s.db, order.ID)
		if err != nil {
			return nil, lookupErr(err, "payment not found")
		}
		return existingSession(current), nil
	}
	if err != nil {
		return nil, fmt.Errorf("store payment session: %w", err)
	}

	return &dto.PaySessionResponse{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
		ExternalID:  externalID,
	}, nil
}

func existingSession(p *model.Payment) *dto.PaySessionResponse {
	resp := &dto.PaySessionResponse{}
	if p.SessionToken != nil {
		resp.Token = *p.SessionToken
	}
	if p.ExternalID != nil {
		resp.ExternalID = *p.ExternalID
	}
	return resp
}

// sessionItems lists the order lines plus shipping and voucher adjustments,
// so the items add up to the order total.
func sessionItems(order *model.Order) []client.SessionItem {
	items := make([]client.SessionItem, 0, len(order.Items)+2)
	for _, it := range order.Items {
		id := fmt.Sprintf("P%d", it.ProductID)
		if it.VariantID != nil {
			id = fmt.Sprintf("P%d-V%d", it.ProductID, *it.VariantID)
		}
		items = append(items, client.SessionItem{
			ID:       id,
			Name:     truncate(it.ProductName, 50),
			Price:    it.UnitPrice,
			Quantity: it.Quantity,
		})
	}
	if order.ShippingFee > 0 {
		items = append(items, client.SessionItem{ID: "ONGKIR", Name: "Ongkos Kirim", Price: order.ShippingFee, Quantity: 1})
	}
	if order.Discount > 0 {
		name := "Voucher"
		if order.VoucherCode != nil {
			name += " " + *order.VoucherCode
		}
		items = append(items, client.SessionItem{ID: "VOUCHER", Name: name, Price: -order.Discount, Quantity: 1})
	}
	return items
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// HandleNotification applies one gateway notification. Replays of the same
// (order, transaction status, fraud status) triple are no-ops, and payment
// moves are compare-and-set against the status read in the same
// transaction.
func (s *paymentServiceImpl) HandleNotification(ctx context.Context, n *dto.PaymentNotification) error {
	if !s.gateway.VerifySignature(n.OrderID, n.StatusCode, n.GrossAmount, n.SignatureKey) {
		s.log.Warn("rejected payment notification with bad signature", zap.String("order_id", n.OrderID))
		return apperror.Forbidden("invalid signature")
	}

	target, ok := MapTransactionStatus(n.TransactionStatus, n.FraudStatus)
	if !ok {
		return apperror.InvalidRequest(fmt.Sprintf("unknown transaction status %q", n.TransactionStatus))
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(n.GrossAmount))
	if err != nil {
		return apperror.InvalidRequest("gross_amount is not a number")
	}

	eventID := fmt.Sprintf("%s:%s:%s", n.OrderID, n.TransactionStatus, n.FraudStatus)
	if seen, err := s.webhookEventRepo.Exists(ctx, eventID); err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	} else if seen {
		s.log.Info("duplicate payment notification", zap.String("event_id", eventID))
		return nil
	}
	now := s.clock.Now()

	var (
		applied bool
		from    model.PaymentStatus
		order   *model.Order
	)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.findNotifiedPayment(ctx, tx, n.OrderID)
		if err != nil {
			return err
		}
		if !amount.Equal(decimal.NewFromInt(payment.Amount)) {
			return apperror.InvalidRequest("gross_amount does not match the payment amount")
		}

		fresh, err := s.webhookEventRepo.MarkProcessed(ctx, tx, eventID, n.TransactionStatus)
		if err != nil {
			return fmt.Errorf("record webhook event: %w", err)
		}
		if !fresh {
			s.log.Info("duplicate payment notification", zap.String("event_id", eventID))
			return nil
		}

		from = payment.Status
		if from == target || !from.CanTransition(target) {
			s.log.Info("payment notification does not change state",
				zap.String("event_id", eventID),
				zap.String("current", string(from)),
				zap.String("target", string(target)),
			)
			return nil
		}

		fields := map[string]interface{}{}
		if n.PaymentType != "" {
			fields["payment_type"] = n.PaymentType
		}
		if payment.ExternalID == nil {
			fields["external_id"] = n.OrderID
		}
		if target == model.PaymentSucceeded {
			fields["paid_at"] = now
		}
		if err := s.paymentRepo.UpdateStatus(ctx, tx, payment.ID, from, target, now, fields); err != nil {
			return raceErr(err, "payment changed concurrently")
		}

		var orderTo model.OrderStatus
		switch target {
		case model.PaymentSucceeded:
			orderTo = model.OrderProcessing
		case model.PaymentFailed, model.PaymentExpired:
			orderTo = model.OrderCancelled
		}
		if orderTo != "" {
			err := s.orderRepo.UpdateStatus(ctx, tx, payment.OrderID, model.OrderAwaitingPayment, orderTo, now)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("update order status: %w", err)
			}
		}

		order, err = s.orderRepo.FindByID(ctx, tx, payment.OrderID)
		if err != nil {
			return fmt.Errorf("reload order: %w", err)
		}
		applied = true
		return nil
	})
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	metrics.RecordPaymentTransition("webhook", string(target))
	switch {
	case target == model.PaymentSucceeded:
		s.publisher.Publish(ctx, event.OrderPaid, orderKey(order.ID), orderPayload(order))
	case order.Status == model.OrderCancelled:
		s.publisher.Publish(ctx, event.OrderCancelled, orderKey(order.ID), orderPayload(order))
	}

	s.log.Info("payment notification applied",
		zap.Uint("order_id", order.ID),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
		zap.String("order_status", string(order.Status)),
	)
	return nil
}

// findNotifiedPayment resolves the gateway order id. Payments whose session
// id was never stored are found through the ORDER-{id}- prefix.
func (s *paymentServiceImpl) findNotifiedPayment(ctx context.Context, tx *gorm.DB, externalID string) (*model.Payment, error) {
	payment, err := s.paymentRepo.FindByExternalID(ctx, tx, externalID)
	if err == nil {
		return payment, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find payment: %w", err)
	}

	orderID, ok := orderIDFromExternalID(externalID)
	if !ok {
		return nil, apperror.NotFound("payment not found")
	}

	payment, err = s.paymentRepo.FindByOrderID(ctx, tx, orderID)
	if err != nil {
		return nil, lookupErr(err, "payment not found")
	}
	return payment, nil
}

func orderIDFromExternalID(externalID string) (uint, bool) {
	rest, ok := strings.CutPrefix(externalID, externalIDPrefix)
	if !ok {
		return 0, false
	}
	idPart, _, _ := strings.Cut(rest, "-")

	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
