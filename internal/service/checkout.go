package service

import (
	"context"
	"errors"
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

type CheckoutService interface {
	Summary(ctx context.Context, userID uint) (*dto.CheckoutSummary, error)
	Checkout(ctx context.Context, userID uint, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
}

type checkoutServiceImpl struct {
	db           *gorm.DB
	clock        clock.Clock
	log          *zap.Logger
	publisher    event.Publisher
	orderRepo    repository.OrderRepository
	paymentRepo  repository.PaymentRepository
	shipmentRepo repository.ShipmentRepository
	shippingRepo repository.ShippingRepository
	cartRepo     repository.CartRepository
	addressRepo  repository.AddressRepository
}

func NewCheckoutService(
	db *gorm.DB,
	clk clock.Clock,
	log *zap.Logger,
	publisher event.Publisher,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	shipmentRepo repository.ShipmentRepository,
	shippingRepo repository.ShippingRepository,
	cartRepo repository.CartRepository,
	addressRepo repository.AddressRepository,
) CheckoutService {
	return &checkoutServiceImpl{
		db:           db,
		clock:        clk,
		log:          log,
		publisher:    publisher,
		orderRepo:    orderRepo,
		paymentRepo:  paymentRepo,
		shipmentRepo: shipmentRepo,
		shippingRepo: shippingRepo,
		cartRepo:     cartRepo,
		addressRepo:  addressRepo,
	}
}

func (s *checkoutServiceImpl) Summary(ctx context.Context, userID uint) (*dto.CheckoutSummary, error) {
	addresses, err := s.addressRepo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}

	services, err := s.shippingRepo.ListActive(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("list shipping services: %w", err)
	}

	cart, err := s.cartRepo.GetWithItems(ctx, s.db, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = &model.Cart{UserID: userID, Active: true, Items: []model.CartItem{}}
	} else if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return &dto.CheckoutSummary{
		Addresses:        addresses,
		ShippingServices: services,
		Cart:             cart,
	}, nil
}

// Checkout turns the selected cart lines into an order with its payment and
// shipment. Everything from the first read to the cart cleanup is one
// transaction.
func (s *checkoutServiceImpl) Checkout(ctx context.Context, userID uint, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	method, provider, err := ResolvePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	voucherCode, discount := LookupVoucher(req.VoucherCode)
	now := s.clock.Now()

	var (
		order    *model.Order
		payment  *model.Payment
		shipment *model.Shipment
	)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		address, err := s.addressRepo.FindForUser(ctx, tx, req.AddressID, userID)
		if err != nil {
			return lookupErr(err, "address not found")
		}

		service, err := s.shippingRepo.FindActive(ctx, tx, req.ServiceID)
		if err != nil {
			return lookupErr(err, "shipping service not found")
		}

		cart, err := s.cartRepo.FindActive(ctx, tx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.InvalidRequest("cart is empty")
		}
		if err != nil {
			return fmt.Errorf("find cart: %w", err)
		}

		lines, err := s.cartRepo.FindItems(ctx, tx, cart.ID, req.ItemIDs)
		if err != nil {
			return fmt.Errorf("find cart items: %w", err)
		}
		if len(lines) == 0 {
			return apperror.InvalidRequest("no cart items selected")
		}

		var subtotal int64
		items := make([]model.OrderItem, 0, len(lines))
		lineIDs := make([]uint, 0, len(lines))
		for _, line := range lines {
			if line.Product == nil || !line.Product.Active {
				return apperror.InvalidRequest("a product in the cart is no longer available")
			}
			if line.VariantID != nil && line.Variant == nil {
				return apperror.InvalidRequest("a product variant in the cart is no longer available")
			}

			price := model.EffectivePrice(line.Product, line.Variant)
			subtotal += price * line.Quantity
			items = append(items, model.OrderItem{
				ProductID:   line.ProductID,
				VariantID:   line.VariantID,
				ProductName: line.Product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   price,
			})
			lineIDs = append(lineIDs, line.ID)
		}

		shippingFee := service.Fee()
		total := OrderTotal(subtotal, shippingFee, discount)
		// cash on delivery and fully discounted orders need no gateway payment
		settled := method == model.PaymentMethodCOD || total == 0
		status := model.OrderAwaitingPayment
		if settled {
			status = model.OrderProcessing
		}

		order = &model.Order{
			UserID:        userID,
			Status:        status,
			Subtotal:      subtotal,
			ShippingFee:   shippingFee,
			Discount:      discount,
			Total:         total,
			RecipientName: address.RecipientName,
			Phone:         address.Phone,
			Street:        address.Street,
			Village:       address.Village,
			District:      address.District,
			City:          address.City,
			Province:      address.Province,
			PostalCode:    address.PostalCode,
			Items:         items,
		}
		if discount > 0 {
			order.VoucherCode = &voucherCode
		}
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		shipment = &model.Shipment{
			OrderID:   order.ID,
			ServiceID: service.ID,
			Fee:       shippingFee,
			Service:   service,
		}
		if err := s.shipmentRepo.Create(ctx, tx, shipment); err != nil {
			return fmt.Errorf("create shipment: %w", err)
		}

		payment = &model.Payment{
			OrderID:   order.ID,
			Method:    method,
			Provider:  provider,
			Status:    model.PaymentWaiting,
			Amount:    order.Total,
			ExpiredAt: PaymentExpiry(method, now),
		}
		if settled {
			paidAt := now
			payment.Status = model.PaymentSucceeded
			payment.PaidAt = &paidAt
			payment.ExpiredAt = nil
		}
		if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		deleted, err := s.cartRepo.DeleteItems(ctx, tx, cart.ID, lineIDs)
		if err != nil {
			return fmt.Errorf("clear cart items: %w", err)
		}
		if deleted != int64(len(lineIDs)) {
			return apperror.Conflict("cart changed during checkout, please retry")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Payment = payment
	order.Shipment = shipment

	metrics.RecordCheckout(string(method))
	if payment.Status == model.PaymentSucceeded {
		metrics.RecordPaymentTransition("checkout", string(payment.Status))
	}
	s.publisher.Publish(ctx, event.OrderCreated, orderKey(order.ID), orderPayload(order))

	s.log.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", userID),
		zap.String("method", string(method)),
		zap.Int64("total", order.Total),
	)

	return &dto.CheckoutResponse{
		Message:     "order created",
		OrderID:     order.ID,
		Method:      method,
		Provider:    provider,
		ExpiredAt:   payment.ExpiredAt,
		RedirectURL: redirectURL(payment.Status == model.PaymentSucceeded, order.ID),
		Order:       order,
		Payment:     payment,
	}, nil
}

func redirectURL(paid bool, orderID uint) string {
	if paid {
		return fmt.Sprintf("/pesanan-detail.html?orderId=%d", orderID)
	}
	return fmt.Sprintf("/pembayaran.html?orderId=%d&auto=1", orderID)
}
