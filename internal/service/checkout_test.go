package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"zawawiya-store/internal/apperror"
	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/event"
	"zawawiya-store/internal/model"
	"zawawiya-store/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCheckout_VirtualAccount(t *testing.T) {
	h := newHarness(t)
	s := h.newShopper(t, "siti@example.com")

	resp := h.checkoutWith(t, s, "bca")

	assert.Equal(t, model.PaymentMethodVA, resp.Method)
	require.NotNil(t, resp.Provider)
	assert.Equal(t, "BCA_VA", *resp.Provider)
	require.NotNil(t, resp.ExpiredAt)
	assert.True(t, resp.ExpiredAt.Equal(testutil.Epoch.Add(24*time.Hour)))

	order := h.order(t, resp.OrderID)
	assert.Equal(t, model.OrderAwaitingPayment, order.Status)
	assert.Equal(t, int64(300000), order.Subtotal)
	assert.Equal(t, int64(20000), order.ShippingFee)
	assert.Equal(t, int64(320000), order.Total)
	assert.Equal(t, "Bandung", order.City)

	payment := h.payment(t, order.ID)
	assert.Equal(t, model.PaymentWaiting, payment.Status)
	assert.Equal(t, int64(320000), payment.Amount)
	assert.Nil(t, payment.PaidAt)

	var shipment model.Shipment
	require.NoError(t, h.db.Where("order_id = ?", order.ID).First(&shipment).Error)
	assert.Equal(t, s.shipping.ID, shipment.ServiceID)
	assert.Equal(t, int64(20000), shipment.Fee)

	var items []model.OrderItem
	require.NoError(t, h.db.Where("order_id = ?", order.ID).Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, int64(150000), items[0].UnitPrice)
	assert.Equal(t, "Gamis Syari Zahra", items[0].ProductName)

	var left int64
	require.NoError(t, h.db.Model(&model.CartItem{}).Where("cart_id = ?", s.cart.ID).Count(&left).Error)
	assert.Zero(t, left)

	assert.Equal(t, 1, h.events.Count(event.OrderCreated))
}

func TestCheckout_CashOnDelivery(t *testing.T) {
	h := newHarness(t)
	s := h.newShopper(t, "cod@example.com")

	resp := h.checkoutWith(t, s, "COD")

	assert.Equal(t, model.PaymentMethodCOD, resp.Method)
	assert.Nil(t, resp.ExpiredAt)

	order := h.order(t, resp.OrderID)
	assert.Equal(t, model.OrderProcessing, order.Status)

	payment := h.payment(t, order.ID)
	assert.Equal(t, model.PaymentSucceeded, payment.Status)
	assert.NotNil(t, payment.PaidAt)
	assert.Nil(t, payment.ExpiredAt)
}

func TestCheckout_Voucher(t *testing.T) {
	h := newHarness(t)
	s := h.newShopper(t, "voucher@example.com")

	resp, err := h.checkout.Checkout(context.Background(), s.user.ID, &dto.CheckoutRequest{
		ItemIDs:       []uint{s.line.ID},
		AddressID:     s.address.ID,
		ServiceID:     s.shipping.ID,
		VoucherCode:   " zawa50k ",
		PaymentMethod: "gopay",
	})
	require.NoError(t, err)

	order := h.order(t, resp.OrderID)
	assert.Equal(t, int64(50000), order.Discount)
	assert.Equal(t, int64(270000), order.Total)
	require.NotNil(t, order.VoucherCode)
	assert.Equal(t, "ZAWA50K", *order.VoucherCode)
	assert.Equal(t, model.PaymentMethodEWallet, resp.Method)
	assert.True(t, resp.ExpiredAt.Equal(testutil.Epoch.Add(30*time.Minute)))
}

func TestCheckout_FullyDiscountedSettlesAtOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, h.db, "gratis@example.com", model.RoleUser)
	address := testutil.CreateAddress(t, h.db, user.ID)
	shipping := testutil.CreateShippingService(t, h.db, 20000, true)
	product := testutil.CreateProduct(t, h.db, "Kerudung Paris", 30000, 10)
	cart := testutil.CreateCart(t, h.db, user.ID)
	line := testutil.AddCartItem(t, h.db, cart.ID, product.ID, nil, 1)

	resp, err := h.checkout.Checkout(ctx, user.ID, &dto.CheckoutRequest{
		ItemIDs:       []uint{line.ID},
		AddressID:     address.ID,
		ServiceID:     shipping.ID,
		VoucherCode:   "ZAWA100K",
		PaymentMethod: "gopay",
	})
	require.NoError(t, err)
	assert.Nil(t, resp.ExpiredAt)
	assert.Equal(t, fmt.Sprintf("/pesanan-detail.html?orderId=%d", resp.OrderID), resp.RedirectURL)

	order := h.order(t, resp.OrderID)
	assert.Zero(t, order.Total)
	assert.Equal(t, model.OrderProcessing, order.Status)

	payment := h.payment(t, order.ID)
	assert.Equal(t, model.PaymentSucceeded, payment.Status)
	require.NotNil(t, payment.PaidAt)
	assert.True(t, payment.PaidAt.Equal(testutil.Epoch))
	assert.Nil(t, payment.ExpiredAt)

	_, err = h.payments.CreateSession(ctx, user.ID, order.ID)
	assert.True(t, apperror.Is(err, apperror.KindInvalidRequest))

	h.clock.Advance(48 * time.Hour)
	n, err := h.expiry.ExpireAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, model.OrderProcessing, h.order(t, order.ID).Status)
}

func TestCheckout_RollsBackWhenPaymentInsertFails(t *testing.T) {
	h := newHarness(t)
	s := h.newShopper(t, "rollback@example.com")

	boom := errors.New("disk full")
	require.NoError(t, h.db.Callback().Create().Before("gorm:create").Register("test:fail_payments", func(tx *gorm.DB) {
		if tx.Statement.Table == "payments" {
			_ = tx.AddError(boom)
		}
	}))

	_, err := h.checkout.Checkout(context.Background(), s.user.ID, &dto.CheckoutRequest{
		ItemIDs:       []uint{s.line.ID},
		AddressID:     s.address.ID,
		ServiceID:     s.shipping.ID,
		PaymentMethod: "bni",
	})
	require.ErrorIs(t, err, boom)

	var orders, shipments, lines int64
	require.NoError(t, h.db.Model(&model.Order{}).Count(&orders).Error)
	require.NoError(t, h.db.Model(&model.Shipment{}).Count(&shipments).Error)
	require.NoError(t, h.db.Model(&model.CartItem{}).Where("cart_id = ?", s.cart.ID).Count(&lines).Error)
	assert.Zero(t, orders)
	assert.Zero(t, shipments)
	assert.Equal(t, int64(1), lines)
	assert.Zero(t, h.events.Count(event.OrderCreated))
}

func TestCheckout_Rejections(t *testing.T) {
	h := newHarness(t)
	s := h.newShopper(t, "buyer@example.com")
	other := testutil.CreateUser(t, h.db, "other@example.com", model.RoleUser)
	foreign := testutil.CreateAddress(t, h.db, other.ID)

	tests := []struct {
		name string
		req  dto.CheckoutRequest
		kind apperror.Kind
	}{
		{
			name: "address of another user",
			req:  dto.CheckoutRequest{ItemIDs: []uint{s.line.ID}, AddressID: foreign.ID, ServiceID: s.shipping.ID, PaymentMethod: "bca"},
			kind: apperror.KindNotFound,
		},
		{
			name: "unknown shipping service",
			req:  dto.CheckoutRequest{ItemIDs: []uint{s.line.ID}, AddressID: s.address.ID, ServiceID: 9999, PaymentMethod: "bca"},
			kind: apperror.KindNotFound,
		},
		{
			name: "no matching cart lines",
			req:  dto.CheckoutRequest{ItemIDs: []uint{9999}, AddressID: s.address.ID, ServiceID: s.shipping.ID, PaymentMethod: "bca"},
			kind: apperror.KindInvalidRequest,
		},
		{
			name: "missing payment method",
			req:  dto.CheckoutRequest{ItemIDs: []uint{s.line.ID}, AddressID: s.address.ID, ServiceID: s.shipping.ID},
			kind: apperror.KindInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.checkout.Checkout(context.Background(), s.user.ID, &tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}

	var orders int64
	require.NoError(t, h.db.Model(&model.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

func TestCheckout_InactiveProduct(t *testing.T) {
	h := newHarness(t)
	s := h.newShopper(t, "inactive@example.com")
	require.NoError(t, h.db.Model(&model.Product{}).Where("id = ?", s.product.ID).Update("active", false).Error)

	_, err := h.checkout.Checkout(context.Background(), s.user.ID, &dto.CheckoutRequest{
		ItemIDs:       []uint{s.line.ID},
		AddressID:     s.address.ID,
		ServiceID:     s.shipping.ID,
		PaymentMethod: "bca",
	})
	assert.True(t, apperror.Is(err, apperror.KindInvalidRequest))
}

func TestCheckout_Summary(t *testing.T) {
	h := newHarness(t)
	s := h.newShopper(t, "summary@example.com")

	summary, err := h.checkout.Summary(context.Background(), s.user.ID)
	require.NoError(t, err)

	assert.Len(t, summary.Addresses, 1)
	assert.Len(t, summary.ShippingServices, 1)
	require.Len(t, summary.Cart.Items, 1)
	assert.Equal(t, s.product.ID, summary.Cart.Items[0].ProductID)
}
