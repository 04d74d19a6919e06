package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"zawawiya-store/internal/client"
	"zawawiya-store/internal/clock"
	"zawawiya-store/internal/dto"
	"zawawiya-store/internal/model"
	"zawawiya-store/internal/repository"
	"zawawiya-store/internal/testutil"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

const testServerKey = "SB-Mid-server-test"

type fakeGateway struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (g *fakeGateway) CreateSession(_ context.Context, req *client.SessionRequest) (*client.SessionResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.calls++
	return &client.SessionResponse{
		Token:       fmt.Sprintf("snap-token-%d", g.calls),
		RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/" + req.ExternalID,
	}, nil
}

func (g *fakeGateway) VerifySignature(orderID, statusCode, grossAmount, signature string) bool {
	return client.NotificationSignature(testServerKey, orderID, statusCode, grossAmount) == signature
}

type harness struct {
	db       *gorm.DB
	clock    *clock.Manual
	events   *testutil.Recorder
	gateway  *fakeGateway
	checkout CheckoutService
	orders   OrderService
	payments PaymentService
	expiry   ExpiryService
	admin    AdminOrderService
	returns  ReturnService
	reviews  ReviewService
	carts    CartService
	catalog  CatalogService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := testutil.NewDB(t)
	clk := clock.NewManual(testutil.Epoch)
	log := zaptest.NewLogger(t)
	events := &testutil.Recorder{}
	gateway := &fakeGateway{}

	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)
	shippingRepo := repository.NewShippingRepository(db)
	cartRepo := repository.NewCartRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	productRepo := repository.NewProductRepository(db)
	userRepo := repository.NewUserRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	returnRepo := repository.NewReturnRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	expiry := NewExpiryService(db, clk, log, events, orderRepo, paymentRepo)

	return &harness{
		db:       db,
		clock:    clk,
		events:   events,
		gateway:  gateway,
		expiry:   expiry,
		checkout: NewCheckoutService(db, clk, log, events, orderRepo, paymentRepo, shipmentRepo, shippingRepo, cartRepo, addressRepo),
		orders:   NewOrderService(db, clk, log, events, expiry, orderRepo, paymentRepo, cartRepo, productRepo, reviewRepo),
		payments: NewPaymentService(db, clk, log, events, gateway, expiry, orderRepo, paymentRepo, userRepo, webhookEventRepo),
		admin:    NewAdminOrderService(db, clk, log, events, orderRepo, paymentRepo, shipmentRepo, productRepo),
		returns:  NewReturnService(db, log, events, orderRepo, returnRepo),
		reviews:  NewReviewService(db, orderRepo, userRepo, reviewRepo),
		carts:    NewCartService(db, clk, cartRepo, productRepo),
		catalog:  NewCatalogService(db, log, productRepo, cartRepo),
	}
}

// shopper is a buyer with an address, a shipping option and a cart holding
// two units of one product.
type shopper struct {
	user     *model.User
	address  *model.Address
	shipping *model.ShippingService
	product  *model.Product
	cart     *model.Cart
	line     *model.CartItem
}

func (h *harness) newShopper(t *testing.T, email string) *shopper {
	t.Helper()

	user := testutil.CreateUser(t, h.db, email, model.RoleUser)
	product := testutil.CreateProduct(t, h.db, "Gamis Syari Zahra", 150000, 10)
	cart := testutil.CreateCart(t, h.db, user.ID)

	return &shopper{
		user:     user,
		address:  testutil.CreateAddress(t, h.db, user.ID),
		shipping: testutil.CreateShippingService(t, h.db, 20000, false),
		product:  product,
		cart:     cart,
		line:     testutil.AddCartItem(t, h.db, cart.ID, product.ID, nil, 2),
	}
}

func (h *harness) checkoutWith(t *testing.T, s *shopper, method string) *dto.CheckoutResponse {
	t.Helper()

	resp, err := h.checkout.Checkout(context.Background(), s.user.ID, &dto.CheckoutRequest{
		ItemIDs:       []uint{s.line.ID},
		AddressID:     s.address.ID,
		ServiceID:     s.shipping.ID,
		PaymentMethod: method,
	})
	require.NoError(t, err)
	return resp
}

// notify posts a correctly signed gateway notification for the order.
func (h *harness) notify(t *testing.T, orderID uint, amount int64, transactionStatus, fraudStatus string) error {
	t.Helper()

	externalID := fmt.Sprintf("ORDER-%d-1700000000000", orderID)
	gross := client.GrossAmount(amount)
	return h.payments.HandleNotification(context.Background(), &dto.PaymentNotification{
		OrderID:           externalID,
		StatusCode:        "200",
		GrossAmount:       gross,
		TransactionStatus: transactionStatus,
		FraudStatus:       fraudStatus,
		PaymentType:       "bank_transfer",
		SignatureKey:      client.NotificationSignature(testServerKey, externalID, "200", gross),
	})
}

func (h *harness) setOrderStatus(t *testing.T, orderID uint, status model.OrderStatus) {
	t.Helper()
	require.NoError(t, h.db.Model(&model.Order{}).Where("id = ?", orderID).Update("status", status).Error)
}

func (h *harness) order(t *testing.T, id uint) *model.Order {
	return testutil.Reload[model.Order](t, h.db, id)
}

func (h *harness) payment(t *testing.T, orderID uint) *model.Payment {
	t.Helper()
	var p model.Payment
	require.NoError(t, h.db.Where("order_id = ?", orderID).First(&p).Error)
	return &p
}
