package dto

import (
	"time"

	"zawawiya-store/internal/model"
)

type MessageResponse struct {
	Message string `json:"message"`
}

// ---- checkout ----

type CheckoutRequest struct {
	ItemIDs       []uint `json:"itemIds" validate:"required,min=1,dive,gt=0"`
	AddressID     uint   `json:"addressId" validate:"required,gt=0"`
	ServiceID     uint   `json:"serviceId" validate:"required,gt=0"`
	VoucherCode   string `json:"voucherCode" validate:"omitempty,max=32"`
	PaymentMethod string `json:"paymentMethod" validate:"required,max=32"`
}

type CheckoutResponse struct {
	Message     string               `json:"message"`
	OrderID     uint                 `json:"orderId"`
	Method      model.PaymentMethod  `json:"method"`
	Provider    *string              `json:"provider"`
	ExpiredAt   *time.Time           `json:"expiredAt"`
	RedirectURL string               `json:"redirectUrl"`
	Order       *model.Order         `json:"order"`
	Payment     *model.Payment       `json:"payment"`
}

type CheckoutSummary struct {
	Addresses        []*model.Address         `json:"addresses"`
	ShippingServices []*model.ShippingService `json:"shippingServices"`
	Cart             *model.Cart              `json:"cart"`
}

// ---- payment ----

type PaySessionResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	ExternalID  string `json:"externalId"`
}

// PaymentNotification is the body the gateway posts on every transaction
// status change.
type PaymentNotification struct {
	OrderID           string `json:"order_id" validate:"required"`
	StatusCode        string `json:"status_code" validate:"required"`
	GrossAmount       string `json:"gross_amount" validate:"required"`
	TransactionStatus string `json:"transaction_status" validate:"required"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	TransactionID     string `json:"transaction_id"`
	TransactionTime   string `json:"transaction_time"`
	StatusMessage     string `json:"status_message"`
	SignatureKey      string `json:"signature_key" validate:"required"`
	Currency          string `json:"currency"`
	MerchantID        string `json:"merchant_id"`
	SettlementTime    string `json:"settlement_time"`
	ExpiryTime        string `json:"expiry_time"`
}

// ---- orders ----

type OrderView struct {
	*model.Order
	Reviewed bool `json:"reviewed"`
}

type CancelOrderResponse struct {
	Message string `json:"message"`
	// Deleted is true when the order was removed and its lines went back
	// to the cart.
	Deleted bool         `json:"deleted"`
	Order   *model.Order `json:"order,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status         string `json:"status" validate:"required"`
	TrackingNumber string `json:"trackingNumber" validate:"omitempty,max=64"`
}

type AdminOrderFilter struct {
	Query  string `query:"q"`
	Status string `query:"status"`
	From   string `query:"from"`
	To     string `query:"to"`
}

// ---- cart ----

type AddCartItemRequest struct {
	ProductID uint  `json:"productId" validate:"required,gt=0"`
	VariantID *uint `json:"variantId" validate:"omitempty,gt=0"`
	Quantity  int64 `json:"quantity" validate:"omitempty,gte=1"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity" validate:"required,gte=1"`
}

// ---- addresses ----

type AddressRequest struct {
	Label         string   `json:"label" validate:"required,max=64"`
	RecipientName string   `json:"recipientName" validate:"required,max=128"`
	Phone         string   `json:"phone" validate:"required,max=32"`
	Province      string   `json:"province" validate:"required,max=128"`
	City          string   `json:"city" validate:"required,max=128"`
	District      string   `json:"district" validate:"required,max=128"`
	Village       string   `json:"village" validate:"required,max=128"`
	PostalCode    string   `json:"postalCode" validate:"required,max=16"`
	Street        string   `json:"street" validate:"required,max=512"`
	Latitude      *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude     *float64 `json:"longitude" validate:"omitempty,longitude"`
	MapsURL       *string  `json:"mapsUrl" validate:"omitempty,url"`
	IsPrimary     bool     `json:"isPrimary"`
}

// ---- returns ----

type CreateReturnRequest struct {
	OrderID     uint     `json:"orderId" validate:"required,gt=0"`
	Kind        string   `json:"kind" validate:"required,oneof=REFUND EXCHANGE"`
	Reason      string   `json:"reason" validate:"required,max=255"`
	Description string   `json:"description" validate:"omitempty,max=2000"`
	Photos      []string `json:"photos" validate:"omitempty,max=5,dive,required"`
}

type ReturnShipmentRequest struct {
	TrackingNumber string `json:"trackingNumber" validate:"required,max=64"`
}

type UpdateReturnRequest struct {
	Status    string  `json:"status" validate:"omitempty"`
	AdminNote *string `json:"adminNote"`
}

type AdminReturnFilter struct {
	Query  string `query:"q"`
	Status string `query:"status"`
	Kind   string `query:"kind"`
	From   string `query:"from"`
	To     string `query:"to"`
}

// ---- reviews ----

type ReviewItem struct {
	ItemID  uint   `json:"itemId" validate:"required,gt=0"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=2000"`
}

type CreateReviewRequest struct {
	Items []ReviewItem `json:"items" validate:"required,min=1,dive"`
}

// ---- catalog ----

type ProductFilter struct {
	CategoryID uint   `query:"category"`
	Query      string `query:"q"`
}

type AttributeRequest struct {
	Name     string   `json:"name" validate:"required,max=64"`
	Position *int     `json:"position"`
	Values   []string `json:"values" validate:"required,min=1,dive,required,max=64"`
}

type CreateProductRequest struct {
	CategoryID   uint               `json:"categoryId" validate:"required,gt=0"`
	Name         string             `json:"name" validate:"required,max=255"`
	Brand        *string            `json:"brand" validate:"omitempty,max=128"`
	Description  *string            `json:"description"`
	ImageURL     *string            `json:"imageUrl" validate:"omitempty,max=512"`
	Price        int64              `json:"price" validate:"gte=0"`
	Stock        int64              `json:"stock" validate:"gte=0"`
	FreeShipping bool               `json:"freeShipping"`
	Active       *bool              `json:"active"`
	Attributes   []AttributeRequest `json:"attributes" validate:"omitempty,dive"`
}

type UpdateProductRequest struct {
	CategoryID   *uint   `json:"categoryId" validate:"omitempty,gt=0"`
	Name         *string `json:"name" validate:"omitempty,max=255"`
	Brand        *string `json:"brand" validate:"omitempty,max=128"`
	Description  *string `json:"description"`
	ImageURL     *string `json:"imageUrl" validate:"omitempty,max=512"`
	Price        *int64  `json:"price" validate:"omitempty,gte=0"`
	Stock        *int64  `json:"stock" validate:"omitempty,gte=0"`
	FreeShipping *bool   `json:"freeShipping"`
	Active       *bool   `json:"active"`
}

type VariantRequest struct {
	SKU      string `json:"sku" validate:"required,max=128"`
	Price    *int64 `json:"price" validate:"omitempty,gte=0"`
	Stock    int64  `json:"stock" validate:"gte=0"`
	ValueIDs []uint `json:"valueIds" validate:"omitempty,dive,gt=0"`
}

type ReplaceVariantsRequest struct {
	AutoGenerate bool             `json:"autoGenerate"`
	Variants     []VariantRequest `json:"variants" validate:"omitempty,dive"`
}

type ReplaceVariantsResponse struct {
	Product *model.Product `json:"product"`
	Created int            `json:"created"`
	Reason  string         `json:"reason,omitempty"`
}

// ---- auth ----

type RegisterRequest struct {
	FirstName  string `json:"firstName" validate:"required,max=100"`
	LastName   string `json:"lastName" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email,max=191"`
	Phone      string `json:"phone" validate:"required,max=32"`
	Gender     string `json:"gender" validate:"required,oneof=male female"`
	Password   string `json:"password" validate:"required,min=6,max=72"`
	Newsletter bool   `json:"newsletter"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

// ---- region ----

type Region struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type RegionResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Data    []Region `json:"data"`
}

// ---- reports ----

type ReportFilter struct {
	From   string `query:"from"`
	To     string `query:"to"`
	Status string `query:"status"`
}

type ReportSummary struct {
	Revenue         int64 `json:"revenue"`
	TotalOrders     int   `json:"totalOrders"`
	CompletedOrders int   `json:"completedOrders"`
	CancelledOrders int   `json:"cancelledOrders"`
	ItemsSold       int64 `json:"itemsSold"`
	AverageOrder    int64 `json:"averageOrder"`
}

type DailyRevenue struct {
	Date    string `json:"date"`
	Revenue int64  `json:"revenue"`
	Orders  int    `json:"orders"`
}

type TopProduct struct {
	ProductID uint   `json:"productId"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	Revenue   int64  `json:"revenue"`
}

type StatusCount struct {
	Status model.OrderStatus `json:"status"`
	Count  int               `json:"count"`
}

type SalesReport struct {
	Summary         ReportSummary  `json:"summary"`
	Daily           []DailyRevenue `json:"daily"`
	TopProducts     []TopProduct   `json:"topProducts"`
	StatusBreakdown []StatusCount  `json:"statusBreakdown"`
	Orders          []*model.Order `json:"orders"`
}
