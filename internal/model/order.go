package model

import "time"

type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"userId"`
	Active    bool       `gorm:"not null;index" json:"active"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"index;not null" json:"cartId"`
	ProductID uint      `gorm:"index;not null" json:"productId"`
	VariantID *uint     `gorm:"index" json:"variantId"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	Product   *Product  `json:"product,omitempty"`
	Variant   *Variant  `json:"variant,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Order keeps a copy of the delivery address taken at checkout time.
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      uint        `gorm:"index;not null" json:"userId"`
	Status      OrderStatus `gorm:"size:32;index;not null" json:"status"`
	Subtotal    int64       `gorm:"not null" json:"subtotal"`
	ShippingFee int64       `gorm:"not null" json:"shippingFee"`
	Discount    int64       `gorm:"not null" json:"discount"`
	Total       int64       `gorm:"not null" json:"total"`
	VoucherCode *string     `gorm:"size:32" json:"voucherCode"`

	RecipientName string `gorm:"size:128;not null" json:"recipientName"`
	Phone         string `gorm:"size:32;not null" json:"phone"`
	Street        string `gorm:"size:512;not null" json:"street"`
	Village       string `gorm:"size:128" json:"village"`
	District      string `gorm:"size:128" json:"district"`
	City          string `gorm:"size:128" json:"city"`
	Province      string `gorm:"size:128" json:"province"`
	PostalCode    string `gorm:"size:16" json:"postalCode"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User     *User       `json:"user,omitempty"`
	Items    []OrderItem `json:"items,omitempty"`
	Payment  *Payment    `json:"payment,omitempty"`
	Shipment *Shipment   `json:"shipment,omitempty"`
	Return   *Return     `json:"return,omitempty"`
}

// OrderItem is immutable once created. UnitPrice and ProductName are
// captured at checkout.
type OrderItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     uint      `gorm:"index;not null" json:"orderId"`
	ProductID   uint      `gorm:"index;not null" json:"productId"`
	VariantID   *uint     `gorm:"index" json:"variantId"`
	ProductName string    `gorm:"size:255" json:"productName"`
	Quantity    int64     `gorm:"not null" json:"quantity"`
	UnitPrice   int64     `gorm:"not null" json:"unitPrice"`
	Product     *Product  `json:"product,omitempty"`
	Variant     *Variant  `json:"variant,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Shipment struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	OrderID        uint             `gorm:"uniqueIndex;not null" json:"orderId"`
	ServiceID      uint             `gorm:"index;not null" json:"serviceId"`
	Fee            int64            `gorm:"not null" json:"fee"`
	TrackingNumber *string          `gorm:"size:64" json:"trackingNumber"`
	Service        *ShippingService `json:"service,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

type Payment struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	OrderID      uint          `gorm:"uniqueIndex;not null" json:"orderId"`
	Method       PaymentMethod `gorm:"size:16;not null" json:"method"`
	Provider     *string       `gorm:"size:64" json:"provider"`
	Status       PaymentStatus `gorm:"size:16;index;not null" json:"status"`
	Amount       int64         `gorm:"not null" json:"amount"`
	Fee          int64         `gorm:"not null;default:0" json:"fee"`
	ExpiredAt    *time.Time    `gorm:"index" json:"expiredAt"`
	PaidAt       *time.Time    `json:"paidAt"`
	ExternalID   *string       `gorm:"size:64;uniqueIndex" json:"externalId"`
	SessionToken *string       `gorm:"size:255" json:"sessionToken,omitempty"`
	PaymentType  *string       `gorm:"size:64" json:"paymentType"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}
