package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:191;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         Role      `gorm:"size:16;not null" json:"role"`
	FirstName    string    `gorm:"size:100" json:"firstName"`
	LastName     string    `gorm:"size:100" json:"lastName"`
	Phone        string    `gorm:"size:32" json:"phone"`
	Gender       string    `gorm:"size:16" json:"gender,omitempty"`
	Newsletter   bool      `json:"newsletter"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}

type Address struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index;not null" json:"userId"`
	Label         string    `gorm:"size:64;not null" json:"label"`
	RecipientName string    `gorm:"size:128;not null" json:"recipientName"`
	Phone         string    `gorm:"size:32;not null" json:"phone"`
	Province      string    `gorm:"size:128;not null" json:"province"`
	City          string    `gorm:"size:128;not null" json:"city"`
	District      string    `gorm:"size:128;not null" json:"district"`
	Village       string    `gorm:"size:128;not null" json:"village"`
	PostalCode    string    `gorm:"size:16;not null" json:"postalCode"`
	Street        string    `gorm:"size:512;not null" json:"street"`
	Latitude      *float64  `json:"latitude"`
	Longitude     *float64  `json:"longitude"`
	MapsURL       *string   `gorm:"size:512" json:"mapsUrl"`
	IsPrimary     bool      `gorm:"not null" json:"isPrimary"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Courier struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Code   string `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Name   string `gorm:"size:64;not null" json:"name"`
	Active bool   `gorm:"not null" json:"active"`
}

type ShippingService struct {
	ID            uint     `gorm:"primaryKey" json:"id"`
	CourierID     uint     `gorm:"index;not null" json:"courierId"`
	Name          string   `gorm:"size:64;not null" json:"name"`
	Price         int64    `gorm:"not null" json:"price"`
	Free          bool     `gorm:"not null;default:false" json:"free"`
	EstimatedDays string   `gorm:"size:32" json:"estimatedDays"`
	Active        bool     `gorm:"not null" json:"active"`
	Courier       *Courier `json:"courier,omitempty"`
}

// Fee is what the buyer pays for this service.
func (s *ShippingService) Fee() int64 {
	if s.Free {
		return 0
	}
	return s.Price
}

// WebhookEvent records gateway notifications that were already applied.
type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:191;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}

// All lists every table the service migrates.
func All() []any {
	return []any{
		&User{},
		&Address{},
		&Category{},
		&Product{},
		&ProductAttribute{},
		&AttributeValue{},
		&Variant{},
		&VariantValue{},
		&Cart{},
		&CartItem{},
		&Courier{},
		&ShippingService{},
		&Order{},
		&OrderItem{},
		&Shipment{},
		&Payment{},
		&Return{},
		&Review{},
		&WebhookEvent{},
	}
}
