package model

import "time"

// Return is at most one per order.
type Return struct {
	ID                   uint         `gorm:"primaryKey" json:"id"`
	OrderID              uint         `gorm:"uniqueIndex;not null" json:"orderId"`
	UserID               uint         `gorm:"index;not null" json:"userId"`
	Kind                 ReturnKind   `gorm:"size:16;not null" json:"kind"`
	Reason               string       `gorm:"size:255;not null" json:"reason"`
	Description          *string      `gorm:"type:text" json:"description"`
	Photos               []string     `gorm:"serializer:json" json:"photos"`
	Status               ReturnStatus `gorm:"size:32;index;not null" json:"status"`
	AdminNote            *string      `gorm:"type:text" json:"adminNote"`
	ReturnTrackingNumber *string      `gorm:"size:64" json:"returnTrackingNumber"`
	CreatedAt            time.Time    `gorm:"index" json:"createdAt"`
	UpdatedAt            time.Time    `json:"updatedAt"`

	User  *User  `json:"user,omitempty"`
	Order *Order `json:"order,omitempty"`
}

// Review is unique per (user, product).
type Review struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"uniqueIndex:idx_review_user_product;not null" json:"userId"`
	ProductID     uint      `gorm:"uniqueIndex:idx_review_user_product;index;not null" json:"productId"`
	OrderID       uint      `gorm:"index;not null" json:"orderId"`
	Rating        int       `gorm:"not null" json:"rating"`
	Comment       *string   `gorm:"type:text" json:"comment"`
	ReviewerName  string    `gorm:"size:255" json:"reviewerName"`
	ReviewerEmail string    `gorm:"size:191" json:"-"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`

	Product *Product `json:"product,omitempty"`
}
